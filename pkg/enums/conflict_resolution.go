package enums

import "fmt"

// ConflictResolution records which side of a quantity disagreement won
// during an item-level merge. The engine keeps the larger quantity, so the
// resolution names the side that carried it.
type ConflictResolution string

const (
	ConflictResolvedLocal  ConflictResolution = "local"
	ConflictResolvedServer ConflictResolution = "server"
)

var validConflictResolutions = []ConflictResolution{
	ConflictResolvedLocal,
	ConflictResolvedServer,
}

// IsValid reports whether the value matches the canonical resolution enum.
func (c ConflictResolution) IsValid() bool {
	for _, candidate := range validConflictResolutions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseConflictResolution converts the raw string to ConflictResolution.
func ParseConflictResolution(value string) (ConflictResolution, error) {
	for _, candidate := range validConflictResolutions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid conflict resolution %q", value)
}
