package enums

import "fmt"

// MergeStrategy selects how a client item list is reconciled against the
// stored cart during a sync call.
type MergeStrategy string

const (
	// MergeStrategyLocal replaces the stored item set wholesale with the
	// client's.
	MergeStrategyLocal MergeStrategy = "local"
	// MergeStrategyServer keeps the stored item set and discards the
	// client's.
	MergeStrategyServer MergeStrategy = "server"
	// MergeStrategyMerge reconciles item-by-item and is the default.
	MergeStrategyMerge MergeStrategy = "merge"
)

var validMergeStrategies = []MergeStrategy{
	MergeStrategyLocal,
	MergeStrategyServer,
	MergeStrategyMerge,
}

// IsValid reports whether the value matches the canonical merge strategy enum.
func (m MergeStrategy) IsValid() bool {
	for _, candidate := range validMergeStrategies {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMergeStrategy converts the raw string to MergeStrategy. An empty
// string resolves to the default merge strategy.
func ParseMergeStrategy(value string) (MergeStrategy, error) {
	if value == "" {
		return MergeStrategyMerge, nil
	}
	for _, candidate := range validMergeStrategies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid merge strategy %q", value)
}
