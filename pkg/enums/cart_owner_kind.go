package enums

import "fmt"

// CartOwnerKind discriminates who a cart record belongs to.
type CartOwnerKind string

const (
	CartOwnerGuest CartOwnerKind = "guest"
	CartOwnerUser  CartOwnerKind = "user"
)

var validCartOwnerKinds = []CartOwnerKind{
	CartOwnerGuest,
	CartOwnerUser,
}

// IsValid reports whether the value matches the canonical owner kind enum.
func (k CartOwnerKind) IsValid() bool {
	for _, candidate := range validCartOwnerKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseCartOwnerKind converts the raw string to CartOwnerKind.
func ParseCartOwnerKind(value string) (CartOwnerKind, error) {
	for _, candidate := range validCartOwnerKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart owner kind %q", value)
}
