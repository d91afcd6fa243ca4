package enums

import "fmt"

// BookType distinguishes how a listing can be delivered.
type BookType string

const (
	BookTypePhysical BookType = "physical"
	BookTypeDigital  BookType = "digital"
	BookTypeBoth     BookType = "both"
)

var validBookTypes = []BookType{
	BookTypePhysical,
	BookTypeDigital,
	BookTypeBoth,
}

// String implements fmt.Stringer.
func (b BookType) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BookType.
func (b BookType) IsValid() bool {
	for _, candidate := range validBookTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// RequiresStock reports whether the listing tracks physical inventory.
func (b BookType) RequiresStock() bool {
	return b == BookTypePhysical || b == BookTypeBoth
}

// RequiresShipping reports whether an order line for this type needs an address.
func (b BookType) RequiresShipping() bool {
	return b == BookTypePhysical || b == BookTypeBoth
}

// ParseBookType converts raw input into a BookType.
func ParseBookType(value string) (BookType, error) {
	for _, candidate := range validBookTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid book type %q", value)
}
