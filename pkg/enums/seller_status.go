package enums

import "fmt"

// SellerStatus tracks the onboarding lifecycle of a seller profile.
type SellerStatus string

const (
	SellerStatusPending   SellerStatus = "pending"
	SellerStatusApproved  SellerStatus = "approved"
	SellerStatusSuspended SellerStatus = "suspended"
	SellerStatusRejected  SellerStatus = "rejected"
)

var validSellerStatuses = []SellerStatus{
	SellerStatusPending,
	SellerStatusApproved,
	SellerStatusSuspended,
	SellerStatusRejected,
}

// String implements fmt.Stringer.
func (s SellerStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SellerStatus.
func (s SellerStatus) IsValid() bool {
	for _, candidate := range validSellerStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanSell reports whether the seller may list books and receive new orders.
func (s SellerStatus) CanSell() bool {
	return s == SellerStatusApproved
}

// ParseSellerStatus converts raw input into a SellerStatus.
func ParseSellerStatus(value string) (SellerStatus, error) {
	for _, candidate := range validSellerStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid seller status %q", value)
}
