package enums

import "fmt"

// ApprovalStatus governs marketplace visibility of a listing, independent of is_active.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

var validApprovalStatuses = []ApprovalStatus{
	ApprovalStatusPending,
	ApprovalStatusApproved,
	ApprovalStatusRejected,
}

// String implements fmt.Stringer.
func (a ApprovalStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ApprovalStatus.
func (a ApprovalStatus) IsValid() bool {
	for _, candidate := range validApprovalStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseApprovalStatus converts raw input into an ApprovalStatus.
func ParseApprovalStatus(value string) (ApprovalStatus, error) {
	for _, candidate := range validApprovalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval status %q", value)
}
