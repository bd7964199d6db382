package entity

import "errors"

// Domain error kinds. Services return these (possibly wrapped); the HTTP
// layer maps them to status codes with errors.Is.
var (
	// ErrValidation is returned for malformed or missing input
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is returned when the actor is not the designated approver
	ErrPermissionDenied = errors.New("permission denied")

	// ErrHierarchyViolation is returned when approval routing breaks the
	// one-level-up rule, or the sender has no level above it
	ErrHierarchyViolation = errors.New("hierarchy violation")

	// ErrDuplicateName is returned when a department name is already taken
	ErrDuplicateName = errors.New("duplicate department name")

	// ErrDuplicateAllocation is returned when a budget already exists for an approval
	ErrDuplicateAllocation = errors.New("budget already allocated for approval")

	// ErrOverBudget is returned when a usage posting would exceed the allocation
	ErrOverBudget = errors.New("usage exceeds allocated amount")

	// ErrInvalidPeriod is returned when a budget period is not a valid range
	ErrInvalidPeriod = errors.New("invalid budget period")

	// ErrInvalidApproval is returned when a budget references an approval that
	// is not an approved DEPARTMENT_BUDGET request
	ErrInvalidApproval = errors.New("approval is not an approved department budget request")
)
