package entity

// Status constants for Approval
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	StatusOnHold   = "ON_HOLD"
)

// Category constants for Approval
const (
	CategoryAsset            = "ASSET"
	CategoryLiability        = "LIABILITY"
	CategoryCustomerPayment  = "CUSTOMER_PAYMENT"
	CategoryVendorPayment    = "VENDOR_PAYMENT"
	CategorySalary           = "SALARY"
	CategoryDepartmentBudget = "DEPARTMENT_BUDGET"
	CategoryService          = "SERVICE"
)

// Priority constants for Approval
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Decision actions accepted by the workflow coordinator
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionHold    = "hold"
)

var validCategories = map[string]bool{
	CategoryAsset:            true,
	CategoryLiability:        true,
	CategoryCustomerPayment:  true,
	CategoryVendorPayment:    true,
	CategorySalary:           true,
	CategoryDepartmentBudget: true,
	CategoryService:          true,
}

var validPriorities = map[string]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
}

// categoryLabels maps category codes to display names. Presentation lookup
// only, no business logic hangs off these.
var categoryLabels = map[string]string{
	CategoryAsset:            "Asset",
	CategoryLiability:        "Liability",
	CategoryCustomerPayment:  "Customer Payment",
	CategoryVendorPayment:    "Vendor Payment",
	CategorySalary:           "Salary",
	CategoryDepartmentBudget: "Department Budget",
	CategoryService:          "Service",
}

// IsValidCategory reports whether the category code is known
func IsValidCategory(category string) bool {
	return validCategories[category]
}

// IsValidPriority reports whether the priority code is known
func IsValidPriority(priority string) bool {
	return validPriorities[priority]
}

// CategoryLabel returns the display name for a category code, or the code
// itself when unknown.
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return category
}
