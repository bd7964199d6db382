package entity

import "time"

// Department is an organizational unit owning zero or more budgets
type Department struct {
	DepartmentID string     `json:"department_id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	CreatedBy    string     `json:"created_by"`
	UpdatedBy    *string    `json:"updated_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUpdated  *time.Time `json:"last_updated,omitempty"`
}
