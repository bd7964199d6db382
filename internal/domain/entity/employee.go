package entity

// Employee is the read-only directory view of an employee. Identity fields
// are owned by the employee service; this engine only resolves them for
// hierarchy routing. Level 1 is the lowest rank.
type Employee struct {
	EmployeeID   string `json:"employee_id"`
	Name         string `json:"name"`
	Designation  string `json:"designation"`
	DepartmentID string `json:"department_id"`
	Level        int    `json:"level"`
}
