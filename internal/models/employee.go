package models

// Employee represents an employee record stored in the employees table.
// ID is zero until the record has been persisted.
type Employee struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}
