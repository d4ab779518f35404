// Package identity resolves the authenticated user to the actor stamped
// onto stage transitions.
package identity

// Actor is who performed a lifecycle action, as recorded on the lead row
// and in the audit history.
type Actor struct {
	FullName   string
	EmployeeID *int64
}
