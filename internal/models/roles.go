package models

// Roles the backend accepts at registration.
const (
	RoleCustomer = "Customer"
	RoleStaff    = "Staff"
	RoleAdmin    = "Admin"
)
