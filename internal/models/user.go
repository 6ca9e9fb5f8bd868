package models

// User is the authenticated identity as the backend describes it.
type User struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        string `json:"role,omitempty"`
	Address     string `json:"address,omitempty"`
}
