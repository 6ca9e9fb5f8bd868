package dto

import (
	"strings"

	"github.com/hongminglow/storefront/internal/models"
)

// SignupForm carries registration fields under the names the UI uses.
type SignupForm struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Address  string `json:"address"`
}

// SignupPayload is the registration body the backend expects.
type SignupPayload struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
	Address     string `json:"address"`
}

// Payload remaps the form to backend names, defaulting the role.
func (f SignupForm) Payload() SignupPayload {
	role := strings.TrimSpace(f.Role)
	if role == "" {
		role = models.RoleCustomer
	}
	return SignupPayload{
		Name:        strings.TrimSpace(f.FullName),
		Email:       strings.TrimSpace(f.Email),
		Password:    f.Password,
		PhoneNumber: strings.TrimSpace(f.Phone),
		Role:        role,
		Address:     strings.TrimSpace(f.Address),
	}
}

// LoginRequest is the body of the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
