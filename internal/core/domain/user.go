package domain

import (
	"strings"
	"time"
)

// Role is the permission tier carried by every user record and token.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleEmployee
}

// User models a portal account holder or staff member.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	IDNumber      string    `json:"idNumber"`
	AccountNumber string    `json:"accountNumber"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Validate re-checks the record right before it is persisted. It applies the
// same rules as request validation, so a request that passed the boundary
// never fails here.
func (u *User) Validate() error {
	if err := ValidateName(u.Name); err != nil {
		return err
	}
	if err := ValidateIDNumber(u.IDNumber); err != nil {
		return err
	}
	if err := ValidateAccountNumber(u.AccountNumber); err != nil {
		return err
	}
	if !u.Role.Valid() {
		return &ValidationError{Field: "role", Message: "Role must be customer or employee."}
	}
	// bcrypt hashes always carry a "$2" prefix; anything else is plaintext.
	if !strings.HasPrefix(u.PasswordHash, "$2") {
		return &ValidationError{Field: "password", Message: "Password must be hashed before it is stored."}
	}
	return nil
}
