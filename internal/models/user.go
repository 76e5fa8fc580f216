package models

import "time"

// Role gates UI and API access.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// User represents a marketplace account. Sellers carry business details.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	FirstName    string    `json:"first_name" gorm:"type:varchar(100)" validate:"required,max=100"`
	LastName     string    `json:"last_name" gorm:"type:varchar(100)" validate:"required,max=100"`
	Phone        string    `json:"phone" gorm:"type:varchar(32)" validate:"required,min=6,max=32"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password     string    `json:"password,omitempty" gorm:"type:varchar(255)" validate:"required,min=6"`
	Role         Role      `json:"role" gorm:"type:varchar(16);index"`
	Address      string    `json:"address,omitempty" gorm:"type:varchar(500)"`
	PostalCode   string    `json:"postal_code,omitempty" gorm:"type:varchar(20)"`
	BusinessName string    `json:"business_name,omitempty" gorm:"type:varchar(200)"`
	TaxID        string    `json:"tax_id,omitempty" gorm:"type:varchar(64)"`
	MFAEnabled   bool      `json:"mfa_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
