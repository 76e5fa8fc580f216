package models

import "time"

const (
	ComplaintInReview = "In review"
	ComplaintClosed   = "Closed"

	IssueGeneralInquiry = "General Inquiry"
)

// Complaint is a buyer issue or a contact-us inquiry.
type Complaint struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FirstName    string    `json:"firstname" gorm:"type:varchar(100)" validate:"required"`
	LastName     string    `json:"lastname" gorm:"type:varchar(100)"`
	MobileNumber string    `json:"mobilenumber" gorm:"type:varchar(32)"`
	Email        string    `json:"email" gorm:"type:varchar(255);index" validate:"required,email"`
	IssueType    string    `json:"issue_type" gorm:"type:varchar(100)" validate:"required"`
	Details      string    `json:"details" gorm:"type:text" validate:"required,min=5"`
	OrderID      string    `json:"orderID,omitempty" gorm:"type:varchar(36)"`
	Status       string    `json:"status" gorm:"type:varchar(32);index"`
	Resolution   string    `json:"resolution,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
