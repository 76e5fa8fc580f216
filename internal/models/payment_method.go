package models

import "time"

// PaymentType is how a buyer pays.
type PaymentType string

const (
	PaymentCard   PaymentType = "card"
	PaymentPayPal PaymentType = "paypal"
	PaymentCash   PaymentType = "cash"
)

// PaymentMethod is a stored, masked payment instrument. Full card numbers and
// CVVs are never persisted.
type PaymentMethod struct {
	ID          string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserEmail   string      `json:"user_email" gorm:"type:varchar(255);index"`
	Type        PaymentType `json:"type" gorm:"type:varchar(16)"`
	Brand       string      `json:"brand,omitempty" gorm:"type:varchar(32)"`
	Last4       string      `json:"last4,omitempty" gorm:"type:varchar(4)"`
	HolderName  string      `json:"holder_name,omitempty" gorm:"type:varchar(200)"`
	Expiry      string      `json:"expiry,omitempty" gorm:"type:varchar(7)"`
	PayPalEmail string      `json:"paypal_email,omitempty" gorm:"type:varchar(255)"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Snapshot copies the masked fields for embedding into an order.
func (m *PaymentMethod) Snapshot() PaymentSnapshot {
	return PaymentSnapshot{
		Type:        m.Type,
		Brand:       m.Brand,
		Last4:       m.Last4,
		HolderName:  m.HolderName,
		PayPalEmail: m.PayPalEmail,
	}
}

// PaymentSnapshot is the masked payment data frozen on an order.
type PaymentSnapshot struct {
	Type        PaymentType `json:"type"`
	Brand       string      `json:"brand,omitempty"`
	Last4       string      `json:"last4,omitempty"`
	HolderName  string      `json:"holder_name,omitempty"`
	PayPalEmail string      `json:"paypal_email,omitempty"`
}
