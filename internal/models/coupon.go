package models

import "time"

// Coupon is a seller-issued percentage discount code.
type Coupon struct {
	ID                 string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Code               string     `json:"code" gorm:"uniqueIndex;type:varchar(64)"`
	SellerID           string     `json:"seller_id" gorm:"type:varchar(36);index"`
	SellerName         string     `json:"seller_name" gorm:"type:varchar(200)"`
	DiscountPercentage float64    `json:"discount_percentage"`
	IsActive           bool       `json:"is_active"`
	ExpiryDate         *time.Time `json:"expiry_date,omitempty"`
	MaxUses            int        `json:"max_uses,omitempty"`
	UsedCount          int        `json:"used_count"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Usable reports whether the coupon can still be redeemed at now.
func (c *Coupon) Usable(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.ExpiryDate != nil && now.After(*c.ExpiryDate) {
		return false
	}
	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return false
	}
	return true
}
