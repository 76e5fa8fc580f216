package models

import "time"

// ProductStatus tracks the moderation lifecycle of a listing.
type ProductStatus string

const (
	ProductPending  ProductStatus = "pending"
	ProductApproved ProductStatus = "approved"
	ProductRejected ProductStatus = "rejected"
	ProductSold     ProductStatus = "sold"
)

// Product represents a second-hand item listed by a seller.
type Product struct {
	ID             string        `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	SellerID       string        `json:"seller_id" gorm:"type:varchar(36);index"`
	SellerName     string        `json:"seller_name" gorm:"type:varchar(200)"`
	Name           string        `json:"name" gorm:"type:varchar(100)" validate:"required,min=3,max=100"`
	Description    string        `json:"description" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	Price          float64       `json:"price" validate:"required,gt=0"`
	Category       string        `json:"category" gorm:"type:varchar(100);index" validate:"required"`
	Images         []string      `json:"images" gorm:"serializer:json"`
	Status         ProductStatus `json:"status" gorm:"type:varchar(16);index"`
	ReviewComments string        `json:"review_comments,omitempty" gorm:"type:varchar(500)"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
