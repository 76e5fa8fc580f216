package models

import "time"

// Review is a buyer's rating of a completed order.
type Review struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID    string    `json:"order_id" gorm:"type:varchar(36);uniqueIndex:idx_review_order_user"`
	UserID     string    `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_review_order_user"`
	Rating     int       `json:"rating" validate:"required,min=1,max=5"`
	ReviewText string    `json:"review_text,omitempty" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}
