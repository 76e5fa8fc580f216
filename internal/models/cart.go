package models

import "time"

// CartItem is one product in a buyer's cart. Carts are keyed by buyer email.
type CartItem struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BuyerEmail string    `json:"buyer_email" gorm:"type:varchar(255);uniqueIndex:idx_cart_buyer_product"`
	ProductID  string    `json:"product_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_buyer_product"`
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CartLine is a cart item joined with the current product details.
type CartLine struct {
	ProductID string   `json:"product_id"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Images    []string `json:"images"`
	Status    string   `json:"status"`
	Quantity  int      `json:"quantity"`
	Subtotal  string   `json:"subtotal"`
}

// Cart is the buyer's cart as returned to clients.
type Cart struct {
	BuyerEmail string     `json:"buyer_email"`
	Items      []CartLine `json:"items"`
	Total      string     `json:"total"`
}
