package repositories

import (
	"context"
	"errors"
	"time"

	"rewear/internal/models"
)

// ErrNotFound is wrapped by every repository when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is wrapped when a unique constraint would be violated.
var ErrDuplicate = errors.New("duplicate record")

// ErrStale is wrapped when a conditional write finds the row no longer in the
// expected state.
var ErrStale = errors.New("record changed concurrently")

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Status   models.ProductStatus
	SellerID string
	Category string
	Query    string
	Sort     string // price_asc, price_desc, oldest, newest
	Page     int
	PageSize int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	// SetStatus moves the listed products from one status to another. It fails
	// with ErrStale unless every product was still in from.
	SetStatus(ctx context.Context, from, to models.ProductStatus, ids ...string) error
}

// CartRepository defines the interface for cart data access. Carts are keyed by buyer email.
type CartRepository interface {
	GetItems(ctx context.Context, buyerEmail string) ([]models.CartItem, error)
	GetItem(ctx context.Context, buyerEmail, productID string) (*models.CartItem, error)
	AddItem(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, buyerEmail, productID string, quantity int) error
	RemoveItem(ctx context.Context, buyerEmail, productID string) error
	Clear(ctx context.Context, buyerEmail string) error
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerEmail string) ([]models.Order, error)
	ListByStatus(ctx context.Context, statuses ...models.OrderStatus) ([]models.Order, error)
	// UpdateStatus persists status and tracking history only; the item snapshot is never rewritten.
	// The row must still be in status from, otherwise ErrStale is returned.
	UpdateStatus(ctx context.Context, order *models.Order, from models.OrderStatus) error
}

// PaymentMethodRepository defines the interface for stored payment methods.
type PaymentMethodRepository interface {
	Create(ctx context.Context, method *models.PaymentMethod) error
	GetByID(ctx context.Context, id string) (*models.PaymentMethod, error)
	ListByUser(ctx context.Context, email string) ([]models.PaymentMethod, error)
	Update(ctx context.Context, method *models.PaymentMethod) error
	Delete(ctx context.Context, id string) error
}

// CouponRepository defines the interface for coupon data access.
type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Coupon, error)
	Update(ctx context.Context, coupon *models.Coupon) error
	// Redeem counts one use if the coupon is still active, unexpired and below
	// its use limit at now. Otherwise it returns ErrStale.
	Redeem(ctx context.Context, code string, now time.Time) error
}

// ComplaintFilter narrows complaint listings; empty fields match everything.
type ComplaintFilter struct {
	Email  string
	Status string
}

// ComplaintRepository defines the interface for complaint data access.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	GetByID(ctx context.Context, id string) (*models.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error)
	Update(ctx context.Context, complaint *models.Complaint) error
}

// ReviewRepository defines the interface for order reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Find(ctx context.Context, orderID, userID string) (*models.Review, error)
	ExistsForOrder(ctx context.Context, orderID string) (bool, error)
}

// Store groups the repositories and runs work atomically.
type Store interface {
	Users() UserRepository
	Categories() CategoryRepository
	Products() ProductRepository
	Carts() CartRepository
	Orders() OrderRepository
	PaymentMethods() PaymentMethodRepository
	Coupons() CouponRepository
	Complaints() ComplaintRepository
	Reviews() ReviewRepository
	// Transaction runs fn against a store bound to one transaction. Returning
	// an error rolls every write back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
