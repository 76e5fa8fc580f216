package services

import (
	"errors"

	"rewear/internal/repositories"
)

var (
	// ErrNotFound and ErrAlreadyExists are the repository sentinels so errors.Is
	// works across layers.
	ErrNotFound      = repositories.ErrNotFound
	ErrAlreadyExists = repositories.ErrDuplicate

	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")

	ErrCartItemExists      = errors.New("item already in cart")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrProductUnavailable  = errors.New("product is not available")
	ErrPaymentDeclined     = errors.New("payment declined")
	ErrCouponInvalid       = errors.New("coupon is not valid")
	ErrInvalidTransition   = errors.New("invalid order status transition")
	ErrMFACodeInvalid      = errors.New("invalid verification code")
	ErrMFACodeExpired      = errors.New("verification code expired")
	ErrMFAAttemptsExceeded = errors.New("too many verification attempts")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
