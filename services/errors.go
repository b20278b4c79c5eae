package services

import (
	"errors"
	"fmt"
)

// Domain errors. Controllers translate these to HTTP status codes; anything
// else that comes out of a service is a storage failure and maps to 5xx.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrEmptyCart       = errors.New("cart is empty")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
)

// InsufficientStockError reports the first product whose stock could not
// cover the requested quantity. The whole checkout fails; no stock changes.
type InsufficientStockError struct {
	ProductID uint
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for product %d", e.ProductID)
}
