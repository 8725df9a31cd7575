package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyOrder             = errors.New("order must contain at least one item")
	ErrInvalidQuantity        = errors.New("quantity must be at least 1")
	ErrInvalidShippingAddress = errors.New("shipping address is required")
	ErrInvalidPaymentMethod   = errors.New("unsupported payment method")
	ErrProductNotFound        = errors.New("product not found")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrOrderNotFound          = errors.New("order not found")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrStorage                = errors.New("storage failure")
)

type ProductNotFoundError struct {
	ProductID uint64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ID %d not found", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

// InsufficientStockError reports how many units are left so callers can show
// "only N left".
type InsufficientStockError struct {
	ProductID uint64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change status from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// StorageError wraps a store failure with the operation that hit it. It
// matches both ErrStorage and the underlying error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

var businessErrors = []error{
	ErrEmptyOrder,
	ErrInvalidQuantity,
	ErrInvalidShippingAddress,
	ErrInvalidPaymentMethod,
	ErrProductNotFound,
	ErrInsufficientStock,
	ErrOrderNotFound,
	ErrInvalidTransition,
}

// IsBusinessError reports whether err is a rule violation rather than an
// infrastructure failure.
func IsBusinessError(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// AsStorage wraps err as a StorageError unless it is nil, already a storage
// error, or a business error.
func AsStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsBusinessError(err) || errors.Is(err, ErrStorage) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
