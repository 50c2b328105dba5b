package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to order")
	ErrMissingProductIDs = errors.New("some items are missing product ids, remove and re-add them")
	ErrMissingCustomer   = errors.New("customer first name, last name, phone and email are required")
	ErrMissingDelivery   = errors.New("delivery method, type and city are required")
	ErrSubmitInFlight    = errors.New("an order submission is already in progress")
)

// BackendError carries a non-success response from the commerce backend so
// the user can see why the order failed.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("order creation failed (status %d): %s", e.Status, e.Message)
}
