package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount is returned when an invoice amount is not a
	// positive value.
	ErrInvalidAmount = errors.New("amount must be a positive value")

	// ErrMissingTransactionID is returned by Pay when it is called before
	// a successful purchase assigned a transaction id.
	ErrMissingTransactionID = errors.New("invoice has no transaction id")

	// ErrPurchaseFailed is the sentinel every *PurchaseFailedError
	// unwraps to.
	ErrPurchaseFailed = errors.New("purchase failed")

	// ErrInvalidPayment is the sentinel every *InvalidPaymentError
	// unwraps to.
	ErrInvalidPayment = errors.New("payment verification failed")
)

// PurchaseFailedError reports that a gateway rejected a purchase, or that
// the purchase round trip itself failed. Code carries the raw gateway
// status code when one was present.
type PurchaseFailedError struct {
	Gateway string
	Code    string
	Message string
}

func (e *PurchaseFailedError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: purchase failed (code %s): %s", e.Gateway, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: purchase failed: %s", e.Gateway, e.Message)
}

func (e *PurchaseFailedError) Unwrap() error {
	return ErrPurchaseFailed
}

// InvalidPaymentError reports that a gateway refused to confirm a
// transaction during verification.
type InvalidPaymentError struct {
	Gateway string
	Code    string
	Message string
}

func (e *InvalidPaymentError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: payment verification failed (code %s): %s", e.Gateway, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: payment verification failed: %s", e.Gateway, e.Message)
}

func (e *InvalidPaymentError) Unwrap() error {
	return ErrInvalidPayment
}
