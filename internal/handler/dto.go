package handler

import (
	"time"

	"github.com/cassiomorais/multipay/pkg/gateway"
)

type PurchaseRequest struct {
	Gateway string            `json:"gateway" validate:"required"`
	Amount  int64             `json:"amount" validate:"required,gt=0"`
	Details map[string]string `json:"details"`
}

type PurchaseResponse struct {
	InvoiceID     string                   `json:"invoice_id"`
	Gateway       string                   `json:"gateway"`
	TransactionID string                   `json:"transaction_id"`
	Redirect      *gateway.RedirectionForm `json:"redirect"`
}

type ReceiptResponse struct {
	Gateway     string            `json:"gateway"`
	ReferenceID string            `json:"reference_id"`
	Date        time.Time         `json:"date"`
	Details     map[string]string `json:"details,omitempty"`
}

type GatewaysResponse struct {
	Gateways []string `json:"gateways"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
