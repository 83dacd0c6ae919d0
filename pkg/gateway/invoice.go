package gateway

import (
	"github.com/google/uuid"
)

// Invoice is the payment request under construction: an amount, free-form
// gateway details and a process-unique identifier. It is created by the
// caller, bound to a Driver, and scoped to a single payment attempt.
type Invoice struct {
	uuid          string
	amount        int64
	details       map[string]string
	transactionID string
}

// NewInvoice creates an invoice with a freshly generated identifier.
func NewInvoice() *Invoice {
	return &Invoice{
		uuid:    uuid.New().String(),
		details: make(map[string]string),
	}
}

// UUID returns the process-unique identifier assigned at construction.
func (i *Invoice) UUID() string {
	return i.uuid
}

// SetAmount sets the invoice amount in the major currency unit. Adapters
// whose gateway expects a subunit convert on their side.
func (i *Invoice) SetAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	i.amount = amount
	return nil
}

// Amount returns the current invoice amount.
func (i *Invoice) Amount() int64 {
	return i.amount
}

// Detail sets a single detail entry, overwriting any previous value.
func (i *Invoice) Detail(key, value string) {
	i.details[key] = value
}

// MergeDetails merges the given entries into the detail map. On key
// collision the incoming value wins.
func (i *Invoice) MergeDetails(details map[string]string) {
	for k, v := range details {
		i.details[k] = v
	}
}

// GetDetail returns the detail stored under key, or "" when absent.
func (i *Invoice) GetDetail(key string) string {
	return i.details[key]
}

// Details returns a copy of the detail map.
func (i *Invoice) Details() map[string]string {
	out := make(map[string]string, len(i.details))
	for k, v := range i.details {
		out[k] = v
	}
	return out
}

// SetTransactionID records the gateway-issued transaction id. Adapters call
// this once, after a successful purchase.
func (i *Invoice) SetTransactionID(id string) {
	i.transactionID = id
}

// TransactionID returns the gateway-issued transaction id, or "" before a
// successful purchase.
func (i *Invoice) TransactionID() string {
	return i.transactionID
}
