package gateway

import "context"

// Driver is the contract every gateway adapter satisfies. One concrete type
// exists per gateway; callers hold the interface and select the
// implementation by configuration.
//
// The logical lifecycle is purchase -> pay -> verify. Purchase registers the
// invoice with the remote gateway and assigns the transaction id. Pay builds
// the redirection instruction without any network call. Verify confirms the
// transaction using the parameters the gateway sent to the callback URL, and
// is the only way to obtain a Receipt. Purchase failures surface as
// *PurchaseFailedError, verification failures as *InvalidPaymentError; both
// are terminal for the attempt, and a retry requires a fresh Invoice/Driver
// pair.
type Driver interface {
	// Name identifies the gateway (e.g. "idpay").
	Name() string
	// Invoice returns the invoice bound at construction.
	Invoice() *Invoice
	// Amount sets the invoice amount.
	Amount(amount int64) error
	// Detail merges entries into the invoice detail map.
	Detail(details map[string]string)
	// Purchase registers the invoice with the gateway and returns the
	// transaction id it issued.
	Purchase(ctx context.Context) (string, error)
	// Pay builds the redirection form for the transaction purchased
	// earlier. It performs no network I/O.
	Pay() (*RedirectionForm, error)
	// Verify confirms the transaction with the gateway, reading
	// correlation data from the callback parameters.
	Verify(ctx context.Context, params CallbackParams) (*Receipt, error)
}

// Base carries the invoice a driver binds at construction and implements the
// Invoice delegation shared by every adapter. Adapters embed it.
type Base struct {
	invoice *Invoice
}

// NewBase binds an invoice to an adapter.
func NewBase(invoice *Invoice) Base {
	return Base{invoice: invoice}
}

// Invoice returns the bound invoice.
func (b *Base) Invoice() *Invoice {
	return b.invoice
}

// Amount delegates to the invoice amount setter.
func (b *Base) Amount(amount int64) error {
	return b.invoice.SetAmount(amount)
}

// Detail merges the given entries into the invoice details.
func (b *Base) Detail(details map[string]string) {
	b.invoice.MergeDetails(details)
}
