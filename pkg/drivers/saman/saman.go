// Package saman implements the Saman bank gateway adapters: the classic
// SOAP token flow and the newer OnlinePG token endpoint. Both verify over
// SOAP.
package saman

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cassiomorais/multipay/pkg/gateway"
	"github.com/cassiomorais/multipay/pkg/soap"
	"github.com/go-playground/validator/v10"
)

// Name identifies the classic Saman gateway.
const Name = "saman"

var validate = validator.New()

// Config holds the Saman credentials and endpoints. The purchase and
// verification URLs point at the bank's WSDL endpoints.
type Config struct {
	MerchantID         string `validate:"required"`
	CallbackURL        string `validate:"required,url"`
	APIPurchaseURL     string `validate:"required,url"`
	APIPaymentURL      string `validate:"required,url"`
	APIVerificationURL string `validate:"required,url"`
}

// Driver is the classic Saman adapter.
type Driver struct {
	gateway.Base
	cfg      Config
	purchase soap.Caller
	verify   soap.Caller
}

// Option customizes a Driver, mainly to stub the SOAP transport in tests.
type Option func(*Driver)

// WithPurchaseCaller replaces the token-request SOAP caller.
func WithPurchaseCaller(c soap.Caller) Option {
	return func(d *Driver) { d.purchase = c }
}

// WithVerifyCaller replaces the verification SOAP caller.
func WithVerifyCaller(c soap.Caller) Option {
	return func(d *Driver) { d.verify = c }
}

// New binds an invoice and settings to a fresh Saman driver.
func New(invoice *gateway.Invoice, cfg Config, opts ...Option) (*Driver, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("saman config: %w", err)
	}
	d := &Driver{
		Base: gateway.NewBase(invoice),
		cfg:  cfg,
	}
	for _, o := range opts {
		o(d)
	}
	if d.purchase == nil {
		d.purchase = soap.NewClient(cfg.APIPurchaseURL, nil)
	}
	if d.verify == nil {
		d.verify = soap.NewClient(cfg.APIVerificationURL, nil)
	}
	return d, nil
}

// Name implements gateway.Driver.
func (d *Driver) Name() string { return Name }

// Purchase requests a payment token from the bank. Saman wants the amount
// in rials, so the invoice amount is multiplied by ten here. A negative
// numeric result is a rejection; anything else is the token.
func (d *Driver) Purchase(ctx context.Context) (string, error) {
	inv := d.Invoice()

	params := map[string]string{
		"MID":        d.cfg.MerchantID,
		"ResNum":     inv.UUID(),
		"Amount":     strconv.FormatInt(inv.Amount()*10, 10),
		"CellNumber": inv.GetDetail("mobile"),
	}

	body, err := d.purchase.Call(ctx, "RequestToken", params)
	if err != nil {
		return "", &gateway.PurchaseFailedError{Gateway: Name, Message: fmt.Sprintf("token request failed: %v", err)}
	}

	result, err := soap.ScalarResult(body, "RequestToken")
	if err != nil {
		return "", &gateway.PurchaseFailedError{Gateway: Name, Message: fmt.Sprintf("malformed token response: %v", err)}
	}

	if n, convErr := strconv.ParseInt(result, 10, 64); convErr == nil && n < 0 {
		return "", &gateway.PurchaseFailedError{
			Gateway: Name,
			Code:    result,
			Message: purchaseStatuses.Translate(result),
		}
	}

	inv.SetTransactionID(result)
	return result, nil
}

// Pay builds the POST form that submits the token to the bank's payment
// page.
func (d *Driver) Pay() (*gateway.RedirectionForm, error) {
	token := d.Invoice().TransactionID()
	if token == "" {
		return nil, gateway.ErrMissingTransactionID
	}
	return gateway.NewRedirectionForm(d.cfg.APIPaymentURL, map[string]string{
		"Token":       token,
		"RedirectUrl": d.cfg.CallbackURL,
	}, http.MethodPost), nil
}

// Verify confirms the transaction identified by the callback RefNum. A
// negative result is a rejection; a non-negative result is the verified
// amount.
func (d *Driver) Verify(ctx context.Context, params gateway.CallbackParams) (*gateway.Receipt, error) {
	refNum := params.Input("RefNum")
	if refNum == "" {
		return nil, &gateway.InvalidPaymentError{Gateway: Name, Message: "callback did not carry a RefNum"}
	}

	body, err := d.verify.Call(ctx, "VerifyTransaction", map[string]string{
		"RefNum":     refNum,
		"MerchantID": d.cfg.MerchantID,
	})
	if err != nil {
		return nil, &gateway.InvalidPaymentError{Gateway: Name, Message: fmt.Sprintf("verification request failed: %v", err)}
	}

	result, err := soap.ScalarResult(body, "VerifyTransaction")
	if err != nil {
		return nil, &gateway.InvalidPaymentError{Gateway: Name, Message: fmt.Sprintf("malformed verification response: %v", err)}
	}

	status, err := strconv.ParseFloat(result, 64)
	if err != nil {
		return nil, &gateway.InvalidPaymentError{Gateway: Name, Message: fmt.Sprintf("unexpected verification result %q", result)}
	}
	if status < 0 {
		code := strconv.Itoa(int(status))
		return nil, &gateway.InvalidPaymentError{
			Gateway: Name,
			Code:    code,
			Message: verifyStatuses.Translate(code),
		}
	}

	receipt := gateway.NewReceipt(Name, refNum)
	receipt.Detail("traceNo", params.Input("TraceNo")).
		Detail("referenceNo", params.Input("RRN")).
		Detail("transactionId", refNum).
		Detail("cardNo", params.Input("SecurePan"))
	return receipt, nil
}
