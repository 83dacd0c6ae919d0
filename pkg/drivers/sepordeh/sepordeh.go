// Package sepordeh implements the Sepordeh gateway adapter (form-encoded
// REST transport).
package sepordeh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cassiomorais/multipay/pkg/gateway"
	"github.com/go-playground/validator/v10"
)

// Name identifies this gateway.
const Name = "sepordeh"

// Payment page modes.
const (
	ModeNormal = "normal"
	ModeDirect = "direct"
)

var validate = validator.New()

// Config holds the Sepordeh credentials and endpoints. Mode selects between
// the normal payment page and the direct one.
type Config struct {
	MerchantID          string `validate:"required"`
	CallbackURL         string `validate:"required,url"`
	APIPurchaseURL      string `validate:"required,url"`
	APIPaymentURL       string `validate:"required,url"`
	APIDirectPaymentURL string `validate:"omitempty,url"`
	APIVerificationURL  string `validate:"required,url"`
	Mode                string `validate:"omitempty,oneof=normal direct"`
	Description         string
}

// Driver is the Sepordeh adapter.
type Driver struct {
	gateway.Base
	cfg    Config
	client *http.Client
}

// New binds an invoice and settings to a fresh Sepordeh driver.
func New(invoice *gateway.Invoice, cfg Config, client *http.Client) (*Driver, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("sepordeh config: %w", err)
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeNormal
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Driver{
		Base:   gateway.NewBase(invoice),
		cfg:    cfg,
		client: client,
	}, nil
}

// Name implements gateway.Driver.
func (d *Driver) Name() string { return Name }

type apiResponse struct {
	Status      int    `json:"status"`
	Message     string `json:"message"`
	Information struct {
		InvoiceID gateway.LooseString `json:"invoice_id"`
		Card      string              `json:"card"`
	} `json:"information"`
}

// Purchase registers the invoice. Success is status 200 with an invoice id;
// any other status raises a purchase failure with the body message, falling
// back to the status table.
func (d *Driver) Purchase(ctx context.Context) (string, error) {
	inv := d.Invoice()

	form := url.Values{
		"merchant":    {d.cfg.MerchantID},
		"amount":      {fmt.Sprintf("%d", inv.Amount())},
		"phone":       {inv.GetDetail("phone")},
		"orderId":     {inv.GetDetail("orderId")},
		"callback":    {d.cfg.CallbackURL},
		"description": {firstNonEmpty(inv.GetDetail("description"), d.cfg.Description)},
	}

	body, err := d.postForm(ctx, d.cfg.APIPurchaseURL, form)
	if err != nil {
		return "", &gateway.PurchaseFailedError{Gateway: Name, Message: err.Error()}
	}

	if body.Status != 200 {
		return "", &gateway.PurchaseFailedError{
			Gateway: Name,
			Code:    fmt.Sprintf("%d", body.Status),
			Message: firstNonEmpty(body.Message, statuses.Translate(fmt.Sprintf("%d", body.Status))),
		}
	}

	txID := string(body.Information.InvoiceID)
	inv.SetTransactionID(txID)
	return txID, nil
}

// Pay builds the GET redirect to the payment page. Direct mode uses the
// direct payment base URL.
func (d *Driver) Pay() (*gateway.RedirectionForm, error) {
	txID := d.Invoice().TransactionID()
	if txID == "" {
		return nil, gateway.ErrMissingTransactionID
	}

	base := d.cfg.APIPaymentURL
	if d.cfg.Mode == ModeDirect && d.cfg.APIDirectPaymentURL != "" {
		base = d.cfg.APIDirectPaymentURL
	}
	return gateway.NewRedirectionForm(base+txID, nil, http.MethodGet), nil
}

// Verify confirms the transaction. The authority comes from the invoice
// when present and from the callback "authority" parameter otherwise.
func (d *Driver) Verify(ctx context.Context, params gateway.CallbackParams) (*gateway.Receipt, error) {
	authority := d.Invoice().TransactionID()
	if authority == "" {
		authority = params.Input("authority")
	}

	form := url.Values{
		"merchant":  {d.cfg.MerchantID},
		"authority": {authority},
	}

	body, err := d.postForm(ctx, d.cfg.APIVerificationURL, form)
	if err != nil {
		return nil, &gateway.InvalidPaymentError{Gateway: Name, Message: err.Error()}
	}

	if body.Status != 200 {
		return nil, &gateway.InvalidPaymentError{
			Gateway: Name,
			Code:    fmt.Sprintf("%d", body.Status),
			Message: firstNonEmpty(body.Message, statuses.Translate(fmt.Sprintf("%d", body.Status))),
		}
	}

	receipt := gateway.NewReceipt(Name, string(body.Information.InvoiceID))
	receipt.Detail("card", body.Information.Card).
		Detail("orderId", params.Input("orderId"))
	return receipt, nil
}

func (d *Driver) postForm(ctx context.Context, endpoint string, form url.Values) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %v", err)
	}

	var body apiResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("malformed response: %v", err)
	}
	return &body, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
