// Package idpay implements the Idpay gateway adapter (JSON REST transport).
package idpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cassiomorais/multipay/pkg/gateway"
	"github.com/go-playground/validator/v10"
)

// Name identifies this gateway.
const Name = "idpay"

var validate = validator.New()

// Config holds the Idpay credentials and endpoints. Required fields are
// validated at construction.
type Config struct {
	MerchantID         string `validate:"required"`
	CallbackURL        string `validate:"required,url"`
	APIPurchaseURL     string `validate:"required,url"`
	APIPaymentURL      string `validate:"required,url"`
	APIVerificationURL string `validate:"required,url"`
	SandboxPaymentURL  string `validate:"omitempty,url"`
	Sandbox            bool
	Description        string
}

// Driver is the Idpay adapter.
type Driver struct {
	gateway.Base
	cfg    Config
	client *http.Client
}

// New binds an invoice and settings to a fresh Idpay driver. A nil client
// gets a 30 second timeout default.
func New(invoice *gateway.Invoice, cfg Config, client *http.Client) (*Driver, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("idpay config: %w", err)
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

type purchaseRequest struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Mail     string `json:"mail,omitempty"`
	Desc     string `json:"desc,omitempty"`
	Callback string `json:"callback"`
	Reseller string `json:"reseller,omitempty"`
}

type purchaseResponse struct {
	ID           string `json:"id"`
	Link         string `json:"link"`
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// Purchase registers the invoice with Idpay. Success is signalled by a
// non-empty id in the response body, which becomes the transaction id.
func (d *Driver) Purchase(ctx context.Context) (string, error) {
	inv := d.Invoice()
	details := inv.Details()

	req := purchaseRequest{
		OrderID:  inv.UUID(),
		Amount:   inv.Amount(),
		Name:     details["name"],
		Phone:    firstNonEmpty(details["phone"], details["mobile"]),
		Mail:     firstNonEmpty(details["mail"], details["email"]),
		Desc:     firstNonEmpty(details["desc"], details["description"], d.cfg.Description),
		Callback: d.cfg.CallbackURL,
		Reseller: details["reseller"],
	}

	var resp purchaseResponse
	if err := d.post(ctx, d.cfg.APIPurchaseURL, req, &resp); err != nil {
		return "", &gateway.PurchaseFailedError{Gateway: Name, Message: err.Error()}
	}

	if resp.ID == "" {
		msg := resp.ErrorMessage
		if msg == "" {
			msg = purchaseFallbackMessage
		}
		e := &gateway.PurchaseFailedError{Gateway: Name, Message: msg}
		if resp.ErrorCode != 0 {
			e.Code = strconv.Itoa(resp.ErrorCode)
		}
		return "", e
	}

	inv.SetTransactionID(resp.ID)
	return resp.ID, nil
}

// Pay builds the GET redirect to the Idpay payment page. It requires the
// transaction id assigned by a successful Purchase.
func (d *Driver) Pay() (*gateway.RedirectionForm, error) {
	txID := d.Invoice().TransactionID()
	if txID == "" {
		return nil, gateway.ErrMissingTransactionID
	}

	payURL := d.cfg.APIPaymentURL
	if d.cfg.Sandbox && d.cfg.SandboxPaymentURL != "" {
		payURL = d.cfg.SandboxPaymentURL
	}
	return gateway.NewRedirectionForm(payURL+txID, nil, http.MethodGet), nil
}

type verifyRequest struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
}

type verifyResponse struct {
	Status    int                 `json:"status"`
	TrackID   gateway.LooseString `json:"track_id"`
	ErrorCode int                 `json:"error_code"`
}

// Verify confirms the transaction with Idpay. The transaction id comes from
// the invoice when verification runs in the purchase process, and from the
// callback "id" parameter otherwise.
func (d *Driver) Verify(ctx context.Context, params gateway.CallbackParams) (*gateway.Receipt, error) {
	txID := d.Invoice().TransactionID()
	if txID == "" {
		txID = params.Input("id")
	}

	req := verifyRequest{
		ID:      txID,
		OrderID: params.Input("order_id"),
	}

	var resp verifyResponse
	if err := d.post(ctx, d.cfg.APIVerificationURL, req, &resp); err != nil {
		return nil, &gateway.InvalidPaymentError{Gateway: Name, Message: err.Error()}
	}

	if resp.ErrorCode != 0 || resp.Status != 100 {
		code := strconv.Itoa(resp.Status)
		if resp.Status == 0 {
			code = strconv.Itoa(resp.ErrorCode)
		}
		return nil, &gateway.InvalidPaymentError{
			Gateway: Name,
			Code:    code,
			Message: verifyStatuses.Translate(code),
		}
	}

	return gateway.NewReceipt(Name, string(resp.TrackID)), nil
}

func (d *Driver) post(ctx context.Context, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", d.cfg.MerchantID)
	req.Header.Set("X-SANDBOX", sandboxHeader(d.cfg.Sandbox))

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	// Idpay encodes failures in the body alongside non-2xx statuses, so
	// the status code itself is not treated as an error.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("malformed response: %v", err)
	}
	return nil
}

func sandboxHeader(sandbox bool) string {
	if sandbox {
		return "1"
	}
	return "0"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
