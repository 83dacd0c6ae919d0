// Package zarinpal implements the Zarinpal gateway adapter. The v4 JSON API
// and the legacy sandbox environment speak different wire shapes, so the
// driver switches strategy on the configured mode.
package zarinpal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cassiomorais/multipay/pkg/gateway"
	"github.com/go-playground/validator/v10"
)

// Name identifies this gateway.
const Name = "zarinpal"

// Operating modes.
const (
	ModeNormal  = "normal"
	ModeSandbox = "sandbox"
)

// Production and sandbox endpoints.
const (
	normalPurchaseURL      = "https://api.zarinpal.com/pg/v4/payment/request.json"
	normalPaymentURL       = "https://www.zarinpal.com/pg/StartPay/"
	normalVerificationURL  = "https://api.zarinpal.com/pg/v4/payment/verify.json"
	sandboxPurchaseURL     = "https://sandbox.zarinpal.com/pg/rest/WebGate/PaymentRequest.json"
	sandboxPaymentURL      = "https://sandbox.zarinpal.com/pg/StartPay/"
	sandboxVerificationURL = "https://sandbox.zarinpal.com/pg/rest/WebGate/PaymentVerification.json"
)

var validate = validator.New()

// Config holds the Zarinpal credentials. Endpoint URLs default by mode and
// only need to be set explicitly to point somewhere else.
type Config struct {
	MerchantID         string `validate:"required"`
	CallbackURL        string `validate:"required,url"`
	Mode               string `validate:"omitempty,oneof=normal sandbox"`
	Description        string
	APIPurchaseURL     string `validate:"omitempty,url"`
	APIPaymentURL      string `validate:"omitempty,url"`
	APIVerificationURL string `validate:"omitempty,url"`
}

// Driver is the Zarinpal adapter.
type Driver struct {
	gateway.Base
	cfg    Config
	client *http.Client
}

// New binds an invoice and settings to a fresh Zarinpal driver.
func New(invoice *gateway.Invoice, cfg Config, client *http.Client) (*Driver, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("zarinpal config: %w", err)
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeNormal
	}
	applyEndpointDefaults(&cfg)
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Driver{
		Base:   gateway.NewBase(invoice),
		cfg:    cfg,
		client: client,
	}, nil
}

func applyEndpointDefaults(cfg *Config) {
	purchase, payment, verification := normalPurchaseURL, normalPaymentURL, normalVerificationURL
	if cfg.Mode == ModeSandbox {
		purchase, payment, verification = sandboxPurchaseURL, sandboxPaymentURL, sandboxVerificationURL
	}
	if cfg.APIPurchaseURL == "" {
		cfg.APIPurchaseURL = purchase
	}
	if cfg.APIPaymentURL == "" {
		cfg.APIPaymentURL = payment
	}
	if cfg.APIVerificationURL == "" {
		cfg.APIVerificationURL = verification
	}
}

// Name implements gateway.Driver.
func (d *Driver) Name() string { return Name }

// callbackURL appends the invoice amount and id to the configured callback.
// Zarinpal verifies against the original amount, and purchase and verify run
// in separate requests, so the amount has to travel through the callback
// rather than through driver memory.
func (d *Driver) callbackURL() string {
	inv := d.Invoice()

	u, err := url.Parse(d.cfg.CallbackURL)
	if err != nil {
		return d.cfg.CallbackURL
	}
	q := u.Query()
	q.Set("amount", fmt.Sprintf("%d", inv.Amount()))
	q.Set("invoice", inv.UUID())
	u.RawQuery = q.Encode()
	return u.String()
}

type purchaseRequest struct {
	MerchantID  string            `json:"merchant_id"`
	Amount      int64             `json:"amount"`
	CallbackURL string            `json:"callback_url"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// The v4 API flips the types of data and errors between success and failure
// (object vs empty array), so both land in RawMessage first.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

type purchaseData struct {
	Code      int    `json:"code"`
	Authority string `json:"authority"`
	Message   string `json:"message"`
}

type verifyData struct {
	Code     int                 `json:"code"`
	RefID    gateway.LooseString `json:"ref_id"`
	CardPan  string              `json:"card_pan"`
	CardHash string              `json:"card_hash"`
	FeeType  string              `json:"fee_type"`
	Fee      int64               `json:"fee"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Legacy sandbox shapes, flat and PascalCase.
type sandboxPurchaseRequest struct {
	MerchantID  string
	Amount      int64
	CallbackURL string
	Description string
}

type sandboxPurchaseResponse struct {
	Status    int
	Authority string
}

type sandboxVerifyRequest struct {
	MerchantID string
	Authority  string
	Amount     int64
}

type sandboxVerifyResponse struct {
	Status int
	RefID  gateway.LooseString
}

// Purchase requests a payment authority. Success is code 100 with a
// non-empty authority.
func (d *Driver) Purchase(ctx context.Context) (string, error) {
	if d.cfg.Mode == ModeSandbox {
		return d.purchaseSandbox(ctx)
	}
	return d.purchaseNormal(ctx)
}

func (d *Driver) purchaseNormal(ctx context.Context) (string, error) {
	inv := d.Invoice()

	metadata := map[string]string{}
	if mobile := firstNonEmpty(inv.GetDetail("phone"), inv.GetDetail("mobile")); mobile != "" {
		metadata["mobile"] = mobile
	}
	if email := firstNonEmpty(inv.GetDetail("mail"), inv.GetDetail("email")); email != "" {
		metadata["email"] = email
	}

	raw, err := d.postJSON(ctx, d.cfg.APIPurchaseURL, purchaseRequest{
		MerchantID:  d.cfg.MerchantID,
		Amount:      inv.Amount(),
		CallbackURL: d.callbackURL(),
		Description: firstNonEmpty(inv.GetDetail("description"), d.cfg.Description),
		Metadata:    metadata,
	})
	if err != nil {
		return "", &gateway.PurchaseFailedError{Gateway: Name, Message: err.Error()}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", &gateway.PurchaseFailedError{Gateway: Name, Message: fmt.Sprintf("malformed response: %v", err)}
	}

	var data purchaseData
	if len(env.Data) > 0 {
		json.Unmarshal(env.Data, &data)
	}
	if data.Code == 100 && data.Authority != "" {
		inv.SetTransactionID(data.Authority)
		return data.Authority, nil
	}

	code, message := errorFromEnvelope(env, data.Code)
	return "", &gateway.PurchaseFailedError{Gateway: Name, Code: code, Message: message}
}

func (d *Driver) purchaseSandbox(ctx context.Context) (string, error) {
	inv := d.Invoice()

	raw, err := d.postJSON(ctx, d.cfg.APIPurchaseURL, sandboxPurchaseRequest{
		MerchantID:  d.cfg.MerchantID,
		Amount:      inv.Amount(),
		CallbackURL: d.callbackURL(),
		Description: firstNonEmpty(inv.GetDetail("description"), d.cfg.Description),
	})
	if err != nil {
		return "", &gateway.PurchaseFailedError{Gateway: Name, Message: err.Error()}
	}

	var resp sandboxPurchaseResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &gateway.PurchaseFailedError{Gateway: Name, Message: fmt.Sprintf("malformed response: %v", err)}
	}
	if resp.Status != 100 || resp.Authority == "" {
		code := fmt.Sprintf("%d", resp.Status)
		return "", &gateway.PurchaseFailedError{Gateway: Name, Code: code, Message: statuses.Translate(code)}
	}

	inv.SetTransactionID(resp.Authority)
	return resp.Authority, nil
}

// Pay builds the GET redirect to the StartPay page for the stored authority.
func (d *Driver) Pay() (*gateway.RedirectionForm, error) {
	authority := d.Invoice().TransactionID()
	if authority == "" {
		return nil, gateway.ErrMissingTransactionID
	}
	return gateway.NewRedirectionForm(d.cfg.APIPaymentURL+authority, nil, http.MethodGet), nil
}

// Verify confirms the transaction. Codes 100 and 101 both count as success;
// 101 means the transaction was already verified.
func (d *Driver) Verify(ctx context.Context, params gateway.CallbackParams) (*gateway.Receipt, error) {
	authority := d.Invoice().TransactionID()
	if authority == "" {
		authority = params.Input("Authority")
	}
	if authority == "" {
		return nil, &gateway.InvalidPaymentError{Gateway: Name, Message: "missing authority in callback"}
	}

	if d.cfg.Mode == ModeSandbox {
		return d.verifySandbox(ctx, authority)
	}
	return d.verifyNormal(ctx, authority)
}

func (d *Driver) verifyNormal(ctx context.Context, authority string) (*gateway.Receipt, error) {
	raw, err := d.postJSON(ctx, d.cfg.APIVerificationURL, map[string]any{
		"merchant_id": d.cfg.MerchantID,
		"amount":      d.Invoice().Amount(),
		"authority":   authority,
	})
	if err != nil {
		return nil, &gateway.InvalidPaymentError{Gateway: Name, Message: err.Error()}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &gateway.InvalidPaymentError{Gateway: Name, Message: fmt.Sprintf("malformed response: %v", err)}
	}

	var data verifyData
	if len(env.Data) > 0 {
		json.Unmarshal(env.Data, &data)
	}
	if data.Code == 100 || data.Code == 101 {
		receipt := gateway.NewReceipt(Name, string(data.RefID))
		receipt.Detail("authority", authority)
		if data.CardPan != "" {
			receipt.Detail("card_pan", data.CardPan)
		}
		if data.CardHash != "" {
			receipt.Detail("card_hash", data.CardHash)
		}
		if data.FeeType != "" {
			receipt.Detail("fee_type", data.FeeType)
			receipt.Detail("fee", fmt.Sprintf("%d", data.Fee))
		}
		return receipt, nil
	}

	code, message := errorFromEnvelope(env, data.Code)
	return nil, &gateway.InvalidPaymentError{Gateway: Name, Code: code, Message: message}
}

func (d *Driver) verifySandbox(ctx context.Context, authority string) (*gateway.Receipt, error) {
	raw, err := d.postJSON(ctx, d.cfg.APIVerificationURL, sandboxVerifyRequest{
		MerchantID: d.cfg.MerchantID,
		Authority:  authority,
		Amount:     d.Invoice().Amount(),
	})
	if err != nil {
		return nil, &gateway.InvalidPaymentError{Gateway: Name, Message: err.Error()}
	}

	var resp sandboxVerifyResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &gateway.InvalidPaymentError{Gateway: Name, Message: fmt.Sprintf("malformed response: %v", err)}
	}
	if resp.Status != 100 && resp.Status != 101 {
		code := fmt.Sprintf("%d", resp.Status)
		return nil, &gateway.InvalidPaymentError{Gateway: Name, Code: code, Message: statuses.Translate(code)}
	}

	receipt := gateway.NewReceipt(Name, string(resp.RefID))
	receipt.Detail("authority", authority)
	return receipt, nil
}

// errorFromEnvelope extracts code and message from a failure body, preferring
// the errors object and falling back to the status table.
func errorFromEnvelope(env envelope, dataCode int) (string, string) {
	var apiErr apiError
	if len(env.Errors) > 0 {
		json.Unmarshal(env.Errors, &apiErr)
	}

	code := apiErr.Code
	if code == 0 {
		code = dataCode
	}
	codeStr := fmt.Sprintf("%d", code)

	message := apiErr.Message
	if message == "" {
		message = statuses.Translate(codeStr)
	}
	return codeStr, message
}

func (d *Driver) postJSON(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	// Failure bodies arrive with non-2xx codes and still carry the error
	// envelope, so the status code is not checked here.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %v", err)
	}
	return raw, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
