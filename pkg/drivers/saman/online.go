package saman

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cassiomorais/multipay/pkg/gateway"
	"github.com/cassiomorais/multipay/pkg/soap"
)

// OnlineName identifies the Saman OnlinePG variant.
const OnlineName = "samanonline"

// OnlineConfig holds the OnlinePG settings. The purchase URL is the REST
// token endpoint; verification still goes through the SOAP WSDL.
type OnlineConfig struct {
	TerminalID         string `validate:"required"`
	CallbackURL        string `validate:"required,url"`
	APIPurchaseURL     string `validate:"required,url"`
	APIPaymentURL      string `validate:"required,url"`
	APIVerificationURL string `validate:"required,url"`
}

// OnlinePG is the Saman OnlinePG adapter: token over a form POST, payment
// and verification like the classic driver.
type OnlinePG struct {
	gateway.Base
	cfg    OnlineConfig
	client *http.Client
	verify soap.Caller
}

// OnlineOption customizes an OnlinePG driver.
type OnlineOption func(*OnlinePG)

// WithHTTPClient replaces the token-endpoint HTTP client.
func WithHTTPClient(c *http.Client) OnlineOption {
	return func(d *OnlinePG) { d.client = c }
}

// WithOnlineVerifyCaller replaces the verification SOAP caller.
func WithOnlineVerifyCaller(c soap.Caller) OnlineOption {
	return func(d *OnlinePG) { d.verify = c }
}

// NewOnlinePG binds an invoice and settings to a fresh OnlinePG driver.
func NewOnlinePG(invoice *gateway.Invoice, cfg OnlineConfig, opts ...OnlineOption) (*OnlinePG, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("samanonline config: %w", err)
	}
	d := &OnlinePG{
		Base: gateway.NewBase(invoice),
		cfg:  cfg,
	}
	for _, o := range opts {
		o(d)
	}
	if d.client == nil {
		d.client = &http.Client{Timeout: 30 * time.Second}
	}
	if d.verify == nil {
		d.verify = soap.NewClient(cfg.APIVerificationURL, nil)
	}
	return d, nil
}

// Name implements gateway.Driver.
func (d *OnlinePG) Name() string { return OnlineName }

type tokenResponse struct {
	Status    int                 `json:"status"`
	ErrorCode gateway.LooseString `json:"errorCode"`
	ErrorDesc string              `json:"errorDesc"`
	Token     string              `json:"token"`
}

// Purchase requests a token from the OnlinePG endpoint. The amount is sent
// in rials. A negative status is a rejection keyed by errorCode.
func (d *OnlinePG) Purchase(ctx context.Context) (string, error) {
	inv := d.Invoice()

	form := url.Values{
		"action":      {"token"},
		"TerminalId":  {d.cfg.TerminalID},
		"Amount":      {strconv.FormatInt(inv.Amount()*10, 10)},
		"ResNum":      {inv.UUID()},
		"RedirectUrl": {d.cfg.CallbackURL},
		"CellNumber":  {inv.GetDetail("mobile")},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.APIPurchaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &gateway.PurchaseFailedError{Gateway: OnlineName, Message: fmt.Sprintf("build token request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", &gateway.PurchaseFailedError{Gateway: OnlineName, Message: fmt.Sprintf("token request failed: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &gateway.PurchaseFailedError{Gateway: OnlineName, Message: fmt.Sprintf("read token response: %v", err)}
	}

	var body tokenResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", &gateway.PurchaseFailedError{Gateway: OnlineName, Message: fmt.Sprintf("malformed token response: %v", err)}
	}

	if body.Status < 0 || body.Token == "" {
		code := string(body.ErrorCode)
		return "", &gateway.PurchaseFailedError{
			Gateway: OnlineName,
			Code:    code,
			Message: purchaseStatuses.Translate(code),
		}
	}

	inv.SetTransactionID(body.Token)
	return body.Token, nil
}

// Pay builds the POST form that submits the token to the payment page.
func (d *OnlinePG) Pay() (*gateway.RedirectionForm, error) {
	token := d.Invoice().TransactionID()
	if token == "" {
		return nil, gateway.ErrMissingTransactionID
	}
	return gateway.NewRedirectionForm(d.cfg.APIPaymentURL, map[string]string{
		"Token":       token,
		"RedirectUrl": d.cfg.CallbackURL,
	}, http.MethodPost), nil
}

// Verify confirms the transaction over SOAP, exactly like the classic
// driver. The receipt is keyed by the callback TraceNo.
func (d *OnlinePG) Verify(ctx context.Context, params gateway.CallbackParams) (*gateway.Receipt, error) {
	refNum := params.Input("RefNum")
	if refNum == "" {
		return nil, &gateway.InvalidPaymentError{Gateway: OnlineName, Message: "callback did not carry a RefNum"}
	}

	body, err := d.verify.Call(ctx, "VerifyTransaction", map[string]string{
		"RefNum":     refNum,
		"MerchantID": d.cfg.TerminalID,
	})
	if err != nil {
		return nil, &gateway.InvalidPaymentError{Gateway: OnlineName, Message: fmt.Sprintf("verification request failed: %v", err)}
	}

	result, err := soap.ScalarResult(body, "VerifyTransaction")
	if err != nil {
		return nil, &gateway.InvalidPaymentError{Gateway: OnlineName, Message: fmt.Sprintf("malformed verification response: %v", err)}
	}

	status, err := strconv.ParseFloat(result, 64)
	if err != nil {
		return nil, &gateway.InvalidPaymentError{Gateway: OnlineName, Message: fmt.Sprintf("unexpected verification result %q", result)}
	}
	if status < 0 {
		code := strconv.Itoa(int(status))
		return nil, &gateway.InvalidPaymentError{
			Gateway: OnlineName,
			Code:    code,
			Message: verifyStatuses.Translate(code),
		}
	}

	receipt := gateway.NewReceipt(OnlineName, params.Input("TraceNo"))
	receipt.Detail("traceNo", params.Input("TraceNo")).
		Detail("referenceNo", params.Input("RRN")).
		Detail("transactionId", refNum).
		Detail("cardNo", params.Input("SecurePan"))
	return receipt, nil
}
