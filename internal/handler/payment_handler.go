package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cassiomorais/multipay/internal/observability"
	"github.com/cassiomorais/multipay/internal/registry"
	"github.com/cassiomorais/multipay/pkg/gateway"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// PaymentHandler exposes the purchase and verification endpoints. Every
// request builds a fresh driver; the callback carries the correlation data
// the gateway needs to resume.
type PaymentHandler struct {
	registry *registry.Registry
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

func NewPaymentHandler(reg *registry.Registry, m *observability.Metrics, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{registry: reg, metrics: m, logger: logger}
}

// Purchase registers an invoice with the requested gateway and returns the
// redirection the payer should follow.
func (h *PaymentHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	invoice := gateway.NewInvoice()
	if err := invoice.SetAmount(req.Amount); err != nil {
		writeError(w, err)
		return
	}
	invoice.MergeDetails(req.Details)

	driver, err := h.registry.Driver(req.Gateway, invoice)
	if err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	txID, err := driver.Purchase(r.Context())
	h.metrics.GatewayRequestDuration.WithLabelValues(driver.Name(), "purchase").Observe(time.Since(start).Seconds())
	if err != nil {
		h.metrics.PurchasesTotal.WithLabelValues(driver.Name(), "failed").Inc()
		h.logger.Warn().Err(err).
			Str("gateway", driver.Name()).
			Str("invoice_id", invoice.UUID()).
			Msg("purchase failed")
		writeError(w, err)
		return
	}
	h.metrics.PurchasesTotal.WithLabelValues(driver.Name(), "success").Inc()

	redirect, err := driver.Pay()
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info().
		Str("gateway", driver.Name()).
		Str("invoice_id", invoice.UUID()).
		Str("transaction_id", txID).
		Msg("purchase succeeded")

	writeJSON(w, http.StatusCreated, PurchaseResponse{
		InvoiceID:     invoice.UUID(),
		Gateway:       driver.Name(),
		TransactionID: txID,
		Redirect:      redirect,
	})
}

// Callback verifies a returning payment. The gateway name rides in the URL
// and the correlation identifiers in the callback parameters; the optional
// amount query parameter rebuilds the invoice for gateways that verify
// against it.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "gateway")

	params := gateway.CallbackFromRequest(r)

	invoice := gateway.NewInvoice()
	if raw := params.Input("amount"); raw != "" {
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || invoice.SetAmount(amount) != nil {
			writeError(w, gateway.ErrInvalidAmount)
			return
		}
	}

	driver, err := h.registry.Driver(name, invoice)
	if err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	receipt, err := driver.Verify(r.Context(), params)
	h.metrics.GatewayRequestDuration.WithLabelValues(driver.Name(), "verify").Observe(time.Since(start).Seconds())
	if err != nil {
		h.metrics.VerificationsTotal.WithLabelValues(driver.Name(), "failed").Inc()
		h.logger.Warn().Err(err).
			Str("gateway", driver.Name()).
			Msg("verification failed")
		writeError(w, err)
		return
	}
	h.metrics.VerificationsTotal.WithLabelValues(driver.Name(), "success").Inc()

	h.logger.Info().
		Str("gateway", driver.Name()).
		Str("reference_id", receipt.ReferenceID()).
		Msg("payment verified")

	writeJSON(w, http.StatusOK, ReceiptResponse{
		Gateway:     receipt.GatewayName(),
		ReferenceID: receipt.ReferenceID(),
		Date:        receipt.Date(),
		Details:     receipt.Details(),
	})
}

// Gateways lists the gateways enabled by configuration.
func (h *PaymentHandler) Gateways(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, GatewaysResponse{Gateways: h.registry.Names()})
}
