package idpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/cassiomorais/multipay/pkg/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(serverURL string) Config {
	return Config{
		MerchantID:         "mid-123",
		CallbackURL:        "https://shop.example.com/callback",
		APIPurchaseURL:     serverURL + "/v1.1/payment",
		APIPaymentURL:      "https://idpay.ir/p/ws/",
		APIVerificationURL: serverURL + "/v1.1/payment/verify",
		Description:        "default description",
	}
}

func newTestDriver(t *testing.T, serverURL string) *Driver {
	t.Helper()
	inv := gateway.NewInvoice()
	require.NoError(t, inv.SetAmount(10000))
	d, err := New(inv, testConfig(serverURL), nil)
	require.NoError(t, err)
	return d
}

func TestNew_ValidatesConfig(t *testing.T) {
	_, err := New(gateway.NewInvoice(), Config{MerchantID: "mid"}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "idpay config")
}

func TestPurchase_Success_SetsTransactionID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "mid-123", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "0", r.Header.Get("X-SANDBOX"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(10000), req["amount"])
		assert.NotEmpty(t, req["order_id"])

		json.NewEncoder(w).Encode(map[string]string{"id": "abc123", "link": "https://idpay.ir/p/ws/abc123"})
	}))
	defer srv.Close()

	d := newTestDriver(t, srv.URL)

	txID, err := d.Purchase(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc123", txID)
	assert.Equal(t, "abc123", d.Invoice().TransactionID())
}

func TestPurchase_GatewayError_UsesBodyMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{"error_message": "bad", "error_code": 23})
	}))
	defer srv.Close()

	d := newTestDriver(t, srv.URL)

	_, err := d.Purchase(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrPurchaseFailed)

	var pfe *gateway.PurchaseFailedError
	require.ErrorAs(t, err, &pfe)
	assert.Equal(t, "bad", pfe.Message)
	assert.Equal(t, "23", pfe.Code)
	assert.Empty(t, d.Invoice().TransactionID())
}

func TestPurchase_MissingID_NoMessage_FallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	d := newTestDriver(t, srv.URL)

	_, err := d.Purchase(context.Background())
	var pfe *gateway.PurchaseFailedError
	require.ErrorAs(t, err, &pfe)
	assert.Equal(t, purchaseFallbackMessage, pfe.Message)
}

func TestPurchase_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close() // connection refused from here on

	d := newTestDriver(t, srv.URL)

	_, err := d.Purchase(context.Background())
	assert.ErrorIs(t, err, gateway.ErrPurchaseFailed)
	assert.Empty(t, d.Invoice().TransactionID())
}

func TestPurchase_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	d := newTestDriver(t, srv.URL)

	_, err := d.Purchase(context.Background())
	assert.ErrorIs(t, err, gateway.ErrPurchaseFailed)
}

func TestPurchase_DetailPreferenceOrder(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]string{"id": "t1"})
	}))
	defer srv.Close()

	d := newTestDriver(t, srv.URL)
	d.Detail(map[string]string{
		"mobile": "0912",
		"phone":  "021",
		"email":  "a@b.ir",
		"desc":   "short",
	})

	_, err := d.Purchase(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "021", got["phone"], "phone wins over mobile")
	assert.Equal(t, "a@b.ir", got["mail"], "email fills in when mail is absent")
	assert.Equal(t, "short", got["desc"], "desc wins over the configured default")
}

func TestPay_RequiresPurchase(t *testing.T) {
	d := newTestDriver(t, "http://unused.example.com")

	_, err := d.Pay()
	assert.ErrorIs(t, err, gateway.ErrMissingTransactionID)
}

func TestPay_IsPureAndDeterministic(t *testing.T) {
	d := newTestDriver(t, "http://unused.example.com")
	d.Invoice().SetTransactionID("abc123")

	first, err := d.Pay()
	require.NoError(t, err)
	second, err := d.Pay()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "https://idpay.ir/p/ws/abc123", first.Action)
	assert.Equal(t, http.MethodGet, first.Method)
}

func TestPay_SandboxURL(t *testing.T) {
	cfg := testConfig("http://unused.example.com")
	cfg.Sandbox = true
	cfg.SandboxPaymentURL = "https://idpay.ir/p/ws-sandbox/"

	inv := gateway.NewInvoice()
	inv.SetTransactionID("abc123")
	d, err := New(inv, cfg, nil)
	require.NoError(t, err)

	form, err := d.Pay()
	require.NoError(t, err)
	assert.Equal(t, "https://idpay.ir/p/ws-sandbox/abc123", form.Action)
}

func TestVerify_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "abc123", req["id"])
		assert.Equal(t, "ord-9", req["order_id"])

		json.NewEncoder(w).Encode(map[string]any{"status": 100, "track_id": "T1"})
	}))
	defer srv.Close()

	d := newTestDriver(t, srv.URL)
	d.Invoice().SetTransactionID("abc123")

	receipt, err := d.Verify(context.Background(), gateway.CallbackFromValues(url.Values{
		"order_id": {"ord-9"},
	}))
	require.NoError(t, err)
	assert.Equal(t, Name, receipt.GatewayName())
	assert.Equal(t, "T1", receipt.ReferenceID())
}

func TestVerify_NumericTrackID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": 100, "track_id": 98765})
	}))
	defer srv.Close()

	d := newTestDriver(t, srv.URL)
	d.Invoice().SetTransactionID("abc123")

	receipt, err := d.Verify(context.Background(), gateway.CallbackFromValues(url.Values{}))
	require.NoError(t, err)
	assert.Equal(t, "98765", receipt.ReferenceID())
}

func TestVerify_TransactionIDFromCallback(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{"status": 100, "track_id": "T2"})
	}))
	defer srv.Close()

	// A fresh invoice: verification runs in a separate process, so the
	// transaction id must travel through the callback.
	d := newTestDriver(t, srv.URL)

	_, err := d.Verify(context.Background(), gateway.CallbackFromValues(url.Values{
		"id":       {"cb-id-7"},
		"order_id": {"ord-1"},
	}))
	require.NoError(t, err)
	assert.Equal(t, "cb-id-7", got["id"])
}

func TestVerify_KnownStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": 13})
	}))
	defer srv.Close()

	d := newTestDriver(t, srv.URL)
	d.Invoice().SetTransactionID("abc123")

	_, err := d.Verify(context.Background(), gateway.CallbackFromValues(url.Values{}))
	require.Error(t, err)

	var ipe *gateway.InvalidPaymentError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, "13", ipe.Code)
	assert.Equal(t, verifyStatuses.Messages["13"], ipe.Message)
}

func TestVerify_UnknownStatusCode_FallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": 4242})
	}))
	defer srv.Close()

	d := newTestDriver(t, srv.URL)
	d.Invoice().SetTransactionID("abc123")

	_, err := d.Verify(context.Background(), gateway.CallbackFromValues(url.Values{}))
	var ipe *gateway.InvalidPaymentError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, unknownStatusMessage, ipe.Message)
}
