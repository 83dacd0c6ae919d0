package zarinpal

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

func testConfig(serverURL, mode string) Config {
	return Config{
		MerchantID:         "zp-merchant",
		CallbackURL:        "https://shop.example.com/callback",
		Mode:               mode,
		APIPurchaseURL:     serverURL + "/purchase",
		APIPaymentURL:      serverURL + "/startpay/",
		APIVerificationURL: serverURL + "/verify",
	}
}

func newTestDriver(t *testing.T, cfg Config) *Driver {
	t.Helper()
	inv := gateway.NewInvoice()
	require.NoError(t, inv.SetAmount(25000))
	d, err := New(inv, cfg, nil)
	require.NoError(t, err)
	return d
}

func TestNew_ValidatesConfig(t *testing.T) {
	_, err := New(gateway.NewInvoice(), Config{}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "zarinpal config")
}

func TestNew_DefaultsEndpointsByMode(t *testing.T) {
	d, err := New(gateway.NewInvoice(), Config{
		MerchantID:  "zp-merchant",
		CallbackURL: "https://shop.example.com/callback",
		Mode:        ModeSandbox,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, sandboxPurchaseURL, d.cfg.APIPurchaseURL)
	assert.Equal(t, sandboxPaymentURL, d.cfg.APIPaymentURL)

	d, err = New(gateway.NewInvoice(), Config{
		MerchantID:  "zp-merchant",
		CallbackURL: "https://shop.example.com/callback",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, ModeNormal, d.cfg.Mode)
	assert.Equal(t, normalPurchaseURL, d.cfg.APIPurchaseURL)
}

func TestPurchase_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "zp-merchant", req["merchant_id"])
		assert.Equal(t, float64(25000), req["amount"])
		assert.Contains(t, req["callback_url"], "https://shop.example.com/callback")

		json.NewEncoder(w).Encode(map[string]any{
			"data":   map[string]any{"code": 100, "authority": "A0000012345"},
			"errors": []any{},
		})
	}))
	defer srv.Close()

	d := newTestDriver(t, testConfig(srv.URL, ModeNormal))

	txID, err := d.Purchase(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A0000012345", txID)
	assert.Equal(t, "A0000012345", d.Invoice().TransactionID())
}

func TestPurchase_CallbackCarriesAmountAndInvoiceID(t *testing.T) {
	var sentCallback string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		sentCallback, _ = req["callback_url"].(string)

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"code": 100, "authority": "A1"},
		})
	}))
	defer srv.Close()

	d := newTestDriver(t, testConfig(srv.URL, ModeNormal))

	_, err := d.Purchase(context.Background())
	require.NoError(t, err)

	// Verification in the callback request needs the original amount; the
	// driver has no memory across the redirect, so it must ride the URL.
	u, err := url.Parse(sentCallback)
	require.NoError(t, err)
	assert.Equal(t, "25000", u.Query().Get("amount"))
	assert.Equal(t, d.Invoice().UUID(), u.Query().Get("invoice"))
}

func TestPurchase_Sandbox_CallbackCarriesAmount(t *testing.T) {
	var sentCallback string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		sentCallback, _ = req["CallbackURL"].(string)

		json.NewEncoder(w).Encode(map[string]any{"Status": 100, "Authority": "SB-1"})
	}))
	defer srv.Close()

	d := newTestDriver(t, testConfig(srv.URL, ModeSandbox))

	_, err := d.Purchase(context.Background())
	require.NoError(t, err)

	u, err := url.Parse(sentCallback)
	require.NoError(t, err)
	assert.Equal(t, "25000", u.Query().Get("amount"))
}

func TestVerify_UsesAmountRestoredFromCallback(t *testing.T) {
	var sentAmount float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		sentAmount, _ = req["amount"].(float64)

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"code": 100, "ref_id": "777"},
		})
	}))
	defer srv.Close()

	// A fresh invoice rebuilt from callback parameters, the way the service
	// callback endpoint does it between the two requests of the flow.
	inv := gateway.NewInvoice()
	require.NoError(t, inv.SetAmount(25000))
	d, err := New(inv, testConfig(srv.URL, ModeNormal), nil)
	require.NoError(t, err)

	_, err = d.Verify(context.Background(), gateway.CallbackFromValues(url.Values{
		"Authority": {"A1"},
	}))
	require.NoError(t, err)
	assert.Equal(t, float64(25000), sentAmount)
}

func TestPurchase_MapsPhoneAndMailIntoMetadata(t *testing.T) {
	var metadata map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		metadata, _ = req["metadata"].(map[string]any)

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"code": 100, "authority": "A1"},
		})
	}))
	defer srv.Close()

	d := newTestDriver(t, testConfig(srv.URL, ModeNormal))
	d.Detail(map[string]string{"phone": "09121234567", "mail": "payer@example.com"})

	_, err := d.Purchase(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "09121234567", metadata["mobile"])
	assert.Equal(t, "payer@example.com", metadata["email"])
}

func TestPurchase_ErrorsObject_WinsOverStatusTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"data":   []any{},
			"errors": map[string]any{"code": -9, "message": "The input params invalid"},
		})
	}))
	defer srv.Close()

	d := newTestDriver(t, testConfig(srv.URL, ModeNormal))

	_, err := d.Purchase(context.Background())
	require.Error(t, err)

	var pfe *gateway.PurchaseFailedError
	require.ErrorAs(t, err, &pfe)
	assert.Equal(t, "-9", pfe.Code)
	assert.Equal(t, "The input params invalid", pfe.Message)
	assert.Empty(t, d.Invoice().TransactionID())
}

func TestPurchase_ErrorsWithoutMessage_TranslatesCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data":   []any{},
			"errors": map[string]any{"code": -11},
		})
	}))
	defer srv.Close()

	d := newTestDriver(t, testConfig(srv.URL, ModeNormal))

	_, err := d.Purchase(context.Background())
	var pfe *gateway.PurchaseFailedError
	require.ErrorAs(t, err, &pfe)
	assert.Equal(t, statuses.Messages["-11"], pfe.Message)
}

func TestPurchase_EmptyAuthority_Fails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"code": 100, "authority": ""},
		})
	}))
	defer srv.Close()

	d := newTestDriver(t, testConfig(srv.URL, ModeNormal))

	_, err := d.Purchase(context.Background())
	assert.ErrorIs(t, err, gateway.ErrPurchaseFailed)
}

func TestPurchase_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	d := newTestDriver(t, testConfig(srv.URL, ModeNormal))

	_, err := d.Purchase(context.Background())
	assert.ErrorIs(t, err, gateway.ErrPurchaseFailed)
}

func TestPurchase_Sandbox_FlatWireShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "zp-merchant", req["MerchantID"])
		assert.Equal(t, float64(25000), req["Amount"])

		json.NewEncoder(w).Encode(map[string]any{"Status": 100, "Authority": "SB-1"})
	}))
	defer srv.Close()

	d := newTestDriver(t, testConfig(srv.URL, ModeSandbox))

	txID, err := d.Purchase(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SB-1", txID)
}

func TestPurchase_Sandbox_NonHundredStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"Status": -12})
	}))
	defer srv.Close()

	d := newTestDriver(t, testConfig(srv.URL, ModeSandbox))

	_, err := d.Purchase(context.Background())
	var pfe *gateway.PurchaseFailedError
	require.ErrorAs(t, err, &pfe)
	assert.Equal(t, "-12", pfe.Code)
	assert.Equal(t, statuses.Messages["-12"], pfe.Message)
}

func TestPay_BuildsStartPayRedirect(t *testing.T) {
	d := newTestDriver(t, testConfig("http://unused.example.com", ModeNormal))
	d.Invoice().SetTransactionID("A0000012345")

	form, err := d.Pay()
	require.NoError(t, err)
	assert.Equal(t, "http://unused.example.com/startpay/A0000012345", form.Action)
	assert.Equal(t, http.MethodGet, form.Method)

	again, err := d.Pay()
	require.NoError(t, err)
	assert.Equal(t, form, again)
}

func TestPay_RequiresPurchase(t *testing.T) {
	d := newTestDriver(t, testConfig("http://unused.example.com", ModeNormal))

	_, err := d.Pay()
	assert.ErrorIs(t, err, gateway.ErrMissingTransactionID)
}

func TestVerify_Success_BuildsReceipt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "A0000012345", req["authority"])
		assert.Equal(t, float64(25000), req["amount"])

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"code":      100,
				"ref_id":    201244455,
				"card_pan":  "502229******1234",
				"card_hash": "AB12CD",
				"fee_type":  "Merchant",
				"fee":       1200,
			},
		})
	}))
	defer srv.Close()

	d := newTestDriver(t, testConfig(srv.URL, ModeNormal))

	receipt, err := d.Verify(context.Background(), gateway.CallbackFromValues(url.Values{
		"Authority": {"A0000012345"},
		"Status":    {"OK"},
	}))
	require.NoError(t, err)

	assert.Equal(t, Name, receipt.GatewayName())
	assert.Equal(t, "201244455", receipt.ReferenceID())
	assert.Equal(t, "A0000012345", receipt.GetDetail("authority"))
	assert.Equal(t, "502229******1234", receipt.GetDetail("card_pan"))
	assert.Equal(t, "AB12CD", receipt.GetDetail("card_hash"))
	assert.Equal(t, "1200", receipt.GetDetail("fee"))
}

func TestVerify_AlreadyVerified_IsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"code": 101, "ref_id": "999"},
		})
	}))
	defer srv.Close()

	d := newTestDriver(t, testConfig(srv.URL, ModeNormal))

	receipt, err := d.Verify(context.Background(), gateway.CallbackFromValues(url.Values{"Authority": {"A1"}}))
	require.NoError(t, err)
	assert.Equal(t, "999", receipt.ReferenceID())
}

func TestVerify_Failure_TranslatesCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"data":   []any{},
			"errors": map[string]any{"code": -51},
		})
	}))
	defer srv.Close()

	d := newTestDriver(t, testConfig(srv.URL, ModeNormal))

	_, err := d.Verify(context.Background(), gateway.CallbackFromValues(url.Values{"Authority": {"A1"}}))
	require.Error(t, err)

	var ipe *gateway.InvalidPaymentError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, "-51", ipe.Code)
	assert.Equal(t, statuses.Messages["-51"], ipe.Message)
}

func TestVerify_MissingAuthority(t *testing.T) {
	d := newTestDriver(t, testConfig("http://unused.example.com", ModeNormal))

	_, err := d.Verify(context.Background(), gateway.CallbackFromValues(url.Values{}))
	assert.ErrorIs(t, err, gateway.ErrInvalidPayment)
}

func TestVerify_Sandbox(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "SB-1", req["Authority"])

		json.NewEncoder(w).Encode(map[string]any{"Status": 100, "RefID": 42})
	}))
	defer srv.Close()

	d := newTestDriver(t, testConfig(srv.URL, ModeSandbox))

	receipt, err := d.Verify(context.Background(), gateway.CallbackFromValues(url.Values{"Authority": {"SB-1"}}))
	require.NoError(t, err)
	assert.Equal(t, "42", receipt.ReferenceID())
}

func TestVerify_Sandbox_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"Status": -54})
	}))
	defer srv.Close()

	d := newTestDriver(t, testConfig(srv.URL, ModeSandbox))

	_, err := d.Verify(context.Background(), gateway.CallbackFromValues(url.Values{"Authority": {"SB-1"}}))
	var ipe *gateway.InvalidPaymentError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, statuses.Messages["-54"], ipe.Message)
}
