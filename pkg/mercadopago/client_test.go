package mercadopago

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.MercadoPagoConfig{
		AccessToken: "TEST-token",
		BaseURL:     server.URL,
		BackURL:     "https://loja.example.com/pedido/confirmado",
	}, nil)
	require.NoError(t, err)
	return client
}

func TestCreatePreferenceSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/checkout/preferences", r.URL.Path)
		require.Equal(t, "Bearer TEST-token", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("X-Idempotency-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "SB-1001", body["external_reference"])
		require.Equal(t, "approved", body["auto_return"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"pref-123","init_point":"https://mp.example.com/init"}`))
	})

	pref, err := client.CreatePreference(context.Background(), PreferenceParams{
		ExternalReference: "SB-1001",
		PayerEmail:        "cliente@example.com",
		Items: []PreferenceItem{
			{Title: "Vestido Midi", Quantity: 2, UnitPrice: decimal.NewFromFloat(89.90), Currency: "BRL"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "pref-123", pref.ID)
	require.Equal(t, "https://mp.example.com/init", pref.InitPoint)
}

func TestCreatePreferenceValidation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.CreatePreference(context.Background(), PreferenceParams{ExternalReference: "SB-1"})
	require.Error(t, err)

	_, err = client.CreatePreference(context.Background(), PreferenceParams{
		Items: []PreferenceItem{{Title: "x", Quantity: 1, UnitPrice: decimal.NewFromInt(1), Currency: "BRL"}},
	})
	require.Error(t, err)
}

func TestCreatePreferenceUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid items"}`))
	})

	_, err := client.CreatePreference(context.Background(), PreferenceParams{
		ExternalReference: "SB-1001",
		Items: []PreferenceItem{
			{Title: "Vestido", Quantity: 1, UnitPrice: decimal.NewFromInt(10), Currency: "BRL"},
		},
	})
	require.ErrorContains(t, err, "400")
}

func TestGetPaymentSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/payments/777", r.URL.Path)
		require.Equal(t, "Bearer TEST-token", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"id":777,"status":"approved","external_reference":"SB000042"}`))
	})

	payment, err := client.GetPayment(context.Background(), " 777 ")
	require.NoError(t, err)
	require.Equal(t, int64(777), payment.ID)
	require.Equal(t, "SB000042", payment.ExternalReference)
	require.True(t, payment.Approved())
}

func TestGetPaymentRequiresID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.GetPayment(context.Background(), "  ")
	require.Error(t, err)
}

func TestGetPaymentUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"payment not found"}`))
	})

	_, err := client.GetPayment(context.Background(), "999")
	require.ErrorContains(t, err, "404")
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient(config.MercadoPagoConfig{BaseURL: "https://api.mercadopago.com"}, nil)
	require.ErrorIs(t, err, errAccessTokenRequired)
}
