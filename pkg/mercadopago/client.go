package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/config"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
)

var (
	errAccessTokenRequired = errors.New("mercadopago access token is required")
	errBaseURLRequired     = errors.New("mercadopago base url is required")
)

// Client wraps the Checkout Pro preference API with centralized auth,
// idempotency and logging.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	backURL     string
	logger      *logger.Logger
}

// NewClient builds a Mercado Pago client and validates the credentials.
func NewClient(cfg config.MercadoPagoConfig, logg *logger.Logger) (*Client, error) {
	accessToken := strings.TrimSpace(cfg.AccessToken)
	if accessToken == "" {
		return nil, errAccessTokenRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		accessToken: accessToken,
		backURL:     strings.TrimSpace(cfg.BackURL),
		logger:      logg,
	}, nil
}

// PreferenceItem is one purchasable line inside a checkout preference.
type PreferenceItem struct {
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  string          `json:"currency_id"`
}

// PreferenceParams describes the order being handed to Checkout Pro.
type PreferenceParams struct {
	ExternalReference string
	PayerEmail        string
	PayerName         string
	Items             []PreferenceItem
}

// Preference is the subset of the API response checkout cares about.
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type preferenceRequest struct {
	ExternalReference string           `json:"external_reference"`
	Items             []PreferenceItem `json:"items"`
	Payer             *preferencePayer `json:"payer,omitempty"`
	BackURLs          *backURLs        `json:"back_urls,omitempty"`
	AutoReturn        string           `json:"auto_return,omitempty"`
}

type preferencePayer struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

type backURLs struct {
	Success string `json:"success,omitempty"`
	Pending string `json:"pending,omitempty"`
	Failure string `json:"failure,omitempty"`
}

// CreatePreference registers a Checkout Pro preference and returns the
// redirect URL the storefront sends the customer to.
func (c *Client) CreatePreference(ctx context.Context, params PreferenceParams) (*Preference, error) {
	if len(params.Items) == 0 {
		return nil, errors.New("at least one item is required")
	}
	if strings.TrimSpace(params.ExternalReference) == "" {
		return nil, errors.New("external reference is required")
	}

	reqBody := preferenceRequest{
		ExternalReference: params.ExternalReference,
		Items:             params.Items,
	}
	if params.PayerEmail != "" || params.PayerName != "" {
		reqBody.Payer = &preferencePayer{Email: params.PayerEmail, Name: params.PayerName}
	}
	if c.backURL != "" {
		reqBody.BackURLs = &backURLs{Success: c.backURL, Pending: c.backURL, Failure: c.backURL}
		reqBody.AutoReturn = "approved"
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal preference: %w", err)
	}

	url := c.baseURL + "/checkout/preferences"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idempotency-Key", fmt.Sprintf("pref-%s", uuid.NewString()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mercadopago request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("mercadopago returned %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	var pref Preference
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		return nil, fmt.Errorf("decode preference response: %w", err)
	}
	if pref.ID == "" || pref.InitPoint == "" {
		return nil, errors.New("mercadopago response missing id or init_point")
	}

	if c.logger != nil {
		fields := map[string]any{
			"preference_id":      pref.ID,
			"external_reference": params.ExternalReference,
		}
		c.logger.Info(c.logger.WithFields(ctx, fields), "checkout preference created")
	}

	return &pref, nil
}

// Payment is the subset of a payment resource the webhook handler needs
// to reconcile an order.
type Payment struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
}

// Approved reports whether the payment cleared.
func (p *Payment) Approved() bool { return p.Status == "approved" }

// GetPayment fetches a payment by the identifier delivered in a webhook
// notification.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, errors.New("payment id is required")
	}

	url := c.baseURL + "/v1/payments/" + paymentID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mercadopago request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("mercadopago returned %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	var payment Payment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("decode payment response: %w", err)
	}
	return &payment, nil
}
