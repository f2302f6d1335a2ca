package viacep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/config"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/types"
)

var (
	errBaseURLRequired = errors.New("viacep base url is required")
	// ErrNotFound signals the CEP does not exist in the registry.
	ErrNotFound = errors.New("cep not found")
	// ErrInvalidCEP signals the input is not an eight digit CEP.
	ErrInvalidCEP = errors.New("invalid cep")

	cepDigitsRe = regexp.MustCompile(`^\d{8}$`)
)

// Client looks up Brazilian postal codes against the ViaCEP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logger.Logger
}

// NewClient builds a ViaCEP client from configuration.
func NewClient(cfg config.ViaCEPConfig, logg *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logg,
	}, nil
}

type lookupResponse struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Complement   string `json:"complemento"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
	NotFound     bool   `json:"erro"`
}

// Lookup resolves a CEP into an address prefill. The numero field stays
// empty; only the caller knows the street number.
func (c *Client) Lookup(ctx context.Context, cep string) (*types.AddressSnapshot, error) {
	normalized := NormalizeCEP(cep)
	if !cepDigitsRe.MatchString(normalized) {
		return nil, ErrInvalidCEP
	}

	url := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, normalized)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("viacep request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// ViaCEP answers 400 for malformed input and 200 with erro=true for
	// unknown codes.
	if resp.StatusCode == http.StatusBadRequest {
		return nil, ErrInvalidCEP
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("viacep returned %s", resp.Status)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode viacep response: %w", err)
	}
	if body.NotFound {
		return nil, ErrNotFound
	}

	return &types.AddressSnapshot{
		CEP:          body.CEP,
		Street:       body.Street,
		Complement:   body.Complement,
		Neighborhood: body.Neighborhood,
		City:         body.City,
		State:        body.State,
	}, nil
}

// NormalizeCEP strips the usual formatting from user supplied codes.
func NormalizeCEP(cep string) string {
	cleaned := strings.TrimSpace(cep)
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	return cleaned
}
