// Package processor talks to the external payment processor that owns
// charge intents and payouts. The platform never moves real money itself.
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dmikh/workmarket/internal/apperrors"
	"github.com/dmikh/workmarket/internal/logger"
)

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type Payout struct {
	ID string `json:"id"`
}

type ClientInterface interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*Intent, error)
	CreatePayout(ctx context.Context, amount decimal.Decimal, currency, destination string) (*Payout, error)
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*Intent, error) {
	body := map[string]any{
		"amount":   amount.String(),
		"currency": currency,
		"metadata": metadata,
	}

	var intent Intent
	if err := c.post(ctx, "/v1/payment_intents", body, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (c *Client) CreatePayout(ctx context.Context, amount decimal.Decimal, currency, destination string) (*Payout, error) {
	body := map[string]any{
		"amount":      amount.String(),
		"currency":    currency,
		"destination": destination,
	}

	var payout Payout
	if err := c.post(ctx, "/v1/payouts", body, &payout); err != nil {
		return nil, err
	}
	return &payout, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Log.Error("failed to close processor response body", zap.Error(err))
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("processor returned unexpected status: %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// Disabled stands in when no processor credentials are configured. Callers
// get a typed error instead of a nil-client panic.
type Disabled struct{}

func (Disabled) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*Intent, error) {
	return nil, apperrors.ErrProcessorUnavailable
}

func (Disabled) CreatePayout(ctx context.Context, amount decimal.Decimal, currency, destination string) (*Payout, error) {
	return nil, apperrors.ErrProcessorUnavailable
}
