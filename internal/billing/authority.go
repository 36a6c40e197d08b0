package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spec-kit/marketplace-trust/internal/config"
)

// AuthoritySubscription is the payment authority's view of a
// subscription.
type AuthoritySubscription struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
}

// PaymentAuthority retrieves live subscription state from the external
// billing system of record.
type PaymentAuthority interface {
	RetrieveSubscription(ctx context.Context, id string) (*AuthoritySubscription, error)
}

// HTTPAuthority implements PaymentAuthority against the authority's
// REST API.
type HTTPAuthority struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPAuthority builds a client with an explicit call timeout. A
// hung authority call must resolve to the fail-closed outcome, not
// block the request path.
func NewHTTPAuthority(cfg config.BillingConfig) *HTTPAuthority {
	timeout := cfg.AuthorityTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPAuthority{
		baseURL:    cfg.AuthorityURL,
		apiKey:     cfg.AuthorityAPIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// RetrieveSubscription fetches a subscription by id.
func (a *HTTPAuthority) RetrieveSubscription(ctx context.Context, id string) (*AuthoritySubscription, error) {
	url := fmt.Sprintf("%s/v1/subscriptions/%s", a.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build authority request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("authority call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("authority returned status %d", resp.StatusCode)
	}

	var sub AuthoritySubscription
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return nil, fmt.Errorf("decode authority response: %w", err)
	}
	if sub.ID == "" || sub.Status == "" {
		return nil, fmt.Errorf("malformed authority response for subscription %s", id)
	}
	return &sub, nil
}
