package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace-trust/internal/config"
)

func newAuthorityServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestHTTPAuthority_RetrieveSubscription(t *testing.T) {
	server := newAuthorityServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/subscriptions/sub-42", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"sub-42","status":"active","current_period_end":1780000000,"cancel_at_period_end":true}`))
	})

	authority := NewHTTPAuthority(config.BillingConfig{
		AuthorityURL:            server.URL,
		AuthorityAPIKey:         "test-key",
		AuthorityTimeoutSeconds: 5,
	})

	sub, err := authority.RetrieveSubscription(context.Background(), "sub-42")
	require.NoError(t, err)
	assert.Equal(t, "sub-42", sub.ID)
	assert.Equal(t, "active", sub.Status)
	assert.Equal(t, int64(1780000000), sub.CurrentPeriodEnd)
	assert.True(t, sub.CancelAtPeriodEnd)
}

func TestHTTPAuthority_ErrorPaths(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}},
		{"empty payload", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newAuthorityServer(t, tt.handler)
			authority := NewHTTPAuthority(config.BillingConfig{
				AuthorityURL:            server.URL,
				AuthorityTimeoutSeconds: 5,
			})

			_, err := authority.RetrieveSubscription(context.Background(), "sub-1")
			assert.Error(t, err)
		})
	}
}

func TestHTTPAuthority_Timeout(t *testing.T) {
	server := newAuthorityServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	})

	authority := NewHTTPAuthority(config.BillingConfig{AuthorityURL: server.URL})
	authority.httpClient.Timeout = 50 * time.Millisecond

	_, err := authority.RetrieveSubscription(context.Background(), "sub-1")
	assert.Error(t, err, "a hung authority call must surface as an error")
}
