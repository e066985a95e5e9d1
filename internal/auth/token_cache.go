package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dfagundes/huddle/internal/metrics"
	"github.com/dfagundes/huddle/internal/model"
)

const (
	// safetyMargin is subtracted from the provider-reported expiry so a
	// token is never used while it could expire mid-request.
	safetyMargin = 60 * time.Second

	// maxRateLimitRetries bounds the 429 retry loop per refresh call.
	maxRateLimitRetries = 5

	// defaultRetryAfter is used when a 429 carries no Retry-After hint.
	defaultRetryAfter = 2 * time.Second
)

// errRateLimited marks a refresh attempt rejected with HTTP 429.
var errRateLimited = errors.New("token endpoint rate limited")

// tokenResponse is the provider's client-credentials grant response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// cachedToken is one cache entry, owned exclusively by the TokenCache.
type cachedToken struct {
	token     string
	expiresAt time.Time
}

// TokenCache keeps one bearer token per account and refreshes it on demand.
// At most one refresh per account key is in flight at any time; concurrent
// callers for the same key await the same result.
type TokenCache struct {
	registry   *model.Registry
	tokenURL   string
	httpClient *http.Client

	group  singleflight.Group
	mu     sync.RWMutex
	tokens map[string]cachedToken

	now func() time.Time
}

// NewTokenCache creates a token cache for the given account registry.
func NewTokenCache(registry *model.Registry, tokenURL string, timeout time.Duration) *TokenCache {
	return &TokenCache{
		registry: registry,
		tokenURL: tokenURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		tokens: make(map[string]cachedToken),
		now:    time.Now,
	}
}

// Token returns a valid bearer token for the account, refreshing it if the
// cached one is missing or within the safety margin of its expiry.
func (c *TokenCache) Token(ctx context.Context, accountKey string) (string, error) {
	if token, ok := c.cached(accountKey); ok {
		metrics.TokenCacheHits.WithLabelValues(accountKey).Inc()
		return token, nil
	}

	result, err, _ := c.group.Do(accountKey, func() (interface{}, error) {
		// A waiter queued behind a refresh that just finished should not
		// trigger another one.
		if token, ok := c.cached(accountKey); ok {
			return token, nil
		}
		return c.refresh(ctx, accountKey)
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

// Warm refreshes the token of every configured account, logging and
// swallowing per-account failures. Used by the background refresher.
func (c *TokenCache) Warm(ctx context.Context) {
	for _, account := range c.registry.Accounts() {
		if !account.Configured() {
			continue
		}
		if _, err := c.Token(ctx, account.Key); err != nil {
			slog.Warn("Token pre-warm failed",
				"account", account.Key,
				"error", err,
			)
		}
	}
}

// refresh exchanges client credentials for a new token, retrying on rate
// limiting up to the retry ceiling. Any terminal failure clears the cache
// entry so the next call starts fresh.
func (c *TokenCache) refresh(ctx context.Context, accountKey string) (string, error) {
	account, ok := c.registry.Get(accountKey)
	if !ok || !account.Configured() {
		return "", fmt.Errorf("%w: %s", model.ErrConfigurationMissing, accountKey)
	}

	slog.Info("Requesting a new access token", "account", accountKey)

	for attempt := 0; ; attempt++ {
		token, retryAfter, err := c.fetch(ctx, account)
		if err == nil {
			metrics.TokenRefreshes.WithLabelValues(accountKey, "success").Inc()
			return token, nil
		}

		if !errors.Is(err, errRateLimited) {
			c.drop(accountKey)
			metrics.TokenRefreshes.WithLabelValues(accountKey, "failure").Inc()
			return "", err
		}

		metrics.RateLimitRetries.WithLabelValues(accountKey).Inc()

		if attempt >= maxRateLimitRetries {
			c.drop(accountKey)
			metrics.TokenRefreshes.WithLabelValues(accountKey, "failure").Inc()
			slog.Error("Max token refresh retries reached", "account", accountKey)
			return "", fmt.Errorf("%w: account %s", model.ErrRateLimitExhausted, accountKey)
		}

		slog.Warn("Token endpoint rate limited, backing off",
			"account", accountKey,
			"retry_after_ms", retryAfter.Milliseconds(),
			"attempt", attempt+1,
		)

		select {
		case <-time.After(retryAfter):
			// Next attempt
		case <-ctx.Done():
			c.drop(accountKey)
			return "", ctx.Err()
		}
	}
}

// fetch performs a single client-credentials exchange. On success the token
// is stored with the safety margin already applied.
func (c *TokenCache) fetch(ctx context.Context, account model.Account) (string, time.Duration, error) {
	params := url.Values{}
	params.Set("grant_type", "account_credentials")
	params.Set("account_id", account.ExternalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(account.ClientID, account.ClientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", 0, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", parseRetryAfter(resp.Header.Get("Retry-After")), errRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", 0, &model.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", 0, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", 0, &model.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    "token response missing access_token",
		}
	}

	c.store(account.Key, tr)

	slog.Info("New token received and cached",
		"account", account.Key,
		"expires_in_sec", tr.ExpiresIn,
	)

	return tr.AccessToken, 0, nil
}

// cached returns the token for the key if it is still inside its expiry.
func (c *TokenCache) cached(accountKey string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.tokens[accountKey]
	if !ok || !c.now().Before(entry.expiresAt) {
		return "", false
	}
	return entry.token, true
}

// store overwrites the cache entry for the account key.
func (c *TokenCache) store(accountKey string, tr tokenResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tokens[accountKey] = cachedToken{
		token:     tr.AccessToken,
		expiresAt: c.now().Add(time.Duration(tr.ExpiresIn)*time.Second - safetyMargin),
	}
}

// drop clears the cache entry so the next call forces a fresh attempt.
func (c *TokenCache) drop(accountKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tokens, accountKey)
}

// parseRetryAfter interprets a Retry-After header given in seconds.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return defaultRetryAfter
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return defaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}
