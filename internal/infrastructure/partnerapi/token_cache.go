package partnerapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mitra/backend/internal/domain/partnersync"
)

// minPlausibleTokenLength rejects obviously truncated identity provider
// replies before they poison the cache
const minPlausibleTokenLength = 10

// defaultTokenExpiry is assumed when the identity provider omits expires_in
const defaultTokenExpiry = 3600 * time.Second

// Credentials holds the client-credentials grant settings for the identity
// provider protecting the partner proxy
type Credentials struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
}

type cachedToken struct {
	value     string
	expiresAt time.Time
}

// TokenCache acquires OAuth access tokens via the client-credentials grant
// and reuses them until their reported expiry. Tokens are cached per proxy
// configuration so the dispatcher can invalidate a single route before
// falling back to a full clear.
//
// The cache deliberately releases its lock during the network fetch:
// concurrent callers may each trigger a redundant refresh, which is
// acceptable because the identity provider is idempotent per credential pair.
type TokenCache struct {
	creds      Credentials
	httpClient *http.Client
	now        func() time.Time

	mu     sync.Mutex
	tokens map[string]cachedToken
}

// TokenCacheOption configures a TokenCache
type TokenCacheOption func(*TokenCache)

// WithHTTPClient overrides the HTTP client used for token fetches
func WithHTTPClient(client *http.Client) TokenCacheOption {
	return func(c *TokenCache) {
		c.httpClient = client
	}
}

// WithClock overrides the time source (tests)
func WithClock(now func() time.Time) TokenCacheOption {
	return func(c *TokenCache) {
		c.now = now
	}
}

// NewTokenCache creates a token cache for the given credentials
func NewTokenCache(creds Credentials, opts ...TokenCacheOption) *TokenCache {
	c := &TokenCache{
		creds:      creds,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
		tokens:     make(map[string]cachedToken),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns a valid access token for the given proxy configuration,
// reusing the cached one while it has not expired
func (c *TokenCache) Token(ctx context.Context, configID string) (string, error) {
	c.mu.Lock()
	cached, ok := c.tokens[configID]
	c.mu.Unlock()
	if ok && c.now().Before(cached.expiresAt) {
		return cached.value, nil
	}

	token, expiresIn, err := c.fetch(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.tokens[configID] = cachedToken{value: token, expiresAt: c.now().Add(expiresIn)}
	c.mu.Unlock()

	return token, nil
}

// Clear drops the cached token for a single proxy configuration
func (c *TokenCache) Clear(configID string) {
	c.mu.Lock()
	delete(c.tokens, configID)
	c.mu.Unlock()
}

// ClearAll drops every cached token unconditionally
func (c *TokenCache) ClearAll() {
	c.mu.Lock()
	c.tokens = make(map[string]cachedToken)
	c.mu.Unlock()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// fetch performs the client-credentials grant against the identity provider
func (c *TokenCache) fetch(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", c.creds.Scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.creds.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("%w: building request: %v", partnersync.ErrTokenAcquisition, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", partnersync.ErrTokenAcquisition, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", 0, fmt.Errorf("%w: reading response: %v", partnersync.ErrTokenAcquisition, err)
	}

	if resp.StatusCode >= 400 {
		return "", 0, fmt.Errorf("%w: identity provider returned HTTP %d", partnersync.ErrTokenAcquisition, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", 0, fmt.Errorf("%w: parsing response: %v", partnersync.ErrTokenAcquisition, err)
	}

	if len(tr.AccessToken) < minPlausibleTokenLength {
		return "", 0, fmt.Errorf("%w: identity provider returned no usable token", partnersync.ErrTokenAcquisition)
	}

	expiresIn := defaultTokenExpiry
	if tr.ExpiresIn > 0 {
		expiresIn = time.Duration(tr.ExpiresIn) * time.Second
	}

	return tr.AccessToken, expiresIn, nil
}
