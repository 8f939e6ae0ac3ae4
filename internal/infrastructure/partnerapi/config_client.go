package partnerapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mitra/backend/internal/domain/partnersync"
)

// configCacheKey is the redis key holding the active proxy configurations
const configCacheKey = "partner:proxy-configs:active"

// ConfigClient fetches active proxy configurations from the configuration
// store, with an optional redis-backed cache in front. A nil redis client
// disables caching.
type ConfigClient struct {
	baseURL    string
	httpClient *http.Client
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewConfigClient creates a configuration store client
func NewConfigClient(baseURL string, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *ConfigClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

type configListEnvelope struct {
	Success bool                      `json:"success"`
	Data    []partnersync.ProxyConfig `json:"data"`
}

// ActiveConfigs returns the currently active proxy configurations
func (c *ConfigClient) ActiveConfigs(ctx context.Context) ([]partnersync.ProxyConfig, error) {
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, configCacheKey).Bytes(); err == nil {
			var configs []partnersync.ProxyConfig
			if err := json.Unmarshal(cached, &configs); err == nil {
				return configs, nil
			}
			// Corrupt cache entry: drop it and fall through to the store
			c.cache.Del(ctx, configCacheKey)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/proxy-configs?active=true", nil)
	if err != nil {
		return nil, fmt.Errorf("partnerapi: building config request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("partnerapi: fetching proxy configs: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("partnerapi: reading config response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("partnerapi: config store returned HTTP %d", resp.StatusCode)
	}

	var envelope configListEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("partnerapi: parsing config response: %w", err)
	}

	if c.cache != nil {
		if raw, err := json.Marshal(envelope.Data); err == nil {
			if err := c.cache.Set(ctx, configCacheKey, raw, c.cacheTTL).Err(); err != nil {
				c.logger.Warn("failed to cache proxy configs", zap.Error(err))
			}
		}
	}

	return envelope.Data, nil
}
