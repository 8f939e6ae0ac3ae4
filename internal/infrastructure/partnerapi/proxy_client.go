package partnerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mitra/backend/internal/domain/partnersync"
)

// maxResponseSize is the maximum allowed response size from the partner proxy (10MB)
const maxResponseSize = 10 * 1024 * 1024

// ProxyClient sends customer commands to the partner system through the
// OAuth-protected proxy route described by a proxy configuration. It attaches
// a bearer token from the TokenCache; the dispatcher owns cache invalidation
// when the partner rejects a token.
type ProxyClient struct {
	httpClient *http.Client
	tokens     *TokenCache
	logger     *zap.Logger
}

// NewProxyClient creates a proxy client with the given request timeout
func NewProxyClient(timeout time.Duration, tokens *TokenCache, logger *zap.Logger) *ProxyClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProxyClient{
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		logger:     logger,
	}
}

// Send dispatches one proxy request and returns the raw reply. HTTP-level
// failures surface as *partnersync.ProxyError; transport failures map to the
// timeout/refused/unavailable sentinels so the dispatcher can classify them.
func (c *ProxyClient) Send(ctx context.Context, req partnersync.ProxyRequest) (*partnersync.ProxyResponse, error) {
	token, err := c.tokens.Token(ctx, req.Config.ID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req.Data)
	if err != nil {
		return nil, fmt.Errorf("partnerapi: encoding command: %w", err)
	}

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}
	endpoint := req.Config.Endpoint() + req.URLSuffix

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("partnerapi: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	if req.UserID != "" {
		httpReq.Header.Set("X-User-ID", req.UserID)
	}
	if req.AccountID != "" {
		httpReq.Header.Set("X-Account-ID", req.AccountID)
	}

	c.logger.Debug("sending partner proxy request",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.String("config_id", req.Config.ID),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", partnersync.ErrPartnerUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		return nil, &partnersync.ProxyError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(body, resp.Status),
		}
	}

	return &partnersync.ProxyResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// classifyTransportError maps network failures onto the domain sentinels the
// dispatcher classifies on
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", partnersync.ErrConnectionTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", partnersync.ErrConnectionTimeout, err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w: %v", partnersync.ErrConnectionRefused, err)
	}
	return fmt.Errorf("%w: %v", partnersync.ErrPartnerUnavailable, err)
}

// extractErrorMessage pulls a human-readable message out of an error body,
// falling back to the HTTP status line
func extractErrorMessage(body []byte, status string) string {
	var probe struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &probe); err == nil {
		if probe.Message != "" {
			return probe.Message
		}
		if probe.Error.Message != "" {
			return probe.Error.Message
		}
	}
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" && len(trimmed) <= 200 {
		return trimmed
	}
	return status
}
