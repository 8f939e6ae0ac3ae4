package partnersync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mitra/backend/internal/domain/account"
	"github.com/mitra/backend/internal/domain/partnersync"
)

const defaultMaxAttempts = 3

// ProxySender delivers a customer command to the partner system through the
// backend proxy
type ProxySender interface {
	Send(ctx context.Context, req partnersync.ProxyRequest) (*partnersync.ProxyResponse, error)
}

// ConfigSource lists the proxy configurations currently active on the backend
type ConfigSource interface {
	ActiveConfigs(ctx context.Context) ([]partnersync.ProxyConfig, error)
}

// TokenInvalidator drops cached OAuth tokens so the next send fetches fresh
// ones
type TokenInvalidator interface {
	Clear(configID string)
	ClearAll()
}

// Reconciler writes partner-generated identifiers back onto local records
type Reconciler interface {
	Reconcile(ctx context.Context, acc *account.Account, env *partnersync.SyncEnvelope) *partnersync.ReconciliationResult
}

// SyncOptions tunes a single synchronization run
type SyncOptions struct {
	ConfigID  string // pin a specific proxy configuration instead of auto-selecting
	UserID    string
	AccountID string
	Debug     bool // transform and validate only, never send
}

// Dispatcher drives the synchronization pipeline: transform, validate, send
// with bounded retry, then reconcile. Sync never returns a Go error; every
// failure mode is folded into the result so callers have one shape to handle.
type Dispatcher struct {
	transformer *Transformer
	sender      ProxySender
	configs     ConfigSource
	tokens      TokenInvalidator
	reconciler  Reconciler
	maxAttempts int
	sleep       func(ctx context.Context, d time.Duration) error
	logger      *zap.Logger
}

// NewDispatcher wires the pipeline. maxAttempts at or below zero falls back
// to the default of three.
func NewDispatcher(
	transformer *Transformer,
	sender ProxySender,
	configs ConfigSource,
	tokens TokenInvalidator,
	reconciler Reconciler,
	maxAttempts int,
	logger *zap.Logger,
) *Dispatcher {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Dispatcher{
		transformer: transformer,
		sender:      sender,
		configs:     configs,
		tokens:      tokens,
		reconciler:  reconciler,
		maxAttempts: maxAttempts,
		sleep:       sleepContext,
		logger:      logger,
	}
}

// sendOutcome tags the result of one send attempt. Retry is an explicit state
// here, not an error the loop sniffs for.
type sendOutcome struct {
	kind     outcomeKind
	envelope *partnersync.SyncEnvelope
	err      error
}

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeRetryToken
	outcomeFail
)

// Sync runs the full pipeline for one account. The returned result is never
// nil and the method never returns an error; inspect result.Success and
// result.Error instead.
func (d *Dispatcher) Sync(ctx context.Context, acc *account.Account, opts SyncOptions) *partnersync.SyncResult {
	mode := partnersync.ModeCreate
	if acc != nil && acc.IsSynced() {
		mode = partnersync.ModeUpdate
	}
	result := &partnersync.SyncResult{Mode: mode}

	cmd, err := d.transformer.Transform(acc, mode)
	if err != nil {
		result.Error = fmt.Sprintf("transformation failed: %v", err)
		var te *partnersync.TransformationError
		if errors.As(err, &te) && te.Partial != nil {
			result.CustomerData = te.Partial
		}
		return result
	}
	result.CustomerData = cmd

	validation := ValidateCustomerCommand(cmd)
	result.Validation = &validation
	if !validation.IsValid {
		result.Error = "customer data failed validation"
		result.Details = validation.Errors
		return result
	}

	if opts.Debug {
		result.Success = true
		result.Details = []string{"debug mode: payload transformed and validated, nothing was sent"}
		return result
	}

	cfg, err := d.resolveConfig(ctx, opts.ConfigID)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	req := partnersync.ProxyRequest{
		Config:    cfg,
		Data:      cmd,
		UserID:    opts.UserID,
		AccountID: opts.AccountID,
	}
	if mode == partnersync.ModeUpdate {
		req.Method = http.MethodPatch
		req.URLSuffix = "/" + acc.ExternalRef
	}

	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		result.Attempts = attempt
		outcome := d.sendOnce(ctx, req)

		switch outcome.kind {
		case outcomeSuccess:
			result.Success = true
			if d.reconciler != nil {
				result.Reconciliation = d.reconciler.Reconcile(ctx, acc, outcome.envelope)
			}
			return result

		case outcomeFail:
			// A business rejection from the partner is final; the payload
			// reached the other side, so the data travels with the failure.
			result.Error = classifySendError(outcome.err)
			return result

		case outcomeRetryToken:
			lastErr = outcome.err
			d.logger.Warn("partner rejected token, refreshing and retrying",
				zap.String("config_id", cfg.ID),
				zap.Int("attempt", attempt),
				zap.Error(outcome.err))
			if attempt == 1 {
				d.tokens.Clear(cfg.ID)
			} else {
				d.tokens.ClearAll()
			}
			if attempt < d.maxAttempts {
				if err := d.sleep(ctx, time.Duration(attempt)*2*time.Second); err != nil {
					result.Error = "synchronization cancelled while waiting to retry"
					return result
				}
			}
		}
	}

	result.Error = classifyExhaustion(lastErr)
	return result
}

// sendOnce performs one proxy round trip and tags what happened
func (d *Dispatcher) sendOnce(ctx context.Context, req partnersync.ProxyRequest) sendOutcome {
	resp, err := d.sender.Send(ctx, req)
	if err != nil {
		if isTokenSignalError(err) {
			return sendOutcome{kind: outcomeRetryToken, err: err}
		}
		return sendOutcome{kind: outcomeFail, err: err}
	}

	env, err := partnersync.DecodeSyncEnvelope(resp.Body)
	if err != nil {
		return sendOutcome{kind: outcomeFail, err: err}
	}
	if env.Err != nil {
		if env.Err.IsTokenSignal() {
			return sendOutcome{kind: outcomeRetryToken, err: env.Err}
		}
		return sendOutcome{kind: outcomeFail, err: env.Err}
	}
	return sendOutcome{kind: outcomeSuccess, envelope: env}
}

// resolveConfig picks the proxy configuration to send through. An explicit id
// wins; otherwise the first configuration referencing the customer endpoint.
func (d *Dispatcher) resolveConfig(ctx context.Context, configID string) (partnersync.ProxyConfig, error) {
	configs, err := d.configs.ActiveConfigs(ctx)
	if err != nil {
		return partnersync.ProxyConfig{}, fmt.Errorf("could not load proxy configurations: %w", err)
	}

	if configID != "" {
		for _, cfg := range configs {
			if cfg.ID == configID {
				return cfg, nil
			}
		}
		return partnersync.ProxyConfig{}, fmt.Errorf("%w: no active configuration with id %s",
			partnersync.ErrConfigurationNotFound, configID)
	}

	for _, cfg := range configs {
		if cfg.ReferencesCustomer() {
			return cfg, nil
		}
	}
	return partnersync.ProxyConfig{}, fmt.Errorf("%w: no active configuration references the customer endpoint",
		partnersync.ErrConfigurationNotFound)
}

// isTokenSignalError reports whether a transport-level error indicates an
// expired or rejected token
func isTokenSignalError(err error) bool {
	var pe *partnersync.ProxyError
	if errors.As(err, &pe) {
		if pe.StatusCode == http.StatusUnauthorized || pe.StatusCode == http.StatusForbidden {
			return true
		}
		msg := strings.ToLower(pe.Message)
		return strings.Contains(msg, "token") || strings.Contains(msg, "forbidden")
	}
	return false
}

// classifySendError turns a terminal send failure into an operator-readable
// message
func classifySendError(err error) string {
	var partnerErr *partnersync.PartnerError
	if errors.As(err, &partnerErr) {
		return fmt.Sprintf("partner rejected the request: %s", partnerErr.Message)
	}

	switch {
	case errors.Is(err, partnersync.ErrConnectionTimeout):
		return "the partner system took too long to respond"
	case errors.Is(err, partnersync.ErrConnectionRefused):
		return "cannot reach the partner system, connection refused"
	case errors.Is(err, partnersync.ErrTokenAcquisition):
		return fmt.Sprintf("could not obtain an access token: %v", err)
	case errors.Is(err, partnersync.ErrInvalidEnvelope):
		return fmt.Sprintf("partner reply could not be decoded: %v", err)
	}

	var pe *partnersync.ProxyError
	if errors.As(err, &pe) {
		switch pe.StatusCode {
		case http.StatusNotFound:
			return "the partner endpoint was not found, check the proxy configuration"
		case http.StatusInternalServerError:
			return fmt.Sprintf("the partner system reported an internal error: %s", pe.Message)
		default:
			return fmt.Sprintf("the partner system replied with status %d: %s", pe.StatusCode, pe.Message)
		}
	}

	return fmt.Sprintf("synchronization failed: %v", err)
}

// classifyExhaustion explains why retries ran out. A 403 after refreshes
// means the refreshed tokens keep being rejected, which points at the token
// itself; a 401 points at the client credentials.
func classifyExhaustion(lastErr error) string {
	status := 0
	msg := ""
	var partnerErr *partnersync.PartnerError
	var proxyErr *partnersync.ProxyError
	switch {
	case errors.As(lastErr, &partnerErr):
		status = partnerErr.Status
		msg = partnerErr.Message
	case errors.As(lastErr, &proxyErr):
		status = proxyErr.StatusCode
		msg = proxyErr.Message
	}

	switch status {
	case http.StatusForbidden:
		return "access denied after refreshing the token, the partner keeps rejecting it"
	case http.StatusUnauthorized:
		return "authentication failed after retries, check the partner client credentials"
	}
	if msg != "" {
		return fmt.Sprintf("gave up after repeated token rejections: %s", msg)
	}
	return fmt.Sprintf("gave up after repeated token rejections: %v", lastErr)
}

// sleepContext waits for d or until the context is done
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
