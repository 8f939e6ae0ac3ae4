package partnersync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mitra/backend/internal/domain/account"
	"github.com/mitra/backend/internal/domain/partnersync"
)

// =============================================================================
// Mocks
// =============================================================================

// MockProxySender is a mock implementation of ProxySender
type MockProxySender struct {
	mock.Mock
}

func (m *MockProxySender) Send(ctx context.Context, req partnersync.ProxyRequest) (*partnersync.ProxyResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnersync.ProxyResponse), args.Error(1)
}

// MockConfigSource is a mock implementation of ConfigSource
type MockConfigSource struct {
	mock.Mock
}

func (m *MockConfigSource) ActiveConfigs(ctx context.Context) ([]partnersync.ProxyConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partnersync.ProxyConfig), args.Error(1)
}

// MockTokenInvalidator is a mock implementation of TokenInvalidator
type MockTokenInvalidator struct {
	mock.Mock
}

func (m *MockTokenInvalidator) Clear(configID string) {
	m.Called(configID)
}

func (m *MockTokenInvalidator) ClearAll() {
	m.Called()
}

// MockReconciler is a mock implementation of Reconciler
type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context, acc *account.Account, env *partnersync.SyncEnvelope) *partnersync.ReconciliationResult {
	args := m.Called(ctx, acc, env)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*partnersync.ReconciliationResult)
}

var _ ProxySender = (*MockProxySender)(nil)
var _ ConfigSource = (*MockConfigSource)(nil)
var _ TokenInvalidator = (*MockTokenInvalidator)(nil)
var _ Reconciler = (*MockReconciler)(nil)

// =============================================================================
// Test Helper Functions
// =============================================================================

type dispatcherFixture struct {
	sender     *MockProxySender
	configs    *MockConfigSource
	tokens     *MockTokenInvalidator
	reconciler *MockReconciler
	dispatcher *Dispatcher
	sleeps     []time.Duration
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	t.Helper()

	f := &dispatcherFixture{
		sender:     new(MockProxySender),
		configs:    new(MockConfigSource),
		tokens:     new(MockTokenInvalidator),
		reconciler: new(MockReconciler),
	}
	f.dispatcher = NewDispatcher(
		NewTransformerWithClock(fixedClock()),
		f.sender,
		f.configs,
		f.tokens,
		f.reconciler,
		0,
		zap.NewNop(),
	)
	f.dispatcher.sleep = func(ctx context.Context, d time.Duration) error {
		f.sleeps = append(f.sleeps, d)
		return ctx.Err()
	}
	return f
}

func customerConfig() partnersync.ProxyConfig {
	return partnersync.ProxyConfig{
		ID:      "cfg-customer",
		Name:    "Customer Onboarding",
		URL:     "/partner/customer",
		BaseURL: "https://proxy.internal",
	}
}

func (f *dispatcherFixture) expectConfigs(configs ...partnersync.ProxyConfig) {
	f.configs.On("ActiveConfigs", mock.Anything).Return(configs, nil)
}

func successBody(customerID string) *partnersync.ProxyResponse {
	body := map[string]any{
		"data": map[string]any{
			"customer": map[string]any{"id": customerID},
		},
	}
	raw, _ := json.Marshal(body)
	return &partnersync.ProxyResponse{StatusCode: http.StatusOK, Body: raw}
}

func errorBody(status int, message string) *partnersync.ProxyResponse {
	body := map[string]any{
		"success": false,
		"error":   map[string]any{"status": status, "message": message},
	}
	raw, _ := json.Marshal(body)
	return &partnersync.ProxyResponse{StatusCode: http.StatusOK, Body: raw}
}

// =============================================================================
// Dispatcher Tests
// =============================================================================

func TestDispatcher_Sync_CreateSuccess(t *testing.T) {
	f := newDispatcherFixture(t)
	acc := createTestAccount(t)

	f.expectConfigs(customerConfig())
	f.sender.On("Send", mock.Anything, mock.MatchedBy(func(req partnersync.ProxyRequest) bool {
		return req.Method == "" && req.URLSuffix == ""
	})).Return(successBody("cust-ext-1"), nil)
	f.reconciler.On("Reconcile", mock.Anything, acc, mock.MatchedBy(func(env *partnersync.SyncEnvelope) bool {
		return env.CustomerID == "cust-ext-1"
	})).Return(&partnersync.ReconciliationResult{Success: true})

	result := f.dispatcher.Sync(context.Background(), acc, SyncOptions{UserID: "user-1"})

	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, partnersync.ModeCreate, result.Mode)
	assert.Equal(t, 1, result.Attempts)
	assert.NotNil(t, result.CustomerData)
	assert.NotNil(t, result.Validation)
	require.NotNil(t, result.Reconciliation)
	assert.True(t, result.Reconciliation.Success)
	f.sender.AssertExpectations(t)
	f.reconciler.AssertExpectations(t)
}

func TestDispatcher_Sync_UpdateUsesPatchAndSuffix(t *testing.T) {
	f := newDispatcherFixture(t)
	acc := createTestAccount(t)
	acc.SetExternalRef("cust-ext-42")

	f.expectConfigs(customerConfig())
	f.sender.On("Send", mock.Anything, mock.MatchedBy(func(req partnersync.ProxyRequest) bool {
		return req.Method == http.MethodPatch && req.URLSuffix == "/cust-ext-42"
	})).Return(successBody("cust-ext-42"), nil)
	f.reconciler.On("Reconcile", mock.Anything, acc, mock.Anything).
		Return(&partnersync.ReconciliationResult{Success: true})

	result := f.dispatcher.Sync(context.Background(), acc, SyncOptions{})

	assert.True(t, result.Success)
	assert.Equal(t, partnersync.ModeUpdate, result.Mode)
	f.sender.AssertExpectations(t)
}

func TestDispatcher_Sync_TransformationFailure(t *testing.T) {
	f := newDispatcherFixture(t)

	result := f.dispatcher.Sync(context.Background(), nil, SyncOptions{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "transformation failed")
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDispatcher_Sync_ValidationFailureBlocksSend(t *testing.T) {
	f := newDispatcherFixture(t)
	acc := createTestAccount(t)
	acc.Name = "" // sidestep the aggregate's own guard to force invalid data

	result := f.dispatcher.Sync(context.Background(), acc, SyncOptions{})

	assert.False(t, result.Success)
	assert.Equal(t, "customer data failed validation", result.Error)
	assert.NotEmpty(t, result.Details)
	assert.NotNil(t, result.CustomerData)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.configs.AssertNotCalled(t, "ActiveConfigs", mock.Anything)
}

func TestDispatcher_Sync_DebugModeNeverSends(t *testing.T) {
	f := newDispatcherFixture(t)
	acc := createTestAccount(t)

	result := f.dispatcher.Sync(context.Background(), acc, SyncOptions{Debug: true})

	assert.True(t, result.Success)
	require.Len(t, result.Details, 1)
	assert.Contains(t, result.Details[0], "debug mode")
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.configs.AssertNotCalled(t, "ActiveConfigs", mock.Anything)
}

func TestDispatcher_Sync_ConfigResolution(t *testing.T) {
	t.Run("explicit id wins", func(t *testing.T) {
		f := newDispatcherFixture(t)
		acc := createTestAccount(t)
		pinned := partnersync.ProxyConfig{ID: "cfg-pinned", Name: "Customer Alt", URL: "/alt/customer"}

		f.expectConfigs(customerConfig(), pinned)
		f.sender.On("Send", mock.Anything, mock.MatchedBy(func(req partnersync.ProxyRequest) bool {
			return req.Config.ID == "cfg-pinned"
		})).Return(successBody("cust-1"), nil)
		f.reconciler.On("Reconcile", mock.Anything, acc, mock.Anything).
			Return(&partnersync.ReconciliationResult{Success: true})

		result := f.dispatcher.Sync(context.Background(), acc, SyncOptions{ConfigID: "cfg-pinned"})

		assert.True(t, result.Success)
		f.sender.AssertExpectations(t)
	})

	t.Run("falls back to the customer route", func(t *testing.T) {
		f := newDispatcherFixture(t)
		acc := createTestAccount(t)
		other := partnersync.ProxyConfig{ID: "cfg-invoice", Name: "Invoicing", URL: "/partner/invoice"}

		f.expectConfigs(other, customerConfig())
		f.sender.On("Send", mock.Anything, mock.MatchedBy(func(req partnersync.ProxyRequest) bool {
			return req.Config.ID == "cfg-customer"
		})).Return(successBody("cust-1"), nil)
		f.reconciler.On("Reconcile", mock.Anything, acc, mock.Anything).
			Return(&partnersync.ReconciliationResult{Success: true})

		result := f.dispatcher.Sync(context.Background(), acc, SyncOptions{})

		assert.True(t, result.Success)
		f.sender.AssertExpectations(t)
	})

	t.Run("no customer route", func(t *testing.T) {
		f := newDispatcherFixture(t)
		acc := createTestAccount(t)
		other := partnersync.ProxyConfig{ID: "cfg-invoice", Name: "Invoicing", URL: "/partner/invoice"}

		f.expectConfigs(other)

		result := f.dispatcher.Sync(context.Background(), acc, SyncOptions{})

		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "proxy configuration not found")
		f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("unknown explicit id", func(t *testing.T) {
		f := newDispatcherFixture(t)
		acc := createTestAccount(t)

		f.expectConfigs(customerConfig())

		result := f.dispatcher.Sync(context.Background(), acc, SyncOptions{ConfigID: "cfg-missing"})

		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "cfg-missing")
	})
}

func TestDispatcher_Sync_TokenRetryAndRecovery(t *testing.T) {
	f := newDispatcherFixture(t)
	acc := createTestAccount(t)

	f.expectConfigs(customerConfig())
	f.sender.On("Send", mock.Anything, mock.Anything).
		Return(errorBody(http.StatusUnauthorized, "token expired"), nil).Once()
	f.sender.On("Send", mock.Anything, mock.Anything).
		Return(successBody("cust-1"), nil).Once()
	f.tokens.On("Clear", "cfg-customer").Once()
	f.reconciler.On("Reconcile", mock.Anything, acc, mock.Anything).
		Return(&partnersync.ReconciliationResult{Success: true})

	result := f.dispatcher.Sync(context.Background(), acc, SyncOptions{})

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
	require.Len(t, f.sleeps, 1)
	assert.Equal(t, 2*time.Second, f.sleeps[0])
	f.tokens.AssertExpectations(t)
	f.tokens.AssertNotCalled(t, "ClearAll")
}

func TestDispatcher_Sync_RetryExhaustion(t *testing.T) {
	f := newDispatcherFixture(t)
	acc := createTestAccount(t)

	f.expectConfigs(customerConfig())
	f.sender.On("Send", mock.Anything, mock.Anything).
		Return(errorBody(http.StatusForbidden, "forbidden"), nil).Times(3)
	f.tokens.On("Clear", "cfg-customer").Once()
	f.tokens.On("ClearAll").Times(2)

	result := f.dispatcher.Sync(context.Background(), acc, SyncOptions{})

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, "access denied after refreshing the token, the partner keeps rejecting it", result.Error)
	// Backoff grows with the attempt and is skipped after the last one.
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, f.sleeps)
	f.sender.AssertExpectations(t)
	f.tokens.AssertExpectations(t)
}

func TestDispatcher_Sync_ExhaustionWith401(t *testing.T) {
	f := newDispatcherFixture(t)
	acc := createTestAccount(t)

	f.expectConfigs(customerConfig())
	f.sender.On("Send", mock.Anything, mock.Anything).
		Return(errorBody(http.StatusUnauthorized, "invalid token"), nil).Times(3)
	f.tokens.On("Clear", "cfg-customer").Once()
	f.tokens.On("ClearAll").Times(2)

	result := f.dispatcher.Sync(context.Background(), acc, SyncOptions{})

	assert.False(t, result.Success)
	assert.Equal(t, "authentication failed after retries, check the partner client credentials", result.Error)
}

func TestDispatcher_Sync_TransportTokenSignalRetries(t *testing.T) {
	f := newDispatcherFixture(t)
	acc := createTestAccount(t)

	f.expectConfigs(customerConfig())
	f.sender.On("Send", mock.Anything, mock.Anything).
		Return(nil, &partnersync.ProxyError{StatusCode: http.StatusUnauthorized, Message: "unauthorized"}).Once()
	f.sender.On("Send", mock.Anything, mock.Anything).
		Return(successBody("cust-1"), nil).Once()
	f.tokens.On("Clear", "cfg-customer").Once()
	f.reconciler.On("Reconcile", mock.Anything, acc, mock.Anything).
		Return(&partnersync.ReconciliationResult{Success: true})

	result := f.dispatcher.Sync(context.Background(), acc, SyncOptions{})

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
}

func TestDispatcher_Sync_BusinessRejectionIsFinal(t *testing.T) {
	f := newDispatcherFixture(t)
	acc := createTestAccount(t)

	f.expectConfigs(customerConfig())
	f.sender.On("Send", mock.Anything, mock.Anything).
		Return(errorBody(http.StatusUnprocessableEntity, "duplicate customer"), nil).Once()

	result := f.dispatcher.Sync(context.Background(), acc, SyncOptions{})

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, "partner rejected the request: duplicate customer", result.Error)
	// The payload reached the partner, so it travels with the failure.
	assert.NotNil(t, result.CustomerData)
	f.tokens.AssertNotCalled(t, "Clear", mock.Anything)
	f.reconciler.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcher_Sync_TransportFailures(t *testing.T) {
	tests := []struct {
		name    string
		sendErr error
		want    string
	}{
		{
			name:    "timeout",
			sendErr: partnersync.ErrConnectionTimeout,
			want:    "the partner system took too long to respond",
		},
		{
			name:    "connection refused",
			sendErr: partnersync.ErrConnectionRefused,
			want:    "cannot reach the partner system, connection refused",
		},
		{
			name:    "endpoint missing",
			sendErr: &partnersync.ProxyError{StatusCode: http.StatusNotFound, Message: "not found"},
			want:    "the partner endpoint was not found, check the proxy configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDispatcherFixture(t)
			acc := createTestAccount(t)

			f.expectConfigs(customerConfig())
			f.sender.On("Send", mock.Anything, mock.Anything).Return(nil, tt.sendErr).Once()

			result := f.dispatcher.Sync(context.Background(), acc, SyncOptions{})

			assert.False(t, result.Success)
			assert.Equal(t, tt.want, result.Error)
			assert.Equal(t, 1, result.Attempts)
		})
	}
}

func TestDispatcher_Sync_UndecodableReplyFails(t *testing.T) {
	f := newDispatcherFixture(t)
	acc := createTestAccount(t)

	f.expectConfigs(customerConfig())
	f.sender.On("Send", mock.Anything, mock.Anything).
		Return(&partnersync.ProxyResponse{StatusCode: http.StatusOK, Body: json.RawMessage(`not json`)}, nil).Once()

	result := f.dispatcher.Sync(context.Background(), acc, SyncOptions{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "partner reply could not be decoded")
}

func TestDispatcher_Sync_CancelledWhileWaiting(t *testing.T) {
	f := newDispatcherFixture(t)
	acc := createTestAccount(t)

	ctx, cancel := context.WithCancel(context.Background())
	f.dispatcher.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	f.expectConfigs(customerConfig())
	f.sender.On("Send", mock.Anything, mock.Anything).
		Return(errorBody(http.StatusUnauthorized, "token expired"), nil).Once()
	f.tokens.On("Clear", "cfg-customer").Once()

	result := f.dispatcher.Sync(ctx, acc, SyncOptions{})

	assert.False(t, result.Success)
	assert.Equal(t, "synchronization cancelled while waiting to retry", result.Error)
	f.sender.AssertExpectations(t)
}

func TestDispatcher_Sync_ReconciliationFailureDoesNotFlipSuccess(t *testing.T) {
	f := newDispatcherFixture(t)
	acc := createTestAccount(t)

	f.expectConfigs(customerConfig())
	f.sender.On("Send", mock.Anything, mock.Anything).Return(successBody("cust-1"), nil)
	f.reconciler.On("Reconcile", mock.Anything, acc, mock.Anything).
		Return(&partnersync.ReconciliationResult{
			Success:  false,
			Customer: partnersync.ReconciliationSubResult{FailedCount: 1},
		})

	result := f.dispatcher.Sync(context.Background(), acc, SyncOptions{})

	assert.True(t, result.Success)
	require.NotNil(t, result.Reconciliation)
	assert.False(t, result.Reconciliation.Success)
}

func TestDispatcher_Sync_ConfigStoreFailure(t *testing.T) {
	f := newDispatcherFixture(t)
	acc := createTestAccount(t)

	f.configs.On("ActiveConfigs", mock.Anything).Return(nil, errors.New("store unreachable"))

	result := f.dispatcher.Sync(context.Background(), acc, SyncOptions{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "could not load proxy configurations")
}

func TestNewDispatcher_DefaultsAttempts(t *testing.T) {
	d := NewDispatcher(NewTransformer(), new(MockProxySender), new(MockConfigSource),
		new(MockTokenInvalidator), new(MockReconciler), -1, zap.NewNop())
	assert.Equal(t, defaultMaxAttempts, d.maxAttempts)
}
