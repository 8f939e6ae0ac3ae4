package partnerapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfigClient_ActiveConfigs(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/api/v1/proxy-configs", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("active"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"cfg-1","name":"Customer Onboarding","url":"/partner/customer","base_url":"https://proxy.internal"}]}`))
	}))
	defer server.Close()

	client := NewConfigClient(server.URL, nil, time.Minute, zap.NewNop())

	configs, err := client.ActiveConfigs(context.Background())

	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "cfg-1", configs[0].ID)
	assert.True(t, configs[0].ReferencesCustomer())
	assert.Equal(t, int32(1), requests.Load())

	// No redis client wired: every call goes to the store.
	_, err = client.ActiveConfigs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), requests.Load())
}

func TestConfigClient_StoreFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewConfigClient(server.URL, nil, time.Minute, zap.NewNop())

	configs, err := client.ActiveConfigs(context.Background())

	assert.Nil(t, configs)
	assert.ErrorContains(t, err, "HTTP 500")
}

func TestConfigClient_MalformedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewConfigClient(server.URL, nil, time.Minute, zap.NewNop())

	_, err := client.ActiveConfigs(context.Background())

	assert.ErrorContains(t, err, "parsing config response")
}
