package partnersync

import (
	"encoding/json"
	"strings"
)

// ProxyConfig identifies one backend proxy route to the partner system
type ProxyConfig struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	BaseURL string `json:"base_url"`
}

// Endpoint joins the base URL and route path
func (c ProxyConfig) Endpoint() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(c.URL, "/")
}

// ReferencesCustomer reports whether this configuration routes to the partner
// customer endpoint. Selection is by substring match on name or URL, the way
// the configuration store is conventionally populated.
func (c ProxyConfig) ReferencesCustomer() bool {
	return strings.Contains(strings.ToLower(c.Name), "customer") ||
		strings.Contains(strings.ToLower(c.URL), "customer")
}

// ProxyRequest is the unit of work handed to the backend proxy
type ProxyRequest struct {
	Config    ProxyConfig
	Data      *CustomerCommand
	UserID    string
	AccountID string
	URLSuffix string // appended to the route in update mode
	Method    string // empty means POST
}

// ProxyResponse is the raw reply from the backend proxy. The body may itself
// encode a partner-side error; DecodeSyncEnvelope interprets it.
type ProxyResponse struct {
	StatusCode int
	Body       json.RawMessage
}
