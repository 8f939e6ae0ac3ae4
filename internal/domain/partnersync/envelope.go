package partnersync

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PartnerError is a business error reported by the partner system inside an
// otherwise successful proxy reply
type PartnerError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *PartnerError) Error() string {
	return fmt.Sprintf("partner error (status %d): %s", e.Status, e.Message)
}

// IsTokenSignal reports whether the error looks like an expired or rejected
// OAuth token, which the dispatcher treats as retryable after clearing the
// token cache
func (e *PartnerError) IsTokenSignal() bool {
	if e.Status == 401 || e.Status == 403 {
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "forbidden") || strings.Contains(msg, "token")
}

// SyncEnvelope is the decoded, normalized view of a partner reply. The
// upstream proxy is known to wrap the partner payload in a varying number of
// "data" layers, and the partner itself has shipped the generated identifiers
// under several shapes over time. DecodeSyncEnvelope is the single place that
// tolerates this drift; nothing else in the pipeline probes response shapes.
type SyncEnvelope struct {
	Err        *PartnerError
	CustomerID string
	BranchID   string
	TierIDs    []string
	CrewIDs    []string
}

// DecodeSyncEnvelope decodes a raw proxy body into a normalized envelope.
// It unwraps up to three nested "data" layers and takes, for each field, the
// first match in outermost-first order.
func DecodeSyncEnvelope(raw json.RawMessage) (*SyncEnvelope, error) {
	var root map[string]any
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}

	layers := unwrapDataLayers(root, 3)
	env := &SyncEnvelope{}

	for _, layer := range layers {
		if env.Err == nil {
			env.Err = extractPartnerError(layer)
		}
		if env.CustomerID == "" {
			if cust, ok := layer["customer"].(map[string]any); ok {
				env.CustomerID = stringValue(cust["id"])
			}
		}
		if env.BranchID == "" {
			if branch, ok := layer["branch"].(map[string]any); ok {
				env.BranchID = stringValue(branch["id"])
			}
		}
		if len(env.TierIDs) == 0 {
			env.TierIDs = extractIDList(layer["tier"])
		}
		if len(env.TierIDs) == 0 {
			if ta, ok := layer["tier-assignment"].(map[string]any); ok {
				env.TierIDs = extractIDList(ta["data"])
			}
		}
		if len(env.CrewIDs) == 0 {
			env.CrewIDs = extractIDList(layer["customer-crew"])
		}
	}

	// Last resort for the customer id: a bare "id" on the innermost layer,
	// a shape the partner used before it namespaced the reply.
	if env.CustomerID == "" && len(layers) > 0 {
		inner := layers[len(layers)-1]
		if _, isErr := inner["error"]; !isErr {
			env.CustomerID = stringValue(inner["id"])
		}
	}

	return env, nil
}

// unwrapDataLayers returns the root object followed by each nested "data"
// object, up to maxDepth descents
func unwrapDataLayers(root map[string]any, maxDepth int) []map[string]any {
	layers := []map[string]any{root}
	current := root
	for i := 0; i < maxDepth; i++ {
		next, ok := current["data"].(map[string]any)
		if !ok {
			break
		}
		layers = append(layers, next)
		current = next
	}
	return layers
}

// extractPartnerError pulls a partner-side error out of a layer shaped
// {success:false, error:{status, message, ...}}
func extractPartnerError(layer map[string]any) *PartnerError {
	success, hasSuccess := layer["success"].(bool)
	errObj, hasErr := layer["error"].(map[string]any)
	if !hasErr || (hasSuccess && success) {
		return nil
	}

	pe := &PartnerError{}
	switch status := errObj["status"].(type) {
	case float64:
		pe.Status = int(status)
	case string:
		if n, err := strconv.Atoi(status); err == nil {
			pe.Status = n
		}
	}
	switch msg := errObj["message"].(type) {
	case string:
		pe.Message = msg
	case []any:
		parts := make([]string, 0, len(msg))
		for _, m := range msg {
			parts = append(parts, stringValue(m))
		}
		pe.Message = strings.Join(parts, "; ")
	}
	return pe
}

// extractIDList pulls the "id" of each element from an array-valued field
func extractIDList(value any) []string {
	items, ok := value.([]any)
	if !ok || len(items) == 0 {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if id := stringValue(obj["id"]); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}

// stringValue renders a scalar JSON value as a string
func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}
