package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitra/backend/internal/interfaces/http/dto"
)

type validationTestRequest struct {
	Code  string `json:"code" binding:"required,max=10"`
	Email string `json:"email" binding:"omitempty,email"`
	Count int    `json:"count" binding:"omitempty,gte=1"`
}

func newValidationTestRouter() *gin.Engine {
	SetupValidator()

	router := gin.New()
	router.POST("/", func(c *gin.Context) {
		var req validationTestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func postJSON(t *testing.T, router *gin.Engine, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleValidationError_FieldDetails(t *testing.T) {
	router := newValidationTestRouter()

	w := postJSON(t, router, map[string]any{
		"email": "not-an-email",
		"count": -1,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

	// JSON tag names, not Go field names
	fields := make(map[string]string)
	for _, d := range resp.Error.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "This field is required", fields["code"])
	assert.Equal(t, "Invalid email format", fields["email"])
	assert.Contains(t, fields, "count")
}

func TestHandleValidationError_ValidPayload(t *testing.T) {
	router := newValidationTestRouter()

	w := postJSON(t, router, map[string]any{"code": "ACME-001"})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	router := newValidationTestRouter()

	req := httptest.NewRequest("POST", "/", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	// Syntax errors carry no field details
	assert.Empty(t, resp.Error.Details)
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-1")

	assert.False(t, resp.Success)
	assert.Equal(t, "req-1", resp.RequestID)
	require.NotNil(t, resp.Error)
	assert.Empty(t, resp.Error.Details)
}
