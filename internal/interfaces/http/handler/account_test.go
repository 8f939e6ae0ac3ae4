package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accountapp "github.com/mitra/backend/internal/application/account"
	"github.com/mitra/backend/internal/domain/account"
	"github.com/mitra/backend/internal/domain/shared"
	"github.com/mitra/backend/internal/interfaces/http/dto"
)

type MockPackageTierRepository struct {
	mock.Mock
}

func (m *MockPackageTierRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]account.PackageTier, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.PackageTier), args.Error(1)
}

func (m *MockPackageTierRepository) Save(ctx context.Context, tier *account.PackageTier) error {
	args := m.Called(ctx, tier)
	return args.Error(0)
}

func (m *MockPackageTierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPackageTierRepository) UpdateExternalRef(ctx context.Context, id uuid.UUID, ref string) error {
	args := m.Called(ctx, id, ref)
	return args.Error(0)
}

var _ account.PackageTierRepository = (*MockPackageTierRepository)(nil)

type MockPICRepository struct {
	mock.Mock
}

func (m *MockPICRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]account.PIC, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.PIC), args.Error(1)
}

func (m *MockPICRepository) Save(ctx context.Context, pic *account.PIC) error {
	args := m.Called(ctx, pic)
	return args.Error(0)
}

func (m *MockPICRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPICRepository) UpdateExternalRef(ctx context.Context, id uuid.UUID, ref string) error {
	args := m.Called(ctx, id, ref)
	return args.Error(0)
}

var _ account.PICRepository = (*MockPICRepository)(nil)

func newAccountTestRouter(mockRepo *MockAccountRepository) *gin.Engine {
	svc := accountapp.NewService(mockRepo, new(MockPackageTierRepository), new(MockPICRepository))
	h := NewAccountHandler(svc)

	router := gin.New()
	router.POST("/api/v1/accounts", h.Create)
	router.GET("/api/v1/accounts/:id", h.GetByID)
	return router
}

func TestAccountHandler_Create(t *testing.T) {
	mockRepo := new(MockAccountRepository)
	mockRepo.On("ExistsByCode", mock.Anything, "acme-001").Return(false, nil)
	mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*account.Account")).Return(nil)

	body, _ := json.Marshal(map[string]string{
		"code": "acme-001",
		"name": "Acme Retail",
	})
	req := httptest.NewRequest("POST", "/api/v1/accounts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newAccountTestRouter(mockRepo).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ACME-001", data["code"])

	mockRepo.AssertExpectations(t)
}

func TestAccountHandler_Create_MissingName(t *testing.T) {
	mockRepo := new(MockAccountRepository)

	body, _ := json.Marshal(map[string]string{"code": "acme-001"})
	req := httptest.NewRequest("POST", "/api/v1/accounts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newAccountTestRouter(mockRepo).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "name", resp.Error.Details[0].Field)

	mockRepo.AssertNotCalled(t, "Save")
}

func TestAccountHandler_Create_DuplicateCode(t *testing.T) {
	mockRepo := new(MockAccountRepository)
	mockRepo.On("ExistsByCode", mock.Anything, "acme-001").Return(true, nil)

	body, _ := json.Marshal(map[string]string{
		"code": "acme-001",
		"name": "Acme Retail",
	})
	req := httptest.NewRequest("POST", "/api/v1/accounts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newAccountTestRouter(mockRepo).ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeAlreadyExists, resp.Error.Code)

	mockRepo.AssertNotCalled(t, "Save")
}

func TestAccountHandler_GetByID_NotFound(t *testing.T) {
	accountID := uuid.New()
	mockRepo := new(MockAccountRepository)
	mockRepo.On("FindByID", mock.Anything, accountID).Return(nil, shared.ErrNotFound)

	req := httptest.NewRequest("GET", "/api/v1/accounts/"+accountID.String(), nil)
	w := httptest.NewRecorder()
	newAccountTestRouter(mockRepo).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccountHandler_GetByID_InvalidID(t *testing.T) {
	mockRepo := new(MockAccountRepository)

	req := httptest.NewRequest("GET", "/api/v1/accounts/abc", nil)
	w := httptest.NewRecorder()
	newAccountTestRouter(mockRepo).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockRepo.AssertNotCalled(t, "FindByID")
}
