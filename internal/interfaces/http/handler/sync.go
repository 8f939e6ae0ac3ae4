package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appsync "github.com/mitra/backend/internal/application/partnersync"
	"github.com/mitra/backend/internal/domain/account"
	"github.com/mitra/backend/internal/domain/partnersync"
)

// AccountSyncer runs the partner synchronization pipeline for one account
type AccountSyncer interface {
	Sync(ctx context.Context, acc *account.Account, opts appsync.SyncOptions) *partnersync.SyncResult
}

// SyncHandler handles partner synchronization endpoints
type SyncHandler struct {
	BaseHandler
	accounts account.Repository
	syncer   AccountSyncer
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(accounts account.Repository, syncer AccountSyncer) *SyncHandler {
	return &SyncHandler{accounts: accounts, syncer: syncer}
}

// Sync pushes an account to the partner system. The response is always the
// structured sync result; its success flag reports the outcome, and the HTTP
// status stays 200 so clients always get the full report. With ?debug=true
// the payload is transformed and validated but never sent.
func (h *SyncHandler) Sync(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	acc, err := h.accounts.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	opts := appsync.SyncOptions{
		ConfigID:  c.Query("config_id"),
		UserID:    getUserID(c),
		AccountID: id.String(),
		Debug:     c.Query("debug") == "true",
	}

	result := h.syncer.Sync(c.Request.Context(), acc, opts)
	h.Success(c, result)
}
