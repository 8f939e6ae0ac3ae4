package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	accountapp "github.com/mitra/backend/internal/application/account"
)

// AccountHandler handles account-related API endpoints
type AccountHandler struct {
	BaseHandler
	accounts *accountapp.Service
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts *accountapp.Service) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Create creates a new account
func (h *AccountHandler) Create(c *gin.Context) {
	var req accountapp.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.accounts.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID retrieves an account with all nested collections
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	resp, err := h.accounts.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// List retrieves accounts with filtering and pagination
func (h *AccountHandler) List(c *gin.Context) {
	var filter accountapp.AccountListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	accounts, total, err := h.accounts.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, accounts, total, filter.Page, filter.PageSize)
}

// Update updates an account's basic information
func (h *AccountHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	var req accountapp.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.accounts.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes an account
func (h *AccountHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	if err := h.accounts.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Activate activates an account
func (h *AccountHandler) Activate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	resp, err := h.accounts.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Deactivate deactivates an account
func (h *AccountHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	resp, err := h.accounts.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddAddress attaches an address to an account
func (h *AccountHandler) AddAddress(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	var req accountapp.AddAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.accounts.AddAddress(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// AddPIC attaches a person-in-charge to an account
func (h *AccountHandler) AddPIC(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	var req accountapp.AddPICRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.accounts.AddPIC(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// RemovePIC detaches a person-in-charge from an account
func (h *AccountHandler) RemovePIC(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}
	picID, err := uuid.Parse(c.Param("picId"))
	if err != nil {
		h.BadRequest(c, "Invalid PIC ID")
		return
	}

	if err := h.accounts.RemovePIC(c.Request.Context(), accountID, picID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// AddBankAccount attaches a beneficiary bank account
func (h *AccountHandler) AddBankAccount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	var req accountapp.AddBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.accounts.AddBankAccount(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// AddPackageTier attaches a package tier to an account
func (h *AccountHandler) AddPackageTier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	var req accountapp.AddPackageTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.accounts.AddPackageTier(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// RemovePackageTier detaches a package tier from an account
func (h *AccountHandler) RemovePackageTier(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}
	tierID, err := uuid.Parse(c.Param("tierId"))
	if err != nil {
		h.BadRequest(c, "Invalid tier ID")
		return
	}

	if err := h.accounts.RemovePackageTier(c.Request.Context(), accountID, tierID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
