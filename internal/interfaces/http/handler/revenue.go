package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	revenueapp "github.com/mitra/backend/internal/application/revenue"
)

// RevenueRuleHandler handles revenue rule API endpoints
type RevenueRuleHandler struct {
	BaseHandler
	rules *revenueapp.Service
}

// NewRevenueRuleHandler creates a new RevenueRuleHandler
func NewRevenueRuleHandler(rules *revenueapp.Service) *RevenueRuleHandler {
	return &RevenueRuleHandler{rules: rules}
}

// Create creates a new revenue rule
func (h *RevenueRuleHandler) Create(c *gin.Context) {
	var req revenueapp.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.rules.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID retrieves a revenue rule by ID
func (h *RevenueRuleHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID")
		return
	}

	resp, err := h.rules.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// List retrieves revenue rules with pagination
func (h *RevenueRuleHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	rules, total, err := h.rules.List(c.Request.Context(), page, pageSize)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, rules, total, page, pageSize)
}

// ListByAccount retrieves the rules scoped to an account
func (h *RevenueRuleHandler) ListByAccount(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	rules, err := h.rules.ListByAccount(c.Request.Context(), accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, rules)
}

// Delete removes a revenue rule
func (h *RevenueRuleHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID")
		return
	}

	if err := h.rules.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
