package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/mitra/backend/internal/application/catalog"
)

// VendorHandler handles vendor-related API endpoints
type VendorHandler struct {
	BaseHandler
	vendors *catalogapp.VendorService
}

// NewVendorHandler creates a new VendorHandler
func NewVendorHandler(vendors *catalogapp.VendorService) *VendorHandler {
	return &VendorHandler{vendors: vendors}
}

// Create creates a new vendor
func (h *VendorHandler) Create(c *gin.Context) {
	var req catalogapp.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.vendors.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID retrieves a vendor by ID
func (h *VendorHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vendor ID")
		return
	}

	resp, err := h.vendors.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// List retrieves vendors with pagination
func (h *VendorHandler) List(c *gin.Context) {
	var filter catalogapp.ListFilter
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

	vendors, total, err := h.vendors.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, vendors, total, filter.Page, filter.PageSize)
}

// Update updates a vendor
func (h *VendorHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vendor ID")
		return
	}

	var req catalogapp.UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.vendors.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a vendor
func (h *VendorHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vendor ID")
		return
	}

	if err := h.vendors.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// MachineHandler handles machine-related API endpoints
type MachineHandler struct {
	BaseHandler
	machines *catalogapp.MachineService
}

// NewMachineHandler creates a new MachineHandler
func NewMachineHandler(machines *catalogapp.MachineService) *MachineHandler {
	return &MachineHandler{machines: machines}
}

// Create registers a new machine
func (h *MachineHandler) Create(c *gin.Context) {
	var req catalogapp.CreateMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.machines.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID retrieves a machine by ID
func (h *MachineHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid machine ID")
		return
	}

	resp, err := h.machines.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// List retrieves machines with pagination
func (h *MachineHandler) List(c *gin.Context) {
	var filter catalogapp.ListFilter
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

	machines, total, err := h.machines.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, machines, total, filter.Page, filter.PageSize)
}

// ListByAccount retrieves all machines placed at an account
func (h *MachineHandler) ListByAccount(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	machines, err := h.machines.ListByAccount(c.Request.Context(), accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, machines)
}

// Assign places a machine at an account
func (h *MachineHandler) Assign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid machine ID")
		return
	}

	var req catalogapp.AssignMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.machines.Assign(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateStatus transitions a machine to a new status
func (h *MachineHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid machine ID")
		return
	}

	var req catalogapp.UpdateMachineStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.machines.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a machine
func (h *MachineHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid machine ID")
		return
	}

	if err := h.machines.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
