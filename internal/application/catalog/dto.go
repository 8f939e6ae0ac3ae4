package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/mitra/backend/internal/domain/catalog"
)

// CreateVendorRequest represents the request to create a vendor
type CreateVendorRequest struct {
	Code        string `json:"code" binding:"required,max=50"`
	Name        string `json:"name" binding:"required,max=200"`
	ContactName string `json:"contact_name" binding:"omitempty,max=100"`
	Phone       string `json:"phone" binding:"omitempty,max=50"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
}

// UpdateVendorRequest represents the request to update a vendor
type UpdateVendorRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	ContactName string `json:"contact_name" binding:"omitempty,max=100"`
	Phone       string `json:"phone" binding:"omitempty,max=50"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
}

// VendorResponse represents a vendor in API responses
type VendorResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	ContactName string    `json:"contact_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateMachineRequest represents the request to register a machine
type CreateMachineRequest struct {
	SerialNumber string     `json:"serial_number" binding:"required,max=100"`
	Model        string     `json:"model" binding:"omitempty,max=100"`
	VendorID     *uuid.UUID `json:"vendor_id"`
}

// AssignMachineRequest represents the request to place a machine at an account
type AssignMachineRequest struct {
	AccountID uuid.UUID `json:"account_id" binding:"required"`
	Location  string    `json:"location"`
}

// UpdateMachineStatusRequest represents the request to change machine status
type UpdateMachineStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive maintenance"`
}

// MachineResponse represents a machine in API responses
type MachineResponse struct {
	ID           uuid.UUID  `json:"id"`
	SerialNumber string     `json:"serial_number"`
	Model        string     `json:"model"`
	VendorID     *uuid.UUID `json:"vendor_id"`
	AccountID    *uuid.UUID `json:"account_id"`
	Status       string     `json:"status"`
	Location     string     `json:"location"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ListFilter holds the query parameters for catalog listings
type ListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
}

// ToVendorResponse converts a domain vendor to a response DTO
func ToVendorResponse(v *catalog.Vendor) VendorResponse {
	return VendorResponse{
		ID:          v.ID,
		Code:        v.Code,
		Name:        v.Name,
		ContactName: v.ContactName,
		Phone:       v.Phone,
		Email:       v.Email,
		Active:      v.Active,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

// ToVendorResponses converts a slice of domain vendors
func ToVendorResponses(vendors []catalog.Vendor) []VendorResponse {
	responses := make([]VendorResponse, 0, len(vendors))
	for i := range vendors {
		responses = append(responses, ToVendorResponse(&vendors[i]))
	}
	return responses
}

// ToMachineResponse converts a domain machine to a response DTO
func ToMachineResponse(m *catalog.Machine) MachineResponse {
	return MachineResponse{
		ID:           m.ID,
		SerialNumber: m.SerialNumber,
		Model:        m.Model,
		VendorID:     m.VendorID,
		AccountID:    m.AccountID,
		Status:       string(m.Status),
		Location:     m.Location,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ToMachineResponses converts a slice of domain machines
func ToMachineResponses(machines []catalog.Machine) []MachineResponse {
	responses := make([]MachineResponse, 0, len(machines))
	for i := range machines {
		responses = append(responses, ToMachineResponse(&machines[i]))
	}
	return responses
}
