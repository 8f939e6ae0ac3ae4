package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/mitra/backend/internal/domain/account"
	"github.com/mitra/backend/internal/domain/catalog"
	"github.com/mitra/backend/internal/domain/shared"
)

// VendorService handles vendor-related business operations
type VendorService struct {
	vendors catalog.VendorRepository
}

// NewVendorService creates a new VendorService
func NewVendorService(vendors catalog.VendorRepository) *VendorService {
	return &VendorService{vendors: vendors}
}

// Create creates a new vendor
func (s *VendorService) Create(ctx context.Context, req CreateVendorRequest) (*VendorResponse, error) {
	exists, err := s.vendors.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Vendor with this code already exists")
	}

	vendor, err := catalog.NewVendor(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if req.ContactName != "" || req.Phone != "" || req.Email != "" {
		if err := vendor.Update(req.Name, req.ContactName, req.Phone, req.Email); err != nil {
			return nil, err
		}
	}

	if err := s.vendors.Save(ctx, vendor); err != nil {
		return nil, err
	}

	response := ToVendorResponse(vendor)
	return &response, nil
}

// GetByID retrieves a vendor by ID
func (s *VendorService) GetByID(ctx context.Context, id uuid.UUID) (*VendorResponse, error) {
	vendor, err := s.vendors.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToVendorResponse(vendor)
	return &response, nil
}

// List retrieves vendors with pagination
func (s *VendorService) List(ctx context.Context, filter ListFilter) ([]VendorResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	vendors, total, err := s.vendors.FindAll(ctx, catalog.ListFilter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
	})
	if err != nil {
		return nil, 0, err
	}

	return ToVendorResponses(vendors), total, nil
}

// Update updates a vendor
func (s *VendorService) Update(ctx context.Context, id uuid.UUID, req UpdateVendorRequest) (*VendorResponse, error) {
	vendor, err := s.vendors.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := vendor.Update(req.Name, req.ContactName, req.Phone, req.Email); err != nil {
		return nil, err
	}
	if err := s.vendors.Save(ctx, vendor); err != nil {
		return nil, err
	}

	response := ToVendorResponse(vendor)
	return &response, nil
}

// Delete removes a vendor
func (s *VendorService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.vendors.FindByID(ctx, id); err != nil {
		return err
	}
	return s.vendors.Delete(ctx, id)
}

// MachineService handles machine-related business operations
type MachineService struct {
	machines catalog.MachineRepository
	vendors  catalog.VendorRepository
	accounts account.Repository
}

// NewMachineService creates a new MachineService
func NewMachineService(machines catalog.MachineRepository, vendors catalog.VendorRepository, accounts account.Repository) *MachineService {
	return &MachineService{
		machines: machines,
		vendors:  vendors,
		accounts: accounts,
	}
}

// Create registers a new machine
func (s *MachineService) Create(ctx context.Context, req CreateMachineRequest) (*MachineResponse, error) {
	exists, err := s.machines.ExistsBySerialNumber(ctx, req.SerialNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Machine with this serial number already exists")
	}

	machine, err := catalog.NewMachine(req.SerialNumber, req.Model)
	if err != nil {
		return nil, err
	}
	if req.VendorID != nil {
		if _, err := s.vendors.FindByID(ctx, *req.VendorID); err != nil {
			return nil, err
		}
		machine.SetVendor(*req.VendorID)
	}

	if err := s.machines.Save(ctx, machine); err != nil {
		return nil, err
	}

	response := ToMachineResponse(machine)
	return &response, nil
}

// GetByID retrieves a machine by ID
func (s *MachineService) GetByID(ctx context.Context, id uuid.UUID) (*MachineResponse, error) {
	machine, err := s.machines.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToMachineResponse(machine)
	return &response, nil
}

// List retrieves machines with pagination
func (s *MachineService) List(ctx context.Context, filter ListFilter) ([]MachineResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	machines, total, err := s.machines.FindAll(ctx, catalog.ListFilter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
	})
	if err != nil {
		return nil, 0, err
	}

	return ToMachineResponses(machines), total, nil
}

// ListByAccount retrieves all machines placed at an account
func (s *MachineService) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]MachineResponse, error) {
	machines, err := s.machines.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return ToMachineResponses(machines), nil
}

// Assign places a machine at an account
func (s *MachineService) Assign(ctx context.Context, id uuid.UUID, req AssignMachineRequest) (*MachineResponse, error) {
	machine, err := s.machines.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.accounts.FindByID(ctx, req.AccountID); err != nil {
		return nil, err
	}

	machine.AssignToAccount(req.AccountID, req.Location)
	if err := s.machines.Save(ctx, machine); err != nil {
		return nil, err
	}

	response := ToMachineResponse(machine)
	return &response, nil
}

// UpdateStatus transitions a machine to a new status
func (s *MachineService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateMachineStatusRequest) (*MachineResponse, error) {
	machine, err := s.machines.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := machine.SetStatus(catalog.MachineStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.machines.Save(ctx, machine); err != nil {
		return nil, err
	}

	response := ToMachineResponse(machine)
	return &response, nil
}

// Delete removes a machine
func (s *MachineService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.machines.FindByID(ctx, id); err != nil {
		return err
	}
	return s.machines.Delete(ctx, id)
}
