package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter holds filtering and pagination options for catalog listings
type ListFilter struct {
	Page     int
	PageSize int
	Search   string
}

// VendorRepository defines the interface for vendor persistence
type VendorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)
	FindAll(ctx context.Context, filter ListFilter) ([]Vendor, int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, vendor *Vendor) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MachineRepository defines the interface for machine persistence
type MachineRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Machine, error)
	FindAll(ctx context.Context, filter ListFilter) ([]Machine, int64, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]Machine, error)
	ExistsBySerialNumber(ctx context.Context, serialNumber string) (bool, error)
	Save(ctx context.Context, machine *Machine) error
	Delete(ctx context.Context, id uuid.UUID) error
}
