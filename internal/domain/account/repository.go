package account

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter holds filtering and pagination options for account listings
type ListFilter struct {
	Page     int
	PageSize int
	Search   string
	Active   *bool
}

// Repository defines the interface for account persistence
type Repository interface {
	// FindByID finds an account by ID, preloading all nested collections
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByCode finds an account by its code
	FindByCode(ctx context.Context, code string) (*Account, error)

	// FindAll finds all accounts matching the filter
	FindAll(ctx context.Context, filter ListFilter) ([]Account, int64, error)

	// ExistsByCode checks whether an account with the code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *Account) error

	// Delete removes an account
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateExternalRef writes the partner-assigned identifier onto the account.
	// It is the only account mutation the reconciliation step performs.
	UpdateExternalRef(ctx context.Context, id uuid.UUID, ref string) error
}

// PackageTierRepository defines the interface for package tier persistence
type PackageTierRepository interface {
	// FindByAccount returns all tiers for an account
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]PackageTier, error)

	// Save creates or updates a tier
	Save(ctx context.Context, tier *PackageTier) error

	// Delete removes a tier
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateExternalRef writes the partner-assigned identifier onto the tier
	UpdateExternalRef(ctx context.Context, id uuid.UUID, ref string) error
}

// PICRepository defines the interface for person-in-charge persistence
type PICRepository interface {
	// FindByAccount returns all PICs for an account
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]PIC, error)

	// Save creates or updates a PIC
	Save(ctx context.Context, pic *PIC) error

	// Delete removes a PIC
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateExternalRef writes the partner-assigned identifier onto the PIC
	UpdateExternalRef(ctx context.Context, id uuid.UUID, ref string) error
}
