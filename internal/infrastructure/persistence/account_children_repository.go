package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mitra/backend/internal/domain/account"
	"github.com/mitra/backend/internal/domain/shared"
)

// GormPackageTierRepository implements account.PackageTierRepository using GORM
type GormPackageTierRepository struct {
	db *gorm.DB
}

// NewGormPackageTierRepository creates a new GormPackageTierRepository
func NewGormPackageTierRepository(db *gorm.DB) *GormPackageTierRepository {
	return &GormPackageTierRepository{db: db}
}

// FindByAccount returns all tiers for an account
func (r *GormPackageTierRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]account.PackageTier, error) {
	var tiers []account.PackageTier
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC").
		Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

// Save creates or updates a tier
func (r *GormPackageTierRepository) Save(ctx context.Context, tier *account.PackageTier) error {
	return r.db.WithContext(ctx).Save(tier).Error
}

// Delete removes a tier
func (r *GormPackageTierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&account.PackageTier{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateExternalRef writes the partner-assigned identifier onto the tier
func (r *GormPackageTierRepository) UpdateExternalRef(ctx context.Context, id uuid.UUID, ref string) error {
	result := r.db.WithContext(ctx).Model(&account.PackageTier{}).
		Where("id = ?", id).
		Update("uuid_be", ref)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormPICRepository implements account.PICRepository using GORM
type GormPICRepository struct {
	db *gorm.DB
}

// NewGormPICRepository creates a new GormPICRepository
func NewGormPICRepository(db *gorm.DB) *GormPICRepository {
	return &GormPICRepository{db: db}
}

// FindByAccount returns all PICs for an account
func (r *GormPICRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]account.PIC, error) {
	var pics []account.PIC
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC").
		Find(&pics).Error; err != nil {
		return nil, err
	}
	return pics, nil
}

// Save creates or updates a PIC
func (r *GormPICRepository) Save(ctx context.Context, pic *account.PIC) error {
	return r.db.WithContext(ctx).Save(pic).Error
}

// Delete removes a PIC
func (r *GormPICRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&account.PIC{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateExternalRef writes the partner-assigned identifier onto the PIC
func (r *GormPICRepository) UpdateExternalRef(ctx context.Context, id uuid.UUID, ref string) error {
	result := r.db.WithContext(ctx).Model(&account.PIC{}).
		Where("id = ?", id).
		Update("uuid_be", ref)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
