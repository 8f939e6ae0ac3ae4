package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mitra/backend/internal/domain/catalog"
	"github.com/mitra/backend/internal/domain/shared"
)

// GormVendorRepository implements catalog.VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// FindByID finds a vendor by ID
func (r *GormVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Vendor, error) {
	var vendor catalog.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

// FindAll finds all vendors matching the filter
func (r *GormVendorRepository) FindAll(ctx context.Context, filter catalog.ListFilter) ([]catalog.Vendor, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Vendor{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var vendors []catalog.Vendor
	offset := (filter.Page - 1) * filter.PageSize
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.PageSize).
		Find(&vendors).Error; err != nil {
		return nil, 0, err
	}

	return vendors, total, nil
}

// ExistsByCode checks whether a vendor with the code exists
func (r *GormVendorRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Vendor{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a vendor
func (r *GormVendorRepository) Save(ctx context.Context, vendor *catalog.Vendor) error {
	return r.db.WithContext(ctx).Save(vendor).Error
}

// Delete removes a vendor
func (r *GormVendorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Vendor{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormMachineRepository implements catalog.MachineRepository using GORM
type GormMachineRepository struct {
	db *gorm.DB
}

// NewGormMachineRepository creates a new GormMachineRepository
func NewGormMachineRepository(db *gorm.DB) *GormMachineRepository {
	return &GormMachineRepository{db: db}
}

// FindByID finds a machine by ID
func (r *GormMachineRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Machine, error) {
	var machine catalog.Machine
	if err := r.db.WithContext(ctx).First(&machine, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &machine, nil
}

// FindAll finds all machines matching the filter
func (r *GormMachineRepository) FindAll(ctx context.Context, filter catalog.ListFilter) ([]catalog.Machine, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Machine{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(serial_number) LIKE ? OR LOWER(model) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var machines []catalog.Machine
	offset := (filter.Page - 1) * filter.PageSize
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.PageSize).
		Find(&machines).Error; err != nil {
		return nil, 0, err
	}

	return machines, total, nil
}

// FindByAccount returns all machines placed at an account
func (r *GormMachineRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]catalog.Machine, error) {
	var machines []catalog.Machine
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC").
		Find(&machines).Error; err != nil {
		return nil, err
	}
	return machines, nil
}

// ExistsBySerialNumber checks whether a machine with the serial number exists
func (r *GormMachineRepository) ExistsBySerialNumber(ctx context.Context, serialNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Machine{}).
		Where("serial_number = ?", serialNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a machine
func (r *GormMachineRepository) Save(ctx context.Context, machine *catalog.Machine) error {
	return r.db.WithContext(ctx).Save(machine).Error
}

// Delete removes a machine
func (r *GormMachineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Machine{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
