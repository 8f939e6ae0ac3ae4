package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mitra/backend/internal/domain/revenue"
	"github.com/mitra/backend/internal/domain/shared"
)

// GormRevenueRuleRepository implements revenue.Repository using GORM
type GormRevenueRuleRepository struct {
	db *gorm.DB
}

// NewGormRevenueRuleRepository creates a new GormRevenueRuleRepository
func NewGormRevenueRuleRepository(db *gorm.DB) *GormRevenueRuleRepository {
	return &GormRevenueRuleRepository{db: db}
}

// FindByID finds a revenue rule by ID
func (r *GormRevenueRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*revenue.RevenueRule, error) {
	var rule revenue.RevenueRule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// FindByAccount returns the rules scoped to an account
func (r *GormRevenueRuleRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]revenue.RevenueRule, error) {
	var rules []revenue.RevenueRule
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// FindAll finds revenue rules with pagination
func (r *GormRevenueRuleRepository) FindAll(ctx context.Context, page, pageSize int) ([]revenue.RevenueRule, int64, error) {
	query := r.db.WithContext(ctx).Model(&revenue.RevenueRule{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rules []revenue.RevenueRule
	offset := (page - 1) * pageSize
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&rules).Error; err != nil {
		return nil, 0, err
	}

	return rules, total, nil
}

// Save creates or updates a revenue rule
func (r *GormRevenueRuleRepository) Save(ctx context.Context, rule *revenue.RevenueRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

// Delete removes a revenue rule
func (r *GormRevenueRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&revenue.RevenueRule{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
