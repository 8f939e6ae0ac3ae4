package revenue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/mitra/backend/internal/domain/shared"
)

// RuleType discriminates how a revenue share is computed
type RuleType string

const (
	// RuleTypePercentage computes the share as a percentage of the transaction
	RuleTypePercentage RuleType = "percentage"
	// RuleTypeNominal computes the share as a fixed amount per transaction
	RuleTypeNominal RuleType = "nominal"
)

// IsValid returns true if the rule type is valid
func (t RuleType) IsValid() bool {
	return t == RuleTypePercentage || t == RuleTypeNominal
}

// RevenueRule configures how transaction revenue is split between the
// platform and an account
type RevenueRule struct {
	shared.BaseAggregateRoot
	AccountID    *uuid.UUID      `gorm:"type:uuid;index"` // nil = platform default rule
	Name         string          `gorm:"type:varchar(200);not null"`
	Type         RuleType        `gorm:"type:varchar(20);not null"`
	PlatformPart decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AccountPart  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ValidFrom    *time.Time
	ValidTo      *time.Time
	Active       bool `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (RevenueRule) TableName() string {
	return "revenue_rules"
}

// NewRevenueRule creates a new revenue rule with required fields
func NewRevenueRule(name string, ruleType RuleType, platformPart, accountPart decimal.Decimal) (*RevenueRule, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Revenue rule name cannot be empty")
	}
	if !ruleType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Revenue rule type must be 'percentage' or 'nominal'")
	}
	if platformPart.IsNegative() || accountPart.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SHARE", "Revenue shares cannot be negative")
	}
	if ruleType == RuleTypePercentage && platformPart.Add(accountPart).GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_SHARE", "Percentage shares cannot exceed 100 in total")
	}

	return &RevenueRule{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Type:              ruleType,
		PlatformPart:      platformPart,
		AccountPart:       accountPart,
		Active:            true,
	}, nil
}

// BindToAccount scopes the rule to a single account
func (r *RevenueRule) BindToAccount(accountID uuid.UUID) {
	r.AccountID = &accountID
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// SetValidity sets the rule's validity window
func (r *RevenueRule) SetValidity(from, to *time.Time) error {
	if from != nil && to != nil && to.Before(*from) {
		return shared.NewDomainError("INVALID_VALIDITY", "Validity end cannot precede validity start")
	}
	r.ValidFrom = from
	r.ValidTo = to
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// IsEffectiveAt returns true if the rule is active and valid at the given time
func (r *RevenueRule) IsEffectiveAt(t time.Time) bool {
	if !r.Active {
		return false
	}
	if r.ValidFrom != nil && t.Before(*r.ValidFrom) {
		return false
	}
	if r.ValidTo != nil && t.After(*r.ValidTo) {
		return false
	}
	return true
}

// Repository defines the interface for revenue rule persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RevenueRule, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]RevenueRule, error)
	FindAll(ctx context.Context, page, pageSize int) ([]RevenueRule, int64, error)
	Save(ctx context.Context, rule *RevenueRule) error
	Delete(ctx context.Context, id uuid.UUID) error
}
