package revenue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mitra/backend/internal/domain/account"
	"github.com/mitra/backend/internal/domain/revenue"
)

// CreateRuleRequest represents the request to create a revenue rule
type CreateRuleRequest struct {
	Name         string          `json:"name" binding:"required,max=200"`
	Type         string          `json:"type" binding:"required,oneof=percentage nominal"`
	PlatformPart decimal.Decimal `json:"platform_part"`
	AccountPart  decimal.Decimal `json:"account_part"`
	AccountID    *uuid.UUID      `json:"account_id"`
	ValidFrom    *time.Time      `json:"valid_from"`
	ValidTo      *time.Time      `json:"valid_to"`
}

// RuleResponse represents a revenue rule in API responses
type RuleResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	PlatformPart decimal.Decimal `json:"platform_part"`
	AccountPart  decimal.Decimal `json:"account_part"`
	AccountID    *uuid.UUID      `json:"account_id"`
	ValidFrom    *time.Time      `json:"valid_from"`
	ValidTo      *time.Time      `json:"valid_to"`
	Active       bool            `json:"active"`
	Effective    bool            `json:"effective"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToRuleResponse converts a domain rule to a response DTO
func ToRuleResponse(r *revenue.RevenueRule) RuleResponse {
	return RuleResponse{
		ID:           r.ID,
		Name:         r.Name,
		Type:         string(r.Type),
		PlatformPart: r.PlatformPart,
		AccountPart:  r.AccountPart,
		AccountID:    r.AccountID,
		ValidFrom:    r.ValidFrom,
		ValidTo:      r.ValidTo,
		Active:       r.Active,
		Effective:    r.IsEffectiveAt(time.Now()),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ToRuleResponses converts a slice of domain rules
func ToRuleResponses(rules []revenue.RevenueRule) []RuleResponse {
	responses := make([]RuleResponse, 0, len(rules))
	for i := range rules {
		responses = append(responses, ToRuleResponse(&rules[i]))
	}
	return responses
}

// Service handles revenue rule business operations
type Service struct {
	rules    revenue.Repository
	accounts account.Repository
}

// NewService creates a new revenue Service
func NewService(rules revenue.Repository, accounts account.Repository) *Service {
	return &Service{rules: rules, accounts: accounts}
}

// Create creates a new revenue rule, optionally scoped to an account
func (s *Service) Create(ctx context.Context, req CreateRuleRequest) (*RuleResponse, error) {
	rule, err := revenue.NewRevenueRule(req.Name, revenue.RuleType(req.Type), req.PlatformPart, req.AccountPart)
	if err != nil {
		return nil, err
	}

	if req.AccountID != nil {
		if _, err := s.accounts.FindByID(ctx, *req.AccountID); err != nil {
			return nil, err
		}
		rule.BindToAccount(*req.AccountID)
	}
	if req.ValidFrom != nil || req.ValidTo != nil {
		if err := rule.SetValidity(req.ValidFrom, req.ValidTo); err != nil {
			return nil, err
		}
	}

	if err := s.rules.Save(ctx, rule); err != nil {
		return nil, err
	}

	response := ToRuleResponse(rule)
	return &response, nil
}

// GetByID retrieves a revenue rule by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*RuleResponse, error) {
	rule, err := s.rules.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToRuleResponse(rule)
	return &response, nil
}

// ListByAccount retrieves the rules scoped to an account
func (s *Service) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]RuleResponse, error) {
	rules, err := s.rules.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return ToRuleResponses(rules), nil
}

// List retrieves rules with pagination
func (s *Service) List(ctx context.Context, page, pageSize int) ([]RuleResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	rules, total, err := s.rules.FindAll(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return ToRuleResponses(rules), total, nil
}

// Delete removes a revenue rule
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.rules.FindByID(ctx, id); err != nil {
		return err
	}
	return s.rules.Delete(ctx, id)
}
