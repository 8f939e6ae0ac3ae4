package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mitra/backend/internal/domain/account"
)

// CreateAccountRequest represents the request to create an account
type CreateAccountRequest struct {
	Code  string `json:"code" binding:"required,max=50"`
	Name  string `json:"name" binding:"required,max=200"`
	Email string `json:"email" binding:"omitempty,email,max=200"`
	Phone string `json:"phone" binding:"omitempty,max=50"`
	KTP   string `json:"ktp" binding:"omitempty,max=20"`
	NPWP  string `json:"npwp" binding:"omitempty,max=30"`
}

// UpdateAccountRequest represents the request to update an account
type UpdateAccountRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=200"`
	Email *string `json:"email" binding:"omitempty,email,max=200"`
	Phone *string `json:"phone" binding:"omitempty,max=50"`
	KTP   *string `json:"ktp" binding:"omitempty,max=20"`
	NPWP  *string `json:"npwp" binding:"omitempty,max=30"`
}

// AddAddressRequest represents the request to attach an address
type AddAddressRequest struct {
	Street     string `json:"street" binding:"omitempty"`
	City       string `json:"city" binding:"omitempty,max=100"`
	Province   string `json:"province" binding:"omitempty,max=100"`
	PostalCode string `json:"postal_code" binding:"omitempty,max=20"`
	Country    string `json:"country" binding:"omitempty,max=100"`
	IsPrimary  bool   `json:"is_primary"`
}

// AddPICRequest represents the request to attach a person-in-charge
type AddPICRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	Phone    string `json:"phone" binding:"omitempty,max=50"`
	Email    string `json:"email" binding:"omitempty,email,max=200"`
	Username string `json:"username" binding:"omitempty,max=100"`
	KTP      string `json:"ktp" binding:"omitempty,max=20"`
	NPWP     string `json:"npwp" binding:"omitempty,max=30"`
	IsOwner  bool   `json:"is_owner"`
}

// AddBankAccountRequest represents the request to attach a bank account
type AddBankAccountRequest struct {
	BankID        string `json:"bank_id" binding:"required,max=100"`
	BankName      string `json:"bank_name" binding:"omitempty,max=200"`
	AccountNumber string `json:"account_number" binding:"required,max=50"`
	HolderName    string `json:"holder_name" binding:"required,max=200"`
}

// AddPackageTierRequest represents the request to attach a package tier
type AddPackageTierRequest struct {
	Percentage    bool            `json:"percentage"`
	BillingMethod string          `json:"billing_method" binding:"required,oneof=auto_deduct invoice"`
	MinAmount     decimal.Decimal `json:"min_amount"`
	MaxAmount     decimal.Decimal `json:"max_amount"`
	Fee           decimal.Decimal `json:"fee"`
	ValidFrom     *time.Time      `json:"valid_from"`
	ValidTo       *time.Time      `json:"valid_to"`
}

// AccountListFilter holds the query parameters for listing accounts
type AccountListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
}

// AddressResponse represents an address in API responses
type AddressResponse struct {
	ID         uuid.UUID `json:"id"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	Province   string    `json:"province"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	IsPrimary  bool      `json:"is_primary"`
}

// PICResponse represents a person-in-charge in API responses
type PICResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	KTP         string    `json:"ktp"`
	NPWP        string    `json:"npwp"`
	IsOwner     bool      `json:"is_owner"`
	ExternalRef string    `json:"external_ref,omitempty"`
}

// BankAccountResponse represents a bank account in API responses
type BankAccountResponse struct {
	ID            uuid.UUID `json:"id"`
	BankID        string    `json:"bank_id"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	HolderName    string    `json:"holder_name"`
}

// PackageTierResponse represents a package tier in API responses
type PackageTierResponse struct {
	ID            uuid.UUID       `json:"id"`
	Percentage    bool            `json:"percentage"`
	BillingMethod string          `json:"billing_method"`
	MinAmount     decimal.Decimal `json:"min_amount"`
	MaxAmount     decimal.Decimal `json:"max_amount"`
	Fee           decimal.Decimal `json:"fee"`
	ValidFrom     *time.Time      `json:"valid_from"`
	ValidTo       *time.Time      `json:"valid_to"`
	ExternalRef   string          `json:"external_ref,omitempty"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID           uuid.UUID             `json:"id"`
	Code         string                `json:"code"`
	Name         string                `json:"name"`
	Email        string                `json:"email"`
	Phone        string                `json:"phone"`
	KTP          string                `json:"ktp"`
	NPWP         string                `json:"npwp"`
	Active       bool                  `json:"active"`
	Synced       bool                  `json:"synced"`
	ExternalRef  string                `json:"external_ref,omitempty"`
	Addresses    []AddressResponse     `json:"addresses"`
	PICs         []PICResponse         `json:"pics"`
	BankAccounts []BankAccountResponse `json:"bank_accounts"`
	PackageTiers []PackageTierResponse `json:"package_tiers"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// AccountListResponse is the trimmed shape used in listings
type AccountListResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Active      bool      `json:"active"`
	Synced      bool      `json:"synced"`
	ExternalRef string    `json:"external_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToAccountResponse converts a domain account to a response DTO
func ToAccountResponse(a *account.Account) AccountResponse {
	resp := AccountResponse{
		ID:           a.ID,
		Code:         a.Code,
		Name:         a.Name,
		Email:        a.Email,
		Phone:        a.Phone,
		KTP:          a.KTP,
		NPWP:         a.NPWP,
		Active:       a.Active,
		Synced:       a.IsSynced(),
		ExternalRef:  a.ExternalRef,
		Addresses:    make([]AddressResponse, 0, len(a.Addresses)),
		PICs:         make([]PICResponse, 0, len(a.PICs)),
		BankAccounts: make([]BankAccountResponse, 0, len(a.BankAccounts)),
		PackageTiers: make([]PackageTierResponse, 0, len(a.PackageTiers)),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	for _, addr := range a.Addresses {
		resp.Addresses = append(resp.Addresses, AddressResponse{
			ID:         addr.ID,
			Street:     addr.Street,
			City:       addr.City,
			Province:   addr.Province,
			PostalCode: addr.PostalCode,
			Country:    addr.Country,
			IsPrimary:  addr.IsPrimary,
		})
	}
	for _, pic := range a.PICs {
		resp.PICs = append(resp.PICs, PICResponse{
			ID:          pic.ID,
			Name:        pic.Name,
			Phone:       pic.Phone,
			Email:       pic.Email,
			Username:    pic.Username,
			KTP:         pic.KTP,
			NPWP:        pic.NPWP,
			IsOwner:     pic.IsOwner,
			ExternalRef: pic.ExternalRef,
		})
	}
	for _, bank := range a.BankAccounts {
		resp.BankAccounts = append(resp.BankAccounts, BankAccountResponse{
			ID:            bank.ID,
			BankID:        bank.BankID,
			BankName:      bank.BankName,
			AccountNumber: bank.AccountNumber,
			HolderName:    bank.HolderName,
		})
	}
	for _, tier := range a.PackageTiers {
		resp.PackageTiers = append(resp.PackageTiers, PackageTierResponse{
			ID:            tier.ID,
			Percentage:    tier.Percentage,
			BillingMethod: string(tier.BillingMethod),
			MinAmount:     tier.MinAmount,
			MaxAmount:     tier.MaxAmount,
			Fee:           tier.Fee,
			ValidFrom:     tier.ValidFrom,
			ValidTo:       tier.ValidTo,
			ExternalRef:   tier.ExternalRef,
		})
	}
	return resp
}

// ToAccountListResponse converts a domain account to the listing DTO
func ToAccountListResponse(a *account.Account) AccountListResponse {
	return AccountListResponse{
		ID:          a.ID,
		Code:        a.Code,
		Name:        a.Name,
		Email:       a.Email,
		Phone:       a.Phone,
		Active:      a.Active,
		Synced:      a.IsSynced(),
		ExternalRef: a.ExternalRef,
		CreatedAt:   a.CreatedAt,
	}
}

// ToAccountListResponses converts a slice of domain accounts
func ToAccountListResponses(accounts []account.Account) []AccountListResponse {
	responses := make([]AccountListResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, ToAccountListResponse(&accounts[i]))
	}
	return responses
}
