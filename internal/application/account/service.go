package account

import (
	"context"

	"github.com/google/uuid"

	"github.com/mitra/backend/internal/domain/account"
	"github.com/mitra/backend/internal/domain/shared"
)

// Service handles account-related business operations
type Service struct {
	accounts account.Repository
	tiers    account.PackageTierRepository
	pics     account.PICRepository
}

// NewService creates a new account Service
func NewService(accounts account.Repository, tiers account.PackageTierRepository, pics account.PICRepository) *Service {
	return &Service{
		accounts: accounts,
		tiers:    tiers,
		pics:     pics,
	}
}

// Create creates a new account
func (s *Service) Create(ctx context.Context, req CreateAccountRequest) (*AccountResponse, error) {
	exists, err := s.accounts.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Account with this code already exists")
	}

	acc, err := account.NewAccount(req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	if req.Phone != "" || req.Email != "" {
		if err := acc.SetContact(req.Phone, req.Email); err != nil {
			return nil, err
		}
	}
	if req.KTP != "" || req.NPWP != "" {
		if err := acc.SetIdentity(req.KTP, req.NPWP); err != nil {
			return nil, err
		}
	}

	if err := s.accounts.Save(ctx, acc); err != nil {
		return nil, err
	}

	response := ToAccountResponse(acc)
	return &response, nil
}

// GetByID retrieves an account with all nested collections
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	acc, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToAccountResponse(acc)
	return &response, nil
}

// GetByCode retrieves an account by its code
func (s *Service) GetByCode(ctx context.Context, code string) (*AccountResponse, error) {
	acc, err := s.accounts.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	response := ToAccountResponse(acc)
	return &response, nil
}

// List retrieves accounts with filtering and pagination
func (s *Service) List(ctx context.Context, filter AccountListFilter) ([]AccountListResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	accounts, total, err := s.accounts.FindAll(ctx, account.ListFilter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		Active:   filter.Active,
	})
	if err != nil {
		return nil, 0, err
	}

	return ToAccountListResponses(accounts), total, nil
}

// Update updates an account's basic information
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateAccountRequest) (*AccountResponse, error) {
	acc, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := acc.Update(*req.Name); err != nil {
			return nil, err
		}
	}

	if req.Phone != nil || req.Email != nil {
		phone := acc.Phone
		email := acc.Email
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.Email != nil {
			email = *req.Email
		}
		if err := acc.SetContact(phone, email); err != nil {
			return nil, err
		}
	}

	if req.KTP != nil || req.NPWP != nil {
		ktp := acc.KTP
		npwp := acc.NPWP
		if req.KTP != nil {
			ktp = *req.KTP
		}
		if req.NPWP != nil {
			npwp = *req.NPWP
		}
		if err := acc.SetIdentity(ktp, npwp); err != nil {
			return nil, err
		}
	}

	if err := s.accounts.Save(ctx, acc); err != nil {
		return nil, err
	}

	response := ToAccountResponse(acc)
	return &response, nil
}

// Delete removes an account
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.accounts.FindByID(ctx, id); err != nil {
		return err
	}
	return s.accounts.Delete(ctx, id)
}

// Activate activates an account
func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	acc, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := acc.Activate(); err != nil {
		return nil, err
	}
	if err := s.accounts.Save(ctx, acc); err != nil {
		return nil, err
	}

	response := ToAccountResponse(acc)
	return &response, nil
}

// Deactivate deactivates an account
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	acc, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := acc.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.accounts.Save(ctx, acc); err != nil {
		return nil, err
	}

	response := ToAccountResponse(acc)
	return &response, nil
}

// AddAddress attaches an address to an account. Flagging the new address
// primary clears the flag on the others.
func (s *Service) AddAddress(ctx context.Context, id uuid.UUID, req AddAddressRequest) (*AccountResponse, error) {
	acc, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.IsPrimary {
		for i := range acc.Addresses {
			acc.Addresses[i].IsPrimary = false
		}
	}
	acc.Addresses = append(acc.Addresses, account.Address{
		BaseEntity: shared.NewBaseEntity(),
		AccountID:  acc.ID,
		Street:     req.Street,
		City:       req.City,
		Province:   req.Province,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsPrimary:  req.IsPrimary,
	})
	acc.IncrementVersion()

	if err := s.accounts.Save(ctx, acc); err != nil {
		return nil, err
	}

	response := ToAccountResponse(acc)
	return &response, nil
}

// AddPIC attaches a person-in-charge to an account. Flagging the new PIC as
// owner clears the flag on the others; there is at most one owner.
func (s *Service) AddPIC(ctx context.Context, id uuid.UUID, req AddPICRequest) (*AccountResponse, error) {
	acc, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.IsOwner {
		for i := range acc.PICs {
			acc.PICs[i].IsOwner = false
		}
	}
	acc.PICs = append(acc.PICs, account.PIC{
		BaseEntity: shared.NewBaseEntity(),
		AccountID:  acc.ID,
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Username:   req.Username,
		KTP:        req.KTP,
		NPWP:       req.NPWP,
		IsOwner:    req.IsOwner,
	})
	acc.IncrementVersion()

	if err := s.accounts.Save(ctx, acc); err != nil {
		return nil, err
	}

	response := ToAccountResponse(acc)
	return &response, nil
}

// AddBankAccount attaches a beneficiary bank account. The holder name is
// split eagerly so downstream consumers never re-derive it.
func (s *Service) AddBankAccount(ctx context.Context, id uuid.UUID, req AddBankAccountRequest) (*AccountResponse, error) {
	acc, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	first, last := splitName(req.HolderName)
	acc.BankAccounts = append(acc.BankAccounts, account.BankAccount{
		BaseEntity:      shared.NewBaseEntity(),
		AccountID:       acc.ID,
		BankID:          req.BankID,
		BankName:        req.BankName,
		AccountNumber:   req.AccountNumber,
		HolderName:      req.HolderName,
		HolderFirstName: first,
		HolderLastName:  last,
	})
	acc.IncrementVersion()

	if err := s.accounts.Save(ctx, acc); err != nil {
		return nil, err
	}

	response := ToAccountResponse(acc)
	return &response, nil
}

// AddPackageTier attaches a package tier to an account
func (s *Service) AddPackageTier(ctx context.Context, id uuid.UUID, req AddPackageTierRequest) (*AccountResponse, error) {
	acc, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.MaxAmount.LessThan(req.MinAmount) {
		return nil, shared.NewDomainError("INVALID_RANGE", "Tier max amount cannot be below min amount")
	}

	acc.PackageTiers = append(acc.PackageTiers, account.PackageTier{
		BaseEntity:    shared.NewBaseEntity(),
		AccountID:     acc.ID,
		Percentage:    req.Percentage,
		BillingMethod: account.BillingMethod(req.BillingMethod),
		MinAmount:     req.MinAmount,
		MaxAmount:     req.MaxAmount,
		Fee:           req.Fee,
		ValidFrom:     req.ValidFrom,
		ValidTo:       req.ValidTo,
	})
	acc.IncrementVersion()

	if err := s.accounts.Save(ctx, acc); err != nil {
		return nil, err
	}

	response := ToAccountResponse(acc)
	return &response, nil
}

// RemovePackageTier detaches a package tier from an account
func (s *Service) RemovePackageTier(ctx context.Context, accountID, tierID uuid.UUID) error {
	acc, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	for i := range acc.PackageTiers {
		if acc.PackageTiers[i].ID == tierID {
			return s.tiers.Delete(ctx, tierID)
		}
	}
	return shared.ErrNotFound
}

// RemovePIC detaches a person-in-charge from an account
func (s *Service) RemovePIC(ctx context.Context, accountID, picID uuid.UUID) error {
	acc, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	for i := range acc.PICs {
		if acc.PICs[i].ID == picID {
			return s.pics.Delete(ctx, picID)
		}
	}
	return shared.ErrNotFound
}

// splitName splits a full name on the first space
func splitName(name string) (string, string) {
	for i, r := range name {
		if r == ' ' {
			return name[:i], name[i+1:]
		}
	}
	return name, ""
}
