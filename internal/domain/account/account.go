package account

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitra/backend/internal/domain/shared"
)

// Account represents a business account (merchant master record).
// It is the aggregate root for account-related operations and carries the
// nested collections the partner synchronization pipeline consumes.
type Account struct {
	shared.BaseAggregateRoot
	Code        string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string     `gorm:"type:varchar(200);not null"`
	Email       string     `gorm:"type:varchar(200);index"`
	Phone       string     `gorm:"type:varchar(50);index"`
	KTP         string     `gorm:"column:no_ktp;type:varchar(20)"`  // national identity number
	NPWP        string     `gorm:"column:no_npwp;type:varchar(30)"` // tax identification number
	Active      bool       `gorm:"not null;default:true"`
	ExternalRef string     `gorm:"column:uuid_be;type:varchar(100);index"` // identifier assigned by the partner system
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`

	Addresses    []Address     `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	PICs         []PIC         `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	BankAccounts []BankAccount `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	PackageTiers []PackageTier `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a new account with required fields
func NewAccount(code, name string) (*Account, error) {
	if err := validateAccountCode(code); err != nil {
		return nil, err
	}
	if err := validateAccountName(name); err != nil {
		return nil, err
	}

	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Active:            true,
	}, nil
}

// Update updates the account's basic information
func (a *Account) Update(name string) error {
	if err := validateAccountName(name); err != nil {
		return err
	}

	a.Name = name
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// SetContact sets the account's contact information
func (a *Account) SetContact(phone, email string) error {
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	a.Phone = phone
	a.Email = email
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// SetIdentity sets the account's KTP and NPWP numbers
func (a *Account) SetIdentity(ktp, npwp string) error {
	if ktp != "" && len(ktp) > 20 {
		return shared.NewDomainError("INVALID_KTP", "KTP number cannot exceed 20 characters")
	}
	if npwp != "" && len(npwp) > 30 {
		return shared.NewDomainError("INVALID_NPWP", "NPWP number cannot exceed 30 characters")
	}

	a.KTP = ktp
	a.NPWP = npwp
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// SetExternalRef records the identifier assigned by the partner system
func (a *Account) SetExternalRef(ref string) {
	a.ExternalRef = ref
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// IsSynced returns true if the account has been assigned a partner identifier.
// The synchronization pipeline branches on this: synced accounts are updated
// on the partner side, unsynced accounts are created.
func (a *Account) IsSynced() bool {
	return strings.TrimSpace(a.ExternalRef) != ""
}

// Activate activates the account
func (a *Account) Activate() error {
	if a.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Account is already active")
	}
	a.Active = true
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Deactivate deactivates the account
func (a *Account) Deactivate() error {
	if !a.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Account is already inactive")
	}
	a.Active = false
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// PrimaryAddress returns the first address flagged primary, falling back to
// the first address. Returns nil when the account has no addresses.
func (a *Account) PrimaryAddress() *Address {
	for i := range a.Addresses {
		if a.Addresses[i].IsPrimary {
			return &a.Addresses[i]
		}
	}
	if len(a.Addresses) > 0 {
		return &a.Addresses[0]
	}
	return nil
}

// OwnerPIC returns the first PIC flagged as owner, or nil
func (a *Account) OwnerPIC() *PIC {
	for i := range a.PICs {
		if a.PICs[i].IsOwner {
			return &a.PICs[i]
		}
	}
	return nil
}

// Validation functions

func validateAccountCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Account code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Account code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Account code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateAccountName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Account name cannot exceed 200 characters")
	}
	return nil
}

func validatePhone(phone string) error {
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 50 characters")
	}
	validPhone := regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	if !validPhone.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
