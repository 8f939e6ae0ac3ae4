package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/mitra/backend/internal/domain/shared"
)

// Address is a postal address attached to an account. At most one address per
// account should be flagged primary; when the flag is ambiguous the first
// primary-flagged address wins.
type Address struct {
	shared.BaseEntity
	AccountID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Street     string    `gorm:"type:text"`
	City       string    `gorm:"type:varchar(100)"`
	Province   string    `gorm:"type:varchar(100)"`
	PostalCode string    `gorm:"type:varchar(20)"`
	Country    string    `gorm:"type:varchar(100)"`
	IsPrimary  bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Address) TableName() string {
	return "account_addresses"
}

// PIC is a person-in-charge (contact) attached to an account
type PIC struct {
	shared.BaseEntity
	AccountID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(200)"`
	Phone       string    `gorm:"type:varchar(50)"`
	Email       string    `gorm:"type:varchar(200)"`
	Username    string    `gorm:"type:varchar(100)"`
	KTP         string    `gorm:"column:no_ktp;type:varchar(20)"`
	NPWP        string    `gorm:"column:no_npwp;type:varchar(30)"`
	IsOwner     bool      `gorm:"not null;default:false"`
	ExternalRef string    `gorm:"column:uuid_be;type:varchar(100);index"`
}

// TableName returns the table name for GORM
func (PIC) TableName() string {
	return "account_pics"
}

// BankAccount is a beneficiary bank account attached to an account
type BankAccount struct {
	shared.BaseEntity
	AccountID       uuid.UUID `gorm:"type:uuid;not null;index"`
	BankID          string    `gorm:"type:varchar(100)"`
	BankName        string    `gorm:"type:varchar(200)"`
	AccountNumber   string    `gorm:"type:varchar(50)"`
	HolderName      string    `gorm:"type:varchar(200)"`
	HolderFirstName string    `gorm:"type:varchar(100)"`
	HolderLastName  string    `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (BankAccount) TableName() string {
	return "account_bank_accounts"
}

// BillingMethod identifies how fees for a package tier are collected
type BillingMethod string

const (
	// BillingMethodAutoDeduct indicates automatic payment collection
	BillingMethodAutoDeduct BillingMethod = "auto_deduct"
	// BillingMethodInvoice indicates manual invoicing
	BillingMethodInvoice BillingMethod = "invoice"
)

// PackageTier is a discount/fee rule bound to an amount range and a validity
// window, attached to an account
type PackageTier struct {
	shared.BaseEntity
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Percentage    bool            `gorm:"not null;default:false"` // percentage fee vs nominal fee
	BillingMethod BillingMethod   `gorm:"type:varchar(20);not null;default:'invoice'"`
	MinAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MaxAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Fee           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ValidFrom     *time.Time
	ValidTo       *time.Time
	ExternalRef   string `gorm:"column:uuid_be;type:varchar(100);index"`
}

// TableName returns the table name for GORM
func (PackageTier) TableName() string {
	return "account_package_tiers"
}

// IsAutoDeduct returns true if the tier is billed by automatic deduction
func (t *PackageTier) IsAutoDeduct() bool {
	return t.BillingMethod == BillingMethodAutoDeduct
}
