package catalog

import (
	"strings"

	"github.com/mitra/backend/internal/domain/shared"
)

// Vendor represents a machine vendor in the catalog
type Vendor struct {
	shared.BaseAggregateRoot
	Code        string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string `gorm:"type:varchar(200);not null"`
	ContactName string `gorm:"type:varchar(100)"`
	Phone       string `gorm:"type:varchar(50)"`
	Email       string `gorm:"type:varchar(200)"`
	Active      bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Vendor) TableName() string {
	return "vendors"
}

// NewVendor creates a new vendor with required fields
func NewVendor(code, name string) (*Vendor, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Vendor code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Vendor code cannot exceed 50 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Vendor name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Vendor name cannot exceed 200 characters")
	}

	return &Vendor{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Active:            true,
	}, nil
}

// Update updates the vendor's basic information
func (v *Vendor) Update(name, contactName, phone, email string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Vendor name cannot be empty")
	}

	v.Name = name
	v.ContactName = contactName
	v.Phone = phone
	v.Email = email
	v.Touch()
	v.IncrementVersion()

	return nil
}
