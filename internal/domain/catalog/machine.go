package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/mitra/backend/internal/domain/shared"
)

// MachineStatus represents the operational status of a machine
type MachineStatus string

const (
	MachineStatusActive      MachineStatus = "active"
	MachineStatusInactive    MachineStatus = "inactive"
	MachineStatusMaintenance MachineStatus = "maintenance"
)

// Machine represents a deployed machine in the catalog
type Machine struct {
	shared.BaseAggregateRoot
	SerialNumber string        `gorm:"type:varchar(100);not null;uniqueIndex"`
	Model        string        `gorm:"type:varchar(100)"`
	VendorID     *uuid.UUID    `gorm:"type:uuid;index"`
	AccountID    *uuid.UUID    `gorm:"type:uuid;index"` // placement account
	Status       MachineStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Location     string        `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Machine) TableName() string {
	return "machines"
}

// NewMachine creates a new machine with required fields
func NewMachine(serialNumber, model string) (*Machine, error) {
	if strings.TrimSpace(serialNumber) == "" {
		return nil, shared.NewDomainError("INVALID_SERIAL", "Machine serial number cannot be empty")
	}
	if len(serialNumber) > 100 {
		return nil, shared.NewDomainError("INVALID_SERIAL", "Machine serial number cannot exceed 100 characters")
	}

	return &Machine{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SerialNumber:      serialNumber,
		Model:             model,
		Status:            MachineStatusActive,
	}, nil
}

// AssignToAccount places the machine at an account
func (m *Machine) AssignToAccount(accountID uuid.UUID, location string) {
	m.AccountID = &accountID
	m.Location = location
	m.Touch()
	m.IncrementVersion()
}

// SetVendor links the machine to its vendor
func (m *Machine) SetVendor(vendorID uuid.UUID) {
	m.VendorID = &vendorID
	m.Touch()
	m.IncrementVersion()
}

// SetStatus transitions the machine to a new status
func (m *Machine) SetStatus(status MachineStatus) error {
	switch status {
	case MachineStatusActive, MachineStatusInactive, MachineStatusMaintenance:
	default:
		return shared.NewDomainError("INVALID_STATUS", "Invalid machine status")
	}

	m.Status = status
	m.Touch()
	m.IncrementVersion()

	return nil
}
