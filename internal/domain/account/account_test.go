package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitra/backend/internal/domain/shared"
)

func TestNewAccount(t *testing.T) {
	t.Run("valid account", func(t *testing.T) {
		acc, err := NewAccount("acme-001", "Acme Retail")

		require.NoError(t, err)
		assert.Equal(t, "ACME-001", acc.Code)
		assert.Equal(t, "Acme Retail", acc.Name)
		assert.True(t, acc.Active)
		assert.NotEqual(t, uuid0, acc.ID.String())
	})

	t.Run("empty code", func(t *testing.T) {
		acc, err := NewAccount("", "Acme Retail")

		assert.Nil(t, acc)
		assertDomainCode(t, err, "INVALID_CODE")
	})

	t.Run("code with invalid characters", func(t *testing.T) {
		_, err := NewAccount("acme 001!", "Acme Retail")
		assertDomainCode(t, err, "INVALID_CODE")
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := NewAccount("ACME-001", "")
		assertDomainCode(t, err, "INVALID_NAME")
	})
}

const uuid0 = "00000000-0000-0000-0000-000000000000"

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestAccount_SetContact(t *testing.T) {
	acc, _ := NewAccount("ACME-001", "Acme Retail")

	t.Run("valid contact", func(t *testing.T) {
		err := acc.SetContact("08123456789", "finance@acme.example")

		require.NoError(t, err)
		assert.Equal(t, "08123456789", acc.Phone)
		assert.Equal(t, "finance@acme.example", acc.Email)
	})

	t.Run("invalid phone", func(t *testing.T) {
		err := acc.SetContact("phone#1", "finance@acme.example")
		assertDomainCode(t, err, "INVALID_PHONE")
	})

	t.Run("invalid email", func(t *testing.T) {
		err := acc.SetContact("08123456789", "not-an-email")
		assertDomainCode(t, err, "INVALID_EMAIL")
	})

	t.Run("empty values are allowed", func(t *testing.T) {
		err := acc.SetContact("", "")
		require.NoError(t, err)
	})
}

func TestAccount_IsSynced(t *testing.T) {
	acc, _ := NewAccount("ACME-001", "Acme Retail")

	assert.False(t, acc.IsSynced())

	acc.ExternalRef = "   "
	assert.False(t, acc.IsSynced())

	acc.SetExternalRef("cust-ext-1")
	assert.True(t, acc.IsSynced())
}

func TestAccount_SetExternalRef_BumpsVersion(t *testing.T) {
	acc, _ := NewAccount("ACME-001", "Acme Retail")
	before := acc.Version

	acc.SetExternalRef("cust-ext-1")

	assert.Equal(t, before+1, acc.Version)
}

func TestAccount_ActivationLifecycle(t *testing.T) {
	acc, _ := NewAccount("ACME-001", "Acme Retail")

	err := acc.Activate()
	assertDomainCode(t, err, "ALREADY_ACTIVE")

	require.NoError(t, acc.Deactivate())
	assert.False(t, acc.Active)

	err = acc.Deactivate()
	assertDomainCode(t, err, "ALREADY_INACTIVE")

	require.NoError(t, acc.Activate())
	assert.True(t, acc.Active)
}

func TestAccount_PrimaryAddress(t *testing.T) {
	acc, _ := NewAccount("ACME-001", "Acme Retail")

	assert.Nil(t, acc.PrimaryAddress())

	acc.Addresses = []Address{
		{City: "Bandung"},
		{City: "Jakarta", IsPrimary: true},
	}
	primary := acc.PrimaryAddress()
	require.NotNil(t, primary)
	assert.Equal(t, "Jakarta", primary.City)

	acc.Addresses[1].IsPrimary = false
	fallback := acc.PrimaryAddress()
	require.NotNil(t, fallback)
	assert.Equal(t, "Bandung", fallback.City)
}

func TestAccount_OwnerPIC(t *testing.T) {
	acc, _ := NewAccount("ACME-001", "Acme Retail")

	assert.Nil(t, acc.OwnerPIC())

	acc.PICs = []PIC{
		{Name: "Siti"},
		{Name: "Budi", IsOwner: true},
	}
	owner := acc.OwnerPIC()
	require.NotNil(t, owner)
	assert.Equal(t, "Budi", owner.Name)
}

func TestPackageTier_IsAutoDeduct(t *testing.T) {
	auto := PackageTier{BillingMethod: BillingMethodAutoDeduct}
	invoiced := PackageTier{BillingMethod: BillingMethodInvoice}

	assert.True(t, auto.IsAutoDeduct())
	assert.False(t, invoiced.IsAutoDeduct())
}
