package partnersync

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerCommand_WireShapeByMode(t *testing.T) {
	cmd := &CustomerCommand{
		Mode: ModeCreate,
		Customer: &CustomerRecord{
			Name:                "Acme Retail",
			CustomerType:        "INDIVIDUAL",
			Active:              true,
			Address:             &AddressRecord{City: "Jakarta", Country: "Indonesia"},
			DeductionActiveType: DeductionTypeNominal,
		},
		Tiers: []TierRecord{
			{TierType: TierTypeNominal, TierCategory: TierCategoryDiscount, MinAmount: "0", MaxAmount: "100", Fee: "5"},
		},
		Crew:        []CrewRecord{{Name: "Budi"}},
		Beneficiary: &BeneficiaryRecord{FirstName: "Budi", LastName: "Santoso", AccountNumber: "123", Bank: BankRef{ID: "bca"}},
		Branch:      &BranchRecord{Name: "Acme Retail", Code: "ACME-001", Address: &AddressRecord{City: "Jakarta"}},
	}

	t.Run("create", func(t *testing.T) {
		raw, err := json.Marshal(cmd)
		require.NoError(t, err)

		var decoded CustomerCommand
		require.NoError(t, json.Unmarshal(raw, &decoded))

		assert.Equal(t, ModeCreate, decoded.Mode)
		require.NotNil(t, decoded.Customer)
		assert.Equal(t, "Acme Retail", decoded.Customer.Name)
		assert.Equal(t, DeductionTypeNominal, decoded.DeductionActiveType)
		assert.Len(t, decoded.Crew, 1)
		require.NotNil(t, decoded.Branch)
		assert.Equal(t, "ACME-001", decoded.Branch.Code)
	})

	t.Run("update", func(t *testing.T) {
		cmd.Mode = ModeUpdate
		cmd.TierAssignment = &TierAssignment{Data: []TierAssignmentRef{{ID: "ta-1"}}}
		cmd.DeductionActiveType = DeductionTypePercentage

		raw, err := json.Marshal(cmd)
		require.NoError(t, err)

		var decoded CustomerCommand
		require.NoError(t, json.Unmarshal(raw, &decoded))

		assert.Equal(t, ModeUpdate, decoded.Mode)
		assert.Nil(t, decoded.Customer)
		assert.Nil(t, decoded.Branch)
		require.NotNil(t, decoded.TierAssignment)
		assert.Equal(t, "ta-1", decoded.TierAssignment.Data[0].ID)
		assert.Equal(t, DeductionTypePercentage, decoded.DeductionActiveType)
	})
}

func TestCustomerCommand_CreateAlwaysCarriesBeneficiaryKey(t *testing.T) {
	cmd := &CustomerCommand{
		Mode:     ModeCreate,
		Customer: &CustomerRecord{Name: "No Bank"},
	}

	raw, err := json.Marshal(cmd)
	require.NoError(t, err)

	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &keys))
	require.Contains(t, keys, "beneficiary-account")
	assert.Equal(t, "null", string(keys["beneficiary-account"]))
}

func TestProxyConfig_Endpoint(t *testing.T) {
	cfg := ProxyConfig{BaseURL: "https://proxy.internal/", URL: "/partner/customer"}
	assert.Equal(t, "https://proxy.internal/partner/customer", cfg.Endpoint())
}

func TestProxyConfig_ReferencesCustomer(t *testing.T) {
	tests := []struct {
		name string
		cfg  ProxyConfig
		want bool
	}{
		{"by name", ProxyConfig{Name: "Customer Onboarding", URL: "/v1/partner"}, true},
		{"by url", ProxyConfig{Name: "Onboarding", URL: "/partner/customer"}, true},
		{"case insensitive", ProxyConfig{Name: "CUSTOMER"}, true},
		{"unrelated", ProxyConfig{Name: "Invoicing", URL: "/partner/invoice"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.ReferencesCustomer())
		})
	}
}

func TestPositionalCorrelation(t *testing.T) {
	strategy := PositionalCorrelation{}

	t.Run("equal lengths", func(t *testing.T) {
		pairs := strategy.Correlate(2, 2)
		assert.Equal(t, []CorrelationPair{{0, 0}, {1, 1}}, pairs)
	})

	t.Run("truncates to shorter side", func(t *testing.T) {
		assert.Len(t, strategy.Correlate(3, 1), 1)
		assert.Len(t, strategy.Correlate(1, 3), 1)
	})

	t.Run("empty sides", func(t *testing.T) {
		assert.Nil(t, strategy.Correlate(0, 5))
		assert.Nil(t, strategy.Correlate(5, 0))
	})
}
