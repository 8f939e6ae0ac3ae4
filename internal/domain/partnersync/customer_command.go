package partnersync

import "encoding/json"

// Mode discriminates between creating a new customer record on the partner
// system and updating an existing one. The mode is derived solely from the
// presence of a partner identifier on the local account.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

// DeductionType is the billing discriminator derived from the account's
// auto-deduct tiers by majority vote
type DeductionType string

const (
	DeductionTypePercentage DeductionType = "percentage"
	DeductionTypeNominal    DeductionType = "nominal"
)

// TierType discriminates how a tier's fee is expressed
const (
	TierTypeNominal    = "nominal"
	TierTypePercentage = "percentage"
)

// TierCategoryDiscount is the only tier category the partner API accepts today
const TierCategoryDiscount = "discount"

// AddressRecord is the partner API's address shape
type AddressRecord struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
	Country string `json:"country,omitempty"`
}

// CustomerRecord is the partner API's customer shape
type CustomerRecord struct {
	ID                  string         `json:"id,omitempty"` // partner identifier, update mode only
	Name                string         `json:"name"`
	Email               string         `json:"email,omitempty"`
	MSISDN              string         `json:"msisdn,omitempty"`
	KTP                 string         `json:"ktp,omitempty"`
	NPWP                string         `json:"npwp,omitempty"`
	CustomerType        string         `json:"customer_type"`
	Active              bool           `json:"active"`
	Address             *AddressRecord `json:"address"`
	DeductionActiveType DeductionType  `json:"deduction_active_type,omitempty"`
}

// TierRecord is the partner API's package tier shape. Amounts travel as
// strings; the validator checks that they parse as numbers.
type TierRecord struct {
	ID           string `json:"id,omitempty"` // partner identifier, update mode only
	TierType     string `json:"tier_type"`
	TierCategory string `json:"tier_category"`
	MinAmount    string `json:"min_amount"`
	MaxAmount    string `json:"max_amount"`
	Fee          string `json:"fee"`
	ValidFrom    string `json:"valid_from,omitempty"`
	ValidTo      string `json:"valid_to,omitempty"`
}

// CrewRecord is the partner API's shape for a person-in-charge
type CrewRecord struct {
	KTP      string `json:"ktp,omitempty"`
	NPWP     string `json:"npwp,omitempty"`
	Name     string `json:"name"`
	MSISDN   string `json:"msisdn,omitempty"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

// BankRef references a bank on the partner side
type BankRef struct {
	ID string `json:"id"`
}

// BeneficiaryRecord is the partner API's beneficiary bank account shape
type BeneficiaryRecord struct {
	FirstName     string  `json:"firstname"`
	LastName      string  `json:"lastname"`
	AccountNumber string  `json:"account_number"`
	Bank          BankRef `json:"bank"`
}

// BranchRecord is the partner API's branch shape
type BranchRecord struct {
	ID      string         `json:"id,omitempty"` // partner identifier, update mode only
	Name    string         `json:"name"`
	Code    string         `json:"code,omitempty"`
	Address *AddressRecord `json:"address"`
}

// TierAssignmentRef references an already-assigned tier on the partner side
type TierAssignmentRef struct {
	ID string `json:"id"`
}

// TierAssignment carries the set of partner tier identifiers an update
// command re-asserts
type TierAssignment struct {
	Data []TierAssignmentRef `json:"data"`
}

// CustomerCommand is the composite payload the partner API expects for
// creating or updating a customer record. The wire shape depends on the mode:
// create mode sends the full structure, update mode sends tier data only.
type CustomerCommand struct {
	Mode                Mode               `json:"-"`
	Customer            *CustomerRecord    `json:"-"`
	Tiers               []TierRecord       `json:"-"`
	Crew                []CrewRecord       `json:"-"`
	Beneficiary         *BeneficiaryRecord `json:"-"`
	Branch              *BranchRecord      `json:"-"`
	TierAssignment      *TierAssignment    `json:"-"`
	DeductionActiveType DeductionType      `json:"-"`
}

type createCommandJSON struct {
	Customer    *CustomerRecord    `json:"customer"`
	Tiers       []TierRecord       `json:"tier"`
	Crew        []CrewRecord       `json:"customer-crew"`
	Beneficiary *BeneficiaryRecord `json:"beneficiary-account"`
	Branch      *BranchRecord      `json:"branch"`
}

type updateCommandJSON struct {
	Tiers               []TierRecord    `json:"tier"`
	TierAssignment      *TierAssignment `json:"tier-assignment"`
	DeductionActiveType DeductionType   `json:"deduction_active_type,omitempty"`
}

// MarshalJSON emits the mode-dependent wire shape. Create mode always carries
// the customer, tier, customer-crew, beneficiary-account and branch keys
// (beneficiary-account is null when the account has no bank account); update
// mode carries tier data only.
func (c *CustomerCommand) MarshalJSON() ([]byte, error) {
	if c.Mode == ModeUpdate {
		return json.Marshal(updateCommandJSON{
			Tiers:               c.Tiers,
			TierAssignment:      c.TierAssignment,
			DeductionActiveType: c.DeductionActiveType,
		})
	}
	return json.Marshal(createCommandJSON{
		Customer:    c.Customer,
		Tiers:       c.Tiers,
		Crew:        c.Crew,
		Beneficiary: c.Beneficiary,
		Branch:      c.Branch,
	})
}

// UnmarshalJSON accepts either wire shape; the mode is recovered from the
// presence of the customer key.
func (c *CustomerCommand) UnmarshalJSON(data []byte) error {
	var probe struct {
		Customer *CustomerRecord `json:"customer"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Customer == nil {
		var u updateCommandJSON
		if err := json.Unmarshal(data, &u); err != nil {
			return err
		}
		c.Mode = ModeUpdate
		c.Tiers = u.Tiers
		c.TierAssignment = u.TierAssignment
		c.DeductionActiveType = u.DeductionActiveType
		return nil
	}
	var f createCommandJSON
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	c.Mode = ModeCreate
	c.Customer = f.Customer
	c.Tiers = f.Tiers
	c.Crew = f.Crew
	c.Beneficiary = f.Beneficiary
	c.Branch = f.Branch
	if f.Customer != nil {
		c.DeductionActiveType = f.Customer.DeductionActiveType
	}
	return nil
}
