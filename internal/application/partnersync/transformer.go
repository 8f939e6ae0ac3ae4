package partnersync

import (
	"strings"
	"time"

	"github.com/mitra/backend/internal/domain/account"
	"github.com/mitra/backend/internal/domain/partnersync"
)

// partnerTimeLayout is the partner API's date-time format (no zone suffix)
const partnerTimeLayout = "2006-01-02T15:04:05"

// defaultTierValidTo is assumed when a tier has no validity end
const defaultTierValidTo = "2050-12-31T23:59:59"

// defaultCustomerType is sent regardless of the account's business type.
// The partner's onboarding flow only accepts INDIVIDUAL today.
// TODO: derive from the account's business type once the partner API accepts
// ORGANIZATION customers.
const defaultCustomerType = "INDIVIDUAL"

// Transformer maps an account aggregate into the partner API's customer
// command shape. The mapping is pure; the only ambient input is the clock
// used to default tier validity windows.
type Transformer struct {
	now func() time.Time
}

// NewTransformer creates a transformer using the real clock
func NewTransformer() *Transformer {
	return &Transformer{now: time.Now}
}

// NewTransformerWithClock creates a transformer with a fixed time source (tests)
func NewTransformerWithClock(now func() time.Time) *Transformer {
	return &Transformer{now: now}
}

// Transform maps the account into a customer command for the given mode.
// Create mode produces the full composite structure; update mode reduces the
// command to tier data plus the partner tier assignments, which is all the
// partner accepts on PATCH.
//
// Mapping failures surface as *partnersync.TransformationError with the
// partially built payload attached; the transformer never degrades silently.
func (t *Transformer) Transform(acc *account.Account, mode partnersync.Mode) (*partnersync.CustomerCommand, error) {
	if acc == nil {
		return nil, &partnersync.TransformationError{Reason: "account is nil"}
	}

	cmd := &partnersync.CustomerCommand{Mode: mode}

	primary := acc.PrimaryAddress()
	address := mapAddress(primary)

	cmd.DeductionActiveType = deductionActiveType(acc.PackageTiers)

	cmd.Customer = &partnersync.CustomerRecord{
		Name:                acc.Name,
		Email:               acc.Email,
		MSISDN:              NormalizeMSISDN(acc.Phone),
		KTP:                 acc.KTP,
		NPWP:                acc.NPWP,
		CustomerType:        defaultCustomerType,
		Active:              acc.Active,
		Address:             address,
		DeductionActiveType: cmd.DeductionActiveType,
	}

	cmd.Tiers = make([]partnersync.TierRecord, 0, len(acc.PackageTiers))
	for i := range acc.PackageTiers {
		cmd.Tiers = append(cmd.Tiers, t.mapTier(&acc.PackageTiers[i]))
	}

	// Despite the "crew" naming the partner expects every PIC, the owner
	// included.
	cmd.Crew = make([]partnersync.CrewRecord, 0, len(acc.PICs))
	for i := range acc.PICs {
		pic := &acc.PICs[i]
		cmd.Crew = append(cmd.Crew, partnersync.CrewRecord{
			KTP:      pic.KTP,
			NPWP:     pic.NPWP,
			Name:     pic.Name,
			MSISDN:   NormalizeMSISDN(pic.Phone),
			Email:    pic.Email,
			Username: pic.Username,
		})
	}

	if len(acc.BankAccounts) > 0 {
		cmd.Beneficiary = mapBeneficiary(&acc.BankAccounts[0])
	}

	cmd.Branch = &partnersync.BranchRecord{
		Name:    acc.Name,
		Code:    acc.Code,
		Address: address,
	}

	if mode == partnersync.ModeUpdate {
		t.applyUpdateMode(cmd, acc)
	}

	return cmd, nil
}

// applyUpdateMode attaches the stored partner identifiers and collects the
// tier assignments the PATCH command re-asserts
func (t *Transformer) applyUpdateMode(cmd *partnersync.CustomerCommand, acc *account.Account) {
	cmd.Customer.ID = acc.ExternalRef
	cmd.Branch.ID = acc.ExternalRef

	refs := make([]partnersync.TierAssignmentRef, 0, len(acc.PackageTiers))
	for i := range acc.PackageTiers {
		ref := acc.PackageTiers[i].ExternalRef
		if ref == "" {
			continue
		}
		if i < len(cmd.Tiers) {
			cmd.Tiers[i].ID = ref
		}
		refs = append(refs, partnersync.TierAssignmentRef{ID: ref})
	}
	cmd.TierAssignment = &partnersync.TierAssignment{Data: refs}
}

// mapTier converts one package tier into the partner tier shape, defaulting
// an absent validity window to now / end of 2050
func (t *Transformer) mapTier(tier *account.PackageTier) partnersync.TierRecord {
	tierType := partnersync.TierTypeNominal
	if tier.Percentage {
		tierType = partnersync.TierTypePercentage
	}

	validFrom := t.now().Format(partnerTimeLayout)
	if tier.ValidFrom != nil {
		validFrom = tier.ValidFrom.Format(partnerTimeLayout)
	}
	validTo := defaultTierValidTo
	if tier.ValidTo != nil {
		validTo = tier.ValidTo.Format(partnerTimeLayout)
	}

	return partnersync.TierRecord{
		TierType:     tierType,
		TierCategory: partnersync.TierCategoryDiscount,
		MinAmount:    tier.MinAmount.String(),
		MaxAmount:    tier.MaxAmount.String(),
		Fee:          tier.Fee.String(),
		ValidFrom:    validFrom,
		ValidTo:      validTo,
	}
}

// mapAddress converts a local address into the partner shape. A nil address
// maps to an empty record so the validator can flag the missing fields
// individually.
func mapAddress(addr *account.Address) *partnersync.AddressRecord {
	if addr == nil {
		return &partnersync.AddressRecord{}
	}
	return &partnersync.AddressRecord{
		Street:  addr.Street,
		City:    addr.City,
		State:   addr.Province,
		ZipCode: addr.PostalCode,
		Country: addr.Country,
	}
}

// mapBeneficiary converts the first bank account into the beneficiary shape,
// splitting the holder name when explicit first/last fields are absent
func mapBeneficiary(bank *account.BankAccount) *partnersync.BeneficiaryRecord {
	first := bank.HolderFirstName
	last := bank.HolderLastName
	if first == "" && last == "" {
		first, last = splitHolderName(bank.HolderName)
	}
	return &partnersync.BeneficiaryRecord{
		FirstName:     first,
		LastName:      last,
		AccountNumber: bank.AccountNumber,
		Bank:          partnersync.BankRef{ID: bank.BankID},
	}
}

// splitHolderName splits a holder name on the first space; an unusable name
// falls back to the partner's placeholder convention
func splitHolderName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Unknown", "User"
	}
	if idx := strings.Index(name, " "); idx > 0 {
		return name[:idx], strings.TrimSpace(name[idx+1:])
	}
	return name, "User"
}

// deductionActiveType computes the billing discriminator by majority vote
// across the auto-deduct tiers, defaulting to nominal on a tie. Accounts with
// no auto-deduct tier get no discriminator at all.
func deductionActiveType(tiers []account.PackageTier) partnersync.DeductionType {
	var percentage, nominal int
	for i := range tiers {
		if !tiers[i].IsAutoDeduct() {
			continue
		}
		if tiers[i].Percentage {
			percentage++
		} else {
			nominal++
		}
	}
	if percentage == 0 && nominal == 0 {
		return ""
	}
	if percentage > nominal {
		return partnersync.DeductionTypePercentage
	}
	return partnersync.DeductionTypeNominal
}

// NormalizeMSISDN converts a local phone number to full international form:
// a leading zero is replaced by +62, a bare 62 prefix gains the plus, and
// numbers already in international form pass through unchanged.
func NormalizeMSISDN(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	if strings.HasPrefix(phone, "62") {
		return "+" + phone
	}
	if strings.HasPrefix(phone, "0") {
		return "+62" + phone[1:]
	}
	return "+62" + phone
}
