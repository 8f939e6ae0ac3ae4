package partnersync

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitra/backend/internal/domain/partnersync"
)

// requiredMarker is the phrase mandatory-field errors carry; the summary's
// critical-issue counter keys off it
const requiredMarker = "is required"

// defaultCountry is auto-filled when the address omits a country; this is the
// validator's only self-healing rule
const defaultCountry = "Indonesia"

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	msisdnPattern   = regexp.MustCompile(`^\+62\d{9,12}$`)
	ktpPattern      = regexp.MustCompile(`^\d{16}$`)
	npwpPattern     = regexp.MustCompile(`^\d{2}\.\d{3}\.\d{3}\.\d-\d{3}\.\d{3}$`)
	dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)
)

// ValidateCustomerCommand inspects a transformed customer command and
// produces categorized errors and warnings. Errors block sending; warnings do
// not. The function performs no I/O and is idempotent; its only side effect
// on the command is the country auto-fill.
func ValidateCustomerCommand(cmd *partnersync.CustomerCommand) partnersync.ValidationResult {
	v := &commandValidator{}

	if cmd == nil {
		v.errorf("customer command %s", requiredMarker)
		return v.result()
	}

	v.checkCustomer(cmd.Customer)
	for i := range cmd.Tiers {
		v.checkTier(i, &cmd.Tiers[i])
	}
	for i := range cmd.Crew {
		v.checkCrew(i, &cmd.Crew[i])
	}
	if cmd.Beneficiary != nil {
		v.checkBeneficiary(cmd.Beneficiary)
	}
	v.checkBranch(cmd.Branch)

	return v.result()
}

// commandValidator accumulates findings in encounter order
type commandValidator struct {
	errors   []string
	warnings []string
}

func (v *commandValidator) errorf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *commandValidator) warnf(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *commandValidator) checkCustomer(c *partnersync.CustomerRecord) {
	if c == nil {
		v.errorf("customer object %s", requiredMarker)
		return
	}

	if strings.TrimSpace(c.Name) == "" {
		v.errorf("customer.name %s", requiredMarker)
	}

	if strings.TrimSpace(c.Email) == "" {
		v.warnf("customer.email is empty")
	} else if !emailPattern.MatchString(c.Email) {
		v.errorf("customer.email %q is not a valid email address", c.Email)
	}

	if strings.TrimSpace(c.MSISDN) == "" {
		v.warnf("customer.msisdn is empty")
	} else if !msisdnPattern.MatchString(c.MSISDN) {
		v.warnf("customer.msisdn %q is not in +62 international format", c.MSISDN)
	}

	if c.Address == nil {
		v.errorf("customer.address %s", requiredMarker)
	} else {
		if strings.TrimSpace(c.Address.City) == "" {
			v.warnf("customer.address.city is empty")
		}
		if strings.TrimSpace(c.Address.State) == "" {
			v.warnf("customer.address.state is empty")
		}
		if strings.TrimSpace(c.Address.Country) == "" {
			c.Address.Country = defaultCountry
			v.warnf("customer.address.country is empty, defaulted to %s", defaultCountry)
		}
	}

	if c.KTP != "" && !ktpPattern.MatchString(c.KTP) {
		v.warnf("customer.ktp %q is not a 16-digit number", c.KTP)
	}
	if c.NPWP != "" && !npwpPattern.MatchString(c.NPWP) {
		v.warnf("customer.npwp %q does not match the NN.NNN.NNN.N-NNN.NNN format", c.NPWP)
	}
}

func (v *commandValidator) checkTier(i int, tier *partnersync.TierRecord) {
	switch tier.TierType {
	case partnersync.TierTypeNominal, partnersync.TierTypePercentage:
	default:
		v.errorf("tier[%d].tier_type %q must be nominal or percentage", i, tier.TierType)
	}

	if _, err := strconv.ParseFloat(tier.MinAmount, 64); err != nil {
		v.errorf("tier[%d].min_amount %q is not a number", i, tier.MinAmount)
	}
	if _, err := strconv.ParseFloat(tier.MaxAmount, 64); err != nil {
		v.errorf("tier[%d].max_amount %q is not a number", i, tier.MaxAmount)
	}
	if _, err := strconv.ParseFloat(tier.Fee, 64); err != nil {
		v.errorf("tier[%d].fee %q is not a number", i, tier.Fee)
	}

	if tier.ValidFrom != "" && !dateTimePattern.MatchString(tier.ValidFrom) {
		v.errorf("tier[%d].valid_from %q is not an ISO-8601 date-time", i, tier.ValidFrom)
	}
	if tier.ValidTo != "" && !dateTimePattern.MatchString(tier.ValidTo) {
		v.errorf("tier[%d].valid_to %q is not an ISO-8601 date-time", i, tier.ValidTo)
	}
}

func (v *commandValidator) checkCrew(i int, crew *partnersync.CrewRecord) {
	if strings.TrimSpace(crew.Name) == "" {
		v.warnf("customer-crew[%d].name is empty", i)
	}
	if crew.MSISDN != "" && !msisdnPattern.MatchString(crew.MSISDN) {
		v.warnf("customer-crew[%d].msisdn %q is not in +62 international format", i, crew.MSISDN)
	}
	if crew.Email != "" && !emailPattern.MatchString(crew.Email) {
		v.errorf("customer-crew[%d].email %q is not a valid email address", i, crew.Email)
	}
	if crew.KTP != "" && !ktpPattern.MatchString(crew.KTP) {
		v.warnf("customer-crew[%d].ktp %q is not a 16-digit number", i, crew.KTP)
	}
}

func (v *commandValidator) checkBeneficiary(b *partnersync.BeneficiaryRecord) {
	if strings.TrimSpace(b.FirstName) == "" {
		v.errorf("beneficiary-account.firstname %s", requiredMarker)
	}
	if strings.TrimSpace(b.LastName) == "" {
		v.errorf("beneficiary-account.lastname %s", requiredMarker)
	}
	if strings.TrimSpace(b.AccountNumber) == "" {
		v.errorf("beneficiary-account.account_number %s", requiredMarker)
	}
	if strings.TrimSpace(b.Bank.ID) == "" {
		v.errorf("beneficiary-account.bank.id %s", requiredMarker)
	}
}

func (v *commandValidator) checkBranch(b *partnersync.BranchRecord) {
	if b == nil {
		v.errorf("branch object %s", requiredMarker)
		return
	}
	if strings.TrimSpace(b.Name) == "" {
		v.errorf("branch.name %s", requiredMarker)
	}
	if strings.TrimSpace(b.Code) == "" {
		v.warnf("branch.code is empty")
	}
	if b.Address == nil {
		v.errorf("branch.address %s", requiredMarker)
	}
}

func (v *commandValidator) result() partnersync.ValidationResult {
	critical := 0
	for _, e := range v.errors {
		if strings.Contains(e, requiredMarker) {
			critical++
		}
	}

	integrity := "pass"
	if len(v.errors) > 0 {
		integrity = "fail"
	}

	return partnersync.ValidationResult{
		IsValid:  len(v.errors) == 0,
		Errors:   append([]string{}, v.errors...),
		Warnings: append([]string{}, v.warnings...),
		Summary: partnersync.ValidationSummary{
			TotalErrors:    len(v.errors),
			TotalWarnings:  len(v.warnings),
			CriticalIssues: critical,
			DataIntegrity:  integrity,
		},
	}
}
