package partnersync

// ValidationResult is the outcome of inspecting a customer command before
// dispatch. Errors block sending; warnings do not.
type ValidationResult struct {
	IsValid  bool              `json:"is_valid"`
	Errors   []string          `json:"errors"`
	Warnings []string          `json:"warnings"`
	Summary  ValidationSummary `json:"summary"`
}

// ValidationSummary aggregates validation counters
type ValidationSummary struct {
	TotalErrors    int    `json:"total_errors"`
	TotalWarnings  int    `json:"total_warnings"`
	CriticalIssues int    `json:"critical_issues"` // errors on mandatory fields
	DataIntegrity  string `json:"data_integrity"`  // "pass" or "fail"
}

// SyncResult is the structured outcome of a synchronization attempt. Every
// failure path produces one of these; the pipeline never surfaces an
// unhandled error to its caller.
//
// CustomerData present with Success false is a distinct state: the payload
// was transformed and possibly sent, so the caller must offer a manual
// verification path rather than treat it as a hard rejection.
type SyncResult struct {
	Success        bool                  `json:"success"`
	Mode           Mode                  `json:"mode"`
	Attempts       int                   `json:"attempts"`
	Error          string                `json:"error,omitempty"`
	Details        []string              `json:"details,omitempty"`
	CustomerData   *CustomerCommand      `json:"customer_data,omitempty"`
	Validation     *ValidationResult     `json:"validation,omitempty"`
	Reconciliation *ReconciliationResult `json:"reconciliation,omitempty"`
}

// ReconciliationSubResult reports the outcome of one reconciliation fan
// (customer, tiers, or crew)
type ReconciliationSubResult struct {
	Success      bool     `json:"success"`
	UpdatedCount int      `json:"updated_count"`
	FailedCount  int      `json:"failed_count"`
	Details      []string `json:"details,omitempty"`
}

// ReconciliationResult aggregates the three independent reconciliation fans.
// Success is true only when every sub-result succeeded, but a false aggregate
// never undoes the external sync's own success.
type ReconciliationResult struct {
	Success  bool                    `json:"success"`
	Customer ReconciliationSubResult `json:"customer"`
	Tiers    ReconciliationSubResult `json:"tiers"`
	Crew     ReconciliationSubResult `json:"crew"`
}

// Aggregate recomputes the aggregate success flag from the sub-results
func (r *ReconciliationResult) Aggregate() {
	r.Success = r.Customer.Success && r.Tiers.Success && r.Crew.Success
}
