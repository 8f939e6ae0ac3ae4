package partnersync

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mitra/backend/internal/domain/account"
	"github.com/mitra/backend/internal/domain/partnersync"
)

// ExternalRefWriter persists a partner-generated identifier onto a local
// record
type ExternalRefWriter interface {
	UpdateExternalRef(ctx context.Context, id uuid.UUID, ref string) error
}

// IDReconciler writes the identifiers a successful sync returned back onto
// the account, its package tiers and its persons-in-charge. The three fans
// are independent: a tier failure never blocks crew reconciliation, and no
// reconciliation failure ever undoes the sync itself.
type IDReconciler struct {
	accounts ExternalRefWriter
	tiers    ExternalRefWriter
	pics     ExternalRefWriter
	strategy partnersync.CorrelationStrategy
	logger   *zap.Logger
}

// NewIDReconciler builds a reconciler using positional correlation
func NewIDReconciler(accounts, tiers, pics ExternalRefWriter, logger *zap.Logger) *IDReconciler {
	return &IDReconciler{
		accounts: accounts,
		tiers:    tiers,
		pics:     pics,
		strategy: partnersync.PositionalCorrelation{},
		logger:   logger,
	}
}

// Reconcile implements Reconciler
func (r *IDReconciler) Reconcile(ctx context.Context, acc *account.Account, env *partnersync.SyncEnvelope) *partnersync.ReconciliationResult {
	result := &partnersync.ReconciliationResult{}

	result.Customer = r.reconcileCustomer(ctx, acc, env.CustomerID)

	tierIDs := make([]uuid.UUID, len(acc.PackageTiers))
	for i := range acc.PackageTiers {
		tierIDs[i] = acc.PackageTiers[i].ID
	}
	result.Tiers = r.reconcileFan(ctx, "tier", r.tiers, tierIDs, env.TierIDs)

	picIDs := make([]uuid.UUID, len(acc.PICs))
	for i := range acc.PICs {
		picIDs[i] = acc.PICs[i].ID
	}
	result.Crew = r.reconcileFan(ctx, "crew", r.pics, picIDs, env.CrewIDs)

	result.Aggregate()
	return result
}

// reconcileCustomer writes the partner customer id onto the account. A
// missing id in the reply is a loud failure: the sync succeeded but the
// account stays unlinked, which an operator has to resolve.
func (r *IDReconciler) reconcileCustomer(ctx context.Context, acc *account.Account, customerID string) partnersync.ReconciliationSubResult {
	if customerID == "" {
		r.logger.Error("partner reply carried no customer id, account stays unlinked",
			zap.String("account_id", acc.ID.String()))
		return partnersync.ReconciliationSubResult{
			FailedCount: 1,
			Details:     []string{"partner reply carried no customer id"},
		}
	}

	if err := r.accounts.UpdateExternalRef(ctx, acc.ID, customerID); err != nil {
		r.logger.Error("failed to store partner customer id",
			zap.String("account_id", acc.ID.String()),
			zap.Error(err))
		return partnersync.ReconciliationSubResult{
			FailedCount: 1,
			Details:     []string{fmt.Sprintf("could not store customer id: %v", err)},
		}
	}

	acc.SetExternalRef(customerID)
	return partnersync.ReconciliationSubResult{Success: true, UpdatedCount: 1}
}

// reconcileFan matches external ids to local records positionally and writes
// each match concurrently
func (r *IDReconciler) reconcileFan(ctx context.Context, kind string, writer ExternalRefWriter, localIDs []uuid.UUID, externalIDs []string) partnersync.ReconciliationSubResult {
	pairs := r.strategy.Correlate(len(localIDs), len(externalIDs))
	if len(pairs) == 0 {
		return partnersync.ReconciliationSubResult{Success: true}
	}

	if len(localIDs) != len(externalIDs) {
		r.logger.Warn("record count mismatch, reconciling the matching prefix",
			zap.String("kind", kind),
			zap.Int("local", len(localIDs)),
			zap.Int("external", len(externalIDs)))
	}

	var (
		mu      sync.Mutex
		updated int
		details []string
	)
	var wg sync.WaitGroup
	for _, pair := range pairs {
		wg.Add(1)
		go func(localID uuid.UUID, ref string) {
			defer wg.Done()
			err := writer.UpdateExternalRef(ctx, localID, ref)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				details = append(details, fmt.Sprintf("%s %s: %v", kind, localID, err))
				return
			}
			updated++
		}(localIDs[pair.LocalIndex], externalIDs[pair.ExternalIndex])
	}
	wg.Wait()

	return partnersync.ReconciliationSubResult{
		Success:      len(details) == 0,
		UpdatedCount: updated,
		FailedCount:  len(details),
		Details:      details,
	}
}
