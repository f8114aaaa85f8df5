package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// defaultSweepParallelism bounds concurrent status patches against the
// directory. Each tenant's status is independent, so ordering is irrelevant.
const defaultSweepParallelism = 8

// TransitionRecord is one applied (or attempted) status change.
type TransitionRecord struct {
	TenantID string        `json:"tenantId"`
	From     domain.Status `json:"from"`
	To       domain.Status `json:"to"`
	Error    string        `json:"error,omitempty"`
}

// SweepReport summarizes one late-payment reconciliation pass. Updated
// counts only successful writes; Failed counts write failures, which never
// abort the sweep.
type SweepReport struct {
	Checked     int                `json:"checked"`
	Updated     int                `json:"updated"`
	Failed      int                `json:"failed"`
	Skipped     int                `json:"skipped"`
	Transitions []TransitionRecord `json:"transitions,omitempty"`
}

// ReconcileService sweeps the tenant directory, recomputes every due date
// and corrects billing statuses.
type ReconcileService struct {
	directory   domain.TenantDirectory
	validator   domain.TransitionValidator
	parallelism int
}

// NewReconcileService creates a sweep service over the given directory.
func NewReconcileService(directory domain.TenantDirectory, validator domain.TransitionValidator) *ReconcileService {
	return &ReconcileService{
		directory:   directory,
		validator:   validator,
		parallelism: defaultSweepParallelism,
	}
}

// Run executes one reconciliation pass relative to ref. Planning is pure
// (domain.PlanStatusChanges); this method only applies the plan. Each status
// patch runs in its own failure boundary: one tenant's write error is
// recorded and the sweep continues. Calling Run twice with unchanged data
// yields zero transitions on the second call.
func (s *ReconcileService) Run(ctx context.Context, ref time.Time) (SweepReport, error) {
	tenants, err := s.directory.List(ctx)
	if err != nil {
		return SweepReport{}, fmt.Errorf("listing tenants: %w", err)
	}

	plan := domain.PlanStatusChanges(tenants, ref)
	report := SweepReport{Checked: plan.Checked, Skipped: plan.Skipped}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for _, change := range plan.Changes {
		g.Go(func() error {
			rec := TransitionRecord{TenantID: change.TenantID, From: change.From, To: change.To}

			if _, err := s.validator.Apply(ctx, change.From, change.Event); err != nil {
				rec.Error = err.Error()
			} else if err := s.directory.SetStatus(ctx, change.TenantID, change.To); err != nil {
				rec.Error = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			if rec.Error != "" {
				report.Failed++
			} else {
				report.Updated++
			}
			report.Transitions = append(report.Transitions, rec)
			return nil
		})
	}

	// Workers never return errors; Wait only observes context cancellation.
	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}
