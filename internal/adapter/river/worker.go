package river

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

// LateSweepArgs is the daily billing-status reconciliation job.
type LateSweepArgs struct{}

// Kind identifies the job type in the queue.
func (LateSweepArgs) Kind() string { return "late_payment_sweep" }

// ReminderBroadcastArgs is the daily check that fires the monthly rent
// reminder when the target day is reached.
type ReminderBroadcastArgs struct{}

// Kind identifies the job type in the queue.
func (ReminderBroadcastArgs) Kind() string { return "monthly_reminder_broadcast" }

// Reconciler runs one late-payment sweep.
type Reconciler interface {
	Run(ctx context.Context, ref time.Time) (app.SweepReport, error)
}

// Broadcaster sends the monthly reminder batch for the month ending lastDay.
type Broadcaster interface {
	BroadcastMonthly(ctx context.Context, lastDay time.Time) (app.BatchReport, error)
}

// LateSweepWorker recomputes every tenant's due date once a day and corrects
// billing statuses.
type LateSweepWorker struct {
	river.WorkerDefaults[LateSweepArgs]
	reconciler Reconciler
	now        func() time.Time
}

// NewLateSweepWorker creates the sweep worker.
func NewLateSweepWorker(reconciler Reconciler) *LateSweepWorker {
	return &LateSweepWorker{reconciler: reconciler, now: time.Now}
}

// Work runs one sweep relative to today.
func (w *LateSweepWorker) Work(ctx context.Context, job *river.Job[LateSweepArgs]) error {
	report, err := w.reconciler.Run(ctx, domain.DateOf(w.now()))
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "late payment sweep finished",
		"checked", report.Checked,
		"updated", report.Updated,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}

// ReminderBroadcastWorker runs daily but only sends on the target day: seven
// days before the end of the current month.
type ReminderBroadcastWorker struct {
	river.WorkerDefaults[ReminderBroadcastArgs]
	broadcaster Broadcaster
	now         func() time.Time
}

// NewReminderBroadcastWorker creates the broadcast worker.
func NewReminderBroadcastWorker(broadcaster Broadcaster) *ReminderBroadcastWorker {
	return &ReminderBroadcastWorker{broadcaster: broadcaster, now: time.Now}
}

// Work fires the monthly broadcast when today matches the target day.
func (w *ReminderBroadcastWorker) Work(ctx context.Context, job *river.Job[ReminderBroadcastArgs]) error {
	today := domain.DateOf(w.now())
	lastDay := endOfMonth(today)
	target := lastDay.AddDate(0, 0, -7)

	if !today.Equal(target) {
		slog.DebugContext(ctx, "monthly reminder not due today",
			"today", today.Format("2006-01-02"),
			"target", target.Format("2006-01-02"),
		)
		return nil
	}

	report, err := w.broadcaster.BroadcastMonthly(ctx, lastDay)
	if errors.Is(err, domain.ErrRemindersDisabled) {
		slog.InfoContext(ctx, "monthly reminder broadcast disabled", "job_id", job.ID)
		return nil
	}
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "monthly reminder broadcast finished",
		"total", report.Total,
		"sent", report.Sent,
		"failed", report.Failed,
		"due_month", lastDay.Format("2006-01"),
		"job_id", job.ID,
	)
	return nil
}

// endOfMonth returns the last day of t's month at midnight UTC.
func endOfMonth(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1)
}
