package domain

import (
	"strings"
	"time"
)

// This file is the billing-date core: a handful of pure calendar functions
// shared by the late-payment sweep and the reminder paths. Nothing here may
// touch a collaborator; all I/O stays in the adapters.

// NormalizeEntryDate parses a stored entry date into a calendar date at
// midnight UTC. Three shapes are accepted: ISO "2006-01-02", "02/01/2006",
// or a timestamp whose date component is kept. Anything else returns an
// *InvalidDateError; callers must exclude the record, never default to today.
func NormalizeEntryDate(raw string) (time.Time, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, &InvalidDateError{Value: raw}
	}

	if len(v) == 10 && v[4] == '-' && v[7] == '-' {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, &InvalidDateError{Value: raw}
		}
		return d, nil
	}

	if len(v) == 10 && v[2] == '/' && v[5] == '/' {
		d, err := time.Parse("02/01/2006", v)
		if err != nil {
			return time.Time{}, &InvalidDateError{Value: raw}
		}
		return d, nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return DateOf(t), nil
		}
	}

	return time.Time{}, &InvalidDateError{Value: raw}
}

// DateOf drops the time-of-day component, keeping a date at midnight UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsLeapYear reports whether year is a leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// AddMonths adds n calendar months to d, carrying year overflow and clamping
// the day to the last valid day of the target month: Jan 31 + 1 month is
// Feb 28 (or Feb 29 in a leap year), never an overflow into March.
// time.AddDate normalizes instead of clamping, which is wrong here. n must
// be non-negative but is otherwise unbounded.
func AddMonths(d time.Time, n int) time.Time {
	months := int(d.Month()) - 1 + n
	year := d.Year() + months/12
	month := time.Month(months%12 + 1)

	day := d.Day()
	if last := LastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ClampCycle forces a billing cycle into [1, 12] months. Stored data may be
// absent or out of range; the correction is silent.
func ClampCycle(months int) int {
	if months < 1 {
		return 1
	}
	if months > 12 {
		return 12
	}
	return months
}

// NextDueDate projects the first due date on or after ref, walking the
// arithmetic progression entry + k*cycle. Each step advances at least 28
// days, so the loop is bounded by (ref − entry) / 28d.
func NextDueDate(entry time.Time, cycleMonths int, ref time.Time) time.Time {
	cycle := ClampCycle(cycleMonths)
	ref = DateOf(ref)

	due := AddMonths(DateOf(entry), cycle)
	for due.Before(ref) {
		due = AddMonths(due, cycle)
	}
	return due
}

// NextDue is NextDueDate on a raw stored entry date. It returns an
// *InvalidDateError when the entry date cannot be normalized.
func NextDue(entryDate string, cycleMonths int, ref time.Time) (time.Time, error) {
	entry, err := NormalizeEntryDate(entryDate)
	if err != nil {
		return time.Time{}, err
	}
	return NextDueDate(entry, cycleMonths, ref), nil
}

// DueInMonth reports whether the tenant's next due date, projected from ref,
// falls exactly in the target year/month. Uncomputable entry dates yield
// false, never an error; the monthly broadcast simply skips the tenant.
func DueInMonth(entryDate string, cycleMonths int, ref time.Time, year int, month time.Month) bool {
	due, err := NextDue(entryDate, cycleMonths, ref)
	if err != nil {
		return false
	}
	return due.Year() == year && due.Month() == month
}

// StatusChange is one planned transition from the late-payment sweep.
type StatusChange struct {
	TenantID string
	From     Status
	To       Status
	Event    Event
}

// SweepPlan is the pure outcome of a reconciliation pass: which tenants were
// looked at, which could not be evaluated, and which must change status.
type SweepPlan struct {
	Checked int
	Skipped int
	Changes []StatusChange
}

// PlanStatusChanges decides, per tenant, whether the billing status must
// flip between active and late relative to ref. Pending tenants are never
// touched; tenants with an unusable entry date are counted as skipped.
// Applying the plan is the caller's job, so running the planner twice over
// unchanged data yields an empty second plan.
func PlanStatusChanges(tenants []Tenant, ref time.Time) SweepPlan {
	ref = DateOf(ref)
	plan := SweepPlan{}

	for _, t := range tenants {
		plan.Checked++

		if t.Status == StatusPending {
			continue
		}

		due, err := NextDue(t.EntryDate, t.PaymentMonths, ref)
		if err != nil {
			plan.Skipped++
			continue
		}

		switch {
		case due.Before(ref) && t.Status != StatusLate:
			plan.Changes = append(plan.Changes, StatusChange{
				TenantID: t.ID, From: t.Status, To: StatusLate, Event: EventMarkLate,
			})
		case !due.Before(ref) && t.Status == StatusLate:
			plan.Changes = append(plan.Changes, StatusChange{
				TenantID: t.ID, From: t.Status, To: StatusActive, Event: EventRecordPayment,
			})
		}
	}

	return plan
}
