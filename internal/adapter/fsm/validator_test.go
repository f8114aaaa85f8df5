package fsm_test

import (
	"context"
	"errors"
	"testing"

	adapter "github.com/neomorfeo/rentiq/internal/adapter/fsm"
	"github.com/neomorfeo/rentiq/internal/domain"
)

func TestTenantValidator_AllTransitions(t *testing.T) {
	v := adapter.NewTenantValidator()
	ctx := context.Background()

	for _, tr := range domain.TenantTransitions {
		dst, err := v.Apply(ctx, tr.Src, tr.Event)
		if err != nil {
			t.Errorf("Apply(%q, %q) unexpected error: %v", tr.Src, tr.Event, err)
			continue
		}
		if dst != tr.Dst {
			t.Errorf("Apply(%q, %q) = %q, want %q", tr.Src, tr.Event, dst, tr.Dst)
		}
	}
}

func TestPropertyValidator_AllTransitions(t *testing.T) {
	v := adapter.NewPropertyValidator()
	ctx := context.Background()

	for _, tr := range domain.PropertyTransitions {
		dst, err := v.Apply(ctx, tr.Src, tr.Event)
		if err != nil {
			t.Errorf("Apply(%q, %q) unexpected error: %v", tr.Src, tr.Event, err)
			continue
		}
		if dst != tr.Dst {
			t.Errorf("Apply(%q, %q) = %q, want %q", tr.Src, tr.Event, dst, tr.Dst)
		}
	}
}

func TestTenantValidator_PendingNeverTransitions(t *testing.T) {
	v := adapter.NewTenantValidator()
	ctx := context.Background()

	for _, event := range []domain.Event{domain.EventMarkLate, domain.EventRecordPayment} {
		_, err := v.Apply(ctx, domain.StatusPending, event)
		var trErr *domain.TransitionError
		if !errors.As(err, &trErr) {
			t.Fatalf("Apply(pending, %q): expected TransitionError, got %v", event, err)
		}
		if trErr.Current != domain.StatusPending {
			t.Errorf("current = %q, want %q", trErr.Current, domain.StatusPending)
		}
	}
}

func TestTenantValidator_InvalidTransition(t *testing.T) {
	v := adapter.NewTenantValidator()
	ctx := context.Background()

	// An active tenant has nothing to pay off.
	_, err := v.Apply(ctx, domain.StatusActive, domain.EventRecordPayment)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if trErr.Event != domain.EventRecordPayment {
		t.Errorf("event = %q, want %q", trErr.Event, domain.EventRecordPayment)
	}
}

func TestTenantValidator_RoundTrip(t *testing.T) {
	v := adapter.NewTenantValidator()
	ctx := context.Background()

	late, err := v.Apply(ctx, domain.StatusActive, domain.EventMarkLate)
	if err != nil {
		t.Fatalf("mark_late: %v", err)
	}
	if late != domain.StatusLate {
		t.Fatalf("mark_late = %q, want %q", late, domain.StatusLate)
	}

	active, err := v.Apply(ctx, late, domain.EventRecordPayment)
	if err != nil {
		t.Fatalf("record_payment: %v", err)
	}
	if active != domain.StatusActive {
		t.Errorf("record_payment = %q, want %q", active, domain.StatusActive)
	}
}

func TestValidators_TablesAreIsolated(t *testing.T) {
	tenant := adapter.NewTenantValidator()
	ctx := context.Background()

	// Occupancy events do not exist in the tenant table.
	_, err := tenant.Apply(ctx, domain.StatusVacant, domain.EventOccupy)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
}
