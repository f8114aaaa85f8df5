package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/neomorfeo/rentiq/internal/domain"
)

func TestInvalidDateError_Message(t *testing.T) {
	err := &domain.InvalidDateError{Value: "31/31/31"}
	if !strings.Contains(err.Error(), "31/31/31") {
		t.Errorf("message should contain the raw value: %q", err.Error())
	}
}

func TestEmailConflictError_As(t *testing.T) {
	var target *domain.EmailConflictError
	err := error(&domain.EmailConflictError{Email: "a@b.c"})
	if !errors.As(err, &target) {
		t.Fatal("errors.As failed")
	}
	if target.Email != "a@b.c" {
		t.Errorf("Email = %q, want %q", target.Email, "a@b.c")
	}
}

func TestTransitionError_Message(t *testing.T) {
	err := &domain.TransitionError{Event: domain.EventMarkLate, Current: domain.StatusPending}
	msg := err.Error()
	if !strings.Contains(msg, "mark_late") || !strings.Contains(msg, "pending") {
		t.Errorf("message should name event and state: %q", msg)
	}
}
