package stripe

import (
	"testing"

	"github.com/stripe/stripe-go/v81"
)

func TestUnitAmount(t *testing.T) {
	cases := []struct {
		amount   float64
		currency string
		want     int64
	}{
		{250000, "xof", 250000},
		{250000, "eur", 25000000},
		{99.5, "xof", 100},
		{10.25, "usd", 1025},
	}
	for _, tc := range cases {
		if got := unitAmount(tc.amount, tc.currency); got != tc.want {
			t.Errorf("unitAmount(%v, %q) = %d, want %d", tc.amount, tc.currency, got, tc.want)
		}
	}
}

func TestMajorAmount_RoundTrip(t *testing.T) {
	for _, currency := range []string{"xof", "eur"} {
		amount := 300000.0
		if got := majorAmount(unitAmount(amount, currency), currency); got != amount {
			t.Errorf("round trip in %q = %v, want %v", currency, got, amount)
		}
	}
}

func TestToRecord_MetadataEmailWins(t *testing.T) {
	s := &stripe.CheckoutSession{
		ID:            "cs_1",
		AmountTotal:   300000,
		Currency:      "xof",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		Created:       1709629200,
		Metadata:      map[string]string{"tenantEmail": "awa@example.com"},
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
			Email: "card-holder@example.com",
		},
	}

	rec := toRecord(s)
	if rec.CustomerEmail != "awa@example.com" {
		t.Errorf("CustomerEmail = %q, want metadata email", rec.CustomerEmail)
	}
	if rec.Amount != 300000 {
		t.Errorf("Amount = %v, want 300000 (zero-decimal currency)", rec.Amount)
	}
}

func TestToRecord_ReceiptFromLatestCharge(t *testing.T) {
	s := &stripe.CheckoutSession{
		ID:            "cs_1",
		Currency:      "xof",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		PaymentIntent: &stripe.PaymentIntent{
			LatestCharge: &stripe.Charge{
				ReceiptURL: "https://receipts.example/r/1",
				Created:    1709629200,
			},
		},
	}

	rec := toRecord(s)
	if rec.ReceiptURL != "https://receipts.example/r/1" {
		t.Errorf("ReceiptURL = %q", rec.ReceiptURL)
	}
	if rec.PaidAt == nil {
		t.Fatal("PaidAt should be set for a paid session with a charge")
	}
}
