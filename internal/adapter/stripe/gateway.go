// Package stripe adapts the Stripe checkout API to the payment gateway port.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/neomorfeo/rentiq/internal/domain"
)

var _ domain.PaymentGateway = (*Gateway)(nil)

// zeroDecimalCurrencies have no minor unit; their amounts go to Stripe as-is
// instead of multiplied by 100.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true,
	"kmf": true, "krw": true, "mga": true, "pyg": true, "rwf": true,
	"ugx": true, "vnd": true, "xaf": true, "xof": true, "xpf": true,
}

// Gateway implements the payment gateway over Stripe checkout sessions. The
// stripe-go client is package-global; New must be called once at startup.
type Gateway struct {
	webhookSecret string
}

// New configures the Stripe client and returns the gateway.
func New(apiKey, webhookSecret string) *Gateway {
	stripe.Key = apiKey
	return &Gateway{webhookSecret: webhookSecret}
}

// CreateCheckout creates a hosted checkout session. The tenant and property
// identifiers ride along as metadata on both the session and its payment
// intent so webhooks and history can be joined back to directory records.
func (g *Gateway) CreateCheckout(ctx context.Context, p domain.CheckoutParams) (domain.CheckoutSession, error) {
	metadata := map[string]string{
		"tenantId":      p.TenantID,
		"tenantName":    p.TenantName,
		"tenantEmail":   p.TenantEmail,
		"ownerId":       p.OwnerID,
		"propertyId":    p.PropertyID,
		"propertyName":  p.PropertyName,
		"dueDate":       p.DueDate,
		"paymentMonths": fmt.Sprintf("%d", p.PaymentMonths),
	}

	productName := "Paiement loyer"
	if p.PropertyName != "" {
		productName = "Loyer " + p.PropertyName
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		ClientReferenceID:  stripe.String(p.TenantID),
		SuccessURL:         stripe.String(p.SuccessURL),
		CancelURL:          stripe.String(p.CancelURL),
		Metadata:           metadata,
		PaymentIntentData:  &stripe.CheckoutSessionPaymentIntentDataParams{Metadata: metadata},
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(p.Currency),
				UnitAmount: stripe.Int64(unitAmount(p.Amount, p.Currency)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(productName),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	if p.TenantEmail != "" {
		params.CustomerEmail = stripe.String(p.TenantEmail)
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return domain.CheckoutSession{}, fmt.Errorf("stripe: creating checkout session: %w", err)
	}
	return domain.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// ListSessions returns recent checkout sessions, newest first, with the
// payment intent expanded so receipts are available.
func (g *Gateway) ListSessions(ctx context.Context, limit int) ([]domain.PaymentRecord, error) {
	params := &stripe.CheckoutSessionListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(int64(limit))
	params.AddExpand("data.payment_intent")
	params.AddExpand("data.payment_intent.latest_charge")

	var records []domain.PaymentRecord
	iter := session.List(params)
	for iter.Next() {
		records = append(records, toRecord(iter.CheckoutSession()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("stripe: listing checkout sessions: %w", err)
	}
	return records, nil
}

// ParseWebhook verifies the event signature and shapes completed checkout
// sessions. Events of other types come back with their type only.
func (g *Gateway) ParseWebhook(payload []byte, signature string) (domain.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return domain.WebhookEvent{}, fmt.Errorf("stripe: verifying webhook signature: %w", err)
	}

	out := domain.WebhookEvent{Type: string(event.Type)}
	if event.Type == "checkout.session.completed" {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return domain.WebhookEvent{}, fmt.Errorf("stripe: decoding checkout session: %w", err)
		}
		out.Session = toRecord(&s)
	}
	return out, nil
}

// unitAmount converts a major-unit amount into Stripe's smallest unit.
func unitAmount(amount float64, currency string) int64 {
	if zeroDecimalCurrencies[currency] {
		return int64(amount + 0.5)
	}
	return int64(amount*100 + 0.5)
}

// majorAmount is the inverse of unitAmount.
func majorAmount(amount int64, currency string) float64 {
	if zeroDecimalCurrencies[currency] {
		return float64(amount)
	}
	return float64(amount) / 100
}

func toRecord(s *stripe.CheckoutSession) domain.PaymentRecord {
	rec := domain.PaymentRecord{
		ID:            s.ID,
		Amount:        majorAmount(s.AmountTotal, string(s.Currency)),
		Currency:      string(s.Currency),
		PaymentStatus: string(s.PaymentStatus),
		SessionStatus: string(s.Status),
		Metadata:      s.Metadata,
		CreatedAt:     time.Unix(s.Created, 0).UTC(),
	}
	if rec.Metadata == nil {
		rec.Metadata = map[string]string{}
	}

	if email := rec.Metadata["tenantEmail"]; email != "" {
		rec.CustomerEmail = email
	} else if s.CustomerDetails != nil {
		rec.CustomerEmail = s.CustomerDetails.Email
	} else {
		rec.CustomerEmail = s.CustomerEmail
	}

	if s.PaymentIntent != nil && s.PaymentIntent.LatestCharge != nil {
		charge := s.PaymentIntent.LatestCharge
		rec.ReceiptURL = charge.ReceiptURL
		if s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid && charge.Created > 0 {
			paid := time.Unix(charge.Created, 0).UTC()
			rec.PaidAt = &paid
		}
	}
	return rec
}
