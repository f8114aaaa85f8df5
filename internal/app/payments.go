package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// StripeCurrency is the ISO code all checkout sessions are created in.
const StripeCurrency = "xof"

// MaxCheckoutAmount is the processor's per-transaction ceiling for the
// checkout currency, in major units.
const MaxCheckoutAmount = 655_959_993

// CheckoutRequest is an API request for a hosted payment link.
type CheckoutRequest struct {
	TenantID      string
	Amount        float64
	DueDate       string
	PaymentMonths int
	OwnerID       string
}

// PaymentOptions carries redirect targets for hosted checkout pages.
type PaymentOptions struct {
	AppURL string
}

// PaymentService creates checkout sessions, lists payment history and
// processes gateway webhooks.
type PaymentService struct {
	gateway    domain.PaymentGateway
	tenants    domain.TenantDirectory
	properties domain.PropertyDirectory
	validator  domain.TransitionValidator
	mailer     domain.Mailer
	opts       PaymentOptions
}

// NewPaymentService creates a payment service over the gateway.
func NewPaymentService(
	gateway domain.PaymentGateway,
	tenants domain.TenantDirectory,
	properties domain.PropertyDirectory,
	validator domain.TransitionValidator,
	mailer domain.Mailer,
	opts PaymentOptions,
) *PaymentService {
	return &PaymentService{
		gateway:    gateway,
		tenants:    tenants,
		properties: properties,
		validator:  validator,
		mailer:     mailer,
		opts:       opts,
	}
}

// CreateCheckout resolves the tenant, validates the amount against the
// processor's ceiling and returns a hosted payment page.
func (s *PaymentService) CreateCheckout(ctx context.Context, req CheckoutRequest) (domain.CheckoutSession, error) {
	if s.gateway == nil {
		return domain.CheckoutSession{}, domain.ErrGatewayNotConfigured
	}

	tenant, err := s.tenants.Get(ctx, req.TenantID)
	if err != nil {
		return domain.CheckoutSession{}, err
	}

	cycle := domain.ClampCycle(req.PaymentMonths)
	if req.PaymentMonths == 0 {
		cycle = domain.ClampCycle(tenant.PaymentMonths)
	}

	amount := req.Amount
	propertyName := ""
	if tenant.PropertyID != "" {
		if property, err := s.properties.Get(ctx, tenant.PropertyID); err == nil {
			propertyName = property.Name
			if amount <= 0 {
				amount = property.Rent * float64(cycle)
			}
		}
	}
	if amount <= 0 {
		return domain.CheckoutSession{}, &domain.ValidationError{Message: "payment amount must be positive"}
	}
	if amount > MaxCheckoutAmount {
		return domain.CheckoutSession{}, &domain.ValidationError{
			Message: fmt.Sprintf("payment amount exceeds the %d %s limit", MaxCheckoutAmount, strings.ToUpper(StripeCurrency)),
		}
	}

	ownerID := req.OwnerID
	if ownerID == "" {
		ownerID = tenant.OwnerID
	}

	base := strings.TrimRight(s.opts.AppURL, "/")
	session, err := s.gateway.CreateCheckout(ctx, domain.CheckoutParams{
		Amount:        amount,
		Currency:      StripeCurrency,
		TenantID:      tenant.ID,
		TenantName:    tenant.Name,
		TenantEmail:   tenant.Email,
		OwnerID:       ownerID,
		PropertyID:    tenant.PropertyID,
		PropertyName:  propertyName,
		DueDate:       req.DueDate,
		PaymentMonths: cycle,
		SuccessURL:    base + "/dashbord/paiements?status=success",
		CancelURL:     base + "/dashbord/paiements?status=cancelled",
	})
	if err != nil {
		return domain.CheckoutSession{}, fmt.Errorf("creating checkout session: %w", err)
	}
	return session, nil
}

// History lists recent checkout sessions, newest first, optionally filtered
// by the owner or tenant recorded in session metadata.
func (s *PaymentService) History(ctx context.Context, ownerID, tenantID string, limit int) ([]domain.PaymentRecord, error) {
	if s.gateway == nil {
		return nil, domain.ErrGatewayNotConfigured
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	sessions, err := s.gateway.ListSessions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing checkout sessions: %w", err)
	}

	records := make([]domain.PaymentRecord, 0, len(sessions))
	for _, rec := range sessions {
		if ownerID != "" && rec.Metadata["ownerId"] != ownerID {
			continue
		}
		if tenantID != "" && rec.Metadata["tenantId"] != tenantID {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// HandleWebhook verifies and processes one gateway notification. A completed
// checkout clears the tenant's late status and emails a receipt; the receipt
// failing to send never fails the webhook, the payment already happened.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.gateway == nil {
		return domain.ErrGatewayNotConfigured
	}

	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if event.Type != "checkout.session.completed" || event.Session.PaymentStatus != "paid" {
		return nil
	}

	session := event.Session
	tenantID := session.Metadata["tenantId"]
	if tenantID != "" {
		s.clearLateStatus(ctx, tenantID)
	}

	if err := s.sendReceipt(ctx, session); err != nil {
		slog.WarnContext(ctx, "sending payment receipt failed",
			"session", session.ID, "tenant", tenantID, "error", err)
	}
	return nil
}

// clearLateStatus applies record_payment to a late tenant. Tenants already
// active make the transition a no-op.
func (s *PaymentService) clearLateStatus(ctx context.Context, tenantID string) {
	tenant, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		slog.WarnContext(ctx, "loading tenant for payment failed", "tenant", tenantID, "error", err)
		return
	}

	next, err := s.validator.Apply(ctx, tenant.Status, domain.EventRecordPayment)
	if err != nil {
		var te *domain.TransitionError
		if !errors.As(err, &te) {
			slog.WarnContext(ctx, "validating payment transition failed", "tenant", tenantID, "error", err)
		}
		return
	}
	if err := s.tenants.SetStatus(ctx, tenantID, next); err != nil {
		slog.WarnContext(ctx, "clearing late status failed", "tenant", tenantID, "error", err)
	}
}

func (s *PaymentService) sendReceipt(ctx context.Context, session domain.PaymentRecord) error {
	to := session.CustomerEmail
	if to == "" {
		return nil
	}

	months := 1
	if raw := session.Metadata["paymentMonths"]; raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			months = domain.ClampCycle(n)
		}
	}
	paidDate := session.CreatedAt
	if session.PaidAt != nil {
		paidDate = *session.PaidAt
	}

	amount := FormatCurrency(session.Amount)
	data := receiptEmailData{
		Name:          session.Metadata["tenantName"],
		PropertyName:  session.Metadata["propertyName"],
		Amount:        amount,
		PaymentMonths: months,
		DueDate:       session.Metadata["dueDate"],
		PaidDate:      paidDate.Format("02/01/2006"),
		CTAURL:        session.ReceiptURL,
		CTALabel:      "Voir le reçu",
	}
	if data.PropertyName == "" {
		data.PropertyName = "votre logement"
	}
	if data.DueDate == "" {
		data.DueDate = paidDate.Format("02/01/2006")
	}

	html, err := renderEmailTemplate("receipt.html.tmpl", data)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("Bonjour %s,\n\nNous confirmons la réception de votre paiement de %s pour %s.\nDate de paiement : %s\n\nMerci.",
		data.Name, amount, data.PropertyName, data.PaidDate)

	return s.mailer.Send(ctx, domain.Email{
		To:      to,
		Subject: "Confirmation de paiement - " + amount,
		Text:    text,
		HTML:    html,
	})
}
