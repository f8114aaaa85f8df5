package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

// CheckoutResponse is a hosted payment page ready to redirect to.
type CheckoutResponse struct {
	SessionID string `json:"sessionId" doc:"Gateway session identifier"`
	URL       string `json:"url" doc:"Hosted checkout URL"`
}

// PaymentResponse is the API representation of one checkout session.
type PaymentResponse struct {
	ID            string            `json:"id" doc:"Session identifier"`
	Amount        float64           `json:"amount" doc:"Amount in major units"`
	Currency      string            `json:"currency" doc:"ISO currency code"`
	PaymentStatus string            `json:"paymentStatus" doc:"paid, unpaid"`
	SessionStatus string            `json:"sessionStatus" doc:"open, complete, expired"`
	CustomerEmail string            `json:"customerEmail,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	ReceiptURL    string            `json:"receiptUrl,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	PaidAt        *time.Time        `json:"paidAt,omitempty"`
}

func toPaymentResponse(rec domain.PaymentRecord) PaymentResponse {
	return PaymentResponse{
		ID:            rec.ID,
		Amount:        rec.Amount,
		Currency:      rec.Currency,
		PaymentStatus: rec.PaymentStatus,
		SessionStatus: rec.SessionStatus,
		CustomerEmail: rec.CustomerEmail,
		Metadata:      rec.Metadata,
		ReceiptURL:    rec.ReceiptURL,
		CreatedAt:     rec.CreatedAt,
		PaidAt:        rec.PaidAt,
	}
}

type CreateCheckoutInput struct {
	Body struct {
		TenantID      string  `json:"tenantId" minLength:"1" doc:"Tenant to bill"`
		Amount        float64 `json:"amount,omitempty" minimum:"0" doc:"Amount in major units; defaults to rent times cycle"`
		DueDate       string  `json:"dueDate,omitempty" doc:"Due date the payment covers"`
		PaymentMonths int     `json:"paymentMonths,omitempty" minimum:"1" maximum:"12" doc:"Months covered"`
		OwnerID       string  `json:"ownerId,omitempty" doc:"Managing owner"`
	}
}

type CreateCheckoutOutput struct {
	Body CheckoutResponse
}

type PaymentHistoryInput struct {
	OwnerID  string `query:"ownerId" required:"false" doc:"Filter by owner"`
	TenantID string `query:"tenantId" required:"false" doc:"Filter by tenant"`
	Limit    int    `query:"limit" required:"false" doc:"Maximum sessions to return (1-100)"`
}

type PaymentHistoryOutput struct {
	Body []PaymentResponse
}

// WebhookInput carries the raw gateway payload; signature verification needs
// the untouched bytes.
type WebhookInput struct {
	Signature string `header:"Stripe-Signature"`
	RawBody   []byte
}

type WebhookOutput struct {
	Body struct {
		Received bool `json:"received"`
	}
}

func registerPaymentRoutes(api huma.API, svc *app.PaymentService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-checkout",
		Method:        http.MethodPost,
		Path:          "/api/payments/checkout",
		Summary:       "Create a hosted checkout session",
		Tags:          []string{"Payments"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateCheckoutInput) (*CreateCheckoutOutput, error) {
		session, err := svc.CreateCheckout(ctx, app.CheckoutRequest{
			TenantID:      input.Body.TenantID,
			Amount:        input.Body.Amount,
			DueDate:       input.Body.DueDate,
			PaymentMonths: input.Body.PaymentMonths,
			OwnerID:       input.Body.OwnerID,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateCheckoutOutput{Body: CheckoutResponse{SessionID: session.ID, URL: session.URL}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "payment-history",
		Method:      http.MethodGet,
		Path:        "/api/payments/history",
		Summary:     "List recent checkout sessions",
		Tags:        []string{"Payments"},
	}, func(ctx context.Context, input *PaymentHistoryInput) (*PaymentHistoryOutput, error) {
		records, err := svc.History(ctx, input.OwnerID, input.TenantID, input.Limit)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]PaymentResponse, len(records))
		for i, rec := range records {
			resp[i] = toPaymentResponse(rec)
		}
		return &PaymentHistoryOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "payment-webhook",
		Method:      http.MethodPost,
		Path:        "/api/payments/webhook",
		Summary:     "Receive gateway notifications",
		Tags:        []string{"Payments"},
	}, func(ctx context.Context, input *WebhookInput) (*WebhookOutput, error) {
		if err := svc.HandleWebhook(ctx, input.RawBody, input.Signature); err != nil {
			// A signature mismatch is the caller's fault, not ours.
			return nil, huma.Error400BadRequest("webhook verification failed")
		}
		out := &WebhookOutput{}
		out.Body.Received = true
		return out, nil
	})
}
