package domain

import (
	"context"
	"time"
)

// TenantDirectory is the contract against the external document store's
// tenant collection. Patch applies a partial field update; SetStatus is the
// single-field status patch issued by the late-payment sweep.
type TenantDirectory interface {
	List(ctx context.Context) ([]Tenant, error)
	Get(ctx context.Context, id string) (Tenant, error)
	Create(ctx context.Context, tenant Tenant) (string, error)
	Patch(ctx context.Context, id string, fields map[string]any) error
	SetStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
}

// PropertyDirectory is the contract against the property collection.
type PropertyDirectory interface {
	List(ctx context.Context) ([]Property, error)
	Get(ctx context.Context, id string) (Property, error)
	Create(ctx context.Context, property Property) (string, error)
	Patch(ctx context.Context, id string, fields map[string]any) error
	SetStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
}

// ReminderOutcome is the per-recipient result of a reminder or message batch.
type ReminderOutcome struct {
	TenantID    string `json:"tenantId"`
	TenantEmail string `json:"tenantEmail"`
	Status      string `json:"status"` // "sent" or "failed"
	Message     string `json:"message,omitempty"`
}

// ReminderLogEntry is one recorded reminder batch.
type ReminderLogEntry struct {
	ID              string
	OwnerID         string
	Total           int
	Sent            int
	Failed          int
	DueDate         string
	TemplatePreview string
	CreatedAt       time.Time
	Results         []ReminderOutcome
}

// ReminderLog records reminder batches in the document store.
type ReminderLog interface {
	Append(ctx context.Context, entry ReminderLogEntry) (string, error)
	List(ctx context.Context) ([]ReminderLogEntry, error)
}

// MessageRecord is one ad-hoc message archived in the document store.
type MessageRecord struct {
	ID         string
	TenantID   string
	TenantName string
	Channel    string
	Subject    string
	Body       string
	OwnerID    string
	SentAt     time.Time
}

// MessageLog archives ad-hoc messages sent to tenants.
type MessageLog interface {
	Append(ctx context.Context, record MessageRecord) (string, error)
	List(ctx context.Context) ([]MessageRecord, error)
}

// Email is one outbound message. HTML is optional; the mailer falls back to
// an escaped rendering of Text when absent.
type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
	ReplyTo string
}

// Mailer delivers email. Implementations must return ErrMailerNotConfigured
// when no relay is configured, distinct from delivery failures; batch callers
// treat both as per-recipient failures.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// CheckoutParams describes a payment-link request passed to the gateway.
type CheckoutParams struct {
	Amount        float64
	Currency      string
	TenantID      string
	TenantName    string
	TenantEmail   string
	OwnerID       string
	PropertyID    string
	PropertyName  string
	DueDate       string
	PaymentMonths int
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the hosted payment page created by the gateway.
type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentRecord is a shaped view of one gateway checkout session.
type PaymentRecord struct {
	ID            string
	Amount        float64
	Currency      string
	PaymentStatus string
	SessionStatus string
	CustomerEmail string
	Metadata      map[string]string
	ReceiptURL    string
	CreatedAt     time.Time
	PaidAt        *time.Time
}

// WebhookEvent is a verified gateway notification.
type WebhookEvent struct {
	Type    string
	Session PaymentRecord
}

// PaymentGateway is the contract against the payment processor.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, params CheckoutParams) (CheckoutSession, error)
	ListSessions(ctx context.Context, limit int) ([]PaymentRecord, error)
	ParseWebhook(payload []byte, signature string) (WebhookEvent, error)
}

// TransitionValidator checks whether an event is allowed from a status and
// returns the destination status.
type TransitionValidator interface {
	Apply(ctx context.Context, current Status, event Event) (Status, error)
}

// User is a landlord/admin account stored locally.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// UserRepository defines the persistence contract for accounts.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
}

// TokenClaims is the identity carried by an access token.
type TokenClaims struct {
	UserID string
	Email  string
	Role   string
}

// TokenIssuer signs and verifies access tokens.
type TokenIssuer interface {
	Issue(user User) (string, time.Time, error)
	Verify(token string) (TokenClaims, error)
}
