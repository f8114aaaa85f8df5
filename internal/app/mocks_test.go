package app_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// --- Shared mocks ---

type mockTenantDirectory struct {
	mu      sync.Mutex
	tenants map[string]domain.Tenant
	order   []string
	nextID  int

	failSetStatus map[string]error
	failPatch     error
	failList      error
	lastPatch     map[string]any
}

func newMockTenantDirectory(tenants ...domain.Tenant) *mockTenantDirectory {
	m := &mockTenantDirectory{tenants: make(map[string]domain.Tenant)}
	for _, t := range tenants {
		m.tenants[t.ID] = t
		m.order = append(m.order, t.ID)
	}
	return m
}

func (m *mockTenantDirectory) List(_ context.Context) ([]domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	out := make([]domain.Tenant, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.tenants[id])
	}
	return out, nil
}

func (m *mockTenantDirectory) Get(_ context.Context, id string) (domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return t, nil
}

func (m *mockTenantDirectory) Create(_ context.Context, t domain.Tenant) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("t%d", m.nextID)
	t.ID = id
	m.tenants[id] = t
	m.order = append(m.order, id)
	return id, nil
}

func (m *mockTenantDirectory) Patch(_ context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPatch != nil {
		return m.failPatch
	}
	m.lastPatch = fields
	t, ok := m.tenants[id]
	if !ok {
		return domain.ErrTenantNotFound
	}
	if v, ok := fields["name"].(string); ok {
		t.Name = v
	}
	if v, ok := fields["entryDate"].(string); ok {
		t.EntryDate = v
	}
	if v, ok := fields["propertyId"].(string); ok {
		t.PropertyID = v
	}
	if v, ok := fields["paymentMonths"].(int); ok {
		t.PaymentMonths = v
	}
	m.tenants[id] = t
	return nil
}

func (m *mockTenantDirectory) SetStatus(_ context.Context, id string, status domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failSetStatus[id]; ok {
		return err
	}
	t, ok := m.tenants[id]
	if !ok {
		return domain.ErrTenantNotFound
	}
	t.Status = status
	m.tenants[id] = t
	return nil
}

func (m *mockTenantDirectory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenants[id]; !ok {
		return domain.ErrTenantNotFound
	}
	delete(m.tenants, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

type mockPropertyDirectory struct {
	mu         sync.Mutex
	properties map[string]domain.Property
	nextID     int
}

func newMockPropertyDirectory(properties ...domain.Property) *mockPropertyDirectory {
	m := &mockPropertyDirectory{properties: make(map[string]domain.Property)}
	for _, p := range properties {
		m.properties[p.ID] = p
	}
	return m
}

func (m *mockPropertyDirectory) List(_ context.Context) ([]domain.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Property, 0, len(m.properties))
	for _, p := range m.properties {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockPropertyDirectory) Get(_ context.Context, id string) (domain.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.properties[id]
	if !ok {
		return domain.Property{}, domain.ErrPropertyNotFound
	}
	return p, nil
}

func (m *mockPropertyDirectory) Create(_ context.Context, p domain.Property) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("p%d", m.nextID)
	p.ID = id
	m.properties[id] = p
	return id, nil
}

func (m *mockPropertyDirectory) Patch(_ context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.properties[id]
	if !ok {
		return domain.ErrPropertyNotFound
	}
	if v, ok := fields["name"].(string); ok {
		p.Name = v
	}
	if v, ok := fields["rent"].(float64); ok {
		p.Rent = v
	}
	m.properties[id] = p
	return nil
}

func (m *mockPropertyDirectory) SetStatus(_ context.Context, id string, status domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.properties[id]
	if !ok {
		return domain.ErrPropertyNotFound
	}
	p.Status = status
	m.properties[id] = p
	return nil
}

func (m *mockPropertyDirectory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.properties[id]; !ok {
		return domain.ErrPropertyNotFound
	}
	delete(m.properties, id)
	return nil
}

// tableValidator mirrors the production validator: allowed transitions come
// from a table, everything else is a TransitionError.
type tableValidator struct {
	transitions []domain.Transition
}

func (v *tableValidator) Apply(_ context.Context, current domain.Status, event domain.Event) (domain.Status, error) {
	for _, t := range v.transitions {
		if t.Event == event && t.Src == current {
			return t.Dst, nil
		}
	}
	return "", &domain.TransitionError{Event: event, Current: current}
}

func tenantValidator() *tableValidator {
	return &tableValidator{transitions: domain.TenantTransitions}
}

func propertyValidator() *tableValidator {
	return &tableValidator{transitions: domain.PropertyTransitions}
}

type mockMailer struct {
	mu      sync.Mutex
	sent    []domain.Email
	failFor map[string]error
}

func (m *mockMailer) Send(_ context.Context, email domain.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[email.To]; ok {
		return err
	}
	m.sent = append(m.sent, email)
	return nil
}

type mockReminderLog struct {
	entries []domain.ReminderLogEntry
	failing error
}

func (m *mockReminderLog) Append(_ context.Context, entry domain.ReminderLogEntry) (string, error) {
	if m.failing != nil {
		return "", m.failing
	}
	entry.ID = fmt.Sprintf("log%d", len(m.entries)+1)
	m.entries = append(m.entries, entry)
	return entry.ID, nil
}

func (m *mockReminderLog) List(_ context.Context) ([]domain.ReminderLogEntry, error) {
	return m.entries, nil
}

type mockMessageLog struct {
	records []domain.MessageRecord
}

func (m *mockMessageLog) Append(_ context.Context, record domain.MessageRecord) (string, error) {
	record.ID = fmt.Sprintf("msg%d", len(m.records)+1)
	m.records = append(m.records, record)
	return record.ID, nil
}

func (m *mockMessageLog) List(_ context.Context) ([]domain.MessageRecord, error) {
	return m.records, nil
}

type mockGateway struct {
	created  []domain.CheckoutParams
	sessions []domain.PaymentRecord
	webhook  domain.WebhookEvent
	parseErr error
}

func (m *mockGateway) CreateCheckout(_ context.Context, params domain.CheckoutParams) (domain.CheckoutSession, error) {
	m.created = append(m.created, params)
	return domain.CheckoutSession{ID: "cs_test", URL: "https://checkout.example/cs_test"}, nil
}

func (m *mockGateway) ListSessions(_ context.Context, _ int) ([]domain.PaymentRecord, error) {
	return m.sessions, nil
}

func (m *mockGateway) ParseWebhook(_ []byte, _ string) (domain.WebhookEvent, error) {
	if m.parseErr != nil {
		return domain.WebhookEvent{}, m.parseErr
	}
	return m.webhook, nil
}

type mockUserRepo struct {
	byEmail map[string]domain.User
	byID    map[string]domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byEmail: make(map[string]domain.User),
		byID:    make(map[string]domain.User),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

type mockIssuer struct{}

func (mockIssuer) Issue(user domain.User) (string, time.Time, error) {
	return "token-" + user.ID, time.Now().Add(time.Hour), nil
}

func (mockIssuer) Verify(token string) (domain.TokenClaims, error) {
	if len(token) <= len("token-") {
		return domain.TokenClaims{}, domain.ErrInvalidCredentials
	}
	return domain.TokenClaims{UserID: token[len("token-"):]}, nil
}
