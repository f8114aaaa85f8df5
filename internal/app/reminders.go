package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// ReminderOptions carries the configuration the reminder flows need,
// injected explicitly at construction.
type ReminderOptions struct {
	AppURL         string
	DefaultOwnerID string
	Active         bool
	Clock          func() time.Time
}

// UpcomingReminder is one tenant's projected due date with the amount owed.
type UpcomingReminder struct {
	TenantID        string  `json:"tenantId"`
	TenantName      string  `json:"tenantName"`
	TenantEmail     string  `json:"tenantEmail"`
	PropertyName    string  `json:"propertyName"`
	Amount          float64 `json:"amount"`
	AmountFormatted string  `json:"amountFormatted"`
	PaymentMonths   int     `json:"paymentMonths"`
	DueDate         string  `json:"dueDate"`
}

// UpcomingSummary previews the next reminder batch.
type UpcomingSummary struct {
	ReminderDate    string             `json:"reminderDate"`
	DueDate         string             `json:"dueDate"`
	TotalRecipients int                `json:"totalRecipients"`
	Reminders       []UpcomingReminder `json:"reminders"`
}

// SendRequest is a manual reminder batch request.
type SendRequest struct {
	OwnerID   string
	TenantIDs []string
	DueDate   string
	Message   string
}

// BatchReport aggregates per-recipient outcomes of an email batch. One
// recipient's failure never aborts the batch.
type BatchReport struct {
	Total   int                      `json:"total"`
	Sent    int                      `json:"sent"`
	Failed  int                      `json:"failed"`
	DueDate string                   `json:"dueDate,omitempty"`
	Results []domain.ReminderOutcome `json:"results"`
	LogID   string                   `json:"logId,omitempty"`
}

// HistoryItem is a shaped reminder-log entry.
type HistoryItem struct {
	ID              string `json:"id"`
	OwnerID         string `json:"ownerId"`
	Total           int    `json:"total"`
	Sent            int    `json:"sent"`
	Failed          int    `json:"failed"`
	DueDate         string `json:"dueDate,omitempty"`
	TemplatePreview string `json:"templatePreview,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
}

// ReminderService drives rent-reminder previews, manual batches and the
// monthly broadcast. All due dates are recomputed fresh from the directory;
// nothing is cached.
type ReminderService struct {
	tenants    domain.TenantDirectory
	properties domain.PropertyDirectory
	mailer     domain.Mailer
	log        domain.ReminderLog
	opts       ReminderOptions
	now        func() time.Time
}

// NewReminderService creates a reminder service with the given adapters.
func NewReminderService(
	tenants domain.TenantDirectory,
	properties domain.PropertyDirectory,
	mailer domain.Mailer,
	log domain.ReminderLog,
	opts ReminderOptions,
) *ReminderService {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &ReminderService{
		tenants:    tenants,
		properties: properties,
		mailer:     mailer,
		log:        log,
		opts:       opts,
		now:        now,
	}
}

// Upcoming lists each tenant's next due date with the amount owed, ordered
// soonest first. Tenants without an email are skipped; tenants whose entry
// date is unusable fall back to the end of the current month for display.
func (s *ReminderService) Upcoming(ctx context.Context, ownerID string) (UpcomingSummary, error) {
	tenants, properties, err := s.fetchDirectory(ctx)
	if err != nil {
		return UpcomingSummary{}, err
	}

	today := domain.DateOf(s.now())
	defaultDue := lastDayOfMonth(today)

	var reminders []UpcomingReminder
	for _, t := range tenants {
		if ownerID != "" && t.OwnerID != ownerID {
			continue
		}
		if t.Email == "" {
			continue
		}

		cycle := domain.ClampCycle(t.PaymentMonths)
		due, err := domain.NextDue(t.EntryDate, cycle, today)
		if err != nil {
			due = defaultDue
		}

		prop, hasProp := properties[t.PropertyID]
		propertyName := "Logement"
		rent := 0.0
		if hasProp {
			propertyName = prop.Name
			rent = prop.Rent
		}
		amount := rent * float64(cycle)

		reminders = append(reminders, UpcomingReminder{
			TenantID:        t.ID,
			TenantName:      t.Name,
			TenantEmail:     t.Email,
			PropertyName:    propertyName,
			Amount:          amount,
			AmountFormatted: FormatCurrency(amount),
			PaymentMonths:   cycle,
			DueDate:         due.Format("2006-01-02"),
		})
	}

	sort.Slice(reminders, func(i, j int) bool { return reminders[i].DueDate < reminders[j].DueDate })

	nextDue := defaultDue
	if len(reminders) > 0 {
		if d, err := time.Parse("2006-01-02", reminders[0].DueDate); err == nil {
			nextDue = d
		}
	}

	return UpcomingSummary{
		ReminderDate:    nextDue.AddDate(0, 0, -7).Format("2006-01-02"),
		DueDate:         nextDue.Format("2006-01-02"),
		TotalRecipients: len(reminders),
		Reminders:       reminders,
	}, nil
}

// Send delivers a reminder batch to the owner's tenants, one failure
// boundary per recipient, and records the batch in the reminder log.
func (s *ReminderService) Send(ctx context.Context, req SendRequest) (BatchReport, error) {
	if !s.opts.Active {
		return BatchReport{}, domain.ErrRemindersDisabled
	}

	tenants, properties, err := s.fetchDirectory(ctx)
	if err != nil {
		return BatchReport{}, err
	}

	ownerID := req.OwnerID
	if ownerID == "" {
		ownerID = s.opts.DefaultOwnerID
	}

	eligible := make([]domain.Tenant, 0, len(tenants))
	wanted := make(map[string]bool, len(req.TenantIDs))
	for _, id := range req.TenantIDs {
		wanted[id] = true
	}
	for _, t := range tenants {
		if t.OwnerID != ownerID || t.Email == "" {
			continue
		}
		if len(wanted) > 0 && !wanted[t.ID] {
			continue
		}
		eligible = append(eligible, t)
	}
	if len(eligible) == 0 {
		return BatchReport{}, domain.ErrTenantNotFound
	}

	dueDate, err := s.resolveDueDate(req.DueDate)
	if err != nil {
		return BatchReport{}, err
	}
	dueText := dueDate.Format("02/01/2006")

	tpl := strings.TrimSpace(req.Message)
	if tpl == "" {
		tpl = DefaultReminderTemplate()
	}

	report := BatchReport{DueDate: dueDate.Format("2006-01-02")}
	for _, t := range eligible {
		prop, hasProp := properties[t.PropertyID]
		propertyName := "votre logement"
		rent := 0.0
		if hasProp {
			propertyName = prop.Name
			rent = prop.Rent
		}
		amount := rent * float64(domain.ClampCycle(t.PaymentMonths))

		context := map[string]string{
			"locataire": t.Name,
			"montant":   FormatCurrency(amount),
			"date":      dueText,
			"logement":  propertyName,
			"prenom":    firstName(t.Name),
		}
		body := RenderTokens(tpl, context)

		report.Total++
		outcome := domain.ReminderOutcome{TenantID: t.ID, TenantEmail: t.Email, Status: "sent"}
		if err := s.sendReminderEmail(ctx, t, body, FormatCurrency(amount), dueText); err != nil {
			outcome.Status = "failed"
			outcome.Message = err.Error()
			report.Failed++
		} else {
			report.Sent++
		}
		report.Results = append(report.Results, outcome)
	}

	// The log lives in the document store; a log write failure must not
	// fail a batch that already went out.
	entry := domain.ReminderLogEntry{
		OwnerID:         ownerID,
		Total:           report.Total,
		Sent:            report.Sent,
		Failed:          report.Failed,
		DueDate:         report.DueDate,
		TemplatePreview: preview(tpl, 280),
		CreatedAt:       s.now().UTC(),
		Results:         capResults(report.Results, 25),
	}
	if id, err := s.log.Append(ctx, entry); err != nil {
		slog.WarnContext(ctx, "recording reminder batch failed", "error", err)
	} else {
		report.LogID = id
	}

	return report, nil
}

// BroadcastMonthly sends the automatic rent reminder to every tenant whose
// next due date falls in lastDay's month. Invoked by the scheduled job a
// week before lastDay; per-recipient outcomes are collected, never fatal.
func (s *ReminderService) BroadcastMonthly(ctx context.Context, lastDay time.Time) (BatchReport, error) {
	if !s.opts.Active {
		return BatchReport{}, domain.ErrRemindersDisabled
	}

	tenants, properties, err := s.fetchDirectory(ctx)
	if err != nil {
		return BatchReport{}, err
	}

	today := domain.DateOf(s.now())
	report := BatchReport{DueDate: domain.DateOf(lastDay).Format("2006-01-02")}

	for _, t := range tenants {
		if t.Email == "" {
			continue
		}
		cycle := domain.ClampCycle(t.PaymentMonths)
		if !domain.DueInMonth(t.EntryDate, cycle, today, lastDay.Year(), lastDay.Month()) {
			continue
		}

		due, err := domain.NextDue(t.EntryDate, cycle, today)
		if err != nil {
			continue // unreachable after DueInMonth, kept as a guard
		}
		dueText := due.Format("02/01/2006")

		prop, hasProp := properties[t.PropertyID]
		propertyName := "votre logement"
		rent := 0.0
		if hasProp {
			propertyName = prop.Name
			rent = prop.Rent
		}
		amount := FormatCurrency(rent * float64(cycle))

		body := fmt.Sprintf(
			"Ceci est un rappel automatique : le loyer de %s doit être réglé avant le %s.\n\n"+
				"Montant dû : %s\nMerci d'anticiper le paiement afin d'éviter toute pénalité.",
			propertyName, dueText, amount)

		report.Total++
		outcome := domain.ReminderOutcome{TenantID: t.ID, TenantEmail: t.Email, Status: "sent"}
		if err := s.sendReminderEmail(ctx, t, body, amount, dueText); err != nil {
			outcome.Status = "failed"
			outcome.Message = err.Error()
			report.Failed++
		} else {
			report.Sent++
		}
		report.Results = append(report.Results, outcome)
	}

	return report, nil
}

// History returns recorded reminder batches, newest first.
func (s *ReminderService) History(ctx context.Context, ownerID string, limit int) ([]HistoryItem, error) {
	entries, err := s.log.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing reminder log: %w", err)
	}

	items := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		owner := e.OwnerID
		if owner == "" {
			owner = s.opts.DefaultOwnerID
		}
		if ownerID != "" && owner != ownerID {
			continue
		}
		item := HistoryItem{
			ID:              e.ID,
			OwnerID:         owner,
			Total:           e.Total,
			Sent:            e.Sent,
			Failed:          e.Failed,
			DueDate:         e.DueDate,
			TemplatePreview: e.TemplatePreview,
		}
		if !e.CreatedAt.IsZero() {
			item.CreatedAt = e.CreatedAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt > items[j].CreatedAt })

	if limit < 1 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *ReminderService) sendReminderEmail(ctx context.Context, t domain.Tenant, body, amount, dueText string) error {
	payURL := paymentPageURL(s.opts.AppURL)
	html, err := renderEmailTemplate("reminder.html.tmpl", reminderEmailData{
		Name:     t.Name,
		BodyHTML: textToHTML(body),
		Amount:   amount,
		PayURL:   payURL,
	})
	if err != nil {
		return err
	}

	text := body + "\n\nMontant dû : " + amount
	if s.opts.AppURL != "" {
		text += "\n" + s.opts.AppURL
	}

	return s.mailer.Send(ctx, domain.Email{
		To:      t.Email,
		Subject: "Rappel de paiement - échéance du " + dueText,
		Text:    text,
		HTML:    html,
	})
}

func (s *ReminderService) fetchDirectory(ctx context.Context) ([]domain.Tenant, map[string]domain.Property, error) {
	tenants, err := s.tenants.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("listing tenants: %w", err)
	}
	properties, err := s.properties.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("listing properties: %w", err)
	}

	byID := make(map[string]domain.Property, len(properties))
	for _, p := range properties {
		byID[p.ID] = p
	}
	return tenants, byID, nil
}

// resolveDueDate parses an explicit batch due date or defaults to the last
// day of the current month.
func (s *ReminderService) resolveDueDate(raw string) (time.Time, error) {
	if raw == "" {
		return lastDayOfMonth(domain.DateOf(s.now())), nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Message: "invalid due date"}
	}
	return d, nil
}

// lastDayOfMonth returns the final day of t's month.
func lastDayOfMonth(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1)
}

func paymentPageURL(appURL string) string {
	if appURL == "" {
		return ""
	}
	return strings.TrimRight(appURL, "/") + "/dashbord/paiements"
}

func firstName(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// preview truncates on rune boundaries; French templates carry accented
// characters that a byte slice could split.
func preview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func capResults(results []domain.ReminderOutcome, max int) []domain.ReminderOutcome {
	if len(results) <= max {
		return results
	}
	return results[:max]
}
