package app

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// urlPattern extracts the first http(s) link of a message body; it becomes
// the email's call-to-action button.
var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// MessageRequest is an ad-hoc message batch to one or more tenants.
type MessageRequest struct {
	TenantIDs []string
	Subject   string
	Body      string
	OwnerID   string
}

// MessageService sends ad-hoc emails to tenants with per-tenant
// personalization and archives every delivery.
type MessageService struct {
	tenants    domain.TenantDirectory
	properties domain.PropertyDirectory
	mailer     domain.Mailer
	archive    domain.MessageLog
	now        func() time.Time
}

// NewMessageService creates a message service over the directories.
func NewMessageService(
	tenants domain.TenantDirectory,
	properties domain.PropertyDirectory,
	mailer domain.Mailer,
	archive domain.MessageLog,
) *MessageService {
	return &MessageService{
		tenants:    tenants,
		properties: properties,
		mailer:     mailer,
		archive:    archive,
		now:        time.Now,
	}
}

// Send delivers the message to each selected tenant, substituting
// personalization tokens per recipient. One recipient's failure never
// aborts the batch; every successful delivery is archived.
func (s *MessageService) Send(ctx context.Context, req MessageRequest) (BatchReport, error) {
	if len(req.TenantIDs) == 0 {
		return BatchReport{}, &domain.ValidationError{Message: "at least one tenant is required"}
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return BatchReport{}, &domain.ValidationError{Message: "message body is required"}
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = "Message de votre gestionnaire"
	}

	properties, err := s.properties.List(ctx)
	if err != nil {
		return BatchReport{}, fmt.Errorf("listing properties: %w", err)
	}
	propsByID := make(map[string]domain.Property, len(properties))
	for _, p := range properties {
		propsByID[p.ID] = p
	}

	ctaURL := urlPattern.FindString(body)

	var report BatchReport
	for _, tenantID := range req.TenantIDs {
		report.Total++
		outcome := domain.ReminderOutcome{TenantID: tenantID, Status: "sent"}

		tenant, err := s.tenants.Get(ctx, tenantID)
		if err != nil {
			outcome.Status = "failed"
			outcome.Message = err.Error()
			report.Failed++
			report.Results = append(report.Results, outcome)
			continue
		}
		outcome.TenantEmail = tenant.Email
		if tenant.Email == "" {
			outcome.Status = "failed"
			outcome.Message = "tenant has no email address"
			report.Failed++
			report.Results = append(report.Results, outcome)
			continue
		}

		personalized := RenderTokens(body, s.tokenContext(tenant, propsByID))
		if err := s.sendMessageEmail(ctx, tenant, subject, personalized, ctaURL); err != nil {
			outcome.Status = "failed"
			outcome.Message = err.Error()
			report.Failed++
			report.Results = append(report.Results, outcome)
			continue
		}
		report.Sent++
		report.Results = append(report.Results, outcome)

		record := domain.MessageRecord{
			TenantID:   tenant.ID,
			TenantName: tenant.Name,
			Channel:    "email",
			Subject:    subject,
			Body:       personalized,
			OwnerID:    req.OwnerID,
			SentAt:     s.now().UTC(),
		}
		if _, err := s.archive.Append(ctx, record); err != nil {
			slog.WarnContext(ctx, "archiving message failed", "tenant", tenant.ID, "error", err)
		}
	}

	return report, nil
}

// History returns archived messages, newest first, optionally filtered by
// owner or tenant.
func (s *MessageService) History(ctx context.Context, ownerID, tenantID string, limit int) ([]domain.MessageRecord, error) {
	records, err := s.archive.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	filtered := make([]domain.MessageRecord, 0, len(records))
	for _, r := range records {
		if ownerID != "" && r.OwnerID != ownerID {
			continue
		}
		if tenantID != "" && r.TenantID != tenantID {
			continue
		}
		filtered = append(filtered, r)
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].SentAt.After(filtered[j].SentAt) })

	if limit < 1 {
		limit = 50
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// tokenContext builds the substitution map for one tenant. French and
// English token spellings map to the same values.
func (s *MessageService) tokenContext(tenant domain.Tenant, props map[string]domain.Property) map[string]string {
	first := firstName(tenant.Name)
	context := map[string]string{
		"nom":    tenant.Name,
		"name":   tenant.Name,
		"prenom": first,
		"first":  first,
		"email":  tenant.Email,
	}
	if p, ok := props[tenant.PropertyID]; ok {
		context["logement"] = p.Name
		context["property"] = p.Name
		context["adresse"] = p.Address
		context["address"] = p.Address
	}
	return context
}

func (s *MessageService) sendMessageEmail(ctx context.Context, tenant domain.Tenant, subject, body, ctaURL string) error {
	html, err := renderEmailTemplate("message.html.tmpl", messageEmailData{
		Name:     tenant.Name,
		BodyHTML: textToHTML(body),
		CTAURL:   ctaURL,
	})
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, domain.Email{
		To:      tenant.Email,
		Subject: subject,
		Text:    body,
		HTML:    html,
	})
}
