package firebase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"firebase.google.com/go/v4/db"

	"github.com/neomorfeo/rentiq/internal/domain"
)

var (
	_ domain.ReminderLog = (*ReminderLog)(nil)
	_ domain.MessageLog  = (*MessageLog)(nil)
)

const (
	reminderLogCollection = "remindersLogs"
	messageCollection     = "messages"
)

type reminderLogRecord struct {
	OwnerID         string                   `json:"ownerId,omitempty"`
	Total           int                      `json:"total"`
	Sent            int                      `json:"sent"`
	Failed          int                      `json:"failed"`
	DueDate         string                   `json:"dueDate,omitempty"`
	TemplatePreview string                   `json:"templatePreview,omitempty"`
	CreatedAt       string                   `json:"createdAt,omitempty"`
	Results         []domain.ReminderOutcome `json:"results,omitempty"`
}

type messageRecord struct {
	TenantID   string `json:"tenantId,omitempty"`
	TenantName string `json:"tenantName,omitempty"`
	Channel    string `json:"channel,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Body       string `json:"body,omitempty"`
	OwnerID    string `json:"ownerId,omitempty"`
	SentAt     string `json:"sentAt,omitempty"`
}

// ReminderLog records reminder batches in the remindersLogs collection.
type ReminderLog struct {
	ref *db.Ref
}

// NewReminderLog creates a reminder log over the database client.
func NewReminderLog(client *db.Client) *ReminderLog {
	return &ReminderLog{ref: client.NewRef(reminderLogCollection)}
}

// Append pushes one batch record and returns its generated key.
func (l *ReminderLog) Append(ctx context.Context, entry domain.ReminderLogEntry) (string, error) {
	rec := reminderLogRecord{
		OwnerID:         entry.OwnerID,
		Total:           entry.Total,
		Sent:            entry.Sent,
		Failed:          entry.Failed,
		DueDate:         entry.DueDate,
		TemplatePreview: entry.TemplatePreview,
		Results:         entry.Results,
	}
	if !entry.CreatedAt.IsZero() {
		rec.CreatedAt = entry.CreatedAt.UTC().Format(time.RFC3339)
	}

	ref, err := l.ref.Push(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("recording reminder batch: %w", err)
	}
	return ref.Key, nil
}

// List returns every recorded batch ordered by record key.
func (l *ReminderLog) List(ctx context.Context) ([]domain.ReminderLogEntry, error) {
	var snapshot map[string]reminderLogRecord
	if err := l.ref.Get(ctx, &snapshot); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", reminderLogCollection, err)
	}

	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]domain.ReminderLogEntry, 0, len(keys))
	for _, k := range keys {
		rec := snapshot[k]
		entry := domain.ReminderLogEntry{
			ID:              k,
			OwnerID:         rec.OwnerID,
			Total:           rec.Total,
			Sent:            rec.Sent,
			Failed:          rec.Failed,
			DueDate:         rec.DueDate,
			TemplatePreview: rec.TemplatePreview,
			Results:         rec.Results,
		}
		if rec.CreatedAt != "" {
			if ts, err := time.Parse(time.RFC3339, rec.CreatedAt); err == nil {
				entry.CreatedAt = ts
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// MessageLog archives ad-hoc messages in the messages collection.
type MessageLog struct {
	ref *db.Ref
}

// NewMessageLog creates a message archive over the database client.
func NewMessageLog(client *db.Client) *MessageLog {
	return &MessageLog{ref: client.NewRef(messageCollection)}
}

// Append pushes one archived message and returns its generated key.
func (l *MessageLog) Append(ctx context.Context, record domain.MessageRecord) (string, error) {
	rec := messageRecord{
		TenantID:   record.TenantID,
		TenantName: record.TenantName,
		Channel:    record.Channel,
		Subject:    record.Subject,
		Body:       record.Body,
		OwnerID:    record.OwnerID,
	}
	if !record.SentAt.IsZero() {
		rec.SentAt = record.SentAt.UTC().Format(time.RFC3339)
	}

	ref, err := l.ref.Push(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("archiving message: %w", err)
	}
	return ref.Key, nil
}

// List returns every archived message ordered by record key.
func (l *MessageLog) List(ctx context.Context) ([]domain.MessageRecord, error) {
	var snapshot map[string]messageRecord
	if err := l.ref.Get(ctx, &snapshot); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", messageCollection, err)
	}

	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]domain.MessageRecord, 0, len(keys))
	for _, k := range keys {
		rec := snapshot[k]
		record := domain.MessageRecord{
			ID:         k,
			TenantID:   rec.TenantID,
			TenantName: rec.TenantName,
			Channel:    rec.Channel,
			Subject:    rec.Subject,
			Body:       rec.Body,
			OwnerID:    rec.OwnerID,
		}
		if rec.SentAt != "" {
			if ts, err := time.Parse(time.RFC3339, rec.SentAt); err == nil {
				record.SentAt = ts
			}
		}
		records = append(records, record)
	}
	return records, nil
}
