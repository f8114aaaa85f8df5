package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

type UpcomingRemindersInput struct {
	OwnerID string `query:"ownerId" required:"false" doc:"Filter by owner"`
}

type UpcomingRemindersOutput struct {
	Body app.UpcomingSummary
}

type SendRemindersInput struct {
	Body struct {
		OwnerID   string   `json:"ownerId,omitempty" doc:"Managing owner; defaults to the configured owner"`
		TenantIDs []string `json:"tenantIds,omitempty" doc:"Restrict to these tenants; empty means all eligible"`
		DueDate   string   `json:"dueDate,omitempty" doc:"Due date (YYYY-MM-DD); defaults to end of month"`
		Message   string   `json:"message,omitempty" doc:"Template with {{locataire}}, {{montant}}, {{date}}, {{logement}} tokens"`
	}
}

type SendRemindersOutput struct {
	Body app.BatchReport
}

type ReminderHistoryInput struct {
	OwnerID string `query:"ownerId" required:"false" doc:"Filter by owner"`
	Limit   int    `query:"limit" required:"false" doc:"Maximum entries to return (1-50)"`
}

type ReminderHistoryOutput struct {
	Body []app.HistoryItem
}

type SweepOutput struct {
	Body app.SweepReport
}

func registerReminderRoutes(api huma.API, reminders *app.ReminderService, reconciler *app.ReconcileService) {
	huma.Register(api, huma.Operation{
		OperationID: "upcoming-reminders",
		Method:      http.MethodGet,
		Path:        "/api/reminders/upcoming",
		Summary:     "Preview the next reminder batch",
		Tags:        []string{"Reminders"},
	}, func(ctx context.Context, input *UpcomingRemindersInput) (*UpcomingRemindersOutput, error) {
		summary, err := reminders.Upcoming(ctx, input.OwnerID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &UpcomingRemindersOutput{Body: summary}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "send-reminders",
		Method:      http.MethodPost,
		Path:        "/api/reminders/send",
		Summary:     "Send a reminder batch",
		Tags:        []string{"Reminders"},
	}, func(ctx context.Context, input *SendRemindersInput) (*SendRemindersOutput, error) {
		report, err := reminders.Send(ctx, app.SendRequest{
			OwnerID:   input.Body.OwnerID,
			TenantIDs: input.Body.TenantIDs,
			DueDate:   input.Body.DueDate,
			Message:   input.Body.Message,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &SendRemindersOutput{Body: report}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reminder-history",
		Method:      http.MethodGet,
		Path:        "/api/reminders/history",
		Summary:     "List recorded reminder batches",
		Tags:        []string{"Reminders"},
	}, func(ctx context.Context, input *ReminderHistoryInput) (*ReminderHistoryOutput, error) {
		items, err := reminders.History(ctx, input.OwnerID, input.Limit)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ReminderHistoryOutput{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "run-late-sweep",
		Method:      http.MethodPost,
		Path:        "/api/reminders/sweep",
		Summary:     "Run the late-payment sweep now",
		Description: "Recomputes every tenant's due date and corrects billing statuses. The scheduler runs this daily; this endpoint triggers an immediate pass.",
		Tags:        []string{"Reminders"},
	}, func(ctx context.Context, _ *struct{}) (*SweepOutput, error) {
		report, err := reconciler.Run(ctx, domain.DateOf(time.Now()))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &SweepOutput{Body: report}, nil
	})
}
