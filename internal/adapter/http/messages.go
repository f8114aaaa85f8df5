package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

// MessageResponse is the API representation of an archived message.
type MessageResponse struct {
	ID         string    `json:"id" doc:"Unique identifier"`
	TenantID   string    `json:"tenantId" doc:"Recipient tenant"`
	TenantName string    `json:"tenantName,omitempty"`
	Channel    string    `json:"channel" doc:"Delivery channel"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body" doc:"Personalized body as delivered"`
	OwnerID    string    `json:"ownerId,omitempty"`
	SentAt     time.Time `json:"sentAt"`
}

func toMessageResponse(r domain.MessageRecord) MessageResponse {
	return MessageResponse{
		ID:         r.ID,
		TenantID:   r.TenantID,
		TenantName: r.TenantName,
		Channel:    r.Channel,
		Subject:    r.Subject,
		Body:       r.Body,
		OwnerID:    r.OwnerID,
		SentAt:     r.SentAt,
	}
}

type SendMessageInput struct {
	Body struct {
		TenantIDs []string `json:"tenantIds" minItems:"1" doc:"Recipient tenants"`
		Subject   string   `json:"subject,omitempty" maxLength:"255" doc:"Email subject"`
		Body      string   `json:"body" minLength:"1" doc:"Message body with optional {{nom}}, {{prenom}}, {{logement}} tokens"`
		OwnerID   string   `json:"ownerId,omitempty" doc:"Managing owner"`
	}
}

type SendMessageOutput struct {
	Body app.BatchReport
}

type MessageHistoryInput struct {
	OwnerID  string `query:"ownerId" required:"false" doc:"Filter by owner"`
	TenantID string `query:"tenantId" required:"false" doc:"Filter by tenant"`
	Limit    int    `query:"limit" required:"false" doc:"Maximum records to return"`
}

type MessageHistoryOutput struct {
	Body []MessageResponse
}

func registerMessageRoutes(api huma.API, svc *app.MessageService) {
	huma.Register(api, huma.Operation{
		OperationID: "send-message",
		Method:      http.MethodPost,
		Path:        "/api/messages/send",
		Summary:     "Send a message to tenants",
		Tags:        []string{"Messages"},
	}, func(ctx context.Context, input *SendMessageInput) (*SendMessageOutput, error) {
		report, err := svc.Send(ctx, app.MessageRequest{
			TenantIDs: input.Body.TenantIDs,
			Subject:   input.Body.Subject,
			Body:      input.Body.Body,
			OwnerID:   input.Body.OwnerID,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &SendMessageOutput{Body: report}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "message-history",
		Method:      http.MethodGet,
		Path:        "/api/messages",
		Summary:     "List archived messages",
		Tags:        []string{"Messages"},
	}, func(ctx context.Context, input *MessageHistoryInput) (*MessageHistoryOutput, error) {
		records, err := svc.History(ctx, input.OwnerID, input.TenantID, input.Limit)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]MessageResponse, len(records))
		for i, r := range records {
			resp[i] = toMessageResponse(r)
		}
		return &MessageHistoryOutput{Body: resp}, nil
	})
}
