// Package http exposes the REST API over huma on a chi router.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

// Services bundles the application services the API exposes.
type Services struct {
	Auth       *app.AuthService
	Tenants    *app.TenantService
	Properties *app.PropertyService
	Payments   *app.PaymentService
	Reminders  *app.ReminderService
	Reconciler *app.ReconcileService
	Messages   *app.MessageService
}

// Register adds all API routes to the Huma API.
func Register(api huma.API, svc Services) {
	registerAuthRoutes(api, svc.Auth)
	registerTenantRoutes(api, svc.Tenants)
	registerPropertyRoutes(api, svc.Properties)
	registerPaymentRoutes(api, svc.Payments)
	registerReminderRoutes(api, svc.Reminders, svc.Reconciler)
	registerMessageRoutes(api, svc.Messages)
	registerHealthRoute(api)
}

// --- Tenants ---

// TenantResponse is the API representation of a tenant.
type TenantResponse struct {
	ID            string `json:"id" doc:"Unique identifier"`
	Name          string `json:"name" doc:"Full name"`
	Email         string `json:"email,omitempty" doc:"Contact email"`
	Phone         string `json:"phone,omitempty" doc:"Contact phone"`
	Status        string `json:"status" doc:"Billing state (pending, active, late)"`
	PropertyID    string `json:"propertyId,omitempty" doc:"Occupied property"`
	OwnerID       string `json:"ownerId,omitempty" doc:"Managing owner"`
	Note          string `json:"note,omitempty" doc:"Free-form note"`
	EntryDate     string `json:"entryDate,omitempty" doc:"Lease start date"`
	PaymentMonths int    `json:"paymentMonths" doc:"Billing cycle in months (1-12)"`
}

func toTenantResponse(t domain.Tenant) TenantResponse {
	return TenantResponse{
		ID:            t.ID,
		Name:          t.Name,
		Email:         t.Email,
		Phone:         t.Phone,
		Status:        string(t.Status),
		PropertyID:    t.PropertyID,
		OwnerID:       t.OwnerID,
		Note:          t.Note,
		EntryDate:     t.EntryDate,
		PaymentMonths: t.PaymentMonths,
	}
}

type ListTenantsInput struct {
	OwnerID string `query:"ownerId" required:"false" doc:"Filter by owner"`
}

type ListTenantsOutput struct {
	Body []TenantResponse
}

type GetTenantInput struct {
	ID string `path:"id" doc:"Tenant ID"`
}

type GetTenantOutput struct {
	Body TenantResponse
}

type CreateTenantInput struct {
	Body struct {
		Name          string `json:"name" minLength:"1" maxLength:"255" doc:"Full name"`
		Email         string `json:"email,omitempty" doc:"Contact email"`
		Phone         string `json:"phone,omitempty" doc:"Contact phone"`
		Status        string `json:"status,omitempty" enum:"pending,active,late" doc:"Initial billing state"`
		PropertyID    string `json:"propertyId,omitempty" doc:"Property to occupy"`
		OwnerID       string `json:"ownerId,omitempty" doc:"Managing owner"`
		Note          string `json:"note,omitempty" doc:"Free-form note"`
		EntryDate     string `json:"entryDate,omitempty" doc:"Lease start (YYYY-MM-DD or DD/MM/YYYY)"`
		PaymentMonths int    `json:"paymentMonths,omitempty" minimum:"1" maximum:"12" doc:"Billing cycle in months"`
	}
}

type CreateTenantOutput struct {
	Body TenantResponse
}

type PatchTenantInput struct {
	ID   string         `path:"id" doc:"Tenant ID"`
	Body map[string]any `doc:"Fields to update"`
}

type PatchTenantOutput struct {
	Body TenantResponse
}

type DeleteTenantInput struct {
	ID string `path:"id" doc:"Tenant ID"`
}

type DeleteTenantOutput struct {
	Body struct {
		Deleted bool `json:"deleted"`
	}
}

func registerTenantRoutes(api huma.API, svc *app.TenantService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tenants",
		Method:      http.MethodGet,
		Path:        "/api/tenants",
		Summary:     "List tenants",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *ListTenantsInput) (*ListTenantsOutput, error) {
		tenants, err := svc.List(ctx, input.OwnerID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]TenantResponse, len(tenants))
		for i, t := range tenants {
			resp[i] = toTenantResponse(t)
		}
		return &ListTenantsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-tenant",
		Method:      http.MethodGet,
		Path:        "/api/tenants/{id}",
		Summary:     "Get a tenant by ID",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *GetTenantInput) (*GetTenantOutput, error) {
		tenant, err := svc.Get(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetTenantOutput{Body: toTenantResponse(tenant)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-tenant",
		Method:        http.MethodPost,
		Path:          "/api/tenants",
		Summary:       "Create a tenant",
		Tags:          []string{"Tenants"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateTenantInput) (*CreateTenantOutput, error) {
		tenant, err := svc.Create(ctx, domain.Tenant{
			Name:          input.Body.Name,
			Email:         input.Body.Email,
			Phone:         input.Body.Phone,
			Status:        domain.Status(input.Body.Status),
			PropertyID:    input.Body.PropertyID,
			OwnerID:       input.Body.OwnerID,
			Note:          input.Body.Note,
			EntryDate:     input.Body.EntryDate,
			PaymentMonths: input.Body.PaymentMonths,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateTenantOutput{Body: toTenantResponse(tenant)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-tenant",
		Method:      http.MethodPatch,
		Path:        "/api/tenants/{id}",
		Summary:     "Update tenant fields",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *PatchTenantInput) (*PatchTenantOutput, error) {
		tenant, err := svc.Update(ctx, input.ID, input.Body)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &PatchTenantOutput{Body: toTenantResponse(tenant)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-tenant",
		Method:      http.MethodDelete,
		Path:        "/api/tenants/{id}",
		Summary:     "Delete a tenant",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *DeleteTenantInput) (*DeleteTenantOutput, error) {
		if err := svc.Delete(ctx, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		out := &DeleteTenantOutput{}
		out.Body.Deleted = true
		return out, nil
	})
}

// --- Properties ---

// PropertyResponse is the API representation of a property.
type PropertyResponse struct {
	ID       string  `json:"id" doc:"Unique identifier"`
	Name     string  `json:"name" doc:"Display name"`
	Address  string  `json:"address,omitempty" doc:"Street address"`
	Status   string  `json:"status" doc:"Occupancy state (vacant, occupied)"`
	Type     string  `json:"type,omitempty" doc:"Unit type"`
	Bedrooms int     `json:"bedrooms" doc:"Bedroom count"`
	Rent     float64 `json:"rent" doc:"Monthly rent"`
	Charges  float64 `json:"charges" doc:"Monthly charges"`
	OwnerID  string  `json:"ownerId,omitempty" doc:"Managing owner"`
}

func toPropertyResponse(p domain.Property) PropertyResponse {
	return PropertyResponse{
		ID:       p.ID,
		Name:     p.Name,
		Address:  p.Address,
		Status:   string(p.Status),
		Type:     p.Type,
		Bedrooms: p.Bedrooms,
		Rent:     p.Rent,
		Charges:  p.Charges,
		OwnerID:  p.OwnerID,
	}
}

type ListPropertiesInput struct {
	OwnerID string `query:"ownerId" required:"false" doc:"Filter by owner"`
}

type ListPropertiesOutput struct {
	Body []PropertyResponse
}

type GetPropertyInput struct {
	ID string `path:"id" doc:"Property ID"`
}

type GetPropertyOutput struct {
	Body PropertyResponse
}

type CreatePropertyInput struct {
	Body struct {
		Name     string  `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Address  string  `json:"address,omitempty" doc:"Street address"`
		Type     string  `json:"type,omitempty" doc:"Unit type"`
		Bedrooms int     `json:"bedrooms,omitempty" minimum:"0" doc:"Bedroom count"`
		Rent     float64 `json:"rent,omitempty" minimum:"0" doc:"Monthly rent"`
		Charges  float64 `json:"charges,omitempty" minimum:"0" doc:"Monthly charges"`
		OwnerID  string  `json:"ownerId,omitempty" doc:"Managing owner"`
	}
}

type CreatePropertyOutput struct {
	Body PropertyResponse
}

type PatchPropertyInput struct {
	ID   string         `path:"id" doc:"Property ID"`
	Body map[string]any `doc:"Fields to update"`
}

type PatchPropertyOutput struct {
	Body PropertyResponse
}

type DeletePropertyInput struct {
	ID string `path:"id" doc:"Property ID"`
}

type DeletePropertyOutput struct {
	Body struct {
		Deleted bool `json:"deleted"`
	}
}

func registerPropertyRoutes(api huma.API, svc *app.PropertyService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-properties",
		Method:      http.MethodGet,
		Path:        "/api/properties",
		Summary:     "List properties",
		Tags:        []string{"Properties"},
	}, func(ctx context.Context, input *ListPropertiesInput) (*ListPropertiesOutput, error) {
		properties, err := svc.List(ctx, input.OwnerID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]PropertyResponse, len(properties))
		for i, p := range properties {
			resp[i] = toPropertyResponse(p)
		}
		return &ListPropertiesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-property",
		Method:      http.MethodGet,
		Path:        "/api/properties/{id}",
		Summary:     "Get a property by ID",
		Tags:        []string{"Properties"},
	}, func(ctx context.Context, input *GetPropertyInput) (*GetPropertyOutput, error) {
		property, err := svc.Get(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetPropertyOutput{Body: toPropertyResponse(property)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-property",
		Method:        http.MethodPost,
		Path:          "/api/properties",
		Summary:       "Create a property",
		Tags:          []string{"Properties"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreatePropertyInput) (*CreatePropertyOutput, error) {
		property, err := svc.Create(ctx, domain.Property{
			Name:     input.Body.Name,
			Address:  input.Body.Address,
			Type:     input.Body.Type,
			Bedrooms: input.Body.Bedrooms,
			Rent:     input.Body.Rent,
			Charges:  input.Body.Charges,
			OwnerID:  input.Body.OwnerID,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreatePropertyOutput{Body: toPropertyResponse(property)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-property",
		Method:      http.MethodPatch,
		Path:        "/api/properties/{id}",
		Summary:     "Update property fields",
		Tags:        []string{"Properties"},
	}, func(ctx context.Context, input *PatchPropertyInput) (*PatchPropertyOutput, error) {
		property, err := svc.Update(ctx, input.ID, input.Body)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &PatchPropertyOutput{Body: toPropertyResponse(property)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-property",
		Method:      http.MethodDelete,
		Path:        "/api/properties/{id}",
		Summary:     "Delete a property",
		Tags:        []string{"Properties"},
	}, func(ctx context.Context, input *DeletePropertyInput) (*DeletePropertyOutput, error) {
		if err := svc.Delete(ctx, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		out := &DeletePropertyOutput{}
		out.Body.Deleted = true
		return out, nil
	})
}

// --- Health ---

type HealthOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

func registerHealthRoute(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Liveness check",
		Tags:        []string{"System"},
	}, func(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
		out := &HealthOutput{}
		out.Body.Status = "ok"
		return out, nil
	})
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	switch {
	case errors.Is(err, domain.ErrTenantNotFound):
		return huma.Error404NotFound("tenant not found")
	case errors.Is(err, domain.ErrPropertyNotFound):
		return huma.Error404NotFound("property not found")
	case errors.Is(err, domain.ErrUserNotFound):
		return huma.Error404NotFound("user not found")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return huma.Error401Unauthorized("invalid credentials")
	case errors.Is(err, domain.ErrMailerNotConfigured):
		return huma.Error503ServiceUnavailable("mail delivery is not configured")
	case errors.Is(err, domain.ErrGatewayNotConfigured):
		return huma.Error503ServiceUnavailable("payment gateway is not configured")
	case errors.Is(err, domain.ErrRemindersDisabled):
		return huma.Error503ServiceUnavailable("reminders are disabled")
	}

	var invalidDate *domain.InvalidDateError
	if errors.As(err, &invalidDate) {
		return huma.Error422UnprocessableEntity(invalidDate.Error())
	}

	var conflict *domain.EmailConflictError
	if errors.As(err, &conflict) {
		return huma.Error409Conflict(conflict.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error422UnprocessableEntity(trErr.Error())
	}

	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return huma.Error400BadRequest(validation.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
