package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// TenantService manages the tenant collection and keeps property occupancy
// in step with tenant moves.
type TenantService struct {
	tenants    domain.TenantDirectory
	properties *PropertyService
}

// NewTenantService creates a tenant service over the directory.
func NewTenantService(tenants domain.TenantDirectory, properties *PropertyService) *TenantService {
	return &TenantService{tenants: tenants, properties: properties}
}

// List returns every tenant, optionally filtered by owner.
func (s *TenantService) List(ctx context.Context, ownerID string) ([]domain.Tenant, error) {
	tenants, err := s.tenants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}
	if ownerID == "" {
		return tenants, nil
	}
	filtered := make([]domain.Tenant, 0, len(tenants))
	for _, t := range tenants {
		if t.OwnerID == ownerID {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// Get fetches one tenant by ID.
func (s *TenantService) Get(ctx context.Context, id string) (domain.Tenant, error) {
	return s.tenants.Get(ctx, id)
}

// Create stores a new tenant. The entry date must parse, the billing cycle
// is clamped to [1,12], and a linked property is marked occupied. Occupancy
// failure does not roll back the tenant; the record is the source of truth.
func (s *TenantService) Create(ctx context.Context, tenant domain.Tenant) (domain.Tenant, error) {
	tenant.Name = strings.TrimSpace(tenant.Name)
	if tenant.Name == "" {
		return domain.Tenant{}, &domain.ValidationError{Message: "tenant name is required"}
	}
	if tenant.EntryDate != "" {
		if _, err := domain.NormalizeEntryDate(tenant.EntryDate); err != nil {
			return domain.Tenant{}, err
		}
	}
	tenant.PaymentMonths = domain.ClampCycle(tenant.PaymentMonths)
	if tenant.Status == "" {
		tenant.Status = domain.StatusActive
	}

	id, err := s.tenants.Create(ctx, tenant)
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("creating tenant: %w", err)
	}
	tenant.ID = id

	if tenant.PropertyID != "" {
		if err := s.properties.MarkOccupied(ctx, tenant.PropertyID); err != nil {
			slog.WarnContext(ctx, "marking property occupied failed",
				"tenant", tenant.ID, "property", tenant.PropertyID, "error", err)
		}
	}
	return tenant, nil
}

// Update applies a partial field update. A patched entry date must parse and
// a property move adjusts occupancy on both sides.
func (s *TenantService) Update(ctx context.Context, id string, fields map[string]any) (domain.Tenant, error) {
	current, err := s.tenants.Get(ctx, id)
	if err != nil {
		return domain.Tenant{}, err
	}

	// Ownership is assigned at creation and never reassigned through a patch.
	delete(fields, "ownerId")

	if raw, ok := fields["entryDate"].(string); ok && raw != "" {
		if _, err := domain.NormalizeEntryDate(raw); err != nil {
			return domain.Tenant{}, err
		}
	}
	if months, ok := fields["paymentMonths"]; ok {
		switch v := months.(type) {
		case int:
			fields["paymentMonths"] = domain.ClampCycle(v)
		case float64:
			fields["paymentMonths"] = domain.ClampCycle(int(v))
		}
	}

	newProperty, propertyMoved := fields["propertyId"].(string)
	propertyMoved = propertyMoved && newProperty != current.PropertyID

	if len(fields) > 0 {
		if err := s.tenants.Patch(ctx, id, fields); err != nil {
			return domain.Tenant{}, fmt.Errorf("updating tenant %s: %w", id, err)
		}
	}

	if propertyMoved {
		if current.PropertyID != "" {
			if err := s.properties.MarkVacant(ctx, current.PropertyID); err != nil {
				slog.WarnContext(ctx, "marking property vacant failed",
					"tenant", id, "property", current.PropertyID, "error", err)
			}
		}
		if newProperty != "" {
			if err := s.properties.MarkOccupied(ctx, newProperty); err != nil {
				slog.WarnContext(ctx, "marking property occupied failed",
					"tenant", id, "property", newProperty, "error", err)
			}
		}
	}

	return s.tenants.Get(ctx, id)
}

// Delete removes a tenant and releases their property.
func (s *TenantService) Delete(ctx context.Context, id string) error {
	tenant, err := s.tenants.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tenants.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting tenant %s: %w", id, err)
	}
	if tenant.PropertyID != "" {
		if err := s.properties.MarkVacant(ctx, tenant.PropertyID); err != nil {
			slog.WarnContext(ctx, "marking property vacant failed",
				"tenant", id, "property", tenant.PropertyID, "error", err)
		}
	}
	return nil
}
