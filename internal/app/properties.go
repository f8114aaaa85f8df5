package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// PropertyService manages the property collection and its occupancy state.
type PropertyService struct {
	properties domain.PropertyDirectory
	validator  domain.TransitionValidator
}

// NewPropertyService creates a property service over the directory.
func NewPropertyService(properties domain.PropertyDirectory, validator domain.TransitionValidator) *PropertyService {
	return &PropertyService{properties: properties, validator: validator}
}

// List returns every property, optionally filtered by owner.
func (s *PropertyService) List(ctx context.Context, ownerID string) ([]domain.Property, error) {
	properties, err := s.properties.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	if ownerID == "" {
		return properties, nil
	}
	filtered := make([]domain.Property, 0, len(properties))
	for _, p := range properties {
		if p.OwnerID == ownerID {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Get fetches one property by ID.
func (s *PropertyService) Get(ctx context.Context, id string) (domain.Property, error) {
	return s.properties.Get(ctx, id)
}

// Create stores a new property. New units start vacant; occupancy only
// changes through tenant moves.
func (s *PropertyService) Create(ctx context.Context, property domain.Property) (domain.Property, error) {
	property.Name = strings.TrimSpace(property.Name)
	if property.Name == "" {
		return domain.Property{}, &domain.ValidationError{Message: "property name is required"}
	}
	if property.Rent < 0 {
		return domain.Property{}, &domain.ValidationError{Message: "rent cannot be negative"}
	}
	property.Status = domain.StatusVacant

	id, err := s.properties.Create(ctx, property)
	if err != nil {
		return domain.Property{}, fmt.Errorf("creating property: %w", err)
	}
	property.ID = id
	return property, nil
}

// Update applies a partial field update. Status is not patchable here;
// occupancy moves go through MarkOccupied and MarkVacant.
func (s *PropertyService) Update(ctx context.Context, id string, fields map[string]any) (domain.Property, error) {
	if _, err := s.properties.Get(ctx, id); err != nil {
		return domain.Property{}, err
	}
	delete(fields, "status")
	if len(fields) > 0 {
		if err := s.properties.Patch(ctx, id, fields); err != nil {
			return domain.Property{}, fmt.Errorf("updating property %s: %w", id, err)
		}
	}
	return s.properties.Get(ctx, id)
}

// Delete removes a property record.
func (s *PropertyService) Delete(ctx context.Context, id string) error {
	if _, err := s.properties.Get(ctx, id); err != nil {
		return err
	}
	return s.properties.Delete(ctx, id)
}

// MarkOccupied moves a property to occupied. Already-occupied units are a
// no-op so tenant moves stay idempotent.
func (s *PropertyService) MarkOccupied(ctx context.Context, id string) error {
	return s.applyOccupancy(ctx, id, domain.EventOccupy)
}

// MarkVacant moves a property back to vacant. Already-vacant units are a no-op.
func (s *PropertyService) MarkVacant(ctx context.Context, id string) error {
	return s.applyOccupancy(ctx, id, domain.EventVacate)
}

func (s *PropertyService) applyOccupancy(ctx context.Context, id string, event domain.Event) error {
	property, err := s.properties.Get(ctx, id)
	if err != nil {
		return err
	}

	next, err := s.validator.Apply(ctx, property.Status, event)
	if err != nil {
		var te *domain.TransitionError
		if errors.As(err, &te) {
			return nil
		}
		return err
	}

	if err := s.properties.SetStatus(ctx, id, next); err != nil {
		return fmt.Errorf("updating property %s status: %w", id, err)
	}
	return nil
}
