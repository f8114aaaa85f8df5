package firebase

import (
	"context"
	"fmt"
	"sort"

	"firebase.google.com/go/v4/db"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Compile-time checks against the directory ports.
var (
	_ domain.TenantDirectory   = (*TenantDirectory)(nil)
	_ domain.PropertyDirectory = (*PropertyDirectory)(nil)
)

const (
	tenantCollection   = "locataires"
	propertyCollection = "proprietes"
)

// tenantRecord is the stored shape of a tenant. Field names are the wire
// format and must not change; existing deployments depend on them.
type tenantRecord struct {
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Status        string `json:"status,omitempty"`
	PropertyID    string `json:"propertyId,omitempty"`
	OwnerID       string `json:"ownerId,omitempty"`
	Note          string `json:"note,omitempty"`
	EntryDate     string `json:"entryDate,omitempty"`
	PaymentMonths int    `json:"paymentMonths,omitempty"`
}

type propertyRecord struct {
	Name     string  `json:"name"`
	Address  string  `json:"address,omitempty"`
	Status   string  `json:"status,omitempty"`
	Type     string  `json:"type,omitempty"`
	Bedrooms int     `json:"bedrooms,omitempty"`
	Rent     float64 `json:"rent,omitempty"`
	Charges  float64 `json:"charges,omitempty"`
	OwnerID  string  `json:"ownerId,omitempty"`
}

// TenantDirectory stores tenants in the locataires collection.
type TenantDirectory struct {
	ref          *db.Ref
	defaultOwner string
}

// NewTenantDirectory creates a tenant directory over the database client.
// defaultOwner fills records written before owners were tracked.
func NewTenantDirectory(client *db.Client, defaultOwner string) *TenantDirectory {
	return &TenantDirectory{ref: client.NewRef(tenantCollection), defaultOwner: defaultOwner}
}

// List returns every tenant, ordered by record key so pagination upstream
// stays stable. Missing statuses default to pending, missing cycles to 1.
func (d *TenantDirectory) List(ctx context.Context) ([]domain.Tenant, error) {
	var snapshot map[string]tenantRecord
	if err := d.ref.Get(ctx, &snapshot); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", tenantCollection, err)
	}

	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tenants := make([]domain.Tenant, 0, len(keys))
	for _, k := range keys {
		tenants = append(tenants, d.toTenant(k, snapshot[k]))
	}
	return tenants, nil
}

// Get fetches one tenant by key.
func (d *TenantDirectory) Get(ctx context.Context, id string) (domain.Tenant, error) {
	var rec *tenantRecord
	if err := d.ref.Child(id).Get(ctx, &rec); err != nil {
		return domain.Tenant{}, fmt.Errorf("fetching tenant %s: %w", id, err)
	}
	if rec == nil {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return d.toTenant(id, *rec), nil
}

// Create pushes a new tenant and returns its generated key.
func (d *TenantDirectory) Create(ctx context.Context, tenant domain.Tenant) (string, error) {
	ref, err := d.ref.Push(ctx, fromTenant(tenant))
	if err != nil {
		return "", fmt.Errorf("creating tenant: %w", err)
	}
	return ref.Key, nil
}

// Patch applies a partial field update to one tenant.
func (d *TenantDirectory) Patch(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if err := d.ref.Child(id).Update(ctx, fields); err != nil {
		return fmt.Errorf("patching tenant %s: %w", id, err)
	}
	return nil
}

// SetStatus patches only the status field.
func (d *TenantDirectory) SetStatus(ctx context.Context, id string, status domain.Status) error {
	return d.Patch(ctx, id, map[string]any{"status": string(status)})
}

// Delete removes the tenant record.
func (d *TenantDirectory) Delete(ctx context.Context, id string) error {
	if err := d.ref.Child(id).Delete(ctx); err != nil {
		return fmt.Errorf("deleting tenant %s: %w", id, err)
	}
	return nil
}

func (d *TenantDirectory) toTenant(id string, rec tenantRecord) domain.Tenant {
	status := domain.Status(rec.Status)
	if status == "" {
		status = domain.StatusPending
	}
	owner := rec.OwnerID
	if owner == "" {
		owner = d.defaultOwner
	}
	months := rec.PaymentMonths
	if months == 0 {
		months = 1
	}
	return domain.Tenant{
		ID:            id,
		Name:          rec.Name,
		Email:         rec.Email,
		Phone:         rec.Phone,
		Status:        status,
		PropertyID:    rec.PropertyID,
		OwnerID:       owner,
		Note:          rec.Note,
		EntryDate:     rec.EntryDate,
		PaymentMonths: months,
	}
}

func fromTenant(t domain.Tenant) tenantRecord {
	return tenantRecord{
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

// PropertyDirectory stores properties in the proprietes collection.
type PropertyDirectory struct {
	ref          *db.Ref
	defaultOwner string
}

// NewPropertyDirectory creates a property directory over the database client.
func NewPropertyDirectory(client *db.Client, defaultOwner string) *PropertyDirectory {
	return &PropertyDirectory{ref: client.NewRef(propertyCollection), defaultOwner: defaultOwner}
}

// List returns every property ordered by record key.
func (d *PropertyDirectory) List(ctx context.Context) ([]domain.Property, error) {
	var snapshot map[string]propertyRecord
	if err := d.ref.Get(ctx, &snapshot); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", propertyCollection, err)
	}

	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	properties := make([]domain.Property, 0, len(keys))
	for _, k := range keys {
		properties = append(properties, d.toProperty(k, snapshot[k]))
	}
	return properties, nil
}

// Get fetches one property by key.
func (d *PropertyDirectory) Get(ctx context.Context, id string) (domain.Property, error) {
	var rec *propertyRecord
	if err := d.ref.Child(id).Get(ctx, &rec); err != nil {
		return domain.Property{}, fmt.Errorf("fetching property %s: %w", id, err)
	}
	if rec == nil {
		return domain.Property{}, domain.ErrPropertyNotFound
	}
	return d.toProperty(id, *rec), nil
}

// Create pushes a new property and returns its generated key.
func (d *PropertyDirectory) Create(ctx context.Context, property domain.Property) (string, error) {
	ref, err := d.ref.Push(ctx, fromProperty(property))
	if err != nil {
		return "", fmt.Errorf("creating property: %w", err)
	}
	return ref.Key, nil
}

// Patch applies a partial field update to one property.
func (d *PropertyDirectory) Patch(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if err := d.ref.Child(id).Update(ctx, fields); err != nil {
		return fmt.Errorf("patching property %s: %w", id, err)
	}
	return nil
}

// SetStatus patches only the status field.
func (d *PropertyDirectory) SetStatus(ctx context.Context, id string, status domain.Status) error {
	return d.Patch(ctx, id, map[string]any{"status": string(status)})
}

// Delete removes the property record.
func (d *PropertyDirectory) Delete(ctx context.Context, id string) error {
	if err := d.ref.Child(id).Delete(ctx); err != nil {
		return fmt.Errorf("deleting property %s: %w", id, err)
	}
	return nil
}

func (d *PropertyDirectory) toProperty(id string, rec propertyRecord) domain.Property {
	status := domain.Status(rec.Status)
	if status == "" {
		status = domain.StatusVacant
	}
	owner := rec.OwnerID
	if owner == "" {
		owner = d.defaultOwner
	}
	return domain.Property{
		ID:       id,
		Name:     rec.Name,
		Address:  rec.Address,
		Status:   status,
		Type:     rec.Type,
		Bedrooms: rec.Bedrooms,
		Rent:     rec.Rent,
		Charges:  rec.Charges,
		OwnerID:  owner,
	}
}

func fromProperty(p domain.Property) propertyRecord {
	return propertyRecord{
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
