package domain

// Status represents a lifecycle state of a tenant or property record.
type Status string

const (
	// Tenant statuses.
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusLate    Status = "late"

	// Property statuses.
	StatusVacant   Status = "vacant"
	StatusOccupied Status = "occupied"
)

// Event represents an action that triggers a state transition.
type Event string

const (
	EventMarkLate      Event = "mark_late"
	EventRecordPayment Event = "record_payment"
	EventOccupy        Event = "occupy"
	EventVacate        Event = "vacate"
)

// Transition defines a valid state change: an event moves a record from Src to Dst.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// TenantTransitions defines the billing-status changes the reconciler owns.
// Pending tenants have never been billed and are deliberately absent: only
// active ↔ late is automated.
var TenantTransitions = []Transition{
	{Event: EventMarkLate, Src: StatusActive, Dst: StatusLate},
	{Event: EventRecordPayment, Src: StatusLate, Dst: StatusActive},
}

// PropertyTransitions defines occupancy changes driven by tenant moves.
var PropertyTransitions = []Transition{
	{Event: EventOccupy, Src: StatusVacant, Dst: StatusOccupied},
	{Event: EventVacate, Src: StatusOccupied, Dst: StatusVacant},
}

// Tenant is a renter record as stored in the tenant directory. EntryDate is
// kept in its raw stored form; NormalizeEntryDate turns it into a calendar
// date when billing math needs one.
type Tenant struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	Status        Status
	PropertyID    string
	OwnerID       string
	Note          string
	EntryDate     string
	PaymentMonths int
}

// Property is a rentable unit joined to tenants by PropertyID.
type Property struct {
	ID       string
	Name     string
	Address  string
	Status   Status
	Type     string
	Bedrooms int
	Rent     float64
	Charges  float64
	OwnerID  string
}
