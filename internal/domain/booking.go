package domain

import (
	"context"
	"time"
)

// Restriction is the capacity channel a visit consumes.
type Restriction string

const (
	RestrictionOpen    Restriction = "OPEN"
	RestrictionClosed  Restriction = "CLOSED"
	RestrictionUnknown Restriction = "UNKNOWN"
)

// BookingKind distinguishes a booked visit from an in-progress application.
type BookingKind string

const (
	BookingKindVisit       BookingKind = "VISIT"
	BookingKindApplication BookingKind = "APPLICATION"
)

// VisitStatus is the lifecycle state of a visit record.
type VisitStatus string

const (
	VisitStatusReserved  VisitStatus = "RESERVED"
	VisitStatusChanging  VisitStatus = "CHANGING"
	VisitStatusBooked    VisitStatus = "BOOKED"
	VisitStatusCancelled VisitStatus = "CANCELLED"
)

// BookingRecord is a visit or application as seen by the availability engine.
// Records are created by the booking flow and are read-only here.
type BookingRecord struct {
	Reference         string
	Kind              BookingKind
	PrisonerID        string
	PrisonCode        string
	TemplateReference string
	Date              time.Time
	StartTime         TimeOfDay
	EndTime           TimeOfDay
	Restriction       Restriction

	// Visit fields.
	Status VisitStatus

	// Application fields.
	ReservedSlot bool
	Completed    bool
	CreatedBy    string
}

// HoldsCapacity reports whether the record occupies a seat when counting slot
// usage. BOOKED and RESERVED visits hold capacity; CANCELLED and CHANGING never
// do. An application holds capacity only while in progress with a reserved
// slot. Once completed its seat is counted through the resulting visit, and
// without a reserved slot it is speculative.
func (b *BookingRecord) HoldsCapacity() bool {
	switch b.Kind {
	case BookingKindVisit:
		return b.Status == VisitStatusBooked || b.Status == VisitStatusReserved
	case BookingKindApplication:
		return !b.Completed && b.ReservedSlot
	}
	return false
}

// IsActiveCommitment reports whether the record blocks other scheduling for
// conflict purposes: a BOOKED visit or an in-progress application.
func (b *BookingRecord) IsActiveCommitment() bool {
	switch b.Kind {
	case BookingKindVisit:
		return b.Status == VisitStatusBooked
	case BookingKindApplication:
		return !b.Completed
	}
	return false
}

// SameSlot reports whether the record occupies exactly the given slot.
func (b *BookingRecord) SameSlot(date time.Time, start, end TimeOfDay) bool {
	return SameDate(b.Date, date) && b.StartTime == start && b.EndTime == end
}

// BookingStore fetches bookings and applications. Each availability query
// reads through a single store call per concern so counts come from one
// consistent snapshot.
type BookingStore interface {
	// ListByPrison returns all visit and application records at the prison
	// with a slot date inside [from, to].
	ListByPrison(ctx context.Context, prisonCode string, from, to time.Time) ([]*BookingRecord, error)
	// ListForPrisoners restricts ListByPrison to the given prisoner IDs.
	ListForPrisoners(ctx context.Context, prisonCode string, prisonerIDs []string, from, to time.Time) ([]*BookingRecord, error)
}
