package domain

import (
	"context"
	"time"
)

// SessionOccurrence is one concrete date/time instance of a session template,
// materialized on demand and never stored.
type SessionOccurrence struct {
	Template   *SessionTemplate
	PrisonCode string
	Date       time.Time
	// Start and End are absolute timestamps (Date combined with the
	// template's start/end wall-clock times).
	Start time.Time
	End   time.Time
}

// ConflictKind flags why an occurrence collides with a prisoner's existing
// commitments.
type ConflictKind string

const (
	// ConflictDoubleBooking marks a slot the prisoner already holds through a
	// booked visit or somebody else's in-progress application.
	ConflictDoubleBooking ConflictKind = "DOUBLE_BOOKING_OR_RESERVATION"
	// ConflictNonAssociation marks every slot on a day where a non-associated
	// prisoner has a commitment at the same prison.
	ConflictNonAssociation ConflictKind = "NON_ASSOCIATION"
)

// SessionCapacity is a pair of open/closed seat counts.
type SessionCapacity struct {
	Open   int `json:"open"`
	Closed int `json:"closed"`
}

// Of returns the count for the given restriction; UNKNOWN maps to zero.
func (c SessionCapacity) Of(restriction Restriction) int {
	switch restriction {
	case RestrictionOpen:
		return c.Open
	case RestrictionClosed:
		return c.Closed
	}
	return 0
}

// VisitSession is a schedulable occurrence annotated with pooled capacity,
// current usage, and conflicts against the requesting prisoner.
type VisitSession struct {
	SessionTemplateReference string
	PrisonCode               string
	VisitRoom                string
	Date                     time.Time
	StartTime                TimeOfDay
	EndTime                  TimeOfDay
	StartTimestamp           time.Time
	EndTimestamp             time.Time
	// Capacity is the template's capacity, summed across its capacity pool.
	Capacity SessionCapacity
	// Counted is the number of seats in use, aggregated across the pool.
	Counted   SessionCapacity
	Conflicts []ConflictKind
}

// Remaining returns the free seats for the restriction; never negative.
func (s *VisitSession) Remaining(restriction Restriction) int {
	rem := s.Capacity.Of(restriction) - s.Counted.Of(restriction)
	if rem < 0 {
		return 0
	}
	return rem
}

// HasConflict reports whether any conflict was flagged.
func (s *VisitSession) HasConflict() bool { return len(s.Conflicts) > 0 }

// SessionQuery is the input to the availability queries. PrisonerID is
// optional for ListSessions; Username identifies the caller for the
// own-application conflict rule.
type SessionQuery struct {
	PrisonCode string
	FromDate   time.Time
	ToDate     time.Time
	PrisonerID string
	ClientType UserType
	Username   string
}

// AvailabilityService answers which visit sessions are schedulable.
type AvailabilityService interface {
	// ListSessions returns every schedulable occurrence in the window,
	// annotated with conflicts (possibly empty), ordered by date then start
	// time then template reference.
	ListSessions(ctx context.Context, q SessionQuery) ([]*VisitSession, error)
	// ListAvailableSessions additionally drops occurrences with conflicts or
	// no remaining capacity for the restriction. PrisonerID is required.
	ListAvailableSessions(ctx context.Context, q SessionQuery, restriction Restriction) ([]*VisitSession, error)
	// SessionCapacity sums open/closed capacity over the templates (pooled
	// templates counted once per pool) holding a session at exactly the given
	// slot.
	SessionCapacity(ctx context.Context, prisonCode string, date time.Time, start, end TimeOfDay) (*SessionCapacity, error)
}
