package domain

import (
	"context"
	"time"
)

// UserType identifies the kind of client requesting availability.
type UserType string

const (
	UserTypeStaff  UserType = "STAFF"
	UserTypePublic UserType = "PUBLIC"
	// UserTypeSystem exists on the wire but is never permitted for
	// availability queries; request validation rejects it.
	UserTypeSystem UserType = "SYSTEM"
)

// ClientConfig marks a client type as allowed (when active) to see and book a
// template's sessions.
type ClientConfig struct {
	UserType UserType
	Active   bool
}

// SessionTemplate is a recurrence rule describing a weekly, bi-weekly, or
// one-off visiting slot at a prison.
type SessionTemplate struct {
	Reference  string
	PrisonCode string
	Name       string
	VisitRoom  string

	// ValidFrom anchors the recurrence; for bi-weekly templates the week
	// parity is fixed relative to this date. ValidTo nil means open-ended.
	ValidFrom time.Time
	ValidTo   *time.Time

	DayOfWeek       time.Weekday
	StartTime       TimeOfDay
	EndTime         TimeOfDay
	WeeklyFrequency int

	OpenCapacity   int
	ClosedCapacity int
	// CapacityGroup pools this template's capacity with every other template
	// sharing the same non-empty group at the same prison and time window.
	CapacityGroup string

	Active       bool
	ExcludeDates []time.Time
	Clients      []ClientConfig

	LocationGroups  []RestrictionGroup[LocationPath]
	CategoryGroups  []RestrictionGroup[string]
	IncentiveGroups []RestrictionGroup[string]
}

// ExcludesDate reports whether date is legally blocked for this template.
func (t *SessionTemplate) ExcludesDate(date time.Time) bool {
	for _, d := range t.ExcludeDates {
		if SameDate(d, date) {
			return true
		}
	}
	return false
}

// AllowsClient reports whether the template carries an active config entry for
// the given client type.
func (t *SessionTemplate) AllowsClient(userType UserType) bool {
	for _, c := range t.Clients {
		if c.UserType == userType && c.Active {
			return true
		}
	}
	return false
}

// Default booking lead-time window applied when a prison has no per-client
// policy configured.
const (
	DefaultPolicyNoticeDaysMin = 2
	DefaultPolicyNoticeDaysMax = 28
)

// NoticeDays is the allowed booking lead-time window in days from today, both
// ends inclusive. Min greater than Max is a valid configuration meaning no
// date ever qualifies.
type NoticeDays struct {
	Min int
	Max int
}

// Prison holds the prison-level scheduling policy.
type Prison struct {
	Code         string
	Active       bool
	ExcludeDates []time.Time
	// PolicyNoticeDays is keyed by client type; absent entries fall back to
	// the defaults.
	PolicyNoticeDays map[UserType]NoticeDays
}

// NoticeDaysFor returns the booking lead-time window for the client type.
func (p *Prison) NoticeDaysFor(userType UserType) NoticeDays {
	if nd, ok := p.PolicyNoticeDays[userType]; ok {
		return nd
	}
	return NoticeDays{Min: DefaultPolicyNoticeDaysMin, Max: DefaultPolicyNoticeDaysMax}
}

// ExcludesDate reports whether date is blocked prison-wide.
func (p *Prison) ExcludesDate(date time.Time) bool {
	for _, d := range p.ExcludeDates {
		if SameDate(d, date) {
			return true
		}
	}
	return false
}

// TemplateStore fetches session templates.
type TemplateStore interface {
	// ListByPrison returns the active templates whose validity period
	// overlaps [from, to].
	ListByPrison(ctx context.Context, prisonCode string, from, to time.Time) ([]*SessionTemplate, error)
	// ListByCapacityGroup returns every active template in the capacity
	// group, including members the current query would not otherwise touch.
	ListByCapacityGroup(ctx context.Context, prisonCode, capacityGroup string) ([]*SessionTemplate, error)
}

// PrisonStore fetches prison scheduling policy.
type PrisonStore interface {
	GetByCode(ctx context.Context, code string) (*Prison, error)
}
