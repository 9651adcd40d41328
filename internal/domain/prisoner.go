package domain

import (
	"context"
	"time"
)

// PrisonerDetail is the prisoner profile resolved from the prisoner directory.
type PrisonerDetail struct {
	PrisonerID string
	PrisonCode string
	// Category is the security category code; empty when unknown.
	Category string
	// IncentiveLevel is the current incentive level code; empty when unknown.
	IncentiveLevel string
	// CellLocation is the current housing location, e.g. "A-1-100-1", or a
	// transitional code such as "COURT".
	CellLocation string
	// LastPermanentLocation is the last known permanent cell, used when
	// CellLocation is transitional.
	LastPermanentLocation string
}

// PrisonerDirectory resolves prisoner profiles. Unknown prisoners yield
// ErrNotFound.
type PrisonerDirectory interface {
	GetPrisoner(ctx context.Context, prisonerID string) (*PrisonerDetail, error)
}

// NonAssociationLink records that two prisoners must not share visiting slots,
// optionally bounded by an effective window.
type NonAssociationLink struct {
	PrisonerID      string
	OtherPrisonerID string
	EffectiveFrom   time.Time
	ExpiresOn       *time.Time
}

// ActiveOn reports whether the link is in force on the given date.
func (l *NonAssociationLink) ActiveOn(date time.Time) bool {
	if !l.EffectiveFrom.IsZero() && DateOnly(date).Before(DateOnly(l.EffectiveFrom)) {
		return false
	}
	if l.ExpiresOn != nil && DateOnly(date).After(DateOnly(*l.ExpiresOn)) {
		return false
	}
	return true
}

// NonAssociationDirectory lists a prisoner's non-associations. Absence of a
// record is an empty slice, not an error; implementations normalize "no data"
// responses and only fail for genuine upstream problems.
type NonAssociationDirectory interface {
	ListForPrisoner(ctx context.Context, prisonerID string) ([]*NonAssociationLink, error)
}
