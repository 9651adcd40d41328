package services

import (
	"context"
	"fmt"
	"time"

	"visitscheduler/internal/domain"
)

// ConflictDetector flags occurrences that collide with a prisoner's own
// commitments or with a non-associated prisoner's commitments.
type ConflictDetector struct {
	bookings        domain.BookingStore
	nonAssociations domain.NonAssociationDirectory
}

func NewConflictDetector(bookings domain.BookingStore, nonAssociations domain.NonAssociationDirectory) *ConflictDetector {
	return &ConflictDetector{bookings: bookings, nonAssociations: nonAssociations}
}

// ConflictSet is the precomputed conflict state for one prisoner over one date
// window: the exact slots the prisoner already holds, and the whole days
// blocked by non-associations.
type ConflictSet struct {
	ownSlots map[slotTime]bool
	// nonAssociationDays is keyed by calendar date: a counterpart commitment
	// on any slot that day blocks every slot that day.
	nonAssociationDays map[string]bool
}

type slotTime struct {
	Date  string
	Start domain.TimeOfDay
	End   domain.TimeOfDay
}

// For returns the conflicts flagged for the occurrence.
func (s *ConflictSet) For(occ *domain.SessionOccurrence) []domain.ConflictKind {
	if s == nil {
		return nil
	}
	var kinds []domain.ConflictKind
	key := slotTime{Date: occ.Date.Format(domain.DateFormat), Start: occ.Template.StartTime, End: occ.Template.EndTime}
	if s.ownSlots[key] {
		kinds = append(kinds, domain.ConflictDoubleBooking)
	}
	if s.nonAssociationDays[occ.Date.Format(domain.DateFormat)] {
		kinds = append(kinds, domain.ConflictNonAssociation)
	}
	return kinds
}

// ForPrisoner batch-fetches the prisoner's own commitments and those of every
// non-associated prisoner inside [from, to] and returns the resulting conflict
// state. The username is the caller continuing an in-progress booking: an
// application created by that user never conflicts with itself.
func (d *ConflictDetector) ForPrisoner(ctx context.Context, prisonCode, prisonerID, username string, from, to time.Time) (*ConflictSet, error) {
	set := &ConflictSet{
		ownSlots:           make(map[slotTime]bool),
		nonAssociationDays: make(map[string]bool),
	}

	own, err := d.bookings.ListForPrisoners(ctx, prisonCode, []string{prisonerID}, from, to)
	if err != nil {
		return nil, fmt.Errorf("list bookings for prisoner %s at %s: %w", prisonerID, prisonCode, err)
	}
	for _, rec := range own {
		if !rec.IsActiveCommitment() {
			continue
		}
		if rec.Kind == domain.BookingKindApplication && rec.CreatedBy == username && username != "" {
			continue
		}
		set.ownSlots[slotTime{Date: rec.Date.Format(domain.DateFormat), Start: rec.StartTime, End: rec.EndTime}] = true
	}

	links, err := d.nonAssociations.ListForPrisoner(ctx, prisonerID)
	if err != nil {
		return nil, fmt.Errorf("list non-associations for prisoner %s: %w", prisonerID, err)
	}
	if len(links) == 0 {
		return set, nil
	}

	linksByOther := make(map[string][]*domain.NonAssociationLink)
	var otherIDs []string
	for _, link := range links {
		if _, seen := linksByOther[link.OtherPrisonerID]; !seen {
			otherIDs = append(otherIDs, link.OtherPrisonerID)
		}
		linksByOther[link.OtherPrisonerID] = append(linksByOther[link.OtherPrisonerID], link)
	}

	counterpart, err := d.bookings.ListForPrisoners(ctx, prisonCode, otherIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("list non-association bookings for prisoner %s at %s: %w", prisonerID, prisonCode, err)
	}
	for _, rec := range counterpart {
		if !rec.IsActiveCommitment() {
			continue
		}
		for _, link := range linksByOther[rec.PrisonerID] {
			if link.ActiveOn(rec.Date) {
				set.nonAssociationDays[rec.Date.Format(domain.DateFormat)] = true
				break
			}
		}
	}
	return set, nil
}
