package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitscheduler/internal/domain"
)

func ownVisit(prisonerID string, day time.Time, status domain.VisitStatus) *domain.BookingRecord {
	return &domain.BookingRecord{
		Kind:              domain.BookingKindVisit,
		PrisonerID:        prisonerID,
		PrisonCode:        "MDI",
		TemplateReference: "t-1",
		Date:              day,
		StartTime:         "10:00",
		EndTime:           "11:00",
		Restriction:       domain.RestrictionOpen,
		Status:            status,
	}
}

func application(prisonerID, createdBy string, day time.Time, completed bool) *domain.BookingRecord {
	return &domain.BookingRecord{
		Kind:              domain.BookingKindApplication,
		PrisonerID:        prisonerID,
		PrisonCode:        "MDI",
		TemplateReference: "t-1",
		Date:              day,
		StartTime:         "10:00",
		EndTime:           "11:00",
		Restriction:       domain.RestrictionOpen,
		ReservedSlot:      true,
		Completed:         completed,
		CreatedBy:         createdBy,
	}
}

func TestConflictDetector_OwnCommitments(t *testing.T) {
	day := date(2024, 1, 15)
	tmpl := weeklyTemplate("t-1", time.Monday, date(2024, 1, 1))
	occ := occurrenceOf(tmpl, day)

	tests := []struct {
		name     string
		records  []*domain.BookingRecord
		conflict bool
	}{
		{"booked visit on the slot conflicts", []*domain.BookingRecord{ownVisit("A1234BC", day, domain.VisitStatusBooked)}, true},
		{"cancelled visit does not conflict", []*domain.BookingRecord{ownVisit("A1234BC", day, domain.VisitStatusCancelled)}, false},
		{"changing visit does not conflict", []*domain.BookingRecord{ownVisit("A1234BC", day, domain.VisitStatusChanging)}, false},
		{"booked visit on another day does not conflict", []*domain.BookingRecord{ownVisit("A1234BC", date(2024, 1, 8), domain.VisitStatusBooked)}, false},
		{"another user's in-progress application conflicts", []*domain.BookingRecord{application("A1234BC", "other-user", day, false)}, true},
		{"own in-progress application is the attempt being continued", []*domain.BookingRecord{application("A1234BC", "test-user", day, false)}, false},
		{"completed application does not conflict", []*domain.BookingRecord{application("A1234BC", "other-user", day, true)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeBookingStore{byPrisoner: map[string][]*domain.BookingRecord{"A1234BC": tt.records}}
			detector := NewConflictDetector(store, &fakeNonAssociationDirectory{})

			set, err := detector.ForPrisoner(context.Background(), "MDI", "A1234BC", "test-user", date(2024, 1, 1), date(2024, 1, 31))
			require.NoError(t, err)

			conflicts := set.For(occ)
			if tt.conflict {
				assert.Equal(t, []domain.ConflictKind{domain.ConflictDoubleBooking}, conflicts)
			} else {
				assert.Empty(t, conflicts)
			}
		})
	}
}

func TestConflictDetector_NonAssociationBlocksWholeDay(t *testing.T) {
	day := date(2024, 1, 15)
	// The counterpart's visit is at 14:00; every slot that day is blocked.
	counterpart := &domain.BookingRecord{
		Kind:              domain.BookingKindVisit,
		PrisonerID:        "B9999ZZ",
		PrisonCode:        "MDI",
		TemplateReference: "t-9",
		Date:              day,
		StartTime:         "14:00",
		EndTime:           "15:00",
		Restriction:       domain.RestrictionOpen,
		Status:            domain.VisitStatusBooked,
	}
	store := &fakeBookingStore{byPrisoner: map[string][]*domain.BookingRecord{"B9999ZZ": {counterpart}}}
	directory := &fakeNonAssociationDirectory{links: map[string][]*domain.NonAssociationLink{
		"A1234BC": {{PrisonerID: "A1234BC", OtherPrisonerID: "B9999ZZ", EffectiveFrom: date(2023, 1, 1)}},
	}}
	detector := NewConflictDetector(store, directory)

	set, err := detector.ForPrisoner(context.Background(), "MDI", "A1234BC", "test-user", date(2024, 1, 1), date(2024, 1, 31))
	require.NoError(t, err)

	morning := occurrenceOf(weeklyTemplate("t-1", time.Monday, date(2024, 1, 1)), day)
	assert.Equal(t, []domain.ConflictKind{domain.ConflictNonAssociation}, set.For(morning))

	otherDay := occurrenceOf(weeklyTemplate("t-1", time.Monday, date(2024, 1, 1)), date(2024, 1, 22))
	assert.Empty(t, set.For(otherDay))
}

func TestConflictDetector_ExpiredLinkDoesNotConflict(t *testing.T) {
	day := date(2024, 1, 15)
	expired := date(2024, 1, 10)
	counterpart := ownVisit("B9999ZZ", day, domain.VisitStatusBooked)
	counterpart.PrisonerID = "B9999ZZ"

	store := &fakeBookingStore{byPrisoner: map[string][]*domain.BookingRecord{"B9999ZZ": {counterpart}}}
	directory := &fakeNonAssociationDirectory{links: map[string][]*domain.NonAssociationLink{
		"A1234BC": {{PrisonerID: "A1234BC", OtherPrisonerID: "B9999ZZ", EffectiveFrom: date(2023, 1, 1), ExpiresOn: &expired}},
	}}
	detector := NewConflictDetector(store, directory)

	set, err := detector.ForPrisoner(context.Background(), "MDI", "A1234BC", "test-user", date(2024, 1, 1), date(2024, 1, 31))
	require.NoError(t, err)
	assert.Empty(t, set.For(occurrenceOf(weeklyTemplate("t-1", time.Monday, date(2024, 1, 1)), day)))
}

func TestConflictDetector_NoLinksSkipsCounterpartLookup(t *testing.T) {
	store := &fakeBookingStore{}
	detector := NewConflictDetector(store, &fakeNonAssociationDirectory{})

	set, err := detector.ForPrisoner(context.Background(), "MDI", "A1234BC", "test-user", date(2024, 1, 1), date(2024, 1, 31))
	require.NoError(t, err)
	require.NotNil(t, set)
	// Only the prisoner's own bookings were fetched.
	assert.Equal(t, [][]string{{"A1234BC"}}, store.forPrisonersCalls)
}

func TestConflictDetector_DirectoryFailurePropagates(t *testing.T) {
	directory := &fakeNonAssociationDirectory{err: fmt.Errorf("gateway timeout: %w", domain.ErrUpstreamUnavailable)}
	detector := NewConflictDetector(&fakeBookingStore{}, directory)

	_, err := detector.ForPrisoner(context.Background(), "MDI", "A1234BC", "test-user", date(2024, 1, 1), date(2024, 1, 31))
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
