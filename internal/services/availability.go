package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"time"

	"visitscheduler/internal/domain"
)

// Clock supplies the "today" anchor for booking-window checks; injected so
// tests can pin it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// prisonCodeRegex matches a prison code: 2-6 uppercase letters or digits.
var prisonCodeRegex = regexp.MustCompile(`^[A-Z0-9]{2,6}$`)

type availabilityService struct {
	templates      domain.TemplateStore
	prisons        domain.PrisonStore
	bookings       domain.BookingStore
	prisoners      domain.PrisonerDirectory
	pools          *PoolResolver
	conflicts      *ConflictDetector
	clock          Clock
	contextTimeout time.Duration
	logger         *slog.Logger
}

// NewAvailabilityService wires the availability engine over its collaborator
// stores and directories.
func NewAvailabilityService(
	templates domain.TemplateStore,
	prisons domain.PrisonStore,
	bookings domain.BookingStore,
	prisoners domain.PrisonerDirectory,
	nonAssociations domain.NonAssociationDirectory,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AvailabilityService {
	return &availabilityService{
		templates:      templates,
		prisons:        prisons,
		bookings:       bookings,
		prisoners:      prisoners,
		pools:          NewPoolResolver(templates),
		conflicts:      NewConflictDetector(bookings, nonAssociations),
		clock:          systemClock{},
		contextTimeout: timeout,
		logger:         logger,
	}
}

func (s *availabilityService) ListSessions(ctx context.Context, q domain.SessionQuery) ([]*domain.VisitSession, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.collectSessions(ctx, q)
}

func (s *availabilityService) ListAvailableSessions(ctx context.Context, q domain.SessionQuery, restriction domain.Restriction) ([]*domain.VisitSession, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	if q.PrisonerID == "" {
		return nil, fmt.Errorf("%w: prisoner id is required", domain.ErrInvalidInput)
	}
	if restriction != domain.RestrictionOpen && restriction != domain.RestrictionClosed {
		return nil, fmt.Errorf("%w: restriction %q is not bookable", domain.ErrInvalidInput, restriction)
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	sessions, err := s.collectSessions(ctx, q)
	if err != nil {
		return nil, err
	}
	available := make([]*domain.VisitSession, 0, len(sessions))
	for _, session := range sessions {
		if session.HasConflict() || session.Remaining(restriction) == 0 {
			continue
		}
		available = append(available, session)
	}
	return available, nil
}

// collectSessions runs the full pipeline: expand, filter, count, flag.
func (s *availabilityService) collectSessions(ctx context.Context, q domain.SessionQuery) ([]*domain.VisitSession, error) {
	prison, err := s.prisons.GetByCode(ctx, q.PrisonCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("prison %s: %w", q.PrisonCode, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get prison %s: %w", q.PrisonCode, err)
	}
	if !prison.Active {
		return []*domain.VisitSession{}, nil
	}

	today := domain.DateOnly(s.clock.Now())
	from, to, ok := NoticeWindow(q.FromDate, q.ToDate, today, prison.NoticeDaysFor(q.ClientType))
	if !ok {
		return []*domain.VisitSession{}, nil
	}

	var prisoner *domain.PrisonerDetail
	if q.PrisonerID != "" {
		prisoner, err = s.prisoners.GetPrisoner(ctx, q.PrisonerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("prisoner %s: %w", q.PrisonerID, domain.ErrNotFound)
			}
			return nil, fmt.Errorf("resolve prisoner %s: %w", q.PrisonerID, err)
		}
		if prisoner.PrisonCode != q.PrisonCode {
			return nil, fmt.Errorf("prisoner %s is at %s, not %s: %w", q.PrisonerID, prisoner.PrisonCode, q.PrisonCode, domain.ErrPrisonMismatch)
		}
	}

	templates, err := s.templates.ListByPrison(ctx, prison.Code, from, to)
	if err != nil {
		return nil, fmt.Errorf("list templates for %s: %w", prison.Code, err)
	}

	var expanded []*domain.SessionOccurrence
	var usedTemplates []*domain.SessionTemplate
	for _, tmpl := range templates {
		if !tmpl.AllowsClient(q.ClientType) {
			continue
		}
		if !EligiblePrisoner(tmpl, prisoner) {
			continue
		}
		occurrences := ExpandTemplate(tmpl, prison, from, to)
		if len(occurrences) == 0 {
			continue
		}
		expanded = append(expanded, occurrences...)
		usedTemplates = append(usedTemplates, tmpl)
	}
	if len(expanded) == 0 {
		return []*domain.VisitSession{}, nil
	}

	pools, err := s.pools.Resolve(ctx, prison.Code, usedTemplates)
	if err != nil {
		return nil, err
	}

	// One booking read per query keeps every occurrence on the same snapshot.
	records, err := s.bookings.ListByPrison(ctx, prison.Code, from, to)
	if err != nil {
		return nil, fmt.Errorf("list bookings for %s: %w", prison.Code, err)
	}
	counts := CountBookings(records)

	var conflictSet *ConflictSet
	if q.PrisonerID != "" {
		conflictSet, err = s.conflicts.ForPrisoner(ctx, prison.Code, q.PrisonerID, q.Username, from, to)
		if err != nil {
			return nil, err
		}
	}

	sessions := make([]*domain.VisitSession, 0, len(expanded))
	for _, occ := range expanded {
		pool := pools[occ.Template.Reference]
		sessions = append(sessions, &domain.VisitSession{
			SessionTemplateReference: occ.Template.Reference,
			PrisonCode:               occ.PrisonCode,
			VisitRoom:                occ.Template.VisitRoom,
			Date:                     occ.Date,
			StartTime:                occ.Template.StartTime,
			EndTime:                  occ.Template.EndTime,
			StartTimestamp:           occ.Start,
			EndTimestamp:             occ.End,
			Capacity:                 pool.Capacity,
			Counted:                  counts.CountedFor(pool, occ),
			Conflicts:                conflictSet.For(occ),
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.SessionTemplateReference < b.SessionTemplateReference
	})

	s.logger.DebugContext(ctx, "sessions collected",
		"prison", prison.Code,
		"prisoner", q.PrisonerID,
		"client", q.ClientType,
		"from", from.Format(domain.DateFormat),
		"to", to.Format(domain.DateFormat),
		"templates", len(usedTemplates),
		"sessions", len(sessions),
	)
	return sessions, nil
}

func (s *availabilityService) SessionCapacity(ctx context.Context, prisonCode string, date time.Time, start, end domain.TimeOfDay) (*domain.SessionCapacity, error) {
	if !prisonCodeRegex.MatchString(prisonCode) {
		return nil, fmt.Errorf("%w: prison code %q", domain.ErrInvalidInput, prisonCode)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: session date is required", domain.ErrInvalidInput)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: session start %s must precede end %s", domain.ErrInvalidInput, start, end)
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	prison, err := s.prisons.GetByCode(ctx, prisonCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("prison %s: %w", prisonCode, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get prison %s: %w", prisonCode, err)
	}
	if !prison.Active {
		return &domain.SessionCapacity{}, nil
	}

	date = domain.DateOnly(date)
	templates, err := s.templates.ListByPrison(ctx, prisonCode, date, date)
	if err != nil {
		return nil, fmt.Errorf("list templates for %s: %w", prisonCode, err)
	}

	var holding []*domain.SessionTemplate
	for _, tmpl := range templates {
		if tmpl.StartTime != start || tmpl.EndTime != end {
			continue
		}
		if len(ExpandTemplate(tmpl, prison, date, date)) == 0 {
			continue
		}
		holding = append(holding, tmpl)
	}
	if len(holding) == 0 {
		return &domain.SessionCapacity{}, nil
	}

	pools, err := s.pools.Resolve(ctx, prisonCode, holding)
	if err != nil {
		return nil, err
	}

	// Each pool contributes once, however many member templates hold the slot.
	total := &domain.SessionCapacity{}
	seen := make(map[string]bool)
	for _, tmpl := range holding {
		pool := pools[tmpl.Reference]
		if seen[pool.Key] {
			continue
		}
		seen[pool.Key] = true
		total.Open += pool.Capacity.Open
		total.Closed += pool.Capacity.Closed
	}
	return total, nil
}

func validateQuery(q domain.SessionQuery) error {
	if !prisonCodeRegex.MatchString(q.PrisonCode) {
		return fmt.Errorf("%w: prison code %q", domain.ErrInvalidInput, q.PrisonCode)
	}
	if q.FromDate.IsZero() || q.ToDate.IsZero() {
		return fmt.Errorf("%w: date window is required", domain.ErrInvalidInput)
	}
	if q.ToDate.Before(q.FromDate) {
		return fmt.Errorf("%w: date window %s to %s is inverted", domain.ErrInvalidInput,
			q.FromDate.Format(domain.DateFormat), q.ToDate.Format(domain.DateFormat))
	}
	switch q.ClientType {
	case domain.UserTypeStaff, domain.UserTypePublic:
		return nil
	default:
		return fmt.Errorf("%w: client type %q not permitted for availability queries", domain.ErrInvalidInput, q.ClientType)
	}
}
