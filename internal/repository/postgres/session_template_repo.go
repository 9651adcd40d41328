package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"visitscheduler/internal/domain"
)

type sessionTemplateRepository struct {
	DB *sql.DB
}

func NewSessionTemplateRepository(db *sql.DB) domain.TemplateStore {
	return &sessionTemplateRepository{
		DB: db,
	}
}

func (r *sessionTemplateRepository) ListByPrison(ctx context.Context, prisonCode string, from, to time.Time) ([]*domain.SessionTemplate, error) {
	query := `
		SELECT reference, prison_code, name, visit_room, valid_from, valid_to,
		       day_of_week, start_time, end_time, weekly_frequency,
		       open_capacity, closed_capacity, capacity_group, active
		FROM session_templates
		WHERE prison_code = $1
		  AND active = TRUE
		  AND valid_from <= $3
		  AND (valid_to IS NULL OR valid_to >= $2)
		ORDER BY reference
	`
	rows, err := r.DB.QueryContext(ctx, query, prisonCode, from, to)
	if err != nil {
		return nil, err
	}
	templates, err := scanTemplates(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadAssociations(ctx, templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *sessionTemplateRepository) ListByCapacityGroup(ctx context.Context, prisonCode, capacityGroup string) ([]*domain.SessionTemplate, error) {
	query := `
		SELECT reference, prison_code, name, visit_room, valid_from, valid_to,
		       day_of_week, start_time, end_time, weekly_frequency,
		       open_capacity, closed_capacity, capacity_group, active
		FROM session_templates
		WHERE prison_code = $1
		  AND capacity_group = $2
		  AND active = TRUE
		ORDER BY reference
	`
	rows, err := r.DB.QueryContext(ctx, query, prisonCode, capacityGroup)
	if err != nil {
		return nil, err
	}
	templates, err := scanTemplates(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadAssociations(ctx, templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func scanTemplates(rows *sql.Rows) ([]*domain.SessionTemplate, error) {
	defer rows.Close()
	templates := make([]*domain.SessionTemplate, 0)
	for rows.Next() {
		t := &domain.SessionTemplate{}
		var validToNull sql.NullTime
		var capacityGroupNull sql.NullString
		var dayOfWeek int
		var start, end string
		if err := rows.Scan(
			&t.Reference, &t.PrisonCode, &t.Name, &t.VisitRoom, &t.ValidFrom, &validToNull,
			&dayOfWeek, &start, &end, &t.WeeklyFrequency,
			&t.OpenCapacity, &t.ClosedCapacity, &capacityGroupNull, &t.Active,
		); err != nil {
			return nil, err
		}
		if validToNull.Valid {
			t.ValidTo = &validToNull.Time
		}
		if capacityGroupNull.Valid {
			t.CapacityGroup = capacityGroupNull.String
		}
		t.DayOfWeek = time.Weekday(dayOfWeek)
		t.StartTime = domain.TimeOfDay(start)
		t.EndTime = domain.TimeOfDay(end)
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// loadAssociations fills exclude dates, client configs, and the three kinds of
// restriction groups for the given templates in one query per concern.
func (r *sessionTemplateRepository) loadAssociations(ctx context.Context, templates []*domain.SessionTemplate) error {
	if len(templates) == 0 {
		return nil
	}
	byRef := make(map[string]*domain.SessionTemplate, len(templates))
	refs := make([]string, 0, len(templates))
	for _, t := range templates {
		byRef[t.Reference] = t
		refs = append(refs, t.Reference)
	}
	if err := r.loadExcludeDates(ctx, byRef, refs); err != nil {
		return err
	}
	if err := r.loadClients(ctx, byRef, refs); err != nil {
		return err
	}
	if err := r.loadLocationGroups(ctx, byRef, refs); err != nil {
		return err
	}
	if err := r.loadCodeGroups(ctx, byRef, refs, "session_category_groups", "session_category_group_codes", func(t *domain.SessionTemplate, g domain.RestrictionGroup[string]) {
		t.CategoryGroups = append(t.CategoryGroups, g)
	}); err != nil {
		return err
	}
	return r.loadCodeGroups(ctx, byRef, refs, "session_incentive_groups", "session_incentive_group_codes", func(t *domain.SessionTemplate, g domain.RestrictionGroup[string]) {
		t.IncentiveGroups = append(t.IncentiveGroups, g)
	})
}

func (r *sessionTemplateRepository) loadExcludeDates(ctx context.Context, byRef map[string]*domain.SessionTemplate, refs []string) error {
	query := `
		SELECT template_reference, exclude_date
		FROM session_template_exclude_dates
		WHERE template_reference = ANY($1)
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(refs))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var ref string
		var d time.Time
		if err := rows.Scan(&ref, &d); err != nil {
			return err
		}
		if t, ok := byRef[ref]; ok {
			t.ExcludeDates = append(t.ExcludeDates, d)
		}
	}
	return rows.Err()
}

func (r *sessionTemplateRepository) loadClients(ctx context.Context, byRef map[string]*domain.SessionTemplate, refs []string) error {
	query := `
		SELECT template_reference, user_type, active
		FROM session_template_clients
		WHERE template_reference = ANY($1)
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(refs))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var ref, userType string
		var active bool
		if err := rows.Scan(&ref, &userType, &active); err != nil {
			return err
		}
		if t, ok := byRef[ref]; ok {
			t.Clients = append(t.Clients, domain.ClientConfig{UserType: domain.UserType(userType), Active: active})
		}
	}
	return rows.Err()
}

func (r *sessionTemplateRepository) loadLocationGroups(ctx context.Context, byRef map[string]*domain.SessionTemplate, refs []string) error {
	query := `
		SELECT g.template_reference, g.id, g.name, g.mode,
		       p.level_one, p.level_two, p.level_three, p.level_four
		FROM session_location_groups g
		JOIN session_location_group_paths p ON p.group_id = g.id
		WHERE g.template_reference = ANY($1)
		ORDER BY g.template_reference, g.id
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(refs))
	if err != nil {
		return err
	}
	defer rows.Close()

	var currentID int64
	var current *domain.RestrictionGroup[domain.LocationPath]
	flush := func(ref string) {
		if current == nil {
			return
		}
		if t, ok := byRef[ref]; ok {
			t.LocationGroups = append(t.LocationGroups, *current)
		}
		current = nil
	}
	var currentRef string
	for rows.Next() {
		var ref, name, mode string
		var id int64
		var levels [domain.LocationLevels]sql.NullString
		if err := rows.Scan(&ref, &id, &name, &mode, &levels[0], &levels[1], &levels[2], &levels[3]); err != nil {
			return err
		}
		if current == nil || id != currentID {
			flush(currentRef)
			current = &domain.RestrictionGroup[domain.LocationPath]{Name: name, Mode: domain.GroupMode(mode)}
			currentID = id
			currentRef = ref
		}
		var segments []string
		for _, l := range levels {
			if !l.Valid || l.String == "" {
				break
			}
			segments = append(segments, l.String)
		}
		current.Members = append(current.Members, domain.NewLocationPath(segments...))
	}
	flush(currentRef)
	return rows.Err()
}

func (r *sessionTemplateRepository) loadCodeGroups(ctx context.Context, byRef map[string]*domain.SessionTemplate, refs []string, groupTable, codeTable string, attach func(*domain.SessionTemplate, domain.RestrictionGroup[string])) error {
	query := `
		SELECT g.template_reference, g.id, g.name, g.mode, c.code
		FROM ` + groupTable + ` g
		JOIN ` + codeTable + ` c ON c.group_id = g.id
		WHERE g.template_reference = ANY($1)
		ORDER BY g.template_reference, g.id
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(refs))
	if err != nil {
		return err
	}
	defer rows.Close()

	var currentID int64
	var current *domain.RestrictionGroup[string]
	var currentRef string
	flush := func() {
		if current == nil {
			return
		}
		if t, ok := byRef[currentRef]; ok {
			attach(t, *current)
		}
		current = nil
	}
	for rows.Next() {
		var ref, name, mode, code string
		var id int64
		if err := rows.Scan(&ref, &id, &name, &mode, &code); err != nil {
			return err
		}
		if current == nil || id != currentID {
			flush()
			current = &domain.RestrictionGroup[string]{Name: name, Mode: domain.GroupMode(mode)}
			currentID = id
			currentRef = ref
		}
		current.Members = append(current.Members, code)
	}
	flush()
	return rows.Err()
}
