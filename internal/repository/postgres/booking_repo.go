package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"visitscheduler/internal/domain"
)

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) domain.BookingStore {
	return &bookingRepository{
		DB: db,
	}
}

func (r *bookingRepository) ListByPrison(ctx context.Context, prisonCode string, from, to time.Time) ([]*domain.BookingRecord, error) {
	visits, err := r.listVisits(ctx, prisonCode, nil, from, to)
	if err != nil {
		return nil, err
	}
	applications, err := r.listApplications(ctx, prisonCode, nil, from, to)
	if err != nil {
		return nil, err
	}
	return append(visits, applications...), nil
}

func (r *bookingRepository) ListForPrisoners(ctx context.Context, prisonCode string, prisonerIDs []string, from, to time.Time) ([]*domain.BookingRecord, error) {
	if len(prisonerIDs) == 0 {
		return []*domain.BookingRecord{}, nil
	}
	visits, err := r.listVisits(ctx, prisonCode, prisonerIDs, from, to)
	if err != nil {
		return nil, err
	}
	applications, err := r.listApplications(ctx, prisonCode, prisonerIDs, from, to)
	if err != nil {
		return nil, err
	}
	return append(visits, applications...), nil
}

func (r *bookingRepository) listVisits(ctx context.Context, prisonCode string, prisonerIDs []string, from, to time.Time) ([]*domain.BookingRecord, error) {
	query := `
		SELECT reference, prisoner_id, prison_code, template_reference,
		       visit_date, start_time, end_time, restriction, status
		FROM visits
		WHERE prison_code = $1
		  AND visit_date BETWEEN $2 AND $3
	`
	args := []interface{}{prisonCode, from, to}
	if prisonerIDs != nil {
		query += ` AND prisoner_id = ANY($4)`
		args = append(args, pq.Array(prisonerIDs))
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := make([]*domain.BookingRecord, 0)
	for rows.Next() {
		b := &domain.BookingRecord{Kind: domain.BookingKindVisit}
		var start, end, restriction, status string
		if err := rows.Scan(
			&b.Reference, &b.PrisonerID, &b.PrisonCode, &b.TemplateReference,
			&b.Date, &start, &end, &restriction, &status,
		); err != nil {
			return nil, err
		}
		b.StartTime = domain.TimeOfDay(start)
		b.EndTime = domain.TimeOfDay(end)
		b.Restriction = domain.Restriction(restriction)
		b.Status = domain.VisitStatus(status)
		records = append(records, b)
	}
	return records, rows.Err()
}

func (r *bookingRepository) listApplications(ctx context.Context, prisonCode string, prisonerIDs []string, from, to time.Time) ([]*domain.BookingRecord, error) {
	query := `
		SELECT reference, prisoner_id, prison_code, template_reference,
		       slot_date, start_time, end_time, restriction,
		       reserved_slot, completed, created_by
		FROM applications
		WHERE prison_code = $1
		  AND slot_date BETWEEN $2 AND $3
	`
	args := []interface{}{prisonCode, from, to}
	if prisonerIDs != nil {
		query += ` AND prisoner_id = ANY($4)`
		args = append(args, pq.Array(prisonerIDs))
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := make([]*domain.BookingRecord, 0)
	for rows.Next() {
		b := &domain.BookingRecord{Kind: domain.BookingKindApplication}
		var start, end, restriction string
		if err := rows.Scan(
			&b.Reference, &b.PrisonerID, &b.PrisonCode, &b.TemplateReference,
			&b.Date, &start, &end, &restriction,
			&b.ReservedSlot, &b.Completed, &b.CreatedBy,
		); err != nil {
			return nil, err
		}
		b.StartTime = domain.TimeOfDay(start)
		b.EndTime = domain.TimeOfDay(end)
		b.Restriction = domain.Restriction(restriction)
		records = append(records, b)
	}
	return records, rows.Err()
}
