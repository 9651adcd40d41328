package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"visitscheduler/internal/domain"
)

type prisonRepository struct {
	DB *sql.DB
}

func NewPrisonRepository(db *sql.DB) domain.PrisonStore {
	return &prisonRepository{
		DB: db,
	}
}

func (r *prisonRepository) GetByCode(ctx context.Context, code string) (*domain.Prison, error) {
	query := `
		SELECT code, active
		FROM prisons
		WHERE code = $1
	`
	p := &domain.Prison{}
	err := r.DB.QueryRowContext(ctx, query, code).Scan(&p.Code, &p.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadNoticeDays(ctx, p); err != nil {
		return nil, err
	}
	if err := r.loadExcludeDates(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *prisonRepository) loadNoticeDays(ctx context.Context, p *domain.Prison) error {
	query := `
		SELECT user_type, min_days, max_days
		FROM prison_notice_days
		WHERE prison_code = $1
	`
	rows, err := r.DB.QueryContext(ctx, query, p.Code)
	if err != nil {
		return err
	}
	defer rows.Close()
	p.PolicyNoticeDays = make(map[domain.UserType]domain.NoticeDays)
	for rows.Next() {
		var userType string
		var nd domain.NoticeDays
		if err := rows.Scan(&userType, &nd.Min, &nd.Max); err != nil {
			return err
		}
		p.PolicyNoticeDays[domain.UserType(userType)] = nd
	}
	return rows.Err()
}

func (r *prisonRepository) loadExcludeDates(ctx context.Context, p *domain.Prison) error {
	query := `
		SELECT exclude_date
		FROM prison_exclude_dates
		WHERE prison_code = $1
	`
	rows, err := r.DB.QueryContext(ctx, query, p.Code)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return err
		}
		p.ExcludeDates = append(p.ExcludeDates, d)
	}
	return rows.Err()
}
