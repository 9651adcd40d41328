package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"visitscheduler/internal/domain"
)

func TestPrisonRepository_GetByCode(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		code       string
		mock       func(mock sqlmock.Sqlmock)
		want       *domain.Prison
		wantErr    bool
		isNotFound bool
	}{
		{
			name: "success",
			code: "MDI",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT code, active`).
					WithArgs("MDI").
					WillReturnRows(sqlmock.NewRows([]string{"code", "active"}).AddRow("MDI", true))
				mock.ExpectQuery(`SELECT user_type, min_days, max_days`).
					WithArgs("MDI").
					WillReturnRows(sqlmock.NewRows([]string{"user_type", "min_days", "max_days"}).
						AddRow("STAFF", 0, 28).
						AddRow("PUBLIC", 2, 28))
				mock.ExpectQuery(`SELECT exclude_date`).
					WithArgs("MDI").
					WillReturnRows(sqlmock.NewRows([]string{"exclude_date"}).
						AddRow(time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)))
			},
			want: &domain.Prison{
				Code:         "MDI",
				Active:       true,
				ExcludeDates: []time.Time{time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)},
				PolicyNoticeDays: map[domain.UserType]domain.NoticeDays{
					domain.UserTypeStaff:  {Min: 0, Max: 28},
					domain.UserTypePublic: {Min: 2, Max: 28},
				},
			},
		},
		{
			name: "no policy rows keeps defaults",
			code: "LEI",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT code, active`).
					WithArgs("LEI").
					WillReturnRows(sqlmock.NewRows([]string{"code", "active"}).AddRow("LEI", false))
				mock.ExpectQuery(`SELECT user_type, min_days, max_days`).
					WithArgs("LEI").
					WillReturnRows(sqlmock.NewRows([]string{"user_type", "min_days", "max_days"}))
				mock.ExpectQuery(`SELECT exclude_date`).
					WithArgs("LEI").
					WillReturnRows(sqlmock.NewRows([]string{"exclude_date"}))
			},
			want: &domain.Prison{
				Code:             "LEI",
				Active:           false,
				PolicyNoticeDays: map[domain.UserType]domain.NoticeDays{},
			},
		},
		{
			name: "not found",
			code: "XXX",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT code, active`).
					WithArgs("XXX").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr:    true,
			isNotFound: true,
		},
		{
			name: "db error",
			code: "MDI",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT code, active`).
					WithArgs("MDI").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewPrisonRepository(db)
			got, err := repo.GetByCode(ctx, tt.code)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, got)
				if tt.isNotFound {
					require.True(t, errors.Is(err, domain.ErrNotFound))
				}
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPrisonRepository_DefaultsApplyWhenPolicyMissing(t *testing.T) {
	p := &domain.Prison{Code: "LEI", PolicyNoticeDays: map[domain.UserType]domain.NoticeDays{}}
	nd := p.NoticeDaysFor(domain.UserTypePublic)
	require.Equal(t, domain.NoticeDays{Min: domain.DefaultPolicyNoticeDaysMin, Max: domain.DefaultPolicyNoticeDaysMax}, nd)
}
