package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitscheduler/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weeklyTemplate(ref string, day time.Weekday, validFrom time.Time) *domain.SessionTemplate {
	return &domain.SessionTemplate{
		Reference:       ref,
		PrisonCode:      "MDI",
		DayOfWeek:       day,
		StartTime:       "10:00",
		EndTime:         "11:00",
		WeeklyFrequency: 1,
		OpenCapacity:    10,
		Active:          true,
		ValidFrom:       validFrom,
	}
}

func TestExpandTemplate_WeeklyMondaysInJanuary(t *testing.T) {
	// Five Mondays between 2024-01-01 and 2024-01-29 inclusive.
	tmpl := weeklyTemplate("t-1", time.Monday, date(2024, 1, 1))
	validTo := date(2024, 1, 29)
	tmpl.ValidTo = &validTo

	occurrences := ExpandTemplate(tmpl, nil, date(2024, 1, 1), date(2024, 1, 31))
	require.Len(t, occurrences, 5)
	for i, occ := range occurrences {
		assert.Equal(t, date(2024, 1, 1+7*i), occ.Date)
		assert.Equal(t, time.Monday, occ.Date.Weekday())
		assert.Equal(t, time.Date(2024, 1, 1+7*i, 10, 0, 0, 0, time.UTC), occ.Start)
		assert.Equal(t, time.Date(2024, 1, 1+7*i, 11, 0, 0, 0, time.UTC), occ.End)
	}
}

func TestExpandTemplate_WeeklyStepIsSevenDays(t *testing.T) {
	tmpl := weeklyTemplate("t-1", time.Wednesday, date(2024, 2, 7))
	occurrences := ExpandTemplate(tmpl, nil, date(2024, 2, 1), date(2024, 3, 31))
	require.NotEmpty(t, occurrences)
	for i := 1; i < len(occurrences); i++ {
		assert.Equal(t, occurrences[i-1].Date.AddDate(0, 0, 7), occurrences[i].Date)
	}
}

func TestExpandTemplate_BiWeeklyParityAnchoredToValidFrom(t *testing.T) {
	// 2024-01-01 is a Monday; occurrences land on 01-01, 01-15, 01-29, ...
	tmpl := weeklyTemplate("t-1", time.Monday, date(2024, 1, 1))
	tmpl.WeeklyFrequency = 2

	tests := []struct {
		name     string
		from, to time.Time
		want     []time.Time
	}{
		{
			name: "window at anchor",
			from: date(2024, 1, 1), to: date(2024, 1, 31),
			want: []time.Time{date(2024, 1, 1), date(2024, 1, 15), date(2024, 1, 29)},
		},
		{
			name: "window starting on an off week keeps the same absolute dates",
			from: date(2024, 1, 8), to: date(2024, 1, 31),
			want: []time.Time{date(2024, 1, 15), date(2024, 1, 29)},
		},
		{
			name: "window months later still on anchor parity",
			from: date(2024, 3, 1), to: date(2024, 3, 31),
			want: []time.Time{date(2024, 3, 11), date(2024, 3, 25)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occurrences := ExpandTemplate(tmpl, nil, tt.from, tt.to)
			var got []time.Time
			for _, occ := range occurrences {
				got = append(got, occ.Date)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandTemplate_FirstOccurrenceIsNextMatchingWeekday(t *testing.T) {
	// ValidFrom 2024-01-03 is a Wednesday; the first Friday at or after it is 01-05.
	tmpl := weeklyTemplate("t-1", time.Friday, date(2024, 1, 3))
	occurrences := ExpandTemplate(tmpl, nil, date(2024, 1, 1), date(2024, 1, 12))
	require.Len(t, occurrences, 2)
	assert.Equal(t, date(2024, 1, 5), occurrences[0].Date)
	assert.Equal(t, date(2024, 1, 12), occurrences[1].Date)
}

func TestExpandTemplate_OneOffCollapsesToSingleOccurrence(t *testing.T) {
	// validFrom == validTo with a bi-weekly frequency still yields exactly one date.
	tmpl := weeklyTemplate("t-1", time.Monday, date(2024, 1, 15))
	tmpl.WeeklyFrequency = 2
	validTo := date(2024, 1, 15)
	tmpl.ValidTo = &validTo

	occurrences := ExpandTemplate(tmpl, nil, date(2024, 1, 1), date(2024, 12, 31))
	require.Len(t, occurrences, 1)
	assert.Equal(t, date(2024, 1, 15), occurrences[0].Date)
}

func TestExpandTemplate_SkipsExcludedDates(t *testing.T) {
	tmpl := weeklyTemplate("t-1", time.Monday, date(2024, 1, 1))
	tmpl.ExcludeDates = []time.Time{date(2024, 1, 8)}
	prison := &domain.Prison{
		Code:         "MDI",
		Active:       true,
		ExcludeDates: []time.Time{date(2024, 1, 22)},
	}

	occurrences := ExpandTemplate(tmpl, prison, date(2024, 1, 1), date(2024, 1, 29))
	var got []time.Time
	for _, occ := range occurrences {
		got = append(got, occ.Date)
	}
	assert.Equal(t, []time.Time{date(2024, 1, 1), date(2024, 1, 15), date(2024, 1, 29)}, got)
}

func TestExpandTemplate_WindowOutsideValidity(t *testing.T) {
	tmpl := weeklyTemplate("t-1", time.Monday, date(2024, 6, 1))
	validTo := date(2024, 6, 30)
	tmpl.ValidTo = &validTo

	assert.Empty(t, ExpandTemplate(tmpl, nil, date(2024, 1, 1), date(2024, 5, 31)))
	assert.Empty(t, ExpandTemplate(tmpl, nil, date(2024, 7, 1), date(2024, 7, 31)))
}

func TestExpandTemplate_InactiveTemplate(t *testing.T) {
	tmpl := weeklyTemplate("t-1", time.Monday, date(2024, 1, 1))
	tmpl.Active = false
	assert.Empty(t, ExpandTemplate(tmpl, nil, date(2024, 1, 1), date(2024, 1, 31)))
}
