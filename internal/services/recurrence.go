package services

import (
	"time"

	"visitscheduler/internal/domain"
)

// ExpandTemplate materializes the template's occurrences inside the closed
// date window [from, to], in ascending date order.
//
// Candidates start at the template's first matching weekday at or after
// ValidFrom and step by 7 days times the weekly frequency, so a bi-weekly
// template always lands on the same absolute weeks regardless of the query
// window. Dates excluded at the template or prison level are skipped.
func ExpandTemplate(tmpl *domain.SessionTemplate, prison *domain.Prison, from, to time.Time) []*domain.SessionOccurrence {
	if tmpl == nil || !tmpl.Active {
		return nil
	}
	freq := tmpl.WeeklyFrequency
	if freq < 1 {
		freq = 1
	}

	from = domain.DateOnly(from)
	to = domain.DateOnly(to)
	validFrom := domain.DateOnly(tmpl.ValidFrom)

	start := from
	if validFrom.After(start) {
		start = validFrom
	}
	end := to
	if tmpl.ValidTo != nil {
		if validTo := domain.DateOnly(*tmpl.ValidTo); validTo.Before(end) {
			end = validTo
		}
	}
	if end.Before(start) {
		return nil
	}

	// The recurrence anchor is ValidFrom's first occurrence of DayOfWeek,
	// which may be later than ValidFrom itself.
	anchor := nextWeekdayOnOrAfter(validFrom, tmpl.DayOfWeek)
	step := 7 * freq

	first := anchor
	if anchor.Before(start) {
		days := domain.DaysBetween(anchor, start)
		steps := (days + step - 1) / step
		first = anchor.AddDate(0, 0, steps*step)
	}

	var occurrences []*domain.SessionOccurrence
	for date := first; !date.After(end); date = date.AddDate(0, 0, step) {
		if tmpl.ExcludesDate(date) || (prison != nil && prison.ExcludesDate(date)) {
			continue
		}
		occurrences = append(occurrences, &domain.SessionOccurrence{
			Template:   tmpl,
			PrisonCode: tmpl.PrisonCode,
			Date:       date,
			Start:      tmpl.StartTime.On(date),
			End:        tmpl.EndTime.On(date),
		})
	}
	return occurrences
}

func nextWeekdayOnOrAfter(date time.Time, weekday time.Weekday) time.Time {
	offset := (int(weekday) - int(date.Weekday()) + 7) % 7
	return date.AddDate(0, 0, offset)
}
