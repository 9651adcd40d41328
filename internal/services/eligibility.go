package services

import (
	"time"

	"visitscheduler/internal/domain"
)

// WithinNoticeWindow reports whether date falls inside the booking lead-time
// window [today+Min, today+Max], both ends inclusive. A policy with Min greater
// than Max admits no date at all.
func WithinNoticeWindow(date, today time.Time, notice domain.NoticeDays) bool {
	if notice.Min > notice.Max {
		return false
	}
	today = domain.DateOnly(today)
	date = domain.DateOnly(date)
	earliest := today.AddDate(0, 0, notice.Min)
	latest := today.AddDate(0, 0, notice.Max)
	return !date.Before(earliest) && !date.After(latest)
}

// NoticeWindow intersects the requested window [from, to] with the booking
// lead-time window. ok is false when the intersection is empty.
func NoticeWindow(from, to, today time.Time, notice domain.NoticeDays) (start, end time.Time, ok bool) {
	if notice.Min > notice.Max {
		return time.Time{}, time.Time{}, false
	}
	today = domain.DateOnly(today)
	start = domain.DateOnly(from)
	end = domain.DateOnly(to)
	if earliest := today.AddDate(0, 0, notice.Min); earliest.After(start) {
		start = earliest
	}
	if latest := today.AddDate(0, 0, notice.Max); latest.Before(end) {
		end = latest
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// EligiblePrisoner applies the template's category, incentive-level, and
// location restrictions to the prisoner. A nil prisoner (query without a
// prisoner) passes: the restrictions are prisoner-level and have nothing to
// reject.
func EligiblePrisoner(tmpl *domain.SessionTemplate, prisoner *domain.PrisonerDetail) bool {
	if prisoner == nil {
		return true
	}
	if !domain.AdmitsCode(tmpl.CategoryGroups, prisoner.Category) {
		return false
	}
	if !domain.AdmitsCode(tmpl.IncentiveGroups, prisoner.IncentiveLevel) {
		return false
	}
	return AdmittedByLocation(tmpl.LocationGroups, CandidateLocations(prisoner))
}
