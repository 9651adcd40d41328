package services

import "visitscheduler/internal/domain"

// CandidateLocations resolves the prisoner's effective locations in matching
// order. A prisoner in a permanent cell yields that single path. A prisoner at
// a transitional location (court, temporary absence, reception, cell-swap,
// early-release holding) yields the transitional code first, so templates
// targeting it take precedence, then the last known permanent cell. A missing
// or malformed location yields nothing, which means templates without location
// restrictions still match while restricted ones do not.
func CandidateLocations(prisoner *domain.PrisonerDetail) []domain.LocationPath {
	if prisoner == nil {
		return nil
	}
	current, ok := domain.ParseLocationPath(prisoner.CellLocation)
	if !ok {
		return nil
	}
	if !domain.IsTransitionalLocation(prisoner.CellLocation) {
		return []domain.LocationPath{current}
	}
	candidates := []domain.LocationPath{current}
	if permanent, ok := domain.ParseLocationPath(prisoner.LastPermanentLocation); ok && !domain.IsTransitionalLocation(prisoner.LastPermanentLocation) {
		candidates = append(candidates, permanent)
	}
	return candidates
}

// AdmittedByLocation evaluates the template's location groups against the
// candidate locations in order and settles on the first candidate any group
// path covers. A candidate no group knows about falls through to the next, so
// a prisoner at a temporary-absence location is matched against
// temporary-absence templates before the permanent-cell fallback applies.
func AdmittedByLocation(groups []domain.RestrictionGroup[domain.LocationPath], candidates []domain.LocationPath) bool {
	if len(groups) == 0 {
		return true
	}
	for _, candidate := range candidates {
		if anyGroupCovers(groups, candidate) {
			return domain.Admits(groups, func(p domain.LocationPath) bool { return p.Matches(candidate) })
		}
	}
	// No candidate is referenced by any group: include groups fail to match,
	// exclude groups pass.
	return domain.Admits(groups, func(domain.LocationPath) bool { return false })
}

func anyGroupCovers(groups []domain.RestrictionGroup[domain.LocationPath], candidate domain.LocationPath) bool {
	for _, g := range groups {
		if g.MatchesAny(func(p domain.LocationPath) bool { return p.Matches(candidate) }) {
			return true
		}
	}
	return false
}
