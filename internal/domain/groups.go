package domain

// GroupMode marks a restriction group as granting or withholding eligibility.
type GroupMode string

const (
	GroupModeInclude GroupMode = "INCLUDE"
	GroupModeExclude GroupMode = "EXCLUDE"
)

// RestrictionGroup pairs a set of values with an include or exclude mode.
// Category, incentive-level, and location restrictions on a session template
// all share this shape; only the member type and match rule differ.
type RestrictionGroup[T any] struct {
	Name    string
	Mode    GroupMode
	Members []T
}

// MatchesAny reports whether match holds for at least one member.
func (g RestrictionGroup[T]) MatchesAny(match func(T) bool) bool {
	for _, m := range g.Members {
		if match(m) {
			return true
		}
	}
	return false
}

// Admits applies include/exclude semantics across a template's groups of one
// kind: a matching EXCLUDE group rejects outright, and when any INCLUDE groups
// are configured at least one of them must match. No groups means no restriction.
func Admits[T any](groups []RestrictionGroup[T], match func(T) bool) bool {
	hasInclude := false
	included := false
	for _, g := range groups {
		matched := g.MatchesAny(match)
		switch g.Mode {
		case GroupModeExclude:
			if matched {
				return false
			}
		case GroupModeInclude:
			hasInclude = true
			if matched {
				included = true
			}
		}
	}
	return !hasInclude || included
}

// AdmitsCode is Admits specialized to exact code membership, as used by the
// category and incentive-level filters. An empty code (unknown category or
// incentive level) is distinct from every configured code: it never matches a
// member, so exclude groups admit it and include groups reject it.
func AdmitsCode(groups []RestrictionGroup[string], code string) bool {
	return Admits(groups, func(member string) bool { return member == code })
}
