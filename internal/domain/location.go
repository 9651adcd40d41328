package domain

import "strings"

// LocationLevels is the maximum depth of a housing location path
// (wing, landing, cell block, cell).
const LocationLevels = 4

// LocationPath is a fixed-width tuple of housing location level codes. Unset
// levels are empty strings; a path with only its leading levels set matches any
// deeper path sharing that prefix.
type LocationPath struct {
	Levels [LocationLevels]string
}

// NewLocationPath builds a path from the given level codes, most significant
// first. Codes beyond LocationLevels are ignored.
func NewLocationPath(levels ...string) LocationPath {
	var p LocationPath
	for i, l := range levels {
		if i >= LocationLevels {
			break
		}
		p.Levels[i] = l
	}
	return p
}

// ParseLocationPath parses a dash-separated housing location such as
// "A-1-100-1". It returns false for an empty or malformed string (blank
// segments); segments beyond the fourth level are ignored, since anything
// deeper is still within the four-level prefix.
func ParseLocationPath(s string) (LocationPath, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LocationPath{}, false
	}
	var p LocationPath
	for i, seg := range strings.Split(s, "-") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return LocationPath{}, false
		}
		if i >= LocationLevels {
			break
		}
		p.Levels[i] = seg
	}
	return p, true
}

// IsZero reports whether no level is set.
func (p LocationPath) IsZero() bool {
	return p.Levels[0] == ""
}

// Matches reports whether p, as a stored group entry, covers the prisoner's
// path: every set level of p must equal the corresponding prisoner level. The
// comparison stops at p's first unset level, so "A" covers all of wing A and
// "A-1-100" covers every cell under that landing.
func (p LocationPath) Matches(prisoner LocationPath) bool {
	for i, level := range p.Levels {
		if level == "" {
			return true
		}
		if level != prisoner.Levels[i] {
			return false
		}
	}
	return true
}

func (p LocationPath) String() string {
	var set []string
	for _, l := range p.Levels {
		if l == "" {
			break
		}
		set = append(set, l)
	}
	return strings.Join(set, "-")
}

// Transitional housing locations: a prisoner recorded at one of these is not in
// a permanent cell, and location matching falls back to the last known
// permanent cell unless a group targets the transitional code itself.
var transitionalLocations = map[string]bool{
	"RECP":  true, // reception
	"COURT": true, // court appearance
	"TAP":   true, // temporary absence
	"CSWAP": true, // cell swap pending
	"ECL":   true, // early conditional release holding
}

// IsTransitionalLocation reports whether code names a transitional (non-cell)
// housing location.
func IsTransitionalLocation(code string) bool {
	return transitionalLocations[strings.TrimSpace(code)]
}
