package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitscheduler/internal/domain"
)

func include(paths ...domain.LocationPath) domain.RestrictionGroup[domain.LocationPath] {
	return domain.RestrictionGroup[domain.LocationPath]{Mode: domain.GroupModeInclude, Members: paths}
}

func exclude(paths ...domain.LocationPath) domain.RestrictionGroup[domain.LocationPath] {
	return domain.RestrictionGroup[domain.LocationPath]{Mode: domain.GroupModeExclude, Members: paths}
}

func TestLocationPath_PrefixMatching(t *testing.T) {
	tests := []struct {
		name     string
		stored   domain.LocationPath
		prisoner string
		want     bool
	}{
		{"wing-only entry covers any cell in the wing", domain.NewLocationPath("A"), "A-1-100-1", true},
		{"wing-only entry rejects another wing", domain.NewLocationPath("A"), "B-1-100-1", false},
		{"landing entry covers cells under it", domain.NewLocationPath("A", "1", "100"), "A-1-100-1", true},
		{"landing entry rejects a sibling landing", domain.NewLocationPath("A", "1", "100"), "A-1-200-1", false},
		{"full path requires exact match", domain.NewLocationPath("A", "1", "100", "1"), "A-1-100-2", false},
		{"stored deeper than prisoner path", domain.NewLocationPath("A", "1", "100"), "A-1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prisoner, ok := domain.ParseLocationPath(tt.prisoner)
			require.True(t, ok)
			assert.Equal(t, tt.want, tt.stored.Matches(prisoner))
		})
	}
}

func TestParseLocationPath(t *testing.T) {
	p, ok := domain.ParseLocationPath("A-1-100-1")
	require.True(t, ok)
	assert.Equal(t, domain.NewLocationPath("A", "1", "100", "1"), p)

	// Segments beyond the fourth level are ignored.
	p, ok = domain.ParseLocationPath("A-1-100-1-9")
	require.True(t, ok)
	assert.Equal(t, domain.NewLocationPath("A", "1", "100", "1"), p)

	for _, malformed := range []string{"", "  ", "A--1", "-A"} {
		_, ok := domain.ParseLocationPath(malformed)
		assert.False(t, ok, "expected %q to be rejected", malformed)
	}
}

func TestCandidateLocations(t *testing.T) {
	tests := []struct {
		name     string
		prisoner *domain.PrisonerDetail
		want     []domain.LocationPath
	}{
		{
			name:     "permanent cell yields a single candidate",
			prisoner: &domain.PrisonerDetail{CellLocation: "A-1-100-1"},
			want:     []domain.LocationPath{domain.NewLocationPath("A", "1", "100", "1")},
		},
		{
			name: "transitional location falls back to last permanent cell",
			prisoner: &domain.PrisonerDetail{
				CellLocation:          "COURT",
				LastPermanentLocation: "A-1-100-1",
			},
			want: []domain.LocationPath{
				domain.NewLocationPath("COURT"),
				domain.NewLocationPath("A", "1", "100", "1"),
			},
		},
		{
			name:     "transitional location without a known permanent cell",
			prisoner: &domain.PrisonerDetail{CellLocation: "TAP"},
			want:     []domain.LocationPath{domain.NewLocationPath("TAP")},
		},
		{
			name:     "missing location resolves to nothing",
			prisoner: &domain.PrisonerDetail{CellLocation: ""},
			want:     nil,
		},
		{
			name:     "malformed location resolves to nothing",
			prisoner: &domain.PrisonerDetail{CellLocation: "A--1"},
			want:     nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CandidateLocations(tt.prisoner))
		})
	}
}

func TestAdmittedByLocation(t *testing.T) {
	atCourt := CandidateLocations(&domain.PrisonerDetail{
		CellLocation:          "COURT",
		LastPermanentLocation: "A-1-100-1",
	})
	inCell := CandidateLocations(&domain.PrisonerDetail{CellLocation: "A-1-100-1"})
	unresolved := CandidateLocations(&domain.PrisonerDetail{})

	tests := []struct {
		name       string
		groups     []domain.RestrictionGroup[domain.LocationPath]
		candidates []domain.LocationPath
		want       bool
	}{
		{
			name:       "no groups admit everyone",
			groups:     nil,
			candidates: unresolved,
			want:       true,
		},
		{
			name:       "include landing admits prisoner in that landing",
			groups:     []domain.RestrictionGroup[domain.LocationPath]{include(domain.NewLocationPath("A", "1", "100"))},
			candidates: inCell,
			want:       true,
		},
		{
			name:       "include landing admits court prisoner via permanent-cell fallback",
			groups:     []domain.RestrictionGroup[domain.LocationPath]{include(domain.NewLocationPath("A", "1", "100"))},
			candidates: atCourt,
			want:       true,
		},
		{
			name: "group targeting the transitional code takes precedence over a wing exclusion",
			groups: []domain.RestrictionGroup[domain.LocationPath]{
				include(domain.NewLocationPath("COURT")),
				exclude(domain.NewLocationPath("A")),
			},
			candidates: atCourt,
			want:       true,
		},
		{
			name:       "exclude wing rejects prisoner in the wing",
			groups:     []domain.RestrictionGroup[domain.LocationPath]{exclude(domain.NewLocationPath("A"))},
			candidates: inCell,
			want:       false,
		},
		{
			name:       "exclude wing rejects court prisoner through the fallback",
			groups:     []domain.RestrictionGroup[domain.LocationPath]{exclude(domain.NewLocationPath("A"))},
			candidates: atCourt,
			want:       false,
		},
		{
			name:       "include group rejects an unresolved location",
			groups:     []domain.RestrictionGroup[domain.LocationPath]{include(domain.NewLocationPath("A"))},
			candidates: unresolved,
			want:       false,
		},
		{
			name:       "exclude-only groups admit an unresolved location",
			groups:     []domain.RestrictionGroup[domain.LocationPath]{exclude(domain.NewLocationPath("A"))},
			candidates: unresolved,
			want:       true,
		},
		{
			name:       "include elsewhere rejects prisoner outside it",
			groups:     []domain.RestrictionGroup[domain.LocationPath]{include(domain.NewLocationPath("B"))},
			candidates: inCell,
			want:       false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AdmittedByLocation(tt.groups, tt.candidates))
		})
	}
}
