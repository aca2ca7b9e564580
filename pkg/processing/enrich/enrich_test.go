//nolint:lll // ok for tests
package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racelab/lapsmith/pkg/model"
	"github.com/racelab/lapsmith/pkg/refdata"
)

func TestEnrichBio(t *testing.T) {
	e := NewEnricher(WithLookup(refdata.Default()))

	out := e.Enrich([]model.Result{
		{DriverAbbr: "VER", Year: 2023},
		{DriverAbbr: "XYZ", Year: 2023},
	}, nil)
	require.Len(t, out, 2)

	ver := out[0]
	assert.True(t, ver.HasBio)
	assert.Equal(t, 1, ver.DriverID)
	assert.Equal(t, 27.0, ver.Age)
	assert.Equal(t, 209.0, ver.Experience)
	assert.Equal(t, 3023.5, ver.Achievements)
	assert.InDelta(t, 3023.5/209.0, ver.AchievementsByTime, 1e-9)

	// unknown drivers pass through without context, they are not an error
	unknown := out[1]
	assert.False(t, unknown.HasBio)
	assert.Equal(t, model.MissingID, unknown.DriverID)
	assert.Zero(t, unknown.Age)
	assert.Zero(t, unknown.AchievementsByTime)
}

func TestEnrichPriorYearPoints(t *testing.T) {
	e := NewEnricher(WithLookup(refdata.Default()), WithPriorYearPoints(true))

	teamByDriver := map[int]int{1: 1, 14: 7}
	out := e.Enrich([]model.Result{
		{DriverAbbr: "VER", Year: 2023},
		// SAR is a 2023 rookie: no 2022 record on either axis
		{DriverAbbr: "SAR", Year: 2023},
	}, teamByDriver)

	assert.Equal(t, 454.0, out[0].LastYearDriverPoints)
	assert.Equal(t, 759.0, out[0].LastYearTeamPoints)
	assert.Equal(t, 1, out[0].IsDriverActive)

	assert.Equal(t, 0.0, out[1].LastYearDriverPoints)
	assert.Equal(t, 8.0, out[1].LastYearTeamPoints)
	assert.Equal(t, 0, out[1].IsDriverActive)
}

func TestEnrichActiveThreshold(t *testing.T) {
	e := NewEnricher(WithLookup(refdata.Default()), WithPriorYearPoints(true))

	// STR scored 18 in 2022, at or below the threshold counts as inactive
	out := e.Enrich([]model.Result{{DriverAbbr: "STR", Year: 2023}}, nil)
	assert.Equal(t, 18.0, out[0].LastYearDriverPoints)
	assert.Equal(t, 0, out[0].IsDriverActive)

	// GAS scored 23, just above
	out = e.Enrich([]model.Result{{DriverAbbr: "GAS", Year: 2023}}, nil)
	assert.Equal(t, 1, out[0].IsDriverActive)
}

func TestEnrichPointsDisabled(t *testing.T) {
	e := NewEnricher(WithLookup(refdata.Default()))

	out := e.Enrich([]model.Result{{DriverAbbr: "VER", Year: 2023}}, map[int]int{1: 1})
	assert.Zero(t, out[0].LastYearDriverPoints)
	assert.Zero(t, out[0].LastYearTeamPoints)
	assert.Zero(t, out[0].IsDriverActive)
}
