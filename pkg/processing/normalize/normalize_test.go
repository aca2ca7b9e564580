package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racelab/lapsmith/pkg/model"
)

func row(year int, location string, driver, lap int, rpmAvg float64) model.FeatureRow {
	v := rpmAvg
	covered := v
	return model.FeatureRow{
		Lap: model.Lap{LapNumber: lap, DriverID: driver},
		Agg: model.LapAggregate{
			LapNumber: lap,
			RpmAvg:    &v,
			RpmMin:    &covered,
		},
		Result: model.Result{
			DriverID:      driver,
			Year:          year,
			Location:      location,
			FinalPosition: "1",
		},
	}
}

func TestFieldBaseline(t *testing.T) {
	n := NewNormalizer(WithMetrics([]string{"RpmAvg"}))

	a := row(2023, "Monza", 1, 1, 10000)
	b := row(2023, "Monza", 2, 1, 12000)
	// pit-affected lap: excluded from the baseline, still shifted by it
	c := row(2023, "Monza", 3, 1, 11500)
	c.Lap.PitInTime = 5000

	out := n.Finalize([]model.FeatureRow{a, b, c})
	require.Len(t, out, 3)
	assert.Equal(t, -1000.0, *out[0].Agg.RpmAvg)
	assert.Equal(t, 1000.0, *out[1].Agg.RpmAvg)
	assert.Equal(t, 500.0, *out[2].Agg.RpmAvg)
}

func TestBaselinePerEvent(t *testing.T) {
	n := NewNormalizer(WithMetrics([]string{"RpmAvg"}))

	out := n.Finalize([]model.FeatureRow{
		row(2023, "Monza", 1, 1, 10000),
		row(2023, "Monza", 2, 1, 12000),
		row(2022, "Monza", 1, 1, 9000),
		row(2023, "Suzuka", 1, 1, 8000),
	})
	require.Len(t, out, 4)
	assert.Equal(t, -1000.0, *out[0].Agg.RpmAvg)
	assert.Equal(t, 1000.0, *out[1].Agg.RpmAvg)
	// single-row events are their own baseline
	assert.Equal(t, 0.0, *out[2].Agg.RpmAvg)
	assert.Equal(t, 0.0, *out[3].Agg.RpmAvg)
}

func TestDropUncovered(t *testing.T) {
	n := NewNormalizer(WithMetrics(nil))

	covered := row(2023, "Monza", 1, 1, 10000)
	bare := model.FeatureRow{
		Lap:    model.Lap{LapNumber: 2, DriverID: 1},
		Result: model.Result{DriverID: 1, Year: 2023, Location: "Monza", FinalPosition: "1"},
	}

	out := n.Finalize([]model.FeatureRow{covered, bare})
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Lap.LapNumber)
}

func TestPlausibilityFilter(t *testing.T) {
	n := NewNormalizer(WithMetrics(nil))

	var rows []model.FeatureRow
	for lap := 1; lap <= 85; lap++ {
		rows = append(rows, row(2023, "Monza", 1, lap, 10000))
	}
	for lap := 1; lap <= 78; lap++ {
		rows = append(rows, row(2023, "Monza", 2, lap, 10000))
	}

	out := n.Finalize(rows)
	require.Len(t, out, 78)
	for _, r := range out {
		assert.Equal(t, 2, r.Result.DriverID)
	}
}

func TestFinalPositionCast(t *testing.T) {
	n := NewNormalizer(WithMetrics(nil))

	withdrawn := row(2023, "Monza", 1, 1, 10000)
	withdrawn.Result.FinalPosition = "W"
	noncastable := row(2023, "Monza", 2, 1, 10000)
	noncastable.Result.FinalPosition = ""

	out := n.Finalize([]model.FeatureRow{withdrawn, noncastable})
	require.Len(t, out, 2)
	assert.Equal(t, "20", out[0].Result.FinalPosition)
	// structurally undefined positions survive uncast
	assert.Equal(t, "", out[1].Result.FinalPosition)
}

func TestCountsBecomeDeltas(t *testing.T) {
	n := NewNormalizer(WithMetrics([]string{"BrakeCount"}))

	a := row(2023, "Monza", 1, 1, 10000)
	a.Agg.BrakeCount = 40
	b := row(2023, "Monza", 2, 1, 10000)
	b.Agg.BrakeCount = 50

	out := n.Finalize([]model.FeatureRow{a, b})
	require.Len(t, out, 2)
	require.NotNil(t, out[0].Agg.NormBrakeCount)
	assert.Equal(t, -5.0, *out[0].Agg.NormBrakeCount)
	assert.Equal(t, 5.0, *out[1].Agg.NormBrakeCount)
	// raw counts are untouched
	assert.Equal(t, 40, out[0].Agg.BrakeCount)
}
