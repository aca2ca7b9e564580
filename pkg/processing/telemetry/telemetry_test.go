//nolint:lll // ok for tests
package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racelab/lapsmith/pkg/model"
)

func sample(t float64, opts ...func(*model.TelemetrySample)) model.TelemetrySample {
	s := model.TelemetrySample{SessionTime: t, RPM: 10000, Speed: 200, Gear: 5, Throttle: 80}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func withGear(g int) func(*model.TelemetrySample) {
	return func(s *model.TelemetrySample) { s.Gear = g }
}

func withBrake() func(*model.TelemetrySample) {
	return func(s *model.TelemetrySample) { s.Brake = 1 }
}

func withDRS(v int) func(*model.TelemetrySample) {
	return func(s *model.TelemetrySample) { s.DRS = v }
}

func withSpeed(v float64) func(*model.TelemetrySample) {
	return func(s *model.TelemetrySample) { s.Speed = v }
}

func TestNormalizeSamples(t *testing.T) {
	raw := []model.RawTelemetry{
		{RPM: 9000, Speed: 120, Gear: 3, Throttle: 0, Brake: true, DRS: 0, SessionTime: "0 days 00:02:00"},
		{RPM: 11000, Speed: 280, Gear: 7, Throttle: 100, Brake: false, DRS: 10, SessionTime: "0 days 00:01:00"},
		{RPM: 1, SessionTime: ""},
	}

	out, err := NormalizeSamples(raw)
	require.NoError(t, err)
	require.Len(t, out, 2)

	// sorted by session time, untimed sample dropped
	assert.Equal(t, 60.0, out[0].SessionTime)
	assert.Equal(t, 0, out[0].Brake)
	assert.Equal(t, 120.0, out[1].Speed)
	assert.Equal(t, 1, out[1].Brake)

	_, err = NormalizeSamples([]model.RawTelemetry{{SessionTime: "sometime"}})
	assert.Error(t, err)
}

func TestWindowBoundaries(t *testing.T) {
	a := NewAggregator()
	// two laps: lap 1 spans (0, 60], lap 2 spans (60, 120]
	driverLaps := []model.Lap{
		{LapNumber: 1, SessionTime: 0, LapTime: 60},
		{LapNumber: 2, SessionTime: 60, LapTime: 60},
	}
	samples := []model.TelemetrySample{
		sample(0),   // at the initial boundary: belongs to neither lap
		sample(30),  // lap 1
		sample(60),  // exactly at lap 1 end: lap 1, not lap 2
		sample(61),  // lap 2
		sample(120), // lap 2 end
		sample(121), // past the last lap: unassigned
	}

	aggs := a.AggregateDriver(driverLaps, samples)
	require.Len(t, aggs, 2)

	// counts via sample attribution: every window sample has RPM set, so
	// use the mean sample count indirectly through min/max identity
	assert.NotNil(t, aggs[0].RpmAvg)
	assert.NotNil(t, aggs[1].RpmAvg)

	// verify attribution via distinct speeds
	samples = []model.TelemetrySample{
		sample(0, withSpeed(1)),
		sample(30, withSpeed(10)),
		sample(60, withSpeed(20)),
		sample(61, withSpeed(30)),
		sample(120, withSpeed(40)),
		sample(121, withSpeed(50)),
	}
	aggs = a.AggregateDriver(driverLaps, samples)
	require.Len(t, aggs, 2)
	assert.Equal(t, 10.0, *aggs[0].SpeedMin)
	assert.Equal(t, 20.0, *aggs[0].SpeedMax)
	assert.Equal(t, 30.0, *aggs[1].SpeedMin)
	assert.Equal(t, 40.0, *aggs[1].SpeedMax)
}

func TestEmptyWindow(t *testing.T) {
	a := NewAggregator()
	driverLaps := []model.Lap{
		{LapNumber: 1, SessionTime: 0, LapTime: 60},
		{LapNumber: 2, SessionTime: 60, LapTime: 60},
	}
	// telemetry only covers lap 1
	samples := []model.TelemetrySample{sample(10), sample(20, withBrake())}

	aggs := a.AggregateDriver(driverLaps, samples)
	require.Len(t, aggs, 2)

	assert.Equal(t, 1, aggs[0].BrakeCount)

	empty := aggs[1]
	assert.Nil(t, empty.RpmAvg)
	assert.Nil(t, empty.RpmMin)
	assert.Nil(t, empty.RpmMax)
	assert.Nil(t, empty.SpeedAvg)
	assert.Nil(t, empty.SpeedMedian)
	assert.Nil(t, empty.SpeedMin)
	assert.Nil(t, empty.SpeedMax)
	assert.Nil(t, empty.ThrottleAvg)
	assert.Nil(t, empty.GearAvg)
	assert.Nil(t, empty.GearMode)
	assert.Equal(t, 0, empty.BrakeCount)
	assert.Equal(t, 0, empty.DrsCount)
	assert.False(t, empty.HasCoverage())
}

func TestGearMode(t *testing.T) {
	a := NewAggregator()
	driverLaps := []model.Lap{{LapNumber: 1, SessionTime: 0, LapTime: 100}}

	samples := []model.TelemetrySample{
		sample(1, withGear(3)), sample(2, withGear(3)),
		sample(3, withGear(4)), sample(4, withGear(4)), sample(5, withGear(4)),
		sample(6, withGear(5)),
	}
	aggs := a.AggregateDriver(driverLaps, samples)
	require.NotNil(t, aggs[0].GearMode)
	assert.Equal(t, 4, *aggs[0].GearMode)

	// tie broken by first occurrence
	samples = []model.TelemetrySample{
		sample(1, withGear(3)), sample(2, withGear(3)),
		sample(3, withGear(4)), sample(4, withGear(4)),
	}
	aggs = a.AggregateDriver(driverLaps, samples)
	require.NotNil(t, aggs[0].GearMode)
	assert.Equal(t, 3, *aggs[0].GearMode)
}

func TestWindowStats(t *testing.T) {
	a := NewAggregator()
	driverLaps := []model.Lap{{LapNumber: 1, SessionTime: 0, LapTime: 100}}
	samples := []model.TelemetrySample{
		sample(1, withSpeed(100), withDRS(10)),
		sample(2, withSpeed(200), withBrake()),
		sample(3, withSpeed(250), withDRS(12)),
		sample(4, withSpeed(150)),
	}

	aggs := a.AggregateDriver(driverLaps, samples)
	agg := aggs[0]

	assert.InDelta(t, 175.0, *agg.SpeedAvg, 1e-9)
	assert.InDelta(t, 175.0, *agg.SpeedMedian, 1e-9) // midpoint of 150 and 200
	assert.Equal(t, 100.0, *agg.SpeedMin)
	assert.Equal(t, 250.0, *agg.SpeedMax)
	assert.Equal(t, 2, agg.DrsCount)
	assert.Equal(t, 1, agg.BrakeCount)
}

func TestZeroLapTimeRegressesBoundary(t *testing.T) {
	a := NewAggregator()
	// lap 2 has no recorded time; its window is empty and the boundary
	// regresses to its start, so lap 3 re-covers (100, 180]
	driverLaps := []model.Lap{
		{LapNumber: 1, SessionTime: 0, LapTime: 120},
		{LapNumber: 2, SessionTime: 100, LapTime: 0},
		{LapNumber: 3, SessionTime: 120, LapTime: 60},
	}
	samples := []model.TelemetrySample{
		sample(110, withSpeed(1)),
		sample(150, withSpeed(2)),
	}

	aggs := a.AggregateDriver(driverLaps, samples)
	require.Len(t, aggs, 3)
	assert.NotNil(t, aggs[0].SpeedAvg) // (0,120] has the 110 sample
	assert.Nil(t, aggs[1].SpeedAvg)    // (120,100] is empty
	// (100,180] includes both samples again
	assert.Equal(t, 1.0, *aggs[2].SpeedMin)
	assert.Equal(t, 2.0, *aggs[2].SpeedMax)
}

func TestNoLaps(t *testing.T) {
	a := NewAggregator()
	assert.Nil(t, a.AggregateDriver(nil, []model.TelemetrySample{sample(1)}))
}
