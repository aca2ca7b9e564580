package store

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racelab/lapsmith/pkg/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate())
	return s
}

func sampleRows() []model.FeatureRow {
	rpm := 11000.0
	mode := 7
	covered := model.FeatureRow{
		Lap: model.Lap{
			LapNumber: 1, DriverID: 1, LapTime: 90.5, CompoundID: 1,
			TyreLife: 1, Stint: 1, FreshTyre: 1, TeamID: 1, TrackStatus: 1,
			Position: 1, Sector1Time: 30, Sector2Time: 30, Sector3Time: 30.5,
			SpeedI1: 280, SpeedI2: 290, SpeedFL: 300, SpeedST: 310,
			SessionTime: 100, PitInTime: 0, PitOutTime: 50,
		},
		Agg: model.LapAggregate{
			LapNumber: 1,
			RpmAvg:    &rpm, RpmMin: &rpm, RpmMax: &rpm,
			SpeedAvg: &rpm, SpeedMedian: &rpm, SpeedMin: &rpm, SpeedMax: &rpm,
			ThrottleAvg: &rpm, ThrottleMin: &rpm, ThrottleMax: &rpm,
			GearAvg: &rpm, GearMin: &rpm, GearMax: &rpm,
			GearMode:   &mode,
			BrakeCount: 12, DrsCount: 3,
		},
		Weather: model.Weather{
			SessionTime: 90, AirTemp: 28, Humidity: 40, Pressure: 1012,
			Rainfall: 0, TrackTemp: 41, WindDirection: 180, WindSpeed: 2,
		},
		Result: model.Result{
			DriverAbbr: "VER", DriverID: 1, TeamID: "red_bull",
			Country: "Italy", FinalPosition: "1", GridPosition: 1,
			Location: "Monza", Year: 2023, TrackID: 16,
			Age: 27, Experience: 209, Achievements: 3023.5,
			AchievementsByTime:   14.5,
			LastYearDriverPoints: 454, LastYearTeamPoints: 759,
			IsDriverActive: 1, HasBio: true,
		},
	}
	// a lap without telemetry coverage keeps its nulls through the store
	bare := model.FeatureRow{
		Lap:    model.Lap{LapNumber: 2, DriverID: 1, SessionTime: 200},
		Agg:    model.LapAggregate{LapNumber: 2},
		Result: model.Result{DriverAbbr: "VER", DriverID: 1, Year: 2023, Location: "Monza", FinalPosition: "1"},
	}
	return []model.FeatureRow{covered, bare}
}

func TestRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := sampleRows()
	require.NoError(t, s.Replace(ctx, in))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)

	if diff := cmp.Diff(in[0], out[0]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}

	assert.Nil(t, out[1].Agg.RpmAvg)
	assert.Nil(t, out[1].Agg.GearMode)
	assert.Zero(t, out[1].Agg.BrakeCount)
}

func TestReplaceIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Replace(ctx, sampleRows()))
	require.NoError(t, s.Replace(ctx, sampleRows()))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestMigrateTwice(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Migrate())
}

func TestLoadEmpty(t *testing.T) {
	s := openTestStore(t)
	out, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}
