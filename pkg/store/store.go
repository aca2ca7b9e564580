// Package store persists the accumulated feature table in a local sqlite
// database, which serves as the crash-safe checkpoint between years and as
// the input of the finalize and export commands.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/racelab/lapsmith/log"
	"github.com/racelab/lapsmith/pkg/model"
)

//go:embed migrations
var migrations embed.FS

type Store struct {
	db *sql.DB
	l  *log.Logger
}

type Option func(s *Store)

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		s.l = l
	}
}

// Open opens (and creates if needed) the sqlite database at path.
// Use ":memory:" for a throwaway instance.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	s := &Store{db: db, l: log.Default().Named("store")}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate brings the schema up to the latest embedded migration.
func (s *Store) Migrate() error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	s.l.Debug("schema up to date")
	return nil
}

var columns = []string{
	"year", "location", "country", "track_id",
	"driver", "driver_id", "team", "final_position", "grid_position",
	"lap_number", "lap_time", "compound_id", "tyre_life", "stint",
	"fresh_tyre", "team_id", "track_status", "position",
	"sector1_time", "sector2_time", "sector3_time",
	"speed_i1", "speed_i2", "speed_fl", "speed_st",
	"session_time", "pit_in_time", "pit_out_time",
	"rpm_avg", "rpm_min", "rpm_max",
	"speed_avg", "speed_median", "speed_min", "speed_max",
	"throttle_avg", "throttle_min", "throttle_max",
	"gear_avg", "gear_min", "gear_max", "gear_mode",
	"brake_count", "drs_count", "norm_brake_count", "norm_drs_count",
	"weather_time", "air_temp", "humidity", "pressure", "rainfall",
	"track_temp", "wind_direction", "wind_speed",
	"age", "experience", "achievements", "achievements_by_time",
	"last_year_driver_points", "last_year_team_points",
	"is_driver_active", "has_bio",
}

// Replace overwrites the stored table with the given rows in one
// transaction. Checkpoints persist the full accumulation, so replace
// semantics keep reruns idempotent.
func (s *Store) Replace(ctx context.Context, rows []model.FeatureRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM feature_rows"); err != nil {
		return fmt.Errorf("clearing feature_rows: %w", err)
	}

	query := fmt.Sprintf("INSERT INTO feature_rows (%s) VALUES (%s)",
		strings.Join(columns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "))
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rowValues(&rows[i])...); err != nil {
			return fmt.Errorf("inserting row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.l.Info("feature table stored", log.Int("rows", len(rows)))
	return nil
}

// Load reads the full stored feature table back in insertion order.
func (s *Store) Load(ctx context.Context) ([]model.FeatureRow, error) {
	query := fmt.Sprintf("SELECT %s FROM feature_rows ORDER BY id",
		strings.Join(columns, ", "))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.FeatureRow
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

//nolint:funlen // flat column mapping
func rowValues(r *model.FeatureRow) []any {
	return []any{
		r.Result.Year, r.Result.Location, r.Result.Country, r.Result.TrackID,
		r.Result.DriverAbbr, r.Result.DriverID, r.Result.TeamID,
		r.Result.FinalPosition, r.Result.GridPosition,
		r.Lap.LapNumber, r.Lap.LapTime, r.Lap.CompoundID, r.Lap.TyreLife,
		r.Lap.Stint, r.Lap.FreshTyre, r.Lap.TeamID, r.Lap.TrackStatus,
		r.Lap.Position,
		r.Lap.Sector1Time, r.Lap.Sector2Time, r.Lap.Sector3Time,
		r.Lap.SpeedI1, r.Lap.SpeedI2, r.Lap.SpeedFL, r.Lap.SpeedST,
		r.Lap.SessionTime, r.Lap.PitInTime, r.Lap.PitOutTime,
		nullFloat(r.Agg.RpmAvg), nullFloat(r.Agg.RpmMin), nullFloat(r.Agg.RpmMax),
		nullFloat(r.Agg.SpeedAvg), nullFloat(r.Agg.SpeedMedian),
		nullFloat(r.Agg.SpeedMin), nullFloat(r.Agg.SpeedMax),
		nullFloat(r.Agg.ThrottleAvg), nullFloat(r.Agg.ThrottleMin),
		nullFloat(r.Agg.ThrottleMax),
		nullFloat(r.Agg.GearAvg), nullFloat(r.Agg.GearMin),
		nullFloat(r.Agg.GearMax), nullInt(r.Agg.GearMode),
		r.Agg.BrakeCount, r.Agg.DrsCount,
		nullFloat(r.Agg.NormBrakeCount), nullFloat(r.Agg.NormDrsCount),
		r.Weather.SessionTime, r.Weather.AirTemp, r.Weather.Humidity,
		r.Weather.Pressure, r.Weather.Rainfall, r.Weather.TrackTemp,
		r.Weather.WindDirection, r.Weather.WindSpeed,
		r.Result.Age, r.Result.Experience, r.Result.Achievements,
		r.Result.AchievementsByTime, r.Result.LastYearDriverPoints,
		r.Result.LastYearTeamPoints, r.Result.IsDriverActive,
		r.Result.HasBio,
	}
}

//nolint:funlen // flat column mapping
func scanRow(rows *sql.Rows) (model.FeatureRow, error) {
	var (
		r model.FeatureRow

		rpmAvg, rpmMin, rpmMax             sql.NullFloat64
		speedAvg, speedMedian              sql.NullFloat64
		speedMin, speedMax                 sql.NullFloat64
		throttleAvg, throttleMin           sql.NullFloat64
		throttleMax                        sql.NullFloat64
		gearAvg, gearMin, gearMax          sql.NullFloat64
		gearMode                           sql.NullInt64
		normBrakeCount, normDrsCount       sql.NullFloat64
	)
	err := rows.Scan(
		&r.Result.Year, &r.Result.Location, &r.Result.Country, &r.Result.TrackID,
		&r.Result.DriverAbbr, &r.Result.DriverID, &r.Result.TeamID,
		&r.Result.FinalPosition, &r.Result.GridPosition,
		&r.Lap.LapNumber, &r.Lap.LapTime, &r.Lap.CompoundID, &r.Lap.TyreLife,
		&r.Lap.Stint, &r.Lap.FreshTyre, &r.Lap.TeamID, &r.Lap.TrackStatus,
		&r.Lap.Position,
		&r.Lap.Sector1Time, &r.Lap.Sector2Time, &r.Lap.Sector3Time,
		&r.Lap.SpeedI1, &r.Lap.SpeedI2, &r.Lap.SpeedFL, &r.Lap.SpeedST,
		&r.Lap.SessionTime, &r.Lap.PitInTime, &r.Lap.PitOutTime,
		&rpmAvg, &rpmMin, &rpmMax,
		&speedAvg, &speedMedian, &speedMin, &speedMax,
		&throttleAvg, &throttleMin, &throttleMax,
		&gearAvg, &gearMin, &gearMax, &gearMode,
		&r.Agg.BrakeCount, &r.Agg.DrsCount,
		&normBrakeCount, &normDrsCount,
		&r.Weather.SessionTime, &r.Weather.AirTemp, &r.Weather.Humidity,
		&r.Weather.Pressure, &r.Weather.Rainfall, &r.Weather.TrackTemp,
		&r.Weather.WindDirection, &r.Weather.WindSpeed,
		&r.Result.Age, &r.Result.Experience, &r.Result.Achievements,
		&r.Result.AchievementsByTime, &r.Result.LastYearDriverPoints,
		&r.Result.LastYearTeamPoints, &r.Result.IsDriverActive,
		&r.Result.HasBio,
	)
	if err != nil {
		return r, err
	}
	r.Agg.LapNumber = r.Lap.LapNumber
	r.Agg.RpmAvg = fromNullFloat(rpmAvg)
	r.Agg.RpmMin = fromNullFloat(rpmMin)
	r.Agg.RpmMax = fromNullFloat(rpmMax)
	r.Agg.SpeedAvg = fromNullFloat(speedAvg)
	r.Agg.SpeedMedian = fromNullFloat(speedMedian)
	r.Agg.SpeedMin = fromNullFloat(speedMin)
	r.Agg.SpeedMax = fromNullFloat(speedMax)
	r.Agg.ThrottleAvg = fromNullFloat(throttleAvg)
	r.Agg.ThrottleMin = fromNullFloat(throttleMin)
	r.Agg.ThrottleMax = fromNullFloat(throttleMax)
	r.Agg.GearAvg = fromNullFloat(gearAvg)
	r.Agg.GearMin = fromNullFloat(gearMin)
	r.Agg.GearMax = fromNullFloat(gearMax)
	r.Agg.NormBrakeCount = fromNullFloat(normBrakeCount)
	r.Agg.NormDrsCount = fromNullFloat(normDrsCount)
	if gearMode.Valid {
		v := int(gearMode.Int64)
		r.Agg.GearMode = &v
	}
	return r, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func fromNullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
