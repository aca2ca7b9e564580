// Package export writes the feature table as CSV for downstream model
// training. The column set and order are fixed; training jobs address
// columns by name and position.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/racelab/lapsmith/pkg/model"
)

// Header is the exported column order. The Exprience spelling is kept for
// compatibility with existing training jobs.
var Header = []string{
	"Driver", "Team", "Country", "FinalPosition", "GridPosition",
	"Location", "Year", "Track",
	"LapNumber", "LapTime", "Compound", "TyreLife", "Stint", "FreshTyre",
	"TrackStatus", "Position",
	"Sector1Time", "Sector2Time", "Sector3Time",
	"SpeedI1", "SpeedI2", "SpeedFL", "SpeedST",
	"SessionTime", "PitInTime", "PitOutTime",
	"RpmAvg", "RpmMin", "RpmMax",
	"SpeedAvg", "SpeedMedian", "SpeedMin", "SpeedMax",
	"ThrottleAvg", "ThrottleMin", "ThrottleMax",
	"nGearAvg", "nGearMin", "nGearMax", "nGearMode",
	"BrakeCount", "DrsCount",
	"AirTemp", "Humidity", "Pressure", "Rainfall",
	"TrackTemp", "WindDirection", "WindSpeed",
	"Age", "Exprience", "Achievements", "AchievementsByTime",
	"LastYearDriverPoints", "LastYearTeamPoints", "IsDriverActive",
}

// WriteCSV writes header and rows to w.
func WriteCSV(w io.Writer, rows []model.FeatureRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for i := range rows {
		if err := cw.Write(record(&rows[i])); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the feature table to path, creating parent directories.
func WriteFile(path string, rows []model.FeatureRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close() //nolint:errcheck,gosec // write error wins
		return err
	}
	return f.Close()
}

// CheckpointPath names the per-year backup export inside dir.
func CheckpointPath(dir string, year int) string {
	return filepath.Join(dir, fmt.Sprintf("features_%d.csv", year))
}

//nolint:funlen // flat column mapping
func record(r *model.FeatureRow) []string {
	return []string{
		strconv.Itoa(r.Result.DriverID),
		strconv.Itoa(r.Lap.TeamID),
		r.Result.Country,
		r.Result.FinalPosition,
		num(r.Result.GridPosition),
		r.Result.Location,
		strconv.Itoa(r.Result.Year),
		strconv.Itoa(r.Result.TrackID),
		strconv.Itoa(r.Lap.LapNumber),
		num(r.Lap.LapTime),
		strconv.Itoa(r.Lap.CompoundID),
		num(r.Lap.TyreLife),
		num(r.Lap.Stint),
		strconv.Itoa(r.Lap.FreshTyre),
		strconv.Itoa(r.Lap.TrackStatus),
		num(r.Lap.Position),
		num(r.Lap.Sector1Time),
		num(r.Lap.Sector2Time),
		num(r.Lap.Sector3Time),
		num(r.Lap.SpeedI1),
		num(r.Lap.SpeedI2),
		num(r.Lap.SpeedFL),
		num(r.Lap.SpeedST),
		num(r.Lap.SessionTime),
		num(r.Lap.PitInTime),
		num(r.Lap.PitOutTime),
		optNum(r.Agg.RpmAvg),
		optNum(r.Agg.RpmMin),
		optNum(r.Agg.RpmMax),
		optNum(r.Agg.SpeedAvg),
		optNum(r.Agg.SpeedMedian),
		optNum(r.Agg.SpeedMin),
		optNum(r.Agg.SpeedMax),
		optNum(r.Agg.ThrottleAvg),
		optNum(r.Agg.ThrottleMin),
		optNum(r.Agg.ThrottleMax),
		optNum(r.Agg.GearAvg),
		optNum(r.Agg.GearMin),
		optNum(r.Agg.GearMax),
		optInt(r.Agg.GearMode),
		count(r.Agg.BrakeCount, r.Agg.NormBrakeCount),
		count(r.Agg.DrsCount, r.Agg.NormDrsCount),
		num(r.Weather.AirTemp),
		num(r.Weather.Humidity),
		num(r.Weather.Pressure),
		strconv.Itoa(r.Weather.Rainfall),
		num(r.Weather.TrackTemp),
		num(r.Weather.WindDirection),
		num(r.Weather.WindSpeed),
		num(r.Result.Age),
		num(r.Result.Experience),
		num(r.Result.Achievements),
		num(r.Result.AchievementsByTime),
		num(r.Result.LastYearDriverPoints),
		num(r.Result.LastYearTeamPoints),
		strconv.Itoa(r.Result.IsDriverActive),
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// nil stays an empty cell: "no telemetry coverage" must not read as zero
func optNum(v *float64) string {
	if v == nil {
		return ""
	}
	return num(*v)
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// count prefers the normalized delta once the cross-sectional pass ran
func count(raw int, norm *float64) string {
	if norm != nil {
		return num(*norm)
	}
	return strconv.Itoa(raw)
}
