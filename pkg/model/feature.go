package model

// FeatureRow is the final unit of output, one per (year, location, driver,
// lap). It unions the lap record, its telemetry aggregate, the as-of matched
// weather sample and the session level result/context fields.
type FeatureRow struct {
	Lap     Lap
	Agg     LapAggregate
	Weather Weather
	Result  Result
}

// BaselineMetrics is the fixed list of columns that take part in the
// cross-sectional field-baseline transform. Weather columns and nGearMode
// deliberately stay absolute.
var BaselineMetrics = []string{
	"RpmAvg", "RpmMin", "RpmMax",
	"SpeedAvg", "SpeedMedian", "SpeedMin", "SpeedMax",
	"ThrottleAvg", "ThrottleMin", "ThrottleMax",
	"nGearAvg", "nGearMin", "nGearMax",
	"BrakeCount", "DrsCount",
	"Sector1Time", "Sector2Time", "Sector3Time",
	"SpeedI1", "SpeedI2", "SpeedFL", "SpeedST",
	"SessionTime", "LapTime",
}

// Metric returns the current value of a baseline metric column.
// The second return is false when the column has no value for this row
// (telemetry aggregate without coverage).
//
//nolint:cyclop // plain column dispatch
func (r *FeatureRow) Metric(name string) (float64, bool) {
	switch name {
	case "RpmAvg":
		return deref(r.Agg.RpmAvg)
	case "RpmMin":
		return deref(r.Agg.RpmMin)
	case "RpmMax":
		return deref(r.Agg.RpmMax)
	case "SpeedAvg":
		return deref(r.Agg.SpeedAvg)
	case "SpeedMedian":
		return deref(r.Agg.SpeedMedian)
	case "SpeedMin":
		return deref(r.Agg.SpeedMin)
	case "SpeedMax":
		return deref(r.Agg.SpeedMax)
	case "ThrottleAvg":
		return deref(r.Agg.ThrottleAvg)
	case "ThrottleMin":
		return deref(r.Agg.ThrottleMin)
	case "ThrottleMax":
		return deref(r.Agg.ThrottleMax)
	case "nGearAvg":
		return deref(r.Agg.GearAvg)
	case "nGearMin":
		return deref(r.Agg.GearMin)
	case "nGearMax":
		return deref(r.Agg.GearMax)
	case "BrakeCount":
		return float64(r.Agg.BrakeCount), true
	case "DrsCount":
		return float64(r.Agg.DrsCount), true
	case "Sector1Time":
		return r.Lap.Sector1Time, true
	case "Sector2Time":
		return r.Lap.Sector2Time, true
	case "Sector3Time":
		return r.Lap.Sector3Time, true
	case "SpeedI1":
		return r.Lap.SpeedI1, true
	case "SpeedI2":
		return r.Lap.SpeedI2, true
	case "SpeedFL":
		return r.Lap.SpeedFL, true
	case "SpeedST":
		return r.Lap.SpeedST, true
	case "SessionTime":
		return r.Lap.SessionTime, true
	case "LapTime":
		return r.Lap.LapTime, true
	}
	return 0, false
}

// SetMetric overwrites the value of a baseline metric column. Counts become
// fractional once normalized, so they are carried as floats afterwards; the
// aggregate keeps them in NormBrakeCount/NormDrsCount.
//
//nolint:cyclop // plain column dispatch
func (r *FeatureRow) SetMetric(name string, v float64) {
	switch name {
	case "RpmAvg":
		r.Agg.RpmAvg = &v
	case "RpmMin":
		r.Agg.RpmMin = &v
	case "RpmMax":
		r.Agg.RpmMax = &v
	case "SpeedAvg":
		r.Agg.SpeedAvg = &v
	case "SpeedMedian":
		r.Agg.SpeedMedian = &v
	case "SpeedMin":
		r.Agg.SpeedMin = &v
	case "SpeedMax":
		r.Agg.SpeedMax = &v
	case "ThrottleAvg":
		r.Agg.ThrottleAvg = &v
	case "ThrottleMin":
		r.Agg.ThrottleMin = &v
	case "ThrottleMax":
		r.Agg.ThrottleMax = &v
	case "nGearAvg":
		r.Agg.GearAvg = &v
	case "nGearMin":
		r.Agg.GearMin = &v
	case "nGearMax":
		r.Agg.GearMax = &v
	case "BrakeCount":
		r.Agg.NormBrakeCount = &v
	case "DrsCount":
		r.Agg.NormDrsCount = &v
	case "Sector1Time":
		r.Lap.Sector1Time = v
	case "Sector2Time":
		r.Lap.Sector2Time = v
	case "Sector3Time":
		r.Lap.Sector3Time = v
	case "SpeedI1":
		r.Lap.SpeedI1 = v
	case "SpeedI2":
		r.Lap.SpeedI2 = v
	case "SpeedFL":
		r.Lap.SpeedFL = v
	case "SpeedST":
		r.Lap.SpeedST = v
	case "SessionTime":
		r.Lap.SessionTime = v
	case "LapTime":
		r.Lap.LapTime = v
	}
}

// PitAffected reports whether the lap touched the pit lane. Pit laps are
// excluded from field baselines but still receive the subtraction.
func (r *FeatureRow) PitAffected() bool {
	return r.Lap.PitInTime != 0 || r.Lap.PitOutTime != 0
}

func deref(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}
