package model

// RawTelemetry is one high frequency car data sample from the provider.
type RawTelemetry struct {
	RPM         float64 `json:"rpm"`
	Speed       float64 `json:"speed"`
	Gear        int     `json:"nGear"`
	Throttle    float64 `json:"throttle"`
	Brake       bool    `json:"brake"`
	DRS         int     `json:"drs"`
	SessionTime string  `json:"sessionTime"`
}

// TelemetrySample is the normalized sample used by the aggregator.
// Brake is coerced to 0/1.
type TelemetrySample struct {
	RPM         float64
	Speed       float64
	Gear        int
	Throttle    float64
	Brake       int
	DRS         int
	SessionTime float64
}

// LapAggregate holds the per-window telemetry statistics for one lap.
// The stat fields are nil when no telemetry sample fell into the lap
// window; that is different from zero activity and triggers exclusion in
// the final cleanup.
type LapAggregate struct {
	LapNumber int

	RpmAvg      *float64
	RpmMin      *float64
	RpmMax      *float64
	SpeedAvg    *float64
	SpeedMedian *float64
	SpeedMin    *float64
	SpeedMax    *float64
	ThrottleAvg *float64
	ThrottleMin *float64
	ThrottleMax *float64
	GearAvg     *float64
	GearMin     *float64
	GearMax     *float64
	GearMode    *int
	BrakeCount  int
	DrsCount    int

	// set by the cross-sectional normalizer; counts become fractional
	// once expressed as deltas from the field baseline
	NormBrakeCount *float64
	NormDrsCount   *float64
}

// HasCoverage reports whether any telemetry was attributed to the lap.
func (a *LapAggregate) HasCoverage() bool {
	return a.RpmMin != nil || a.SpeedMin != nil
}
