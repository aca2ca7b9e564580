package telemetry

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/racelab/lapsmith/log"
	"github.com/racelab/lapsmith/pkg/model"
	"github.com/racelab/lapsmith/pkg/processing/timing"
)

type Aggregator struct {
	l *log.Logger
}

type AggregatorOption func(a *Aggregator)

func WithLogger(l *log.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.l = l
	}
}

func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{l: log.Default().Named("telemetry")}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NormalizeSamples converts raw car data into session-time ordered samples.
// Brake is coerced to 0/1; samples without a timestamp cannot be windowed
// and are dropped.
func NormalizeSamples(raw []model.RawTelemetry) ([]model.TelemetrySample, error) {
	out := make([]model.TelemetrySample, 0, len(raw))
	for i := range raw {
		ts, err := timing.SecondsOpt(raw[i].SessionTime)
		if err != nil {
			return nil, fmt.Errorf("telemetry sample %d: %w", i, err)
		}
		if ts == nil {
			continue
		}
		s := model.TelemetrySample{
			RPM:         raw[i].RPM,
			Speed:       raw[i].Speed,
			Gear:        raw[i].Gear,
			Throttle:    raw[i].Throttle,
			DRS:         raw[i].DRS,
			SessionTime: *ts,
		}
		if raw[i].Brake {
			s.Brake = 1
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SessionTime < out[j].SessionTime
	})
	return out, nil
}

// AggregateDriver partitions one driver's telemetry stream into per-lap
// windows and computes the summary statistics for each window. Laps and
// samples must be sorted by session time; the driver's minimum lap session
// time is the initial window boundary and each lap's window is
// (prevBoundary, lapStart+lapTime], so the boundary sample between two laps
// is never counted twice. The sweep is O(samples + laps).
func (a *Aggregator) AggregateDriver(
	driverLaps []model.Lap, samples []model.TelemetrySample,
) []model.LapAggregate {
	if len(driverLaps) == 0 {
		return nil
	}
	prev := driverLaps[0].SessionTime
	for i := range driverLaps {
		if driverLaps[i].SessionTime < prev {
			prev = driverLaps[i].SessionTime
		}
	}

	out := make([]model.LapAggregate, 0, len(driverLaps))
	idx := 0
	for i := range driverLaps {
		lap := &driverLaps[i]
		lapEnd := lap.SessionTime + lap.LapTime

		// realign the pointer to the first sample after the boundary; a lap
		// without a recorded time regresses the boundary, so stepping back
		// must be possible
		for idx > 0 && samples[idx-1].SessionTime > prev {
			idx--
		}
		for idx < len(samples) && samples[idx].SessionTime <= prev {
			idx++
		}
		j := idx
		for j < len(samples) && samples[j].SessionTime <= lapEnd {
			j++
		}

		agg := aggregateWindow(samples[idx:j])
		agg.LapNumber = lap.LapNumber
		out = append(out, agg)

		// advance regardless of whether any telemetry fell in the window
		prev = lapEnd
		idx = j
	}
	return out
}

// aggregateWindow computes the statistics for one lap window. An empty
// window yields nil statistics and zero counts: "no telemetry coverage" is
// not "no activity".
func aggregateWindow(window []model.TelemetrySample) model.LapAggregate {
	if len(window) == 0 {
		return model.LapAggregate{}
	}

	rpm := make([]float64, len(window))
	speed := make([]float64, len(window))
	throttle := make([]float64, len(window))
	gear := make([]float64, len(window))
	agg := model.LapAggregate{}
	for i := range window {
		rpm[i] = window[i].RPM
		speed[i] = window[i].Speed
		throttle[i] = window[i].Throttle
		gear[i] = float64(window[i].Gear)
		if window[i].Brake > 0 {
			agg.BrakeCount++
		}
		if window[i].DRS > 0 {
			agg.DrsCount++
		}
	}

	agg.RpmAvg = ptr(stat.Mean(rpm, nil))
	agg.RpmMin = ptr(floats.Min(rpm))
	agg.RpmMax = ptr(floats.Max(rpm))

	agg.SpeedAvg = ptr(stat.Mean(speed, nil))
	agg.SpeedMedian = ptr(median(speed))
	agg.SpeedMin = ptr(floats.Min(speed))
	agg.SpeedMax = ptr(floats.Max(speed))

	agg.ThrottleAvg = ptr(stat.Mean(throttle, nil))
	agg.ThrottleMin = ptr(floats.Min(throttle))
	agg.ThrottleMax = ptr(floats.Max(throttle))

	agg.GearAvg = ptr(stat.Mean(gear, nil))
	agg.GearMin = ptr(floats.Min(gear))
	agg.GearMax = ptr(floats.Max(gear))
	agg.GearMode = ptr(gearMode(window))

	return agg
}

// gearMode returns the most frequent gear; ties break on the
// first-occurring value.
func gearMode(window []model.TelemetrySample) int {
	counts := make(map[int]int)
	order := make([]int, 0)
	for i := range window {
		g := window[i].Gear
		if counts[g] == 0 {
			order = append(order, g)
		}
		counts[g]++
	}
	mode, best := 0, 0
	for _, g := range order {
		if counts[g] > best {
			mode, best = g, counts[g]
		}
	}
	return mode
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.LinInterp, sorted, nil)
}

func ptr[T any](v T) *T { return &v }
