package laps

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/racelab/lapsmith/log"
	"github.com/racelab/lapsmith/pkg/model"
	"github.com/racelab/lapsmith/pkg/processing/timing"
	"github.com/racelab/lapsmith/pkg/refdata"
)

type Builder struct {
	refs refdata.Lookup
	l    *log.Logger
}

type BuilderOption func(b *Builder)

func WithLookup(refs refdata.Lookup) BuilderOption {
	return func(b *Builder) {
		b.refs = refs
	}
}

func WithLogger(l *log.Logger) BuilderOption {
	return func(b *Builder) {
		b.l = l
	}
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{l: log.Default().Named("laps")}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build produces the canonical per-lap table for every driver in a session.
// Times are normalized with zero fill, identifiers are mapped through the
// reference tables (a miss yields the missing id, never an error) and the
// result is sorted by session time, which the telemetry aggregator's single
// forward sweep depends on.
func (b *Builder) Build(raw []model.RawLap) ([]model.Lap, error) {
	out := make([]model.Lap, 0, len(raw))
	for i := range raw {
		lap, err := b.buildOne(&raw[i])
		if err != nil {
			return nil, fmt.Errorf("lap %d of %s: %w", raw[i].LapNumber, raw[i].Driver, err)
		}
		out = append(out, lap)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SessionTime < out[j].SessionTime
	})
	return out, nil
}

//nolint:cyclop // column-by-column normalization
func (b *Builder) buildOne(raw *model.RawLap) (model.Lap, error) {
	lap := model.Lap{
		LapNumber: raw.LapNumber,
		TyreLife:  raw.TyreLife,
		Stint:     raw.Stint,
	}

	var err error
	if lap.LapTime, err = timing.SecondsOr(raw.LapTime, 0); err != nil {
		return lap, err
	}
	if lap.Sector1Time, err = timing.SecondsOr(raw.Sector1Time, 0); err != nil {
		return lap, err
	}
	if lap.Sector2Time, err = timing.SecondsOr(raw.Sector2Time, 0); err != nil {
		return lap, err
	}
	if lap.Sector3Time, err = timing.SecondsOr(raw.Sector3Time, 0); err != nil {
		return lap, err
	}
	if lap.SessionTime, err = timing.SecondsOr(raw.LapStartTime, 0); err != nil {
		return lap, err
	}
	if lap.PitInTime, err = timing.SecondsOr(raw.PitInTime, 0); err != nil {
		return lap, err
	}
	if lap.PitOutTime, err = timing.SecondsOr(raw.PitOutTime, 0); err != nil {
		return lap, err
	}

	lap.SpeedI1 = orZero(raw.SpeedI1)
	lap.SpeedI2 = orZero(raw.SpeedI2)
	lap.SpeedFL = orZero(raw.SpeedFL)
	lap.SpeedST = orZero(raw.SpeedST)

	if raw.Position != nil {
		lap.Position = *raw.Position
	} else {
		lap.Position = model.UnknownRacePosition
	}

	if raw.FreshTyre {
		lap.FreshTyre = 1
	}

	lap.DriverID = b.mapID(b.refs.DriverID, raw.Driver, "driver")
	lap.TeamID = b.mapID(b.refs.TeamID, raw.Team, "team")
	lap.CompoundID = b.mapID(b.refs.CompoundID, raw.Compound, "compound")
	lap.TrackStatus = b.trackStatus(raw.TrackStatus)

	return lap, nil
}

func (b *Builder) mapID(lookup func(string) (int, bool), key, kind string) int {
	if id, ok := lookup(key); ok {
		return id
	}
	b.l.Debug("unmapped reference value",
		log.String("kind", kind), log.String("value", key))
	return model.MissingID
}

// empty-string status means "not reported"; anything else is a numeric
// provider code mapped through the reference table
func (b *Builder) trackStatus(raw string) int {
	if raw == "" {
		return model.MissingID
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		b.l.Debug("unparsable track status", log.String("value", raw))
		return model.MissingID
	}
	if id, ok := b.refs.TrackStatusID(code); ok {
		return id
	}
	return model.MissingID
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
