package weather

import (
	"fmt"
	"sort"

	"github.com/racelab/lapsmith/pkg/model"
	"github.com/racelab/lapsmith/pkg/processing/timing"
)

// BuildTable converts raw weather samples into a session-time indexed table
// sorted ascending. The timestamp is an absolute session-clock column, so no
// fill is applied; samples without a timestamp are unusable for the as-of
// join and are dropped.
func BuildTable(raw []model.RawWeather) ([]model.Weather, error) {
	out := make([]model.Weather, 0, len(raw))
	for i := range raw {
		ts, err := timing.SecondsOpt(raw[i].Time)
		if err != nil {
			return nil, fmt.Errorf("weather sample %d: %w", i, err)
		}
		if ts == nil {
			continue
		}
		w := model.Weather{
			SessionTime:   *ts,
			AirTemp:       raw[i].AirTemp,
			Humidity:      raw[i].Humidity,
			Pressure:      raw[i].Pressure,
			TrackTemp:     raw[i].TrackTemp,
			WindDirection: raw[i].WindDirection,
			WindSpeed:     raw[i].WindSpeed,
		}
		if raw[i].Rainfall {
			w.Rainfall = 1
		}
		out = append(out, w)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SessionTime < out[j].SessionTime
	})
	return out, nil
}

// Nearest returns the sample whose session time is closest to t (as-of
// nearest match, not interval containment). Ties prefer the earlier sample.
// ok is false when the table is empty.
func Nearest(table []model.Weather, t float64) (model.Weather, bool) {
	if len(table) == 0 {
		return model.Weather{}, false
	}
	idx := sort.Search(len(table), func(i int) bool {
		return table[i].SessionTime >= t
	})
	if idx == 0 {
		return table[0], true
	}
	if idx == len(table) {
		return table[len(table)-1], true
	}
	before, after := table[idx-1], table[idx]
	if t-before.SessionTime <= after.SessionTime-t {
		return before, true
	}
	return after, true
}
