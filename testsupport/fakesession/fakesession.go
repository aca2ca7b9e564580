// Package fakesession provides an in-memory provider.Loader with canned
// session data for pipeline tests.
package fakesession

import (
	"context"
	"fmt"

	"github.com/racelab/lapsmith/pkg/model"
	"github.com/racelab/lapsmith/pkg/provider"
)

// Dur formats elapsed seconds the way the provider serializes durations.
func Dur(seconds float64) string {
	h := int(seconds) / 3600
	seconds -= float64(h * 3600)
	m := int(seconds) / 60
	seconds -= float64(m * 60)
	return fmt.Sprintf("0 days %02d:%02d:%012.9f", h, m, seconds)
}

// Session is a fully in-memory provider.Session.
type Session struct {
	SessionMeta model.SessionMeta
	RawResults  []model.RawResult
	RawLaps     []model.RawLap
	RawWeather  []model.RawWeather
	// Telemetry is keyed by driver abbreviation; a missing key reports
	// provider.ErrDriverTelemetryMissing like the real provider does.
	Telemetry map[string][]model.RawTelemetry

	// ResultsErr, when set, is returned by Results to exercise the
	// orchestrator's session-failure path.
	ResultsErr error
}

var _ provider.Session = (*Session)(nil)

func (s *Session) Meta() model.SessionMeta { return s.SessionMeta }

func (s *Session) Drivers(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, lap := range s.RawLaps {
		if !seen[lap.Driver] {
			seen[lap.Driver] = true
			out = append(out, lap.Driver)
		}
	}
	return out, nil
}

func (s *Session) Results(_ context.Context) ([]model.RawResult, error) {
	if s.ResultsErr != nil {
		return nil, s.ResultsErr
	}
	return s.RawResults, nil
}

func (s *Session) Laps(_ context.Context) ([]model.RawLap, error) {
	return s.RawLaps, nil
}

func (s *Session) Weather(_ context.Context) ([]model.RawWeather, error) {
	return s.RawWeather, nil
}

func (s *Session) CarTelemetry(
	_ context.Context, driver string,
) ([]model.RawTelemetry, error) {
	samples, ok := s.Telemetry[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %s", provider.ErrDriverTelemetryMissing, driver)
	}
	return samples, nil
}

type sessionKey struct {
	Year  int
	Round int
}

// Loader serves registered sessions and counts cache clears.
type Loader struct {
	sessions    map[sessionKey]*Session
	CacheClears int
}

var _ provider.Loader = (*Loader)(nil)

func NewLoader() *Loader {
	return &Loader{sessions: map[sessionKey]*Session{}}
}

func (l *Loader) Add(year, round int, s *Session) *Loader {
	l.sessions[sessionKey{Year: year, Round: round}] = s
	return l
}

func (l *Loader) LoadSession(
	_ context.Context, year, round int, _ model.SessionType,
) (provider.Session, error) {
	s, ok := l.sessions[sessionKey{Year: year, Round: round}]
	if !ok {
		return nil, fmt.Errorf("%w: %d round %d", provider.ErrSessionNotAvailable, year, round)
	}
	return s, nil
}

func (l *Loader) ClearCache(_ context.Context) {
	l.CacheClears++
}

func ptr(v float64) *float64 { return &v }

// SampleRace is a synthetic two-driver race: three laps each, telemetry
// covering only the first two laps of VER and all laps of LEC.
func SampleRace() *Session {
	lap := func(driver string, num int, start, lapTime float64, team string) model.RawLap {
		return model.RawLap{
			LapNumber:    num,
			Driver:       driver,
			LapTime:      Dur(lapTime),
			Compound:     "SOFT",
			TyreLife:     float64(num),
			Stint:        1,
			FreshTyre:    num == 1,
			Team:         team,
			TrackStatus:  "1",
			Position:     ptr(1),
			Sector1Time:  Dur(lapTime / 3),
			Sector2Time:  Dur(lapTime / 3),
			Sector3Time:  Dur(lapTime / 3),
			SpeedI1:      ptr(280),
			SpeedI2:      ptr(290),
			SpeedFL:      ptr(300),
			SpeedST:      ptr(310),
			LapStartTime: Dur(start),
		}
	}
	sample := func(t, rpm, speed float64, gear int) model.RawTelemetry {
		return model.RawTelemetry{
			RPM:         rpm,
			Speed:       speed,
			Gear:        gear,
			Throttle:    80,
			Brake:       false,
			DRS:         0,
			SessionTime: Dur(t),
		}
	}

	return &Session{
		SessionMeta: model.SessionMeta{
			Year: 2023, Round: 16, Location: "Monza", Country: "Italy",
		},
		RawResults: []model.RawResult{
			{
				Abbreviation: "VER", TeamID: "red_bull", CountryCode: "NED",
				ClassifiedPosition: "1", GridPosition: 1,
				Time: "0 days 01:30:00", Points: 25,
			},
			{
				Abbreviation: "LEC", TeamID: "ferrari", CountryCode: "MON",
				ClassifiedPosition: "2", GridPosition: 2,
				Time: "0 days 00:00:05.500000", Points: 18,
			},
		},
		RawLaps: []model.RawLap{
			lap("VER", 1, 100, 90, "Red Bull Racing"),
			lap("VER", 2, 190, 90, "Red Bull Racing"),
			lap("VER", 3, 280, 90, "Red Bull Racing"),
			lap("LEC", 1, 100.5, 90.5, "Ferrari"),
			lap("LEC", 2, 191, 91, "Ferrari"),
			lap("LEC", 3, 282, 92, "Ferrari"),
		},
		RawWeather: []model.RawWeather{
			{Time: Dur(0), AirTemp: 28, TrackTemp: 41, Humidity: 40, Pressure: 1012, WindSpeed: 2},
			{Time: Dur(200), AirTemp: 29, TrackTemp: 43, Humidity: 38, Pressure: 1012, WindSpeed: 3},
			{Time: Dur(400), AirTemp: 29.5, TrackTemp: 44, Humidity: 37, Pressure: 1011, WindSpeed: 3},
		},
		Telemetry: map[string][]model.RawTelemetry{
			"VER": {
				sample(150, 11000, 280, 7),
				sample(190, 11500, 300, 8),
				sample(250, 10500, 260, 6),
				sample(280, 12000, 310, 8),
			},
			"LEC": {
				sample(150, 10800, 275, 7),
				sample(250, 11200, 285, 7),
				sample(340, 11600, 295, 8),
				sample(370, 11900, 305, 8),
			},
		},
	}
}
