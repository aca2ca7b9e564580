package provider

import (
	"context"
	"errors"

	"github.com/racelab/lapsmith/pkg/model"
)

var (
	// ErrSessionNotAvailable signals that the requested (year, round) has no
	// session. The orchestrator treats this as "calendar exhausted" for the
	// year and moves on.
	ErrSessionNotAvailable = errors.New("session not available")

	// ErrDriverTelemetryMissing signals that the provider has no car data
	// for a driver (e.g. no timed lap). The driver is skipped, not fatal.
	ErrDriverTelemetryMissing = errors.New("no car telemetry for driver")
)

// Session is a loaded session handle. Fetched once, read-only afterward.
type Session interface {
	Meta() model.SessionMeta
	// Drivers returns the abbreviations of all drivers with lap data,
	// in first-seen order.
	Drivers(ctx context.Context) ([]string, error)
	Results(ctx context.Context) ([]model.RawResult, error)
	Laps(ctx context.Context) ([]model.RawLap, error)
	Weather(ctx context.Context) ([]model.RawWeather, error)
	CarTelemetry(ctx context.Context, driver string) ([]model.RawTelemetry, error)
}

// Loader retrieves sessions from the upstream racing-data service.
type Loader interface {
	LoadSession(ctx context.Context, year, round int, st model.SessionType) (Session, error)
	// ClearCache drops any session payloads cached during this run.
	ClearCache(ctx context.Context)
}
