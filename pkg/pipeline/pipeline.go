package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/racelab/lapsmith/log"
	"github.com/racelab/lapsmith/pkg/model"
	"github.com/racelab/lapsmith/pkg/processing/enrich"
	"github.com/racelab/lapsmith/pkg/processing/laps"
	"github.com/racelab/lapsmith/pkg/processing/results"
	"github.com/racelab/lapsmith/pkg/processing/telemetry"
	"github.com/racelab/lapsmith/pkg/processing/weather"
	"github.com/racelab/lapsmith/pkg/provider"
	"github.com/racelab/lapsmith/pkg/refdata"
)

// DefaultMaxRounds bounds the per-year round probe. Calendars top out well
// below this; the provider signals the real end of the calendar.
const DefaultMaxRounds = 25

// Pipeline composes the per-session processing stages and drives the
// year -> round iteration. Sessions are processed strictly one at a time.
type Pipeline struct {
	loader      provider.Loader
	refs        refdata.Lookup
	l           *log.Logger
	cooldown    time.Duration
	maxRound    int
	priorPoints bool

	results  *results.Extractor
	laps     *laps.Builder
	agg      *telemetry.Aggregator
	enricher *enrich.Enricher
}

type Option func(p *Pipeline)

func WithLoader(loader provider.Loader) Option {
	return func(p *Pipeline) {
		p.loader = loader
	}
}

func WithLookup(refs refdata.Lookup) Option {
	return func(p *Pipeline) {
		p.refs = refs
	}
}

func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) {
		p.l = l
	}
}

// WithCooldown sets the fixed delay inserted after every processed
// session, respecting upstream rate limits.
func WithCooldown(d time.Duration) Option {
	return func(p *Pipeline) {
		p.cooldown = d
	}
}

func WithMaxRounds(n int) Option {
	return func(p *Pipeline) {
		p.maxRound = n
	}
}

func WithPriorYearPoints(enabled bool) Option {
	return func(p *Pipeline) {
		p.priorPoints = enabled
	}
}

func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		refs:     refdata.Default(),
		l:        log.Default().Named("pipeline"),
		maxRound: DefaultMaxRounds,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.results = results.NewExtractor(results.WithLookup(p.refs))
	p.laps = laps.NewBuilder(laps.WithLookup(p.refs))
	p.agg = telemetry.NewAggregator()
	p.enricher = enrich.NewEnricher(
		enrich.WithLookup(p.refs),
		enrich.WithPriorYearPoints(p.priorPoints))
	return p
}

// Run processes every race of every requested year in order and appends
// the resulting rows to acc. After each year completes, checkpoint is
// called (when non-nil) so the orchestrating command can persist partial
// progress; a crash then loses at most one year.
func (p *Pipeline) Run(
	ctx context.Context,
	years []int,
	acc *Accumulator,
	checkpoint func(year int, acc *Accumulator) error,
) error {
	for _, year := range years {
		if err := p.runYear(ctx, year, acc); err != nil {
			return err
		}
		if checkpoint != nil {
			if err := checkpoint(year, acc); err != nil {
				return fmt.Errorf("checkpoint for %d: %w", year, err)
			}
		}
	}
	return nil
}

func (p *Pipeline) runYear(ctx context.Context, year int, acc *Accumulator) error {
	for round := 1; round <= p.maxRound; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := p.ProcessSession(ctx, year, round)
		switch {
		case errors.Is(err, provider.ErrSessionNotAvailable):
			// the year's calendar is exhausted
			p.l.Info("no more sessions",
				log.Int("year", year), log.Int("round", round))
			return nil
		case err != nil:
			// the session's data is left out, the run continues
			p.l.Warn("session failed",
				log.Int("year", year), log.Int("round", round), log.ErrorField(err))
		default:
			acc.Append(rows)
			p.l.Info("session processed",
				log.Int("year", year), log.Int("round", round),
				log.Int("rows", len(rows)), log.Int("total", acc.Len()))
		}
		// session payloads are large, drop them before the next round
		p.loader.ClearCache(ctx)
		if err := p.sleep(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ProcessSession turns one race into its per-lap feature rows: extract
// results, build the lap and weather tables, aggregate telemetry per
// driver, enrich and join.
func (p *Pipeline) ProcessSession(
	ctx context.Context, year, round int,
) ([]model.FeatureRow, error) {
	sess, err := p.loader.LoadSession(ctx, year, round, model.SessionRace)
	if err != nil {
		return nil, err
	}
	meta := sess.Meta()

	rawResults, err := sess.Results(ctx)
	if err != nil {
		return nil, fmt.Errorf("results: %w", err)
	}
	resultTable, err := p.results.Extract(meta, rawResults)
	if err != nil {
		return nil, fmt.Errorf("results: %w", err)
	}

	rawLaps, err := sess.Laps(ctx)
	if err != nil {
		return nil, fmt.Errorf("laps: %w", err)
	}
	lapTable, err := p.laps.Build(rawLaps)
	if err != nil {
		return nil, fmt.Errorf("laps: %w", err)
	}

	rawWeather, err := sess.Weather(ctx)
	if err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}
	weatherTable, err := weather.BuildTable(rawWeather)
	if err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}

	resultTable = p.enricher.Enrich(resultTable, teamsByDriver(lapTable))
	resultByDriver := make(map[int]model.Result, len(resultTable))
	for _, res := range resultTable {
		resultByDriver[res.DriverID] = res
	}

	drivers, err := sess.Drivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("drivers: %w", err)
	}

	var rows []model.FeatureRow
	for _, abbr := range drivers {
		driverRows, err := p.processDriver(ctx, sess, abbr, lapTable, weatherTable, resultByDriver)
		if err != nil {
			return nil, err
		}
		rows = append(rows, driverRows...)
	}
	p.l.Debug("session assembled",
		log.Int("year", meta.Year),
		log.String("location", meta.Location),
		log.Int("rows", len(rows)))
	return rows, nil
}

func (p *Pipeline) processDriver(
	ctx context.Context,
	sess provider.Session,
	abbr string,
	lapTable []model.Lap,
	weatherTable []model.Weather,
	resultByDriver map[int]model.Result,
) ([]model.FeatureRow, error) {
	driverID, ok := p.refs.DriverID(abbr)
	if !ok {
		// without a stable id the lap and result rows cannot be joined
		p.l.Warn("unknown driver, skipping", log.String("driver", abbr))
		return nil, nil
	}
	driverLaps := make([]model.Lap, 0, len(lapTable))
	for _, lap := range lapTable {
		if lap.DriverID == driverID {
			driverLaps = append(driverLaps, lap)
		}
	}
	if len(driverLaps) == 0 {
		return nil, nil
	}

	rawTel, err := sess.CarTelemetry(ctx, abbr)
	if errors.Is(err, provider.ErrDriverTelemetryMissing) {
		p.l.Info("no car telemetry, skipping driver", log.String("driver", abbr))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("telemetry for %s: %w", abbr, err)
	}
	samples, err := telemetry.NormalizeSamples(rawTel)
	if err != nil {
		return nil, fmt.Errorf("telemetry for %s: %w", abbr, err)
	}

	aggByLap := make(map[int]model.LapAggregate, len(driverLaps))
	for _, agg := range p.agg.AggregateDriver(driverLaps, samples) {
		aggByLap[agg.LapNumber] = agg
	}

	rows := make([]model.FeatureRow, 0, len(driverLaps))
	for _, lap := range driverLaps {
		row := model.FeatureRow{
			Lap:    lap,
			Agg:    model.LapAggregate{LapNumber: lap.LapNumber},
			Result: resultByDriver[driverID],
		}
		// left join: every lap row survives even without an aggregate
		if agg, ok := aggByLap[lap.LapNumber]; ok {
			row.Agg = agg
		}
		if w, ok := weather.Nearest(weatherTable, lap.SessionTime); ok {
			row.Weather = w
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// teamsByDriver picks each driver's team id from the lap table, first
// occurrence wins. The classification table only carries the provider's
// team name, which the points lookup does not key on.
func teamsByDriver(lapTable []model.Lap) map[int]int {
	teams := make(map[int]int)
	for _, lap := range lapTable {
		if lap.DriverID == model.MissingID {
			continue
		}
		if _, ok := teams[lap.DriverID]; !ok {
			teams[lap.DriverID] = lap.TeamID
		}
	}
	return teams
}

func (p *Pipeline) sleep(ctx context.Context) error {
	if p.cooldown <= 0 {
		return nil
	}
	t := time.NewTimer(p.cooldown)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
