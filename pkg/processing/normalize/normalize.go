package normalize

import (
	"strconv"

	"github.com/samber/lo"

	"github.com/racelab/lapsmith/log"
	"github.com/racelab/lapsmith/pkg/model"
)

// MaxPlausibleLaps caps the lap count of a (year, location, driver) group.
// No race distance comes close; larger groups indicate duplicated or
// corrupted upstream data and are discarded wholesale.
const MaxPlausibleLaps = 80

const withdrawnCode = "W"

// Normalizer runs the final cleanup and the cross-sectional field-baseline
// transform over the fully accumulated dataset.
type Normalizer struct {
	l       *log.Logger
	metrics []string
}

type NormalizerOption func(n *Normalizer)

func WithLogger(l *log.Logger) NormalizerOption {
	return func(n *Normalizer) {
		n.l = l
	}
}

// WithMetrics overrides the column list taking part in the field-baseline
// transform. Defaults to model.BaselineMetrics.
func WithMetrics(metrics []string) NormalizerOption {
	return func(n *Normalizer) {
		n.metrics = metrics
	}
}

func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		l:       log.Default().Named("normalize"),
		metrics: model.BaselineMetrics,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Finalize cleans the accumulated rows and converts absolute metrics into
// deltas from the per (year, location) field average. The input order is
// preserved for surviving rows.
func (n *Normalizer) Finalize(rows []model.FeatureRow) []model.FeatureRow {
	rows = n.dropUncovered(rows)
	n.castFinalPositions(rows)
	rows = n.dropImplausibleGroups(rows)
	n.applyFieldBaselines(rows)
	return rows
}

// rows without any telemetry coverage carry no signal
func (n *Normalizer) dropUncovered(rows []model.FeatureRow) []model.FeatureRow {
	kept := lo.Filter(rows, func(r model.FeatureRow, _ int) bool {
		return r.Agg.HasCoverage()
	})
	if dropped := len(rows) - len(kept); dropped > 0 {
		n.l.Debug("dropped rows without telemetry coverage", log.Int("rows", dropped))
	}
	return kept
}

// castFinalPositions collapses the withdrawal code to the worst-position
// sentinel and casts the textual position to its integer form. Non-race
// sessions have no castable value; those rows keep the raw text.
func (n *Normalizer) castFinalPositions(rows []model.FeatureRow) {
	for i := range rows {
		res := &rows[i].Result
		if res.FinalPosition == withdrawnCode {
			res.FinalPosition = strconv.Itoa(model.RetiredPosition)
			continue
		}
		if _, err := strconv.Atoi(res.FinalPosition); err != nil {
			n.l.Debug("final position not castable",
				log.String("driver", res.DriverAbbr),
				log.String("position", res.FinalPosition),
				log.Int("year", res.Year),
				log.String("location", res.Location))
		}
	}
}

type driverGroup struct {
	Year     int
	Location string
	DriverID int
}

type fieldGroup struct {
	Year     int
	Location string
}

func (n *Normalizer) dropImplausibleGroups(rows []model.FeatureRow) []model.FeatureRow {
	counts := lo.CountValuesBy(rows, groupOf)
	kept := lo.Filter(rows, func(r model.FeatureRow, _ int) bool {
		return counts[groupOf(r)] <= MaxPlausibleLaps
	})
	for g, c := range counts {
		if c > MaxPlausibleLaps {
			n.l.Warn("discarding implausible lap group",
				log.Int("year", g.Year),
				log.String("location", g.Location),
				log.Int("driver", g.DriverID),
				log.Int("laps", c))
		}
	}
	return kept
}

func groupOf(r model.FeatureRow) driverGroup {
	return driverGroup{
		Year:     r.Result.Year,
		Location: r.Result.Location,
		DriverID: r.Result.DriverID,
	}
}

// applyFieldBaselines computes, per (year, location), the mean of every
// baseline metric across non pit-affected laps of the whole field, then
// subtracts it from every lap at that event, pit laps included. Null
// aggregate values stay null and take no part in either side.
func (n *Normalizer) applyFieldBaselines(rows []model.FeatureRow) {
	type acc struct {
		sum   float64
		count int
	}
	sums := map[fieldGroup]map[string]*acc{}

	for i := range rows {
		if rows[i].PitAffected() {
			continue
		}
		g := fieldGroupOf(rows[i])
		byMetric, ok := sums[g]
		if !ok {
			byMetric = make(map[string]*acc, len(n.metrics))
			sums[g] = byMetric
		}
		for _, m := range n.metrics {
			v, ok := rows[i].Metric(m)
			if !ok {
				continue
			}
			a, ok := byMetric[m]
			if !ok {
				a = &acc{}
				byMetric[m] = a
			}
			a.sum += v
			a.count++
		}
	}

	for i := range rows {
		byMetric, ok := sums[fieldGroupOf(rows[i])]
		if !ok {
			// every lap of the event was pit-affected, keep absolutes
			continue
		}
		for _, m := range n.metrics {
			a, ok := byMetric[m]
			if !ok || a.count == 0 {
				continue
			}
			v, ok := rows[i].Metric(m)
			if !ok {
				continue
			}
			rows[i].SetMetric(m, v-a.sum/float64(a.count))
		}
	}
}

func fieldGroupOf(r model.FeatureRow) fieldGroup {
	return fieldGroup{Year: r.Result.Year, Location: r.Result.Location}
}
