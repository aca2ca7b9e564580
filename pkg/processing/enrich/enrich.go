package enrich

import (
	"github.com/racelab/lapsmith/log"
	"github.com/racelab/lapsmith/pkg/model"
	"github.com/racelab/lapsmith/pkg/refdata"
)

// ActivePointsThreshold: a driver counts as active when the prior-year
// points exceed this value.
const ActivePointsThreshold = 20.0

type Enricher struct {
	refs            refdata.Lookup
	l               *log.Logger
	priorYearPoints bool
}

type EnricherOption func(e *Enricher)

func WithLookup(refs refdata.Lookup) EnricherOption {
	return func(e *Enricher) {
		e.refs = refs
	}
}

func WithLogger(l *log.Logger) EnricherOption {
	return func(e *Enricher) {
		e.l = l
	}
}

// WithPriorYearPoints enables the prior calendar-year points features for
// driver and team.
func WithPriorYearPoints(enabled bool) EnricherOption {
	return func(e *Enricher) {
		e.priorYearPoints = enabled
	}
}

func NewEnricher(opts ...EnricherOption) *Enricher {
	e := &Enricher{l: log.Default().Named("enrich")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich attaches driver biography and (optionally) prior-year points to
// each result and maps the driver abbreviation to its stable id.
// teamByDriver maps driver id to the team id observed in the lap table and
// feeds the team points lookup. Drivers absent from the biography table are
// skipped, not an error. The outcome-leaking columns (points, race time
// gap, retirement flag) are consumed before this stage's output is joined
// onto lap rows; they never reach the persisted feature table.
func (e *Enricher) Enrich(
	results []model.Result, teamByDriver map[int]int,
) []model.Result {
	out := make([]model.Result, len(results))
	for i := range results {
		res := results[i]

		if bio, ok := e.refs.DriverBio(res.DriverAbbr); ok {
			res.Age = bio.Age
			res.Experience = bio.GPsEntered
			res.Achievements = bio.Points
			if bio.GPsEntered > 0 {
				res.AchievementsByTime = bio.Points / bio.GPsEntered
			}
			res.HasBio = true
		} else {
			e.l.Debug("no biography for driver", log.String("driver", res.DriverAbbr))
		}

		if id, ok := e.refs.DriverID(res.DriverAbbr); ok {
			res.DriverID = id
		} else {
			res.DriverID = model.MissingID
		}

		if e.priorYearPoints {
			e.addPriorYearPoints(&res, teamByDriver)
		}

		out[i] = res
	}
	return out
}

// rookies and new teams have no prior-year record and default to 0
func (e *Enricher) addPriorYearPoints(res *model.Result, teamByDriver map[int]int) {
	if pts, ok := e.refs.DriverPoints(res.Year-1, res.DriverID); ok {
		res.LastYearDriverPoints = pts
	}
	if teamID, ok := teamByDriver[res.DriverID]; ok {
		if pts, ok := e.refs.TeamPoints(res.Year-1, teamID); ok {
			res.LastYearTeamPoints = pts
		}
	}
	if res.LastYearDriverPoints > ActivePointsThreshold {
		res.IsDriverActive = 1
	}
}
