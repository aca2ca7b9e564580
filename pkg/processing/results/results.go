package results

import (
	"fmt"

	"github.com/racelab/lapsmith/log"
	"github.com/racelab/lapsmith/pkg/model"
	"github.com/racelab/lapsmith/pkg/processing/timing"
	"github.com/racelab/lapsmith/pkg/refdata"
)

const (
	codeRetired   = "R"
	codeDNF       = "D"
	retiredPosStr = "20"
)

type Extractor struct {
	refs refdata.Lookup
	l    *log.Logger
}

type ExtractorOption func(e *Extractor)

func WithLookup(refs refdata.Lookup) ExtractorOption {
	return func(e *Extractor) {
		e.refs = refs
	}
}

func WithLogger(l *log.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.l = l
	}
}

func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{l: log.Default().Named("results")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract builds the canonical classification table from the provider's
// results, which arrive in the provider's default order (leader first).
// Retired ('R') and mechanical-DNF ('D') codes collapse to the worst
// position; only 'R' sets the retirement flag. The leader's raw time is the
// absolute race time, not a gap, and is forced to exactly 0.
func (e *Extractor) Extract(
	meta model.SessionMeta, raw []model.RawResult,
) ([]model.Result, error) {
	out := make([]model.Result, 0, len(raw))
	for i := range raw {
		r := raw[i]
		res := model.Result{
			DriverAbbr:    r.Abbreviation,
			TeamID:        r.TeamID,
			Country:       meta.Country,
			FinalPosition: r.ClassifiedPosition,
			GridPosition:  r.GridPosition,
			Points:        r.Points,
			Location:      meta.Location,
			Year:          meta.Year,
		}
		switch r.ClassifiedPosition {
		case codeRetired:
			res.Retired = 1
			res.FinalPosition = retiredPosStr
		case codeDNF:
			res.FinalPosition = retiredPosStr
		}
		gap, err := timing.SecondsOr(r.Time, model.RetiredGapSeconds)
		if err != nil {
			return nil, fmt.Errorf("race time for %s: %w", r.Abbreviation, err)
		}
		res.RaceTimeDiff = gap
		if i == 0 {
			res.RaceTimeDiff = 0.0
		}
		if id, ok := e.refs.TrackID(meta.Location); ok {
			res.TrackID = id
		} else {
			e.l.Debug("no track id for location", log.String("location", meta.Location))
			res.TrackID = model.MissingID
		}
		out = append(out, res)
	}
	return out, nil
}
