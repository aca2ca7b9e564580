package pipeline

import "github.com/racelab/lapsmith/pkg/model"

// Accumulator collects feature rows across sessions and years. Merge is
// append-only; rows are never rewritten until the final cleanup pass.
type Accumulator struct {
	rows []model.FeatureRow
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

func (a *Accumulator) Append(rows []model.FeatureRow) {
	a.rows = append(a.rows, rows...)
}

// Rows returns the accumulated rows. The slice is shared, not copied;
// callers run after accumulation has finished.
func (a *Accumulator) Rows() []model.FeatureRow {
	return a.rows
}

func (a *Accumulator) Len() int {
	return len(a.rows)
}
