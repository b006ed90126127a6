// internal/domain/score/aggregate.go

package score

import (
	"fmt"

	"tweetmood/internal/domain/label"
)

// Accumulator keeps running column sums so score files can be streamed
type Accumulator struct {
	sums []float64
	rows int
}

// NewAccumulator creates an accumulator for rows of the given width
func NewAccumulator(width int) *Accumulator {
	return &Accumulator{sums: make([]float64, width)}
}

// Add folds one row into the sums. The row must have the accumulator width.
func (a *Accumulator) Add(r Row) {
	for i, v := range r {
		a.sums[i] += v
	}
	a.rows++
}

// Rows returns the number of rows added
func (a *Accumulator) Rows() int { return a.rows }

// Means returns per-column means scaled to percentages.
// ok is false when no row was added.
func (a *Accumulator) Means() (means []float64, ok bool) {
	if a.rows == 0 {
		return nil, false
	}
	means = make([]float64, len(a.sums))
	for i, s := range a.sums {
		means[i] = 100 * (s / float64(a.rows))
	}
	return means, true
}

// Aggregate computes per-column percentage means over rows
func Aggregate(rows []Row, width int) ([]float64, bool) {
	acc := NewAccumulator(width)
	for _, r := range rows {
		acc.Add(r)
	}
	return acc.Means()
}

// Best selects the label with the strictly highest mean. Columns are visited
// in canonical order and only a strictly greater value replaces the current
// winner, so ties go to the lowest label name.
func Best(means []float64, schema label.Schema) (string, float64) {
	best := 0
	for i := 1; i < len(means); i++ {
		if means[i] > means[best] {
			best = i
		}
	}
	return schema.Label(best), means[best]
}

// MeansByLabel pairs percentage means with their schema labels
func MeansByLabel(means []float64, schema label.Schema) map[string]float64 {
	out := make(map[string]float64, len(means))
	for i, m := range means {
		out[schema.Label(i)] = m
	}
	return out
}

// Summary is the aggregation result of one score file
type Summary struct {
	File       string  `json:"file"`
	Language   string  `json:"language"`
	TopicID    int     `json:"topic_id"`
	Topic      string  `json:"topic"`
	Label      string  `json:"label,omitempty"`
	Percentage float64 `json:"percentage"`
	Rows       int     `json:"rows"`
	Empty      bool    `json:"empty"`

	// Means maps every label to its percentage mean
	Means map[string]float64 `json:"means,omitempty"`
}

// String renders the human readable summary line
func (s Summary) String() string {
	if s.Empty {
		return fmt.Sprintf("'%s' has no data", s.Topic)
	}
	return fmt.Sprintf("'%s' feels %.1f%% '%s'", s.Topic, s.Percentage, s.Label)
}
