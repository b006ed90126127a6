// internal/domain/score/row.go

package score

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"tweetmood/internal/domain/label"
	"tweetmood/internal/domain/pipeline"
)

// Row holds one score per schema label, in canonical label order
type Row []float64

// FromMapping orders a label->score mapping into a Row. The mapping must
// cover exactly the schema labels with finite values.
func FromMapping(scores map[string]float64, schema label.Schema) (Row, error) {
	if len(scores) != schema.Len() {
		return nil, fmt.Errorf("%w: got %d scores for %d labels", pipeline.ErrResponseInvalid, len(scores), schema.Len())
	}

	row := make(Row, schema.Len())
	for i, l := range schema.Labels() {
		v, ok := scores[l]
		if !ok {
			return nil, fmt.Errorf("%w: missing score for label %q", pipeline.ErrResponseInvalid, l)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite score for label %q", pipeline.ErrResponseInvalid, l)
		}
		row[i] = v
	}
	return row, nil
}

// Format renders the row as tab-separated values without label names
func (r Row) Format() string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, "\t")
}

// ParseRow parses a score line. Any whitespace separates columns.
func ParseRow(line string, width int) (Row, error) {
	fields := strings.Fields(line)
	if len(fields) != width {
		return nil, fmt.Errorf("%w: %d columns, schema has %d", pipeline.ErrRowWidth, len(fields), width)
	}

	row := make(Row, width)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %v: %w", i, err, pipeline.ErrInvalidInput)
		}
		row[i] = v
	}
	return row, nil
}
