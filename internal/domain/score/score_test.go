package score

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"tweetmood/internal/domain/label"
	"tweetmood/internal/domain/pipeline"
)

func warSchema(t *testing.T) label.Schema {
	t.Helper()
	s, err := label.ByName(label.WarEmotions)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestFromMappingCanonicalOrder(t *testing.T) {
	s, _ := label.New("t", []string{"joy", "anger"})
	row, err := FromMapping(map[string]float64{"joy": 0.7, "anger": 0.2}, s)
	if err != nil {
		t.Fatal(err)
	}
	if row[0] != 0.2 || row[1] != 0.7 {
		t.Fatalf("row=%v", row)
	}
}

func TestFromMappingRejectsBadResponses(t *testing.T) {
	s, _ := label.New("t", []string{"joy", "anger"})
	bad := []map[string]float64{
		{"joy": 0.7},
		{"joy": 0.7, "fear": 0.1},
		{"joy": 0.7, "anger": 0.1, "fear": 0.1},
		{"joy": math.NaN(), "anger": 0.1},
	}
	for _, m := range bad {
		if _, err := FromMapping(m, s); !errors.Is(err, pipeline.ErrResponseInvalid) {
			t.Errorf("FromMapping(%v) err=%v", m, err)
		}
	}
}

func TestRowFormatParse(t *testing.T) {
	r := Row{0.1, 0.25, 1e-05}
	line := r.Format()
	if line != "0.1\t0.25\t1e-05" {
		t.Fatalf("Format=%q", line)
	}
	got, err := ParseRow(line, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := range r {
		if got[i] != r[i] {
			t.Fatalf("ParseRow=%v", got)
		}
	}
	if _, err := ParseRow(line, 4); !errors.Is(err, pipeline.ErrRowWidth) {
		t.Fatalf("width err=%v", err)
	}
	if _, err := ParseRow("a\tb\tc", 3); !errors.Is(err, pipeline.ErrInvalidInput) {
		t.Fatalf("parse err=%v", err)
	}
}

func TestAggregateColumnMeanProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		width := 1 + rng.Intn(10)
		n := 1 + rng.Intn(40)
		rows := make([]Row, n)
		for i := range rows {
			rows[i] = make(Row, width)
			for j := range rows[i] {
				rows[i][j] = rng.Float64()
			}
		}

		means, ok := Aggregate(rows, width)
		if !ok {
			t.Fatal("expected data")
		}
		for j := 0; j < width; j++ {
			sum := 0.0
			for i := range rows {
				sum += rows[i][j]
			}
			want := 100 * sum / float64(n)
			if math.Abs(means[j]-want) > 1e-9 {
				t.Fatalf("column %d mean=%v want %v", j, means[j], want)
			}
		}
	}
}

func TestBestIsMaximal(t *testing.T) {
	s := warSchema(t)
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 100; trial++ {
		means := make([]float64, s.Len())
		for i := range means {
			means[i] = float64(rng.Intn(5)) * 10
		}
		lbl, pct := Best(means, s)
		for i, m := range means {
			if m > pct {
				t.Fatalf("label %s (%v) beats winner %s (%v)", s.Label(i), m, lbl, pct)
			}
		}
	}
}

func TestBestTieBreaksOnCanonicalOrder(t *testing.T) {
	s := warSchema(t)
	means := make([]float64, s.Len())
	ji, _ := s.Index("joy")
	si, _ := s.Index("support")
	means[si] = 50
	means[ji] = 50

	lbl, pct := Best(means, s)
	if lbl != "joy" || pct != 50 {
		t.Fatalf("Best=%s,%v want joy,50", lbl, pct)
	}
}

func TestEmptyAggregate(t *testing.T) {
	if _, ok := Aggregate(nil, 10); ok {
		t.Fatal("expected no data")
	}
	s := Summary{Topic: "wojna", Empty: true}
	if s.String() != "'wojna' has no data" {
		t.Fatalf("String=%q", s.String())
	}
}

func TestSummaryString(t *testing.T) {
	s := Summary{Topic: "wojna", Label: "support", Percentage: 90}
	if s.String() != "'wojna' feels 90.0% 'support'" {
		t.Fatalf("String=%q", s.String())
	}
}
