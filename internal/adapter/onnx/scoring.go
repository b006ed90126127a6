// internal/adapter/onnx/scoring.go

package onnx

import (
	"fmt"
	"math"
	"strings"
)

// Hypothesis fills the template placeholder with a candidate label
func Hypothesis(template, label string) string {
	if !strings.Contains(template, "{}") {
		return fmt.Sprintf("%s %s", template, label)
	}
	return strings.Replace(template, "{}", label, 1)
}

// softmax returns a numerically stable softmax of xs
func softmax(xs []float64) []float64 {
	if len(xs) == 0 {
		return nil
	}

	hi := xs[0]
	for _, x := range xs[1:] {
		if x > hi {
			hi = x
		}
	}

	out := make([]float64, len(xs))
	sum := 0.0
	for i, x := range xs {
		out[i] = math.Exp(x - hi)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// EntailmentScores turns NLI logits, one row per (premise, hypothesis) pair,
// into label scores. In single-label mode the entailment logits compete across
// labels and the scores sum to one. In multi-label mode each label is scored
// independently from its contradiction and entailment logits.
func EntailmentScores(logits [][]float32, entail, contra int, multiLabel bool) ([]float64, error) {
	for i, row := range logits {
		if entail >= len(row) || contra >= len(row) || entail < 0 || contra < 0 {
			return nil, fmt.Errorf("logits row %d has %d classes, need indexes %d and %d", i, len(row), entail, contra)
		}
	}

	if !multiLabel {
		xs := make([]float64, len(logits))
		for i, row := range logits {
			xs[i] = float64(row[entail])
		}
		return softmax(xs), nil
	}

	out := make([]float64, len(logits))
	for i, row := range logits {
		p := softmax([]float64{float64(row[contra]), float64(row[entail])})
		out[i] = p[1]
	}
	return out, nil
}
