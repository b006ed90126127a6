// internal/server/handlers/summary.go

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"tweetmood/internal/domain/pipeline"
	"tweetmood/internal/domain/score"
)

// SummarySource lists the latest summary of every batch
type SummarySource interface {
	Summaries(ctx context.Context) ([]score.Summary, error)
}

// SummarySourceFunc adapts a function to SummarySource
type SummarySourceFunc func(ctx context.Context) ([]score.Summary, error)

// Summaries implements SummarySource
func (f SummarySourceFunc) Summaries(ctx context.Context) ([]score.Summary, error) {
	return f(ctx)
}

type summaryResponse struct {
	score.Summary
	Line string `json:"line"`
}

// SummaryHandler serves aggregation results
type SummaryHandler struct {
	source SummarySource
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(source SummarySource) *SummaryHandler {
	return &SummaryHandler{
		source: source,
	}
}

// ListSummaries returns every summary, optionally filtered by ?lang=
func (h *SummaryHandler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	lang := strings.ToLower(r.URL.Query().Get("lang"))

	summaries, err := h.source.Summaries(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrDirMissing):
			respondWithError(w, http.StatusNotFound, "No results yet", nil)
		case errors.Is(err, pipeline.ErrSchemaMismatch):
			respondWithError(w, http.StatusConflict, "Results use another label schema", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to get summaries", err)
		}
		return
	}

	out := make([]summaryResponse, 0, len(summaries))
	for _, s := range summaries {
		if lang != "" && s.Language != lang {
			continue
		}
		out = append(out, summaryResponse{Summary: s, Line: s.String()})
	}

	respondWithJSON(w, http.StatusOK, out)
}
