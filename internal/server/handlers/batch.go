// internal/server/handlers/batch.go

package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tweetmood/internal/domain/batch"
	"tweetmood/internal/domain/pipeline"
)

type batchResponse struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	TopicID  int    `json:"topic_id"`
	Lines    int    `json:"lines"`
}

// BatchHandler lists the batch files of each stage directory
type BatchHandler struct {
	dirs map[pipeline.Stage]string
}

// NewBatchHandler creates a new batch handler. dirs maps a stage to the
// directory holding its output.
func NewBatchHandler(dirs map[pipeline.Stage]string) *BatchHandler {
	return &BatchHandler{
		dirs: dirs,
	}
}

// ListBatches returns name and line count of every batch file of a stage
func (h *BatchHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	stage := pipeline.Stage(chi.URLParam(r, "stage"))
	path, ok := h.dirs[stage]
	if !ok {
		respondWithError(w, http.StatusNotFound, "Unknown stage", nil)
		return
	}

	dir, err := batch.OpenDir(path)
	if err != nil {
		if errors.Is(err, pipeline.ErrDirMissing) {
			respondWithJSON(w, http.StatusOK, []batchResponse{})
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to open directory", err)
		return
	}

	out := []batchResponse{}
	for f, err := range dir.Files() {
		if err != nil {
			continue
		}
		n, err := batch.CountLines(f.Path)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to read batch", err)
			return
		}
		out = append(out, batchResponse{Name: f.Name, Language: f.Language, TopicID: f.TopicID, Lines: n})
	}

	respondWithJSON(w, http.StatusOK, out)
}
