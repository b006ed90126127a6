// internal/domain/pipeline/event.go

package pipeline

import (
	"fmt"
	"time"
)

// Stage names one step of the pipeline
type Stage string

const (
	StageCollect   Stage = "collect"
	StageTranslate Stage = "translate"
	StageClassify  Stage = "classify"
	StageSummarize Stage = "summarize"
)

// Event status values
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Event describes progress of a stage, one per batch file or per run
type Event struct {
	RunID  string    `json:"run_id"`
	Stage  Stage     `json:"stage"`
	File   string    `json:"file,omitempty"`
	Lines  int       `json:"lines"`
	Status string    `json:"status"`
	Error  string    `json:"error,omitempty"`
	Time   time.Time `json:"time"`

	// Summary is set on summarize events
	Summary map[string]interface{} `json:"summary,omitempty"`
}

// Publisher delivers stage events to an event bus
type Publisher interface {
	// PublishFile reports the outcome of one batch file
	PublishFile(e Event) error

	// PublishCompleted reports the end of a stage run
	PublishCompleted(e Event) error
}

// SubjectPrefix is the root of all pipeline event subjects
const SubjectPrefix = "pipeline"

// FileSubject returns the subject for per-file events of a stage
func FileSubject(stage Stage) string {
	return fmt.Sprintf("%s.%s.file", SubjectPrefix, stage)
}

// CompletedSubject returns the subject for run completion events of a stage
func CompletedSubject(stage Stage) string {
	return fmt.Sprintf("%s.%s.completed", SubjectPrefix, stage)
}

// NopPublisher drops every event
type NopPublisher struct{}

// PublishFile implements Publisher
func (NopPublisher) PublishFile(Event) error { return nil }

// PublishCompleted implements Publisher
func (NopPublisher) PublishCompleted(Event) error { return nil }
