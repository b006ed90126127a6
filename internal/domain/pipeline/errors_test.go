package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, CodeUnknown},
		{"canceled", fmt.Errorf("wrap: %w", context.Canceled), CodeCancel},
		{"deadline", context.DeadlineExceeded, CodeCancel},
		{"rate", fmt.Errorf("search: %w", ErrRateLimited), CodeBudget},
		{"protocol", fmt.Errorf("decode: %w", ErrResponseInvalid), CodeProtocol},
		{"width", ErrRowWidth, CodeInvariant},
		{"schema", ErrSchemaMismatch, CodeInvariant},
		{"dir", ErrDirMissing, CodeInvariant},
		{"path", &os.PathError{Op: "open", Path: "x", Err: os.ErrNotExist}, CodeIO},
		{"plain", errors.New("boom"), CodeUnknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Errorf("%s: Classify=%s want %s", tc.name, got, tc.want)
		}
	}
}

func TestSubjects(t *testing.T) {
	if got := FileSubject(StageTranslate); got != "pipeline.translate.file" {
		t.Fatalf("FileSubject=%q", got)
	}
	if got := CompletedSubject(StageSummarize); got != "pipeline.summarize.completed" {
		t.Fatalf("CompletedSubject=%q", got)
	}
}
