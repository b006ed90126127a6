// internal/domain/pipeline/errors.go

package pipeline

import (
	"context"
	"errors"
	"net"
	"os"
)

// Common errors
var (
	// ErrDirMissing is returned when a stage input directory does not exist.
	ErrDirMissing = errors.New("batch directory missing")

	// ErrResponseInvalid marks a collaborator response that cannot be used.
	ErrResponseInvalid = errors.New("invalid collaborator response")

	// ErrRateLimited marks an upstream 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidInput marks a request rejected before or by the upstream (4xx).
	ErrInvalidInput = errors.New("invalid input")

	// ErrRowWidth marks a score row whose width differs from the label schema.
	ErrRowWidth = errors.New("score row width mismatch")

	// ErrSchemaMismatch marks a results directory written with another label schema.
	ErrSchemaMismatch = errors.New("label schema mismatch")

	// ErrNoModel is returned when no model is configured for a language.
	ErrNoModel = errors.New("no model for language")
)

// Code is a coarse error category used for log fields.
type Code string

const (
	CodeUnknown   Code = "unknown"
	CodeNetwork   Code = "network"
	CodeProtocol  Code = "protocol"
	CodeInvariant Code = "invariant"
	CodeBudget    Code = "budget"
	CodeCancel    Code = "cancel"
	CodeIO        Code = "io"
)

// Classify maps an error to a Code using sentinels and standard error types only.
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}

	// Cancellation wins over everything else
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}

	if errors.Is(err, ErrRateLimited) {
		return CodeBudget
	}

	if errors.Is(err, ErrResponseInvalid) {
		return CodeProtocol
	}

	if errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrRowWidth) ||
		errors.Is(err, ErrSchemaMismatch) ||
		errors.Is(err, ErrNoModel) ||
		errors.Is(err, ErrDirMissing) {
		return CodeInvariant
	}

	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}

	var nerr net.Error
	if errors.As(err, &nerr) {
		return CodeNetwork
	}

	return CodeUnknown
}
