package service

import (
	"errors"
	"fmt"
)

// Extraction failures are terminal for a single extract call; the
// orchestrator decides whether anything is retried.
type ExtractionErrorKind string

const (
	ExtractionUnreachable      ExtractionErrorKind = "unreachable"
	ExtractionTimeout          ExtractionErrorKind = "timeout"
	ExtractionUnparsable       ExtractionErrorKind = "unparsable_response"
	ExtractionProviderRejected ExtractionErrorKind = "provider_rejected"
)

type ExtractionError struct {
	Kind ExtractionErrorKind
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed (%s): %s", e.Kind, e.Err)
	}
	return fmt.Sprintf("extraction failed (%s)", e.Kind)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func NewExtractionError(kind ExtractionErrorKind, err error) *ExtractionError {
	return &ExtractionError{Kind: kind, Err: err}
}

// Ingest errors. PartialSaveFailure is reported through the summary's
// FailedCount instead of an error, so only the fatal two appear here.
var (
	ErrContestResolutionFailed = errors.New("contest resolution failed")
	ErrExtractionFailed        = errors.New("extraction failed")
)

// Decision errors. All recoverable: the item stays in its prior state and
// the reviewer may retry.
var (
	ErrItemNotFound         = errors.New("pending question not found")
	ErrAlreadyProcessed     = errors.New("pending question already processed")
	ErrInvalidAnswerMapping = errors.New("correct answer does not resolve to any option")
	ErrCatalogCommitFailed  = errors.New("catalog commit failed")
	ErrNoActiveSession      = errors.New("no active review session for this reviewer")
	ErrDecisionInFlight     = errors.New("another decision is already being processed")
)
