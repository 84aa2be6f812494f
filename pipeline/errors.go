package pipeline

import (
	"errors"
)

// ErrQueueClosed is returned by the split pipeline's commit task when the
// record queue closes while the run context is still live, meaning the fetch
// task stopped without being cancelled.
var ErrQueueClosed = errors.New("record queue closed")

// PollError wraps a failed broker fetch or a fetch against a closed handle.
type PollError struct {
	Cause error
}

func (e *PollError) Error() string {
	return e.Cause.Error()
}

func (e *PollError) Unwrap() error {
	return e.Cause
}

func NewPollError(cause error) error {
	return &PollError{Cause: cause}
}

func AsPollError(err error) (*PollError, bool) {
	var pe *PollError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// ProcessError wraps a failed Processor call.
type ProcessError struct {
	Cause error
}

func (e *ProcessError) Error() string {
	return e.Cause.Error()
}

func (e *ProcessError) Unwrap() error {
	return e.Cause
}

func NewProcessError(cause error) error {
	return &ProcessError{Cause: cause}
}

func AsProcessError(err error) (*ProcessError, bool) {
	var pe *ProcessError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// CommitError wraps a commit the broker rejected or failed to apply.
type CommitError struct {
	Cause error
}

func (e *CommitError) Error() string {
	return e.Cause.Error()
}

func (e *CommitError) Unwrap() error {
	return e.Cause
}

func NewCommitError(cause error) error {
	return &CommitError{Cause: cause}
}

func AsCommitError(err error) (*CommitError, bool) {
	var ce *CommitError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// Stage names the pipeline step an error belongs to, for logs and metrics.
func Stage(err error) string {
	if _, ok := AsPollError(err); ok {
		return "poll"
	}
	if _, ok := AsProcessError(err); ok {
		return "process"
	}
	if _, ok := AsCommitError(err); ok {
		return "commit"
	}
	if errors.Is(err, ErrQueueClosed) {
		return "queue"
	}
	return "unknown"
}
