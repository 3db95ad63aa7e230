// Package flow implements the stateful form flows behind the landing page
// modals: the three-step enrollment, the single-step contact form, and the
// shared submission pipeline.
package flow

import (
	"context"
	"errors"
	"time"

	"github.com/gamedev-academy/academy/internal/form"
	"github.com/gamedev-academy/academy/internal/model"
)

var (
	// ErrValidation means the final gate found invalid fields; the caller
	// shows the per-field errors.
	ErrValidation = errors.New("form has validation errors")
	// ErrSubmissionInFlight enforces at most one in-flight submission per flow.
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	// ErrWrongStep means Submit was called away from the final step.
	ErrWrongStep = errors.New("submission is only reachable from the final step")
)

// Submitter performs the remote part of the submission pipeline.
type Submitter interface {
	Submit(ctx context.Context, f model.Flow, values form.Values) error
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, f model.Flow, values form.Values) error

func (fn SubmitterFunc) Submit(ctx context.Context, f model.Flow, values form.Values) error {
	return fn(ctx, f, values)
}

// Simulated stands in for the remote endpoint: it waits the configured
// latency and succeeds. There is no real backend behind the landing page.
type Simulated struct {
	Latency time.Duration
}

func (s Simulated) Submit(ctx context.Context, _ model.Flow, _ form.Values) error {
	if s.Latency <= 0 {
		return nil
	}
	select {
	case <-time.After(s.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmissionLog is the append-only record sink. *store.Store satisfies it.
type SubmissionLog interface {
	AppendSubmission(rec model.SubmissionRecord) error
}
