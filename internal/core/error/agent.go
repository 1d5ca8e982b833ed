package errx

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the orchestration run. Callers discriminate with
// errors.Is; only these kinds escape a run, everything else is absorbed
// locally (classifier ambiguity, per-tool failures, session reads).
var (
	// ErrReasoningStep marks a failed reasoning model call. Not recoverable
	// within a run.
	ErrReasoningStep = errors.New("reasoning step failed")

	// ErrSessionWrite marks a failed turn persist. The session keeps its
	// previous state; the caller must see this rather than a silent drop.
	ErrSessionWrite = errors.New("session write failed")

	// ErrLoopNonConvergence marks a run whose agent loop exceeded the
	// configured iteration bound without producing a final answer.
	ErrLoopNonConvergence = errors.New("agent loop exceeded iteration bound")
)

// WrapReasoning tags a reasoning model failure.
func WrapReasoning(err error) error {
	if err == nil {
		return nil
	}
	return New(errors.Join(ErrReasoningStep, err), http.StatusBadGateway, ReasoningErrorMessage)
}

// WrapSessionWrite tags a failed session persist.
func WrapSessionWrite(err error) error {
	if err == nil {
		return nil
	}
	return New(errors.Join(ErrSessionWrite, err), http.StatusBadGateway, SessionWriteErrorMessage)
}

// NonConvergence builds the error returned when the agent loop hits its
// iteration bound.
func NonConvergence(iterations int) error {
	return New(ErrLoopNonConvergence, http.StatusInternalServerError,
		fmt.Sprintf("%s after %d iterations", LoopErrorMessage, iterations))
}
