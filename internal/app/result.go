package app

import "fmt"

// FailureKind classifies where a run died. Only delivery failures bubble up
// as a non-zero exit; everything else is logged and absorbed so the next
// scheduled run gets a clean slate.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureFetch
	FailureParse
	FailureStore
	FailureDelivery
)

func (k FailureKind) String() string {
	switch k {
	case FailureFetch:
		return "fetch"
	case FailureParse:
		return "parse"
	case FailureStore:
		return "store"
	case FailureDelivery:
		return "delivery"
	default:
		return "none"
	}
}

// RunError wraps a run failure with its classification.
type RunError struct {
	Kind FailureKind
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s failure: %v", e.Kind, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// RunResult summarizes one completed run for logging.
type RunResult struct {
	Region   string
	Fetched  int
	NewCount int
	Notified bool
	Skipped  bool
	Degraded bool
}
