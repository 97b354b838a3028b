package feed

import "fmt"

// FetchError means every candidate source was exhausted without producing
// items. The run aborts on it, after the best-effort failure summary.
type FetchError struct {
	Region   string
	Attempts int
	Err      error // the last per-source failure, possibly a *ParseError
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("all %d trend sources for %s failed: %v", e.Attempts, e.Region, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means one source answered with a payload we could not decode.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed payload from %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
