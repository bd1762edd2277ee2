package analysis

import "fmt"

// RenderError wraps a provider failure during tile rendering. Render
// failures are never retried.
type RenderError struct {
	Index string
	Cause error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed for %s: %v", e.Index, e.Cause)
}

func (e *RenderError) Unwrap() error { return e.Cause }

// ReduceError wraps a provider failure during region reduction. Reduction
// failures are never retried. A region with no valid pixels is NOT an error;
// it reduces to the N/A value.
type ReduceError struct {
	Index string
	Cause error
}

func (e *ReduceError) Error() string {
	return fmt.Sprintf("reduction failed for %s: %v", e.Index, e.Cause)
}

func (e *ReduceError) Unwrap() error { return e.Cause }
