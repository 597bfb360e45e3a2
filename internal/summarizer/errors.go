package summarizer

import "fmt"

// GenerationError reports a failed model call for a single category. It is
// recorded on the section and never fails the whole summary.
type GenerationError struct {
	Category string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s summary: %v", e.Category, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// SummarizationError is returned by Summarize when no result can be produced.
type SummarizationError struct {
	Err error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarize transcript: %v", e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }
