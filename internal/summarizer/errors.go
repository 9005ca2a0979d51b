package summarizer

import "errors"

var (
	// ErrSummarization is returned when the language model call fails or returns nothing.
	ErrSummarization = errors.New("summarization failed")

	// ErrEmptyTranscript is returned when there is nothing to summarize.
	ErrEmptyTranscript = errors.New("transcript is empty")
)
