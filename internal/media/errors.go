package media

import "errors"

var (
	// ErrExtraction is returned when the audio track cannot be produced.
	ErrExtraction = errors.New("audio extraction failed")
)
