package ingestion

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported media format")
	ErrMissingField      = errors.New("missing required field")
)
