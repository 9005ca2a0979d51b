package summarizer

import "context"

// Summarizer turns a transcript into a markdown summary.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}
