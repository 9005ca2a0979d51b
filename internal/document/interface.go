package document

import "context"

// Producer renders a summary into a local docx file.
type Producer interface {
	// Render writes <stem>_summary.docx for the given source name and returns its path.
	Render(ctx context.Context, sourceName, summary string) (string, error)
	// Cleanup removes a file returned by Render.
	Cleanup(ctx context.Context, path string)
}
