package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const docSuffix = "_summary.docx"

// DocumentName returns the delivered file name for a source blob name.
func DocumentName(sourceName string) string {
	base := filepath.Base(sourceName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." {
		stem = "recording"
	}
	return stem + docSuffix
}

func (p *implProducer) Render(ctx context.Context, sourceName, summary string) (string, error) {
	if err := os.MkdirAll(p.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create temp dir: %w", ErrRender, err)
	}

	// one directory per render so concurrent jobs with the same stem don't collide
	dir, err := os.MkdirTemp(p.tempDir, "doc-*")
	if err != nil {
		return "", fmt.Errorf("%w: create work dir: %w", ErrRender, err)
	}

	name := DocumentName(sourceName)
	out := filepath.Join(dir, name)
	title := strings.TrimSuffix(name, docSuffix)

	if err := writeDocx(title, summary, out); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}

	p.logger.Info(ctx, "Document written: %s", out)
	return out, nil
}

func (p *implProducer) Cleanup(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.logger.Warn(ctx, "Failed to remove document %s: %v", path, err)
	}
	dir := filepath.Dir(path)
	if filepath.Dir(dir) == filepath.Clean(p.tempDir) {
		_ = os.Remove(dir)
	}
}
