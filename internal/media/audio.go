package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KugaChihiro/vr-queue/internal/models"
)

// Extract writes the container to an isolated temp dir, runs ffmpeg and reads
// back a 16-bit PCM WAV. The temp dir is removed before returning.
func (e *implExtractor) Extract(ctx context.Context, container models.MediaArtifact) (models.MediaArtifact, error) {
	if len(container.Bytes) == 0 {
		return models.MediaArtifact{}, fmt.Errorf("%w: %s is empty", ErrExtraction, container.Name)
	}

	workDir, err := os.MkdirTemp(e.opts.TempDir, "extract-*")
	if err != nil {
		return models.MediaArtifact{}, fmt.Errorf("%w: create temp dir: %w", ErrExtraction, err)
	}
	defer e.cleanupDir(ctx, workDir)

	inputName := "input" + strings.ToLower(filepath.Ext(container.Name))
	inputPath := filepath.Join(workDir, inputName)
	if err := os.WriteFile(inputPath, container.Bytes, 0o644); err != nil {
		return models.MediaArtifact{}, fmt.Errorf("%w: stage input: %w", ErrExtraction, err)
	}

	audioName := AudioName(container.Name)
	outputPath := filepath.Join(workDir, "output.wav")

	e.logger.Info(ctx, "Extracting audio: %s -> %s", container.Name, audioName)

	// -vn drops video, -ar/-ac set rate and channel count, pcm_s16le keeps it uncompressed
	args := []string{
		"-i", inputPath,
		"-vn",
		"-ar", strconv.Itoa(e.opts.SampleRate),
		"-ac", strconv.Itoa(e.opts.Channels),
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		outputPath,
	}

	if _, err := e.executor.ExecuteInDir(ctx, workDir, e.opts.BinaryPath, args...); err != nil {
		return models.MediaArtifact{}, fmt.Errorf("%w: ffmpeg: %w", ErrExtraction, err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return models.MediaArtifact{}, fmt.Errorf("%w: read output: %w", ErrExtraction, err)
	}
	if len(data) == 0 {
		return models.MediaArtifact{}, fmt.Errorf("%w: ffmpeg produced no audio", ErrExtraction)
	}

	e.logger.Info(ctx, "Audio extracted successfully: %s (%d bytes)", audioName, len(data))
	return models.MediaArtifact{
		Name:  audioName,
		Bytes: data,
		Kind:  models.ArtifactAudio,
	}, nil
}

// AudioName derives the audio artifact name from a container name.
func AudioName(containerName string) string {
	base := filepath.Base(containerName)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".wav"
}

// cleanupDir removes the working directory, logs warning if fails
func (e *implExtractor) cleanupDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		e.logger.Warn(ctx, "Failed to cleanup temp dir %s: %v", dir, err)
	}
}
