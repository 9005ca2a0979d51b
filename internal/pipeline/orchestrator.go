package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/KugaChihiro/vr-queue/internal/blobstore"
	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/KugaChihiro/vr-queue/internal/models"
	"github.com/KugaChihiro/vr-queue/internal/transcription"
	"github.com/google/uuid"
)

// Run executes download, extract, transcribe, summarize, render and deliver
// for one descriptor. The source container blob belongs to the run: it is
// deleted once the audio is extracted, or at the end if the run fails earlier.
func (o *implOrchestrator) Run(ctx context.Context, desc models.JobDescriptor) (models.PipelineResult, error) {
	jobID := uuid.NewString()
	ctx = logger.WithFields(ctx, "job_id", jobID)
	if desc.ClientID != "" {
		ctx = logger.WithFields(ctx, "client_id", desc.ClientID)
	}

	startTime := time.Now()
	fail := func(stage Stage, err error) (models.PipelineResult, error) {
		return models.PipelineResult{}, &StageError{Stage: stage, JobID: jobID, Err: err}
	}

	name := desc.BlobName()
	if name == "" {
		return fail(StageDownload, fmt.Errorf("%w: %w: %q", blobstore.ErrDownload, blobstore.ErrInvalidName, desc.SourceReference))
	}

	o.logger.Info(ctx, "Starting job for %s (project %s, directory %s)", name, desc.Project, desc.ProjectDirectory)

	owned := ownedBlobs{}
	owned.add(name)
	defer o.releaseBlobs(ctx, owned)

	// Step 1: Download the recording
	data, err := o.deps.Store.Download(ctx, name)
	if err != nil {
		return fail(StageDownload, err)
	}

	// Step 2: Extract audio, then retire the container blob
	audio, err := o.deps.Extractor.Extract(ctx, models.MediaArtifact{
		Name:  name,
		Bytes: data,
		Kind:  models.ArtifactContainer,
	})
	if err != nil {
		return fail(StageExtract, err)
	}
	o.deleteBlob(ctx, owned, name)

	// Step 3: Upload audio for the speech service
	audioURL, err := o.deps.Store.Upload(ctx, audio.Name, audio.Bytes)
	if err != nil {
		return fail(StageUpload, err)
	}
	owned.add(audio.Name)

	// Step 4: Transcribe
	transcript, err := o.transcribe(ctx, audioURL)
	if err != nil {
		return fail(StageTranscribe, err)
	}
	o.deleteBlob(ctx, owned, audio.Name)

	// Step 5: Summarize
	summary, err := o.deps.Summarizer.Summarize(ctx, transcript)
	if err != nil {
		return fail(StageSummarize, err)
	}

	// Step 6: Render the document
	docPath, err := o.deps.Documents.Render(ctx, name, summary)
	if err != nil {
		return fail(StageRender, err)
	}
	defer o.deps.Documents.Cleanup(ctx, docPath)

	// Step 7: Deliver
	if o.deps.Delivery == nil {
		o.logger.Warn(ctx, "No delivery gateway configured, skipping upload of %s", docPath)
	} else if err := o.deps.Delivery.UploadFile(ctx, desc.Project, desc.ProjectDirectory, docPath); err != nil {
		return fail(StageDeliver, err)
	}

	result := models.PipelineResult{
		Transcript:   transcript,
		Summary:      summary,
		DocumentPath: docPath,
	}

	// Step 8: Notify a waiting client
	o.notify(ctx, desc.ClientID, summary)

	o.logger.Info(ctx, "Job completed in %s", time.Since(startTime).Round(time.Millisecond))
	return result, nil
}

func (o *implOrchestrator) transcribe(ctx context.Context, audioURL string) (string, error) {
	job, err := o.deps.Transcriber.Submit(ctx, transcription.Request{
		MediaURL:        audioURL,
		Language:        o.opts.Language,
		Diarization:     o.opts.Diarization,
		PunctuationMode: o.opts.PunctuationMode,
	})
	if err != nil {
		return "", err
	}
	o.logger.Info(ctx, "Transcription submitted: %s", job.JobURL)

	listingURL, err := o.deps.Transcriber.AwaitCompletion(ctx, job, o.opts.MaxAttempts, o.opts.PollInterval)
	if err != nil {
		return "", err
	}
	return o.deps.Transcriber.FetchResult(ctx, listingURL)
}

func (o *implOrchestrator) notify(ctx context.Context, clientID, summary string) {
	if o.deps.Notifier == nil || clientID == "" {
		return
	}
	sent, err := o.deps.Notifier.Notify(ctx, clientID, summary)
	switch {
	case err != nil:
		o.logger.Warn(ctx, "Failed to notify client: %v", err)
	case !sent:
		o.logger.Debug(ctx, "No channel registered, notification skipped")
	default:
		o.logger.Info(ctx, "Summary pushed to client")
	}
}
