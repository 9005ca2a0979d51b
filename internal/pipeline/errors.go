package pipeline

import "fmt"

// Stage names a step of the run.
type Stage string

const (
	StageDownload   Stage = "download"
	StageExtract    Stage = "extract"
	StageUpload     Stage = "upload"
	StageTranscribe Stage = "transcribe"
	StageSummarize  Stage = "summarize"
	StageRender     Stage = "render"
	StageDeliver    Stage = "deliver"
)

// StageError records which stage of which job failed. The wrapped error keeps
// the package sentinel (blobstore.ErrDownload, transcription.ErrJobTimeout, ...).
type StageError struct {
	Stage Stage
	JobID string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("job %s: %s: %v", e.JobID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
