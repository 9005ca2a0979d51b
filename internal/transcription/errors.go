package transcription

import "errors"

var (
	// ErrSubmission is returned when the service does not acknowledge job creation.
	ErrSubmission = errors.New("transcription submission failed")

	// ErrJobFailed is returned when the job ends Failed or Cancelled.
	ErrJobFailed = errors.New("transcription job failed")

	// ErrJobTimeout is returned when the attempt budget is exhausted.
	ErrJobTimeout = errors.New("transcription job timed out")

	// ErrResultUnavailable is returned when the result listing or content is empty or malformed.
	ErrResultUnavailable = errors.New("transcription result unavailable")

	// ErrStatus is returned when a single status check fails.
	ErrStatus = errors.New("transcription status check failed")
)
