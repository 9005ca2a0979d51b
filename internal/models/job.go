package models

import (
	"net/url"
	"path"
	"strings"
)

// JobDescriptor is the unit of work handed from ingestion to the worker.
type JobDescriptor struct {
	Project          string
	ProjectDirectory string
	SourceReference  string
	ClientID         string
}

// BlobName resolves SourceReference to a blob name. URLs keep only their last
// path segment, unescaped once. Bare names are returned as is.
func (d JobDescriptor) BlobName() string {
	ref := strings.TrimSpace(d.SourceReference)
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && (u.Host != "" || u.Scheme == "file") {
		// u.Path is already decoded
		ref = u.Path
	}
	name := path.Base(ref)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// ArtifactKind distinguishes the original upload from the extracted audio.
type ArtifactKind string

const (
	ArtifactContainer ArtifactKind = "container"
	ArtifactAudio     ArtifactKind = "audio"
)

// MediaArtifact is an intermediate blob that only lives for one pipeline run.
type MediaArtifact struct {
	Name  string
	Bytes []byte
	Kind  ArtifactKind
}

// TranscriptionStatus mirrors the remote job states.
type TranscriptionStatus string

const (
	TranscriptionNotStarted TranscriptionStatus = "NotStarted"
	TranscriptionRunning    TranscriptionStatus = "Running"
	TranscriptionSucceeded  TranscriptionStatus = "Succeeded"
	TranscriptionFailed     TranscriptionStatus = "Failed"
	TranscriptionCancelled  TranscriptionStatus = "Cancelled"
)

// Terminal reports whether no further status change is expected.
func (s TranscriptionStatus) Terminal() bool {
	switch s {
	case TranscriptionSucceeded, TranscriptionFailed, TranscriptionCancelled:
		return true
	default:
		return false
	}
}

// TranscriptionJob is a submitted speech job.
type TranscriptionJob struct {
	JobURL    string
	Status    TranscriptionStatus
	ResultURL string
}

// PipelineResult is produced once per successful run.
type PipelineResult struct {
	Transcript   string
	Summary      string
	DocumentPath string
}
