package queue

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KugaChihiro/vr-queue/internal/models"
)

const startMessage = "start_vm_task"

// wireMessage is the JSON body shared with the other producers and consumers of the queue.
type wireMessage struct {
	Project          string `json:"project"`
	ProjectDirectory string `json:"project_Directory"`
	FilePath         string `json:"file_path"`
	ClientID         string `json:"client_id"`
	Message          string `json:"message"`
}

// Encode serializes a descriptor into the queue message body.
func Encode(desc models.JobDescriptor) ([]byte, error) {
	return json.Marshal(wireMessage{
		Project:          desc.Project,
		ProjectDirectory: desc.ProjectDirectory,
		FilePath:         desc.SourceReference,
		ClientID:         desc.ClientID,
		Message:          startMessage,
	})
}

// Decode parses a queue message body. project, project_Directory and file_path are required.
func Decode(body []byte) (models.JobDescriptor, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return models.JobDescriptor{}, fmt.Errorf("%w: empty body", ErrMalformedMessage)
	}

	var w wireMessage
	if err := json.Unmarshal(body, &w); err != nil {
		return models.JobDescriptor{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	var missing []string
	if w.Project == "" {
		missing = append(missing, "project")
	}
	if w.ProjectDirectory == "" {
		missing = append(missing, "project_Directory")
	}
	if w.FilePath == "" {
		missing = append(missing, "file_path")
	}
	if len(missing) > 0 {
		return models.JobDescriptor{}, fmt.Errorf("%w: missing %s", ErrMalformedMessage, strings.Join(missing, ", "))
	}

	return models.JobDescriptor{
		Project:          w.Project,
		ProjectDirectory: w.ProjectDirectory,
		SourceReference:  w.FilePath,
		ClientID:         w.ClientID,
	}, nil
}
