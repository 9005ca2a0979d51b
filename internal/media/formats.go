package media

import (
	"path/filepath"
	"strings"
)

var supportedContainers = []string{".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v", ".flv"}

// SupportedContainer reports whether name has an extension ffmpeg is expected to demux.
func SupportedContainer(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, format := range supportedContainers {
		if ext == format {
			return true
		}
	}
	return false
}

// SupportedContainers lists the accepted extensions.
func SupportedContainers() []string {
	out := make([]string, len(supportedContainers))
	copy(out, supportedContainers)
	return out
}
