package sink

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultFileName is the filename convention for finished recordings.
	DefaultFileName = "recording_16k.wav"

	// MIMEType is the media type of the emitted container.
	MIMEType = "audio/wav"
)

// FileSink writes finished containers into a directory.
type FileSink struct {
	dir  string
	name string
}

// NewFileSink creates a sink for the given directory and filename. Empty
// arguments fall back to the current directory and DefaultFileName.
func NewFileSink(dir, name string) *FileSink {
	if dir == "" {
		dir = "."
	}
	if name == "" {
		name = DefaultFileName
	}

	return &FileSink{dir: dir, name: name}
}

// Save writes the container to disk and returns the final path. The write
// goes through a temporary file and a rename so a partially written
// recording never appears under the final name.
func (s *FileSink) Save(data []byte) (string, error) {
	path := filepath.Join(s.dir, s.name)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write recording: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize recording file: %w", err)
	}

	return path, nil
}
