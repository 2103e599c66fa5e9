package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSinkSave(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSink(dir, "take1.wav")

	data := []byte{'R', 'I', 'F', 'F', 1, 2, 3, 4}
	path, err := s.Save(data)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if path != filepath.Join(dir, "take1.wav") {
		t.Errorf("Unexpected path: %s", path)
	}

	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if !bytes.Equal(written, data) {
		t.Error("Saved content does not match input")
	}

	// No temporary file left behind
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file was not cleaned up")
	}
}

func TestFileSinkDefaults(t *testing.T) {
	s := NewFileSink("", "")

	if s.dir != "." {
		t.Errorf("Expected default directory '.', got %s", s.dir)
	}
	if s.name != DefaultFileName {
		t.Errorf("Expected default name %s, got %s", DefaultFileName, s.name)
	}
}

func TestFileSinkOverwrite(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSink(dir, "take1.wav")

	if _, err := s.Save([]byte("first")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	path, err := s.Save([]byte("second"))
	if err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if string(written) != "second" {
		t.Errorf("Expected overwritten content, got %q", written)
	}
}

func TestFileSinkMissingDirectory(t *testing.T) {
	s := NewFileSink("/nonexistent/recordings", "take1.wav")

	if _, err := s.Save([]byte("data")); err == nil {
		t.Error("Expected error for missing directory")
	}
}
