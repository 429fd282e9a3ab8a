package logging

import (
	"path/filepath"
	"testing"

	"streamspot/config"
)

func TestNewNeverReturnsNil(t *testing.T) {
	levels := []string{"debug", "info", "warn", "error", "unknown"}
	for _, level := range levels {
		l := New(config.LogConfig{Level: level, Format: "json", Output: "stdout"})
		if l == nil {
			t.Errorf("New(level=%s) returned nil", level)
		}
	}
}

func TestNewTextFormatStderr(t *testing.T) {
	l := New(config.LogConfig{Level: "debug", Format: "text", Output: "stderr"})
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streamspot.log")
	l := New(config.LogConfig{Level: "info", Format: "json", Output: "file", FilePath: path})
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	l.Info("test message")
}

func TestNewFileOutputInvalidDirFallsBackToStdout(t *testing.T) {
	l := New(config.LogConfig{Level: "info", Format: "json", Output: "file", FilePath: "/nonexistent/deeply/nested/dir/test.log"})
	if l == nil {
		t.Error("expected non-nil logger even with an invalid path")
	}
}
