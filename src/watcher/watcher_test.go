package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"imgoptimizer/src/config"
)

func newTestWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()

	inputDir := filepath.Join(t.TempDir(), "images")
	if err := os.MkdirAll(inputDir, 0755); err != nil {
		t.Fatalf("Failed to create folder: %v", err)
	}

	cfg := config.Default()
	cfg.Input = inputDir
	cfg.Watch.DebounceMS = 50

	w, err := NewWatcher(cfg)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}

	if err := w.Start(); err != nil {
		w.Stop()
		t.Fatalf("Failed to start watcher: %v", err)
	}

	return w, inputDir
}

func TestWatcher(t *testing.T) {
	w, inputDir := newTestWatcher(t)
	defer w.Stop()

	// Write a configured source file and wait for event
	testFile := filepath.Join(inputDir, "03.jpg")
	if err := os.WriteFile(testFile, []byte("not really a jpeg"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	// Could be Create or Write depending on OS
	select {
	case event := <-w.Events():
		if event.Type != EventCreated && event.Type != EventModified {
			t.Errorf("Expected EventCreated or EventModified, got %v", event.Type)
		}
		if event.FilePath != testFile {
			t.Errorf("Expected filepath %s, got %s", testFile, event.FilePath)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for event")
	}

	// Remove file
	if err := os.Remove(testFile); err != nil {
		t.Fatalf("Failed to remove test file: %v", err)
	}

	select {
	case event := <-w.Events():
		if event.Type != EventDeleted {
			t.Errorf("Expected EventDeleted, got %v", event.Type)
		}
	case <-time.After(2 * time.Second):
		t.Error("Timeout waiting for delete event")
	}
}

func TestWatcherIgnoresUnconfiguredFiles(t *testing.T) {
	w, inputDir := newTestWatcher(t)
	defer w.Stop()

	for _, name := range []string{"notes.txt", "99.jpg"} {
		if err := os.WriteFile(filepath.Join(inputDir, name), []byte("test"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	// Should NOT receive event
	select {
	case event := <-w.Events():
		t.Errorf("Should not receive event for unconfigured file, got: %v", event)
	case <-time.After(500 * time.Millisecond):
		// Expected - no event received
	}
}

func TestWatcherStop(t *testing.T) {
	w, _ := newTestWatcher(t)

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if _, ok := <-w.Events(); ok {
		t.Error("Expected event channel to be closed")
	}

	// Stopping twice is harmless
	if err := w.Stop(); err != nil {
		t.Errorf("Second Stop failed: %v", err)
	}
}

func TestWatcherMissingInput(t *testing.T) {
	cfg := config.Default()
	cfg.Input = filepath.Join(t.TempDir(), "does-not-exist")

	w, err := NewWatcher(cfg)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err == nil {
		t.Error("Expected error watching a missing folder")
	}
}
