package watcher

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"imgoptimizer/src/config"
)

// Watcher monitors the input folder for changes to configured source images
type Watcher struct {
	cfg      *config.Config
	watcher  *fsnotify.Watcher
	sources  map[string]bool
	events   chan Event
	delay    time.Duration
	mu       sync.Mutex
	debounce map[string]*time.Timer
	stopped  bool
}

// Event represents a file system event
type Event struct {
	Type     EventType
	FilePath string
}

// EventType represents the type of file event
type EventType int

const (
	EventCreated EventType = iota
	EventModified
	EventDeleted
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// NewWatcher creates a new file watcher
func NewWatcher(cfg *config.Config) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	sources := make(map[string]bool)
	for _, f := range cfg.ProductFiles {
		sources[f.Input] = true
	}
	for _, f := range cfg.LogoFiles {
		sources[f.Input] = true
	}

	return &Watcher{
		cfg:      cfg,
		watcher:  fsWatcher,
		sources:  sources,
		events:   make(chan Event, 100),
		delay:    time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
		debounce: make(map[string]*time.Timer),
	}, nil
}

// Start begins monitoring the input folder
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.cfg.Input); err != nil {
		return fmt.Errorf("failed to watch folder %s: %w", w.cfg.Input, err)
	}
	log.Printf("Watching folder: %s", w.cfg.Input)

	go w.processEvents()

	return nil
}

// processEvents filters fsnotify events down to configured sources
func (w *Watcher) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !w.sources[filepath.Base(event.Name)] {
				continue
			}

			// Editors and copy tools write in several steps
			w.mu.Lock()
			if w.stopped {
				w.mu.Unlock()
				return
			}
			if timer, exists := w.debounce[event.Name]; exists {
				timer.Stop()
			}
			w.debounce[event.Name] = time.AfterFunc(w.delay, func() {
				w.mu.Lock()
				delete(w.debounce, event.Name)
				w.mu.Unlock()
				w.handleEvent(event)
			})
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

// handleEvent converts a single fsnotify event and queues it
func (w *Watcher) handleEvent(event fsnotify.Event) {
	var eventType EventType

	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = EventCreated
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventModified
	case event.Op&fsnotify.Remove == fsnotify.Remove, event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = EventDeleted
	default:
		return // Ignore chmod
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}

	select {
	case w.events <- Event{Type: eventType, FilePath: event.Name}:
	default:
		log.Printf("Event queue full, dropping %s event for %s", eventType, event.Name)
	}
}

// Events returns the event channel
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop stops the watcher and closes the event channel
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	for name, timer := range w.debounce {
		timer.Stop()
		delete(w.debounce, name)
	}
	close(w.events)
	w.mu.Unlock()

	return w.watcher.Close()
}
