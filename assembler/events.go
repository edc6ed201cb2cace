package assembler

import (
	"sync"
	"time"
)

// EventType represents the type of assembly run event.
type EventType string

const (
	// Run lifecycle events
	EventRunStarted   EventType = "run_started"
	EventRunCompleted EventType = "run_completed"
	EventRunFailed    EventType = "run_failed"

	// Per-file events
	EventFileStarted   EventType = "file_started"
	EventFileCompleted EventType = "file_completed"
	EventFileFailed    EventType = "file_failed"
)

// Event represents an observable run event with typed data.
type Event struct {
	Type      EventType      `json:"type"`
	RunID     string         `json:"run_id"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// EventEmitter manages event listeners and dispatches events.
type EventEmitter struct {
	mu        sync.RWMutex
	listeners []func(Event)
}

// NewEventEmitter creates a new EventEmitter.
func NewEventEmitter() *EventEmitter {
	return &EventEmitter{
		listeners: make([]func(Event), 0),
	}
}

// On registers a listener function to receive events.
// Listeners are called synchronously in registration order.
func (e *EventEmitter) On(listener func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, listener)
}

// Emit dispatches an event to all registered listeners.
func (e *EventEmitter) Emit(event Event) {
	e.mu.RLock()
	listeners := make([]func(Event), len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.RUnlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// ListenerCount returns the number of registered listeners.
func (e *EventEmitter) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}

// RunStartedEvent creates a run_started event.
func RunStartedEvent(runID string, files int, output string) Event {
	return Event{
		Type:      EventRunStarted,
		RunID:     runID,
		Timestamp: time.Now(),
		Data: map[string]any{
			"files":  files,
			"output": output,
		},
	}
}

// RunCompletedEvent creates a run_completed event.
func RunCompletedEvent(runID string, duration time.Duration, tokens int) Event {
	return Event{
		Type:      EventRunCompleted,
		RunID:     runID,
		Timestamp: time.Now(),
		Data: map[string]any{
			"duration_ms": duration.Milliseconds(),
			"tokens":      tokens,
		},
	}
}

// RunFailedEvent creates a run_failed event.
func RunFailedEvent(runID string, err string, duration time.Duration) Event {
	return Event{
		Type:      EventRunFailed,
		RunID:     runID,
		Timestamp: time.Now(),
		Data: map[string]any{
			"error":       err,
			"duration_ms": duration.Milliseconds(),
		},
	}
}

// FileStartedEvent creates a file_started event.
func FileStartedEvent(runID, path string, index int) Event {
	return Event{
		Type:      EventFileStarted,
		RunID:     runID,
		Timestamp: time.Now(),
		Data: map[string]any{
			"path":  path,
			"index": index,
		},
	}
}

// FileCompletedEvent creates a file_completed event.
func FileCompletedEvent(runID, path string, tokens int, duration time.Duration) Event {
	return Event{
		Type:      EventFileCompleted,
		RunID:     runID,
		Timestamp: time.Now(),
		Data: map[string]any{
			"path":        path,
			"tokens":      tokens,
			"duration_ms": duration.Milliseconds(),
		},
	}
}

// FileFailedEvent creates a file_failed event.
func FileFailedEvent(runID, path string, err string) Event {
	return Event{
		Type:      EventFileFailed,
		RunID:     runID,
		Timestamp: time.Now(),
		Data: map[string]any{
			"path":  path,
			"error": err,
		},
	}
}
