package lsp

import (
	"sync"
)

type EventKind int

const (
	EventFileParsed EventKind = iota
	EventFileChecked
	EventDiagnosticsPublished
	EventRequestCancelled
	EventWorkspaceLoadProgress
	EventBackgroundAnalysisFailed
)

func (k EventKind) String() string {
	switch k {
	case EventFileParsed:
		return "fileParsed"
	case EventFileChecked:
		return "fileChecked"
	case EventDiagnosticsPublished:
		return "diagnosticsPublished"
	case EventRequestCancelled:
		return "requestCancelled"
	case EventWorkspaceLoadProgress:
		return "workspaceLoadProgress"
	case EventBackgroundAnalysisFailed:
		return "backgroundAnalysisFailed"
	default:
		return "unknown"
	}
}

// Event is one side-effecting notification flowing from the dispatcher to
// transport adapters.
type Event struct {
	Kind        EventKind
	File        string
	Version     int32
	Diagnostics []Diagnostic
	// Analyzer is set for background analysis events.
	Analyzer string
	// Reason is set for cancellation and failure events.
	Reason string
	// Progress is set for workspace load events.
	Progress *LoadProgress
}

type LoadProgress struct {
	Project string
	Loaded  int
	Total   int
	Err     error
}

type EventHandler func(Event)

// EventBus fans events out to all current subscribers synchronously, with no
// persistence or replay. Events for a single file published by a single
// operation reach a given subscriber in the order emitted; there is no
// cross-file ordering. Subscribers must not block the publishing path for
// long.
type EventBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{
		subs: map[int]EventHandler{},
	}
}

// Subscribe registers a handler and returns a function that removes it.
func (b *EventBus) Subscribe(h EventHandler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = h
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *EventBus) Publish(e Event) {
	if e.File != "" {
		e.File = NormalizePath(e.File)
	}
	b.mu.RLock()
	handlers := make([]EventHandler, 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()
	for _, h := range handlers {
		h(e)
	}
}
