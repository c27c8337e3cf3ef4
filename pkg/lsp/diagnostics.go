package lsp

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// DiagnosticList is the current set of diagnostics for one file, merged
// across sources (the primary check plus any background analyzers). Each
// source's contribution is replaced whole when that source reruns.
type DiagnosticList struct {
	lock     sync.RWMutex
	bySource map[string][]Diagnostic
	resultID string
}

func newDiagnosticList() *DiagnosticList {
	return &DiagnosticList{
		bySource: map[string][]Diagnostic{},
	}
}

func (dl *DiagnosticList) SetSource(source string, diagnostics []Diagnostic) {
	dl.lock.Lock()
	defer dl.lock.Unlock()
	dl.bySource[source] = slices.Clone(diagnostics)
	dl.resultID = uuid.NewString()
}

func (dl *DiagnosticList) Get(prevResultID ...string) (diagnostics []Diagnostic, resultID string, unchanged bool) {
	dl.lock.RLock()
	defer dl.lock.RUnlock()
	if len(prevResultID) == 1 && dl.resultID != "" && dl.resultID == prevResultID[0] {
		return []Diagnostic{}, dl.resultID, true
	}
	for _, ds := range dl.bySource {
		diagnostics = append(diagnostics, ds...)
	}
	return diagnostics, dl.resultID, false
}

func (dl *DiagnosticList) Clear() {
	dl.lock.Lock()
	defer dl.lock.Unlock()
	dl.bySource = map[string][]Diagnostic{}
	dl.resultID = uuid.NewString()
}

// DiagnosticHandler accumulates diagnostics per file and republishes the
// merged set on the bus whenever any source changes.
type DiagnosticHandler struct {
	bus *EventBus

	mu    sync.RWMutex
	lists map[string]*DiagnosticList
}

func NewDiagnosticHandler(bus *EventBus) *DiagnosticHandler {
	return &DiagnosticHandler{
		bus:   bus,
		lists: map[string]*DiagnosticList{},
	}
}

func (dr *DiagnosticHandler) listFor(path string) *DiagnosticList {
	dr.mu.Lock()
	defer dr.mu.Unlock()
	dl, ok := dr.lists[path]
	if !ok {
		dl = newDiagnosticList()
		dr.lists[path] = dl
	}
	return dl
}

// Publish replaces one source's diagnostics for the file and emits a
// DiagnosticsPublished event carrying the merged set.
func (dr *DiagnosticHandler) Publish(path, source string, version int32, diagnostics []Diagnostic) {
	path = NormalizePath(path)
	dl := dr.listFor(path)
	dl.SetSource(source, diagnostics)
	merged, _, _ := dl.Get()
	dr.bus.Publish(Event{
		Kind:        EventDiagnosticsPublished,
		File:        path,
		Version:     version,
		Analyzer:    source,
		Diagnostics: merged,
	})
}

// GetForPath returns the merged diagnostics for a file. When the caller's
// previous result ID still matches, the unchanged flag short-circuits the
// response.
func (dr *DiagnosticHandler) GetForPath(path string, prevResultID ...string) ([]Diagnostic, string, bool) {
	path = NormalizePath(path)
	dr.mu.RLock()
	dl, ok := dr.lists[path]
	dr.mu.RUnlock()
	if !ok {
		return []Diagnostic{}, "", false
	}
	return dl.Get(prevResultID...)
}

func (dr *DiagnosticHandler) ClearForPath(path string) {
	path = NormalizePath(path)
	dr.mu.RLock()
	dl, ok := dr.lists[path]
	dr.mu.RUnlock()
	if !ok {
		return
	}
	dl.Clear()
	dr.bus.Publish(Event{
		Kind: EventDiagnosticsPublished,
		File: path,
	})
}
