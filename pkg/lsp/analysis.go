package lsp

import (
	"sync"
)

// Freshness describes how a cached result relates to the document store's
// current version of the file.
type Freshness int

const (
	ResultMissing Freshness = iota
	ResultStale
	ResultFresh
)

func (f Freshness) String() string {
	switch f {
	case ResultStale:
		return "stale"
	case ResultFresh:
		return "fresh"
	default:
		return "missing"
	}
}

// AnalysisCache holds, per file, the most recent completed analysis result
// and the version it corresponds to. Staleness relative to the document store
// is a first-class, checkable condition, not an assumption.
//
// The cache also carries the completion side caches: a declaration index by
// display name and a help-text map by symbol name. Both are single-generation;
// each new completion-triggering analysis replaces the previous generation
// entirely, because the entries are only meaningful with respect to the most
// recent symbol list offered to the editor.
type AnalysisCache struct {
	docs *DocumentStore

	mu      sync.RWMutex
	results map[string]*AnalysisResult

	declMu       sync.RWMutex
	declarations map[string]Declaration
	helpText     map[string]string
}

func NewAnalysisCache(docs *DocumentStore) *AnalysisCache {
	return &AnalysisCache{
		docs:         docs,
		results:      map[string]*AnalysisResult{},
		declarations: map[string]Declaration{},
		helpText:     map[string]string{},
	}
}

// Put stores the result for its file, superseding any previous result. The
// entry is replaced whole, never merged.
func (c *AnalysisCache) Put(res *AnalysisResult) {
	path := NormalizePath(res.File)
	c.mu.Lock()
	c.results[path] = res
	c.mu.Unlock()
}

// Evict drops the cached result for a file. Closing a file evicts it so a
// later reopen, whose version numbering restarts, can never be served a
// result from the previous session.
func (c *AnalysisCache) Evict(path string) {
	path = NormalizePath(path)
	c.mu.Lock()
	delete(c.results, path)
	c.mu.Unlock()
}

// GetIfFresh returns the cached result only if its version matches the
// document store's current version for the file. Handlers that must never act
// on a stale answer use this and wait otherwise.
func (c *AnalysisCache) GetIfFresh(path string) (*AnalysisResult, Freshness) {
	path = NormalizePath(path)
	c.mu.RLock()
	res, ok := c.results[path]
	c.mu.RUnlock()
	if !ok {
		return nil, ResultMissing
	}
	version, err := c.docs.GetVersion(path)
	if err != nil || res.Version != version {
		return nil, ResultStale
	}
	return res, ResultFresh
}

// GetMostRecent returns the cached result regardless of staleness. Handlers
// that prefer some answer over no answer during active typing use this.
func (c *AnalysisCache) GetMostRecent(path string) (*AnalysisResult, bool) {
	path = NormalizePath(path)
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.results[path]
	return res, ok
}

// SetDeclarations replaces the completion side caches with a new generation
// built from the given declarations. Help text carries over only for symbols
// present in the new generation.
func (c *AnalysisCache) SetDeclarations(decls []Declaration) {
	next := make(map[string]Declaration, len(decls))
	for _, d := range decls {
		next[d.DisplayName] = d
	}
	c.declMu.Lock()
	c.declarations = next
	c.helpText = map[string]string{}
	c.declMu.Unlock()
}

// LookupDeclaration resolves a display name offered to the editor by the most
// recent completion response.
func (c *AnalysisCache) LookupDeclaration(displayName string) (Declaration, bool) {
	c.declMu.RLock()
	defer c.declMu.RUnlock()
	d, ok := c.declarations[displayName]
	return d, ok
}

// LookupHelp returns previously computed help text for a symbol name.
func (c *AnalysisCache) LookupHelp(name string) (string, bool) {
	c.declMu.RLock()
	defer c.declMu.RUnlock()
	h, ok := c.helpText[name]
	return h, ok
}

// RecordHelp remembers help text for a symbol name within the current
// completion generation.
func (c *AnalysisCache) RecordHelp(name, text string) {
	c.declMu.Lock()
	c.helpText[name] = text
	c.declMu.Unlock()
}
