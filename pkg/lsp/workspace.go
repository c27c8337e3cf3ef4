package lsp

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Project is one build-project unit. Options are resolved lazily on first use
// and cached after the first success; edits to member files never retrigger
// project-level resolution, only explicit invalidation does.
type Project struct {
	Path string

	mu   sync.Mutex
	opts *AnalysisOptions
}

// Options resolves the project's analysis options through the analyzer,
// returning the cached value after the first success.
func (p *Project) Options(ctx context.Context, analyzer Analyzer) (*AnalysisOptions, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.opts != nil {
		return p.opts, nil
	}
	opts, err := analyzer.ResolveOptionsForProject(ctx, p.Path)
	if err != nil {
		return nil, err
	}
	for i, f := range opts.SourceFiles {
		opts.SourceFiles[i] = NormalizePath(f)
	}
	p.opts = opts
	return opts, nil
}

// Invalidate drops the cached options so the next use re-resolves them.
func (p *Project) Invalidate() {
	p.mu.Lock()
	p.opts = nil
	p.mu.Unlock()
}

// Workspace owns the session's projects and the file-to-project ownership
// map. Many files belong to one project; a file belonging to none is treated
// as an implicit single-file script project.
type Workspace struct {
	analyzer Analyzer
	bus      *EventBus

	mu       sync.RWMutex
	projects map[string]*Project
	owners   map[string]string // file path -> project path
}

func NewWorkspace(analyzer Analyzer, bus *EventBus) *Workspace {
	return &Workspace{
		analyzer: analyzer,
		bus:      bus,
		projects: map[string]*Project{},
		owners:   map[string]string{},
	}
}

// AddProject registers a project path, creating it if unseen.
func (w *Workspace) AddProject(path string) *Project {
	path = NormalizePath(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.projects[path]
	if !ok {
		p = &Project{Path: path}
		w.projects[path] = p
	}
	return p
}

func (w *Workspace) Project(path string) (*Project, bool) {
	path = NormalizePath(path)
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.projects[path]
	return p, ok
}

// OwnerOf returns the project owning the file, if any.
func (w *Workspace) OwnerOf(file string) (*Project, bool) {
	file = NormalizePath(file)
	w.mu.RLock()
	defer w.mu.RUnlock()
	projPath, ok := w.owners[file]
	if !ok {
		return nil, false
	}
	p, ok := w.projects[projPath]
	return p, ok
}

func (w *Workspace) claimFiles(projPath string, files []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, f := range files {
		w.owners[NormalizePath(f)] = projPath
	}
}

// Load resolves options for every given project concurrently, records file
// ownership, and publishes load-progress events as each project settles.
// Per-project failures are reported through the bus and do not abort the
// load.
func (w *Workspace) Load(ctx context.Context, projectPaths []string) error {
	total := len(projectPaths)
	var loaded atomic.Int32
	eg, ctx := errgroup.WithContext(ctx)
	for _, path := range projectPaths {
		p := w.AddProject(path)
		eg.Go(func() error {
			opts, err := p.Options(ctx, w.analyzer)
			if err == nil {
				w.claimFiles(p.Path, opts.SourceFiles)
			}
			w.bus.Publish(Event{
				Kind: EventWorkspaceLoadProgress,
				File: p.Path,
				Progress: &LoadProgress{
					Project: p.Path,
					Loaded:  int(loaded.Add(1)),
					Total:   total,
					Err:     err,
				},
			})
			return nil
		})
	}
	return eg.Wait()
}
