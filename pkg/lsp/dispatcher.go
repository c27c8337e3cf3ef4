package lsp

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	gsync "github.com/kralicky/gpkg/sync"
	"github.com/kralicky/tools-lite/gopls/pkg/protocol"
)

// Dispatcher is the request/response orchestration core. It owns the
// document store, analysis cache, cancellation registry, and notification
// bus, and drives the analyzer on behalf of request handlers.
//
// Per-file ordering: registering a request cancels all older in-flight work
// for the same file, and a superseded operation's eventual completion is
// discarded before it can reach the cache. Operations on distinct files are
// fully independent.
type Dispatcher struct {
	analyzer   Analyzer
	docs       *DocumentStore
	cache      *AnalysisCache
	registry   *CancelRegistry
	checked    *checkedVersionQueue
	bus        *EventBus
	diags      *DiagnosticHandler
	workspace  *Workspace
	background []BackgroundAnalyzer
	settings   atomic.Pointer[Settings]

	inflightChecks gsync.Map[string, time.Time]
}

type DispatcherOption func(*Dispatcher)

// WithBackgroundAnalyzers registers the secondary analyzers kicked off after
// every successful check.
func WithBackgroundAnalyzers(analyzers ...BackgroundAnalyzer) DispatcherOption {
	return func(d *Dispatcher) {
		d.background = append(d.background, analyzers...)
	}
}

func NewDispatcher(analyzer Analyzer, opts ...DispatcherOption) *Dispatcher {
	docs := NewDocumentStore()
	bus := NewEventBus()
	d := &Dispatcher{
		analyzer:  analyzer,
		docs:      docs,
		cache:     NewAnalysisCache(docs),
		registry:  NewCancelRegistry(),
		checked:   newCheckedVersionQueue(),
		bus:       bus,
		diags:     NewDiagnosticHandler(bus),
		workspace: NewWorkspace(analyzer, bus),
	}
	d.settings.Store(&Settings{})
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Documents() *DocumentStore       { return d.docs }
func (d *Dispatcher) Cache() *AnalysisCache           { return d.cache }
func (d *Dispatcher) Bus() *EventBus                  { return d.bus }
func (d *Dispatcher) Diagnostics() *DiagnosticHandler { return d.diags }
func (d *Dispatcher) Workspace() *Workspace           { return d.workspace }

func (d *Dispatcher) Settings() *Settings {
	return d.settings.Load()
}

func (d *Dispatcher) ApplySettings(s *Settings) {
	d.settings.Store(s)
	if level, ok := ParseLogLevel(s.LogLevel); ok {
		GlobalAtomicLeveler.SetLevel(level)
	}
}

// Check analyzes the file at its current content and version, superseding
// any in-flight work for the same file. This is the Parse operation; edits
// schedule it, and explicit parse requests call it directly.
func (d *Dispatcher) Check(ctx context.Context, file string) (*AnalysisResult, error) {
	file = NormalizePath(file)
	tok := d.registry.Register(ctx, file)
	return d.checkWithToken(tok, file)
}

func (d *Dispatcher) checkWithToken(tok *Token, file string) (*AnalysisResult, error) {
	// The token is handed off to the background passes on success; every
	// other exit releases it so the registry does not hold spent handles.
	handedOff := false
	defer func() {
		if !handedOff {
			d.registry.Release(tok)
		}
	}()

	fs, err := d.docs.GetOrReadFromDisk(file)
	if err != nil {
		return nil, err
	}
	opts, err := d.optionsFor(tok.Ctx(), fs)
	if err != nil {
		if IsCancelled(err) {
			return nil, d.cancelled(file, err)
		}
		return nil, err
	}

	d.inflightChecks.Store(file, time.Now())
	res, err := d.analyzer.ParseAndCheck(tok.Ctx(), file, fs.Version, fs.Lines, opts)
	if start, ok := d.inflightChecks.LoadAndDelete(file); ok {
		slog.Debug("checked", "file", file, "version", fs.Version, "took", time.Since(start))
	}
	if err != nil {
		if IsCancelled(err) {
			return nil, d.cancelled(file, err)
		}
		return nil, &AnalysisError{File: file, Err: err}
	}
	// A newer request may have registered while the analyzer was running;
	// its result, not ours, is the one allowed to land in the cache.
	if tok.Cancelled() {
		return nil, d.cancelled(file, context.Canceled)
	}
	res.File = file
	res.Version = fs.Version
	d.cache.Put(res)
	d.bus.Publish(Event{Kind: EventFileParsed, File: file, Version: fs.Version})
	d.bus.Publish(Event{Kind: EventFileChecked, File: file, Version: fs.Version})
	d.checked.Notify(file, fs.Version)
	d.diags.Publish(file, "check", fs.Version, res.Diagnostics)
	handedOff = true
	d.startBackgroundAnalyses(tok, res, fs.Lines)
	return res, nil
}

// CheckInBackground schedules an idle-triggered reanalysis. Failures and
// cancellations surface only through the bus, never back to the caller.
func (d *Dispatcher) CheckInBackground(ctx context.Context, file string) {
	go func() {
		if _, err := d.Check(ctx, file); err != nil && !IsCancelled(err) {
			slog.Debug("background check failed", "file", file, "error", err)
			d.bus.Publish(Event{
				Kind:     EventBackgroundAnalysisFailed,
				File:     file,
				Analyzer: "check",
				Reason:   err.Error(),
			})
		}
	}()
}

// CancelPending cancels all in-flight work for the file without starting
// anything new.
func (d *Dispatcher) CancelPending(file string) {
	d.registry.CancelAll(file)
}

// Forget drops every trace of a closed file: in-flight work, the document
// entry, the cached result, the recorded checked version, and published
// diagnostics. Version numbering restarts when the editor reopens the file,
// so none of that state may survive the close.
func (d *Dispatcher) Forget(file string) {
	file = NormalizePath(file)
	d.registry.CancelAll(file)
	d.docs.Forget(file)
	d.cache.Evict(file)
	d.checked.Forget(file)
	d.diags.ClearForPath(file)
}

func (d *Dispatcher) cancelled(file string, err error) error {
	d.bus.Publish(Event{
		Kind:   EventRequestCancelled,
		File:   file,
		Reason: err.Error(),
	})
	return context.Canceled
}

func (d *Dispatcher) optionsFor(ctx context.Context, fs *FileState) (*AnalysisOptions, error) {
	if p, ok := d.workspace.OwnerOf(fs.Path); ok {
		opts, err := p.Options(ctx, d.analyzer)
		if err != nil {
			return nil, asOptionsError(p.Path, err)
		}
		return opts, nil
	}
	opts, err := d.analyzer.ResolveOptionsForScript(ctx, fs.Path, fs.Lines, d.Settings().TargetFramework)
	if err != nil {
		return nil, asOptionsError(fs.Path, err)
	}
	return opts, nil
}

func asOptionsError(path string, err error) error {
	if IsCancelled(err) {
		return err
	}
	var oe *OptionsError
	if errors.As(err, &oe) {
		return err
	}
	return &OptionsError{Kind: ProjectNotRestored, Path: path, Err: err}
}

// recent returns the most recent cached result for the file regardless of
// staleness, falling back to the analyzer's own recent result, and finally
// to a full check. Best-effort handlers use this so a one-keystroke-stale
// answer beats no answer.
func (d *Dispatcher) recent(ctx context.Context, file string) (*AnalysisResult, error) {
	file = NormalizePath(file)
	if res, ok := d.cache.GetMostRecent(file); ok {
		return res, nil
	}
	fs, err := d.docs.GetOrReadFromDisk(file)
	if err != nil {
		return nil, err
	}
	opts, err := d.optionsFor(ctx, fs)
	if err != nil {
		return nil, err
	}
	if res, ok := d.analyzer.TryGetRecent(file, opts); ok {
		return res, nil
	}
	return d.Check(ctx, file)
}

// latest returns a result whose version matches the document store's current
// version for the file, suspending on in-flight work. If nothing is in
// flight there is nothing to wait for, so it starts a check itself. The wait
// is unbounded; callers needing a hard bound pass a context with a deadline.
func (d *Dispatcher) latest(ctx context.Context, file string) (*AnalysisResult, error) {
	file = NormalizePath(file)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, freshness := d.cache.GetIfFresh(file)
		if freshness == ResultFresh {
			return res, nil
		}
		if !d.registry.Active(file) {
			res, err := d.Check(ctx, file)
			if err != nil {
				if IsCancelled(err) {
					// Superseded by a newer request; wait on that one.
					continue
				}
				return nil, err
			}
			return res, nil
		}
		version, err := d.docs.GetVersion(file)
		if err != nil {
			return nil, err
		}
		if err := d.checked.Wait(ctx, file, version); err != nil {
			return nil, err
		}
	}
}

type CompletionResult struct {
	Declarations []Declaration
	Version      int32
}

// Completion lists the declarations available at the file's most recent
// analysis and replaces the completion side caches with the new generation.
func (d *Dispatcher) Completion(ctx context.Context, file string, pos protocol.Position) (*CompletionResult, error) {
	file = NormalizePath(file)
	res, err := d.recent(ctx, file)
	if err != nil {
		return nil, err
	}
	fs, err := d.docs.GetOrReadFromDisk(file)
	if err != nil {
		return nil, err
	}
	opts, err := d.optionsFor(ctx, fs)
	if err != nil {
		return nil, err
	}
	decls, err := d.analyzer.GetDeclarations(ctx, file, fs.Lines, opts, res.Version)
	if err != nil {
		if IsCancelled(err) {
			return nil, d.cancelled(file, err)
		}
		return nil, &AnalysisError{File: file, Err: err}
	}
	d.cache.SetDeclarations(decls)
	return &CompletionResult{Declarations: decls, Version: res.Version}, nil
}

// ResolveCompletion fills in help text for a previously offered completion
// item, consulting the help side cache first. Items from a superseded
// completion generation resolve to nothing.
func (d *Dispatcher) ResolveCompletion(displayName string) (Declaration, bool) {
	decl, ok := d.cache.LookupDeclaration(displayName)
	if !ok {
		return Declaration{}, false
	}
	if help, ok := d.cache.LookupHelp(decl.Name); ok {
		decl.Help = help
		return decl, true
	}
	d.cache.RecordHelp(decl.Name, decl.Help)
	return decl, true
}

type HoverResult struct {
	Contents string
	Range    protocol.Range
}

// Hover describes the symbol at the position using the most recent available
// analysis. A missing answer is a nil result, not an error.
func (d *Dispatcher) Hover(ctx context.Context, file string, pos protocol.Position) (*HoverResult, error) {
	file = NormalizePath(file)
	res, err := d.recent(ctx, file)
	if err != nil {
		return nil, err
	}
	uses, err := d.analyzer.GetUsesOfSymbol(ctx, res.Check, file, pos)
	if err != nil || len(uses) == 0 {
		return nil, nil
	}
	name := uses[0].Name
	if help, ok := d.cache.LookupHelp(name); ok {
		return &HoverResult{Contents: help, Range: uses[0].Range}, nil
	}
	fs, err := d.docs.GetOrReadFromDisk(file)
	if err != nil {
		return nil, err
	}
	opts, err := d.optionsFor(ctx, fs)
	if err != nil {
		return nil, err
	}
	decls, err := d.analyzer.GetDeclarations(ctx, file, fs.Lines, opts, res.Version)
	if err != nil {
		return nil, nil
	}
	for _, decl := range decls {
		if decl.Name == name {
			d.cache.RecordHelp(name, decl.Help)
			return &HoverResult{Contents: decl.Help, Range: uses[0].Range}, nil
		}
	}
	return nil, nil
}

type Location struct {
	File  string
	Range protocol.Range
}

// FindDeclaration locates the definition of the symbol at the position.
func (d *Dispatcher) FindDeclaration(ctx context.Context, file string, pos protocol.Position) (*Location, error) {
	file = NormalizePath(file)
	res, err := d.recent(ctx, file)
	if err != nil {
		return nil, err
	}
	uses, err := d.analyzer.GetUsesOfSymbol(ctx, res.Check, file, pos)
	if err != nil {
		if IsCancelled(err) {
			return nil, d.cancelled(file, err)
		}
		return nil, &AnalysisError{File: file, Err: err}
	}
	for _, u := range uses {
		if u.IsDefinition {
			return &Location{File: u.File, Range: u.Range}, nil
		}
	}
	return nil, nil
}

// References finds all uses of the symbol at the position. Correctness
// matters here, so it waits for the latest analysis.
func (d *Dispatcher) References(ctx context.Context, file string, pos protocol.Position, includeDeclaration bool) ([]Location, error) {
	file = NormalizePath(file)
	res, err := d.latest(ctx, file)
	if err != nil {
		return nil, err
	}
	uses, err := d.analyzer.GetUsesOfSymbol(ctx, res.Check, file, pos)
	if err != nil {
		if IsCancelled(err) {
			return nil, d.cancelled(file, err)
		}
		return nil, &AnalysisError{File: file, Err: err}
	}
	locations := make([]Location, 0, len(uses))
	for _, u := range uses {
		if u.IsDefinition && !includeDeclaration {
			continue
		}
		locations = append(locations, Location{File: u.File, Range: u.Range})
	}
	return locations, nil
}

type RenameResult struct {
	// Changes maps absolute file paths to the edits renaming every use.
	Changes map[string][]protocol.TextEdit
}

// Rename rewrites every use of the symbol at the position. It waits for the
// latest analysis; renaming against stale state is never acceptable.
func (d *Dispatcher) Rename(ctx context.Context, file string, pos protocol.Position, newName string) (*RenameResult, error) {
	file = NormalizePath(file)
	res, err := d.latest(ctx, file)
	if err != nil {
		return nil, err
	}
	uses, err := d.analyzer.GetUsesOfSymbol(ctx, res.Check, file, pos)
	if err != nil {
		if IsCancelled(err) {
			return nil, d.cancelled(file, err)
		}
		return nil, &AnalysisError{File: file, Err: err}
	}
	changes := map[string][]protocol.TextEdit{}
	for _, u := range uses {
		changes[u.File] = append(changes[u.File], protocol.TextEdit{
			Range:   u.Range,
			NewText: newName,
		})
	}
	return &RenameResult{Changes: changes}, nil
}

// Compile performs a full compilation of the project or script owning the
// given path. For open files it first waits for the latest analysis so the
// compilation never races an in-flight edit.
func (d *Dispatcher) Compile(ctx context.Context, path string) (*CompileOutput, error) {
	path = NormalizePath(path)
	var opts *AnalysisOptions
	if p, ok := d.workspace.Project(path); ok {
		var err error
		opts, err = p.Options(ctx, d.analyzer)
		if err != nil {
			return nil, asOptionsError(path, err)
		}
	} else {
		if _, ok := d.docs.Get(path); ok {
			if _, err := d.latest(ctx, path); err != nil {
				return nil, err
			}
		}
		fs, err := d.docs.GetOrReadFromDisk(path)
		if err != nil {
			return nil, err
		}
		opts, err = d.optionsFor(ctx, fs)
		if err != nil {
			return nil, err
		}
	}
	out, err := d.analyzer.Compile(ctx, opts)
	if err != nil {
		if IsCancelled(err) {
			return nil, d.cancelled(path, err)
		}
		return nil, &AnalysisError{File: path, Err: err}
	}
	return out, nil
}
