package lsp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kralicky/tools-lite/gopls/pkg/protocol"
	"github.com/stretchr/testify/require"
)

// scriptedAnalyzer lets tests control check latency and canned symbol data.
type scriptedAnalyzer struct {
	mu     sync.Mutex
	checks []int32

	// onCheck, when set, runs inside ParseAndCheck before it returns.
	onCheck func(ctx context.Context, file string, version int32) error

	decls []Declaration
	uses  []SymbolUse

	recent *AnalysisResult

	compileOut *CompileOutput
}

var _ Analyzer = (*scriptedAnalyzer)(nil)

func (a *scriptedAnalyzer) ResolveOptionsForScript(ctx context.Context, file string, text []string, targetFramework string) (*AnalysisOptions, error) {
	return &AnalysisOptions{SourceFiles: []string{file}, TargetFramework: targetFramework}, nil
}

func (a *scriptedAnalyzer) ResolveOptionsForProject(ctx context.Context, projectPath string) (*AnalysisOptions, error) {
	return &AnalysisOptions{ProjectPath: projectPath}, nil
}

func (a *scriptedAnalyzer) ParseAndCheck(ctx context.Context, file string, version int32, text []string, opts *AnalysisOptions) (*AnalysisResult, error) {
	if a.onCheck != nil {
		if err := a.onCheck(ctx, file, version); err != nil {
			return nil, err
		}
	}
	a.mu.Lock()
	a.checks = append(a.checks, version)
	a.mu.Unlock()
	return &AnalysisResult{File: file, Version: version, Check: "check@" + file}, nil
}

func (a *scriptedAnalyzer) TryGetRecent(file string, opts *AnalysisOptions) (*AnalysisResult, bool) {
	return a.recent, a.recent != nil
}

func (a *scriptedAnalyzer) GetDeclarations(ctx context.Context, file string, text []string, opts *AnalysisOptions, version int32) ([]Declaration, error) {
	return a.decls, nil
}

func (a *scriptedAnalyzer) GetUsesOfSymbol(ctx context.Context, check any, file string, pos protocol.Position) ([]SymbolUse, error) {
	return a.uses, nil
}

func (a *scriptedAnalyzer) Compile(ctx context.Context, opts *AnalysisOptions) (*CompileOutput, error) {
	if a.compileOut != nil {
		return a.compileOut, nil
	}
	return &CompileOutput{}, nil
}

func (a *scriptedAnalyzer) checkedVersions() []int32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int32(nil), a.checks...)
}

func TestCheckCommitsResult(t *testing.T) {
	fa := &scriptedAnalyzer{}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/main.scr", "let a = 1", 1)

	var events []EventKind
	d.Bus().Subscribe(func(e Event) { events = append(events, e.Kind) })

	res, err := d.Check(context.Background(), "/tmp/x/main.scr")
	require.NoError(t, err)
	require.Equal(t, int32(1), res.Version)

	cached, freshness := d.Cache().GetIfFresh("/tmp/x/main.scr")
	require.Equal(t, ResultFresh, freshness)
	require.Same(t, res, cached)

	// Parsed precedes checked precedes diagnostics.
	require.Equal(t, []EventKind{EventFileParsed, EventFileChecked, EventDiagnosticsPublished}, events)
}

func TestCheckSupersededResultIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fa := &scriptedAnalyzer{}
	fa.onCheck = func(ctx context.Context, file string, version int32) error {
		if version == 1 {
			close(started)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-release:
				return nil
			}
		}
		return nil
	}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/main.scr", "let a = 1", 1)

	firstDone := make(chan error, 1)
	go func() {
		_, err := d.Check(context.Background(), "/tmp/x/main.scr")
		firstDone <- err
	}()
	<-started

	// The edit arrives while version 1 is still being analyzed.
	d.Documents().SetText("/tmp/x/main.scr", "let a = 2", 2)
	res, err := d.Check(context.Background(), "/tmp/x/main.scr")
	require.NoError(t, err)
	require.Equal(t, int32(2), res.Version)

	select {
	case err := <-firstDone:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("superseded check did not return")
	}

	cached, freshness := d.Cache().GetIfFresh("/tmp/x/main.scr")
	require.Equal(t, ResultFresh, freshness)
	require.Equal(t, int32(2), cached.Version)
}

func TestCheckDiscardsLateCompletion(t *testing.T) {
	// The analyzer finishes normally but a newer request registered in the
	// meantime; the stale result must not reach the cache.
	started := make(chan struct{})
	release := make(chan struct{})
	fa := &scriptedAnalyzer{}
	fa.onCheck = func(ctx context.Context, file string, version int32) error {
		if version == 1 {
			close(started)
			<-release
		}
		return nil
	}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/main.scr", "let a = 1", 1)

	firstDone := make(chan error, 1)
	go func() {
		_, err := d.Check(context.Background(), "/tmp/x/main.scr")
		firstDone <- err
	}()
	<-started

	d.Documents().SetText("/tmp/x/main.scr", "let a = 2", 2)
	_, err := d.Check(context.Background(), "/tmp/x/main.scr")
	require.NoError(t, err)

	close(release)
	select {
	case err := <-firstDone:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("superseded check did not return")
	}

	cached, _ := d.Cache().GetMostRecent("/tmp/x/main.scr")
	require.Equal(t, int32(2), cached.Version)
}

func TestCheckDistinctFilesIndependent(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fa := &scriptedAnalyzer{}
	fa.onCheck = func(ctx context.Context, file string, version int32) error {
		if file == NormalizePath("/tmp/x/slow.scr") {
			close(started)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-release:
				return nil
			}
		}
		return nil
	}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/slow.scr", "let a = 1", 1)
	d.Documents().SetText("/tmp/x/fast.scr", "let b = 1", 1)

	slowDone := make(chan error, 1)
	go func() {
		_, err := d.Check(context.Background(), "/tmp/x/slow.scr")
		slowDone <- err
	}()
	<-started

	// Work on one file never cancels work on another.
	_, err := d.Check(context.Background(), "/tmp/x/fast.scr")
	require.NoError(t, err)

	close(release)
	require.NoError(t, <-slowDone)
}

func TestCheckCancelledPublishesEvent(t *testing.T) {
	fa := &scriptedAnalyzer{}
	fa.onCheck = func(ctx context.Context, file string, version int32) error {
		return context.Canceled
	}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/main.scr", "let a = 1", 1)

	var cancelled []Event
	d.Bus().Subscribe(func(e Event) {
		if e.Kind == EventRequestCancelled {
			cancelled = append(cancelled, e)
		}
	})

	_, err := d.Check(context.Background(), "/tmp/x/main.scr")
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, cancelled, 1)
	require.Equal(t, NormalizePath("/tmp/x/main.scr"), cancelled[0].File)
}

func TestCheckAnalyzerFailure(t *testing.T) {
	fa := &scriptedAnalyzer{}
	fa.onCheck = func(ctx context.Context, file string, version int32) error {
		return errors.New("internal compiler error")
	}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/main.scr", "let a = 1", 1)

	_, err := d.Check(context.Background(), "/tmp/x/main.scr")
	var ae *AnalysisError
	require.ErrorAs(t, err, &ae)

	// Nothing committed.
	_, ok := d.Cache().GetMostRecent("/tmp/x/main.scr")
	require.False(t, ok)
}

func TestLatestWaitsForInflightCheck(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fa := &scriptedAnalyzer{uses: []SymbolUse{
		{Name: "a", File: "/tmp/x/main.scr", IsDefinition: true},
		{Name: "a", File: "/tmp/x/main.scr"},
	}}
	fa.onCheck = func(ctx context.Context, file string, version int32) error {
		close(started)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-release:
			return nil
		}
	}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/main.scr", "let a = 1", 1)

	go d.Check(context.Background(), "/tmp/x/main.scr")
	<-started

	done := make(chan []Location, 1)
	errs := make(chan error, 1)
	go func() {
		locs, err := d.References(context.Background(), "/tmp/x/main.scr", protocol.Position{}, true)
		errs <- err
		done <- locs
	}()

	select {
	case <-done:
		t.Fatal("references answered before the check completed")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)

	select {
	case err := <-errs:
		require.NoError(t, err)
		require.Len(t, <-done, 2)
	case <-time.After(time.Second):
		t.Fatal("references never completed")
	}
}

func TestLatestStartsCheckWhenIdle(t *testing.T) {
	fa := &scriptedAnalyzer{uses: []SymbolUse{
		{Name: "a", File: "/tmp/x/main.scr", IsDefinition: true},
		{Name: "a", File: "/tmp/x/main.scr"},
	}}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/main.scr", "let a = 1\na", 1)

	// Nothing cached and nothing in flight. References must not suspend
	// waiting for a completion that will never arrive.
	locs, err := d.References(context.Background(), "/tmp/x/main.scr", protocol.Position{}, true)
	require.NoError(t, err)
	require.Len(t, locs, 2)
	require.Equal(t, []int32{1}, fa.checkedVersions())
}

func TestLatestHonorsDeadline(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fa := &scriptedAnalyzer{}
	fa.onCheck = func(ctx context.Context, file string, version int32) error {
		close(started)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-release:
			return nil
		}
	}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/main.scr", "let a = 1", 5)

	go d.Check(context.Background(), "/tmp/x/main.scr")
	<-started
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := d.References(ctx, "/tmp/x/main.scr", protocol.Position{}, true)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRecentPrefersStaleOverNothing(t *testing.T) {
	fa := &scriptedAnalyzer{uses: []SymbolUse{
		{Name: "a", File: "/tmp/x/main.scr", IsDefinition: true},
	}}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/main.scr", "let a = 1", 5)
	d.Cache().Put(&AnalysisResult{File: "/tmp/x/main.scr", Version: 3, Check: "stale"})

	// FindDeclaration answers from the stale result without re-analyzing.
	loc, err := d.FindDeclaration(context.Background(), "/tmp/x/main.scr", protocol.Position{})
	require.NoError(t, err)
	require.NotNil(t, loc)
	require.Empty(t, fa.checkedVersions())
}

func TestRecentFallsBackToFullCheck(t *testing.T) {
	fa := &scriptedAnalyzer{uses: []SymbolUse{
		{Name: "a", File: "/tmp/x/main.scr", IsDefinition: true},
	}}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/main.scr", "let a = 1", 1)

	loc, err := d.FindDeclaration(context.Background(), "/tmp/x/main.scr", protocol.Position{})
	require.NoError(t, err)
	require.NotNil(t, loc)
	require.Equal(t, []int32{1}, fa.checkedVersions())
}

func TestCompletionPopulatesSideCaches(t *testing.T) {
	fa := &scriptedAnalyzer{decls: []Declaration{
		{DisplayName: "foo", Name: "foo", Help: "foo help"},
	}}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/main.scr", "let foo = 1", 1)

	res, err := d.Completion(context.Background(), "/tmp/x/main.scr", protocol.Position{})
	require.NoError(t, err)
	require.Len(t, res.Declarations, 1)

	decl, ok := d.ResolveCompletion("foo")
	require.True(t, ok)
	require.Equal(t, "foo help", decl.Help)

	// Resolving an item from a superseded generation yields nothing.
	fa.decls = []Declaration{{DisplayName: "bar", Name: "bar"}}
	_, err = d.Completion(context.Background(), "/tmp/x/main.scr", protocol.Position{})
	require.NoError(t, err)
	_, ok = d.ResolveCompletion("foo")
	require.False(t, ok)
}

func TestHoverUsesHelpCache(t *testing.T) {
	fa := &scriptedAnalyzer{
		uses:  []SymbolUse{{Name: "foo", File: "/tmp/x/main.scr"}},
		decls: []Declaration{{DisplayName: "foo", Name: "foo", Help: "foo help"}},
	}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/main.scr", "let foo = 1", 1)

	hov, err := d.Hover(context.Background(), "/tmp/x/main.scr", protocol.Position{})
	require.NoError(t, err)
	require.NotNil(t, hov)
	require.Equal(t, "foo help", hov.Contents)

	// The help text is now cached for the generation.
	help, ok := d.Cache().LookupHelp("foo")
	require.True(t, ok)
	require.Equal(t, "foo help", help)
}

func TestRenameEditsEveryUse(t *testing.T) {
	fa := &scriptedAnalyzer{uses: []SymbolUse{
		{Name: "a", File: "/tmp/x/main.scr", IsDefinition: true, Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 4},
			End:   protocol.Position{Line: 0, Character: 5},
		}},
		{Name: "a", File: "/tmp/x/main.scr", Range: protocol.Range{
			Start: protocol.Position{Line: 1, Character: 0},
			End:   protocol.Position{Line: 1, Character: 1},
		}},
	}}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/main.scr", "let a = 1\na", 1)

	res, err := d.Rename(context.Background(), "/tmp/x/main.scr", protocol.Position{}, "b")
	require.NoError(t, err)
	edits := res.Changes["/tmp/x/main.scr"]
	require.Len(t, edits, 2)
	require.Equal(t, "b", edits[0].NewText)
}

func TestBackgroundAnalysisPublishesDiagnostics(t *testing.T) {
	fa := &scriptedAnalyzer{}
	pass := &scriptedPass{name: "lint", diagnostics: []Diagnostic{{Code: "LINT001", Source: "lint"}}}
	d := NewDispatcher(fa, WithBackgroundAnalyzers(pass))
	d.Documents().SetText("/tmp/x/main.scr", "let a = 1 ", 1)

	published := make(chan Event, 8)
	d.Bus().Subscribe(func(e Event) {
		if e.Kind == EventDiagnosticsPublished && e.Analyzer == "lint" {
			published <- e
		}
	})

	_, err := d.Check(context.Background(), "/tmp/x/main.scr")
	require.NoError(t, err)

	select {
	case e := <-published:
		require.Len(t, e.Diagnostics, 1)
	case <-time.After(time.Second):
		t.Fatal("background diagnostics never published")
	}
}

func TestBackgroundAnalysisCancelledBySupersedingRequest(t *testing.T) {
	fa := &scriptedAnalyzer{}
	started := make(chan struct{})
	pass := &scriptedPass{
		name: "lint",
		run: func(ctx context.Context) ([]Diagnostic, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	d := NewDispatcher(fa, WithBackgroundAnalyzers(pass))
	d.Documents().SetText("/tmp/x/main.scr", "let a = 1", 1)

	cancelled := make(chan Event, 1)
	d.Bus().Subscribe(func(e Event) {
		if e.Kind == EventRequestCancelled && e.Analyzer == "lint" {
			cancelled <- e
		}
	})

	_, err := d.Check(context.Background(), "/tmp/x/main.scr")
	require.NoError(t, err)
	<-started

	// A new request for the file sweeps the running background pass along.
	d.CancelPending("/tmp/x/main.scr")

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("background pass was not cancelled")
	}
	merged, _, _ := d.Diagnostics().GetForPath("/tmp/x/main.scr")
	for _, diag := range merged {
		require.NotEqual(t, "lint", diag.Source)
	}
}

func TestBackgroundAnalyzerDisabledBySettings(t *testing.T) {
	fa := &scriptedAnalyzer{}
	ran := make(chan struct{}, 1)
	pass := &scriptedPass{
		name: "lint",
		run: func(ctx context.Context) ([]Diagnostic, error) {
			ran <- struct{}{}
			return nil, nil
		},
	}
	d := NewDispatcher(fa, WithBackgroundAnalyzers(pass))
	d.ApplySettings(&Settings{BackgroundAnalyzers: BackgroundAnalyzerSettings{Disabled: []string{"lint"}}})
	d.Documents().SetText("/tmp/x/main.scr", "let a = 1", 1)

	_, err := d.Check(context.Background(), "/tmp/x/main.scr")
	require.NoError(t, err)

	select {
	case <-ran:
		t.Fatal("disabled analyzer ran")
	case <-time.After(50 * time.Millisecond):
	}
}

type unsupportedAnalyzer struct {
	scriptedAnalyzer
}

func (a *unsupportedAnalyzer) ResolveOptionsForScript(ctx context.Context, file string, text []string, targetFramework string) (*AnalysisOptions, error) {
	return nil, &OptionsError{Kind: LanguageNotSupported, Path: file}
}

func TestHoverSurfacesOptionsResolutionFailure(t *testing.T) {
	d := NewDispatcher(&unsupportedAnalyzer{})
	d.Documents().SetText("/tmp/x/main.xyz", "let a = 1", 1)

	done := make(chan error, 1)
	go func() {
		_, err := d.Hover(context.Background(), "/tmp/x/main.xyz", protocol.Position{})
		done <- err
	}()

	// A configuration failure is reported promptly, never a hang.
	select {
	case err := <-done:
		var oe *OptionsError
		require.ErrorAs(t, err, &oe)
		require.Equal(t, LanguageNotSupported, oe.Kind)
	case <-time.After(time.Second):
		t.Fatal("hover hung on options resolution failure")
	}
}

func TestCompileScript(t *testing.T) {
	fa := &scriptedAnalyzer{compileOut: &CompileOutput{
		Errors:   []Diagnostic{{Code: "SCAN001"}},
		ExitCode: 1,
	}}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/main.scr", "let a = (", 1)

	out, err := d.Compile(context.Background(), "/tmp/x/main.scr")
	require.NoError(t, err)
	require.Equal(t, 1, out.ExitCode)
	require.Len(t, out.Errors, 1)
}

func TestForgetDropsSessionState(t *testing.T) {
	fa := &scriptedAnalyzer{}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/main.scr", "let a = 3", 3)
	_, err := d.Check(context.Background(), "/tmp/x/main.scr")
	require.NoError(t, err)

	d.Forget("/tmp/x/main.scr")

	_, ok := d.Documents().Get("/tmp/x/main.scr")
	require.False(t, ok)
	_, ok = d.Cache().GetMostRecent("/tmp/x/main.scr")
	require.False(t, ok)
	diags, _, _ := d.Diagnostics().GetForPath("/tmp/x/main.scr")
	require.Empty(t, diags)
}

func TestLatestAfterCloseAndReopen(t *testing.T) {
	fa := &scriptedAnalyzer{}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/main.scr", "let a = 3", 3)
	_, err := d.Check(context.Background(), "/tmp/x/main.scr")
	require.NoError(t, err)

	// Close the file, then reopen it. The editor restarts version numbering,
	// so the new session's version is below the old recorded one.
	d.Forget("/tmp/x/main.scr")
	d.Documents().SetText("/tmp/x/main.scr", "let a = 1", 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := d.latest(ctx, "/tmp/x/main.scr")
	require.NoError(t, err)
	require.Equal(t, int32(1), res.Version)
}

func TestCheckReleasesTokenWhenDone(t *testing.T) {
	fa := &scriptedAnalyzer{}
	pass := &scriptedPass{name: "lint"}
	d := NewDispatcher(fa, WithBackgroundAnalyzers(pass))
	d.Documents().SetText("/tmp/x/main.scr", "let a = 1", 1)

	_, err := d.Check(context.Background(), "/tmp/x/main.scr")
	require.NoError(t, err)

	// Once the check and its passes have finished, no handle lingers.
	require.Eventually(t, func() bool {
		return !d.registry.Active("/tmp/x/main.scr")
	}, time.Second, 10*time.Millisecond)
}

func TestBackgroundCheckFailurePublishesEvent(t *testing.T) {
	fa := &scriptedAnalyzer{}
	fa.onCheck = func(ctx context.Context, file string, version int32) error {
		return errors.New("boom")
	}
	d := NewDispatcher(fa)
	d.Documents().SetText("/tmp/x/main.scr", "let a = 1", 1)

	failed := make(chan Event, 1)
	d.Bus().Subscribe(func(e Event) {
		if e.Kind == EventBackgroundAnalysisFailed {
			failed <- e
		}
	})

	d.CheckInBackground(context.Background(), "/tmp/x/main.scr")

	select {
	case e := <-failed:
		require.Equal(t, "/tmp/x/main.scr", e.File)
		require.Contains(t, e.Reason, "boom")
	case <-time.After(time.Second):
		t.Fatal("no failure event for the background check")
	}
}

type scriptedPass struct {
	name        string
	diagnostics []Diagnostic
	run         func(ctx context.Context) ([]Diagnostic, error)
}

func (p *scriptedPass) Name() string { return p.name }

func (p *scriptedPass) Analyze(ctx context.Context, res *AnalysisResult, lines []string) ([]Diagnostic, error) {
	if p.run != nil {
		return p.run(ctx)
	}
	return p.diagnostics, nil
}
