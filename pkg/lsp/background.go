package lsp

import (
	"context"
	"log/slog"
	"sync"
)

// BackgroundAnalyzer is a secondary analysis pass (lint, unused opens,
// unused declarations, simplify names) that consumes a completed analysis
// result and publishes its own diagnostics. Passes run after every
// successful check, under the originating operation's cancellation scope, so
// a subsequent edit to the file cancels them along with everything else.
type BackgroundAnalyzer interface {
	Name() string
	Analyze(ctx context.Context, res *AnalysisResult, lines []string) ([]Diagnostic, error)
}

// startBackgroundAnalyses owns the token from here on and releases it once
// every pass has finished.
func (d *Dispatcher) startBackgroundAnalyses(tok *Token, res *AnalysisResult, lines []string) {
	settings := d.Settings()
	var wg sync.WaitGroup
	for _, ba := range d.background {
		if !settings.BackgroundAnalyzers.Enabled(ba.Name()) {
			continue
		}
		wg.Add(1)
		go func(ba BackgroundAnalyzer) {
			defer wg.Done()
			diagnostics, err := ba.Analyze(tok.Ctx(), res, lines)
			if err != nil {
				if IsCancelled(err) {
					d.bus.Publish(Event{
						Kind:     EventRequestCancelled,
						File:     res.File,
						Analyzer: ba.Name(),
						Reason:   err.Error(),
					})
					return
				}
				slog.Debug("background analysis failed", "analyzer", ba.Name(), "file", res.File, "error", err)
				d.bus.Publish(Event{
					Kind:     EventBackgroundAnalysisFailed,
					File:     res.File,
					Analyzer: ba.Name(),
					Reason:   err.Error(),
				})
				return
			}
			// Same commit discipline as the primary check: a superseded
			// pass must not publish.
			if tok.Cancelled() {
				return
			}
			d.diags.Publish(res.File, ba.Name(), res.Version, diagnostics)
		}(ba)
	}
	go func() {
		wg.Wait()
		d.registry.Release(tok)
	}()
}
