package scan

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kralicky/tools-lite/gopls/pkg/protocol"

	"github.com/scriptls/scriptls/pkg/lsp"
)

// BackgroundAnalyzers returns the full set of passes this analyzer can run
// after a successful check.
func BackgroundAnalyzers() []lsp.BackgroundAnalyzer {
	return []lsp.BackgroundAnalyzer{
		Lint{},
		UnusedOpens{},
		UnusedDeclarations{},
		SimplifyNames{},
	}
}

var trailingSpace = regexp.MustCompile(`[ \t]+$`)

// Lint flags style problems that do not affect meaning.
type Lint struct{}

func (Lint) Name() string { return "lint" }

func (Lint) Analyze(ctx context.Context, res *lsp.AnalysisResult, lines []string) ([]lsp.Diagnostic, error) {
	var diagnostics []lsp.Diagnostic
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if loc := trailingSpace.FindStringIndex(line); loc != nil {
			diagnostics = append(diagnostics, lsp.Diagnostic{
				File:     res.File,
				Severity: protocol.SeverityHint,
				Code:     "LINT001",
				Source:   "lint",
				Message:  "trailing whitespace",
				Range: protocol.Range{
					Start: protocol.Position{Line: uint32(i), Character: uint32(loc[0])},
					End:   protocol.Position{Line: uint32(i), Character: uint32(loc[1])},
				},
			})
		}
		if strings.Contains(line, "\t") && strings.Contains(strings.TrimLeft(line, "\t"), "\t") {
			diagnostics = append(diagnostics, lsp.Diagnostic{
				File:     res.File,
				Severity: protocol.SeverityHint,
				Code:     "LINT002",
				Source:   "lint",
				Message:  "tab used for alignment",
				Range: protocol.Range{
					Start: protocol.Position{Line: uint32(i)},
					End:   protocol.Position{Line: uint32(i), Character: uint32(len(line))},
				},
			})
		}
	}
	return diagnostics, nil
}

// UnusedOpens flags open directives whose module prefix never appears in the
// rest of the file.
type UnusedOpens struct{}

func (UnusedOpens) Name() string { return "unused-opens" }

func (UnusedOpens) Analyze(ctx context.Context, res *lsp.AnalysisResult, lines []string) ([]lsp.Diagnostic, error) {
	cs, ok := res.Check.(*checkState)
	if !ok {
		return nil, fmt.Errorf("unexpected check handle %T", res.Check)
	}
	var diagnostics []lsp.Diagnostic
	for _, o := range cs.opens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// The last path segment is the name the open brings into scope.
		short := o.name
		if idx := strings.LastIndex(short, "."); idx >= 0 {
			short = short[idx+1:]
		}
		used := false
		for i, line := range lines {
			if i == o.line {
				continue
			}
			if containsWord(line, short) {
				used = true
				break
			}
		}
		if used {
			continue
		}
		diagnostics = append(diagnostics, lsp.Diagnostic{
			File:     res.File,
			Severity: protocol.SeverityWarning,
			Code:     "OPEN001",
			Source:   "unused-opens",
			Message:  fmt.Sprintf("open %s is unused", o.name),
			Tags:     []protocol.DiagnosticTag{protocol.Unnecessary},
			Range: protocol.Range{
				Start: protocol.Position{Line: uint32(o.line), Character: uint32(o.col)},
				End:   protocol.Position{Line: uint32(o.line), Character: uint32(o.col + len(o.name))},
			},
		})
	}
	return diagnostics, nil
}

// UnusedDeclarations flags top-level declarations never referenced outside
// their own definition line.
type UnusedDeclarations struct{}

func (UnusedDeclarations) Name() string { return "unused-declarations" }

func (UnusedDeclarations) Analyze(ctx context.Context, res *lsp.AnalysisResult, lines []string) ([]lsp.Diagnostic, error) {
	cs, ok := res.Check.(*checkState)
	if !ok {
		return nil, fmt.Errorf("unexpected check handle %T", res.Check)
	}
	var diagnostics []lsp.Diagnostic
	for _, d := range cs.decls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		used := false
		for i, line := range lines {
			if uint32(i) == d.Range.Start.Line {
				continue
			}
			if containsWord(line, d.Name) {
				used = true
				break
			}
		}
		if used {
			continue
		}
		diagnostics = append(diagnostics, lsp.Diagnostic{
			File:     res.File,
			Severity: protocol.SeverityWarning,
			Code:     "DECL001",
			Source:   "unused-declarations",
			Message:  fmt.Sprintf("%s is declared but never used", d.Name),
			Tags:     []protocol.DiagnosticTag{protocol.Unnecessary},
			Range:    d.Range,
		})
	}
	return diagnostics, nil
}

// SimplifyNames flags qualified references that an open directive already
// makes redundant.
type SimplifyNames struct{}

func (SimplifyNames) Name() string { return "simplify-names" }

func (SimplifyNames) Analyze(ctx context.Context, res *lsp.AnalysisResult, lines []string) ([]lsp.Diagnostic, error) {
	cs, ok := res.Check.(*checkState)
	if !ok {
		return nil, fmt.Errorf("unexpected check handle %T", res.Check)
	}
	var diagnostics []lsp.Diagnostic
	for _, o := range cs.opens {
		prefix := o.name + "."
		for i, line := range lines {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if i == o.line {
				continue
			}
			for idx := strings.Index(line, prefix); idx >= 0; {
				diagnostics = append(diagnostics, lsp.Diagnostic{
					File:     res.File,
					Severity: protocol.SeverityInformation,
					Code:     "NAME001",
					Source:   "simplify-names",
					Message:  fmt.Sprintf("name can be simplified, %s is already open", o.name),
					Range: protocol.Range{
						Start: protocol.Position{Line: uint32(i), Character: uint32(idx)},
						End:   protocol.Position{Line: uint32(i), Character: uint32(idx + len(prefix))},
					},
				})
				next := strings.Index(line[idx+len(prefix):], prefix)
				if next < 0 {
					break
				}
				idx += len(prefix) + next
			}
		}
	}
	return diagnostics, nil
}

func containsWord(line, word string) bool {
	for _, loc := range wordPattern.FindAllStringIndex(line, -1) {
		if line[loc[0]:loc[1]] == word {
			return true
		}
	}
	return false
}
