// Package scan implements a heuristic, line-scanning analyzer for
// script-style sources. It indexes top-level declarations and symbol uses
// with regular expressions rather than a real parser, which is enough to
// drive the engine end to end and to serve as a reference implementation of
// the lsp.Analyzer boundary.
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/kralicky/tools-lite/gopls/pkg/protocol"

	"github.com/scriptls/scriptls/pkg/lsp"
)

// Regex patterns for script constructs
var (
	letPattern    = regexp.MustCompile(`^\s*let\s+(\w+)`)
	funcPattern   = regexp.MustCompile(`^\s*(?:def|fn|func)\s+(\w+)`)
	modulePattern = regexp.MustCompile(`^\s*module\s+(\w+)`)
	typePattern   = regexp.MustCompile(`^\s*type\s+(\w+)`)
	openPattern   = regexp.MustCompile(`^\s*open\s+([\w.]*\w)`)
	wordPattern   = regexp.MustCompile(`\w+`)
)

type Analyzer struct {
	mu     sync.RWMutex
	recent map[string]*lsp.AnalysisResult
}

func New() *Analyzer {
	return &Analyzer{
		recent: map[string]*lsp.AnalysisResult{},
	}
}

var _ lsp.Analyzer = (*Analyzer)(nil)

// checkState is the opaque check handle the engine passes back for symbol
// queries.
type checkState struct {
	file  string
	lines []string
	decls []lsp.Declaration
	opens []open
}

type open struct {
	name string
	line int
	col  int
}

// ResolveOptionsForScript implements lsp.Analyzer.
func (a *Analyzer) ResolveOptionsForScript(ctx context.Context, file string, text []string, targetFramework string) (*lsp.AnalysisOptions, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch ext := filepath.Ext(file); ext {
	case ".scr", ".script", ".fsx", "":
	default:
		return nil, &lsp.OptionsError{Kind: lsp.LanguageNotSupported, Path: file}
	}
	return &lsp.AnalysisOptions{
		SourceFiles:     []string{file},
		TargetFramework: targetFramework,
	}, nil
}

// ResolveOptionsForProject implements lsp.Analyzer. Project files list one
// source path per line; blank lines and #-comments are skipped.
func (a *Analyzer) ResolveOptionsForProject(ctx context.Context, projectPath string) (*lsp.AnalysisOptions, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := readLines(projectPath)
	if err != nil {
		return nil, &lsp.OptionsError{Kind: lsp.ProjectNotRestored, Path: projectPath, Err: err}
	}
	opts := &lsp.AnalysisOptions{ProjectPath: projectPath}
	dir := filepath.Dir(projectPath)
	for _, line := range data {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(dir, line)
		}
		opts.SourceFiles = append(opts.SourceFiles, line)
	}
	return opts, nil
}

// ParseAndCheck implements lsp.Analyzer.
func (a *Analyzer) ParseAndCheck(ctx context.Context, file string, version int32, text []string, opts *lsp.AnalysisOptions) (*lsp.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	check := scanFile(file, text)
	res := &lsp.AnalysisResult{
		File:        file,
		Version:     version,
		Parse:       check,
		Check:       check,
		Diagnostics: checkBalance(file, text),
	}
	a.mu.Lock()
	a.recent[file] = res
	a.mu.Unlock()
	return res, nil
}

// TryGetRecent implements lsp.Analyzer.
func (a *Analyzer) TryGetRecent(file string, opts *lsp.AnalysisOptions) (*lsp.AnalysisResult, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	res, ok := a.recent[file]
	return res, ok
}

// GetDeclarations implements lsp.Analyzer.
func (a *Analyzer) GetDeclarations(ctx context.Context, file string, text []string, opts *lsp.AnalysisOptions, version int32) ([]lsp.Declaration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scanFile(file, text).decls, nil
}

// GetUsesOfSymbol implements lsp.Analyzer.
func (a *Analyzer) GetUsesOfSymbol(ctx context.Context, check any, file string, pos protocol.Position) ([]lsp.SymbolUse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cs, ok := check.(*checkState)
	if !ok {
		return nil, fmt.Errorf("unexpected check handle %T", check)
	}
	name := wordAt(cs.lines, pos)
	if name == "" {
		return nil, nil
	}
	defs := map[string]bool{}
	for _, d := range cs.decls {
		if d.Name == name {
			defs[fmt.Sprintf("%d:%d", d.Range.Start.Line, d.Range.Start.Character)] = true
		}
	}
	var uses []lsp.SymbolUse
	for i, line := range cs.lines {
		for _, loc := range wordPattern.FindAllStringIndex(line, -1) {
			if line[loc[0]:loc[1]] != name {
				continue
			}
			rng := protocol.Range{
				Start: protocol.Position{Line: uint32(i), Character: uint32(loc[0])},
				End:   protocol.Position{Line: uint32(i), Character: uint32(loc[1])},
			}
			uses = append(uses, lsp.SymbolUse{
				Name:         name,
				File:         cs.file,
				Range:        rng,
				IsDefinition: defs[fmt.Sprintf("%d:%d", rng.Start.Line, rng.Start.Character)],
			})
		}
	}
	return uses, nil
}

// Compile implements lsp.Analyzer.
func (a *Analyzer) Compile(ctx context.Context, opts *lsp.AnalysisOptions) (*lsp.CompileOutput, error) {
	out := &lsp.CompileOutput{}
	for _, src := range opts.SourceFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines, err := readLines(src)
		if err != nil {
			return nil, &lsp.AnalysisError{File: src, Err: err}
		}
		out.Errors = append(out.Errors, checkBalance(src, lines)...)
	}
	if len(out.Errors) > 0 {
		out.ExitCode = 1
	}
	return out, nil
}

func scanFile(file string, lines []string) *checkState {
	cs := &checkState{file: file, lines: lines}
	for i, line := range lines {
		for _, pat := range []struct {
			re   *regexp.Regexp
			kind protocol.CompletionItemKind
		}{
			{letPattern, protocol.VariableCompletion},
			{funcPattern, protocol.FunctionCompletion},
			{modulePattern, protocol.ModuleCompletion},
			{typePattern, protocol.ClassCompletion},
		} {
			m := pat.re.FindStringSubmatchIndex(line)
			if m == nil {
				continue
			}
			name := line[m[2]:m[3]]
			cs.decls = append(cs.decls, lsp.Declaration{
				DisplayName: name,
				Name:        name,
				File:        file,
				Kind:        pat.kind,
				Help:        fmt.Sprintf("```\n%s\n```", strings.TrimSpace(line)),
				Range: protocol.Range{
					Start: protocol.Position{Line: uint32(i), Character: uint32(m[2])},
					End:   protocol.Position{Line: uint32(i), Character: uint32(m[3])},
				},
			})
			break
		}
		if m := openPattern.FindStringSubmatchIndex(line); m != nil {
			cs.opens = append(cs.opens, open{
				name: line[m[2]:m[3]],
				line: i,
				col:  m[2],
			})
		}
	}
	return cs
}

// checkBalance reports unbalanced brackets, the closest thing this analyzer
// has to a type error.
func checkBalance(file string, lines []string) []lsp.Diagnostic {
	var diagnostics []lsp.Diagnostic
	depth := 0
	for i, line := range lines {
		for j, r := range line {
			switch r {
			case '(', '[', '{':
				depth++
			case ')', ']', '}':
				depth--
				if depth < 0 {
					diagnostics = append(diagnostics, lsp.Diagnostic{
						File:     file,
						Severity: protocol.SeverityError,
						Code:     "SCAN001",
						Source:   "check",
						Message:  fmt.Sprintf("unmatched %q", r),
						Range: protocol.Range{
							Start: protocol.Position{Line: uint32(i), Character: uint32(j)},
							End:   protocol.Position{Line: uint32(i), Character: uint32(j + 1)},
						},
					})
					depth = 0
				}
			}
		}
	}
	return diagnostics
}

func wordAt(lines []string, pos protocol.Position) string {
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	for _, loc := range wordPattern.FindAllStringIndex(line, -1) {
		if int(pos.Character) >= loc[0] && int(pos.Character) <= loc[1] {
			return line[loc[0]:loc[1]]
		}
	}
	return ""
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(string(data), "\n"), nil
}
