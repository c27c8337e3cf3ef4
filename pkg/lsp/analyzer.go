package lsp

import (
	"context"

	"github.com/kralicky/tools-lite/gopls/pkg/protocol"
)

// AnalysisOptions is the resolved set of inputs required to analyze a file:
// the source file list, the reference set, and any analyzer-specific flags.
// Options are either inherited from an owning project or synthesized for a
// standalone script. All paths within options are absolute.
type AnalysisOptions struct {
	// ProjectPath is the owning project file, or empty for a synthesized
	// script configuration.
	ProjectPath     string
	SourceFiles     []string
	References      []string
	Flags           []string
	TargetFramework string
}

// IsScript reports whether these options were synthesized for a standalone
// file rather than resolved from a project.
func (o *AnalysisOptions) IsScript() bool {
	return o.ProjectPath == ""
}

// AnalysisResult is the outcome of analyzing one file at a specific version.
// The parse and check handles are opaque to the engine; only the analyzer
// that produced them can interpret them.
type AnalysisResult struct {
	File        string
	Version     int32
	Parse       any
	Check       any
	Diagnostics []Diagnostic
}

type Diagnostic struct {
	File     string
	Range    protocol.Range
	Severity protocol.DiagnosticSeverity
	Code     string
	Message  string
	Tags     []protocol.DiagnosticTag
	// Source names the analysis pass that produced the diagnostic, e.g.
	// "check" or a background analyzer name.
	Source string
}

// Declaration is one symbol offered by completion or matched by navigation.
type Declaration struct {
	// DisplayName is the name as presented to the editor; Name is the
	// unqualified symbol name used for help-text lookups.
	DisplayName string
	Name        string
	File        string
	Range       protocol.Range
	Kind        protocol.CompletionItemKind
	Help        string
}

// SymbolUse is one occurrence of a symbol within the analyzed sources.
type SymbolUse struct {
	Name         string
	File         string
	Range        protocol.Range
	IsDefinition bool
}

// CompileOutput is the result of a whole-options compilation.
type CompileOutput struct {
	Errors   []Diagnostic
	ExitCode int
}

// Analyzer is the opaque semantic-analysis capability the dispatcher drives.
// Every call may be long-running and must honor cancellation of the supplied
// context at its own suspension points; the engine never assumes synchronous
// completion.
type Analyzer interface {
	// ResolveOptionsForScript synthesizes options for a file with no owning
	// project. The target framework hint may be empty.
	ResolveOptionsForScript(ctx context.Context, file string, text []string, targetFramework string) (*AnalysisOptions, error)

	// ResolveOptionsForProject resolves options from a project file.
	ResolveOptionsForProject(ctx context.Context, projectPath string) (*AnalysisOptions, error)

	// ParseAndCheck produces a full analysis result for one file.
	ParseAndCheck(ctx context.Context, file string, version int32, text []string, opts *AnalysisOptions) (*AnalysisResult, error)

	// TryGetRecent returns the analyzer's own most recent result for the
	// file, if it happens to have one. Best effort, never blocks.
	TryGetRecent(file string, opts *AnalysisOptions) (*AnalysisResult, bool)

	// GetDeclarations lists the declarations visible in the file, used to
	// populate completion.
	GetDeclarations(ctx context.Context, file string, text []string, opts *AnalysisOptions, version int32) ([]Declaration, error)

	// GetUsesOfSymbol finds all uses of the symbol at the given position,
	// within the scope of the given check handle.
	GetUsesOfSymbol(ctx context.Context, check any, file string, pos protocol.Position) ([]SymbolUse, error)

	// Compile performs a full compilation of the given options.
	Compile(ctx context.Context, opts *AnalysisOptions) (*CompileOutput, error)
}
