package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kralicky/tools-lite/gopls/pkg/protocol"
	"github.com/kralicky/tools-lite/pkg/jsonrpc2"
	"github.com/mitchellh/mapstructure"
)

type Server struct {
	client     protocol.Client
	dispatcher *Dispatcher
	watcher    *DiskWatcher
	folders    []string
}

type ServerOption func(*serverOptions)

type serverOptions struct {
	dispatcherOpts []DispatcherOption
	disableWatcher bool
}

// WithDispatcherOptions forwards options to the server's dispatcher.
func WithDispatcherOptions(opts ...DispatcherOption) ServerOption {
	return func(o *serverOptions) {
		o.dispatcherOpts = append(o.dispatcherOpts, opts...)
	}
}

// WithoutDiskWatcher disables on-disk change tracking; useful in tests.
func WithoutDiskWatcher() ServerOption {
	return func(o *serverOptions) {
		o.disableWatcher = true
	}
}

func NewServer(client protocol.Client, analyzer Analyzer, opts ...ServerOption) *Server {
	options := serverOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	s := &Server{
		client:     client,
		dispatcher: NewDispatcher(analyzer, options.dispatcherOpts...),
	}
	if !options.disableWatcher {
		w, err := NewDiskWatcher(&DiskWatcherTarget{
			Docs:  s.dispatcher.Documents(),
			Check: s.dispatcher.CheckInBackground,
		})
		if err != nil {
			slog.Warn("disk watcher unavailable", "error", err)
		} else {
			s.watcher = w
		}
	}
	s.dispatcher.Bus().Subscribe(s.forwardEvent)
	return s
}

// Dispatcher exposes the orchestration core, mainly for tests and embedders.
func (s *Server) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// forwardEvent translates bus events into client push notifications. It runs
// on the publishing path, so everything it does must be quick; the client
// dispatcher queues outgoing messages.
func (s *Server) forwardEvent(e Event) {
	ctx := context.Background()
	switch e.Kind {
	case EventDiagnosticsPublished:
		version := e.Version
		if version == NoVersion {
			version = 0
		}
		s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
			URI:         protocol.URIFromPath(e.File),
			Version:     version,
			Diagnostics: diagnosticsToProtocol(e.Diagnostics),
		})
	case EventWorkspaceLoadProgress:
		if e.Progress == nil {
			return
		}
		msg := fmt.Sprintf("loaded %d/%d projects (%s)", e.Progress.Loaded, e.Progress.Total, e.Progress.Project)
		if e.Progress.Err != nil {
			msg = fmt.Sprintf("failed to load %s: %v", e.Progress.Project, e.Progress.Err)
		}
		s.client.LogMessage(ctx, &protocol.LogMessageParams{
			Type:    protocol.Log,
			Message: msg,
		})
	case EventRequestCancelled:
		slog.Debug("request cancelled", "file", e.File, "reason", e.Reason)
	}
}

func diagnosticsToProtocol(diagnostics []Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diagnostics))
	for _, d := range diagnostics {
		out = append(out, protocol.Diagnostic{
			Range:    d.Range,
			Severity: d.Severity,
			Code:     d.Code,
			Source:   d.Source,
			Message:  d.Message,
			Tags:     d.Tags,
		})
	}
	return out
}

// Initialize implements protocol.Server.
func (s *Server) Initialize(ctx context.Context, params *protocol.ParamInitialize) (*protocol.InitializeResult, error) {
	settings := &Settings{}
	if params.InitializationOptions != nil {
		if err := mapstructure.Decode(params.InitializationOptions, settings); err != nil {
			slog.Warn("invalid initialization options", "error", err)
		}
	}
	s.dispatcher.ApplySettings(settings)

	for _, folder := range params.WorkspaceFolders {
		path := protocol.DocumentURI(folder.URI).Path()
		slog.Info("adding workspace folder", "path", path)
		s.folders = append(s.folders, path)
	}

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.Incremental,
				Save:      &protocol.SaveOptions{IncludeText: false},
			},
			HoverProvider: &protocol.Or_ServerCapabilities_hoverProvider{Value: true},
			DiagnosticProvider: &protocol.Or_ServerCapabilities_diagnosticProvider{
				Value: protocol.DiagnosticOptions{
					InterFileDependencies: true,
				},
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{"."},
				ResolveProvider:   true,
			},
			ReferencesProvider: &protocol.Or_ServerCapabilities_referencesProvider{Value: true},
			DefinitionProvider: &protocol.Or_ServerCapabilities_definitionProvider{Value: true},
			RenameProvider:     &protocol.Or_ServerCapabilities_renameProvider{Value: true},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "scriptls",
			Version: "0.1.0",
		},
	}, nil
}

// Initialized implements protocol.Server.
func (s *Server) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	settings := s.dispatcher.Settings()
	if len(settings.Projects) > 0 {
		go func() {
			if err := s.dispatcher.Workspace().Load(context.Background(), settings.Projects); err != nil {
				slog.Error("workspace load failed", "error", err)
			}
		}()
	}
	if s.watcher != nil {
		for _, folder := range s.folders {
			if err := s.watcher.Watch(folder); err != nil {
				slog.Debug("cannot watch folder", "path", folder, "error", err)
			}
		}
		go s.watcher.Run(context.Background())
	}
	return nil
}

// DidOpen implements protocol.Server.
func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	path := params.TextDocument.URI.Path()
	s.dispatcher.Documents().SetText(path, params.TextDocument.Text, params.TextDocument.Version)
	s.dispatcher.CheckInBackground(context.Background(), path)
	return nil
}

// DidChange implements protocol.Server.
func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	path := params.TextDocument.URI.Path()
	text, err := s.dispatcher.Documents().ChangedText(ctx, params.TextDocument.URI, params.ContentChanges)
	if err != nil {
		return err
	}
	s.dispatcher.Documents().SetText(path, string(text), params.TextDocument.Version)
	s.dispatcher.CheckInBackground(context.Background(), path)
	return nil
}

// DidSave implements protocol.Server.
func (s *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	path := params.TextDocument.URI.Path()
	if params.Text != nil {
		fs, ok := s.dispatcher.Documents().Get(path)
		version := NoVersion
		if ok {
			version = fs.Version
		}
		s.dispatcher.Documents().SetText(path, *params.Text, version)
	}
	s.dispatcher.CheckInBackground(context.Background(), path)
	return nil
}

// DidClose implements protocol.Server.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.dispatcher.Forget(params.TextDocument.URI.Path())
	return nil
}

// Completion implements protocol.Server.
func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	res, err := s.dispatcher.Completion(ctx, params.TextDocument.URI.Path(), params.Position)
	if err != nil {
		// best-effort: a missing answer must never block typing
		if !IsCancelled(err) {
			slog.Debug("completion unavailable", "error", err)
		}
		return &protocol.CompletionList{Items: []protocol.CompletionItem{}}, nil
	}
	items := make([]protocol.CompletionItem, 0, len(res.Declarations))
	for _, decl := range res.Declarations {
		items = append(items, protocol.CompletionItem{
			Label: decl.DisplayName,
			Kind:  decl.Kind,
		})
	}
	return &protocol.CompletionList{Items: items}, nil
}

// ResolveCompletionItem implements protocol.Server.
func (s *Server) ResolveCompletionItem(ctx context.Context, item *protocol.CompletionItem) (*protocol.CompletionItem, error) {
	decl, ok := s.dispatcher.ResolveCompletion(item.Label)
	if !ok {
		return item, nil
	}
	out := *item
	out.Documentation = &protocol.Or_CompletionItem_documentation{
		Value: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: decl.Help,
		},
	}
	return &out, nil
}

// Hover implements protocol.Server.
func (s *Server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	res, err := s.dispatcher.Hover(ctx, params.TextDocument.URI.Path(), params.Position)
	if err != nil || res == nil {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: res.Contents,
		},
		Range: res.Range,
	}, nil
}

// Definition implements protocol.Server.
func (s *Server) Definition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	loc, err := s.dispatcher.FindDeclaration(ctx, params.TextDocument.URI.Path(), params.Position)
	if err != nil {
		if IsCancelled(err) {
			return nil, nil
		}
		return nil, err
	}
	if loc == nil {
		return nil, nil
	}
	return []protocol.Location{{
		URI:   protocol.URIFromPath(loc.File),
		Range: loc.Range,
	}}, nil
}

// References implements protocol.Server.
func (s *Server) References(ctx context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	locs, err := s.dispatcher.References(ctx, params.TextDocument.URI.Path(), params.Position, params.Context.IncludeDeclaration)
	if err != nil {
		return nil, err
	}
	out := make([]protocol.Location, 0, len(locs))
	for _, loc := range locs {
		out = append(out, protocol.Location{
			URI:   protocol.URIFromPath(loc.File),
			Range: loc.Range,
		})
	}
	return out, nil
}

// Rename implements protocol.Server.
func (s *Server) Rename(ctx context.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	res, err := s.dispatcher.Rename(ctx, params.TextDocument.URI.Path(), params.Position, params.NewName)
	if err != nil {
		return nil, err
	}
	changes := make(map[protocol.DocumentURI][]protocol.TextEdit, len(res.Changes))
	for path, edits := range res.Changes {
		changes[protocol.URIFromPath(path)] = edits
	}
	return &protocol.WorkspaceEdit{Changes: changes}, nil
}

// Diagnostic implements protocol.Server.
func (s *Server) Diagnostic(ctx context.Context, params *protocol.DocumentDiagnosticParams) (*protocol.Or_DocumentDiagnosticReport, error) {
	var prev []string
	if params.PreviousResultID != "" {
		prev = append(prev, params.PreviousResultID)
	}
	diagnostics, resultID, unchanged := s.dispatcher.Diagnostics().GetForPath(params.TextDocument.URI.Path(), prev...)
	if unchanged {
		return &protocol.Or_DocumentDiagnosticReport{
			Value: protocol.RelatedUnchangedDocumentDiagnosticReport{
				UnchangedDocumentDiagnosticReport: protocol.UnchangedDocumentDiagnosticReport{
					Kind:     string(protocol.DiagnosticUnchanged),
					ResultID: resultID,
				},
			},
		}, nil
	}
	return &protocol.Or_DocumentDiagnosticReport{
		Value: protocol.RelatedFullDocumentDiagnosticReport{
			FullDocumentDiagnosticReport: protocol.FullDocumentDiagnosticReport{
				Kind:     string(protocol.DiagnosticFull),
				ResultID: resultID,
				Items:    diagnosticsToProtocol(diagnostics),
			},
		},
	}, nil
}

// ExecuteCommand implements protocol.Server.
func (s *Server) ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (interface{}, error) {
	switch params.Command {
	case "scriptls/compile":
		if len(params.Arguments) == 0 {
			return nil, fmt.Errorf("%w: missing path argument", jsonrpc2.ErrInvalidParams)
		}
		var path string
		if err := json.Unmarshal(params.Arguments[0], &path); err != nil {
			return nil, err
		}
		out, err := s.dispatcher.Compile(ctx, protocol.DocumentURI(path).Path())
		if err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, jsonrpc2.ErrMethodNotFound
	}
}

// DidChangeConfiguration implements protocol.Server.
func (s *Server) DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) error {
	settings := &Settings{}
	if err := mapstructure.Decode(params.Settings, settings); err != nil {
		return fmt.Errorf("%w: %v", jsonrpc2.ErrParse, err)
	}
	s.dispatcher.ApplySettings(settings)
	return nil
}

// DidChangeWorkspaceFolders implements protocol.Server.
func (s *Server) DidChangeWorkspaceFolders(ctx context.Context, params *protocol.DidChangeWorkspaceFoldersParams) error {
	for _, folder := range params.Event.Added {
		path := protocol.DocumentURI(folder.URI).Path()
		slog.Info("adding workspace folder", "path", path)
		s.folders = append(s.folders, path)
		if s.watcher != nil {
			if err := s.watcher.Watch(path); err != nil {
				slog.Debug("cannot watch folder", "path", path, "error", err)
			}
		}
	}
	return nil
}

// Shutdown implements protocol.Server.
func (*Server) Shutdown(context.Context) error {
	return nil
}

// Exit implements protocol.Server.
func (*Server) Exit(context.Context) error {
	return nil
}

// SetTrace implements protocol.Server.
func (*Server) SetTrace(context.Context, *protocol.SetTraceParams) error {
	return nil
}

// =====================
// Unimplemented Methods
// =====================

// Declaration implements protocol.Server.
func (*Server) Declaration(context.Context, *protocol.DeclarationParams) (*protocol.Or_textDocument_declaration, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// SignatureHelp implements protocol.Server.
func (*Server) SignatureHelp(context.Context, *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// Subtypes implements protocol.Server.
func (*Server) Subtypes(context.Context, *protocol.TypeHierarchySubtypesParams) ([]protocol.TypeHierarchyItem, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// Supertypes implements protocol.Server.
func (*Server) Supertypes(context.Context, *protocol.TypeHierarchySupertypesParams) ([]protocol.TypeHierarchyItem, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// Symbol implements protocol.Server.
func (*Server) Symbol(context.Context, *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// TypeDefinition implements protocol.Server.
func (*Server) TypeDefinition(context.Context, *protocol.TypeDefinitionParams) ([]protocol.Location, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// DocumentSymbol implements protocol.Server.
func (*Server) DocumentSymbol(context.Context, *protocol.DocumentSymbolParams) ([]interface{}, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// DocumentColor implements protocol.Server.
func (*Server) DocumentColor(context.Context, *protocol.DocumentColorParams) ([]protocol.ColorInformation, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// DocumentHighlight implements protocol.Server.
func (*Server) DocumentHighlight(context.Context, *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// DocumentLink implements protocol.Server.
func (*Server) DocumentLink(context.Context, *protocol.DocumentLinkParams) ([]protocol.DocumentLink, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// Formatting implements protocol.Server.
func (*Server) Formatting(context.Context, *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// RangeFormatting implements protocol.Server.
func (*Server) RangeFormatting(context.Context, *protocol.DocumentRangeFormattingParams) ([]protocol.TextEdit, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// RangesFormatting implements protocol.Server.
func (*Server) RangesFormatting(context.Context, *protocol.DocumentRangesFormattingParams) ([]protocol.TextEdit, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// OnTypeFormatting implements protocol.Server.
func (*Server) OnTypeFormatting(context.Context, *protocol.DocumentOnTypeFormattingParams) ([]protocol.TextEdit, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// InlayHint implements protocol.Server.
func (*Server) InlayHint(context.Context, *protocol.InlayHintParams) ([]protocol.InlayHint, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// InlayHintRefresh implements protocol.Server.
func (*Server) InlayHintRefresh(context.Context) error {
	return jsonrpc2.ErrMethodNotFound
}

// Resolve implements protocol.Server.
func (*Server) Resolve(context.Context, *protocol.InlayHint) (*protocol.InlayHint, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// InlineCompletion implements protocol.Server.
func (*Server) InlineCompletion(context.Context, *protocol.InlineCompletionParams) (*protocol.Or_Result_textDocument_inlineCompletion, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// InlineValue implements protocol.Server.
func (*Server) InlineValue(context.Context, *protocol.InlineValueParams) ([]protocol.Or_InlineValue, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// InlineValueRefresh implements protocol.Server.
func (*Server) InlineValueRefresh(context.Context) error {
	return jsonrpc2.ErrMethodNotFound
}

// LinkedEditingRange implements protocol.Server.
func (*Server) LinkedEditingRange(context.Context, *protocol.LinkedEditingRangeParams) (*protocol.LinkedEditingRanges, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// Moniker implements protocol.Server.
func (*Server) Moniker(context.Context, *protocol.MonikerParams) ([]protocol.Moniker, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// Implementation implements protocol.Server.
func (*Server) Implementation(context.Context, *protocol.ImplementationParams) ([]protocol.Location, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// IncomingCalls implements protocol.Server.
func (*Server) IncomingCalls(context.Context, *protocol.CallHierarchyIncomingCallsParams) ([]protocol.CallHierarchyIncomingCall, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// OutgoingCalls implements protocol.Server.
func (*Server) OutgoingCalls(context.Context, *protocol.CallHierarchyOutgoingCallsParams) ([]protocol.CallHierarchyOutgoingCall, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// PrepareCallHierarchy implements protocol.Server.
func (*Server) PrepareCallHierarchy(context.Context, *protocol.CallHierarchyPrepareParams) ([]protocol.CallHierarchyItem, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// PrepareRename implements protocol.Server.
func (*Server) PrepareRename(context.Context, *protocol.PrepareRenameParams) (*protocol.PrepareRenameResult, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// PrepareTypeHierarchy implements protocol.Server.
func (*Server) PrepareTypeHierarchy(context.Context, *protocol.TypeHierarchyPrepareParams) ([]protocol.TypeHierarchyItem, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// Progress implements protocol.Server.
func (*Server) Progress(context.Context, *protocol.ProgressParams) error {
	return jsonrpc2.ErrMethodNotFound
}

// SelectionRange implements protocol.Server.
func (*Server) SelectionRange(context.Context, *protocol.SelectionRangeParams) ([]protocol.SelectionRange, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// SemanticTokensFull implements protocol.Server.
func (*Server) SemanticTokensFull(context.Context, *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// SemanticTokensFullDelta implements protocol.Server.
func (*Server) SemanticTokensFullDelta(context.Context, *protocol.SemanticTokensDeltaParams) (interface{}, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// SemanticTokensRange implements protocol.Server.
func (*Server) SemanticTokensRange(context.Context, *protocol.SemanticTokensRangeParams) (*protocol.SemanticTokens, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// SemanticTokensRefresh implements protocol.Server.
func (*Server) SemanticTokensRefresh(context.Context) error {
	return jsonrpc2.ErrMethodNotFound
}

// CodeAction implements protocol.Server.
func (*Server) CodeAction(context.Context, *protocol.CodeActionParams) ([]protocol.CodeAction, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// ResolveCodeAction implements protocol.Server.
func (*Server) ResolveCodeAction(context.Context, *protocol.CodeAction) (*protocol.CodeAction, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// CodeLens implements protocol.Server.
func (*Server) CodeLens(context.Context, *protocol.CodeLensParams) ([]protocol.CodeLens, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// CodeLensRefresh implements protocol.Server.
func (*Server) CodeLensRefresh(context.Context) error {
	return jsonrpc2.ErrMethodNotFound
}

// ResolveCodeLens implements protocol.Server.
func (*Server) ResolveCodeLens(context.Context, *protocol.CodeLens) (*protocol.CodeLens, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// ColorPresentation implements protocol.Server.
func (*Server) ColorPresentation(context.Context, *protocol.ColorPresentationParams) ([]protocol.ColorPresentation, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// ResolveDocumentLink implements protocol.Server.
func (*Server) ResolveDocumentLink(context.Context, *protocol.DocumentLink) (*protocol.DocumentLink, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// ResolveWorkspaceSymbol implements protocol.Server.
func (*Server) ResolveWorkspaceSymbol(context.Context, *protocol.WorkspaceSymbol) (*protocol.WorkspaceSymbol, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// DiagnosticRefresh implements protocol.Server.
func (*Server) DiagnosticRefresh(context.Context) error {
	return jsonrpc2.ErrMethodNotFound
}

// DiagnosticWorkspace implements protocol.Server.
func (*Server) DiagnosticWorkspace(context.Context, *protocol.WorkspaceDiagnosticParams) (*protocol.WorkspaceDiagnosticReport, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// WillCreateFiles implements protocol.Server.
func (*Server) WillCreateFiles(context.Context, *protocol.CreateFilesParams) (*protocol.WorkspaceEdit, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// DidCreateFiles implements protocol.Server.
func (*Server) DidCreateFiles(context.Context, *protocol.CreateFilesParams) error {
	return jsonrpc2.ErrMethodNotFound
}

// WillDeleteFiles implements protocol.Server.
func (*Server) WillDeleteFiles(context.Context, *protocol.DeleteFilesParams) (*protocol.WorkspaceEdit, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// DidDeleteFiles implements protocol.Server.
func (*Server) DidDeleteFiles(context.Context, *protocol.DeleteFilesParams) error {
	return jsonrpc2.ErrMethodNotFound
}

// WillRenameFiles implements protocol.Server.
func (*Server) WillRenameFiles(context.Context, *protocol.RenameFilesParams) (*protocol.WorkspaceEdit, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// DidRenameFiles implements protocol.Server.
func (*Server) DidRenameFiles(context.Context, *protocol.RenameFilesParams) error {
	return jsonrpc2.ErrMethodNotFound
}

// WillSave implements protocol.Server.
func (*Server) WillSave(context.Context, *protocol.WillSaveTextDocumentParams) error {
	return jsonrpc2.ErrMethodNotFound
}

// WillSaveWaitUntil implements protocol.Server.
func (*Server) WillSaveWaitUntil(context.Context, *protocol.WillSaveTextDocumentParams) ([]protocol.TextEdit, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// WorkDoneProgressCancel implements protocol.Server.
func (*Server) WorkDoneProgressCancel(context.Context, *protocol.WorkDoneProgressCancelParams) error {
	return jsonrpc2.ErrMethodNotFound
}

// DidChangeNotebookDocument implements protocol.Server.
func (*Server) DidChangeNotebookDocument(context.Context, *protocol.DidChangeNotebookDocumentParams) error {
	return jsonrpc2.ErrMethodNotFound
}

// DidCloseNotebookDocument implements protocol.Server.
func (*Server) DidCloseNotebookDocument(context.Context, *protocol.DidCloseNotebookDocumentParams) error {
	return jsonrpc2.ErrMethodNotFound
}

// DidOpenNotebookDocument implements protocol.Server.
func (*Server) DidOpenNotebookDocument(context.Context, *protocol.DidOpenNotebookDocumentParams) error {
	return jsonrpc2.ErrMethodNotFound
}

// DidSaveNotebookDocument implements protocol.Server.
func (*Server) DidSaveNotebookDocument(context.Context, *protocol.DidSaveNotebookDocumentParams) error {
	return jsonrpc2.ErrMethodNotFound
}

// DidChangeWatchedFiles implements protocol.Server.
func (*Server) DidChangeWatchedFiles(context.Context, *protocol.DidChangeWatchedFilesParams) error {
	return jsonrpc2.ErrMethodNotFound
}

// FoldingRange implements protocol.Server.
func (*Server) FoldingRange(context.Context, *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

// NonstandardRequest implements protocol.Server.
func (*Server) NonstandardRequest(ctx context.Context, method string, params interface{}) (interface{}, error) {
	return nil, jsonrpc2.ErrMethodNotFound
}

var _ protocol.Server = (*Server)(nil)
