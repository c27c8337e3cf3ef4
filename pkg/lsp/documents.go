package lsp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kralicky/tools-lite/gopls/pkg/protocol"
	"github.com/kralicky/tools-lite/pkg/diff"
	"github.com/kralicky/tools-lite/pkg/jsonrpc2"
)

// NoVersion marks a file that was never explicitly opened or edited in the
// session, e.g. one populated from disk.
const NoVersion int32 = -1

// FileState is one open-or-touched source file. Entries are replaced whole on
// every update; readers always observe either the old or the new complete
// entry.
type FileState struct {
	Path    string
	Lines   []string
	Version int32
	Touched time.Time
}

// HasVersion reports whether the file was explicitly opened or edited during
// this session.
func (f *FileState) HasVersion() bool {
	return f.Version != NoVersion
}

func (f *FileState) Text() string {
	return strings.Join(f.Lines, "\n")
}

// DocumentStore holds per-file text content, version, and timestamp. It does
// not trigger analysis itself; callers invoke the dispatcher's check after a
// content update.
type DocumentStore struct {
	mu    sync.RWMutex
	files map[string]*FileState
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		files: map[string]*FileState{},
	}
}

// NormalizePath canonicalizes a file path before it is used as a key anywhere
// in the session.
func NormalizePath(path string) string {
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return filepath.Clean(path)
}

// SetContent replaces the file's content and records version and timestamp
// unconditionally. Pass NoVersion for files not opened in an editor.
func (s *DocumentStore) SetContent(path string, lines []string, version int32) *FileState {
	path = NormalizePath(path)
	fs := &FileState{
		Path:    path,
		Lines:   slices.Clone(lines),
		Version: version,
		Touched: time.Now(),
	}
	s.mu.Lock()
	s.files[path] = fs
	s.mu.Unlock()
	return fs
}

// SetText is SetContent for callers holding a single string.
func (s *DocumentStore) SetText(path string, text string, version int32) *FileState {
	return s.SetContent(path, strings.Split(text, "\n"), version)
}

func (s *DocumentStore) Get(path string) (*FileState, bool) {
	path = NormalizePath(path)
	s.mu.RLock()
	defer s.mu.RUnlock()
	fs, ok := s.files[path]
	return fs, ok
}

func (s *DocumentStore) GetContent(path string) ([]string, error) {
	fs, ok := s.Get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return slices.Clone(fs.Lines), nil
}

// GetVersion returns the file's version, or NoVersion if the file is known
// but was never opened in an editor.
func (s *DocumentStore) GetVersion(path string) (int32, error) {
	fs, ok := s.Get(path)
	if !ok {
		return NoVersion, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return fs.Version, nil
}

// Forget drops the entry for a closed file that only ever existed as an
// editor overlay. Files also resident on disk are reloaded lazily instead.
func (s *DocumentStore) Forget(path string) {
	path = NormalizePath(path)
	s.mu.Lock()
	delete(s.files, path)
	s.mu.Unlock()
}

// GetOrReadFromDisk returns the file's state, populating it from disk at
// NoVersion if it is not already resident.
func (s *DocumentStore) GetOrReadFromDisk(path string) (*FileState, error) {
	if fs, ok := s.Get(path); ok {
		return fs, nil
	}
	path = NormalizePath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return s.SetContent(path, strings.Split(string(data), "\n"), NoVersion), nil
}

// ChangedText flattens LSP content change events against the file's current
// content, returning the full replacement text. Incremental deltas exist only
// at this boundary; the store itself records whole contents.
func (s *DocumentStore) ChangedText(ctx context.Context, uri protocol.DocumentURI, changes []protocol.TextDocumentContentChangeEvent) ([]byte, error) {
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: no content changes provided", jsonrpc2.ErrInternal)
	}

	// Check if the client sent the full content of the file.
	// We accept a full content change even if the server expected incremental changes.
	if len(changes) == 1 && changes[0].Range == nil && changes[0].RangeLength == 0 {
		return []byte(changes[0].Text), nil
	}

	fs, ok := s.Get(uri.Path())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri.Path())
	}
	m := protocol.NewMapper(uri, []byte(fs.Text()))
	diffs, err := contentChangeEventsToDiffEdits(m, changes)
	if err != nil {
		return nil, err
	}
	return diff.ApplyBytes(m.Content, diffs)
}

func contentChangeEventsToDiffEdits(mapper *protocol.Mapper, changes []protocol.TextDocumentContentChangeEvent) ([]diff.Edit, error) {
	var edits []protocol.TextEdit
	for _, change := range changes {
		edits = append(edits, protocol.TextEdit{
			Range:   *change.Range,
			NewText: change.Text,
		})
	}

	return protocol.EditsToDiffEdits(mapper, edits)
}
