package lsp

import (
	"context"
	"sync"

	gsync "github.com/kralicky/gpkg/sync"
)

// Token is a cooperative cancellation handle for one in-flight operation.
// The operation checks the token at its suspension points, and always before
// committing results to the analysis cache; cancellation is never preemptive.
type Token struct {
	file   string
	ctx    context.Context
	cancel context.CancelFunc
}

func (t *Token) File() string { return t.file }

// Ctx is the operation-scoped context; it is cancelled when the token's file
// is superseded by a newer operation.
func (t *Token) Ctx() context.Context { return t.ctx }

func (t *Token) Cancelled() bool {
	return t.ctx.Err() != nil
}

// CancelRegistry tracks live cancellation handles for in-flight operations,
// keyed by normalized file path. Registration enforces last-request-wins per
// file: a new token for a file cancels and discards every prior token for
// that same file, and never touches any other file's tokens.
type CancelRegistry struct {
	sets gsync.Map[string, *tokenSet]
}

type tokenSet struct {
	mu   sync.Mutex
	live []*Token
}

func NewCancelRegistry() *CancelRegistry {
	return &CancelRegistry{}
}

// Register creates a new token for the file, first cancelling and discarding
// all existing tokens registered for it. The returned token's context is
// derived from ctx, so caller-imposed deadlines still apply.
func (r *CancelRegistry) Register(ctx context.Context, file string) *Token {
	file = NormalizePath(file)
	set, _ := r.sets.LoadOrStore(file, &tokenSet{})
	opCtx, cancel := context.WithCancel(ctx)
	tok := &Token{file: file, ctx: opCtx, cancel: cancel}

	set.mu.Lock()
	for _, old := range set.live {
		old.cancel()
	}
	set.live = append(set.live[:0], tok)
	set.mu.Unlock()
	return tok
}

// CancelAll cancels every live token for the file without registering a
// replacement.
func (r *CancelRegistry) CancelAll(file string) {
	file = NormalizePath(file)
	set, ok := r.sets.Load(file)
	if !ok {
		return
	}
	set.mu.Lock()
	for _, old := range set.live {
		old.cancel()
	}
	set.live = set.live[:0]
	set.mu.Unlock()
}

// Active reports whether any uncancelled token is registered for the file,
// i.e. whether an operation is still in flight.
func (r *CancelRegistry) Active(file string) bool {
	file = NormalizePath(file)
	set, ok := r.sets.Load(file)
	if !ok {
		return false
	}
	set.mu.Lock()
	defer set.mu.Unlock()
	for _, t := range set.live {
		if !t.Cancelled() {
			return true
		}
	}
	return false
}

// Release discards the token if it is still the registered one for its file.
// Completed operations call this so the registry does not accumulate spent
// handles.
func (r *CancelRegistry) Release(tok *Token) {
	set, ok := r.sets.Load(tok.file)
	if !ok {
		return
	}
	set.mu.Lock()
	for i, t := range set.live {
		if t == tok {
			set.live = append(set.live[:i], set.live[i+1:]...)
			break
		}
	}
	set.mu.Unlock()
	tok.cancel()
}
