package lsp

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound indicates a file or project unknown to the session.
var ErrNotFound = errors.New("not found")

// OptionsErrorKind narrows the reason options resolution failed so the
// transport layer can decide whether to surface an error or degrade.
type OptionsErrorKind int

const (
	LanguageNotSupported OptionsErrorKind = iota
	ReferencesNotLoaded
	ProjectNotRestored
)

func (k OptionsErrorKind) String() string {
	switch k {
	case LanguageNotSupported:
		return "language not supported"
	case ReferencesNotLoaded:
		return "references not loaded"
	case ProjectNotRestored:
		return "project not restored"
	default:
		return "unknown"
	}
}

// OptionsError indicates a project or script configuration could not be
// computed.
type OptionsError struct {
	Kind OptionsErrorKind
	Path string
	Err  error
}

func (e *OptionsError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolving options for %s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("resolving options for %s: %s", e.Path, e.Kind)
}

func (e *OptionsError) Unwrap() error { return e.Err }

// AnalysisError indicates the analyzer returned a compiler-level failure
// unrelated to cancellation.
type AnalysisError struct {
	File string
	Err  error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis of %s failed: %v", e.File, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// IsCancelled reports whether err represents a superseded or abandoned
// operation. Cancellation is routine, not exceptional; callers convert it to
// an informational outcome rather than a failure.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
