// Package berr defines the pipeline's error taxonomy. Every stage returns
// one of these instead of an ad hoc error string, so a caller can switch on
// Kind without parsing messages. There is no recovery path: the first error
// produced by any stage aborts the pipeline (spec.md §7).
package berr

import (
	"fmt"

	"github.com/jutaro/purescript/internal/logger"
)

type Kind uint8

const (
	// A require() path matched neither "./foreign" nor a known module, and
	// the caller opted into strict resolution instead of the default
	// fall-through to an Unresolved require.
	UnsupportedModulePath Kind = iota

	// The AST root handed to the classifier was not a program (ordered
	// statement list).
	InvalidTopLevel

	// The parser adapter failed outright; Msg carries its diagnostic text
	// verbatim.
	UnableToParseModule

	// An `exports`-shaped statement was recognised but its right-hand side
	// was not an identifier or a `$foreign.X` / `$foreign["X"]` access.
	UnsupportedExport
)

func (k Kind) String() string {
	switch k {
	case UnsupportedModulePath:
		return "unsupported module path"
	case InvalidTopLevel:
		return "invalid top level"
	case UnableToParseModule:
		return "unable to parse module"
	case UnsupportedExport:
		return "unsupported export"
	default:
		return "unknown error"
	}
}

// Error is the shape every pipeline stage returns. Inner is non-nil when
// this wraps a lower-level Go error (e.g. a parser failure); Msg carries
// the human-readable, source-located diagnostic.
type Error struct {
	Kind  Kind
	Msg   logger.Msg
	Inner error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, logger.MsgString(e.Msg))
}

func (e *Error) Unwrap() error {
	return e.Inner
}

func New(kind Kind, source *logger.Source, loc logger.Loc, text string) *Error {
	return &Error{Kind: kind, Msg: logger.Msg{Kind: logger.Error, Data: logger.RangeData(source, logger.Range{Loc: loc}, text)}}
}

func Wrap(kind Kind, source *logger.Source, loc logger.Loc, text string, inner error) *Error {
	e := New(kind, source, loc, text)
	e.Inner = inner
	return e
}

// InModule wraps any error produced while processing a specific module with
// that module's identity, per spec.md §4.1/§7 ("ErrorInModule"). The inner
// error's Kind and message are preserved; only the text is annotated so the
// caller still sees the original diagnostic.
func InModule(moduleName string, moduleKind string, inner error) error {
	if inner == nil {
		return nil
	}
	if be, ok := inner.(*Error); ok {
		wrapped := *be
		wrapped.Msg.Data.Text = fmt.Sprintf("[%s %s] %s", moduleKind, moduleName, be.Msg.Data.Text)
		wrapped.Inner = inner
		return &wrapped
	}
	return fmt.Errorf("[%s %s] %w", moduleKind, moduleName, inner)
}
