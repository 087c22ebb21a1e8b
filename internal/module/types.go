// Package module implements the classifier (toModule), the dependency
// analyser (withDeps) and the supporting data model described in spec.md
// §3–§4.3: a restricted CommonJS module is parsed into a small set of
// tagged statement kinds instead of a general JavaScript AST.
package module

import "fmt"

// Kind distinguishes the two namespace slots a ModuleIdentifier can name.
// Regular modules come from generated code; Foreign modules are their
// hand-written JS twins, sharing the same namespace slot (spec.md §3).
type Kind uint8

const (
	Regular Kind = iota
	Foreign
)

func (k Kind) String() string {
	if k == Foreign {
		return "foreign"
	}
	return "regular"
}

// Identifier names a module uniquely: two modules with the same Name but
// different Kind occupy the same namespace slot but are distinct vertices
// in every graph this package builds.
type Identifier struct {
	Name string
	Kind Kind
}

func (id Identifier) String() string {
	return fmt.Sprintf("%s(%s)", id.Name, id.Kind)
}

// Key names a member across the whole program: the unit of reachability
// for dead-code elimination (spec.md §3, §4.4).
type Key struct {
	Module Identifier
	Name   string
}

func (k Key) String() string {
	return fmt.Sprintf("%s#%s", k.Module, k.Name)
}

// Resolution is the outcome of resolving a require() path: either a known
// internal module, or a literal left for the emitter to pass straight
// through to a runtime require() call (spec.md §3, §4.1).
type Resolution struct {
	ok   bool
	mid  Identifier
	path string
}

func Resolved(mid Identifier) Resolution  { return Resolution{ok: true, mid: mid} }
func Unresolved(path string) Resolution   { return Resolution{ok: false, path: path} }
func (r Resolution) IsResolved() bool     { return r.ok }
func (r Resolution) Module() Identifier   { return r.mid }
func (r Resolution) UnresolvedPath() string { return r.path }

// ExportKind distinguishes the two RHS shapes module.exports = {...}
// entries may take (spec.md §3 ExportType).
type ExportKind uint8

const (
	// An entry `x: y` (or shorthand `y`) where y is a bare identifier.
	RegularExport ExportKind = iota
	// An entry `x: $foreign.x` / `x: $foreign["x"]`.
	ForeignReexport
)

// Element is the tagged union of top-level statement shapes the classifier
// recognises. It's implemented as a small set of concrete types rather than
// an interface hierarchy, per spec.md §9's recommendation.
type Element interface {
	element()
	// Source returns the verbatim original statement text, preserved for
	// emission untouched (spec.md §3 "raw").
	Source() string
}

// Require models `var LOCAL = require("literal");`.
type Require struct {
	Raw       string
	LocalName string
	Literal   string
	Resolved  Resolution
}

func (*Require) element()        {}
func (r *Require) Source() string { return r.Raw }

// Member models a top-level `var NAME = EXPR;` (Exported == false) or
// `exports.NAME = EXPR;` / `exports["NAME"] = EXPR;` (Exported == true).
type Member struct {
	Raw      string
	Exported bool
	Name     string
	Decl     string // the RHS expression's source text
	Deps     []Key
}

func (*Member) element()        {}
func (m *Member) Source() string { return m.Raw }

// ExportEntry is one property of a `module.exports = { ... };` object.
type ExportEntry struct {
	Kind ExportKind
	// SourceName is set only for RegularExport: the identifier on the RHS.
	SourceName   string
	ExportedName string
	ValueExpr    string // the RHS expression's source text, preserved verbatim
	Deps         []Key
}

// ExportsList models one `module.exports = { ... };` statement.
type ExportsList struct {
	Raw     string
	Entries []ExportEntry
}

func (*ExportsList) element()        {}
func (e *ExportsList) Source() string { return e.Raw }

// Other is any top-level statement the classifier doesn't recognise. It is
// always preserved and always retained through DCE (spec.md §4.4).
type Other struct {
	Raw string
}

func (*Other) element()        {}
func (o *Other) Source() string { return o.Raw }

// Module is a classified source file: an identity plus its elements in
// source order. Order is preserved through every transform in the pipeline
// (spec.md §3 "Lifecycle").
type Module struct {
	ID       Identifier
	Elements []Element
}

// IsEmpty reports whether every element is a Require, an Other, or an
// ExportsList whose entries have all been eliminated (spec.md §4.6). A
// surviving Member always makes a module non-empty.
func (m *Module) IsEmpty() bool {
	for _, el := range m.Elements {
		switch e := el.(type) {
		case *Member:
			return false
		case *ExportsList:
			if len(e.Entries) > 0 {
				return false
			}
		}
	}
	return true
}
