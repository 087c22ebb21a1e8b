// Package emit implements the code generator named in spec.md §4.7
// (codeGen): it turns a sorted slice of surviving modules into one
// deterministic JavaScript bundle. Every Member, Other and ExportsList
// entry is spliced in from its original source text verbatim - only the
// namespace object, the per-module wrapper and the require() shims are
// synthesized.
package emit

import (
	"fmt"

	"github.com/jutaro/purescript/internal/helpers"
	"github.com/jutaro/purescript/internal/module"
)

// Options controls the surrounding shape of the bundle: the namespace
// object's variable name, the generator banner, and an optional module
// whose "main" member is invoked once the whole bundle has loaded
// (spec.md §6).
type Options struct {
	Namespace  string
	Banner     string
	MainModule *module.Identifier
}

// Generate implements codeGen: it writes the banner, the shared namespace
// object, one IIFE per surviving module (in the order given - callers are
// expected to have already run modsort.Sort), and an optional trailing
// call into the main module's entry point.
func Generate(modules []*module.Module, opts Options) string {
	ns := opts.Namespace
	if ns == "" {
		ns = "PS"
	}

	var j helpers.Joiner
	if opts.Banner != "" {
		j.AddString(opts.Banner)
		j.EnsureNewlineAtEnd()
	}
	j.AddString(fmt.Sprintf("var %s = {};\n", ns))

	for _, m := range modules {
		emitModule(&j, m, ns)
	}

	if opts.MainModule != nil {
		j.AddString(fmt.Sprintf("%s[%s].main();\n", ns, jsStringLiteral(namespaceKey(*opts.MainModule))))
	}

	return string(j.Done())
}

func emitModule(j *helpers.Joiner, m *module.Module, ns string) {
	key := namespaceKey(m.ID)
	j.AddString("(function(exports) {\n")
	for _, el := range m.Elements {
		emitElement(j, el, ns)
	}
	j.AddString(fmt.Sprintf("})(%s[%s] = %s[%s] || {});\n", ns, jsStringLiteral(key), ns, jsStringLiteral(key)))
}

func emitElement(j *helpers.Joiner, el module.Element, ns string) {
	switch e := el.(type) {
	case *module.Require:
		emitRequire(j, e, ns)
	case *module.Member:
		j.AddString("  ")
		j.AddString(e.Raw)
		j.EnsureNewlineAtEnd()
	case *module.ExportsList:
		for _, entry := range e.Entries {
			j.AddString(fmt.Sprintf("  exports[%s] = %s;\n", jsStringLiteral(entry.ExportedName), entry.ValueExpr))
		}
	case *module.Other:
		j.AddString("  ")
		j.AddString(e.Raw)
		j.EnsureNewlineAtEnd()
	}
}

func emitRequire(j *helpers.Joiner, r *module.Require, ns string) {
	j.AddString("  var ")
	j.AddString(r.LocalName)
	j.AddString(" = ")
	if r.Resolved.IsResolved() {
		j.AddString(fmt.Sprintf("%s[%s]", ns, jsStringLiteral(namespaceKey(r.Resolved.Module()))))
	} else {
		// An unresolved require() path is a literal module specifier, not a
		// synthesized namespace/property key - single-quoted, matching the
		// common Node convention rather than the double-quoted bracket
		// access used everywhere else in this file.
		j.AddString(fmt.Sprintf("require(%s)", string(helpers.QuoteSingle(r.Resolved.UnresolvedPath(), false))))
	}
	j.AddString(";\n")
}

// namespaceKey is the string used to key a module's slot in the shared
// namespace object: a Foreign module shares its Regular twin's slot, but
// nothing in this package distinguishes them further, since by the time
// emission happens the two modules' members have already been wired
// together by the classifier's require resolution.
func namespaceKey(id module.Identifier) string {
	return id.Name
}

// jsStringLiteral quotes a synthesized string literal the way spec.md §4.7's
// emission shape illustrates it - double-quoted, matching <NS>["mod1"] and
// exports["name"] = ... throughout the spec's own examples.
func jsStringLiteral(s string) string {
	return string(helpers.QuoteForJSON(s, false))
}
