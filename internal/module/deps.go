package module

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/jutaro/purescript/internal/jsparse"
)

// AnalyzeDeps implements spec.md §4.3 (withDeps): for every Member
// declaration and every surviving ExportsList entry, it walks the RHS
// expression's syntax tree and records which other members it reaches.
// Classify must have finished first — boundNames is built from every
// Member in the module, including ones that appear after the element
// being analysed, since the spec's reference walk is source-order
// oblivious.
func AnalyzeDeps(mod *Module, pending []pendingDep, source []byte) {
	imports := map[string]Identifier{}
	boundNames := map[string]bool{}
	for _, el := range mod.Elements {
		switch e := el.(type) {
		case *Require:
			if e.Resolved.IsResolved() {
				imports[e.LocalName] = e.Resolved.Module()
			}
		case *Member:
			boundNames[e.Name] = true
		}
	}

	for _, p := range pending {
		*p.target = walkExpr(p.exprNode, source, imports, boundNames, mod.ID)
	}
}

// walkExpr recurses through an expression's syntax tree collecting Keys in
// first-seen order, deduplicated. At each node it tries, in order: an
// import-bound member/subscript access (mid, name); a bare identifier
// bound to a Member in this module (thisID, name); otherwise it recurses
// into named children. This never stops at function boundaries — the
// walk is deliberately scope-oblivious (spec.md §4.3, §9).
func walkExpr(n *ts.Node, source []byte, imports map[string]Identifier, boundNames map[string]bool, thisID Identifier) []Key {
	var keys []Key
	seen := make(map[Key]bool)

	add := func(k Key) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	var walk func(n *ts.Node)
	walk = func(n *ts.Node) {
		if n == nil {
			return
		}

		switch n.Kind() {
		case "member_expression", "subscript_expression":
			if obj, name, ok := memberOrSubscript(n, source); ok {
				if mid, isImport := imports[obj]; isImport {
					add(Key{Module: mid, Name: name})
					return
				}
			}
		case "identifier":
			name := nodeText(n, source)
			if boundNames[name] {
				add(Key{Module: thisID, Name: name})
			}
			return
		}

		for i := uint(0); i < n.NamedChildCount(); i++ {
			walk(n.NamedChild(i))
		}
	}

	walk(n)
	return keys
}

// RecomputeDeps re-derives every Member and ExportsList entry's Deps from
// its current Decl/ValueExpr text, the way a ModuleTransform's rewrite
// requires (spec.md §4.5: "dependencies are recomputed, and DCE is run a
// second time"). By the time a transform runs, the module's original
// parse tree has already been discarded, so each declaration is reparsed
// standalone - the same technique transform.Uncurry uses to reparse a
// merged function body - rather than reusing AnalyzeDeps' pending-node
// list, which only makes sense against the tree Classify produced.
func RecomputeDeps(mod *Module, pool *jsparse.Pool) error {
	imports := map[string]Identifier{}
	boundNames := map[string]bool{}
	for _, el := range mod.Elements {
		switch e := el.(type) {
		case *Require:
			if e.Resolved.IsResolved() {
				imports[e.LocalName] = e.Resolved.Module()
			}
		case *Member:
			boundNames[e.Name] = true
		}
	}

	for _, el := range mod.Elements {
		switch e := el.(type) {
		case *Member:
			deps, err := recomputeExprDeps(pool, e.Decl, imports, boundNames, mod.ID)
			if err != nil {
				return err
			}
			e.Deps = deps
		case *ExportsList:
			for i := range e.Entries {
				deps, err := recomputeExprDeps(pool, e.Entries[i].ValueExpr, imports, boundNames, mod.ID)
				if err != nil {
					return err
				}
				e.Entries[i].Deps = deps
			}
		}
	}
	return nil
}

// recomputeExprDeps reparses exprText standalone, wrapped in parentheses
// so it parses as an expression rather than a statement, and walks the
// result exactly like AnalyzeDeps would have against the original tree.
// A declaration that no longer parses cleanly (should not happen for
// text a ModuleTransform produces from valid input) simply gets no
// recomputed deps rather than aborting the whole pipeline.
func recomputeExprDeps(pool *jsparse.Pool, exprText string, imports map[string]Identifier, boundNames map[string]bool, thisID Identifier) ([]Key, error) {
	wrapped := "(" + exprText + ")"
	tree, err := pool.Parse(wrapped)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	source := []byte(wrapped)

	root := tree.RootNode()
	if root == nil || root.NamedChildCount() != 1 {
		return nil, nil
	}
	stmt := root.NamedChild(0)
	if stmt == nil || stmt.Kind() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return nil, nil
	}
	paren := stmt.NamedChild(0)
	if paren == nil || paren.Kind() != "parenthesized_expression" || paren.NamedChildCount() != 1 {
		return nil, nil
	}
	expr := paren.NamedChild(0)
	return walkExpr(expr, source, imports, boundNames, thisID), nil
}
