package module

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// CollectForeignReferences walks a regular module's whole syntax tree
// (not just its top-level statements - a `$foreign.x` access can appear
// nested inside any member's declaration) and returns every name accessed
// off `$foreign`, dot or bracket form. check uses this to cross-validate
// a module's `$foreign` references against its twin's declared exports
// (spec.md §4.2).
func CollectForeignReferences(tree *ts.Tree, source []byte) map[string]bool {
	names := make(map[string]bool)
	root := tree.RootNode()
	if root == nil {
		return names
	}

	var walk func(n *ts.Node)
	walk = func(n *ts.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "member_expression" || n.Kind() == "subscript_expression" {
			if obj, name, ok := memberOrSubscript(n, source); ok && obj == "$foreign" {
				names[name] = true
			}
		}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return names
}
