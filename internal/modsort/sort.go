// Package modsort implements the module sorter named in spec.md §4.6: a
// dependency-first ordering of surviving modules, computed the same way
// esbuild's linker orders files that import each other - a DFS over the
// require graph collected in postorder, so every module follows the
// modules it requires.
package modsort

import "github.com/jutaro/purescript/internal/module"

// Sort drops modules DCE left empty (spec.md §4.6, mirroring
// Module.IsEmpty) and returns the rest in dependency-first order: if A
// requires B, B is emitted before A. Requires that point at modules not
// present in the input (already dropped, or never provided) are simply
// skipped rather than treated as an error here - resolution already
// happened in the classifier.
func Sort(modules []*module.Module) []*module.Module {
	present := make(map[module.Identifier]*module.Module, len(modules))
	var kept []*module.Module
	for _, m := range modules {
		if m.IsEmpty() {
			continue
		}
		present[m.ID] = m
		kept = append(kept, m)
	}

	visited := make(map[module.Identifier]bool, len(kept))
	var order []*module.Module

	var visit func(m *module.Module)
	visit = func(m *module.Module) {
		if visited[m.ID] {
			return
		}
		visited[m.ID] = true
		for _, el := range m.Elements {
			req, ok := el.(*module.Require)
			if !ok || !req.Resolved.IsResolved() {
				continue
			}
			if dep, ok := present[req.Resolved.Module()]; ok {
				visit(dep)
			}
		}
		order = append(order, m)
	}

	// Iterate in the caller's original order so ties between modules with
	// no dependency relationship keep a stable, predictable position.
	for _, m := range kept {
		visit(m)
	}

	return order
}
