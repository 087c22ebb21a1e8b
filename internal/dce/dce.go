// Package dce implements the dead-code elimination engine named in
// spec.md §4.4 (compile): given a set of classified modules and the
// program's entry points, it computes which members are reachable and
// drops everything else, member by member rather than module by module.
//
// Reachability is computed over a dense vertex-indexed graph the way
// esbuild's linker tracks which parts of a bundle survive tree shaking:
// every distinct member.Key is assigned an ast.Index32, and the
// reachable set is a helpers.BitSet rather than a map of keys.
package dce

import (
	"github.com/jutaro/purescript/internal/ast"
	"github.com/jutaro/purescript/internal/helpers"
	"github.com/jutaro/purescript/internal/module"
)

// Compile returns a copy of modules with every Member and ExportsList
// entry not reachable from an entry point removed. Require and Other
// elements always survive untouched; an ExportsList that loses every
// entry is dropped entirely. When entryPoints is empty, DCE is a no-op
// and the input is returned unchanged - there is nothing to root the
// reachability walk at.
//
// mainModule, if non-nil, additionally roots that module's "main" member
// even if it isn't named by any module.exports entry, since the emitter
// calls it directly (spec.md §4.7, §6).
func Compile(modules []*module.Module, entryPoints []module.Identifier, mainModule *module.Identifier) []*module.Module {
	if len(entryPoints) == 0 {
		return modules
	}

	byID := make(map[module.Identifier]*module.Module, len(modules))
	for _, m := range modules {
		byID[m.ID] = m
	}

	g := newGraph()
	for _, m := range modules {
		for _, el := range m.Elements {
			switch e := el.(type) {
			case *module.Member:
				from := g.indexOf(module.Key{Module: m.ID, Name: e.Name})
				for _, dep := range e.Deps {
					g.addEdge(from, g.indexOf(dep))
				}
			case *module.ExportsList:
				for _, entry := range e.Entries {
					if !exportHasOwnVertex(entry) {
						continue
					}
					from := g.indexOf(module.Key{Module: m.ID, Name: entry.ExportedName})
					for _, dep := range entry.Deps {
						g.addEdge(from, g.indexOf(dep))
					}
				}
			}
		}
	}

	// Entry-point expansion (spec.md §4.4): every member of an entry module
	// is a root, plus every renaming or foreign reexport (the export
	// entries that get their own vertex rather than riding along with a
	// same-named member).
	var roots []ast.Index32
	for _, eid := range entryPoints {
		m, ok := byID[eid]
		if !ok {
			continue
		}
		for _, el := range m.Elements {
			switch e := el.(type) {
			case *module.Member:
				roots = append(roots, g.indexOf(module.Key{Module: eid, Name: e.Name}))
			case *module.ExportsList:
				for _, entry := range e.Entries {
					if exportHasOwnVertex(entry) {
						roots = append(roots, g.indexOf(module.Key{Module: eid, Name: entry.ExportedName}))
					}
				}
			}
		}
	}
	if mainModule != nil {
		roots = append(roots, g.indexOf(module.Key{Module: *mainModule, Name: "main"}))
	}

	reachable := g.reachableFrom(roots)

	out := make([]*module.Module, len(modules))
	for i, m := range modules {
		out[i] = filterModule(m, g, reachable)
	}
	return out
}

// exportHasOwnVertex reports whether an ExportsList entry gets its own
// graph vertex (spec.md §4.4): foreign reexports always do, and so do
// renaming regular exports (sourceName != exportedName). A plain
// RegularExport(nm, nm, ...) has no vertex of its own - it rides along
// with the same-named Member.
func exportHasOwnVertex(e module.ExportEntry) bool {
	return e.Kind == module.ForeignReexport || e.SourceName != e.ExportedName
}

// graph assigns every member.Key a dense vertex index so reachability can
// be tracked with a bit set instead of a map of booleans.
type graph struct {
	indices map[module.Key]ast.Index32
	edges   [][]ast.Index32
}

func newGraph() *graph {
	return &graph{indices: make(map[module.Key]ast.Index32)}
}

func (g *graph) indexOf(k module.Key) ast.Index32 {
	if idx, ok := g.indices[k]; ok {
		return idx
	}
	idx := ast.MakeIndex32(uint32(len(g.edges)))
	g.indices[k] = idx
	g.edges = append(g.edges, nil)
	return idx
}

func (g *graph) addEdge(from, to ast.Index32) {
	g.edges[from.GetIndex()] = append(g.edges[from.GetIndex()], to)
}

func (g *graph) reachableFrom(roots []ast.Index32) helpers.BitSet {
	seen := helpers.NewBitSet(uint(len(g.edges)))
	stack := make([]ast.Index32, 0, len(roots))
	for _, r := range roots {
		if !seen.HasBit(uint(r.GetIndex())) {
			seen.SetBit(uint(r.GetIndex()))
			stack = append(stack, r)
		}
	}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dep := range g.edges[v.GetIndex()] {
			if !seen.HasBit(uint(dep.GetIndex())) {
				seen.SetBit(uint(dep.GetIndex()))
				stack = append(stack, dep)
			}
		}
	}
	return seen
}

func filterModule(m *module.Module, g *graph, reachable helpers.BitSet) *module.Module {
	isReachable := func(k module.Key) bool {
		idx, ok := g.indices[k]
		return ok && reachable.HasBit(uint(idx.GetIndex()))
	}

	filtered := &module.Module{ID: m.ID}
	for _, el := range m.Elements {
		switch e := el.(type) {
		case *module.Member:
			if isReachable(module.Key{Module: m.ID, Name: e.Name}) {
				filtered.Elements = append(filtered.Elements, e)
			}
		case *module.ExportsList:
			var kept []module.ExportEntry
			for _, entry := range e.Entries {
				key := module.Key{Module: m.ID, Name: entry.SourceName}
				if exportHasOwnVertex(entry) {
					key = module.Key{Module: m.ID, Name: entry.ExportedName}
				}
				if isReachable(key) {
					kept = append(kept, entry)
				}
			}
			if len(kept) > 0 {
				filtered.Elements = append(filtered.Elements, &module.ExportsList{Raw: e.Raw, Entries: kept})
			}
		default:
			filtered.Elements = append(filtered.Elements, el)
		}
	}
	return filtered
}
