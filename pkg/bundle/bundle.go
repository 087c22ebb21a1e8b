// Package bundle is the bundler's public entry point (spec.md §6): it
// wires the parser adapter, the classifier, the dependency analyser, the
// DCE engine, the optional module transform, the module sorter and the
// emitter into one pure, single-pipeline call.
package bundle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jutaro/purescript/internal/berr"
	"github.com/jutaro/purescript/internal/dce"
	"github.com/jutaro/purescript/internal/emit"
	"github.com/jutaro/purescript/internal/jsparse"
	"github.com/jutaro/purescript/internal/logger"
	"github.com/jutaro/purescript/internal/modsort"
	"github.com/jutaro/purescript/internal/module"
	"github.com/jutaro/purescript/internal/transform"
)

// Input is one generated (Regular-kind) module: its identifier and its
// restricted-subset CommonJS source text.
type Input struct {
	Name   string
	Source string
}

// Optimize selects an optional ModuleTransform pass, matching psc-bundle's
// historical --optimize flag values (spec.md SPEC_FULL §C).
type Optimize string

const (
	OptimizeNone    Optimize = ""
	OptimizeUncurry Optimize = "uncurry"
	OptimizeAll     Optimize = "all"
)

// NormalizeOptimize accepts both the long and the historical short form of
// each --optimize value ("u" for uncurry, "a" for all).
func NormalizeOptimize(flag string) Optimize {
	switch flag {
	case "u", "uncurry":
		return OptimizeUncurry
	case "a", "all":
		return OptimizeAll
	default:
		return OptimizeNone
	}
}

// Options configures one Bundle call (spec.md §6).
type Options struct {
	// EntryPoints are module names whose module.exports entries (and,
	// transitively, whatever they reach) must survive DCE. An empty slice
	// disables DCE entirely - every member in every input is kept.
	EntryPoints []string

	// MainModule, if set, additionally roots that module's "main" member
	// and appends a trailing call to it once the bundle has loaded.
	MainModule string

	Namespace         string
	RequirePathPrefix string
	Banner            string
	Optimize          Optimize

	// Transform overrides the transform selected by Optimize. Mostly
	// useful for tests that want to inject a fake ModuleTransform.
	Transform transform.ModuleTransform
}

// Result is everything Bundle produces: the emitted source plus the
// sorted set of modules that diagnostics or --verbose reporting can walk.
// There is no separate warnings/messages channel - spec.md §7's fail-fast
// policy means the first error aborts the call outright (see Bundle)
// rather than accumulating non-fatal diagnostics alongside a result.
type Result struct {
	Code    string
	Modules []*module.Module
}

// Bundle runs the full pipeline over inputs and returns the generated
// bundle. The first error encountered in any stage aborts the whole call
// (spec.md §7) - there is no partial/best-effort output.
func Bundle(inputs []Input, opts Options) (*Result, error) {
	pool := jsparse.NewPool()
	defer pool.Close()

	knownModules := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		knownModules[in.Name] = true
	}

	modules := make([]*module.Module, 0, len(inputs))
	for _, in := range inputs {
		id := module.Identifier{Name: in.Name, Kind: module.Regular}
		mod, err := classifyOne(pool, in.Source, id, knownModules, opts.RequirePathPrefix)
		if err != nil {
			return nil, err
		}
		modules = append(modules, mod)
	}

	entryIDs := make([]module.Identifier, len(opts.EntryPoints))
	for i, name := range opts.EntryPoints {
		entryIDs[i] = module.Identifier{Name: name, Kind: module.Regular}
	}

	var mainID *module.Identifier
	if opts.MainModule != "" {
		id := module.Identifier{Name: opts.MainModule, Kind: module.Regular}
		mainID = &id
	}

	tf := opts.Transform
	active := tf != nil
	if tf == nil {
		tf, active = selectTransform(opts.Optimize, pool)
	}

	modules = dce.Compile(modules, entryIDs, mainID)

	if active {
		transformed := make([]*module.Module, len(modules))
		for i, m := range modules {
			out, err := tf.Transform(m)
			if err != nil {
				return nil, berr.InModule(m.ID.Name, m.ID.Kind.String(), err)
			}
			// The emitter writes each Member's Raw statement, so splice a
			// rewritten Decl back into it.
			before := map[string]string{}
			for _, el := range m.Elements {
				if mem, ok := el.(*module.Member); ok {
					before[mem.Name] = mem.Decl
				}
			}
			for _, el := range out.Elements {
				if mem, ok := el.(*module.Member); ok {
					if old, ok := before[mem.Name]; ok && old != mem.Decl {
						mem.Raw = strings.Replace(mem.Raw, old, mem.Decl, 1)
					}
				}
			}
			// A transform rewrites Decl/ValueExpr text without updating the
			// Deps it carried from the first classification pass, so those
			// edges are stale the moment Transform returns - recompute them
			// from the rewritten text before the second DCE pass runs
			// (spec.md §4.5).
			if err := module.RecomputeDeps(out, pool); err != nil {
				return nil, berrInModule(out.ID, err)
			}
			transformed[i] = out
		}
		modules = dce.Compile(transformed, entryIDs, mainID)
	}

	sorted := modsort.Sort(modules)

	code := emit.Generate(sorted, emit.Options{
		Namespace:  opts.Namespace,
		Banner:     opts.Banner,
		MainModule: mainID,
	})

	return &Result{Code: code, Modules: sorted}, nil
}

func selectTransform(o Optimize, pool *jsparse.Pool) (transform.ModuleTransform, bool) {
	switch o {
	case OptimizeUncurry, OptimizeAll:
		return transform.Uncurry{Pool: pool}, true
	default:
		return transform.Identity, false
	}
}

func classifyOne(pool *jsparse.Pool, source string, id module.Identifier, knownModules map[string]bool, requirePathPrefix string) (*module.Module, error) {
	tree, err := pool.Parse(source)
	if err != nil {
		parseErr := berr.New(berr.UnableToParseModule, nil, logger.Loc{}, err.Error())
		return nil, berrInModule(id, parseErr)
	}
	defer tree.Close()

	src := []byte(source)
	mod, pending, err := module.Classify(tree, src, id, knownModules, requirePathPrefix)
	if err != nil {
		return nil, berrInModule(id, err)
	}
	module.AnalyzeDeps(mod, pending, src)
	return mod, nil
}

func berrInModule(id module.Identifier, err error) error {
	return berr.InModule(id.Name, id.Kind.String(), err)
}

// VerboseReport renders a deterministic, human-readable summary of which
// members survived DCE in each module - the --verbose mode named in
// SPEC_FULL §C.
func VerboseReport(modules []*module.Module) string {
	names := make([]string, 0, len(modules))
	byName := make(map[string]*module.Module, len(modules))
	for _, m := range modules {
		names = append(names, m.ID.Name)
		byName[m.ID.Name] = m
	}
	sort.Strings(names)

	out := ""
	for _, name := range names {
		m := byName[name]
		out += fmt.Sprintf("%s (%s):\n", m.ID.Name, m.ID.Kind)
		for _, el := range m.Elements {
			switch e := el.(type) {
			case *module.Member:
				out += fmt.Sprintf("  member %s\n", e.Name)
			case *module.ExportsList:
				for _, entry := range e.Entries {
					out += fmt.Sprintf("  export %s\n", entry.ExportedName)
				}
			}
		}
	}
	return out
}
