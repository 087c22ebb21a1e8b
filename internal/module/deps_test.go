package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jutaro/purescript/internal/jsparse"
)

func analyze(t *testing.T, src string, known map[string]bool) *Module {
	t.Helper()
	pool := jsparse.NewPool()
	defer pool.Close()

	tree, err := pool.Parse(src)
	require.NoError(t, err)
	defer tree.Close()

	mod, pending, err := Classify(tree, []byte(src), Identifier{Name: "A", Kind: Regular}, known, "../")
	require.NoError(t, err)
	AnalyzeDeps(mod, pending, []byte(src))
	return mod
}

func memberNamed(t *testing.T, mod *Module, name string) *Member {
	t.Helper()
	for _, el := range mod.Elements {
		if m, ok := el.(*Member); ok && m.Name == name {
			return m
		}
	}
	t.Fatalf("no member named %q", name)
	return nil
}

func TestAnalyzeDepsSameModuleReference(t *testing.T) {
	mod := analyze(t, `var a = 1;
var b = a;
`, nil)

	b := memberNamed(t, mod, "b")
	require.Len(t, b.Deps, 1)
	assert.Equal(t, Key{Module: Identifier{Name: "A", Kind: Regular}, Name: "a"}, b.Deps[0])
}

func TestAnalyzeDepsImportedMemberAccess(t *testing.T) {
	mod := analyze(t, `var B = require("../B");
var x = B.y;
`, map[string]bool{"B": true})

	x := memberNamed(t, mod, "x")
	require.Len(t, x.Deps, 1)
	assert.Equal(t, Key{Module: Identifier{Name: "B", Kind: Regular}, Name: "y"}, x.Deps[0])
}

func TestAnalyzeDepsImportedSubscriptAccess(t *testing.T) {
	mod := analyze(t, `var B = require("../B");
var x = B["y"];
`, map[string]bool{"B": true})

	x := memberNamed(t, mod, "x")
	require.Len(t, x.Deps, 1)
	assert.Equal(t, Key{Module: Identifier{Name: "B", Kind: Regular}, Name: "y"}, x.Deps[0])
}

func TestAnalyzeDepsDeduplicatedFirstSeenOrder(t *testing.T) {
	mod := analyze(t, `var a = 1;
var b = 2;
var c = a + b + a;
`, nil)

	c := memberNamed(t, mod, "c")
	require.Len(t, c.Deps, 2)
	assert.Equal(t, "a", c.Deps[0].Name)
	assert.Equal(t, "b", c.Deps[1].Name)
}

func TestAnalyzeDepsIsScopeOblivious(t *testing.T) {
	// The walk doesn't model function scopes: a parameter shadowing a
	// member name is still treated as a reference to that member
	// (spec.md §4.3's "syntactic only" rule).
	mod := analyze(t, `var a = 1;
var f = function (a) { return a + 1; };
`, nil)

	f := memberNamed(t, mod, "f")
	require.Len(t, f.Deps, 1)
	assert.Equal(t, "a", f.Deps[0].Name)
}

func TestAnalyzeDepsForwardReferenceWithinModule(t *testing.T) {
	// boundNames is built from every Member before any walk runs, so an
	// earlier member can reference one declared later in source order.
	mod := analyze(t, `var a = b;
var b = 1;
`, nil)

	a := memberNamed(t, mod, "a")
	require.Len(t, a.Deps, 1)
	assert.Equal(t, "b", a.Deps[0].Name)
}

func TestAnalyzeDepsRequireContributesNoEdges(t *testing.T) {
	mod := analyze(t, `var util = require("util");
var x = 1;
`, nil)

	x := memberNamed(t, mod, "x")
	assert.Empty(t, x.Deps)
}

func TestAnalyzeDepsExportsListEntryDeps(t *testing.T) {
	mod := analyze(t, `var x = 1;
module.exports = {
  y: x
};
`, nil)

	var list *ExportsList
	for _, el := range mod.Elements {
		if l, ok := el.(*ExportsList); ok {
			list = l
		}
	}
	require.NotNil(t, list)
	require.Len(t, list.Entries, 1)
	require.Len(t, list.Entries[0].Deps, 1)
	assert.Equal(t, Key{Module: Identifier{Name: "A", Kind: Regular}, Name: "x"}, list.Entries[0].Deps[0])
}

func TestRecomputeDepsReflectsRewrittenMemberText(t *testing.T) {
	mod := analyze(t, `var a = 1;
var b = 2;
var c = a;
`, nil)

	pool := jsparse.NewPool()
	defer pool.Close()

	c := memberNamed(t, mod, "c")
	require.Equal(t, "a", c.Deps[0].Name)

	// Simulate a ModuleTransform rewriting c's declaration to reference
	// b instead of a, without touching Deps itself.
	c.Decl = "b"

	require.NoError(t, RecomputeDeps(mod, pool))
	c = memberNamed(t, mod, "c")
	require.Len(t, c.Deps, 1)
	assert.Equal(t, "b", c.Deps[0].Name)
}

func TestRecomputeDepsReflectsRewrittenExportsListEntry(t *testing.T) {
	mod := analyze(t, `var a = 1;
var b = 2;
module.exports = {
  y: a
};
`, nil)

	pool := jsparse.NewPool()
	defer pool.Close()

	var list *ExportsList
	for _, el := range mod.Elements {
		if l, ok := el.(*ExportsList); ok {
			list = l
		}
	}
	require.NotNil(t, list)
	list.Entries[0].ValueExpr = "b"

	require.NoError(t, RecomputeDeps(mod, pool))
	require.Len(t, list.Entries[0].Deps, 1)
	assert.Equal(t, "b", list.Entries[0].Deps[0].Name)
}

func TestRecomputeDepsHonorsImportedAccess(t *testing.T) {
	mod := analyze(t, `var B = require("../B");
var x = 1;
`, map[string]bool{"B": true})

	pool := jsparse.NewPool()
	defer pool.Close()

	x := memberNamed(t, mod, "x")
	x.Decl = "B.y"

	require.NoError(t, RecomputeDeps(mod, pool))
	x = memberNamed(t, mod, "x")
	require.Len(t, x.Deps, 1)
	assert.Equal(t, Key{Module: Identifier{Name: "B", Kind: Regular}, Name: "y"}, x.Deps[0])
}
