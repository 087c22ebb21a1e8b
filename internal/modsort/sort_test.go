package modsort

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jutaro/purescript/internal/module"
)

func moduleNames(modules []*module.Module) []string {
	names := make([]string, len(modules))
	for i, m := range modules {
		names[i] = m.ID.Name
	}
	return names
}

func regID(name string) module.Identifier { return module.Identifier{Name: name, Kind: module.Regular} }

func requireOf(target module.Identifier) *module.Require {
	return &module.Require{Resolved: module.Resolved(target)}
}

func indexOf(modules []*module.Module, name string) int {
	for i, m := range modules {
		if m.ID.Name == name {
			return i
		}
	}
	return -1
}

func TestSortDependencyFirstOrder(t *testing.T) {
	a := &module.Module{ID: regID("A"), Elements: []module.Element{requireOf(regID("B")), &module.Member{Name: "a"}}}
	b := &module.Module{ID: regID("B"), Elements: []module.Element{requireOf(regID("C")), &module.Member{Name: "b"}}}
	c := &module.Module{ID: regID("C"), Elements: []module.Element{&module.Member{Name: "c"}}}

	out := Sort([]*module.Module{a, b, c})
	require.Len(t, out, 3)

	posA, posB, posC := indexOf(out, "A"), indexOf(out, "B"), indexOf(out, "C")
	assert.Less(t, posC, posB)
	assert.Less(t, posB, posA)
}

func TestSortDropsEmptyModules(t *testing.T) {
	empty := &module.Module{ID: regID("A"), Elements: []module.Element{&module.Other{Raw: "// nothing"}}}
	nonEmpty := &module.Module{ID: regID("B"), Elements: []module.Element{&module.Member{Name: "x"}}}

	out := Sort([]*module.Module{empty, nonEmpty})
	require.Len(t, out, 1)
	assert.Equal(t, "B", out[0].ID.Name)
}

func TestSortSkipsRequireTargetsNotInInput(t *testing.T) {
	a := &module.Module{ID: regID("A"), Elements: []module.Element{
		requireOf(regID("Missing")),
		&module.Member{Name: "a"},
	}}

	out := Sort([]*module.Module{a})
	require.Len(t, out, 1)
	assert.Equal(t, "A", out[0].ID.Name)
}

func TestSortUnresolvedRequireContributesNoEdge(t *testing.T) {
	a := &module.Module{ID: regID("A"), Elements: []module.Element{
		&module.Require{Resolved: module.Unresolved("util")},
		&module.Member{Name: "a"},
	}}
	b := &module.Module{ID: regID("B"), Elements: []module.Element{&module.Member{Name: "b"}}}

	out := Sort([]*module.Module{a, b})
	require.Len(t, out, 2)
}

func TestSortStableOnNoDependencyRelationship(t *testing.T) {
	a := &module.Module{ID: regID("A"), Elements: []module.Element{&module.Member{Name: "a"}}}
	b := &module.Module{ID: regID("B"), Elements: []module.Element{&module.Member{Name: "b"}}}

	out := Sort([]*module.Module{a, b})
	if diff := cmp.Diff([]string{"A", "B"}, moduleNames(out)); diff != "" {
		t.Errorf("module order mismatch (-want +got):\n%s", diff)
	}
}
