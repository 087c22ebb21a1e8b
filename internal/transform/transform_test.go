package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jutaro/purescript/internal/jsparse"
	"github.com/jutaro/purescript/internal/module"
)

func regID(name string) module.Identifier { return module.Identifier{Name: name, Kind: module.Regular} }

func TestIdentityReturnsModuleUnchanged(t *testing.T) {
	mod := &module.Module{ID: regID("A"), Elements: []module.Element{
		&module.Member{Name: "x", Decl: "1"},
	}}
	out, err := Identity.Transform(mod)
	require.NoError(t, err)
	assert.Same(t, mod, out)
}

func TestFuncAdaptsPlainFunction(t *testing.T) {
	called := false
	var f ModuleTransform = Func(func(mod *module.Module) (*module.Module, error) {
		called = true
		return mod, nil
	})
	mod := &module.Module{ID: regID("A")}
	_, err := f.Transform(mod)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestUncurryMergesTwoArgumentChain(t *testing.T) {
	pool := jsparse.NewPool()
	defer pool.Close()
	u := Uncurry{Pool: pool}

	mod := &module.Module{ID: regID("A"), Elements: []module.Element{
		&module.Member{Name: "add", Decl: "function (a) { return function (b) { return a + b; }; }"},
	}}

	out, err := u.Transform(mod)
	require.NoError(t, err)
	require.Len(t, out.Elements, 1)
	mem := out.Elements[0].(*module.Member)
	assert.Equal(t, "function (a, b) { return a + b; }", mem.Decl)
}

func TestUncurryMergesThreeArgumentChain(t *testing.T) {
	pool := jsparse.NewPool()
	defer pool.Close()
	u := Uncurry{Pool: pool}

	mod := &module.Module{ID: regID("A"), Elements: []module.Element{
		&module.Member{Name: "add3", Decl: "function (a) { return function (b) { return function (c) { return a + b + c; }; }; }"},
	}}

	out, err := u.Transform(mod)
	require.NoError(t, err)
	mem := out.Elements[0].(*module.Member)
	assert.Equal(t, "function (a, b, c) { return a + b + c; }", mem.Decl)
}

func TestUncurryLeavesSingleArgumentFunctionUntouched(t *testing.T) {
	pool := jsparse.NewPool()
	defer pool.Close()
	u := Uncurry{Pool: pool}

	mod := &module.Module{ID: regID("A"), Elements: []module.Element{
		&module.Member{Name: "id", Decl: "function (a) { return a; }"},
	}}

	out, err := u.Transform(mod)
	require.NoError(t, err)
	mem := out.Elements[0].(*module.Member)
	assert.Equal(t, "function (a) { return a; }", mem.Decl)
}

func TestUncurryLeavesNonForwardingBodyUntouched(t *testing.T) {
	pool := jsparse.NewPool()
	defer pool.Close()
	u := Uncurry{Pool: pool}

	decl := "function (a) { console.log(a); return function (b) { return a + b; }; }"
	mod := &module.Module{ID: regID("A"), Elements: []module.Element{
		&module.Member{Name: "weird", Decl: decl},
	}}

	out, err := u.Transform(mod)
	require.NoError(t, err)
	mem := out.Elements[0].(*module.Member)
	assert.Equal(t, decl, mem.Decl)
}

func TestUncurryPassesThroughNonMemberElements(t *testing.T) {
	pool := jsparse.NewPool()
	defer pool.Close()
	u := Uncurry{Pool: pool}

	mod := &module.Module{ID: regID("A"), Elements: []module.Element{
		&module.Other{Raw: "// a comment"},
	}}

	out, err := u.Transform(mod)
	require.NoError(t, err)
	require.Len(t, out.Elements, 1)
	_, ok := out.Elements[0].(*module.Other)
	assert.True(t, ok)
}
