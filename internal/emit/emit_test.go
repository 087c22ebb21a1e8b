package emit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jutaro/purescript/internal/module"
)

func regID(name string) module.Identifier { return module.Identifier{Name: name, Kind: module.Regular} }

func TestGenerateWrapsEachModuleInIIFE(t *testing.T) {
	a := &module.Module{ID: regID("A"), Elements: []module.Element{
		&module.Member{Raw: "var x = 1;"},
	}}

	out := Generate([]*module.Module{a}, Options{Namespace: "NS"})

	assert.Contains(t, out, "var NS = {};")
	assert.Contains(t, out, "(function(exports) {")
	assert.Contains(t, out, "var x = 1;")
	assert.Contains(t, out, `NS["A"] = NS["A"] || {}`)
}

func TestGenerateDefaultsNamespaceToPS(t *testing.T) {
	out := Generate(nil, Options{})
	assert.Contains(t, out, "var PS = {};")
}

func TestGenerateBannerPrependedOnce(t *testing.T) {
	out := Generate(nil, Options{Banner: "// generated"})
	assert.True(t, strings.HasPrefix(out, "// generated\n"))
}

func TestGenerateMemberEmittedVerbatim(t *testing.T) {
	a := &module.Module{ID: regID("A"), Elements: []module.Element{
		&module.Member{Raw: "exports.f = function () { return 1; };"},
	}}
	out := Generate([]*module.Module{a}, Options{})
	assert.Contains(t, out, "exports.f = function () { return 1; };")
}

func TestGenerateExportsListUsesBracketSyntax(t *testing.T) {
	a := &module.Module{ID: regID("A"), Elements: []module.Element{
		&module.ExportsList{Entries: []module.ExportEntry{
			{ExportedName: "y", ValueExpr: "x"},
		}},
	}}
	out := Generate([]*module.Module{a}, Options{})
	assert.Contains(t, out, `exports["y"] = x;`)
}

func TestGenerateRequireResolved(t *testing.T) {
	a := &module.Module{ID: regID("A"), Elements: []module.Element{
		&module.Require{LocalName: "B", Resolved: module.Resolved(regID("B"))},
	}}
	out := Generate([]*module.Module{a}, Options{Namespace: "NS"})
	assert.Contains(t, out, `var B = NS["B"];`)
}

func TestGenerateRequireUnresolved(t *testing.T) {
	a := &module.Module{ID: regID("A"), Elements: []module.Element{
		&module.Require{LocalName: "util", Resolved: module.Unresolved("util")},
	}}
	out := Generate([]*module.Module{a}, Options{})
	assert.Contains(t, out, `var util = require('util');`)
}

func TestGenerateMainModuleCall(t *testing.T) {
	main := regID("A")
	out := Generate(nil, Options{Namespace: "NS", MainModule: &main})
	assert.Contains(t, out, `NS["A"].main();`)
}

func TestGenerateOtherEmittedVerbatim(t *testing.T) {
	a := &module.Module{ID: regID("A"), Elements: []module.Element{
		&module.Other{Raw: `console.log("hi");`},
	}}
	out := Generate([]*module.Module{a}, Options{})
	assert.Contains(t, out, `console.log("hi");`)
}
