// Package transform implements the optional ModuleTransform hook named in
// spec.md §4.5: a pass the bundler runs on every surviving module between
// DCE and the final sort+emit, given the chance to rewrite member
// declarations before the fixpoint DCE pass prunes anything the rewrite
// made unreachable.
package transform

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/jutaro/purescript/internal/jsparse"
	"github.com/jutaro/purescript/internal/module"
)

// ModuleTransform is implemented by anything that can rewrite a module's
// members in place. The bundler core treats it as an opaque collaborator:
// it never inspects what a transform does, only what it returns.
type ModuleTransform interface {
	Transform(mod *module.Module) (*module.Module, error)
}

// Func adapts a plain function to ModuleTransform.
type Func func(mod *module.Module) (*module.Module, error)

func (f Func) Transform(mod *module.Module) (*module.Module, error) { return f(mod) }

// Identity changes nothing. It's the default when no --optimize flag is
// given.
var Identity ModuleTransform = Func(func(mod *module.Module) (*module.Module, error) { return mod, nil })

// Uncurry merges chains of single-argument curried functions -
// `function (a) { return function (b) { return BODY; }; }` becomes
// `function (a, b) { return BODY; }` - mirroring the kind of closure
// folding psc-bundle's old --optimize flag did for PureScript's curried
// function representation. It only fires when every intermediate
// function body is exactly one return statement; anything shaped
// differently is left untouched rather than guessed at.
type Uncurry struct {
	Pool *jsparse.Pool
}

func (u Uncurry) Transform(mod *module.Module) (*module.Module, error) {
	out := &module.Module{ID: mod.ID}
	for _, el := range mod.Elements {
		if mem, ok := el.(*module.Member); ok {
			nm := *mem
			if merged, ok := u.mergeCurried(mem.Decl); ok {
				nm.Decl = merged
			}
			out.Elements = append(out.Elements, &nm)
			continue
		}
		out.Elements = append(out.Elements, el)
	}
	return out, nil
}

// mergeCurried reparses a single declaration's source text standalone
// (wrapped in parentheses so it parses as an expression rather than a
// statement) since by this point in the pipeline the classifier's
// original tree has already been discarded.
func (u Uncurry) mergeCurried(decl string) (string, bool) {
	wrapped := "(" + decl + ")"
	tree, err := u.Pool.Parse(wrapped)
	if err != nil {
		return decl, false
	}
	defer tree.Close()
	source := []byte(wrapped)

	root := tree.RootNode()
	if root == nil || root.NamedChildCount() != 1 {
		return decl, false
	}
	stmt := root.NamedChild(0)
	if stmt == nil || stmt.Kind() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return decl, false
	}
	paren := stmt.NamedChild(0)
	if paren == nil || paren.Kind() != "parenthesized_expression" || paren.NamedChildCount() != 1 {
		return decl, false
	}
	fn := paren.NamedChild(0)

	params, bodyText, ok := uncurryChain(fn, source)
	if !ok || len(params) < 2 {
		return decl, false
	}
	return "function (" + strings.Join(params, ", ") + ") " + bodyText, true
}

// uncurryChain walks a chain of nested single-parameter functions whose
// bodies are each exactly `{ return <next function>; }`, collecting every
// parameter name until it hits a body that isn't just forwarding to
// another function. That final body's text becomes the merged function's
// body, verbatim.
func uncurryChain(fn *ts.Node, source []byte) ([]string, string, bool) {
	var params []string
	cur := fn

	for {
		if cur == nil || !isFunctionNode(cur) {
			return nil, "", false
		}
		name, ok := singleParamName(cur, source)
		if !ok {
			return nil, "", false
		}
		params = append(params, name)

		body := cur.ChildByFieldName("body")
		if body == nil {
			return nil, "", false
		}

		inner, isForward := singleReturnOfFunction(body)
		if !isForward {
			return params, trimmedText(body, source), true
		}
		cur = inner
	}
}

func isFunctionNode(n *ts.Node) bool {
	switch n.Kind() {
	case "function_expression", "function", "arrow_function":
		return true
	default:
		return false
	}
}

func singleParamName(fn *ts.Node, source []byte) (string, bool) {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return "", false
	}
	if params.Kind() == "identifier" {
		return trimmedText(params, source), true
	}
	if params.Kind() == "formal_parameters" && params.NamedChildCount() == 1 {
		p := params.NamedChild(0)
		if p != nil && p.Kind() == "identifier" {
			return trimmedText(p, source), true
		}
	}
	return "", false
}

// singleReturnOfFunction reports whether body is exactly a block holding
// one return statement whose argument is itself a function, and if so
// returns that inner function node.
func singleReturnOfFunction(body *ts.Node) (*ts.Node, bool) {
	if body == nil || body.Kind() != "statement_block" || body.NamedChildCount() != 1 {
		return nil, false
	}
	ret := body.NamedChild(0)
	if ret == nil || ret.Kind() != "return_statement" || ret.NamedChildCount() != 1 {
		return nil, false
	}
	arg := ret.NamedChild(0)
	if arg == nil || !isFunctionNode(arg) {
		return nil, false
	}
	return arg, true
}

func trimmedText(n *ts.Node, source []byte) string {
	return strings.TrimSpace(string(n.Utf8Text(source)))
}
