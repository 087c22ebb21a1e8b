package module

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/jutaro/purescript/internal/berr"
	"github.com/jutaro/purescript/internal/logger"
)

// pendingDep defers dependency analysis (§4.3) for one Member or
// ExportsList entry until after classification has finished and every
// Member name in the module is known. exprNode is the RHS expression to
// walk; target is where the computed keys are written.
type pendingDep struct {
	exprNode *ts.Node
	target   *[]Key
}

// Classify implements spec.md §4.1 (toModule): it walks a module's
// top-level statements and recognises Require, Member and ExportsList
// shapes, falling back to Other for anything else. source is the module's
// full text; knownModules is the set of module names the bundler was
// given; requirePathPrefix defaults to "../" when empty.
func Classify(tree *ts.Tree, source []byte, id Identifier, knownModules map[string]bool, requirePathPrefix string) (*Module, []pendingDep, error) {
	if requirePathPrefix == "" {
		requirePathPrefix = "../"
	}
	root := tree.RootNode()
	if root == nil || root.Kind() != "program" {
		return nil, nil, berr.New(berr.InvalidTopLevel, nil, logger.Loc{}, "module's top-level AST node is not a program")
	}

	mod := &Module{ID: id}
	var pending []pendingDep

	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		if stmt == nil {
			continue
		}
		el, pds, err := classifyStmt(stmt, source, id, knownModules, requirePathPrefix)
		if err != nil {
			return nil, nil, err
		}
		mod.Elements = append(mod.Elements, el)
		pending = append(pending, pds...)
	}

	return mod, pending, nil
}

func classifyStmt(stmt *ts.Node, source []byte, thisID Identifier, knownModules map[string]bool, requirePathPrefix string) (Element, []pendingDep, error) {
	raw := nodeText(stmt, source)

	switch stmt.Kind() {
	case "variable_declaration", "lexical_declaration":
		if decl := soleDeclarator(stmt); decl != nil {
			name := decl.ChildByFieldName("name")
			value := decl.ChildByFieldName("value")
			if name != nil && name.Kind() == "identifier" && value != nil {
				if req, ok := matchRequire(value, source); ok {
					resolved := resolveRequirePath(req, thisID, knownModules, requirePathPrefix)
					return &Require{
						Raw:       raw,
						LocalName: nodeText(name, source),
						Literal:   req,
						Resolved:  resolved,
					}, nil, nil
				}

				m := &Member{Raw: raw, Exported: false, Name: nodeText(name, source), Decl: nodeText(value, source)}
				return m, []pendingDep{{exprNode: value, target: &m.Deps}}, nil
			}
		}

	case "expression_statement":
		if assign := soleAssignment(stmt); assign != nil {
			left := assign.ChildByFieldName("left")
			right := assign.ChildByFieldName("right")
			if left != nil && right != nil {
				if name, ok := matchExportsMember(left, source); ok {
					m := &Member{Raw: raw, Exported: true, Name: name, Decl: nodeText(right, source)}
					return m, []pendingDep{{exprNode: right, target: &m.Deps}}, nil
				}
				if isModuleExportsTarget(left, source) {
					if right.Kind() == "object" {
						entries, pds, err := classifyExportsObject(right, source)
						if err != nil {
							return nil, nil, err
						}
						el := &ExportsList{Raw: raw, Entries: entries}
						for i := range pds {
							pds[i].target = &el.Entries[pds[i].entryIndex].Deps
						}
						out := make([]pendingDep, len(pds))
						for i, p := range pds {
							out[i] = pendingDep{exprNode: p.exprNode, target: p.target}
						}
						return el, out, nil
					}
				}
			}
		}
	}

	return &Other{Raw: raw}, nil, nil
}

// exportsPending is like pendingDep but additionally remembers which entry
// in an ExportsList it belongs to, since that slice isn't allocated (and
// its elements aren't addressable) until classifyExportsObject returns.
type exportsPending struct {
	exprNode   *ts.Node
	entryIndex int
	target     *[]Key
}

func classifyExportsObject(obj *ts.Node, source []byte) ([]ExportEntry, []exportsPending, error) {
	var entries []ExportEntry
	var pending []exportsPending

	for i := uint(0); i < obj.NamedChildCount(); i++ {
		prop := obj.NamedChild(i)
		if prop == nil {
			continue
		}

		var keyName string
		var valueNode *ts.Node

		switch prop.Kind() {
		case "pair":
			keyNode := prop.ChildByFieldName("key")
			valueNode = prop.ChildByFieldName("value")
			keyName = propertyKeyName(keyNode, source)
		case "shorthand_property_identifier":
			keyName = nodeText(prop, source)
			valueNode = prop
		default:
			continue
		}

		entry, ok := classifyExportValue(keyName, valueNode, source)
		if !ok {
			return nil, nil, berr.New(berr.UnsupportedExport, nil, logger.Loc{},
				"module.exports entry \""+keyName+"\" is neither an identifier nor a $foreign reexport")
		}

		entries = append(entries, entry)
		pending = append(pending, exportsPending{exprNode: valueNode, entryIndex: len(entries) - 1})
	}

	return entries, pending, nil
}

func classifyExportValue(keyName string, value *ts.Node, source []byte) (ExportEntry, bool) {
	if value == nil {
		return ExportEntry{}, false
	}
	if value.Kind() == "identifier" || value.Kind() == "shorthand_property_identifier" {
		name := nodeText(value, source)
		return ExportEntry{Kind: RegularExport, SourceName: name, ExportedName: keyName, ValueExpr: name}, true
	}
	if obj, propName, ok := matchForeignAccess(value, source); ok && obj == "$foreign" {
		_ = propName
		return ExportEntry{Kind: ForeignReexport, ExportedName: keyName, ValueExpr: nodeText(value, source)}, true
	}
	return ExportEntry{}, false
}

// matchRequire recognises `require("literal")` with a single plain string
// argument (no interpolation). Returns the literal path text.
func matchRequire(value *ts.Node, source []byte) (string, bool) {
	if value.Kind() != "call_expression" {
		return "", false
	}
	fn := value.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "identifier" || nodeText(fn, source) != "require" {
		return "", false
	}
	args := value.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() != 1 {
		return "", false
	}
	arg := args.NamedChild(0)
	return stringLiteralText(arg, source)
}

// matchExportsMember recognises `exports.NAME` / `exports["NAME"]` as an
// assignment target, returning NAME.
func matchExportsMember(left *ts.Node, source []byte) (string, bool) {
	obj, name, ok := memberOrSubscript(left, source)
	if !ok || obj != "exports" {
		return "", false
	}
	return name, true
}

// isModuleExportsTarget reports whether left is exactly `module.exports`.
func isModuleExportsTarget(left *ts.Node, source []byte) bool {
	if left.Kind() != "member_expression" {
		return false
	}
	obj := left.ChildByFieldName("object")
	prop := left.ChildByFieldName("property")
	if obj == nil || prop == nil {
		return false
	}
	return obj.Kind() == "identifier" && nodeText(obj, source) == "module" &&
		prop.Kind() == "property_identifier" && nodeText(prop, source) == "exports"
}

// matchForeignAccess recognises `OBJ.NAME` / `OBJ["NAME"]` and returns the
// object identifier text and NAME.
func matchForeignAccess(node *ts.Node, source []byte) (string, string, bool) {
	return memberOrSubscript(node, source)
}

// memberOrSubscript recognises both `OBJ.NAME` (member_expression) and
// `OBJ["NAME"]` (subscript_expression with a plain string index), which
// spec.md §4.1/§4.3 always treat identically.
func memberOrSubscript(node *ts.Node, source []byte) (obj string, name string, ok bool) {
	switch node.Kind() {
	case "member_expression":
		objNode := node.ChildByFieldName("object")
		propNode := node.ChildByFieldName("property")
		if objNode == nil || propNode == nil || objNode.Kind() != "identifier" || propNode.Kind() != "property_identifier" {
			return "", "", false
		}
		return nodeText(objNode, source), nodeText(propNode, source), true
	case "subscript_expression":
		objNode := node.ChildByFieldName("object")
		idxNode := node.ChildByFieldName("index")
		if objNode == nil || idxNode == nil || objNode.Kind() != "identifier" {
			return "", "", false
		}
		lit, litOK := stringLiteralText(idxNode, source)
		if !litOK {
			return "", "", false
		}
		return nodeText(objNode, source), lit, true
	default:
		return "", "", false
	}
}

func propertyKeyName(key *ts.Node, source []byte) string {
	if key == nil {
		return ""
	}
	switch key.Kind() {
	case "property_identifier", "identifier":
		return nodeText(key, source)
	case "string":
		if s, ok := stringLiteralText(key, source); ok {
			return s
		}
	}
	return nodeText(key, source)
}

// stringLiteralText returns the unquoted contents of a single-fragment
// string literal node, e.g. "./Foo" -> ./Foo. Fails (ok=false) for
// template strings, strings with escape sequences, or multi-fragment
// strings.
func stringLiteralText(n *ts.Node, source []byte) (string, bool) {
	if n == nil || n.Kind() != "string" {
		return "", false
	}
	var fragment *ts.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c != nil && c.Kind() == "string_fragment" {
			if fragment != nil {
				return "", false
			}
			fragment = c
		} else if c != nil {
			// escape_sequence or interpolation: not a plain literal
			return "", false
		}
	}
	if fragment == nil {
		return "", true // empty string literal ""
	}
	return nodeText(fragment, source), true
}

func soleDeclarator(decl *ts.Node) *ts.Node {
	if decl.NamedChildCount() != 1 {
		return nil
	}
	d := decl.NamedChild(0)
	if d == nil || d.Kind() != "variable_declarator" {
		return nil
	}
	return d
}

func soleAssignment(exprStmt *ts.Node) *ts.Node {
	if exprStmt.NamedChildCount() != 1 {
		return nil
	}
	e := exprStmt.NamedChild(0)
	if e == nil || e.Kind() != "assignment_expression" {
		return nil
	}
	return e
}

func nodeText(n *ts.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(string(n.Utf8Text(source)))
}

// resolveRequirePath implements spec.md §4.1/§6's require-path resolution.
func resolveRequirePath(literal string, thisID Identifier, knownModules map[string]bool, requirePathPrefix string) Resolution {
	if literal == "./foreign" {
		return Resolved(Identifier{Name: thisID.Name, Kind: Foreign})
	}
	if strings.HasPrefix(literal, requirePathPrefix) {
		remainder := literal[len(requirePathPrefix):]
		if knownModules[remainder] {
			return Resolved(Identifier{Name: remainder, Kind: Regular})
		}
	}
	return Unresolved(literal)
}
