package module

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/jutaro/purescript/internal/berr"
	"github.com/jutaro/purescript/internal/logger"
)

// ExtractForeignExports implements spec.md §4.2: it reads a foreign
// module's own source (not the restricted generated subset) and returns
// the set of names it exports, recognising the same `exports.NAME = ...`,
// `exports["NAME"] = ...` and `module.exports = { ... }` shapes as the
// classifier. Unlike Classify, a foreign module's RHS values are never
// restricted to a known form — only the export surface (the set of
// names) matters here, so any expression is accepted as a value.
// Statements that aren't exports-shaped are ignored rather than turned
// into Other elements: foreign modules are opaque hand-written JS and
// this package never reemits them.
func ExtractForeignExports(tree *ts.Tree, source []byte) (map[string]bool, error) {
	root := tree.RootNode()
	if root == nil || root.Kind() != "program" {
		return nil, berr.New(berr.InvalidTopLevel, nil, logger.Loc{}, "foreign module's top-level AST node is not a program")
	}

	names := make(map[string]bool)

	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		if stmt == nil || stmt.Kind() != "expression_statement" {
			continue
		}
		assign := soleAssignment(stmt)
		if assign == nil {
			continue
		}
		left := assign.ChildByFieldName("left")
		right := assign.ChildByFieldName("right")
		if left == nil || right == nil {
			continue
		}

		if name, ok := matchExportsMember(left, source); ok {
			names[name] = true
			continue
		}

		if isModuleExportsTarget(left, source) && right.Kind() == "object" {
			for j := uint(0); j < right.NamedChildCount(); j++ {
				prop := right.NamedChild(j)
				if prop == nil {
					continue
				}
				switch prop.Kind() {
				case "pair":
					keyNode := prop.ChildByFieldName("key")
					name := propertyKeyName(keyNode, source)
					if name == "" {
						return nil, berr.New(berr.UnsupportedExport, nil, logger.Loc{},
							"module.exports entry in foreign module has an unrecognised key shape")
					}
					names[name] = true
				case "shorthand_property_identifier":
					names[nodeText(prop, source)] = true
				default:
					return nil, berr.New(berr.UnsupportedExport, nil, logger.Loc{},
						"module.exports entry in foreign module has an unrecognised key shape")
				}
			}
		}
	}

	return names, nil
}
