package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jutaro/purescript/internal/jsparse"
)

func extractForeign(t *testing.T, src string) (map[string]bool, error) {
	t.Helper()
	pool := jsparse.NewPool()
	defer pool.Close()

	tree, err := pool.Parse(src)
	require.NoError(t, err)
	defer tree.Close()

	return ExtractForeignExports(tree, []byte(src))
}

func TestExtractForeignExportsDotAndBracket(t *testing.T) {
	names, err := extractForeign(t, `exports.f = function () { return 1; };
exports["g"] = 2;
`)
	require.NoError(t, err)
	assert.True(t, names["f"])
	assert.True(t, names["g"])
	assert.Len(t, names, 2)
}

func TestExtractForeignExportsModuleExportsObject(t *testing.T) {
	names, err := extractForeign(t, `module.exports = {
  f: function () { return 1; },
  g: 2
};
`)
	require.NoError(t, err)
	assert.True(t, names["f"])
	assert.True(t, names["g"])
}

func TestExtractForeignExportsShorthandProperty(t *testing.T) {
	names, err := extractForeign(t, `var f = 1;
module.exports = {
  f
};
`)
	require.NoError(t, err)
	assert.True(t, names["f"])
}

func TestExtractForeignExportsIgnoresOtherStatements(t *testing.T) {
	names, err := extractForeign(t, `var helper = function () {};
exports.f = helper;
`)
	require.NoError(t, err)
	assert.True(t, names["f"])
	assert.Len(t, names, 1)
}

func TestExtractForeignExportsUnsupportedKeyShape(t *testing.T) {
	_, err := extractForeign(t, `module.exports = {
  "": 1
};
`)
	require.Error(t, err)
}

func TestCollectForeignReferencesFindsNestedAccess(t *testing.T) {
	pool := jsparse.NewPool()
	defer pool.Close()

	src := `exports.f = function (x) {
  return $foreign.helper(x) + $foreign["other"];
};
`
	tree, err := pool.Parse(src)
	require.NoError(t, err)
	defer tree.Close()

	names := CollectForeignReferences(tree, []byte(src))
	assert.True(t, names["helper"])
	assert.True(t, names["other"])
	assert.Len(t, names, 2)
}

func TestCollectForeignReferencesIgnoresUnrelatedObjects(t *testing.T) {
	pool := jsparse.NewPool()
	defer pool.Close()

	src := `exports.f = function () { return other.helper(); };`
	tree, err := pool.Parse(src)
	require.NoError(t, err)
	defer tree.Close()

	names := CollectForeignReferences(tree, []byte(src))
	assert.Empty(t, names)
}
