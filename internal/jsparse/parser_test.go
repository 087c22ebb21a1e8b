package jsparse

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolParseReturnsWalkableTree(t *testing.T) {
	pool := NewPool()
	defer pool.Close()

	tree, err := pool.Parse("var x = 1;")
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	require.NotNil(t, root)
	assert.Equal(t, "program", root.Kind())
	assert.True(t, root.NamedChildCount() > 0)
}

func TestPoolParseConcurrentReuse(t *testing.T) {
	pool := NewPool()
	defer pool.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := pool.Parse("exports.f = function () { return 1; };")
			if err != nil {
				return
			}
			defer tree.Close()
		}()
	}
	wg.Wait()
}

func TestPoolParseEmptySource(t *testing.T) {
	pool := NewPool()
	defer pool.Close()

	tree, err := pool.Parse("")
	require.NoError(t, err)
	defer tree.Close()
	assert.Equal(t, "program", tree.RootNode().Kind())
}
