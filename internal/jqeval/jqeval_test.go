package jqeval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeatlas/internal/graph"
)

func testSnapshot() *graph.Snapshot {
	return &graph.Snapshot{
		Nodes: []graph.Node{
			{ID: "fn:a", Labels: []string{graph.LabelFunction}, Properties: graph.Properties{Name: "a"}},
			{ID: "fn:b", Labels: []string{graph.LabelFunction}, Properties: graph.Properties{Name: "b"}},
			{ID: "file:x", Labels: []string{graph.LabelFile}, Properties: graph.Properties{FilePath: "src/x.ts"}},
		},
		Relationships: []graph.Relationship{
			{Type: graph.RelationCalls, StartNode: "fn:a", EndNode: "fn:b"},
		},
	}
}

func TestEvaluate(t *testing.T) {
	eval := New()
	ctx := context.Background()

	t.Run("single output", func(t *testing.T) {
		v, err := eval.Evaluate(ctx, testSnapshot(), ".nodes | length")
		require.NoError(t, err)
		assert.Equal(t, 3, v)
	})

	t.Run("multiple outputs become a slice", func(t *testing.T) {
		v, err := eval.Evaluate(ctx, testSnapshot(), ".nodes[].id")
		require.NoError(t, err)
		assert.Equal(t, []any{"fn:a", "fn:b", "file:x"}, v)
	})

	t.Run("empty stream is nil", func(t *testing.T) {
		v, err := eval.Evaluate(ctx, testSnapshot(), ".nodes[] | select(.id == \"nope\")")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("parse error", func(t *testing.T) {
		_, err := eval.Evaluate(ctx, testSnapshot(), ".nodes[")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse expression")
	})

	t.Run("runtime error", func(t *testing.T) {
		_, err := eval.Evaluate(ctx, testSnapshot(), ".nodes | .missing.deeper")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "evaluate expression")
	})

	t.Run("snapshot exposed in wire form", func(t *testing.T) {
		v, err := eval.Evaluate(ctx, testSnapshot(), ".relationships[0].type")
		require.NoError(t, err)
		assert.Equal(t, "calls", v)
	})
}
