package graph

import (
	"errors"
	"testing"

	"curricula/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T, ids []string, edges [][2]string) *Directed {
	t.Helper()
	g := NewDirected()
	for _, id := range ids {
		g.AddNode(Node{ID: id, Name: id})
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestAddEdge_UnknownNode(t *testing.T) {
	g := newTestGraph(t, []string{"a"}, nil)

	assert.Error(t, g.AddEdge("a", "b"))
	assert.Error(t, g.AddEdge("b", "a"))
	assert.Equal(t, 0, g.NumberOfEdges())
}

func TestAddEdge_Duplicate(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"a", "b"}})

	assert.Equal(t, 1, g.NumberOfEdges())
	assert.True(t, g.HasEdge("a", "b"))
	assert.False(t, g.HasEdge("b", "a"))
	assert.Equal(t, []string{"b"}, g.Successors("a"))
	assert.Equal(t, []string{"a"}, g.Predecessors("b"))
}

func TestAddNode_UpdatesAttributes(t *testing.T) {
	g := NewDirected()
	g.AddNode(Node{ID: "a", ConceptsCount: 1})
	g.AddNode(Node{ID: "a", ConceptsCount: 5})

	n, ok := g.Node("a")
	require.True(t, ok)
	assert.Equal(t, 5, n.ConceptsCount)
	assert.Equal(t, 1, g.NumberOfNodes())
}

func TestTopologicalSort(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges [][2]string
		want  []string
	}{
		{
			name: "no edges keeps insertion order",
			ids:  []string{"c", "a", "b"},
			want: []string{"c", "a", "b"},
		},
		{
			name:  "chain",
			ids:   []string{"c", "b", "a"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "diamond prefers earlier insertion",
			ids:   []string{"math", "kin", "elec", "forces"},
			edges: [][2]string{{"math", "kin"}, {"math", "elec"}, {"kin", "forces"}, {"math", "forces"}},
			want:  []string{"math", "kin", "elec", "forces"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGraph(t, tt.ids, tt.edges)
			order, err := g.TopologicalSort()
			require.NoError(t, err)
			assert.Equal(t, tt.want, order)
			assert.True(t, g.IsDAG())
		})
	}
}

func TestTopologicalSort_Cycle(t *testing.T) {
	g := newTestGraph(t, []string{"root", "a", "b", "c"},
		[][2]string{{"root", "a"}, {"a", "b"}, {"b", "c"}, {"c", "a"}})

	_, err := g.TopologicalSort()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCategoryCycle))

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []string{"a", "b", "c", "a"}, cycleErr.Cycle)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, cycleErr.Remaining)
	assert.Contains(t, err.Error(), "a -> b -> c -> a")
	assert.False(t, g.IsDAG())
}

func TestSelfLoopIsCycle(t *testing.T) {
	g := newTestGraph(t, []string{"a"}, [][2]string{{"a", "a"}})

	assert.Equal(t, []string{"a", "a"}, g.FindCycle())
	_, err := g.Layers()
	assert.ErrorIs(t, err, domain.ErrCategoryCycle)
}

func TestLayers(t *testing.T) {
	g := newTestGraph(t, []string{"math", "kin", "geo", "forces"},
		[][2]string{{"math", "kin"}, {"math", "geo"}, {"kin", "forces"}, {"math", "forces"}})

	layers, err := g.Layers()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"math"}, {"kin", "geo"}, {"forces"}}, layers)
}

func TestEmptyGraph(t *testing.T) {
	g := NewDirected()

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Empty(t, order)
	assert.True(t, g.IsDAG())
}
