// Package graph holds the directed prerequisite graph between curriculum
// categories.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"curricula/internal/domain"
)

// Node carries the attributes drawn for one category.
type Node struct {
	ID            string
	Name          string
	ConceptsCount int
	Level         domain.Level
}

// Edge points from a prerequisite to the category that depends on it.
type Edge struct {
	From string
	To   string
}

// Directed is a simple directed graph keyed by node ID. Nodes and edges keep
// their insertion order, which makes every traversal deterministic.
type Directed struct {
	nodes []Node
	index map[string]int
	edges []Edge
	succ  map[string][]string
	pred  map[string][]string
	seen  map[Edge]bool
}

func NewDirected() *Directed {
	return &Directed{
		index: map[string]int{},
		succ:  map[string][]string{},
		pred:  map[string][]string{},
		seen:  map[Edge]bool{},
	}
}

// AddNode inserts n, or updates its attributes when the ID already exists.
func (g *Directed) AddNode(n Node) {
	if i, ok := g.index[n.ID]; ok {
		g.nodes[i] = n
		return
	}
	g.index[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

// AddEdge inserts from -> to. Both endpoints must exist; adding an edge twice
// is a no-op.
func (g *Directed) AddEdge(from, to string) error {
	if _, ok := g.index[from]; !ok {
		return fmt.Errorf("add edge %s -> %s: unknown node %q", from, to, from)
	}
	if _, ok := g.index[to]; !ok {
		return fmt.Errorf("add edge %s -> %s: unknown node %q", from, to, to)
	}
	e := Edge{From: from, To: to}
	if g.seen[e] {
		return nil
	}
	g.seen[e] = true
	g.edges = append(g.edges, e)
	g.succ[from] = append(g.succ[from], to)
	g.pred[to] = append(g.pred[to], from)
	return nil
}

func (g *Directed) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

func (g *Directed) HasEdge(from, to string) bool {
	return g.seen[Edge{From: from, To: to}]
}

// Node returns the attributes of id.
func (g *Directed) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Nodes returns all nodes in insertion order.
func (g *Directed) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Edges returns all edges in insertion order.
func (g *Directed) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

func (g *Directed) Successors(id string) []string {
	return append([]string(nil), g.succ[id]...)
}

func (g *Directed) Predecessors(id string) []string {
	return append([]string(nil), g.pred[id]...)
}

func (g *Directed) NumberOfNodes() int { return len(g.nodes) }

func (g *Directed) NumberOfEdges() int { return len(g.edges) }

// CycleError reports a graph that is not acyclic.
type CycleError struct {
	// Cycle is one concrete cycle, first node repeated at the end.
	Cycle []string
	// Remaining lists every node Kahn's algorithm could not order.
	Remaining []string
}

func (e *CycleError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("%v: %s", domain.ErrCategoryCycle, strings.Join(e.Cycle, " -> "))
	}
	return fmt.Sprintf("%v: %s", domain.ErrCategoryCycle, strings.Join(e.Remaining, ", "))
}

func (e *CycleError) Unwrap() error { return domain.ErrCategoryCycle }

// TopologicalSort orders the nodes so that every edge points forward. Among
// nodes that are ready at the same time the one inserted first wins.
func (g *Directed) TopologicalSort() ([]string, error) {
	if _, err := g.kahn(); err != nil {
		return nil, err
	}
	return g.stableOrder(), nil
}

// Layers groups nodes into waves: layer 0 has no prerequisites and every
// node sits one layer after its deepest prerequisite.
func (g *Directed) Layers() ([][]string, error) {
	return g.kahn()
}

// IsDAG reports whether the graph has no directed cycle.
func (g *Directed) IsDAG() bool {
	return len(g.FindCycle()) == 0
}

func (g *Directed) kahn() ([][]string, error) {
	inDeg := make(map[string]int, len(g.nodes))
	for _, n := range g.nodes {
		inDeg[n.ID] = len(g.pred[n.ID])
	}

	var queue []string
	for _, n := range g.nodes {
		if inDeg[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	var layers [][]string
	processed := 0
	for len(queue) > 0 {
		g.sortByInsertion(queue)
		layers = append(layers, queue)
		processed += len(queue)

		var next []string
		for _, id := range queue {
			for _, s := range g.succ[id] {
				inDeg[s]--
				if inDeg[s] == 0 {
					next = append(next, s)
				}
			}
		}
		queue = next
	}

	if processed != len(g.nodes) {
		var remaining []string
		for _, n := range g.nodes {
			if inDeg[n.ID] > 0 {
				remaining = append(remaining, n.ID)
			}
		}
		return nil, &CycleError{Cycle: g.FindCycle(), Remaining: remaining}
	}
	return layers, nil
}

// stableOrder is Kahn's algorithm always taking the earliest inserted ready
// node. Callers must have checked for cycles.
func (g *Directed) stableOrder() []string {
	inDeg := make(map[string]int, len(g.nodes))
	for _, n := range g.nodes {
		inDeg[n.ID] = len(g.pred[n.ID])
	}
	var ready []string
	for _, n := range g.nodes {
		if inDeg[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		g.sortByInsertion(ready)
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, s := range g.succ[id] {
			inDeg[s]--
			if inDeg[s] == 0 {
				ready = append(ready, s)
			}
		}
	}
	return order
}

// FindCycle returns one directed cycle as a path whose last element repeats
// the first, or nil when the graph is acyclic.
func (g *Directed) FindCycle() []string {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(g.nodes))
	var stack []string

	var visit func(id string) []string
	visit = func(id string) []string {
		color[id] = grey
		stack = append(stack, id)
		for _, s := range g.succ[id] {
			switch color[s] {
			case grey:
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == s {
						cycle := append([]string(nil), stack[i:]...)
						return append(cycle, s)
					}
				}
			case white:
				if c := visit(s); c != nil {
					return c
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return nil
	}

	for _, n := range g.nodes {
		if color[n.ID] == white {
			if c := visit(n.ID); c != nil {
				return c
			}
		}
	}
	return nil
}

func (g *Directed) sortByInsertion(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool { return g.index[ids[i]] < g.index[ids[j]] })
}
