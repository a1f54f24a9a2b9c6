// SPDX-License-Identifier: MPL-2.0

package graph

type (
	// Undirected is an undirected graph keyed by node name. Self-loops are allowed and
	// parallel edges collapse into one.
	Undirected struct {
		nodes   []string
		index   map[string]int
		edges   map[[2]int]struct{}
		ordered [][2]int
	}

	// Edge is an unordered pair of nodes. A and B are equal for a self-loop.
	Edge struct {
		A, B string
	}
)

// NewUndirected creates an empty undirected graph.
func NewUndirected() *Undirected {
	return &Undirected{
		index: make(map[string]int),
		edges: make(map[[2]int]struct{}),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Undirected) AddNode(name string) {
	if _, ok := g.index[name]; ok {
		return
	}
	g.index[name] = len(g.nodes)
	g.nodes = append(g.nodes, name)
}

// HasNode reports whether name was added.
func (g *Undirected) HasNode(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Nodes returns the nodes in insertion order.
func (g *Undirected) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// AddEdge connects a and b in both directions. a == b adds a self-loop. Both nodes are
// added if missing. Adding an existing edge is a no-op.
func (g *Undirected) AddEdge(a, b string) {
	g.AddNode(a)
	g.AddNode(b)
	key := g.key(a, b)
	if _, ok := g.edges[key]; ok {
		return
	}
	g.edges[key] = struct{}{}
	g.ordered = append(g.ordered, key)
}

// Connected reports whether a and b share an edge.
func (g *Undirected) Connected(a, b string) bool {
	ia, okA := g.index[a]
	ib, okB := g.index[b]
	if !okA || !okB {
		return false
	}
	_, ok := g.edges[orderKey(ia, ib)]
	return ok
}

// Edges returns every distinct edge once, in the order it was first added. Each edge is
// reported with its endpoints in node insertion order.
func (g *Undirected) Edges() []Edge {
	out := make([]Edge, len(g.ordered))
	for i, k := range g.ordered {
		out[i] = Edge{A: g.nodes[k[0]], B: g.nodes[k[1]]}
	}
	return out
}

func (g *Undirected) key(a, b string) [2]int {
	return orderKey(g.index[a], g.index[b])
}

func orderKey(a, b int) [2]int {
	if b < a {
		a, b = b, a
	}
	return [2]int{a, b}
}
