// Package graph provides an undirected graph over small integer node ids.
//
// Nodes are addressed by index: neighbour sets live in a slice indexed by node
// id, and both the node list and each neighbour list keep insertion order so
// that traversals are reproducible.
package graph

// Adjacency is an undirected graph keyed by non-negative integer node ids.
type Adjacency struct {
	neighbors [][]int
	present   []bool
	order     []int
	edges     int
}

// New creates an empty graph with room for nodes [0, capacity).
func New(capacity int) *Adjacency {
	return &Adjacency{
		neighbors: make([][]int, capacity),
		present:   make([]bool, capacity),
	}
}

// AddNode inserts id if it is not present yet.
func (g *Adjacency) AddNode(id int) {
	if id < 0 {
		panic("graph: negative node id")
	}
	g.grow(id)
	if g.present[id] {
		return
	}
	g.present[id] = true
	g.order = append(g.order, id)
}

// AddEdge inserts the undirected edge u-v, adding missing nodes.
// Self loops and repeated edges are ignored.
func (g *Adjacency) AddEdge(u, v int) {
	g.AddNode(u)
	g.AddNode(v)
	if u == v || g.HasEdge(u, v) {
		return
	}
	g.neighbors[u] = append(g.neighbors[u], v)
	g.neighbors[v] = append(g.neighbors[v], u)
	g.edges++
}

// HasNode reports whether id is in the graph.
func (g *Adjacency) HasNode(id int) bool {
	return id >= 0 && id < len(g.present) && g.present[id]
}

// HasEdge reports whether u and v are adjacent.
func (g *Adjacency) HasEdge(u, v int) bool {
	if !g.HasNode(u) || !g.HasNode(v) {
		return false
	}
	// Scan the shorter list; manifold meshes keep these at three entries.
	a, b := g.neighbors[u], v
	if len(g.neighbors[v]) < len(a) {
		a, b = g.neighbors[v], u
	}
	for _, n := range a {
		if n == b {
			return true
		}
	}
	return false
}

// Nodes returns node ids in insertion order. The slice must not be modified.
func (g *Adjacency) Nodes() []int {
	return g.order
}

// Neighbors returns the neighbours of id in insertion order.
// The slice must not be modified.
func (g *Adjacency) Neighbors(id int) []int {
	if !g.HasNode(id) {
		return nil
	}
	return g.neighbors[id]
}

// Len returns the number of nodes.
func (g *Adjacency) Len() int {
	return len(g.order)
}

// EdgeCount returns the number of undirected edges.
func (g *Adjacency) EdgeCount() int {
	return g.edges
}

// ConnectedComponents returns the node sets of each component. Components are
// ordered by their first node in insertion order, and members by discovery.
func (g *Adjacency) ConnectedComponents() [][]int {
	seen := make([]bool, len(g.present))
	var components [][]int
	var stack []int

	for _, start := range g.order {
		if seen[start] {
			continue
		}
		seen[start] = true
		stack = append(stack[:0], start)
		var component []int

		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, n)
			for _, m := range g.neighbors[n] {
				if !seen[m] {
					seen[m] = true
					stack = append(stack, m)
				}
			}
		}
		components = append(components, component)
	}
	return components
}

// Subgraph returns the graph induced by nodes. Ids not in g are skipped.
func (g *Adjacency) Subgraph(nodes []int) *Adjacency {
	sub := New(len(g.present))
	keep := make([]bool, len(g.present))
	for _, n := range nodes {
		if g.HasNode(n) {
			keep[n] = true
			sub.AddNode(n)
		}
	}
	for _, n := range sub.order {
		for _, m := range g.neighbors[n] {
			if keep[m] && n < m {
				sub.AddEdge(n, m)
			}
		}
	}
	return sub
}

// BfsEdges returns a breadth-first walker that yields the tree edges
// discovered from start. The walker is consumed as it is advanced, and the
// graph must not gain nodes while it is in use.
func (g *Adjacency) BfsEdges(start int) *BFS {
	b := &BFS{g: g}
	if g.HasNode(start) {
		b.seen = make([]bool, len(g.present))
		b.seen[start] = true
		b.queue = append(b.queue, start)
	}
	return b
}

func (g *Adjacency) grow(id int) {
	if id < len(g.present) {
		return
	}
	n := max(id+1, 2*len(g.present))
	neighbors := make([][]int, n)
	copy(neighbors, g.neighbors)
	present := make([]bool, n)
	copy(present, g.present)
	g.neighbors, g.present = neighbors, present
}

// BFS is a lazy breadth-first traversal over an Adjacency graph.
type BFS struct {
	g     *Adjacency
	seen  []bool
	queue []int
	head  int
	next  int
}

// Next returns the next discovery edge (parent, child). ok is false once the
// component of the start node is exhausted; later calls keep returning false.
func (b *BFS) Next() (parent, child int, ok bool) {
	for b.head < len(b.queue) {
		u := b.queue[b.head]
		adj := b.g.neighbors[u]
		for b.next < len(adj) {
			v := adj[b.next]
			b.next++
			if b.seen[v] {
				continue
			}
			b.seen[v] = true
			b.queue = append(b.queue, v)
			return u, v, true
		}
		b.head++
		b.next = 0
	}
	return 0, 0, false
}
