// Package graph implements the weighted co-occurrence graph the ranker runs
// over, and the builder that derives it from an annotated document.
package graph

import (
	"sort"
)

// Edge is an outgoing weighted edge
type Edge struct {
	To     int
	Weight float64
}

// Pair is an edge reported once; for undirected graphs From <= To
type Pair struct {
	From, To int
	Weight   float64
}

// Graph is a weighted graph over dense node indices, insertion ordered
type Graph struct {
	directed bool
	labels   []string
	adj      []map[int]float64
	sorted   [][]Edge // lazily built neighbor lists, reset on mutation
}

// New creates an empty graph
func New(directed bool) *Graph {
	return &Graph{directed: directed}
}

// Directed reports whether edges are one-way.
func (g *Graph) Directed() bool {
	return g.directed
}

// AddNode appends a node and returns its index
func (g *Graph) AddNode(label string) int {
	g.labels = append(g.labels, label)
	g.adj = append(g.adj, make(map[int]float64))
	g.sorted = nil
	return len(g.labels) - 1
}

// AddWeight accumulates w on the edge u→v (and v→u when undirected).
// A self-loop is stored once.
func (g *Graph) AddWeight(u, v int, w float64) {
	g.adj[u][v] += w
	if !g.directed && u != v {
		g.adj[v][u] += w
	}
	g.sorted = nil
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.labels)
}

// Label returns the display label of node i
func (g *Graph) Label(i int) string {
	return g.labels[i]
}

// Weight returns the accumulated weight of u→v, 0 if absent
func (g *Graph) Weight(u, v int) float64 {
	return g.adj[u][v]
}

// HasEdge reports whether u→v exists
func (g *Graph) HasEdge(u, v int) bool {
	_, ok := g.adj[u][v]
	return ok
}

// Neighbors returns the outgoing edges of node i ordered by target index.
func (g *Graph) Neighbors(i int) []Edge {
	if g.sorted == nil {
		g.sorted = make([][]Edge, len(g.adj))
	}
	if g.sorted[i] != nil || len(g.adj[i]) == 0 {
		return g.sorted[i]
	}

	edges := make([]Edge, 0, len(g.adj[i]))
	for to, w := range g.adj[i] {
		edges = append(edges, Edge{To: to, Weight: w})
	}
	sort.Slice(edges, func(a, b int) bool {
		return edges[a].To < edges[b].To
	})
	g.sorted[i] = edges
	return edges
}

// Edges lists every edge once, ordered by (From, To)
func (g *Graph) Edges() []Pair {
	var pairs []Pair
	for u := range g.adj {
		for _, e := range g.Neighbors(u) {
			if !g.directed && e.To < u {
				continue
			}
			pairs = append(pairs, Pair{From: u, To: e.To, Weight: e.Weight})
		}
	}
	return pairs
}

// EdgeCount returns the number of distinct edges
func (g *Graph) EdgeCount() int {
	count := 0
	for u, nbrs := range g.adj {
		for v := range nbrs {
			if g.directed || v >= u {
				count++
			}
		}
	}
	return count
}
