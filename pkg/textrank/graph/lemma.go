package graph

import (
	"github.com/cognicore/textrank/pkg/textrank/annotate"
	"github.com/cognicore/textrank/pkg/textrank/stopwords"
)

// Node identifies a vertex of the lemma graph
type Node struct {
	Lemma string
	POS   string
}

// NodeOf returns the node key of a token.
func NodeOf(tok annotate.Token) Node {
	return Node{Lemma: tok.Lemma, POS: tok.POS}
}

// String renders the node as "lemma/POS".
func (n Node) String() string {
	return n.Lemma + "/" + n.POS
}

// Filter decides which tokens take part in ranking
type Filter struct {
	POSKept   map[string]struct{}
	Stopwords *stopwords.Table
}

// NewFilter builds a filter from a list of kept POS tags
func NewFilter(posKept []string, stops *stopwords.Table) Filter {
	kept := make(map[string]struct{}, len(posKept))
	for _, p := range posKept {
		kept[p] = struct{}{}
	}
	return Filter{POSKept: kept, Stopwords: stops}
}

// Keep reports whether a token's POS is allowed and it is not a stopword.
func (f Filter) Keep(tok annotate.Token) bool {
	if _, ok := f.POSKept[tok.POS]; !ok {
		return false
	}
	return !f.Stopwords.IsStop(tok.Lemma, tok.POS)
}

// LemmaGraph is a Graph whose nodes are (lemma, POS) pairs
type LemmaGraph struct {
	*Graph
	nodes []Node
	index map[Node]int
}

// NewLemmaGraph creates an empty lemma graph
func NewLemmaGraph(directed bool) *LemmaGraph {
	return &LemmaGraph{
		Graph: New(directed),
		index: make(map[Node]int),
	}
}

// Intern returns the index of n, adding it on first sight
func (lg *LemmaGraph) Intern(n Node) int {
	if id, ok := lg.index[n]; ok {
		return id
	}
	id := lg.AddNode(n.String())
	lg.nodes = append(lg.nodes, n)
	lg.index[n] = id
	return id
}

// Index looks up the index of a node
func (lg *LemmaGraph) Index(n Node) (int, bool) {
	id, ok := lg.index[n]
	return id, ok
}

// Node returns the node at index i
func (lg *LemmaGraph) Node(i int) Node {
	return lg.nodes[i]
}

// Nodes returns all nodes in index order
func (lg *LemmaGraph) Nodes() []Node {
	return lg.nodes
}
