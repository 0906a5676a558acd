package graph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Describe writes a plain node/edge listing that visualization tools can
// convert: one "node <id> <label> <rank>" line per node followed by one
// "edge <from> <to> <weight>" line per edge. ranks may be nil.
func (g *Graph) Describe(w io.Writer, ranks []float64) error {
	bw := bufio.NewWriter(w)

	kind := "undirected"
	if g.directed {
		kind = "directed"
	}
	fmt.Fprintf(bw, "graph %s nodes=%d edges=%d\n", kind, g.Len(), g.EdgeCount())

	for i, label := range g.labels {
		rank := 0.0
		if i < len(ranks) {
			rank = ranks[i]
		}
		fmt.Fprintf(bw, "node %d %s %s\n", i, strconv.Quote(label), strconv.FormatFloat(rank, 'f', 6, 64))
	}

	for _, e := range g.Edges() {
		fmt.Fprintf(bw, "edge %d %d %s\n", e.From, e.To, strconv.FormatFloat(e.Weight, 'f', 4, 64))
	}

	return bw.Flush()
}
