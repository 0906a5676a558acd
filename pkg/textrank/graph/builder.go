package graph

import (
	"github.com/cognicore/textrank/pkg/textrank/annotate"
)

// Builder turns a token stream into a lemma co-occurrence graph
type Builder struct {
	Filter     Filter
	Lookback   int     // how many previous kept tokens each kept token links to
	EdgeWeight float64 // weight added per co-occurrence
	Directed   bool    // edges run from the earlier token to the later one
}

// Build constructs the lemma graph of one document. Every kept token becomes
// a node; within a sentence each kept token is linked to the previous
// Lookback kept tokens.
func (b *Builder) Build(doc annotate.Annotated) *LemmaGraph {
	lg := NewLemmaGraph(b.Directed)
	toks := doc.Tokens()

	for _, sent := range doc.Sentences() {
		var window []int
		for i := sent.Start; i < sent.End && i < len(toks); i++ {
			if !b.Filter.Keep(toks[i]) {
				continue
			}
			id := lg.Intern(NodeOf(toks[i]))

			for back := 1; back <= b.Lookback && back <= len(window); back++ {
				prev := window[len(window)-back]
				lg.AddWeight(prev, id, b.EdgeWeight)
			}
			window = append(window, id)
		}
	}

	return lg
}
