package topic

import (
	"github.com/cognicore/textrank/pkg/textrank/annotate"
	"github.com/cognicore/textrank/pkg/textrank/graph"
	"github.com/cognicore/textrank/pkg/textrank/phrase"
)

// Graph builds the complete topic graph. The edge between two clusters
// weighs edgeWeight times the sum of 1/|start distance| over all member
// pairs; pairs starting at the same token add nothing.
func Graph(clusters []Cluster, edgeWeight float64) *graph.Graph {
	g := graph.New(false)
	for _, c := range clusters {
		g.AddNode(c.First().Text)
	}

	for i := range clusters {
		for j := i + 1; j < len(clusters); j++ {
			w := 0.0
			for _, a := range clusters[i] {
				for _, b := range clusters[j] {
					d := a.Start - b.Start
					if d < 0 {
						d = -d
					}
					if d != 0 {
						w += 1.0 / float64(d)
					}
				}
			}
			g.AddWeight(i, j, w*edgeWeight)
		}
	}
	return g
}

// Phrases turns ranked clusters into phrases named after their earliest
// member. Clusters whose names scrub to the same text are merged into one
// phrase, so its Count and Chunks then cover more than one cluster and its
// Rank is the best of them.
func Phrases(clusters []Cluster, ranks []float64, scrub phrase.Scrubber) []phrase.Phrase {
	if scrub == nil {
		scrub = phrase.DefaultScrubber
	}

	byText := make(map[string]int)
	var out []phrase.Phrase
	for i, c := range clusters {
		text := scrub(c.First())
		if text == "" {
			continue
		}
		rank := 0.0
		if i < len(ranks) {
			rank = ranks[i]
		}

		if k, ok := byText[text]; ok {
			p := &out[k]
			p.Count += len(c)
			p.Chunks = append(p.Chunks, c...)
			if rank > p.Rank {
				p.Rank = rank
			}
			continue
		}
		byText[text] = len(out)
		out = append(out, phrase.Phrase{
			Text:   text,
			Rank:   rank,
			Count:  len(c),
			Chunks: append([]annotate.Span(nil), c...),
		})
	}

	phrase.Sort(out)
	return out
}
