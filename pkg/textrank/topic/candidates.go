// Package topic implements the TopicRank variant: noun chunks are trimmed
// to candidates, clustered by word overlap, and ranked as nodes of a
// complete topic graph.
package topic

import (
	"github.com/cognicore/textrank/pkg/textrank/annotate"
	"github.com/cognicore/textrank/pkg/textrank/graph"
)

// Candidates trims every noun chunk so it starts at its first kept token.
// Chunks without a kept token are dropped. A document without noun-chunk
// support yields no candidates and the ErrNoNounChunks error.
func Candidates(doc annotate.Annotated, f graph.Filter) ([]annotate.Span, error) {
	chunks, err := doc.NounChunks()
	if err != nil {
		return nil, err
	}

	toks := doc.Tokens()
	var cands []annotate.Span
	for _, c := range chunks {
		for i := c.Start; i < c.End && i < len(toks); i++ {
			if !f.Keep(toks[i]) {
				continue
			}
			cands = append(cands, annotate.Span{
				Start: i,
				End:   c.End,
				Label: c.Label,
				Text:  annotate.SpanText(doc, i, c.End),
			})
			break
		}
	}
	return cands, nil
}
