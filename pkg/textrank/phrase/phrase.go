// Package phrase turns per-node ranks into ranked, deduplicated keyphrases.
package phrase

import (
	"errors"
	"math"
	"sort"

	"github.com/cognicore/textrank/pkg/textrank/annotate"
	"github.com/cognicore/textrank/pkg/textrank/graph"
	"github.com/cognicore/textrank/pkg/textrank/internalerr"
)

// Phrase is one ranked keyphrase with the spans it was found at
type Phrase struct {
	Text   string          `yaml:"text" json:"text"`
	Rank   float64         `yaml:"rank" json:"rank"`
	Count  int             `yaml:"count" json:"count"`
	Chunks []annotate.Span `yaml:"chunks" json:"chunks"`
}

// Candidates merges noun chunks and entities into one span list ordered by
// position. Entities with a label in exclude are skipped. When both sources
// cover the same token range the entity is kept.
//
// A document without noun-chunk support still yields its entities; the
// ErrNoNounChunks error is returned alongside them so the caller can log it.
func Candidates(doc annotate.CandidateSpans, exclude map[string]struct{}) ([]annotate.Span, error) {
	chunks, chunkErr := doc.NounChunks()
	if chunkErr != nil && !errors.Is(chunkErr, internalerr.ErrNoNounChunks) {
		return nil, chunkErr
	}

	type key struct{ start, end int }
	byRange := make(map[key]int)
	var spans []annotate.Span

	for _, c := range chunks {
		k := key{c.Start, c.End}
		if _, ok := byRange[k]; ok {
			continue
		}
		byRange[k] = len(spans)
		spans = append(spans, c)
	}

	for _, e := range doc.Entities() {
		if _, skip := exclude[e.Label]; skip {
			continue
		}
		k := key{e.Start, e.End}
		if i, ok := byRange[k]; ok {
			spans[i] = e
			continue
		}
		byRange[k] = len(spans)
		spans = append(spans, e)
	}

	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End < spans[j].End
	})

	return spans, chunkErr
}

// RankFunc returns the rank of a graph node, false when it is not a node
type RankFunc func(n graph.Node) (float64, bool)

// Aggregator scores candidate spans from node ranks
type Aggregator struct {
	Filter   graph.Filter
	Scrubber Scrubber
}

// SpanRank scores one span. Tokens whose POS is not kept count as noise:
//
//	discount = len / (len + 2*noise + 1)
//	rank     = sqrt(sum / (len + noise)) * discount
func (a *Aggregator) SpanRank(toks []annotate.Token, span annotate.Span, rankOf RankFunc) float64 {
	sum := 0.0
	nonLemma := 0
	for i := span.Start; i < span.End; i++ {
		tok := toks[i]
		if _, ok := a.Filter.POSKept[tok.POS]; !ok {
			nonLemma++
			continue
		}
		if r, ok := rankOf(graph.NodeOf(tok)); ok {
			sum += r
		}
	}

	n := float64(span.Len())
	discount := n / (n + 2*float64(nonLemma) + 1)
	return math.Sqrt(sum/(n+float64(nonLemma))) * discount
}

// Aggregate scores every span, groups spans by scrubbed text and returns
// one phrase per group ordered by descending rank. A group's rank is the
// best rank of its members. Spans that scrub to an empty string are
// dropped. Ties are ordered by text.
func (a *Aggregator) Aggregate(ts annotate.TokenStream, spans []annotate.Span, rankOf RankFunc) []Phrase {
	scrub := a.Scrubber
	if scrub == nil {
		scrub = DefaultScrubber
	}
	toks := ts.Tokens()

	byText := make(map[string]int)
	var phrases []Phrase

	for _, span := range spans {
		if span.Len() <= 0 || span.End > len(toks) {
			continue
		}
		if span.Text == "" {
			span.Text = annotate.SpanText(ts, span.Start, span.End)
		}
		text := scrub(span)
		if text == "" {
			continue
		}

		rank := a.SpanRank(toks, span, rankOf)
		i, ok := byText[text]
		if !ok {
			byText[text] = len(phrases)
			phrases = append(phrases, Phrase{Text: text, Rank: rank, Count: 1, Chunks: []annotate.Span{span}})
			continue
		}
		p := &phrases[i]
		p.Count++
		p.Chunks = append(p.Chunks, span)
		if rank > p.Rank {
			p.Rank = rank
		}
	}

	Sort(phrases)
	return phrases
}

// Sort orders phrases by descending rank, then by text.
func Sort(phrases []Phrase) {
	sort.SliceStable(phrases, func(i, j int) bool {
		if phrases[i].Rank != phrases[j].Rank {
			return phrases[i].Rank > phrases[j].Rank
		}
		return phrases[i].Text < phrases[j].Text
	})
}

// RankLookup adapts a lemma graph and its rank vector to a RankFunc.
func RankLookup(lg *graph.LemmaGraph, ranks []float64) RankFunc {
	return func(n graph.Node) (float64, bool) {
		i, ok := lg.Index(n)
		if !ok || i >= len(ranks) {
			return 0, false
		}
		return ranks[i], true
	}
}
