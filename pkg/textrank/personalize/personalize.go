// Package personalize computes restart distributions for personalized
// PageRank. Each ranking variant supplies one Strategy.
package personalize

import (
	"fmt"
	"strings"

	"github.com/cognicore/textrank/pkg/textrank/annotate"
	"github.com/cognicore/textrank/pkg/textrank/graph"
	"github.com/cognicore/textrank/pkg/textrank/internalerr"
)

// Strategy names
const (
	NameBase     = "textrank"
	NamePosition = "positionrank"
	NameBiased   = "biasedtextrank"
	NameTopic    = "topicrank"
)

// Context is what a strategy may look at
type Context struct {
	Doc    annotate.TokenStream
	Graph  *graph.LemmaGraph
	Filter graph.Filter
}

// Strategy produces a restart vector indexed by graph node. A nil vector
// means uniform restart.
type Strategy interface {
	Name() string
	Personalize(ctx Context) []float64
}

// Base is plain TextRank
type Base struct{}

func (Base) Name() string                  { return NameBase }
func (Base) Personalize(Context) []float64 { return nil }

// Topic ranks cluster nodes built by the topic package; no restart bias.
type Topic struct{}

func (Topic) Name() string                  { return NameTopic }
func (Topic) Personalize(Context) []float64 { return nil }

// Position favours lemmas that occur early in the document.
type Position struct{}

func (Position) Name() string { return NamePosition }

// Personalize gives every node the normalized position weight of its lemma.
func (Position) Personalize(ctx Context) []float64 {
	if ctx.Graph == nil || ctx.Graph.Len() == 0 {
		return nil
	}

	weights := PositionWeights(ctx.Doc, ctx.Filter)
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return nil
	}

	v := make([]float64, ctx.Graph.Len())
	for i, n := range ctx.Graph.Nodes() {
		v[i] = weights[n.Lemma] / total
	}
	return Normalize(v)
}

// PositionWeights sums 1/(i+1) per lemma, where i is the token's position
// in the stream of kept tokens. The result is not normalized.
func PositionWeights(ts annotate.TokenStream, f graph.Filter) map[string]float64 {
	weights := make(map[string]float64)
	i := 0
	for _, tok := range ts.Tokens() {
		if !f.Keep(tok) {
			continue
		}
		weights[tok.Lemma] += 1.0 / float64(i+1)
		i++
	}
	return weights
}

// Biased favours nodes whose tokens appear in a focus text.
type Biased struct {
	Focus       string
	Bias        float64
	DefaultBias float64
}

func (Biased) Name() string { return NameBiased }

// Personalize assigns Bias to nodes with at least one token matching a
// focus word on surface text or lemma, DefaultBias to every other node.
func (b Biased) Personalize(ctx Context) []float64 {
	if ctx.Graph == nil || ctx.Graph.Len() == 0 {
		return nil
	}

	focus := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(b.Focus)) {
		focus[w] = struct{}{}
	}

	matched := make([]bool, ctx.Graph.Len())
	for _, tok := range ctx.Doc.Tokens() {
		if !ctx.Filter.Keep(tok) {
			continue
		}
		id, ok := ctx.Graph.Index(graph.NodeOf(tok))
		if !ok {
			continue
		}
		_, text := focus[strings.ToLower(tok.Text)]
		_, lemma := focus[strings.ToLower(tok.Lemma)]
		if text || lemma {
			matched[id] = true
		}
	}

	v := make([]float64, len(matched))
	for i, m := range matched {
		if m {
			v[i] = b.Bias
		} else {
			v[i] = b.DefaultBias
		}
	}
	return Normalize(v)
}

// Normalize scales v to sum to 1. It returns nil when the sum is not
// positive, which callers treat as uniform.
func Normalize(v []float64) []float64 {
	total := 0.0
	for _, x := range v {
		total += x
	}
	if total <= 0 {
		return nil
	}

	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / total
	}
	return out
}

// ForAlgorithm selects the strategy of a ranking variant by name
func ForAlgorithm(name, focus string, bias, defaultBias float64) (Strategy, error) {
	switch name {
	case NameBase, "":
		return Base{}, nil
	case NamePosition:
		return Position{}, nil
	case NameBiased:
		return Biased{Focus: focus, Bias: bias, DefaultBias: defaultBias}, nil
	case NameTopic:
		return Topic{}, nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q: %w", name, internalerr.ErrInvalidConfig)
	}
}
