package personalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/textrank/pkg/textrank/annotate"
	"github.com/cognicore/textrank/pkg/textrank/graph"
	"github.com/cognicore/textrank/pkg/textrank/internalerr"
)

func filter() graph.Filter {
	return graph.NewFilter([]string{"ADJ", "NOUN", "PROPN", "VERB"}, nil)
}

func newContext(doc *annotate.Document) Context {
	f := filter()
	b := &graph.Builder{Filter: f, Lookback: 3, EdgeWeight: 1}
	return Context{Doc: doc, Graph: b.Build(doc), Filter: f}
}

func sum(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s
}

// loan sits at kept positions 2, 5 and 10
func loanDoc() *annotate.Document {
	b := annotate.NewBuilder()
	b.AddSentence(
		annotate.Tok("banks", "bank", "NOUN"),
		annotate.Tok("loans", "loan", "NOUN"),
		annotate.Tok("the", "the", "DET"),
		annotate.Tok("rise", "rise", "VERB"),
		annotate.Tok("rates", "rate", "NOUN"),
	)
	b.AddSentence(
		annotate.Tok("loan", "loan", "NOUN"),
		annotate.Tok("demand", "demand", "NOUN"),
		annotate.Tok("fell", "fall", "VERB"),
		annotate.Tok("sharply", "sharply", "ADV"),
	)
	b.AddSentence(
		annotate.Tok("the", "the", "DET"),
		annotate.Tok("housing", "housing", "NOUN"),
		annotate.Tok("starts", "start", "NOUN"),
		annotate.Tok("loan", "loan", "NOUN"),
	)
	return b.Build()
}

func TestPositionWeights(t *testing.T) {
	weights := PositionWeights(loanDoc(), filter())

	assert.InDelta(t, 0.8, weights["loan"], 1e-12)
	assert.InDelta(t, 1.0, weights["bank"], 1e-12)
	assert.InDelta(t, 1.0/3, weights["rise"], 1e-12)
}

func TestPositionNormalized(t *testing.T) {
	ctx := newContext(loanDoc())
	v := Position{}.Personalize(ctx)

	require.Len(t, v, ctx.Graph.Len())
	assert.InDelta(t, 1.0, sum(v), 1e-9)

	bank, _ := ctx.Graph.Index(graph.Node{Lemma: "bank", POS: "NOUN"})
	loan, _ := ctx.Graph.Index(graph.Node{Lemma: "loan", POS: "NOUN"})
	assert.InDelta(t, 0.8, v[loan]/v[bank], 1e-9)
}

func TestPositionSharedLemmaAcrossPOS(t *testing.T) {
	b := annotate.NewBuilder()
	b.AddSentence(annotate.Tok("run", "run", "VERB"), annotate.Tok("run", "run", "NOUN"))
	ctx := newContext(b.Build())

	v := Position{}.Personalize(ctx)
	require.Len(t, v, 2)
	assert.InDelta(t, v[0], v[1], 1e-12)
	assert.InDelta(t, 1.0, sum(v), 1e-9)
}

func TestBaseAndTopicAreUniform(t *testing.T) {
	ctx := newContext(loanDoc())
	assert.Nil(t, Base{}.Personalize(ctx))
	assert.Nil(t, Topic{}.Personalize(ctx))
}

func TestBiased(t *testing.T) {
	ctx := newContext(loanDoc())
	v := Biased{Focus: "Housing loans", Bias: 10, DefaultBias: 1}.Personalize(ctx)

	require.Len(t, v, ctx.Graph.Len())
	assert.InDelta(t, 1.0, sum(v), 1e-9)

	housing, _ := ctx.Graph.Index(graph.Node{Lemma: "housing", POS: "NOUN"})
	loan, _ := ctx.Graph.Index(graph.Node{Lemma: "loan", POS: "NOUN"})
	rate, _ := ctx.Graph.Index(graph.Node{Lemma: "rate", POS: "NOUN"})

	assert.InDelta(t, 10*v[rate], v[housing], 1e-12)
	assert.InDelta(t, v[housing], v[loan], 1e-12, "surface text match on any occurrence")
}

func TestBiasedZeroDefault(t *testing.T) {
	ctx := newContext(loanDoc())
	v := Biased{Focus: "demand", Bias: 10, DefaultBias: 0}.Personalize(ctx)

	demand, _ := ctx.Graph.Index(graph.Node{Lemma: "demand", POS: "NOUN"})
	for i, x := range v {
		if i == demand {
			assert.InDelta(t, 1.0, x, 1e-12)
		} else {
			assert.Zero(t, x)
		}
	}
}

func TestBiasedNoMatchZeroDefault(t *testing.T) {
	ctx := newContext(loanDoc())
	assert.Nil(t, Biased{Focus: "chess", Bias: 10, DefaultBias: 0}.Personalize(ctx))
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil))
	assert.Nil(t, Normalize([]float64{0, 0}))
	assert.Equal(t, []float64{0.25, 0.75}, Normalize([]float64{1, 3}))
}

func TestForAlgorithm(t *testing.T) {
	for _, name := range []string{NameBase, NamePosition, NameBiased, NameTopic} {
		s, err := ForAlgorithm(name, "x", 2, 1)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}

	s, err := ForAlgorithm(NameBiased, "chess", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, Biased{Focus: "chess", Bias: 10, DefaultBias: 0}, s)

	_, err = ForAlgorithm("lexrank", "", 1, 1)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidConfig))
}

func TestEmptyGraph(t *testing.T) {
	ctx := newContext(annotate.NewBuilder().Build())
	assert.Nil(t, Position{}.Personalize(ctx))
	assert.Nil(t, Biased{Focus: "x", Bias: 1, DefaultBias: 1}.Personalize(ctx))
}
