package textrank

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cognicore/textrank/pkg/textrank/annotate"
	"github.com/cognicore/textrank/pkg/textrank/internalerr"
	"github.com/cognicore/textrank/pkg/textrank/phrase"
	"github.com/cognicore/textrank/pkg/textrank/summarize"
)

func loadFixture(t *testing.T, name string) *annotate.Document {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer f.Close()

	doc, err := annotate.Decode(f)
	require.NoError(t, err)
	return doc
}

func newEngine(t *testing.T, mutate func(*Options)) *Engine {
	t.Helper()
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	e, err := New(opts)
	require.NoError(t, err)
	return e
}

// Lee Sedol and Go dominate the first three sentences; chess sits alone in
// the last one and shares no lemma with them.
func goChessDoc() *annotate.Document {
	b := annotate.NewBuilder()
	b.AddSentence(
		annotate.Tok("Lee", "Lee", "PROPN"),
		annotate.Tok("Sedol", "Sedol", "PROPN"),
		annotate.Tok("played", "play", "VERB"),
		annotate.Tok("Go", "Go", "PROPN"),
		annotate.Tok("against", "against", "ADP"),
		annotate.Tok("AlphaGo", "AlphaGo", "PROPN"),
		annotate.Tok(".", ".", "PUNCT"),
	)
	b.AddSentence(
		annotate.Tok("AlphaGo", "AlphaGo", "PROPN"),
		annotate.Tok("defeated", "defeat", "VERB"),
		annotate.Tok("Lee", "Lee", "PROPN"),
		annotate.Tok("Sedol", "Sedol", "PROPN"),
		annotate.Tok("in", "in", "ADP"),
		annotate.Tok("Go", "Go", "PROPN"),
		annotate.Tok(".", ".", "PUNCT"),
	)
	b.AddSentence(
		annotate.Tok("Go", "Go", "PROPN"),
		annotate.Tok("players", "player", "NOUN"),
		annotate.Tok("admired", "admire", "VERB"),
		annotate.Tok("AlphaGo", "AlphaGo", "PROPN"),
		annotate.Tok(".", ".", "PUNCT"),
	)
	b.AddSentence(
		annotate.Tok("Kasparov", "Kasparov", "PROPN"),
		annotate.Tok("studied", "study", "VERB"),
		annotate.Tok("chess", "chess", "NOUN"),
		annotate.Tok(".", ".", "PUNCT"),
	)
	b.AddChunk(0, 2).AddChunk(3, 4).AddChunk(5, 6).
		AddChunk(7, 8).AddChunk(9, 11).AddChunk(12, 13).
		AddChunk(14, 16).AddChunk(17, 18).
		AddChunk(19, 20).AddChunk(21, 22)
	return b.Build()
}

func texts(phrases []phrase.Phrase) []string {
	out := make([]string, len(phrases))
	for i, p := range phrases {
		out[i] = p.Text
	}
	return out
}

func TestProcessLinearConstraints(t *testing.T) {
	e := newEngine(t, nil)
	phrases, err := e.Process(loadFixture(t, "linear.yaml"))
	require.NoError(t, err)

	var found *phrase.Phrase
	for i := range phrases {
		if phrases[i].Text == "Linear constraints" {
			found = &phrases[i]
		}
	}
	require.NotNil(t, found, "got %v", texts(phrases))
	assert.Greater(t, found.Rank, 0.0)
	assert.Equal(t, 1, found.Count)

	var sb strings.Builder
	require.NoError(t, e.DescribeGraph(&sb))
	assert.Contains(t, sb.String(), `"linear/ADJ"`)
	assert.Contains(t, sb.String(), "edge 0 1 1.0000")
}

func TestProcessUniqueOrderedDeterministic(t *testing.T) {
	doc := goChessDoc()

	first, err := newEngine(t, nil).Process(doc)
	require.NoError(t, err)
	second, err := newEngine(t, nil).Process(doc)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	seen := make(map[string]bool)
	for i, p := range first {
		assert.False(t, seen[p.Text], "duplicate %q", p.Text)
		seen[p.Text] = true
		if i > 0 {
			assert.GreaterOrEqual(t, first[i-1].Rank, p.Rank)
		}
	}
	assert.Equal(t, "Lee Sedol", first[0].Text)
	assert.Equal(t, 2, first[0].Count)
}

func TestChangeFocus(t *testing.T) {
	e := newEngine(t, func(o *Options) { o.Algorithm = BiasedTextRank })

	uniform, err := e.Process(goChessDoc())
	require.NoError(t, err)
	require.NotEmpty(t, uniform)
	assert.NotContains(t, uniform[0].Text, "chess")

	nodes := e.Stats().Nodes
	focused := e.ChangeFocus("chess", 10, 0)
	require.NotEmpty(t, focused)
	assert.Contains(t, focused[0].Text, "chess")
	assert.Equal(t, nodes, e.Stats().Nodes, "graph is reused")
	assert.Equal(t, "chess", e.Options().Focus)
}

func TestChangeFocusKeptForNextDocument(t *testing.T) {
	e := newEngine(t, func(o *Options) { o.Algorithm = BiasedTextRank })

	_, err := e.Process(goChessDoc())
	require.NoError(t, err)
	e.ChangeFocus("chess", 10, 0)

	again, err := e.Process(goChessDoc())
	require.NoError(t, err)
	require.NotEmpty(t, again)
	assert.Contains(t, again[0].Text, "chess")
	assert.Equal(t, "chess", e.Options().Focus)
}

func TestChangeFocusLeavesOtherAlgorithms(t *testing.T) {
	e := newEngine(t, nil)

	_, err := e.Process(goChessDoc())
	require.NoError(t, err)
	e.ChangeFocus("chess", 10, 0)

	again, err := e.Process(goChessDoc())
	require.NoError(t, err)
	assert.Equal(t, "Lee Sedol", again[0].Text)
}

func TestRerankNilUsesEngineStrategy(t *testing.T) {
	for _, alg := range []Algorithm{TextRank, BiasedTextRank, TopicRank} {
		e := newEngine(t, func(o *Options) { o.Algorithm = alg })
		phrases, err := e.Process(goChessDoc())
		require.NoError(t, err, alg)

		var reranked []phrase.Phrase
		require.NotPanics(t, func() { reranked = e.Rerank(nil) }, alg)
		assert.Equal(t, phrases, reranked, alg)
	}
}

func TestPositionRank(t *testing.T) {
	e := newEngine(t, func(o *Options) { o.Algorithm = PositionRank })
	phrases, err := e.Process(goChessDoc())
	require.NoError(t, err)

	assert.Equal(t, "Lee Sedol", phrases[0].Text)
	assert.True(t, e.Stats().Converged)
}

func TestTopicRank(t *testing.T) {
	e := newEngine(t, func(o *Options) { o.Algorithm = TopicRank })
	phrases, err := e.Process(goChessDoc())
	require.NoError(t, err)

	stats := e.Stats()
	assert.Equal(t, 10, stats.Candidates)
	assert.Equal(t, 5, stats.Clusters, "Go players joins the Go topic")
	assert.Equal(t, stats.Clusters, stats.Nodes)
	assert.Equal(t, 10, stats.Edges, "complete graph over topics")

	var total int
	for _, p := range phrases {
		total += p.Count
	}
	assert.Equal(t, 10, total, "every candidate lands in one topic")
	assert.ElementsMatch(t,
		[]string{"Lee Sedol", "Go", "AlphaGo", "Kasparov", "chess"},
		texts(phrases))
}

func TestEmptyDocument(t *testing.T) {
	for _, alg := range []Algorithm{TextRank, PositionRank, BiasedTextRank, TopicRank} {
		e := newEngine(t, func(o *Options) { o.Algorithm = alg })
		phrases, err := e.Process(annotate.NewBuilder().Build())
		require.NoError(t, err, alg)
		assert.Empty(t, phrases, alg)
		assert.Empty(t, slices.Collect(e.Summary(summarize.DefaultOptions())), alg)
	}
}

func TestProcessInvalidDocument(t *testing.T) {
	doc := annotate.NewBuilder().Build()
	doc.Toks = []annotate.Token{{Index: 0, Text: "a"}}
	doc.Chunks = []annotate.Span{{Start: 0, End: 5}}

	_, err := newEngine(t, nil).Process(doc)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
}

func TestSummary(t *testing.T) {
	e := newEngine(t, nil)
	_, err := e.Process(goChessDoc())
	require.NoError(t, err)

	opts := summarize.DefaultOptions()
	opts.LimitSentences = 2
	opts.PreserveOrder = true
	sents := slices.Collect(e.Summary(opts))

	require.Len(t, sents, 2)
	assert.Less(t, sents[0].ID, sents[1].ID)
	assert.Equal(t, "Lee Sedol played Go against AlphaGo .", sents[0].Text)
}

func TestNoNounChunksLogsWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := newEngine(t, func(o *Options) { o.Logger = zap.New(core) })

	b := annotate.NewBuilder()
	b.AddSentence(annotate.Tok("Kyiv", "Kyiv", "PROPN"), annotate.Tok("grows", "grow", "VERB"))
	b.AddEntity(0, 1, "GPE").WithoutNounChunks()

	phrases, err := e.Process(b.Build())
	require.NoError(t, err)
	assert.Equal(t, []string{"Kyiv"}, texts(phrases))
	assert.Equal(t, 1, logs.FilterMessage("noun chunks unavailable, using entities only").Len())
}

func TestNonConvergenceLogsWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := newEngine(t, func(o *Options) {
		o.MaxIter = 1
		o.Logger = zap.New(core)
	})

	phrases, err := e.Process(goChessDoc())
	require.NoError(t, err)
	assert.NotEmpty(t, phrases)
	assert.False(t, e.Stats().Converged)
	assert.Equal(t, 1, logs.FilterMessage("pagerank did not converge, using last iterate").Len())
}

func TestRanksAndReset(t *testing.T) {
	e := newEngine(t, nil)
	_, err := e.Process(goChessDoc())
	require.NoError(t, err)

	ranks := e.Ranks()
	require.Len(t, ranks, e.Stats().Nodes)
	for i := 1; i < len(ranks); i++ {
		assert.GreaterOrEqual(t, ranks[i-1].Rank, ranks[i].Rank)
	}

	e.Reset()
	assert.Empty(t, e.Phrases())
	assert.Empty(t, e.Ranks())
	assert.Equal(t, Stats{}, e.Stats())
	assert.Nil(t, e.Rerank(nil))
}

func TestDirectedGraph(t *testing.T) {
	e := newEngine(t, func(o *Options) { o.Directed = true })
	phrases, err := e.Process(goChessDoc())
	require.NoError(t, err)
	assert.NotEmpty(t, phrases)

	var sb strings.Builder
	require.NoError(t, e.DescribeGraph(&sb))
	assert.True(t, strings.HasPrefix(sb.String(), "graph directed"))
}

func TestNewValidates(t *testing.T) {
	cases := map[string]func(*Options){
		"lookback":  func(o *Options) { o.TokenLookback = -1 },
		"damping":   func(o *Options) { o.Damping = 1.5 },
		"method":    func(o *Options) { o.Method = "nearest" },
		"algorithm": func(o *Options) { o.Algorithm = "lexrank" },
		"bias":      func(o *Options) { o.Bias = -1 },
	}
	for name, mutate := range cases {
		opts := DefaultOptions()
		mutate(&opts)
		_, err := New(opts)
		assert.True(t, errors.Is(err, internalerr.ErrInvalidConfig), name)
	}

	e, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, e.Options().TokenLookback)
}
