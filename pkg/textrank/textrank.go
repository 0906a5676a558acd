// Package textrank is the keyphrase extraction engine: it builds a
// co-occurrence graph from an annotated document, ranks its nodes with
// PageRank and turns the ranks into keyphrases and extractive summaries.
//
// An Engine holds the state of one document at a time and is not safe for
// concurrent use; create one engine per goroutine.
package textrank

import (
	"fmt"
	"io"
	"iter"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/textrank/pkg/textrank/annotate"
	"github.com/cognicore/textrank/pkg/textrank/graph"
	"github.com/cognicore/textrank/pkg/textrank/internalerr"
	"github.com/cognicore/textrank/pkg/textrank/pagerank"
	"github.com/cognicore/textrank/pkg/textrank/personalize"
	"github.com/cognicore/textrank/pkg/textrank/phrase"
	"github.com/cognicore/textrank/pkg/textrank/stopwords"
	"github.com/cognicore/textrank/pkg/textrank/summarize"
	"github.com/cognicore/textrank/pkg/textrank/topic"
)

// Algorithm selects the ranking variant
type Algorithm string

const (
	TextRank       Algorithm = personalize.NameBase
	PositionRank   Algorithm = personalize.NamePosition
	BiasedTextRank Algorithm = personalize.NameBiased
	TopicRank      Algorithm = personalize.NameTopic
)

// Options configures an Engine. Start from DefaultOptions; zero values
// that would be invalid (lookback, damping, iteration bounds) fall back to
// the defaults.
type Options struct {
	Algorithm     Algorithm
	EdgeWeight    float64
	POSKept       []string
	TokenLookback int
	Scrubber      phrase.Scrubber
	Stopwords     *stopwords.Table
	Directed      bool

	// TopicRank clustering
	Threshold float64
	Method    string

	// BiasedTextRank restart weights
	Focus       string
	Bias        float64
	DefaultBias float64

	Damping   float64
	MaxIter   int
	Tolerance float64

	ExcludeEntityLabels []string

	Logger *zap.Logger
}

// DefaultOptions returns the standard TextRank configuration
func DefaultOptions() Options {
	return Options{
		Algorithm:           TextRank,
		EdgeWeight:          1.0,
		POSKept:             []string{"ADJ", "NOUN", "PROPN", "VERB"},
		TokenLookback:       3,
		Scrubber:            phrase.DefaultScrubber,
		Threshold:           topic.DefaultThreshold,
		Method:              topic.DefaultMethod,
		Bias:                1.0,
		DefaultBias:         1.0,
		Damping:             pagerank.DefaultDamping,
		MaxIter:             pagerank.DefaultMaxIter,
		Tolerance:           pagerank.DefaultTolerance,
		ExcludeEntityLabels: []string{"CARDINAL"},
	}
}

// Stats describes the last processed document
type Stats struct {
	Nodes      int
	Edges      int
	Candidates int
	Clusters   int
	Iterations int
	Converged  bool
	Elapsed    time.Duration
}

// NodeRank is the rank of one graph node
type NodeRank struct {
	Label string
	Rank  float64
}

// Engine extracts keyphrases from one document at a time
type Engine struct {
	opts      Options
	log       *zap.Logger
	filter    graph.Filter
	builder   *graph.Builder
	ranker    *pagerank.Ranker
	strategy  personalize.Strategy
	clusterer *topic.Clusterer
	agg       *phrase.Aggregator
	exclude   map[string]struct{}

	// per-document state, cleared by Reset
	doc        annotate.Annotated
	lemmas     *graph.LemmaGraph
	topicGraph *graph.Graph
	clusters   []topic.Cluster
	spans      []annotate.Span
	result     pagerank.Result
	phrases    []phrase.Phrase
	buildTime  time.Duration
	rankTime   time.Duration
}

// New validates opts and creates an engine
func New(opts Options) (*Engine, error) {
	def := DefaultOptions()
	if opts.Algorithm == "" {
		opts.Algorithm = def.Algorithm
	}
	if opts.POSKept == nil {
		opts.POSKept = def.POSKept
	}
	if opts.EdgeWeight == 0 {
		opts.EdgeWeight = def.EdgeWeight
	}
	if opts.TokenLookback == 0 {
		opts.TokenLookback = def.TokenLookback
	}
	if opts.Method == "" {
		opts.Method = def.Method
	}
	if opts.Damping == 0 {
		opts.Damping = def.Damping
	}
	if opts.MaxIter == 0 {
		opts.MaxIter = def.MaxIter
	}
	if opts.Tolerance == 0 {
		opts.Tolerance = def.Tolerance
	}
	if opts.Scrubber == nil {
		opts.Scrubber = phrase.DefaultScrubber
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	if err := validate(opts); err != nil {
		return nil, err
	}

	strategy, err := personalize.ForAlgorithm(string(opts.Algorithm), opts.Focus, opts.Bias, opts.DefaultBias)
	if err != nil {
		return nil, err
	}

	filter := graph.NewFilter(opts.POSKept, opts.Stopwords)
	exclude := make(map[string]struct{}, len(opts.ExcludeEntityLabels))
	for _, l := range opts.ExcludeEntityLabels {
		exclude[l] = struct{}{}
	}

	return &Engine{
		opts:   opts,
		log:    opts.Logger,
		filter: filter,
		builder: &graph.Builder{
			Filter:     filter,
			Lookback:   opts.TokenLookback,
			EdgeWeight: opts.EdgeWeight,
			Directed:   opts.Directed,
		},
		ranker: &pagerank.Ranker{
			Damping:   opts.Damping,
			MaxIter:   opts.MaxIter,
			Tolerance: opts.Tolerance,
		},
		strategy: strategy,
		clusterer: &topic.Clusterer{
			Threshold: opts.Threshold,
			Method:    opts.Method,
			Stopwords: opts.Stopwords,
		},
		agg:     &phrase.Aggregator{Filter: filter, Scrubber: opts.Scrubber},
		exclude: exclude,
	}, nil
}

func validate(opts Options) error {
	switch {
	case opts.TokenLookback < 1:
		return fmt.Errorf("token lookback %d must be at least 1: %w", opts.TokenLookback, internalerr.ErrInvalidConfig)
	case opts.EdgeWeight < 0:
		return fmt.Errorf("edge weight %g must not be negative: %w", opts.EdgeWeight, internalerr.ErrInvalidConfig)
	case opts.Damping <= 0 || opts.Damping >= 1:
		return fmt.Errorf("damping %g must be in (0, 1): %w", opts.Damping, internalerr.ErrInvalidConfig)
	case opts.MaxIter < 1:
		return fmt.Errorf("max iterations %d must be at least 1: %w", opts.MaxIter, internalerr.ErrInvalidConfig)
	case opts.Tolerance < 0:
		return fmt.Errorf("tolerance %g must not be negative: %w", opts.Tolerance, internalerr.ErrInvalidConfig)
	case opts.Bias < 0 || opts.DefaultBias < 0:
		return fmt.Errorf("bias weights must not be negative: %w", internalerr.ErrInvalidConfig)
	case !topic.ValidMethod(opts.Method):
		return fmt.Errorf("clustering method %q: %w", opts.Method, internalerr.ErrInvalidConfig)
	}
	return nil
}

// Options returns the effective configuration
func (e *Engine) Options() Options {
	return e.opts
}

// Process ranks doc from scratch and returns its phrases, best first.
func (e *Engine) Process(doc annotate.Annotated) ([]phrase.Phrase, error) {
	if err := e.BuildGraph(doc); err != nil {
		return nil, err
	}
	return e.Rerank(e.strategy), nil
}

// BuildGraph resets the engine and builds the graph of doc. Ranking is left
// to Rerank, which can then run any number of times against it.
func (e *Engine) BuildGraph(doc annotate.Annotated) error {
	e.Reset()

	if v, ok := doc.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("process document: %w", err)
		}
	}

	start := time.Now()
	e.doc = doc

	if e.opts.Algorithm == TopicRank {
		clusters, err := e.topicClusters()
		if err != nil {
			return err
		}
		e.topicGraph = topic.Graph(clusters, e.opts.EdgeWeight)
		e.buildTime = time.Since(start)
		e.log.Debug("topic graph built",
			zap.Int("candidates", len(e.spans)),
			zap.Int("clusters", len(clusters)),
			zap.Int("edges", e.topicGraph.EdgeCount()))
		return nil
	}

	e.lemmas = e.builder.Build(doc)

	spans, err := phrase.Candidates(doc, e.exclude)
	if err != nil {
		e.log.Warn("noun chunks unavailable, using entities only", zap.Error(err))
	}
	e.spans = spans

	e.buildTime = time.Since(start)
	e.log.Debug("lemma graph built",
		zap.Int("nodes", e.lemmas.Len()),
		zap.Int("edges", e.lemmas.EdgeCount()),
		zap.Int("candidates", len(spans)))
	return nil
}

// topicClusters clusters the topic candidates once per document
func (e *Engine) topicClusters() ([]topic.Cluster, error) {
	if e.clusters != nil {
		return e.clusters, nil
	}

	cands, err := topic.Candidates(e.doc, e.filter)
	if err != nil {
		e.log.Warn("noun chunks unavailable, no topic candidates", zap.Error(err))
	}
	e.spans = cands

	clusters, err := e.clusterer.Cluster(e.doc, cands)
	if err != nil {
		return nil, err
	}
	if clusters == nil {
		clusters = []topic.Cluster{}
	}
	e.clusters = clusters
	return clusters, nil
}

// Rerank ranks the current graph with the given personalization and
// rebuilds the phrase list. A nil strategy uses the engine's own. It
// returns nil when no document was built.
func (e *Engine) Rerank(s personalize.Strategy) []phrase.Phrase {
	if e.doc == nil {
		return nil
	}
	if s == nil {
		s = e.strategy
	}
	start := time.Now()

	if e.topicGraph != nil {
		e.result = e.ranker.Rank(e.topicGraph, nil)
		e.phrases = topic.Phrases(e.clusters, e.result.Ranks, e.opts.Scrubber)
	} else {
		restart := s.Personalize(personalize.Context{Doc: e.doc, Graph: e.lemmas, Filter: e.filter})
		e.result = e.ranker.Rank(e.lemmas, restart)
		e.phrases = e.agg.Aggregate(e.doc, e.spans, phrase.RankLookup(e.lemmas, e.result.Ranks))
	}
	if e.phrases == nil {
		e.phrases = []phrase.Phrase{}
	}

	e.rankTime = time.Since(start)
	if !e.result.Converged {
		e.log.Warn("pagerank did not converge, using last iterate",
			zap.Int("iterations", e.result.Iterations),
			zap.String("strategy", s.Name()))
	}
	e.log.Debug("ranked",
		zap.String("strategy", s.Name()),
		zap.Int("iterations", e.result.Iterations),
		zap.Int("phrases", len(e.phrases)))

	return e.phrases
}

// ChangeFocus reranks the current graph towards the words of focus without
// rebuilding it. A BiasedTextRank engine keeps the new focus for later
// documents.
func (e *Engine) ChangeFocus(focus string, bias, defaultBias float64) []phrase.Phrase {
	e.opts.Focus, e.opts.Bias, e.opts.DefaultBias = focus, bias, defaultBias
	biased := personalize.Biased{Focus: focus, Bias: bias, DefaultBias: defaultBias}
	if e.opts.Algorithm == BiasedTextRank {
		e.strategy = biased
	}
	return e.Rerank(biased)
}

// Phrases returns the phrases of the last ranking
func (e *Engine) Phrases() []phrase.Phrase {
	return e.phrases
}

// Ranks lists every graph node with its rank, best first.
func (e *Engine) Ranks() []NodeRank {
	g := e.currentGraph()
	out := make([]NodeRank, 0, g.Len())
	for i := 0; i < g.Len() && i < len(e.result.Ranks); i++ {
		out = append(out, NodeRank{Label: g.Label(i), Rank: e.result.Ranks[i]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank > out[j].Rank
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Summary returns the extractive summary of the current document. See
// summarize.Summarize for the single-pass semantics of the sequence.
func (e *Engine) Summary(opts summarize.Options) iter.Seq[summarize.Sentence] {
	if e.doc == nil {
		return func(func(summarize.Sentence) bool) {}
	}
	return summarize.Summarize(e.doc, e.phrases, opts)
}

// DescribeGraph writes a node/edge listing of the current graph with ranks.
func (e *Engine) DescribeGraph(w io.Writer) error {
	return e.currentGraph().Describe(w, e.result.Ranks)
}

// Stats reports sizes and timings of the last run
func (e *Engine) Stats() Stats {
	g := e.currentGraph()
	return Stats{
		Nodes:      g.Len(),
		Edges:      g.EdgeCount(),
		Candidates: len(e.spans),
		Clusters:   len(e.clusters),
		Iterations: e.result.Iterations,
		Converged:  e.result.Converged,
		Elapsed:    e.buildTime + e.rankTime,
	}
}

// Reset drops all per-document state
func (e *Engine) Reset() {
	e.doc = nil
	e.lemmas = nil
	e.topicGraph = nil
	e.clusters = nil
	e.spans = nil
	e.result = pagerank.Result{}
	e.phrases = nil
	e.buildTime = 0
	e.rankTime = 0
}

func (e *Engine) currentGraph() *graph.Graph {
	switch {
	case e.topicGraph != nil:
		return e.topicGraph
	case e.lemmas != nil:
		return e.lemmas.Graph
	default:
		return graph.New(e.opts.Directed)
	}
}
