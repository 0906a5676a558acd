// Package pagerank runs personalized PageRank over a weighted graph.
package pagerank

import (
	"math"

	"github.com/cognicore/textrank/pkg/textrank/graph"
)

// Defaults used by New
const (
	DefaultDamping   = 0.85
	DefaultMaxIter   = 100
	DefaultTolerance = 1e-6
)

// Graph is the view of a graph the ranker needs
type Graph interface {
	Len() int
	Neighbors(i int) []graph.Edge
}

// Ranker holds power iteration parameters
type Ranker struct {
	Damping   float64
	MaxIter   int
	Tolerance float64 // stop once the L1 change between iterates drops below this
}

// Result is the outcome of one ranking run
type Result struct {
	Ranks      []float64
	Iterations int
	Converged  bool
}

// New returns a ranker with the default parameters
func New() *Ranker {
	return &Ranker{
		Damping:   DefaultDamping,
		MaxIter:   DefaultMaxIter,
		Tolerance: DefaultTolerance,
	}
}

// Rank computes stationary scores for every node of g. personalization is
// the restart distribution; nil or all-zero means uniform, and it is
// normalized here so callers may pass raw weights. Missing trailing entries
// count as 0. Mass sitting on nodes without out-edges is redistributed by
// the same distribution.
//
// When MaxIter is reached before convergence the last iterate is returned
// with Converged false.
func (r *Ranker) Rank(g Graph, personalization []float64) Result {
	n := g.Len()
	if n == 0 {
		return Result{Ranks: []float64{}, Converged: true}
	}

	restart := restartVector(n, personalization)

	outWeight := make([]float64, n)
	for u := 0; u < n; u++ {
		for _, e := range g.Neighbors(u) {
			outWeight[u] += e.Weight
		}
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = 1.0 / float64(n)
	}

	res := Result{}
	for iter := 1; iter <= r.MaxIter; iter++ {
		next := make([]float64, n)

		dangling := 0.0
		for u := 0; u < n; u++ {
			if outWeight[u] == 0 {
				dangling += x[u]
				continue
			}
			share := r.Damping * x[u] / outWeight[u]
			for _, e := range g.Neighbors(u) {
				next[e.To] += share * e.Weight
			}
		}

		for i := range next {
			next[i] += (r.Damping*dangling + 1 - r.Damping) * restart[i]
		}

		delta := 0.0
		for i := range next {
			delta += math.Abs(next[i] - x[i])
		}

		x = next
		res.Iterations = iter
		if delta < r.Tolerance {
			res.Converged = true
			break
		}
	}

	res.Ranks = x
	return res
}

func restartVector(n int, personalization []float64) []float64 {
	v := make([]float64, n)
	total := 0.0
	for i := 0; i < n && i < len(personalization); i++ {
		if personalization[i] > 0 {
			v[i] = personalization[i]
			total += v[i]
		}
	}

	if total == 0 {
		for i := range v {
			v[i] = 1.0 / float64(n)
		}
		return v
	}

	for i := range v {
		v[i] /= total
	}
	return v
}
