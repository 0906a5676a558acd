package topic

import (
	"fmt"
	"math"

	"github.com/cognicore/textrank/pkg/textrank/annotate"
	"github.com/cognicore/textrank/pkg/textrank/internalerr"
	"github.com/cognicore/textrank/pkg/textrank/stopwords"
)

// Linkage methods
const (
	Single   = "single"
	Complete = "complete"
	Average  = "average"
	Weighted = "weighted"
	Centroid = "centroid"
	Median   = "median"
	Ward     = "ward"
)

const (
	DefaultThreshold = 0.25
	DefaultMethod    = Average
)

// ValidMethod reports whether name is a supported linkage method
func ValidMethod(name string) bool {
	switch name {
	case Single, Complete, Average, Weighted, Centroid, Median, Ward:
		return true
	}
	return false
}

// Cluster is a group of candidate spans ordered by start
type Cluster []annotate.Span

// First returns the earliest-starting member.
func (c Cluster) First() annotate.Span {
	first := c[0]
	for _, s := range c[1:] {
		if s.Start < first.Start {
			first = s
		}
	}
	return first
}

// Clusterer groups candidates by hierarchical agglomerative clustering
// over Jaccard distances of their bag-of-words vectors.
type Clusterer struct {
	Threshold float64 // minimum word overlap for two candidates to share a cluster
	Method    string
	Stopwords *stopwords.Table
}

// Cluster partitions cands. The dendrogram is cut at distance
// 0.99 - Threshold. Clusters are ordered by their earliest member.
func (c *Clusterer) Cluster(ts annotate.TokenStream, cands []annotate.Span) ([]Cluster, error) {
	method := c.Method
	if method == "" {
		method = DefaultMethod
	}
	if !ValidMethod(method) {
		return nil, fmt.Errorf("linkage method %q: %w", method, internalerr.ErrInvalidConfig)
	}

	switch len(cands) {
	case 0:
		return nil, nil
	case 1:
		return []Cluster{{cands[0]}}, nil
	}

	vectors := c.vectors(ts, cands)
	n := len(vectors)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := jaccardDistance(vectors[i], vectors[j])
			dist[i][j], dist[j][i] = d, d
		}
	}

	labels := cut(linkage(dist, method), n, 0.99-c.Threshold)

	var clusters []Cluster
	slot := make(map[int]int)
	for i, l := range labels {
		k, ok := slot[l]
		if !ok {
			k = len(clusters)
			slot[l] = k
			clusters = append(clusters, nil)
		}
		clusters[k] = append(clusters[k], cands[i])
	}
	return clusters, nil
}

// vectors builds sparse word-count vectors over the non-stop surface words
func (c *Clusterer) vectors(ts annotate.TokenStream, cands []annotate.Span) []map[int]int {
	toks := ts.Tokens()
	vocab := make(map[string]int)
	out := make([]map[int]int, len(cands))

	for k, span := range cands {
		vec := make(map[int]int)
		for i := span.Start; i < span.End && i < len(toks); i++ {
			tok := toks[i]
			if tok.IsStop || c.Stopwords.IsStop(tok.Lemma, tok.POS) {
				continue
			}
			id, ok := vocab[tok.Text]
			if !ok {
				id = len(vocab)
				vocab[tok.Text] = id
			}
			vec[id]++
		}
		out[k] = vec
	}
	return out
}

// jaccardDistance compares count vectors: the share of dimensions where
// either is non-zero and the two differ. Two empty vectors are at distance 0.
func jaccardDistance(a, b map[int]int) float64 {
	nonzero, unequal := 0, 0
	for k, x := range a {
		nonzero++
		if b[k] != x {
			unequal++
		}
	}
	for k := range b {
		if _, ok := a[k]; ok {
			continue
		}
		nonzero++
		unequal++
	}

	if nonzero == 0 {
		return 0
	}
	return float64(unequal) / float64(nonzero)
}

type merge struct {
	a, b   int // cluster ids; ids >= n refer to earlier merges
	height float64
	size   int
}

// linkage runs agglomerative clustering on a square distance matrix, which
// it overwrites. Distances to a merged cluster follow the Lance-Williams
// update for the chosen method.
func linkage(dist [][]float64, method string) []merge {
	n := len(dist)
	id := make([]int, n)
	size := make([]int, n)
	active := make([]bool, n)
	for i := range id {
		id[i], size[i], active[i] = i, 1, true
	}

	merges := make([]merge, 0, n-1)
	for k := 0; k < n-1; k++ {
		x, y := -1, -1
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if active[j] && dist[i][j] < best {
					best, x, y = dist[i][j], i, j
				}
			}
		}

		merges = append(merges, merge{a: id[x], b: id[y], height: best, size: size[x] + size[y]})

		for m := 0; m < n; m++ {
			if !active[m] || m == x || m == y {
				continue
			}
			d := update(method, dist[x][m], dist[y][m], best, float64(size[x]), float64(size[y]), float64(size[m]))
			dist[x][m], dist[m][x] = d, d
		}

		active[y] = false
		size[x] += size[y]
		id[x] = n + k
	}
	return merges
}

// update is the distance from the union of x and y to another cluster i
func update(method string, dxi, dyi, dxy, sx, sy, si float64) float64 {
	switch method {
	case Single:
		return math.Min(dxi, dyi)
	case Complete:
		return math.Max(dxi, dyi)
	case Average:
		return (sx*dxi + sy*dyi) / (sx + sy)
	case Weighted:
		return (dxi + dyi) / 2
	case Centroid:
		return safeSqrt((sx*dxi*dxi + sy*dyi*dyi - sx*sy*dxy*dxy/(sx+sy)) / (sx + sy))
	case Median:
		return safeSqrt(0.5*dxi*dxi + 0.5*dyi*dyi - 0.25*dxy*dxy)
	case Ward:
		return safeSqrt(((sx+si)*dxi*dxi + (sy+si)*dyi*dyi - si*dxy*dxy) / (sx + sy + si))
	}
	return math.Max(dxi, dyi)
}

func safeSqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}

// cut returns a flat cluster label per observation: each subtree whose
// largest merge height is at most t becomes one cluster.
func cut(merges []merge, n int, t float64) []int {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	leaf := make([]int, n+len(merges))
	maxHeight := make([]float64, n+len(merges))
	for i := 0; i < n; i++ {
		leaf[i] = i
	}

	for k, m := range merges {
		node := n + k
		leaf[node] = leaf[m.a]
		maxHeight[node] = math.Max(m.height, math.Max(maxHeight[m.a], maxHeight[m.b]))
		if maxHeight[node] <= t {
			ra, rb := find(leaf[m.a]), find(leaf[m.b])
			if ra != rb {
				parent[rb] = ra
			}
		}
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = find(i)
	}
	return labels
}
