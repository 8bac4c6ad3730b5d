package anomaly

import (
	"errors"
	"math"
	"math/rand/v2"
	"sort"
)

// ForestOptions configures an isolation forest.
type ForestOptions struct {
	// Trees is the ensemble size. Defaults to 100.
	Trees int
	// MaxSamples caps the bootstrap sample drawn for each tree. Defaults to 256
	// and is further capped by the number of training rows.
	MaxSamples int
	// Seed drives every random choice; the same seed and data give the same scores.
	Seed uint64
}

// Forest isolates points with random axis-aligned splits. Points that need
// fewer splits to isolate are more anomalous.
//
// A Forest owns its random source and is meant to be built, fitted and
// discarded within one request. It is not safe for concurrent use.
type Forest struct {
	opts        ForestOptions
	rng         *rand.Rand
	trees       []*iNode
	sampleSize  int
	heightLimit int
}

type iNode struct {
	leaf     bool
	size     int
	dim      int
	splitVal float64
	left     *iNode
	right    *iNode
}

// ErrNoData is returned by Fit when there is nothing to train on.
var ErrNoData = errors.New("anomaly: no training data")

// NewForest returns an unfitted forest.
func NewForest(opts ForestOptions) *Forest {
	if opts.Trees <= 0 {
		opts.Trees = 100
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = 256
	}
	return &Forest{
		opts: opts,
		rng:  rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
	}
}

// Fit grows the ensemble on X. Each tree sees a bootstrap sample (drawn with
// replacement) of min(MaxSamples, len(X)) rows and stops growing at
// ceil(log2(sampleSize)).
func (f *Forest) Fit(X [][]float64) error {
	n := len(X)
	if n == 0 {
		return ErrNoData
	}
	f.sampleSize = min(f.opts.MaxSamples, n)
	f.heightLimit = int(math.Ceil(math.Log2(float64(max(f.sampleSize, 2)))))
	f.trees = make([]*iNode, f.opts.Trees)

	sample := make([][]float64, f.sampleSize)
	for i := range f.trees {
		for j := range sample {
			sample[j] = X[f.rng.IntN(n)]
		}
		// buildTree partitions its input, so each tree gets its own copy
		f.trees[i] = f.buildTree(append([][]float64(nil), sample...), 0)
	}
	return nil
}

func (f *Forest) buildTree(X [][]float64, depth int) *iNode {
	if len(X) <= 1 || depth >= f.heightLimit {
		return &iNode{leaf: true, size: len(X)}
	}

	// only dimensions that still vary can split this node
	var candidates []int
	for dim := range X[0] {
		lo, hi := columnRange(X, dim)
		if lo < hi {
			candidates = append(candidates, dim)
		}
	}
	if len(candidates) == 0 {
		return &iNode{leaf: true, size: len(X)}
	}

	dim := candidates[f.rng.IntN(len(candidates))]
	lo, hi := columnRange(X, dim)
	split := lo + f.rng.Float64()*(hi-lo)

	// partition in place: [0,k) goes left
	k := 0
	for i := range X {
		if X[i][dim] < split {
			X[i], X[k] = X[k], X[i]
			k++
		}
	}
	if k == 0 || k == len(X) {
		return &iNode{leaf: true, size: len(X)}
	}
	return &iNode{
		dim:      dim,
		splitVal: split,
		left:     f.buildTree(X[:k], depth+1),
		right:    f.buildTree(X[k:], depth+1),
	}
}

func columnRange(X [][]float64, dim int) (lo, hi float64) {
	lo, hi = X[0][dim], X[0][dim]
	for _, row := range X[1:] {
		v := row[dim]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// averagePathLength is c(n), the mean depth of an unsuccessful search in a
// binary search tree of n nodes. It normalizes path lengths.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	const eulerGamma = 0.5772156649015329
	fn := float64(n)
	return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
}

func pathLength(node *iNode, x []float64, depth int) float64 {
	for !node.leaf {
		if x[node.dim] < node.splitVal {
			node = node.left
		} else {
			node = node.right
		}
		depth++
	}
	return float64(depth) + averagePathLength(node.size)
}

// ScoreSamples returns, for each row, the negated anomaly score
// -2^(-E[h(x)]/c(sampleSize)). Scores lie in [-1, 0]; the more negative, the
// more anomalous. An unfitted forest scores everything 0.
func (f *Forest) ScoreSamples(X [][]float64) []float64 {
	scores := make([]float64, len(X))
	if len(f.trees) == 0 {
		return scores
	}
	norm := averagePathLength(f.sampleSize)
	if norm <= 0 {
		norm = 1
	}
	for i, x := range X {
		var sum float64
		for _, t := range f.trees {
			sum += pathLength(t, x, 0)
		}
		mean := sum / float64(len(f.trees))
		scores[i] = -math.Pow(2, -mean/norm)
	}
	return scores
}

// Offset is the decision boundary for a contamination prior: the
// contamination-quantile of the training scores, linearly interpolated.
func Offset(scores []float64, contamination float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)

	pos := contamination * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Predict marks every score strictly below the contamination offset as an
// outlier.
func Predict(scores []float64, contamination float64) []bool {
	offset := Offset(scores, contamination)
	out := make([]bool, len(scores))
	for i, s := range scores {
		out[i] = s < offset
	}
	return out
}
