// Package anomaly implements an isolation-forest outlier detector over the
// per-site normalized score vectors. Scoring is deterministic for a fixed
// seed and input matrix: trees are built sequentially from a single seeded
// random source.
package anomaly

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/bitmark-inc/georisk-api/schema"
)

const (
	DefaultTrees         = 200
	DefaultContamination = 0.10
	DefaultSeed          = 42
	DefaultSampleSize    = 256

	eulerMascheroni = 0.5772156649015329
)

// Options are the exposed detector parameters.
type Options struct {
	// Trees is the ensemble size.
	Trees int
	// Contamination is the expected fraction of outliers, used to derive
	// the binary flag from the continuous score.
	Contamination float64
	// Seed fixes the random source for reproducible output.
	Seed int64
	// SampleSize caps the per-tree subsample.
	SampleSize int
}

func DefaultOptions() Options {
	return Options{
		Trees:         DefaultTrees,
		Contamination: DefaultContamination,
		Seed:          DefaultSeed,
		SampleSize:    DefaultSampleSize,
	}
}

// Result carries one continuous anomaly score and one flag per input row.
// Lower scores are more anomalous; the bottom contamination fraction of
// rows is flagged.
type Result struct {
	Scores []float64
	Flags  []bool
}

type Detector struct {
	opts Options
}

func NewDetector(opts Options) (*Detector, error) {
	if opts.Trees <= 0 {
		return nil, &schema.ConfigurationError{Reason: fmt.Sprintf("ensemble size must be positive, got %d", opts.Trees)}
	}
	if opts.Contamination <= 0 || opts.Contamination > 0.5 {
		return nil, &schema.ConfigurationError{Reason: fmt.Sprintf("contamination must be in (0, 0.5], got %f", opts.Contamination)}
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultSampleSize
	}
	return &Detector{opts: opts}, nil
}

type treeNode struct {
	left, right  *treeNode
	splitFeature int
	splitValue   float64
	size         int
}

func (n *treeNode) external() bool {
	return n.left == nil
}

// Fit builds the ensemble over the given matrix and scores every row.
// Rows must share one width; non-finite cells count as 0.
func (d *Detector) Fit(matrix [][]float64) (*Result, error) {
	n := len(matrix)
	result := &Result{
		Scores: make([]float64, n),
		Flags:  make([]bool, n),
	}
	if n == 0 {
		return result, nil
	}

	width := len(matrix[0])
	rows := make([][]float64, n)
	for i, row := range matrix {
		if len(row) != width {
			return nil, fmt.Errorf("ragged score matrix: row %d has %d features, want %d", i, len(row), width)
		}
		clean := make([]float64, width)
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = 0
			}
			clean[j] = v
		}
		rows[i] = clean
	}

	if n < 2 {
		return result, nil
	}

	sample := d.opts.SampleSize
	if sample > n {
		sample = n
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sample))))
	rng := rand.New(rand.NewSource(d.opts.Seed))

	trees := make([]*treeNode, d.opts.Trees)
	for t := range trees {
		perm := rng.Perm(n)[:sample]
		subset := make([][]float64, sample)
		for i, idx := range perm {
			subset[i] = rows[idx]
		}
		trees[t] = buildTree(rng, subset, 0, maxDepth)
	}

	norm := averagePathLength(sample)
	for i, row := range rows {
		var total float64
		for _, tree := range trees {
			total += pathLength(tree, row, 0)
		}
		mean := total / float64(len(trees))
		// in (0,1], higher means easier to isolate
		isolation := math.Pow(2, -mean/norm)
		// shift so that lower = more anomalous
		result.Scores[i] = 0.5 - isolation
	}

	flagBottom(result, d.opts.Contamination)
	return result, nil
}

func buildTree(rng *rand.Rand, rows [][]float64, depth, maxDepth int) *treeNode {
	node := &treeNode{size: len(rows)}
	if len(rows) <= 1 || depth >= maxDepth {
		return node
	}

	width := len(rows[0])
	feature, lo, hi := -1, 0.0, 0.0
	// pick a random feature with spread, starting from a random offset
	offset := rng.Intn(width)
	for k := 0; k < width; k++ {
		f := (offset + k) % width
		fLo, fHi := rows[0][f], rows[0][f]
		for _, row := range rows[1:] {
			if row[f] < fLo {
				fLo = row[f]
			}
			if row[f] > fHi {
				fHi = row[f]
			}
		}
		if fHi > fLo {
			feature, lo, hi = f, fLo, fHi
			break
		}
	}
	if feature < 0 {
		// all rows identical across every feature
		return node
	}

	split := lo + rng.Float64()*(hi-lo)

	var left, right [][]float64
	for _, row := range rows {
		if row[feature] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return node
	}

	node.splitFeature = feature
	node.splitValue = split
	node.left = buildTree(rng, left, depth+1, maxDepth)
	node.right = buildTree(rng, right, depth+1, maxDepth)
	return node
}

func pathLength(node *treeNode, row []float64, depth int) float64 {
	if node.external() {
		return float64(depth) + averagePathLength(node.size)
	}
	if row[node.splitFeature] < node.splitValue {
		return pathLength(node.left, row, depth+1)
	}
	return pathLength(node.right, row, depth+1)
}

// averagePathLength is the expected path length of an unsuccessful BST
// search over n points, the standard isolation-forest normalizer.
func averagePathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n == 2 {
		return 1
	}
	h := math.Log(float64(n-1)) + eulerMascheroni
	return 2*h - 2*float64(n-1)/float64(n)
}

// flagBottom marks the bottom contamination fraction of scores, breaking
// score ties by row order so reruns flag the same rows.
func flagBottom(result *Result, contamination float64) {
	n := len(result.Scores)
	k := int(contamination*float64(n) + 0.5)
	if k <= 0 {
		return
	}
	if k > n {
		k = n
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return result.Scores[order[a]] < result.Scores[order[b]]
	})
	for _, idx := range order[:k] {
		result.Flags[idx] = true
	}
}
