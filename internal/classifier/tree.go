package classifier

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"gocredible/domain/core"
)

// DecisionTree is a CART classifier using Gini impurity
type DecisionTree struct {
	MaxDepth        int
	MinSamplesSplit int

	root     *node
	features int
}

type node struct {
	leaf      bool
	class     int
	feature   int
	threshold float64
	left      *node
	right     *node
}

// NewDecisionTree creates an unfitted tree. maxDepth <= 0 means unlimited.
func NewDecisionTree(maxDepth, minSamplesSplit int) *DecisionTree {
	if minSamplesSplit < 2 {
		minSamplesSplit = 2
	}
	return &DecisionTree{MaxDepth: maxDepth, MinSamplesSplit: minSamplesSplit}
}

// Fit grows the tree on rows of X with labels y
func (t *DecisionTree) Fit(X *mat.Dense, y []int) error {
	if X == nil || len(y) == 0 {
		return core.ErrEmptyDataset
	}
	rows, cols := X.Dims()
	if rows != len(y) {
		return core.NewLengthMismatchError("labels", rows, len(y))
	}
	if t.MinSamplesSplit < 2 {
		t.MinSamplesSplit = 2
	}

	idx := make([]int, rows)
	for i := range idx {
		idx[i] = i
	}
	t.features = cols
	t.root = t.grow(X, y, idx, 0)
	return nil
}

// Predict returns one class per row of X
func (t *DecisionTree) Predict(X *mat.Dense) ([]int, error) {
	if t.root == nil {
		return nil, core.ErrNotFitted
	}
	rows, cols := X.Dims()
	if cols != t.features {
		return nil, fmt.Errorf("%w: fitted on %d, got %d", core.ErrFeatureMismatch, t.features, cols)
	}
	out := make([]int, rows)
	for i := 0; i < rows; i++ {
		row := X.RawRowView(i)
		n := t.root
		for !n.leaf {
			if row[n.feature] <= n.threshold {
				n = n.left
			} else {
				n = n.right
			}
		}
		out[i] = n.class
	}
	return out, nil
}

// Depth returns the depth of the fitted tree
func (t *DecisionTree) Depth() int {
	return depth(t.root)
}

func depth(n *node) int {
	if n == nil || n.leaf {
		return 0
	}
	return 1 + max(depth(n.left), depth(n.right))
}

func (t *DecisionTree) grow(X *mat.Dense, y []int, idx []int, level int) *node {
	counts := classCounts(y, idx)
	majority := majorityClass(counts)

	if len(counts) == 1 || len(idx) < t.MinSamplesSplit || (t.MaxDepth > 0 && level >= t.MaxDepth) {
		return &node{leaf: true, class: majority}
	}

	feature, threshold, ok := bestSplit(X, y, idx, counts)
	if !ok {
		return &node{leaf: true, class: majority}
	}

	var left, right []int
	for _, i := range idx {
		if X.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &node{
		feature:   feature,
		threshold: threshold,
		left:      t.grow(X, y, left, level+1),
		right:     t.grow(X, y, right, level+1),
	}
}

// bestSplit scans every feature for the threshold with the lowest weighted
// Gini impurity. Thresholds sit halfway between adjacent distinct values.
func bestSplit(X *mat.Dense, y []int, idx []int, parent map[int]int) (int, float64, bool) {
	_, cols := X.Dims()
	n := len(idx)
	bestScore := gini(parent, n)
	bestFeature, bestThreshold, found := -1, 0.0, false

	sorted := make([]int, n)
	for f := 0; f < cols; f++ {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool { return X.At(sorted[a], f) < X.At(sorted[b], f) })

		left := make(map[int]int, len(parent))
		right := make(map[int]int, len(parent))
		for k, v := range parent {
			right[k] = v
		}

		for i := 0; i < n-1; i++ {
			c := y[sorted[i]]
			left[c]++
			right[c]--

			cur, next := X.At(sorted[i], f), X.At(sorted[i+1], f)
			if cur == next {
				continue
			}
			nl, nr := i+1, n-i-1
			score := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(n)
			if score < bestScore-1e-12 {
				bestScore = score
				bestFeature = f
				bestThreshold = (cur + next) / 2
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func gini(counts map[int]int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum += p * p
	}
	return 1 - sum
}

func classCounts(y []int, idx []int) map[int]int {
	counts := make(map[int]int)
	for _, i := range idx {
		counts[y[i]]++
	}
	return counts
}

// majorityClass breaks ties toward the smallest label so fits are deterministic
func majorityClass(counts map[int]int) int {
	best, bestCount := 0, -1
	for c, n := range counts {
		if n > bestCount || (n == bestCount && c < best) {
			best, bestCount = c, n
		}
	}
	return best
}

// Accuracy returns the share of equal entries
func Accuracy(predicted, actual []int) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, core.NewLengthMismatchError("predictions", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return 0, core.ErrEmptyDataset
	}
	correct := 0
	for i := range actual {
		if predicted[i] == actual[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(actual)), nil
}
