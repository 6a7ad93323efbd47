package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"gocredible/domain/core"
	"gocredible/internal/dataset"
)

func TestDecisionTree_SeparableData(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{1, 2, 3, 10, 11, 12})
	y := []int{0, 0, 0, 1, 1, 1}

	tree := NewDecisionTree(0, 2)
	require.NoError(t, tree.Fit(X, y))
	assert.Equal(t, 1, tree.Depth())

	pred, err := tree.Predict(mat.NewDense(3, 1, []float64{0, 6.4, 100}))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1}, pred)
}

func TestDecisionTree_TwoLevelConjunction(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})
	y := []int{0, 0, 0, 1}

	tree := NewDecisionTree(0, 2)
	require.NoError(t, tree.Fit(X, y))
	assert.Equal(t, 2, tree.Depth())
	pred, err := tree.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, y, pred)
}

func TestDecisionTree_NoImprovingSplitMakesLeaf(t *testing.T) {
	// XOR has no single split that lowers Gini impurity
	X := mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})
	tree := NewDecisionTree(0, 2)
	require.NoError(t, tree.Fit(X, []int{0, 1, 1, 0}))
	assert.Equal(t, 0, tree.Depth())
}

func TestDecisionTree_MaxDepthLimitsGrowth(t *testing.T) {
	ds, err := dataset.Synthetic(dataset.SyntheticConfig{Classes: 4, Features: 3, SamplesPerClass: 50, Spread: 3, Seed: 5})
	require.NoError(t, err)

	stump := NewDecisionTree(1, 2)
	require.NoError(t, stump.Fit(ds.Features, ds.Labels))
	assert.Equal(t, 1, stump.Depth())

	deep := NewDecisionTree(0, 2)
	require.NoError(t, deep.Fit(ds.Features, ds.Labels))
	pred, err := deep.Predict(ds.Features)
	require.NoError(t, err)
	acc, err := Accuracy(pred, ds.Labels)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc, "an unlimited tree memorizes distinct training points")
}

func TestDecisionTree_GeneralizesImperfectly(t *testing.T) {
	ds, err := dataset.Synthetic(dataset.DefaultSyntheticConfig())
	require.NoError(t, err)
	train, test, err := dataset.Split(ds, 0.2, 42)
	require.NoError(t, err)

	tree := NewDecisionTree(12, 2)
	require.NoError(t, tree.Fit(train.Features, train.Labels))
	pred, err := tree.Predict(test.Features)
	require.NoError(t, err)

	acc, err := Accuracy(pred, test.Labels)
	require.NoError(t, err)
	assert.Greater(t, acc, 0.3)
	assert.Less(t, acc, 1.0)
}

func TestDecisionTree_Errors(t *testing.T) {
	tree := NewDecisionTree(3, 2)

	_, err := tree.Predict(mat.NewDense(1, 1, nil))
	assert.ErrorIs(t, err, core.ErrNotFitted)

	assert.ErrorIs(t, tree.Fit(nil, nil), core.ErrEmptyDataset)
	assert.ErrorIs(t, tree.Fit(mat.NewDense(2, 1, nil), []int{1}), core.ErrLengthMismatch)

	require.NoError(t, tree.Fit(mat.NewDense(2, 1, []float64{0, 1}), []int{0, 1}))
	_, err = tree.Predict(mat.NewDense(1, 2, nil))
	assert.ErrorIs(t, err, core.ErrFeatureMismatch)
}

func TestAccuracy(t *testing.T) {
	acc, err := Accuracy([]int{1, 2, 3, 4}, []int{1, 2, 0, 4})
	require.NoError(t, err)
	assert.Equal(t, 0.75, acc)

	_, err = Accuracy([]int{1}, []int{1, 2})
	assert.ErrorIs(t, err, core.ErrLengthMismatch)

	_, err = Accuracy(nil, nil)
	assert.ErrorIs(t, err, core.ErrEmptyDataset)
}
