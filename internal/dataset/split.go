package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gocredible/domain/core"
)

// Split shuffles rows deterministically by seed and holds out testFraction of
// them. Both sides always keep at least one row.
func Split(ds *Dataset, testFraction float64, seed int64) (train, test *Dataset, err error) {
	if ds == nil || ds.Len() == 0 {
		return nil, nil, core.ErrEmptyDataset
	}
	if !(testFraction > 0 && testFraction < 1) {
		return nil, nil, fmt.Errorf("%w: test fraction %g must be in (0, 1)", core.ErrInvalidSplit, testFraction)
	}
	n := ds.Len()
	if n < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 rows, have %d", core.ErrInvalidSplit, n)
	}

	testSize := int(math.Round(float64(n) * testFraction))
	testSize = min(max(testSize, 1), n-1)

	rng := rand.New(rand.NewPCG(uint64(seed), 0x5eed))
	perm := rng.Perm(n)

	test = ds.Subset(ds.Name+"/test", perm[:testSize])
	train = ds.Subset(ds.Name+"/train", perm[testSize:])
	return train, test, nil
}
