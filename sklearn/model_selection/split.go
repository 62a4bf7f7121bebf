// Package model_selection splits datasets for evaluation.
package model_selection

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

// TrainTestSplit shuffles the rows of X and Y with a seeded permutation and
// splits them into train and test sets. testSize is the fraction of rows put
// in the test set, rounded up. A negative seed draws a random one.
func TrainTestSplit(X, Y mat.Matrix, testSize float64, seed int64) (XTrain, XTest, YTrain, YTest *mat.Dense, err error) {
	if X == nil || Y == nil {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "X and Y must not be nil")
	}
	n, _ := X.Dims()
	if yRows, _ := Y.Dims(); yRows != n {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", n, yRows, 0)
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}

	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest >= n {
		return nil, nil, nil, nil, errors.NewValidationError("test_size", "leaves no training samples", testSize)
	}

	s := uint64(seed)
	if seed < 0 {
		s = rand.Uint64()
	}
	perm := rand.New(rand.NewPCG(s, 0)).Perm(n)

	XTest, YTest = SelectRows(X, perm[:nTest]), SelectRows(Y, perm[:nTest])
	XTrain, YTrain = SelectRows(X, perm[nTest:]), SelectRows(Y, perm[nTest:])
	return XTrain, XTest, YTrain, YTest, nil
}

// SelectRows copies the given rows of m in the given order. Rows may repeat,
// so it also serves bootstrap and weighted resamples.
func SelectRows(m mat.Matrix, rows []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(rows), c, nil)
	for k, i := range rows {
		out.SetRow(k, mat.Row(nil, i, m))
	}
	return out
}
