package model_selection

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

func TestTrainTestSplit(t *testing.T) {
	n := 10
	X := mat.NewDense(n, 2, nil)
	Y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(-i))
		Y.Set(i, 0, float64(i))
	}

	XTrain, XTest, YTrain, YTest, err := TrainTestSplit(X, Y, 0.3, 1126)
	require.NoError(t, err)

	rTrain, _ := XTrain.Dims()
	rTest, _ := XTest.Dims()
	assert.Equal(t, 7, rTrain)
	assert.Equal(t, 3, rTest)

	// 行の対応が崩れず、全行がちょうど1回ずつ現れる
	var seen []int
	for _, pair := range []struct{ X, Y *mat.Dense }{{XTrain, YTrain}, {XTest, YTest}} {
		r, _ := pair.X.Dims()
		for i := 0; i < r; i++ {
			assert.Equal(t, pair.X.At(i, 0), pair.Y.At(i, 0))
			assert.Equal(t, -pair.X.At(i, 0), pair.X.At(i, 1))
			seen = append(seen, int(pair.Y.At(i, 0)))
		}
	}
	slices.Sort(seen)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, seen)

	_, XTest2, _, _, err := TrainTestSplit(X, Y, 0.3, 1126)
	require.NoError(t, err)
	assert.True(t, mat.Equal(XTest, XTest2))
}

func TestTrainTestSplit_Errors(t *testing.T) {
	X := mat.NewDense(4, 2, nil)

	_, _, _, _, err := TrainTestSplit(X, mat.NewDense(3, 1, nil), 0.5, 0)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	for _, size := range []float64{0, 1, -0.2} {
		_, _, _, _, err = TrainTestSplit(X, mat.NewDense(4, 1, nil), size, 0)
		var valErr *errors.ValidationError
		assert.True(t, errors.As(err, &valErr), "test size %v", size)
	}
}

func TestSelectRows(t *testing.T) {
	m := mat.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})

	got := SelectRows(m, []int{2, 0, 2})
	want := mat.NewDense(3, 2, []float64{
		5, 6,
		1, 2,
		5, 6,
	})
	assert.True(t, mat.Equal(want, got))

	// 結果は元の行列と記憶領域を共有しない
	got.Set(0, 0, -1)
	assert.Equal(t, 5.0, m.At(2, 0))
}
