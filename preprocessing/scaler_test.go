package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlearn/core/model"
	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

var (
	_ model.Transformer = (*StandardScaler)(nil)
	_ model.Transformer = (*MinMaxScaler)(nil)
)

func TestStandardScaler(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
		4, 5,
	})

	scaler := NewStandardScaler(true, true)
	XScaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{2.5, 5}, scaler.Mean, 1e-12)
	// 定数列のスケールは1
	assert.InDeltaSlice(t, []float64{1.118033988749895, 1}, scaler.Scale, 1e-12)

	col := mat.Col(nil, 0, XScaled)
	assert.InDelta(t, 0, col[0]+col[1]+col[2]+col[3], 1e-12)
	assert.Equal(t, []float64{0, 0, 0, 0}, mat.Col(nil, 1, XScaled))

	back, err := scaler.InverseTransform(XScaled)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, back, 1e-12))
	assert.Contains(t, scaler.String(), "n_features=2")
}

func TestStandardScaler_WithoutMean(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1, 3})
	scaler := NewStandardScaler(false, true)
	XScaled, err := scaler.FitTransform(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, mat.Col(nil, 0, XScaled))
}

func TestMinMaxScaler(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		0, 10,
		5, 10,
		10, 10,
	})

	scaler := NewMinMaxScaler([2]float64{-1, 1})
	XScaled, err := scaler.FitTransform(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 0, 1}, mat.Col(nil, 0, XScaled))
	assert.Equal(t, []float64{-1, -1, -1}, mat.Col(nil, 1, XScaled))

	back, err := scaler.InverseTransform(XScaled)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, back, 1e-12))
}

func TestScalers_RoundTrip(t *testing.T) {
	XTrain := mat.NewDense(3, 2, []float64{
		0, 10,
		1, 20,
		2, 60,
	})
	XTest := mat.NewDense(2, 2, []float64{
		-1, 15,
		4, 100,
	})

	for name, tr := range map[string]model.Transformer{
		"standard": NewStandardScaler(true, true),
		"minmax":   NewMinMaxScaler([2]float64{-1, 1}),
	} {
		t.Run(name, func(t *testing.T) {
			fitted, err := tr.FitTransform(XTrain)
			require.NoError(t, err)
			again, err := tr.Transform(XTrain)
			require.NoError(t, err)
			assert.True(t, mat.EqualApprox(fitted, again, 1e-12))

			// 学習範囲外のデータも元に戻せる
			scaled, err := tr.Transform(XTest)
			require.NoError(t, err)
			back, err := tr.InverseTransform(scaled)
			require.NoError(t, err)
			assert.True(t, mat.EqualApprox(XTest, back, 1e-9))
		})
	}
}

func TestScaler_Errors(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	_, err := NewStandardScaler(true, true).Transform(X)
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))

	scaler := NewMinMaxScaler([2]float64{0, 1})
	require.NoError(t, scaler.Fit(X))
	_, err = scaler.Transform(mat.NewDense(1, 3, nil))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	err = NewMinMaxScaler([2]float64{1, 0}).Fit(X)
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
}
