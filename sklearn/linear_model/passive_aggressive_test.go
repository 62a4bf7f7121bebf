package linear_model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlearn/core/model"
	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

var _ model.Classifier = (*PassiveAggressiveClassifier)(nil)
var _ model.IncrementalClassifier = (*PassiveAggressiveClassifier)(nil)

func TestPassiveAggressiveClassifier_FitPredict_Binary(t *testing.T) {
	for _, loss := range []string{"hinge", "squared_hinge"} {
		t.Run(loss, func(t *testing.T) {
			var warned []error
			errors.SetWarningHandler(func(w error) { warned = append(warned, w) })
			defer errors.SetWarningHandler(nil)

			X, y := separableData()
			pa := NewPassiveAggressiveClassifier(WithPALoss(loss), WithPARandomState(42))
			require.NoError(t, pa.Fit(X, y))
			assert.Equal(t, []int{0, 1}, pa.Classes())
			assert.Empty(t, warned, "separable data must converge")
			assert.Less(t, pa.NIterations(), 1000)

			predictions, err := pa.Predict(X)
			require.NoError(t, err)
			proba, err := pa.PredictProba(X)
			require.NoError(t, err)
			for i := 0; i < 6; i++ {
				assert.Equal(t, y.At(i, 0), predictions.At(i, 0), "sample %d", i)
				// 予測と確率の向きが一致する
				assert.Equal(t, predictions.At(i, 0) == 1, proba.At(i, 1) >= 0.5, "sample %d", i)
				assert.InDelta(t, 1.0, proba.At(i, 0)+proba.At(i, 1), 1e-12)
			}
		})
	}
}

func TestPassiveAggressiveClassifier_Multiclass(t *testing.T) {
	quietWarnings(t)
	X := mat.NewDense(9, 2, []float64{
		0, 0,
		0.5, 0,
		0, 0.5,
		5, 0,
		5.5, 0,
		5, 0.5,
		0, 5,
		0.5, 5,
		0, 5.5,
	})
	y := mat.NewDense(9, 1, []float64{
		0, 0, 0,
		1, 1, 1,
		2, 2, 2,
	})

	pa := NewPassiveAggressiveClassifier(WithPARandomState(0))
	require.NoError(t, pa.Fit(X, y))
	assert.Equal(t, []int{0, 1, 2}, pa.Classes())
	assert.Len(t, pa.Coef(), 3)

	predictions, err := pa.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, mat.Col(nil, 0, y), mat.Col(nil, 0, predictions))

	probas, err := pa.PredictProba(X)
	require.NoError(t, err)
	rows, cols := probas.Dims()
	require.Equal(t, 3, cols)
	for i := 0; i < rows; i++ {
		row := mat.Row(nil, i, probas)
		assert.InDelta(t, 1.0, row[0]+row[1]+row[2], 1e-9)
		assert.Equal(t, int(y.At(i, 0)), argmax(row), "sample %d", i)
	}
}

func TestPassiveAggressiveClassifier_SingleClass(t *testing.T) {
	quietWarnings(t)
	X, _ := separableData()
	y := mat.NewDense(6, 1, []float64{1, 1, 1, 1, 1, 1})

	pa := NewPassiveAggressiveClassifier(WithPARandomState(0))
	require.NoError(t, pa.Fit(X, y))
	assert.Equal(t, []int{1}, pa.Classes())

	proba, err := pa.PredictProba(X)
	require.NoError(t, err)
	_, cols := proba.Dims()
	assert.Equal(t, 1, cols)
	assert.Equal(t, 1.0, proba.At(0, 0))
}

func TestPassiveAggressiveClassifier_CloneTrainsIdentically(t *testing.T) {
	quietWarnings(t)
	X, y := separableData()

	pa := NewPassiveAggressiveClassifier(WithPAC(0.1), WithPAAverage(true), WithPARandomState(7))
	clone := pa.Clone()
	_, err := clone.Predict(X)
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))

	require.NoError(t, pa.Fit(X, y))
	require.NoError(t, clone.Fit(X, y))
	assert.Equal(t, pa.Coef(), clone.(*PassiveAggressiveClassifier).Coef())

	// 再学習しても前回の重みを引き継がない
	require.NoError(t, pa.Fit(X, y))
	assert.Equal(t, pa.Coef(), clone.(*PassiveAggressiveClassifier).Coef())
}

func TestPassiveAggressiveClassifier_PartialFit(t *testing.T) {
	quietWarnings(t)
	X, y := separableData()

	pa := NewPassiveAggressiveClassifier(WithPARandomState(0))
	first := mat.NewDense(2, 2, []float64{
		0.5, 0.5,
		1.0, 1.5,
	})
	require.NoError(t, pa.PartialFit(first, mat.NewDense(2, 1, []float64{0, 0}), []int{0, 1}))
	assert.Equal(t, []int{0, 1}, pa.Classes())

	for epoch := 0; epoch < 20; epoch++ {
		require.NoError(t, pa.PartialFit(X, y, nil))
	}
	assert.Equal(t, 21, pa.NIterations())

	predictions, err := pa.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, mat.Col(nil, 0, y), mat.Col(nil, 0, predictions))

	err = pa.PartialFit(first, mat.NewDense(2, 1, []float64{0, 3}), nil)
	var valueErr *errors.ValueError
	assert.True(t, errors.As(err, &valueErr), "got %v", err)

	err = pa.PartialFit(mat.NewDense(1, 3, nil), mat.NewDense(1, 1, nil), nil)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr), "got %v", err)
}

func TestPassiveAggressiveClassifier_ConvergenceWarning(t *testing.T) {
	var warned []error
	errors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer errors.SetWarningHandler(nil)

	X, y := separableData()
	pa := NewPassiveAggressiveClassifier(WithPAMaxIter(2), WithPARandomState(0))
	require.NoError(t, pa.Fit(X, y))

	require.Len(t, warned, 1)
	var conv *errors.ConvergenceWarning
	assert.True(t, errors.As(warned[0], &conv))
	assert.Equal(t, 2, pa.NIterations())

	// tol < 0 なら maxIter まで回しても警告しない
	warned = nil
	pa = NewPassiveAggressiveClassifier(WithPAMaxIter(2), WithPATol(-1), WithPARandomState(0))
	require.NoError(t, pa.Fit(X, y))
	assert.Empty(t, warned)
}

func TestPassiveAggressiveClassifier_Errors(t *testing.T) {
	quietWarnings(t)
	X, y := separableData()

	pa := NewPassiveAggressiveClassifier()
	_, err := pa.PredictProba(X)
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))

	tests := []struct {
		opt   PassiveAggressiveOption
		param string
	}{
		{WithPAC(0), "C"},
		{WithPAMaxIter(0), "max_iter"},
		{WithPALoss("log"), "loss"},
	}
	for _, tt := range tests {
		err := NewPassiveAggressiveClassifier(tt.opt).Fit(X, y)
		var valErr *errors.ValidationError
		require.True(t, errors.As(err, &valErr), "param %s", tt.param)
		assert.Equal(t, tt.param, valErr.ParamName)
	}

	err = pa.Fit(X, mat.NewDense(3, 1, nil))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	require.NoError(t, pa.Fit(X, y))
	_, err = pa.Predict(mat.NewDense(1, 3, nil))
	assert.True(t, errors.As(err, &dimErr))
}

func TestPassiveAggressiveClassifier_GetParams(t *testing.T) {
	params := NewPassiveAggressiveClassifier().GetParams()
	assert.Equal(t, 1.0, params["C"])
	assert.Equal(t, 1000, params["max_iter"])
	assert.Equal(t, "hinge", params["loss"])
	assert.Equal(t, false, params["average"])
}

func argmax(row []float64) int {
	best := 0
	for i, v := range row {
		if v > row[best] {
			best = i
		}
	}
	return best
}
