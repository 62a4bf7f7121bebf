package datasets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

func TestMakeMultilabelClassification(t *testing.T) {
	X, Y, err := MakeMultilabelClassification(200, 5, 4, WithRandomState(1126))
	require.NoError(t, err)

	r, c := X.Dims()
	assert.Equal(t, []int{200, 5}, []int{r, c})
	r, c = Y.Dims()
	assert.Equal(t, []int{200, 4}, []int{r, c})

	for j := 0; j < 4; j++ {
		col := mat.Col(nil, j, Y)
		for _, v := range col {
			assert.True(t, v == 0 || v == 1)
		}
		sum := floats.Sum(col)
		assert.Greater(t, sum, 0.0, "label %d has no positives", j)
		assert.Less(t, sum, 200.0, "label %d has no negatives", j)
	}

	X2, Y2, err := MakeMultilabelClassification(200, 5, 4, WithRandomState(1126))
	require.NoError(t, err)
	assert.True(t, mat.Equal(X, X2))
	assert.True(t, mat.Equal(Y, Y2))

	X3, _, err := MakeMultilabelClassification(200, 5, 4, WithRandomState(7))
	require.NoError(t, err)
	assert.False(t, mat.Equal(X, X3))
}

func TestMakeMultilabelClassification_TwoSamples(t *testing.T) {
	// ラベルごとに正例と負例が1つずつになる
	_, Y, err := MakeMultilabelClassification(2, 1, 3, WithRandomState(3), WithNoise(0), WithLabelCorrelation(1))
	require.NoError(t, err)
	for j := 0; j < 3; j++ {
		assert.Equal(t, 1.0, floats.Sum(mat.Col(nil, j, Y)), "label %d", j)
	}
}

func TestMakeMultilabelClassification_Validation(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		d     int
		l     int
		opts  []MultilabelOption
		param string
	}{
		{"too few samples", 1, 2, 2, nil, "n_samples"},
		{"no features", 10, 0, 2, nil, "n_features"},
		{"no labels", 10, 2, 0, nil, "n_labels"},
		{"negative noise", 10, 2, 2, []MultilabelOption{WithNoise(-1)}, "noise"},
		{"correlation above one", 10, 2, 2, []MultilabelOption{WithLabelCorrelation(2)}, "correlation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := MakeMultilabelClassification(tt.n, tt.d, tt.l, tt.opts...)
			var valErr *errors.ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, tt.param, valErr.ParamName)
		})
	}
}
