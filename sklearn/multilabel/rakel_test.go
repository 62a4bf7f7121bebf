package multilabel

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

func TestRandomKLabelsets_Labelsets(t *testing.T) {
	s := loadSplit(t, 6)

	rakel, err := NewRandomKLabelsets(newBase(), 12, 3, WithRandomState(testSeed))
	require.NoError(t, err)
	require.NoError(t, rakel.Fit(s.XTrain, s.YTrain))

	sets := rakel.Labelsets()
	require.Len(t, sets, 12)
	for _, set := range sets {
		require.Len(t, set, 3)
		assert.True(t, slices.IsSorted(set))
		assert.Len(t, slices.Compact(slices.Clone(set)), 3, "labels in a set must be distinct")
		for _, j := range set {
			assert.True(t, j >= 0 && j < 6)
		}
	}

	again, err := NewRandomKLabelsets(newBase(), 12, 3, WithRandomState(testSeed))
	require.NoError(t, err)
	require.NoError(t, again.Fit(s.XTrain, s.YTrain))
	assert.Equal(t, sets, again.Labelsets())
}

func TestRandomKLabelsets_Disjoint(t *testing.T) {
	s := loadSplit(t, 5)

	rakel, err := NewRandomKLabelsets(newBase(), 1, 2, WithDisjointLabelsets(), WithRandomState(testSeed))
	require.NoError(t, err)
	require.NoError(t, rakel.Fit(s.XTrain, s.YTrain))

	sets := rakel.Labelsets()
	require.Len(t, sets, 3)
	var all []int
	for _, set := range sets {
		all = append(all, set...)
	}
	slices.Sort(all)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, all)
}

// With one member over all labels RAkEL is a label powerset classifier, so
// every predicted row is a combination seen in training.
func TestRandomKLabelsets_FullLabelsetIsPowerset(t *testing.T) {
	s := loadSplit(t, 4)

	rakel, err := NewRandomKLabelsets(newBase(), 1, 4, WithRandomState(testSeed))
	require.NoError(t, err)
	require.NoError(t, rakel.Fit(s.XTrain, s.YTrain))

	seen := make(map[[4]float64]bool)
	nTrain, _ := s.YTrain.Dims()
	for i := 0; i < nTrain; i++ {
		var row [4]float64
		mat.Row(row[:], i, s.YTrain)
		seen[row] = true
	}

	pred, err := rakel.Predict(s.XTest)
	require.NoError(t, err)
	nTest, _ := pred.Dims()
	for i := 0; i < nTest; i++ {
		var row [4]float64
		mat.Row(row[:], i, pred)
		assert.True(t, seen[row], "row %d predicts unseen combination %v", i, row)
	}
}

// Two members cover both labels and vote against each other, so every
// label gets exactly half of the votes.
func TestRandomKLabelsets_VoteTie(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	// only the combinations {} and {0, 1} occur, ids 0 and 1
	Y := mat.NewDense(4, 2, []float64{
		0, 0,
		1, 1,
		0, 0,
		1, 1,
	})

	tests := []struct {
		name      string
		opts      []Option
		wantLabel float64
	}{
		{"default threshold predicts ties", nil, 1},
		{"explicit half", []Option{WithVoteThreshold(0.5)}, 1},
		{"above half", []Option{WithVoteThreshold(0.6)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rakel, err := NewRandomKLabelsets(newFixedVoter(), 2, 2, append(tt.opts, WithRandomState(testSeed))...)
			require.NoError(t, err)
			require.NoError(t, rakel.Fit(X, Y))
			assert.Equal(t, [][]int{{0, 1}, {0, 1}}, rakel.Labelsets())

			pred, err := rakel.Predict(X)
			require.NoError(t, err)
			for i := 0; i < 4; i++ {
				assert.Equal(t, []float64{tt.wantLabel, tt.wantLabel}, mat.Row(nil, i, pred), "row %d", i)
			}
		})
	}
}

func TestRandomKLabelsets_UncoveredLabels(t *testing.T) {
	warned := captureWarnings(t)
	s := loadSplit(t, 4)

	rakel, err := NewRandomKLabelsets(newBase(), 1, 1, WithRandomState(testSeed))
	require.NoError(t, err)
	require.NoError(t, rakel.Fit(s.XTrain, s.YTrain))

	var coverage *errors.LabelCoverageWarning
	nCoverage := 0
	for _, w := range *warned {
		if errors.As(w, &coverage) {
			nCoverage++
		}
	}
	require.Equal(t, 1, nCoverage)
	assert.Len(t, coverage.Uncovered, 3)

	covered := rakel.Labelsets()[0][0]
	pred, err := rakel.Predict(s.XTest)
	require.NoError(t, err)
	for _, j := range coverage.Uncovered {
		assert.NotEqual(t, covered, j)
		for _, v := range mat.Col(nil, j, pred) {
			assert.Zero(t, v, "uncovered label %d must be predicted as 0", j)
		}
	}
}

func TestRandomKLabelsets_Validation(t *testing.T) {
	_, err := NewRandomKLabelsets(newBase(), 0, 2)
	var valErr *errors.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "n_clfs", valErr.ParamName)

	_, err = NewRandomKLabelsets(newBase(), 3, 0)
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "k", valErr.ParamName)

	s := loadSplit(t, 3)
	rakel, err := NewRandomKLabelsets(newBase(), 3, 4)
	require.NoError(t, err)
	err = rakel.Fit(s.XTrain, s.YTrain)
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "k", valErr.ParamName)
}

func TestPowersetCodec(t *testing.T) {
	Y := mat.NewDense(4, 3, []float64{
		1, 0, 1,
		0, 0, 0,
		1, 0, 1,
		0, 1, 1,
	})
	codec, target := newPowersetCodec([]int{0, 2}, Y)

	// masks over labels (0, 2): row0 = 0b11, row1 = 0b00, row3 = 0b10
	assert.Equal(t, 3, codec.nClasses())
	assert.Equal(t, []float64{2, 0, 2, 1}, mat.Col(nil, 0, target))

	dst := []float64{9, 9, 9}
	require.NoError(t, codec.decode(1, dst))
	assert.Equal(t, []float64{0, 9, 1}, dst)

	err := codec.decode(3, dst)
	var valueErr *errors.ValueError
	assert.True(t, errors.As(err, &valueErr))
}
