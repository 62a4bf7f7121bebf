package multilabel

import (
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlearn/core/model"
	"github.com/YuminosukeSato/mlearn/metrics"
	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

// checkBase rejects a nil prototype
func checkBase(base model.Classifier) error {
	if base == nil {
		return errors.NewValidationError("base_clf", "must not be nil", nil)
	}
	return nil
}

// validateFitInput checks X and Y for Fit and returns their shape.
func validateFitInput(op string, X, Y mat.Matrix) (nSamples, nFeatures, nLabels int, err error) {
	if X == nil || Y == nil {
		return 0, 0, 0, errors.NewValueError(op, "X and Y must not be nil")
	}
	nSamples, nFeatures = X.Dims()
	yRows, nLabels := Y.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return 0, 0, 0, errors.Wrap(errors.ErrEmptyData, op)
	}
	if yRows != nSamples {
		return 0, 0, 0, errors.NewDimensionError(op, nSamples, yRows, 0)
	}
	if nLabels == 0 {
		return 0, 0, 0, errors.NewValueError(op, "Y must have at least one label column")
	}
	if !metrics.IsBinaryMatrix(Y) {
		return 0, 0, 0, errors.NewValueError(op, "Y must only contain 0 and 1")
	}
	if err := errors.CheckMatrix(op, X, nSamples, nFeatures, 0); err != nil {
		return 0, 0, 0, err
	}
	return nSamples, nFeatures, nLabels, nil
}

// checkPredictInput checks that the model is fitted and X has the feature
// count seen by Fit.
func checkPredictInput(state *model.StateManager, name string, X mat.Matrix) (nSamples, nLabels int, err error) {
	if err := state.RequireFitted(name, "Predict"); err != nil {
		return 0, 0, err
	}
	if X == nil {
		return 0, 0, errors.NewValueError(name+".Predict", "X must not be nil")
	}
	nSamples, nFeatures := X.Dims()
	if err := state.RequireFeatures(name+".Predict", nFeatures); err != nil {
		return 0, 0, err
	}
	_, _, nLabels = state.GetDimensions()
	return nSamples, nLabels, nil
}

// column copies column j of m into an N×1 matrix
func column(m mat.Matrix, j int) *mat.Dense {
	n, _ := m.Dims()
	return mat.NewDense(n, 1, mat.Col(nil, j, m))
}

// selectColumns copies the given columns of m, in the given order
func selectColumns(m mat.Matrix, cols []int) *mat.Dense {
	n, _ := m.Dims()
	out := mat.NewDense(n, len(cols), nil)
	for k, j := range cols {
		out.SetCol(k, mat.Col(nil, j, m))
	}
	return out
}

// leadingColumns returns a view of the first k columns of m, or nil when k is 0.
func leadingColumns(m *mat.Dense, k int) mat.Matrix {
	if k == 0 {
		return nil
	}
	r, _ := m.Dims()
	return m.Slice(0, r, 0, k)
}

// augment returns X ⊕ extra. A zero-width extra returns X unchanged since
// gonum does not allow empty matrices.
func augment(X mat.Matrix, extra mat.Matrix) mat.Matrix {
	if extra == nil {
		return X
	}
	if _, c := extra.Dims(); c == 0 {
		return X
	}
	var out mat.Dense
	out.Augment(X, extra)
	return &out
}

// fitClone fits a fresh clone of base on (X, y)
func fitClone(base model.Classifier, X, y mat.Matrix, op string, task int) (model.Classifier, error) {
	clf := base.Clone()
	if err := clf.Fit(X, y); err != nil {
		return nil, errors.Wrapf(err, "%s: fitting sub-classifier %d", op, task)
	}
	return clf, nil
}

// predictBinary returns the 0/1 prediction of a binary sub-classifier.
// Any non-zero class is treated as 1.
func predictBinary(clf model.Classifier, X mat.Matrix) ([]float64, error) {
	pred, err := clf.Predict(X)
	if err != nil {
		return nil, err
	}
	out := mat.Col(nil, 0, pred)
	for i, v := range out {
		if v != 0 {
			out[i] = 1
		}
	}
	return out, nil
}

// positiveProba returns P(label = 1 | X) from a binary sub-classifier. A
// classifier that never saw class 1 returns 0 for every row.
func positiveProba(clf model.Classifier, X mat.Matrix) ([]float64, error) {
	n, _ := X.Dims()
	idx := slices.Index(clf.Classes(), 1)
	if idx < 0 {
		return make([]float64, n), nil
	}
	proba, err := clf.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, idx, proba), nil
}
