package linear_model

import (
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlearn/core/model"
	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

// LogisticRegression implements logistic regression for classification.
// Binary problems fit a single weight vector; more classes use one-vs-rest.
// It satisfies model.Classifier and model.WeightedFitter so it can be used
// as the base classifier of every multi-label meta-learner.
type LogisticRegression struct {
	state *model.StateManager // State management (composition)

	// Hyperparameters
	penalty      string  // Regularization: "l2" or "none"
	C            float64 // Inverse regularization strength (1/alpha)
	fitIntercept bool    // Whether to fit intercept
	classWeight  string  // Class weight: "balanced", "none"
	randomState  int64   // Random seed as configured (-1 draws one)
	maxIter      int     // Maximum iterations
	tol          float64 // Tolerance for stopping

	// seed is the resolved random seed. Every Fit restarts its weight
	// initialisation from it, and Clone copies it.
	seed int64

	// Model parameters
	coef_      [][]float64 // Coefficients (1 x n_features for binary, n_classes x n_features otherwise)
	intercept_ []float64   // Intercept terms
	classes_   []int       // Unique class labels, ascending
	nClasses_  int         // Number of classes
	nFeatures_ int         // Number of features
	nIter_     []int       // Actual iterations per weight vector
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		penalty:      "l2",
		C:            1.0,
		fitIntercept: true,
		classWeight:  "none",
		randomState:  -1,
		maxIter:      100,
		tol:          1e-4,
	}

	for _, opt := range opts {
		opt(lr)
	}

	if lr.randomState >= 0 {
		lr.seed = lr.randomState
	} else {
		lr.seed = rand.Int64()
	}

	return lr
}

// WithLRPenalty sets the regularization type
func WithLRPenalty(penalty string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.penalty = penalty
	}
}

// WithLRC sets the inverse regularization strength. The penalty is
// ||w||²/(2C) against the summed (not averaged) log loss, as in scikit-learn,
// so its weight shrinks as the number of samples grows.
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.C = c
	}
}

// WithLogisticFitIntercept sets whether to fit intercept
func WithLogisticFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLRClassWeight sets the class weighting ("balanced" or "none")
func WithLRClassWeight(classWeight string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.classWeight = classWeight
	}
}

// WithLRMaxIter sets the maximum number of iterations
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance for stopping criteria
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithLRRandomState sets the random seed
func WithLRRandomState(seed int64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.randomState = seed
	}
}

// Clone returns an unfitted LogisticRegression with the same hyperparameters
// and seed. A clone trained on the same data produces identical weights.
func (lr *LogisticRegression) Clone() model.Classifier {
	return &LogisticRegression{
		state:        model.NewStateManager(),
		penalty:      lr.penalty,
		C:            lr.C,
		fitIntercept: lr.fitIntercept,
		classWeight:  lr.classWeight,
		randomState:  lr.randomState,
		maxIter:      lr.maxIter,
		tol:          lr.tol,
		seed:         lr.seed,
	}
}

// Fit trains the logistic regression model
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	return lr.fit(X, y, nil)
}

// FitWeighted trains the model with per-sample weights.
// Samples with zero weight do not contribute to the gradient.
func (lr *LogisticRegression) FitWeighted(X, y mat.Matrix, sampleWeight []float64) error {
	nSamples, _ := X.Dims()
	if len(sampleWeight) != nSamples {
		return errors.NewDimensionError("LogisticRegression.FitWeighted", nSamples, len(sampleWeight), 0)
	}
	for _, w := range sampleWeight {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return errors.NewValidationError("sample_weight", "must be finite and non-negative", w)
		}
	}
	if floats.Sum(sampleWeight) == 0 {
		return errors.NewValidationError("sample_weight", "must not sum to zero", 0)
	}
	return lr.fit(X, y, sampleWeight)
}

func (lr *LogisticRegression) fit(X, y mat.Matrix, sampleWeight []float64) error {
	if err := lr.validateParams(); err != nil {
		return err
	}

	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.Wrap(errors.ErrEmptyData, "LogisticRegression.Fit")
	}
	if nSamples != yRows {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewInputShapeError("training", []int{nSamples, 1}, []int{yRows, yCols})
	}
	if err := errors.CheckMatrix("LogisticRegression.Fit", X, nSamples, nFeatures, 0); err != nil {
		return err
	}

	lr.state.Reset()

	// 行ごとの内積を高速に計算するため密行列にコピーする
	xd := mat.DenseCopyOf(X)
	labels := make([]int, nSamples)
	for i := range labels {
		labels[i] = int(y.At(i, 0))
	}

	lr.extractClasses(labels)
	lr.nFeatures_ = nFeatures
	lr.initializeWeights(nFeatures)

	weights := lr.sampleWeights(labels, sampleWeight)

	if lr.nClasses_ == 2 {
		// Binary classification: classes_[1] is the positive class
		lr.fitBinaryForClass(xd, binarize(labels, lr.classes_[1]), weights, 0)
	} else {
		// One-vs-rest (also covers a single observed class)
		for classIdx, class := range lr.classes_ {
			lr.fitBinaryForClass(xd, binarize(labels, class), weights, classIdx)
		}
	}

	if slices.Max(lr.nIter_) >= lr.maxIter {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.maxIter,
			"increase max_iter or scale the input features"))
	}

	lr.state.SetDimensions(nFeatures, nSamples, 0)
	lr.state.SetFitted()
	return nil
}

func (lr *LogisticRegression) validateParams() error {
	if lr.C <= 0 {
		return errors.NewValidationError("C", "must be positive", lr.C)
	}
	if lr.maxIter < 1 {
		return errors.NewValidationError("max_iter", "must be at least 1", lr.maxIter)
	}
	if lr.penalty != "l2" && lr.penalty != "none" {
		return errors.NewValidationError("penalty", "must be 'l2' or 'none'", lr.penalty)
	}
	if lr.classWeight != "balanced" && lr.classWeight != "none" {
		return errors.NewValidationError("class_weight", "must be 'balanced' or 'none'", lr.classWeight)
	}
	return nil
}

// extractClasses identifies unique class labels
func (lr *LogisticRegression) extractClasses(labels []int) {
	seen := make(map[int]bool)
	lr.classes_ = lr.classes_[:0]
	for _, label := range labels {
		if !seen[label] {
			seen[label] = true
			lr.classes_ = append(lr.classes_, label)
		}
	}
	slices.Sort(lr.classes_)
	lr.nClasses_ = len(lr.classes_)
}

// sampleWeights combines user sample weights with class weights.
// Weights are normalised to sum to the number of samples with non-zero
// weight, so zero-weight rows behave exactly as if they were absent.
func (lr *LogisticRegression) sampleWeights(labels []int, sampleWeight []float64) []float64 {
	n := len(labels)
	w := make([]float64, n)
	if sampleWeight != nil {
		copy(w, sampleWeight)
	} else {
		for i := range w {
			w[i] = 1
		}
	}

	if lr.classWeight == "balanced" {
		total := floats.Sum(w)
		counts := make(map[int]float64, lr.nClasses_)
		for i, label := range labels {
			counts[label] += w[i]
		}
		for i, label := range labels {
			if counts[label] > 0 {
				w[i] *= total / (float64(lr.nClasses_) * counts[label])
			}
		}
	}

	nEff := 0
	for _, v := range w {
		if v > 0 {
			nEff++
		}
	}
	floats.Scale(float64(nEff)/floats.Sum(w), w)
	return w
}

// initializeWeights initializes model weights with small values drawn from
// the resolved seed, so two fits with the same seed start from the same point.
func (lr *LogisticRegression) initializeWeights(nFeatures int) {
	nVectors := lr.nClasses_
	if lr.nClasses_ == 2 {
		nVectors = 1
	}

	lr.coef_ = make([][]float64, nVectors)
	lr.intercept_ = make([]float64, nVectors)
	lr.nIter_ = make([]int, nVectors)

	rng := rand.New(rand.NewPCG(uint64(lr.seed), 0))
	for i := range lr.coef_ {
		lr.coef_[i] = make([]float64, nFeatures)
		for j := range lr.coef_[i] {
			lr.coef_[i][j] = rng.NormFloat64() * 0.01
		}
	}
}

// fitBinaryForClass fits one weight vector by gradient descent on the
// weighted mean log loss plus ||w||²/(2·C·n).
func (lr *LogisticRegression) fitBinaryForClass(X *mat.Dense, yBinary, sampleWeight []float64, classIdx int) {
	nSamples, nFeatures := X.Dims()
	weights := lr.coef_[classIdx]
	intercept := &lr.intercept_[classIdx]
	// 重み付きサンプル数 (正規化済みなので非ゼロ重みの行数に等しい)
	total := floats.Sum(sampleWeight)

	baseLearningRate := 1.0
	gradWeights := make([]float64, nFeatures)

	for iter := 0; iter < lr.maxIter; iter++ {
		for j := range gradWeights {
			gradWeights[j] = 0
		}
		gradIntercept := 0.0

		for i := 0; i < nSamples; i++ {
			row := X.RawRowView(i)
			err := sampleWeight[i] * (sigmoid(*intercept+floats.Dot(row, weights)) - yBinary[i])
			gradIntercept += err
			floats.AddScaled(gradWeights, err, row)
		}

		floats.Scale(1/total, gradWeights)
		gradIntercept /= total

		if lr.penalty == "l2" {
			floats.AddScaled(gradWeights, 1/(lr.C*total), weights)
		}

		// Adaptive learning rate
		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))

		floats.AddScaled(weights, -learningRate, gradWeights)
		if lr.fitIntercept {
			*intercept -= learningRate * gradIntercept
		}

		lr.nIter_[classIdx] = iter + 1

		maxGrad := math.Max(math.Abs(gradIntercept), floats.Norm(gradWeights, math.Inf(1)))
		if maxGrad < lr.tol {
			break
		}
	}
}

// decision returns the raw linear scores for one row
func (lr *LogisticRegression) decision(row []float64, scores []float64) {
	for k := range lr.coef_ {
		scores[k] = lr.intercept_[k] + floats.Dot(row, lr.coef_[k])
	}
}

func (lr *LogisticRegression) checkPredictInput(X mat.Matrix, method string) (int, error) {
	if err := lr.state.RequireFitted("LogisticRegression", method); err != nil {
		return 0, err
	}
	nSamples, nFeatures := X.Dims()
	if err := lr.state.RequireFeatures("LogisticRegression."+method, nFeatures); err != nil {
		return 0, err
	}
	return nSamples, nil
}

// Predict makes predictions for input data. The result is an N×1 column of
// class labels.
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := lr.PredictProba(X)
	if err != nil {
		return nil, errors.Wrap(err, "LogisticRegression.Predict")
	}

	nSamples, _ := proba.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	row := make([]float64, lr.nClasses_)
	for i := 0; i < nSamples; i++ {
		mat.Row(row, i, proba)
		best := 0
		if lr.nClasses_ == 2 {
			// 同確率は正クラスに倒す
			if row[1] >= 0.5 {
				best = 1
			}
		} else {
			best = floats.MaxIdx(row)
		}
		predictions.Set(i, 0, float64(lr.classes_[best]))
	}

	return predictions, nil
}

// PredictProba returns probability estimates for each class. Columns follow
// Classes().
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	nSamples, err := lr.checkPredictInput(X, "PredictProba")
	if err != nil {
		return nil, err
	}

	probas := mat.NewDense(nSamples, lr.nClasses_, nil)
	row := make([]float64, lr.nFeatures_)
	scores := make([]float64, len(lr.coef_))

	for i := 0; i < nSamples; i++ {
		mat.Row(row, i, X)
		lr.decision(row, scores)

		if lr.nClasses_ == 2 {
			prob1 := sigmoid(scores[0])
			probas.Set(i, 0, 1.0-prob1)
			probas.Set(i, 1, prob1)
			continue
		}

		// Multiclass using softmax
		lse := errors.LogSumExp(scores)
		for k, s := range scores {
			probas.Set(i, k, math.Exp(s-lse))
		}
	}

	return probas, nil
}

// Classes returns the class labels seen during Fit in ascending order
func (lr *LogisticRegression) Classes() []int {
	return slices.Clone(lr.classes_)
}

// Coef returns a copy of the fitted coefficients
func (lr *LogisticRegression) Coef() [][]float64 {
	out := make([][]float64, len(lr.coef_))
	for i, c := range lr.coef_ {
		out[i] = slices.Clone(c)
	}
	return out
}

// NIter returns the number of iterations run for each weight vector
func (lr *LogisticRegression) NIter() []int {
	return slices.Clone(lr.nIter_)
}

// Score returns the mean accuracy on the given test data and labels
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	nSamples, _ := X.Dims()
	if yRows, _ := y.Dims(); yRows != nSamples {
		return 0, errors.NewDimensionError("LogisticRegression.Score", nSamples, yRows, 0)
	}

	correct := 0
	for i := 0; i < nSamples; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}

	return float64(correct) / float64(nSamples), nil
}

// GetParams returns the model hyperparameters
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":       lr.penalty,
		"C":             lr.C,
		"fit_intercept": lr.fitIntercept,
		"class_weight":  lr.classWeight,
		"random_state":  lr.randomState,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
	}
}

func binarize(labels []int, positive int) []float64 {
	out := make([]float64, len(labels))
	for i, label := range labels {
		if label == positive {
			out[i] = 1
		}
	}
	return out
}

// sigmoid computes the sigmoid function
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + errors.StabilizeExp(-z))
}
