package linear_model

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlearn/core/model"
	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

// nIterNoChange は損失が改善しないエポックがこの回数続いたら学習を打ち切る
const nIterNoChange = 5

// PassiveAggressiveClassifier は受動的攻撃的分類モデル。
// 2クラスは1本の重みベクトル、それ以上は one-vs-rest で学習する。
// PredictProba は各スコアのシグモイドを返すので、確率を必要とする
// PCC や RAkEL のベース分類器としても使える。
type PassiveAggressiveClassifier struct {
	state *model.StateManager

	// ハイパーパラメータ
	C            float64 // 1ステップの更新幅の上限 (hinge) / 正則化 (squared_hinge)
	fitIntercept bool    // 切片を学習するか
	maxIter      int     // 最大エポック数
	tol          float64 // 収束判定の許容誤差
	shuffle      bool    // 各エポックでデータをシャッフルするか
	randomState  int64   // 乱数シード (-1 なら毎回引く)
	average      bool    // 平均化PAを使用するか
	loss         string  // 損失関数: "hinge" (PA-I), "squared_hinge" (PA-II)

	seed int64

	// 学習パラメータ
	coef_         [][]float64 // 重み係数 (2クラスなら1本)
	intercept_    []float64
	avgCoef_      [][]float64 // 平均化された重み
	avgIntercept_ []float64
	classes_      []int

	// 学習状態
	nIter_ int   // 実行されたエポック数
	t_     int64 // 総ステップ数
}

// PassiveAggressiveOption は設定オプション
type PassiveAggressiveOption func(*PassiveAggressiveClassifier)

// NewPassiveAggressiveClassifier は新しいPassiveAggressiveClassifierを作成
func NewPassiveAggressiveClassifier(opts ...PassiveAggressiveOption) *PassiveAggressiveClassifier {
	pa := &PassiveAggressiveClassifier{
		state:        model.NewStateManager(),
		C:            1.0,
		fitIntercept: true,
		maxIter:      1000,
		tol:          1e-3,
		shuffle:      true,
		randomState:  -1,
		loss:         "hinge",
	}

	for _, opt := range opts {
		opt(pa)
	}

	if pa.randomState >= 0 {
		pa.seed = pa.randomState
	} else {
		pa.seed = rand.Int64()
	}
	return pa
}

// WithPAC は正則化パラメータを設定
func WithPAC(c float64) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) { pa.C = c }
}

// WithPAMaxIter は最大エポック数を設定
func WithPAMaxIter(maxIter int) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) { pa.maxIter = maxIter }
}

// WithPATol は収束判定の許容誤差を設定。負の値を渡すと maxIter まで回す
func WithPATol(tol float64) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) { pa.tol = tol }
}

// WithPAFitIntercept は切片学習の有無を設定
func WithPAFitIntercept(fit bool) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) { pa.fitIntercept = fit }
}

// WithPALoss は損失関数を設定
func WithPALoss(loss string) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) { pa.loss = loss }
}

// WithPAShuffle はエポックごとのシャッフルの有無を設定
func WithPAShuffle(shuffle bool) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) { pa.shuffle = shuffle }
}

// WithPAAverage は平均化PAを有効にする
func WithPAAverage(average bool) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) { pa.average = average }
}

// WithPARandomState は乱数シードを設定
func WithPARandomState(seed int64) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) { pa.randomState = seed }
}

// Clone は同じハイパーパラメータとシードを持つ未学習のコピーを返す
func (pa *PassiveAggressiveClassifier) Clone() model.Classifier {
	return &PassiveAggressiveClassifier{
		state:        model.NewStateManager(),
		C:            pa.C,
		fitIntercept: pa.fitIntercept,
		maxIter:      pa.maxIter,
		tol:          pa.tol,
		shuffle:      pa.shuffle,
		randomState:  pa.randomState,
		average:      pa.average,
		loss:         pa.loss,
		seed:         pa.seed,
	}
}

func (pa *PassiveAggressiveClassifier) validateParams() error {
	if pa.C <= 0 {
		return errors.NewValidationError("C", "must be positive", pa.C)
	}
	if pa.maxIter < 1 {
		return errors.NewValidationError("max_iter", "must be at least 1", pa.maxIter)
	}
	if pa.loss != "hinge" && pa.loss != "squared_hinge" {
		return errors.NewValidationError("loss", "must be 'hinge' or 'squared_hinge'", pa.loss)
	}
	return nil
}

// checkFitInput は学習データを検証し、ラベルを整数で返す
func (pa *PassiveAggressiveClassifier) checkFitInput(op string, X, y mat.Matrix) ([]int, error) {
	if err := pa.validateParams(); err != nil {
		return nil, err
	}
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	if nSamples != yRows {
		return nil, errors.NewDimensionError(op, nSamples, yRows, 0)
	}
	if yCols != 1 {
		return nil, errors.NewInputShapeError("training", []int{nSamples, 1}, []int{yRows, yCols})
	}
	if err := errors.CheckMatrix(op, X, nSamples, nFeatures, 0); err != nil {
		return nil, err
	}
	labels := make([]int, nSamples)
	for i := range labels {
		labels[i] = int(y.At(i, 0))
	}
	return labels, nil
}

// Fit はバッチ学習でモデルを訓練する。毎回シードから学習し直すので、
// 同じデータで学習したクローンは同じ重みになる。
func (pa *PassiveAggressiveClassifier) Fit(X, y mat.Matrix) error {
	labels, err := pa.checkFitInput("PassiveAggressiveClassifier.Fit", X, y)
	if err != nil {
		return err
	}

	pa.state.Reset()
	nSamples, nFeatures := X.Dims()
	xd := mat.DenseCopyOf(X)

	pa.classes_ = uniqueSorted(labels)
	pa.initializeWeights(nFeatures)

	rng := rand.New(rand.NewPCG(uint64(pa.seed), 1))
	order := make([]int, nSamples)
	for i := range order {
		order[i] = i
	}

	bestLoss := math.Inf(1)
	noImprove := 0
	converged := false
	for epoch := 0; epoch < pa.maxIter; epoch++ {
		if pa.shuffle {
			rng.Shuffle(nSamples, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
		sumLoss := 0.0
		for _, i := range order {
			sumLoss += pa.updateWeights(xd.RawRowView(i), labels[i])
		}
		pa.nIter_ = epoch + 1

		// 損失が tol 以上改善しないエポックが続いたら止める
		if pa.tol >= 0 {
			meanLoss := sumLoss / float64(nSamples)
			if meanLoss > bestLoss-pa.tol {
				noImprove++
			} else {
				noImprove = 0
			}
			bestLoss = math.Min(bestLoss, meanLoss)
			if noImprove >= nIterNoChange {
				converged = true
				break
			}
		}
	}

	if !converged && pa.tol >= 0 {
		errors.Warn(errors.NewConvergenceWarning("PassiveAggressiveClassifier", pa.nIter_,
			"Maximum number of iterations reached"))
	}

	pa.state.SetDimensions(nFeatures, nSamples, 0)
	pa.state.SetFitted()
	return nil
}

// PartialFit はミニバッチで1エポックだけ逐次的に学習する。
// 最初の呼び出しでは classes に全クラスラベルを渡す (nil ならバッチから抽出)。
func (pa *PassiveAggressiveClassifier) PartialFit(X, y mat.Matrix, classes []int) error {
	labels, err := pa.checkFitInput("PassiveAggressiveClassifier.PartialFit", X, y)
	if err != nil {
		return err
	}
	nSamples, nFeatures := X.Dims()

	if !pa.state.IsFitted() {
		if classes != nil {
			pa.classes_ = uniqueSorted(classes)
		} else {
			pa.classes_ = uniqueSorted(labels)
		}
		pa.initializeWeights(nFeatures)
	} else if err := pa.state.RequireFeatures("PassiveAggressiveClassifier.PartialFit", nFeatures); err != nil {
		return err
	}

	for i, label := range labels {
		if !slices.Contains(pa.classes_, label) {
			return errors.NewValueError("PassiveAggressiveClassifier.PartialFit",
				fmt.Sprintf("label %d is not among the classes of the first call", label))
		}
		pa.updateWeights(mat.Row(nil, i, X), label)
	}
	pa.nIter_++

	pa.state.SetDimensions(nFeatures, nSamples, 0)
	pa.state.SetFitted()
	return nil
}

// initializeWeights は重みをゼロで初期化
func (pa *PassiveAggressiveClassifier) initializeWeights(nFeatures int) {
	nVectors := len(pa.classes_)
	if nVectors == 2 {
		nVectors = 1
	}
	pa.coef_ = make([][]float64, nVectors)
	pa.avgCoef_ = make([][]float64, nVectors)
	pa.intercept_ = make([]float64, nVectors)
	pa.avgIntercept_ = make([]float64, nVectors)
	for c := range pa.coef_ {
		pa.coef_[c] = make([]float64, nFeatures)
		pa.avgCoef_[c] = make([]float64, nFeatures)
	}
	pa.nIter_ = 0
	pa.t_ = 0
}

// target は重みベクトル c にとってのラベル y の符号 (±1)
func (pa *PassiveAggressiveClassifier) target(c, y int) float64 {
	positive := pa.classes_[c]
	if len(pa.classes_) == 2 {
		positive = pa.classes_[1]
	}
	if y == positive {
		return 1
	}
	return -1
}

// updateWeights は単一サンプルで重みを更新し、更新前のヒンジ損失の和を返す
func (pa *PassiveAggressiveClassifier) updateWeights(x []float64, y int) float64 {
	sqNorm := floats.Dot(x, x)
	total := 0.0

	for c, w := range pa.coef_ {
		target := pa.target(c, y)
		margin := target * (pa.intercept_[c] + floats.Dot(w, x))
		if margin >= 1 {
			pa.accumulate(c)
			continue
		}
		loss := 1 - margin
		total += loss

		var tau float64
		switch pa.loss {
		case "squared_hinge":
			tau = loss / (sqNorm + 1/(2*pa.C))
		default:
			// PA-I: ステップ幅を C で打ち切る
			if sqNorm == 0 {
				tau = pa.C
			} else {
				tau = math.Min(pa.C, loss/sqNorm)
			}
		}

		floats.AddScaled(w, tau*target, x)
		if pa.fitIntercept {
			pa.intercept_[c] += tau * target
		}
		pa.accumulate(c)
	}

	pa.t_++
	return total
}

// accumulate は平均化PAの移動平均を更新する
func (pa *PassiveAggressiveClassifier) accumulate(c int) {
	if !pa.average {
		return
	}
	t := float64(pa.t_)
	for i, v := range pa.coef_[c] {
		pa.avgCoef_[c][i] = (pa.avgCoef_[c][i]*t + v) / (t + 1)
	}
	pa.avgIntercept_[c] = (pa.avgIntercept_[c]*t + pa.intercept_[c]) / (t + 1)
}

// weights は予測に使う重みを返す
func (pa *PassiveAggressiveClassifier) weights() ([][]float64, []float64) {
	if pa.average {
		return pa.avgCoef_, pa.avgIntercept_
	}
	return pa.coef_, pa.intercept_
}

// DecisionFunction は各重みベクトルのスコアを返す (2クラスなら N×1)
func (pa *PassiveAggressiveClassifier) DecisionFunction(X mat.Matrix) (*mat.Dense, error) {
	if err := pa.state.RequireFitted("PassiveAggressiveClassifier", "DecisionFunction"); err != nil {
		return nil, err
	}
	nSamples, nFeatures := X.Dims()
	if err := pa.state.RequireFeatures("PassiveAggressiveClassifier.DecisionFunction", nFeatures); err != nil {
		return nil, err
	}

	coef, intercept := pa.weights()
	scores := mat.NewDense(nSamples, len(coef), nil)
	row := make([]float64, nFeatures)
	for i := 0; i < nSamples; i++ {
		mat.Row(row, i, X)
		for c, w := range coef {
			scores.Set(i, c, intercept[c]+floats.Dot(row, w))
		}
	}
	return scores, nil
}

// Predict はスコアが最大のクラスを N×1 の列で返す
func (pa *PassiveAggressiveClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	scores, err := pa.DecisionFunction(X)
	if err != nil {
		return nil, errors.Wrap(err, "PassiveAggressiveClassifier.Predict")
	}

	nSamples, nVectors := scores.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		row := scores.RawRowView(i)
		var best int
		if len(pa.classes_) == 2 {
			// スコア0は正クラスに倒す (PredictProba の0.5と一致させる)
			if row[0] >= 0 {
				best = 1
			}
		} else if nVectors > 1 {
			best = floats.MaxIdx(row)
		}
		predictions.Set(i, 0, float64(pa.classes_[best]))
	}
	return predictions, nil
}

// PredictProba はスコアのシグモイドを確率として返す。列は Classes() の順。
// 3クラス以上では one-vs-rest のシグモイドを行ごとに正規化する。
func (pa *PassiveAggressiveClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	scores, err := pa.DecisionFunction(X)
	if err != nil {
		return nil, errors.Wrap(err, "PassiveAggressiveClassifier.PredictProba")
	}

	nSamples, _ := scores.Dims()
	nClasses := len(pa.classes_)
	probas := mat.NewDense(nSamples, nClasses, nil)
	for i := 0; i < nSamples; i++ {
		row := scores.RawRowView(i)
		if nClasses == 2 {
			p := sigmoid(row[0])
			probas.Set(i, 0, 1-p)
			probas.Set(i, 1, p)
			continue
		}
		out := probas.RawRowView(i)
		for c, s := range row {
			out[c] = sigmoid(s)
		}
		floats.Scale(1/floats.Sum(out), out)
	}
	return probas, nil
}

// Classes は学習時のクラスラベルを昇順で返す
func (pa *PassiveAggressiveClassifier) Classes() []int {
	return slices.Clone(pa.classes_)
}

// Coef は学習済みの係数のコピーを返す
func (pa *PassiveAggressiveClassifier) Coef() [][]float64 {
	coef, _ := pa.weights()
	out := make([][]float64, len(coef))
	for i, c := range coef {
		out[i] = slices.Clone(c)
	}
	return out
}

// NIterations は実行されたエポック数を返す
func (pa *PassiveAggressiveClassifier) NIterations() int {
	return pa.nIter_
}

// GetParams はハイパーパラメータを返す
func (pa *PassiveAggressiveClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"C":             pa.C,
		"fit_intercept": pa.fitIntercept,
		"max_iter":      pa.maxIter,
		"tol":           pa.tol,
		"shuffle":       pa.shuffle,
		"random_state":  pa.randomState,
		"average":       pa.average,
		"loss":          pa.loss,
	}
}

func uniqueSorted(labels []int) []int {
	out := slices.Clone(labels)
	slices.Sort(out)
	return slices.Compact(out)
}
