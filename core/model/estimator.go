package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Classifier はメタ学習器がラップする単一ラベル分類器のインターフェース。
//
// y は N×1 のクラスラベル列。PredictProba の列は Classes() の順に並ぶ。
// Clone は同じハイパーパラメータを持つ未学習の独立したコピーを返す。
// メタ学習器はプロトタイプ自体を学習させず、部分問題ごとに Clone を使う。
type Classifier interface {
	Fitter
	Predictor

	// PredictProba は各クラスの確率を予測する (N×len(Classes()))
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes は学習時に観測されたクラスラベルを昇順で返す
	Classes() []int

	// Clone は未学習のコピーを返す
	Clone() Classifier
}

// WeightedFitter はサンプル重み付き学習をサポートする分類器のインターフェース。
// CSRPE はこれを実装するベース分類器に対してコスト重みを直接渡す。
type WeightedFitter interface {
	FitWeighted(X, y mat.Matrix, sampleWeight []float64) error
}

// MultiLabelClassifier はラベル集合を予測するメタ学習器の共通インターフェース。
//
// Y は N×L の0/1指示行列。Predict は常に新しい N×L の0/1行列を返す。
type MultiLabelClassifier interface {
	Fit(X, Y mat.Matrix) error
	Predict(X mat.Matrix) (*mat.Dense, error)
	// NLabels は学習時のラベル数 L を返す (未学習なら0)
	NLabels() int
}

// IncrementalClassifier はミニバッチで逐次学習できる分類器のインターフェース。
// classes は最初の呼び出しで全クラスラベルを指定する (nil ならバッチから抽出)。
type IncrementalClassifier interface {
	Classifier

	// PartialFit はミニバッチで1エポック学習する
	PartialFit(X, y mat.Matrix, classes []int) error

	// NIterations は実行された学習エポック数を返す
	NIterations() int
}

// Transformer は特徴量の変換のインターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// Transform はデータを変換する
	Transform(X mat.Matrix) (*mat.Dense, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.Matrix) (*mat.Dense, error)

	// InverseTransform は変換を元に戻す
	InverseTransform(X mat.Matrix) (*mat.Dense, error)
}
