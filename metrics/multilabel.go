// Package metrics は多ラベル分類の評価指標を提供する。
//
// 行列版の関数は N×L の0/1指示行列を受け取り、行ごとの値の平均を返す。
// LabelSetLoss 型の関数は1行分のラベル集合を比較するもので、
// PCC の決定規則や CSRPE のコストとして使われる。
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

// LabelSetLoss は真のラベル集合 yTrue に対する予測 yPred のコストを返す。
// 両方とも長さ L の0/1ベクトル。
type LabelSetLoss func(yTrue, yPred []float64) float64

// confusion は2つのラベル集合の TP, FP, FN, TN を数える
func confusion(yTrue, yPred []float64) (tp, fp, fn, tn float64) {
	for i, t := range yTrue {
		p := yPred[i]
		switch {
		case t != 0 && p != 0:
			tp++
		case t == 0 && p != 0:
			fp++
		case t != 0 && p == 0:
			fn++
		default:
			tn++
		}
	}
	return tp, fp, fn, tn
}

// PairwiseRankLoss はラベル集合の対順位損失を計算する。
//
// 関連ラベルと非関連ラベルの組のうち、予測で逆順になった組を1、
// 同順位になった組を0.5として数える。正規化はしない。
//
//	loss = FN·FP + (TP·FP + FN·TN) / 2
func PairwiseRankLoss(yTrue, yPred []float64) float64 {
	tp, fp, fn, tn := confusion(yTrue, yPred)
	return fn*fp + (tp*fp+fn*tn)/2
}

// F1 は2つのラベル集合の F1 スコアを返す。
// 両方が空集合の場合は完全一致として1を返す。
func F1(yTrue, yPred []float64) float64 {
	tp, fp, fn, _ := confusion(yTrue, yPred)
	denom := 2*tp + fp + fn
	if denom == 0 {
		return 1
	}
	return 2 * tp / denom
}

// F1Loss は 1 − F1 を返す
func F1Loss(yTrue, yPred []float64) float64 {
	return 1 - F1(yTrue, yPred)
}

// HammingLossRow は不一致ラベルの割合を返す
func HammingLossRow(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	var diff float64
	for i, t := range yTrue {
		if (t != 0) != (yPred[i] != 0) {
			diff++
		}
	}
	return diff / float64(len(yTrue))
}

// validatePair は2つのラベル行列の形状を検証する
func validatePair(op string, yTrue, yPred mat.Matrix) (int, int, error) {
	if yTrue == nil || yPred == nil {
		return 0, 0, errors.NewValueError(op, "nil label matrix")
	}
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()
	if rTrue == 0 || cTrue == 0 {
		return 0, 0, errors.NewValueError(op, "empty label matrix")
	}
	if rTrue != rPred {
		return 0, 0, errors.NewDimensionError(op, rTrue, rPred, 0)
	}
	if cTrue != cPred {
		return 0, 0, errors.NewDimensionError(op, cTrue, cPred, 1)
	}
	return rTrue, cTrue, nil
}

// rowMean は行ごとの損失の平均を計算する
func rowMean(op string, yTrue, yPred mat.Matrix, loss LabelSetLoss) (float64, error) {
	n, l, err := validatePair(op, yTrue, yPred)
	if err != nil {
		return 0, err
	}
	t := make([]float64, l)
	p := make([]float64, l)
	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		mat.Row(t, i, yTrue)
		mat.Row(p, i, yPred)
		scores[i] = loss(t, p)
	}
	mean := floats.Sum(scores) / float64(n)
	if err := errors.CheckScalar(op, mean, 0); err != nil {
		return 0, err
	}
	return mean, nil
}

// HammingLoss は全エントリのうち誤って予測された割合を計算する
func HammingLoss(yTrue, yPred mat.Matrix) (float64, error) {
	return rowMean("HammingLoss", yTrue, yPred, HammingLossRow)
}

// SubsetAccuracy はラベル集合全体が完全に一致した行の割合を計算する
func SubsetAccuracy(yTrue, yPred mat.Matrix) (float64, error) {
	return rowMean("SubsetAccuracy", yTrue, yPred, func(t, p []float64) float64 {
		if HammingLossRow(t, p) == 0 {
			return 1
		}
		return 0
	})
}

// F1Score は事例ベースの F1 スコア (行ごとの F1 の平均) を計算する。
// 真のラベルも予測も空の行は1として数え、UndefinedMetricWarning を出す。
func F1Score(yTrue, yPred mat.Matrix) (float64, error) {
	emptyRows := 0
	score, err := rowMean("F1Score", yTrue, yPred, func(t, p []float64) float64 {
		if floats.Sum(t) == 0 && floats.Sum(p) == 0 {
			emptyRows++
		}
		return F1(t, p)
	})
	if err != nil {
		return 0, err
	}
	if emptyRows > 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("f1", "empty true and predicted label sets", 1))
	}
	return score, nil
}

// PairwiseRankLossMatrix は行ごとの PairwiseRankLoss の平均を計算する
func PairwiseRankLossMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	return rowMean("PairwiseRankLoss", yTrue, yPred, PairwiseRankLoss)
}

// IsBinaryMatrix は全エントリが0か1であるかを返す
func IsBinaryMatrix(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if v != 0 && v != 1 || math.IsNaN(v) {
				return false
			}
		}
	}
	return true
}
