// Package preprocessing は特徴量のスケーリングを提供する。
// 線形のベース分類器は特徴量のスケールに敏感なので、メタ学習器に渡す前に使う。
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlearn/core/model"
	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

// minScale 以下の標準偏差・範囲は定数特徴量とみなし、スケールを1にする
const minScale = 1e-8

// StandardScaler はデータを平均0、標準偏差1に変換する
type StandardScaler struct {
	state *model.StateManager

	// Mean は各特徴量の平均値
	Mean []float64
	// Scale は各特徴量の標準偏差 (母標準偏差)
	Scale []float64

	withMean bool
	withStd  bool
}

// NewStandardScaler は新しいStandardScalerを作成する
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	XScaled, err := scaler.FitTransform(XTrain)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		state:    model.NewStateManager(),
		withMean: withMean,
		withStd:  withStd,
	}
}

// Fit は訓練データから平均と標準偏差を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	if err := errors.CheckMatrix("StandardScaler.Fit", X, r, c, 0); err != nil {
		return err
	}
	s.state.Reset()

	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		if s.withMean {
			s.Mean[j] = floats.Sum(col) / float64(r)
		}
		s.Scale[j] = 1
		if s.withStd {
			// 平均を引かない場合も分散は列平均まわりで計算する
			mean := floats.Sum(col) / float64(r)
			var ss float64
			for _, v := range col {
				ss += (v - mean) * (v - mean)
			}
			if std := math.Sqrt(ss / float64(r)); std >= minScale {
				s.Scale[j] = std
			}
		}
	}

	s.state.SetDimensions(c, r, 0)
	s.state.SetFitted()
	return nil
}

// Transform は学習済みの統計情報でデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.check(X, "Transform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)
	return result, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.check(X, "InverseTransform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return v*s.Scale[j] + s.Mean[j]
	}, X)
	return result, nil
}

func (s *StandardScaler) check(X mat.Matrix, method string) error {
	if err := s.state.RequireFitted("StandardScaler", method); err != nil {
		return err
	}
	_, c := X.Dims()
	return s.state.RequireFeatures("StandardScaler."+method, c)
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.state.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.withMean, s.withStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.withMean, s.withStd, len(s.Mean))
}

// MinMaxScaler はデータを指定した範囲（デフォルト[0,1]）にスケーリングする
type MinMaxScaler struct {
	state *model.StateManager

	// DataMin は学習データの各特徴量の最小値
	DataMin []float64
	// DataRange は学習データの各特徴量の範囲 (定数特徴量は1)
	DataRange []float64

	featureRange [2]float64
}

// NewMinMaxScaler は新しいMinMaxScalerを作成する
func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	return &MinMaxScaler{
		state:        model.NewStateManager(),
		featureRange: featureRange,
	}
}

// Fit は訓練データから最小値と範囲を計算する
func (m *MinMaxScaler) Fit(X mat.Matrix) error {
	if m.featureRange[0] >= m.featureRange[1] {
		return errors.NewValidationError("feature_range", "min must be smaller than max", m.featureRange)
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	if err := errors.CheckMatrix("MinMaxScaler.Fit", X, r, c, 0); err != nil {
		return err
	}
	m.state.Reset()

	m.DataMin = make([]float64, c)
	m.DataRange = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		m.DataMin[j] = floats.Min(col)
		m.DataRange[j] = floats.Max(col) - m.DataMin[j]
		if m.DataRange[j] < minScale {
			m.DataRange[j] = 1
		}
	}

	m.state.SetDimensions(c, r, 0)
	m.state.SetFitted()
	return nil
}

// Transform は学習済みの最小値・範囲でデータをスケーリングする
func (m *MinMaxScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if err := m.check(X, "Transform"); err != nil {
		return nil, err
	}
	lo, width := m.featureRange[0], m.featureRange[1]-m.featureRange[0]
	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v-m.DataMin[j])/m.DataRange[j]*width + lo
	}, X)
	return result, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// InverseTransform はスケーリングされたデータを元の範囲に戻す
func (m *MinMaxScaler) InverseTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := m.check(X, "InverseTransform"); err != nil {
		return nil, err
	}
	lo, width := m.featureRange[0], m.featureRange[1]-m.featureRange[0]
	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v-lo)/width*m.DataRange[j] + m.DataMin[j]
	}, X)
	return result, nil
}

func (m *MinMaxScaler) check(X mat.Matrix, method string) error {
	if err := m.state.RequireFitted("MinMaxScaler", method); err != nil {
		return err
	}
	_, c := X.Dims()
	return m.state.RequireFeatures("MinMaxScaler."+method, c)
}
