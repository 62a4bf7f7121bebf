// Package datasets generates synthetic datasets for examples and tests.
package datasets

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

type multilabelConfig struct {
	randomState int64
	noise       float64
	correlation float64
}

// MultilabelOption configures MakeMultilabelClassification
type MultilabelOption func(*multilabelConfig)

// WithRandomState sets the seed. A negative value draws a random one.
func WithRandomState(seed int64) MultilabelOption {
	return func(c *multilabelConfig) {
		c.randomState = seed
	}
}

// WithNoise sets the standard deviation of the noise added to every label
// score.
func WithNoise(sigma float64) MultilabelOption {
	return func(c *multilabelConfig) {
		c.noise = sigma
	}
}

// WithLabelCorrelation sets how strongly a label depends on the previous
// one, in [0, 1]. 0 generates independent labels.
func WithLabelCorrelation(rho float64) MultilabelOption {
	return func(c *multilabelConfig) {
		c.correlation = rho
	}
}

// MakeMultilabelClassification generates a random multi-label problem.
//
// Features are standard normal. Label j is active when a noisy linear score
// of the features, shifted by label j-1 when correlation > 0, is positive:
//
//	score_j = x·w_j + b_j + correlation·(2·y_{j-1} - 1) + ε
//
// Every label is guaranteed at least one positive and one negative sample.
// It returns the N×D feature matrix and the N×L 0/1 label matrix.
func MakeMultilabelClassification(nSamples, nFeatures, nLabels int, opts ...MultilabelOption) (*mat.Dense, *mat.Dense, error) {
	cfg := multilabelConfig{randomState: -1, noise: 0.1, correlation: 0.5}
	for _, opt := range opts {
		opt(&cfg)
	}

	if nSamples < 2 {
		return nil, nil, errors.NewValidationError("n_samples", "must be at least 2", nSamples)
	}
	if nFeatures < 1 {
		return nil, nil, errors.NewValidationError("n_features", "must be at least 1", nFeatures)
	}
	if nLabels < 1 {
		return nil, nil, errors.NewValidationError("n_labels", "must be at least 1", nLabels)
	}
	if cfg.noise < 0 {
		return nil, nil, errors.NewValidationError("noise", "must be non-negative", cfg.noise)
	}
	if cfg.correlation < 0 || cfg.correlation > 1 {
		return nil, nil, errors.NewValidationError("correlation", "must be in [0, 1]", cfg.correlation)
	}

	seed := uint64(cfg.randomState)
	if cfg.randomState < 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, 0))
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	bias := distuv.Uniform{Min: -0.5, Max: 0.5, Src: rng}

	X := mat.NewDense(nSamples, nFeatures, nil)
	for i := 0; i < nSamples; i++ {
		row := X.RawRowView(i)
		for j := range row {
			row[j] = normal.Rand()
		}
	}

	W := make([][]float64, nLabels)
	b := make([]float64, nLabels)
	for j := range W {
		W[j] = make([]float64, nFeatures)
		for f := range W[j] {
			W[j][f] = normal.Rand()
		}
		b[j] = bias.Rand()
	}

	Y := mat.NewDense(nSamples, nLabels, nil)
	for i := 0; i < nSamples; i++ {
		x := X.RawRowView(i)
		for j := 0; j < nLabels; j++ {
			score := floats.Dot(x, W[j]) + b[j] + cfg.noise*normal.Rand()
			if j > 0 {
				score += cfg.correlation * (2*Y.At(i, j-1) - 1)
			}
			if score > 0 {
				Y.Set(i, j, 1)
			}
		}
	}

	// 全サンプルが同じ値のラベルは1サンプルだけ反転させる
	for j := 0; j < nLabels; j++ {
		col := mat.Col(nil, j, Y)
		switch floats.Sum(col) {
		case 0:
			Y.Set(rng.IntN(nSamples), j, 1)
		case float64(nSamples):
			Y.Set(rng.IntN(nSamples), j, 0)
		}
	}

	return X, Y, nil
}
