package multilabel

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlearn/core/model"
	"github.com/YuminosukeSato/mlearn/core/parallel"
	"github.com/YuminosukeSato/mlearn/pkg/errors"
	"github.com/YuminosukeSato/mlearn/pkg/log"
)

// BinaryRelevance fits one independent clone of the base classifier per label.
type BinaryRelevance struct {
	state  *model.StateManager
	base   model.Classifier
	cfg    config
	logger log.Logger

	clfs []model.Classifier
}

// NewBinaryRelevance creates a BinaryRelevance meta-learner around base.
func NewBinaryRelevance(base model.Classifier, opts ...Option) (*BinaryRelevance, error) {
	if err := checkBase(base); err != nil {
		return nil, err
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &BinaryRelevance{
		state:  model.NewStateManager(),
		base:   base,
		cfg:    cfg,
		logger: log.GetLoggerWithName("multilabel.br"),
	}, nil
}

// Fit trains one classifier per column of Y.
func (br *BinaryRelevance) Fit(X, Y mat.Matrix) error {
	nSamples, nFeatures, nLabels, err := validateFitInput("BinaryRelevance.Fit", X, Y)
	if err != nil {
		return err
	}
	br.state.Reset()
	start := time.Now()

	clfs := make([]model.Classifier, nLabels)
	err = parallel.Do(br.cfg.nJobs, nLabels, func(i int) error {
		clf, err := fitClone(br.base, X, column(Y, i), "BinaryRelevance.Fit", i)
		if err != nil {
			return err
		}
		clfs[i] = clf
		return nil
	})
	if err != nil {
		return err
	}

	br.clfs = clfs
	br.state.SetDimensions(nFeatures, nSamples, nLabels)
	br.state.SetFitted()

	br.logger.Info("fit complete",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.LabelsKey, nLabels,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict returns column i from classifier i.
func (br *BinaryRelevance) Predict(X mat.Matrix) (*mat.Dense, error) {
	nSamples, nLabels, err := checkPredictInput(br.state, "BinaryRelevance", X)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(nSamples, nLabels, nil)
	err = parallel.Do(br.cfg.nJobs, nLabels, func(i int) error {
		pred, err := predictBinary(br.clfs[i], X)
		if err != nil {
			return errors.Wrapf(err, "BinaryRelevance.Predict: label %d", i)
		}
		out.SetCol(i, pred)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NLabels returns the number of labels seen by Fit
func (br *BinaryRelevance) NLabels() int {
	_, _, nLabels := br.state.GetDimensions()
	return nLabels
}

// Estimators returns the fitted per-label classifiers
func (br *BinaryRelevance) Estimators() []model.Classifier {
	return append([]model.Classifier(nil), br.clfs...)
}
