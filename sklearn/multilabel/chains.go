package multilabel

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlearn/core/model"
	"github.com/YuminosukeSato/mlearn/pkg/errors"
	"github.com/YuminosukeSato/mlearn/pkg/log"
)

// chain is a fitted classifier chain. clfs[i] predicts label order[i] from
// X augmented with the labels order[0..i-1], in that order.
type chain struct {
	order []int
	clfs  []model.Classifier
}

// resolveOrder returns the chain order for nLabels labels.
func resolveOrder(cfg *config, nLabels int) ([]int, error) {
	switch {
	case cfg.order != nil:
		if !isPermutation(cfg.order, nLabels) {
			return nil, errors.NewValidationError("order", "must be a permutation of 0..n_labels-1", cfg.order)
		}
		return slices.Clone(cfg.order), nil
	case cfg.shuffleOrder:
		return cfg.stream(setupStream).Perm(nLabels), nil
	default:
		order := make([]int, nLabels)
		for i := range order {
			order[i] = i
		}
		return order, nil
	}
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range order {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// fitChain trains the chain positions in order. Position i sees the true
// values of the earlier labels. Training is sequential by construction.
// A panic in the base classifier is returned as *errors.PanicError.
func fitChain(op string, base model.Classifier, X, Y mat.Matrix, order []int) (*chain, error) {
	YOrdered := selectColumns(Y, order)

	c := &chain{order: order, clfs: make([]model.Classifier, len(order))}
	err := errors.SafeExecute(op, func() error {
		for i := range order {
			feats := augment(X, leadingColumns(YOrdered, i))
			clf, err := fitClone(base, feats, column(YOrdered, i), op, i)
			if err != nil {
				return err
			}
			c.clfs[i] = clf
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// predict runs one greedy forward pass and returns labels in original order.
func (c *chain) predict(op string, X mat.Matrix) (*mat.Dense, error) {
	nSamples, _ := X.Dims()
	nLabels := len(c.order)

	predOrdered := mat.NewDense(nSamples, nLabels, nil)
	for i, clf := range c.clfs {
		feats := augment(X, leadingColumns(predOrdered, i))
		pred, err := predictBinary(clf, feats)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: chain position %d", op, i)
		}
		predOrdered.SetCol(i, pred)
	}

	out := mat.NewDense(nSamples, nLabels, nil)
	for i, label := range c.order {
		out.SetCol(label, mat.Col(nil, i, predOrdered))
	}
	return out, nil
}

// ClassifierChains fits one classifier per label along a chain. Each
// classifier receives the features plus the labels earlier in the chain.
type ClassifierChains struct {
	state  *model.StateManager
	base   model.Classifier
	cfg    config
	logger log.Logger

	chain *chain
}

// NewClassifierChains creates a ClassifierChains meta-learner around base.
func NewClassifierChains(base model.Classifier, opts ...Option) (*ClassifierChains, error) {
	if err := checkBase(base); err != nil {
		return nil, err
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &ClassifierChains{
		state:  model.NewStateManager(),
		base:   base,
		cfg:    cfg,
		logger: log.GetLoggerWithName("multilabel.cc"),
	}, nil
}

// Fit trains the chain on the true labels.
func (cc *ClassifierChains) Fit(X, Y mat.Matrix) error {
	nSamples, nFeatures, nLabels, err := validateFitInput("ClassifierChains.Fit", X, Y)
	if err != nil {
		return err
	}
	order, err := resolveOrder(&cc.cfg, nLabels)
	if err != nil {
		return err
	}
	cc.state.Reset()
	start := time.Now()

	c, err := fitChain("ClassifierChains.Fit", cc.base, X, Y, order)
	if err != nil {
		return err
	}

	cc.chain = c
	cc.state.SetDimensions(nFeatures, nSamples, nLabels)
	cc.state.SetFitted()

	cc.logger.Info("fit complete",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, nSamples,
		log.LabelsKey, nLabels,
		log.ChainOrderKey, order,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict runs the chain once, feeding each prediction forward.
func (cc *ClassifierChains) Predict(X mat.Matrix) (*mat.Dense, error) {
	if _, _, err := checkPredictInput(cc.state, "ClassifierChains", X); err != nil {
		return nil, err
	}
	return cc.chain.predict("ClassifierChains.Predict", X)
}

// NLabels returns the number of labels seen by Fit
func (cc *ClassifierChains) NLabels() int {
	_, _, nLabels := cc.state.GetDimensions()
	return nLabels
}

// Order returns the chain order used by the last Fit, or nil before Fit.
func (cc *ClassifierChains) Order() []int {
	if cc.chain == nil {
		return nil
	}
	return slices.Clone(cc.chain.order)
}
