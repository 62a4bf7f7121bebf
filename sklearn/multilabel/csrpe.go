package multilabel

import (
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/YuminosukeSato/mlearn/core/model"
	"github.com/YuminosukeSato/mlearn/core/parallel"
	"github.com/YuminosukeSato/mlearn/metrics"
	"github.com/YuminosukeSato/mlearn/pkg/errors"
	"github.com/YuminosukeSato/mlearn/pkg/log"
	"github.com/YuminosukeSato/mlearn/sklearn/model_selection"
)

// referencePair is the pair of label sets a CSRPE member discriminates.
// The member's class 1 means "a is cheaper than b".
type referencePair struct {
	a, b []float64
}

// CSRPE is a cost-sensitive ensemble that encodes an arbitrary label set
// loss. Each member learns which of two random reference label sets costs
// less for a sample; prediction sums the chosen references and thresholds
// the per-label average at 0.5.
//
// Decoding votes per label, so it only approximates the loss being
// minimised. Rank loss is the weak case: it is zero for an empty or full
// true set whatever is predicted, so such rows tie on every pair, get zero
// weight and push no member toward either reference.
type CSRPE struct {
	state  *model.StateManager
	base   model.Classifier
	loss   metrics.LabelSetLoss
	nClfs  int
	cfg    config
	logger log.Logger

	pairs []referencePair
	clfs  []model.Classifier
}

// NewCSRPE creates a CSRPE ensemble of nClfs members trained to minimise loss.
func NewCSRPE(loss metrics.LabelSetLoss, base model.Classifier, nClfs int, opts ...Option) (*CSRPE, error) {
	if loss == nil {
		return nil, errors.NewValidationError("scoring_fn", "must not be nil", nil)
	}
	if err := checkBase(base); err != nil {
		return nil, err
	}
	if nClfs < 1 {
		return nil, errors.NewValidationError("n_clfs", "must be at least 1", nClfs)
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &CSRPE{
		state:  model.NewStateManager(),
		base:   base,
		loss:   loss,
		nClfs:  nClfs,
		cfg:    cfg,
		logger: log.GetLoggerWithName("multilabel.csrpe"),
	}, nil
}

// drawReferencePair draws two distinct label sets with every label an
// independent fair coin.
func drawReferencePair(nLabels int, rng *rand.Rand) referencePair {
	coin := distuv.Bernoulli{P: 0.5, Src: rng}
	draw := func() []float64 {
		set := make([]float64, nLabels)
		for j := range set {
			set[j] = coin.Rand()
		}
		return set
	}
	a := draw()
	b := draw()
	for slices.Equal(a, b) {
		b = draw()
	}
	return referencePair{a: a, b: b}
}

// encode builds the binary target and cost weights of one member.
func (c *CSRPE) encode(Y mat.Matrix, pair referencePair) (*mat.Dense, []float64) {
	nSamples, nLabels := Y.Dims()
	target := mat.NewDense(nSamples, 1, nil)
	weights := make([]float64, nSamples)
	y := make([]float64, nLabels)
	for i := 0; i < nSamples; i++ {
		mat.Row(y, i, Y)
		costA := c.loss(y, pair.a)
		costB := c.loss(y, pair.b)
		if costA < costB {
			target.Set(i, 0, 1)
		}
		weights[i] = math.Abs(costA - costB)
	}
	return target, weights
}

// fitMember trains one member cost-sensitively. Bases implementing
// model.WeightedFitter receive the costs as sample weights; other bases are
// trained on a cost-proportionate resample drawn with replacement.
func (c *CSRPE) fitMember(X mat.Matrix, target *mat.Dense, weights []float64, rng *rand.Rand, m int) (model.Classifier, error) {
	if floats.Sum(weights) == 0 {
		// どちらの参照も同コストなら重みは意味を持たない
		return fitClone(c.base, X, target, "CSRPE.Fit", m)
	}

	clf := c.base.Clone()
	if wf, ok := clf.(model.WeightedFitter); ok {
		if err := wf.FitWeighted(X, target, weights); err != nil {
			return nil, errors.Wrapf(err, "CSRPE.Fit: fitting sub-classifier %d", m)
		}
		return clf, nil
	}

	nSamples, _ := X.Dims()
	sampler := sampleuv.NewWeighted(weights, rng)
	idx := make([]int, nSamples)
	for i := range idx {
		k, _ := sampler.Take()
		sampler.Reweight(k, weights[k])
		idx[i] = k
	}
	return fitClone(c.base, model_selection.SelectRows(X, idx), model_selection.SelectRows(target, idx), "CSRPE.Fit", m)
}

// Fit draws one reference pair per member and trains the members.
func (c *CSRPE) Fit(X, Y mat.Matrix) error {
	nSamples, nFeatures, nLabels, err := validateFitInput("CSRPE.Fit", X, Y)
	if err != nil {
		return err
	}
	c.state.Reset()
	start := time.Now()

	pairs := make([]referencePair, c.nClfs)
	clfs := make([]model.Classifier, c.nClfs)
	err = parallel.Do(c.cfg.nJobs, c.nClfs, func(m int) error {
		rng := c.cfg.stream(uint64(m))
		pair := drawReferencePair(nLabels, rng)
		target, weights := c.encode(Y, pair)
		clf, err := c.fitMember(X, target, weights, rng, m)
		if err != nil {
			return err
		}
		pairs[m] = pair
		clfs[m] = clf
		return nil
	})
	if err != nil {
		return err
	}

	c.pairs = pairs
	c.clfs = clfs
	c.state.SetDimensions(nFeatures, nSamples, nLabels)
	c.state.SetFitted()

	c.logger.Info("fit complete",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, nSamples,
		log.LabelsKey, nLabels,
		log.TasksKey, c.nClfs,
		log.RandomSeedKey, c.cfg.randomState,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict lets each member pick a reference, averages the picked label sets
// and predicts the labels whose average exceeds 0.5.
func (c *CSRPE) Predict(X mat.Matrix) (*mat.Dense, error) {
	nSamples, nLabels, err := checkPredictInput(c.state, "CSRPE", X)
	if err != nil {
		return nil, err
	}

	picks := make([][]float64, c.nClfs)
	err = parallel.Do(c.cfg.nJobs, c.nClfs, func(m int) error {
		pred, err := predictBinary(c.clfs[m], X)
		if err != nil {
			return errors.Wrapf(err, "CSRPE.Predict: member %d", m)
		}
		picks[m] = pred
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(nSamples, nLabels, nil)
	err = parallel.Chunks(c.cfg.nJobs, nSamples, func(start, end int) error {
		score := make([]float64, nLabels)
		for i := start; i < end; i++ {
			clear(score)
			for m, pick := range picks {
				ref := c.pairs[m].b
				if pick[i] == 1 {
					ref = c.pairs[m].a
				}
				floats.Add(score, ref)
			}
			row := out.RawRowView(i)
			for j, s := range score {
				if s/float64(c.nClfs) > 0.5 {
					row[j] = 1
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NLabels returns the number of labels seen by Fit
func (c *CSRPE) NLabels() int {
	_, _, nLabels := c.state.GetDimensions()
	return nLabels
}

// ReferencePairs returns the reference label sets of every member.
func (c *CSRPE) ReferencePairs() [][2][]float64 {
	out := make([][2][]float64, len(c.pairs))
	for m, p := range c.pairs {
		out[m] = [2][]float64{slices.Clone(p.a), slices.Clone(p.b)}
	}
	return out
}
