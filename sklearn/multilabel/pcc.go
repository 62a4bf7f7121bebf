package multilabel

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/mlearn/core/model"
	"github.com/YuminosukeSato/mlearn/core/parallel"
	"github.com/YuminosukeSato/mlearn/pkg/errors"
	"github.com/YuminosukeSato/mlearn/pkg/log"
)

// ProbabilisticClassifierChains trains a classifier chain and predicts, for
// each row, the sampled label set with the lowest expected loss under the
// empirical distribution of the samples.
type ProbabilisticClassifierChains struct {
	state  *model.StateManager
	base   model.Classifier
	rule   DecisionRule
	cfg    config
	logger log.Logger

	chain *chain
}

// NewProbabilisticClassifierChains creates a PCC meta-learner. loss is
// "f1" or "rankloss".
func NewProbabilisticClassifierChains(base model.Classifier, loss string, opts ...Option) (*ProbabilisticClassifierChains, error) {
	if err := checkBase(base); err != nil {
		return nil, err
	}
	rule, err := ParseDecisionRule(loss)
	if err != nil {
		return nil, err
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &ProbabilisticClassifierChains{
		state:  model.NewStateManager(),
		base:   base,
		rule:   rule,
		cfg:    cfg,
		logger: log.GetLoggerWithName("multilabel.pcc"),
	}, nil
}

// Fit trains the chain exactly like ClassifierChains.
func (p *ProbabilisticClassifierChains) Fit(X, Y mat.Matrix) error {
	nSamples, nFeatures, nLabels, err := validateFitInput("ProbabilisticClassifierChains.Fit", X, Y)
	if err != nil {
		return err
	}
	order, err := resolveOrder(&p.cfg, nLabels)
	if err != nil {
		return err
	}
	p.state.Reset()
	start := time.Now()

	c, err := fitChain("ProbabilisticClassifierChains.Fit", p.base, X, Y, order)
	if err != nil {
		return err
	}

	p.chain = c
	p.state.SetDimensions(nFeatures, nSamples, nLabels)
	p.state.SetFitted()

	p.logger.Info("fit complete",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, nSamples,
		log.LabelsKey, nLabels,
		log.ChainOrderKey, order,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict samples label sets for every row and applies the decision rule.
// Row r draws from its own random stream, so the result does not depend on
// the number of jobs and repeated calls return the same matrix.
func (p *ProbabilisticClassifierChains) Predict(X mat.Matrix) (*mat.Dense, error) {
	nSamples, nLabels, err := checkPredictInput(p.state, "ProbabilisticClassifierChains", X)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	out := mat.NewDense(nSamples, nLabels, nil)
	err = parallel.Do(p.cfg.nJobs, nSamples, func(r int) error {
		samples, err := p.sampleRow(X, r)
		if err != nil {
			return errors.Wrapf(err, "ProbabilisticClassifierChains.Predict: row %d", r)
		}
		candidates, weights := uniqueSets(samples)
		out.SetRow(r, candidates[bestCandidate(p.rule, candidates, weights)])
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.logger.Debug("predict complete",
		log.OperationKey, log.OperationPredict,
		log.SamplesKey, nSamples,
		log.SamplesDrawnKey, p.cfg.nSamples,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return out, nil
}

// sampleRow draws nSamples label sets for row r through the chain. All
// samples advance together: position i is scored for every sample with one
// PredictProba call on x ⊕ (sampled prefix). Returned sets use the original
// label order.
func (p *ProbabilisticClassifierChains) sampleRow(X mat.Matrix, r int) ([][]float64, error) {
	n := p.cfg.nSamples
	_, nFeatures := X.Dims()
	nLabels := len(p.chain.order)

	x := mat.Row(nil, r, X)
	xRep := mat.NewDense(n, nFeatures, nil)
	for s := 0; s < n; s++ {
		xRep.SetRow(s, x)
	}

	rng := p.cfg.stream(uint64(r))
	drawn := mat.NewDense(n, nLabels, nil)
	for i, clf := range p.chain.clfs {
		proba, err := positiveProba(clf, augment(xRep, leadingColumns(drawn, i)))
		if err != nil {
			return nil, errors.Wrapf(err, "chain position %d", i)
		}
		for s, prob := range proba {
			var v float64
			switch p.cfg.policy {
			case SampleMode:
				if prob >= 0.5 {
					v = 1
				}
			default:
				v = distuv.Bernoulli{P: prob, Src: rng}.Rand()
			}
			drawn.Set(s, i, v)
		}
	}

	samples := make([][]float64, n)
	for s := range samples {
		set := make([]float64, nLabels)
		for i, label := range p.chain.order {
			set[label] = drawn.At(s, i)
		}
		samples[s] = set
	}
	return samples, nil
}

// uniqueSets collapses samples into distinct sets in order of first
// appearance, with their relative frequencies as weights.
func uniqueSets(samples [][]float64) ([][]float64, []float64) {
	index := make(map[string]int)
	var sets [][]float64
	var counts []float64
	key := make([]byte, 0, 64)
	for _, s := range samples {
		key = key[:0]
		for _, v := range s {
			key = append(key, byte(v))
		}
		idx, ok := index[string(key)]
		if !ok {
			idx = len(sets)
			index[string(key)] = idx
			sets = append(sets, s)
			counts = append(counts, 0)
		}
		counts[idx]++
	}
	total := float64(len(samples))
	for i := range counts {
		counts[i] /= total
	}
	return sets, counts
}

// NLabels returns the number of labels seen by Fit
func (p *ProbabilisticClassifierChains) NLabels() int {
	_, _, nLabels := p.state.GetDimensions()
	return nLabels
}

// Order returns the chain order used by the last Fit, or nil before Fit.
func (p *ProbabilisticClassifierChains) Order() []int {
	if p.chain == nil {
		return nil
	}
	return slices.Clone(p.chain.order)
}

// Rule returns the decision rule
func (p *ProbabilisticClassifierChains) Rule() DecisionRule {
	return p.rule
}
