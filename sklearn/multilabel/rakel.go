package multilabel

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/YuminosukeSato/mlearn/core/model"
	"github.com/YuminosukeSato/mlearn/core/parallel"
	"github.com/YuminosukeSato/mlearn/pkg/errors"
	"github.com/YuminosukeSato/mlearn/pkg/log"
)

// RandomKLabelsets implements RAkEL. Each member is a label powerset
// classifier over a random subset of k labels; a label is predicted when at
// least the vote threshold (half by default) of the members covering it vote
// for it.
type RandomKLabelsets struct {
	state  *model.StateManager
	base   model.Classifier
	nClfs  int
	k      int
	cfg    config
	logger log.Logger

	labelsets [][]int
	codecs    []*powersetCodec
	clfs      []model.Classifier
	coverage  []int
}

// NewRandomKLabelsets creates a RAkEL meta-learner with nClfs members over
// labelsets of size k. k is checked against the label count at Fit.
func NewRandomKLabelsets(base model.Classifier, nClfs, k int, opts ...Option) (*RandomKLabelsets, error) {
	if err := checkBase(base); err != nil {
		return nil, err
	}
	if nClfs < 1 {
		return nil, errors.NewValidationError("n_clfs", "must be at least 1", nClfs)
	}
	if k < 1 || k > maxLabelsetSize {
		return nil, errors.NewValidationError("k", "must be in [1, 64]", k)
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &RandomKLabelsets{
		state:  model.NewStateManager(),
		base:   base,
		nClfs:  nClfs,
		k:      k,
		cfg:    cfg,
		logger: log.GetLoggerWithName("multilabel.rakel"),
	}, nil
}

// drawLabelsets draws the member labelsets. Overlapping mode draws nClfs
// independent k-subsets, so two members may share the same subset.
// Disjoint mode cuts one permutation into consecutive chunks of k.
func (r *RandomKLabelsets) drawLabelsets(nLabels int) [][]int {
	rng := r.cfg.stream(setupStream)

	if r.cfg.disjoint {
		perm := rng.Perm(nLabels)
		var sets [][]int
		for start := 0; start < nLabels; start += r.k {
			end := min(start+r.k, nLabels)
			set := slices.Clone(perm[start:end])
			slices.Sort(set)
			sets = append(sets, set)
		}
		return sets
	}

	sets := make([][]int, r.nClfs)
	for m := range sets {
		set := make([]int, r.k)
		sampleuv.WithoutReplacement(set, nLabels, rng)
		slices.Sort(set)
		sets[m] = set
	}
	return sets
}

// Fit draws the labelsets and trains one powerset classifier per labelset.
func (r *RandomKLabelsets) Fit(X, Y mat.Matrix) error {
	nSamples, nFeatures, nLabels, err := validateFitInput("RandomKLabelsets.Fit", X, Y)
	if err != nil {
		return err
	}
	if r.k > nLabels {
		return errors.NewValidationError("k", "must not exceed the number of labels", r.k)
	}
	r.state.Reset()
	start := time.Now()

	labelsets := r.drawLabelsets(nLabels)

	coverage := make([]int, nLabels)
	for _, set := range labelsets {
		for _, j := range set {
			coverage[j]++
		}
	}
	var uncovered []int
	for j, c := range coverage {
		if c == 0 {
			uncovered = append(uncovered, j)
		}
	}
	if len(uncovered) > 0 {
		errors.Warn(errors.NewLabelCoverageWarning("RandomKLabelsets", uncovered, nLabels))
	}

	codecs := make([]*powersetCodec, len(labelsets))
	clfs := make([]model.Classifier, len(labelsets))
	err = parallel.Do(r.cfg.nJobs, len(labelsets), func(m int) error {
		codec, target := newPowersetCodec(labelsets[m], Y)
		clf, err := fitClone(r.base, X, target, "RandomKLabelsets.Fit", m)
		if err != nil {
			return err
		}
		codecs[m] = codec
		clfs[m] = clf
		return nil
	})
	if err != nil {
		return err
	}

	r.labelsets = labelsets
	r.codecs = codecs
	r.clfs = clfs
	r.coverage = coverage
	r.state.SetDimensions(nFeatures, nSamples, nLabels)
	r.state.SetFitted()

	r.logger.Info("fit complete",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, nSamples,
		log.LabelsKey, nLabels,
		log.TasksKey, len(labelsets),
		log.RandomSeedKey, r.cfg.randomState,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict combines the decoded member predictions by thresholded vote.
func (r *RandomKLabelsets) Predict(X mat.Matrix) (*mat.Dense, error) {
	nSamples, nLabels, err := checkPredictInput(r.state, "RandomKLabelsets", X)
	if err != nil {
		return nil, err
	}

	// votes[m] は member m の復号済み予測 (N×L、対象外ラベルは0)
	votes := make([]*mat.Dense, len(r.clfs))
	err = parallel.Do(r.cfg.nJobs, len(r.clfs), func(m int) error {
		pred, err := r.clfs[m].Predict(X)
		if err != nil {
			return errors.Wrapf(err, "RandomKLabelsets.Predict: member %d", m)
		}
		decoded := mat.NewDense(nSamples, nLabels, nil)
		for i := 0; i < nSamples; i++ {
			if err := r.codecs[m].decode(int(pred.At(i, 0)), decoded.RawRowView(i)); err != nil {
				return errors.Wrapf(err, "RandomKLabelsets.Predict: member %d", m)
			}
		}
		votes[m] = decoded
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(nSamples, nLabels, nil)
	err = parallel.Chunks(r.cfg.nJobs, nSamples, func(start, end int) error {
		for i := start; i < end; i++ {
			row := out.RawRowView(i)
			for j := range row {
				if r.coverage[j] == 0 {
					continue
				}
				var total float64
				for _, v := range votes {
					total += v.At(i, j)
				}
				if total/float64(r.coverage[j]) >= r.cfg.voteThreshold {
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
func (r *RandomKLabelsets) NLabels() int {
	_, _, nLabels := r.state.GetDimensions()
	return nLabels
}

// Labelsets returns the labelsets drawn by the last Fit, one per member.
func (r *RandomKLabelsets) Labelsets() [][]int {
	out := make([][]int, len(r.labelsets))
	for m, set := range r.labelsets {
		out[m] = slices.Clone(set)
	}
	return out
}
