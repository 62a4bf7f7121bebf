package multilabel

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

// SamplingPolicy selects how ProbabilisticClassifierChains draws label sets.
type SamplingPolicy int

const (
	// SampleAncestral draws each label from a Bernoulli distribution with the
	// probability predicted for it given the labels drawn before it.
	SampleAncestral SamplingPolicy = iota
	// SampleMode takes the more probable value (p >= 0.5) at every node, so
	// every sample of a row is the greedy chain prediction.
	SampleMode
)

func (p SamplingPolicy) String() string {
	switch p {
	case SampleAncestral:
		return "ancestral"
	case SampleMode:
		return "mode"
	default:
		return "unknown"
	}
}

// setupStream is the PCG stream used for draws that happen once per Fit
// (labelsets, chain order). Task streams use the task index.
const setupStream = math.MaxUint64

type config struct {
	randomState   int64
	nJobs         int
	order         []int
	shuffleOrder  bool
	voteThreshold float64
	disjoint      bool
	nSamples      int
	policy        SamplingPolicy
}

// Option configures a meta-learner. Options that do not apply to a given
// meta-learner are ignored by it.
type Option func(*config)

// WithRandomState sets the seed. A negative value draws a seed once at
// construction, so a single instance stays reproducible across Fit calls.
func WithRandomState(seed int64) Option {
	return func(c *config) {
		c.randomState = seed
	}
}

// WithNJobs sets the number of concurrent sub-tasks with the sklearn
// convention: 0 or 1 run serially, -1 uses every CPU, -2 all but one.
func WithNJobs(nJobs int) Option {
	return func(c *config) {
		c.nJobs = nJobs
	}
}

// WithOrder fixes the chain order of ClassifierChains and
// ProbabilisticClassifierChains. It must be a permutation of 0..L-1.
func WithOrder(order []int) Option {
	return func(c *config) {
		c.order = append([]int(nil), order...)
	}
}

// WithShuffledOrder makes chains use a seeded random permutation.
func WithShuffledOrder() Option {
	return func(c *config) {
		c.shuffleOrder = true
	}
}

// WithVoteThreshold sets the fraction of covering RAkEL members that must
// vote for a label before it is predicted. A label whose vote share equals
// the threshold is predicted, so with the default 0.5 a tie predicts 1.
func WithVoteThreshold(threshold float64) Option {
	return func(c *config) {
		c.voteThreshold = threshold
	}
}

// WithDisjointLabelsets switches RAkEL to disjoint labelsets (RAkELd).
func WithDisjointLabelsets() Option {
	return func(c *config) {
		c.disjoint = true
	}
}

// WithNSamples sets the number of label sets sampled per row by
// ProbabilisticClassifierChains.
func WithNSamples(n int) Option {
	return func(c *config) {
		c.nSamples = n
	}
}

// WithSamplingPolicy selects the ProbabilisticClassifierChains sampler.
func WithSamplingPolicy(policy SamplingPolicy) Option {
	return func(c *config) {
		c.policy = policy
	}
}

func newConfig(opts []Option) (config, error) {
	c := config{
		randomState:   -1,
		nJobs:         1,
		voteThreshold: 0.5,
		nSamples:      100,
		policy:        SampleAncestral,
	}
	for _, opt := range opts {
		opt(&c)
	}

	if c.nSamples < 1 {
		return c, errors.NewValidationError("n_samples", "must be at least 1", c.nSamples)
	}
	if c.voteThreshold <= 0 || c.voteThreshold > 1 || math.IsNaN(c.voteThreshold) {
		return c, errors.NewValidationError("vote_threshold", "must be in (0, 1]", c.voteThreshold)
	}
	if c.policy != SampleAncestral && c.policy != SampleMode {
		return c, errors.NewValidationError("sampling_policy", "unknown sampling policy", int(c.policy))
	}
	if c.order != nil && c.shuffleOrder {
		return c, errors.NewValidationError("order", "cannot be combined with a shuffled order", c.order)
	}

	if c.randomState < 0 {
		c.randomState = rand.Int64()
	}
	return c, nil
}

// stream returns the random generator for one sub-task.
func (c *config) stream(task uint64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(c.randomState), task))
}
