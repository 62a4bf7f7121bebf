package multilabel

import (
	"github.com/YuminosukeSato/mlearn/metrics"
	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

// DecisionRule is the loss ProbabilisticClassifierChains minimises in
// expectation. The set of rules is closed: F1Rule and RankLossRule.
type DecisionRule interface {
	// Name returns the name accepted by ParseDecisionRule.
	Name() string
	// Loss returns the cost of predicting candidate when sample is the truth.
	Loss(sample, candidate []float64) float64

	decisionRule()
}

// F1Rule minimises the expected 1 - F1.
type F1Rule struct{}

func (F1Rule) Name() string { return "f1" }

func (F1Rule) Loss(sample, candidate []float64) float64 {
	return metrics.F1Loss(sample, candidate)
}

func (F1Rule) decisionRule() {}

// RankLossRule minimises the expected pairwise rank loss.
type RankLossRule struct{}

func (RankLossRule) Name() string { return "rankloss" }

func (RankLossRule) Loss(sample, candidate []float64) float64 {
	return metrics.PairwiseRankLoss(sample, candidate)
}

func (RankLossRule) decisionRule() {}

// ParseDecisionRule maps "f1" and "rankloss" to their rules.
func ParseDecisionRule(name string) (DecisionRule, error) {
	switch name {
	case "f1":
		return F1Rule{}, nil
	case "rankloss":
		return RankLossRule{}, nil
	default:
		return nil, errors.NewValidationError("loss", "must be \"f1\" or \"rankloss\"", name)
	}
}

// bestCandidate returns the index of the candidate with the lowest expected
// loss under the weighted samples. Candidates double as the samples. Ties
// keep the earliest candidate.
func bestCandidate(rule DecisionRule, candidates [][]float64, weights []float64) int {
	best := 0
	bestLoss := 0.0
	for c, cand := range candidates {
		expected := 0.0
		for s, sample := range candidates {
			expected += weights[s] * rule.Loss(sample, cand)
		}
		if c == 0 || expected < bestLoss {
			best, bestLoss = c, expected
		}
	}
	return best
}
