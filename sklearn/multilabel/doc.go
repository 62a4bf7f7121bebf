// Package multilabel turns single-label classifiers into predictors for
// label sets.
//
// Every meta-learner wraps a prototype model.Classifier and fits clones of it
// on derived binary or multi-class problems:
//
//   - BinaryRelevance fits one independent classifier per label.
//   - RandomKLabelsets (RAkEL) fits a label powerset classifier on each of
//     several random k-label subsets and combines them by majority vote.
//   - ClassifierChains fits labels in sequence, feeding earlier labels to
//     later classifiers as extra features.
//   - ProbabilisticClassifierChains samples label sets from the chain and
//     returns the one with the lowest expected F1 or rank loss.
//   - CSRPE encodes a pluggable label set cost into binary "which reference
//     label set is closer" problems and decodes them by voting. The per-label
//     vote only approximates the cost; under rank loss rows whose true set is
//     empty or full carry no training signal at all.
//
// Label matrices are N×L gonum matrices whose entries are 0 or 1. Predict
// always returns a new N×L *mat.Dense.
//
// Example:
//
//	base := linear_model.NewLogisticRegression(linear_model.WithLRRandomState(1126))
//	cc, err := multilabel.NewClassifierChains(base, multilabel.WithShuffledOrder(),
//	    multilabel.WithRandomState(1126))
//	if err != nil {
//	    return err
//	}
//	if err := cc.Fit(XTrain, YTrain); err != nil {
//	    return err
//	}
//	YPred, err := cc.Predict(XTest)
//
// All randomness derives from WithRandomState through independent PCG
// streams per sub-task, so results do not depend on WithNJobs.
package multilabel
