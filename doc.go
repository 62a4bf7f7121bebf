// Package mlearn provides multi-label classification meta-learners for Go.
//
// A multi-label problem assigns every sample a set of labels, stored as a
// row of a binary label matrix Y (n_samples x n_labels). The meta-learners
// reduce it to binary or multi-class problems solved by any base classifier
// implementing model.Classifier, e.g. linear_model.LogisticRegression.
//
// # Installation
//
//	go get github.com/YuminosukeSato/mlearn
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/mlearn/metrics"
//	    "github.com/YuminosukeSato/mlearn/sklearn/datasets"
//	    "github.com/YuminosukeSato/mlearn/sklearn/linear_model"
//	    "github.com/YuminosukeSato/mlearn/sklearn/model_selection"
//	    "github.com/YuminosukeSato/mlearn/sklearn/multilabel"
//	)
//
//	func main() {
//	    X, Y, err := datasets.MakeMultilabelClassification(300, 10, 5, datasets.WithRandomState(42))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    XTrain, XTest, YTrain, YTest, err := model_selection.TrainTestSplit(X, Y, 0.3, 42)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    base := linear_model.NewLogisticRegression()
//	    pcc, err := multilabel.NewProbabilisticClassifierChains(base, "f1",
//	        multilabel.WithRandomState(42),
//	        multilabel.WithNJobs(-1),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := pcc.Fit(XTrain, YTrain); err != nil {
//	        log.Fatal(err)
//	    }
//	    YPred, err := pcc.Predict(XTest)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    f1, _ := metrics.F1Score(YTest, YPred)
//	    fmt.Printf("F1: %.4f\n", f1)
//	}
//
// # Packages
//
//   - sklearn/multilabel: BinaryRelevance, RandomKLabelsets, ClassifierChains,
//     ProbabilisticClassifierChains, CSRPE
//   - sklearn/linear_model: LogisticRegression base classifier
//   - sklearn/datasets: synthetic multi-label data
//   - sklearn/model_selection: TrainTestSplit
//   - metrics: Hamming loss, F1, pairwise rank loss, subset accuracy
//   - preprocessing: StandardScaler, MinMaxScaler
//   - core/model, core/parallel: estimator interfaces and the n_jobs worker pool
//   - pkg/errors, pkg/log: structured errors and zerolog based logging
//
// The mlearn command (cmd/mlearn) benchmarks the algorithms from the shell.
package mlearn
