package multilabel_test

import (
	"fmt"

	"github.com/YuminosukeSato/mlearn/metrics"
	"github.com/YuminosukeSato/mlearn/sklearn/datasets"
	"github.com/YuminosukeSato/mlearn/sklearn/linear_model"
	"github.com/YuminosukeSato/mlearn/sklearn/model_selection"
	"github.com/YuminosukeSato/mlearn/sklearn/multilabel"
)

func ExampleNewClassifierChains() {
	X, Y, err := datasets.MakeMultilabelClassification(100, 4, 3, datasets.WithRandomState(42))
	if err != nil {
		panic(err)
	}
	XTrain, XTest, YTrain, _, err := model_selection.TrainTestSplit(X, Y, 0.2, 42)
	if err != nil {
		panic(err)
	}

	base := linear_model.NewLogisticRegression(linear_model.WithLRRandomState(42))
	cc, err := multilabel.NewClassifierChains(base, multilabel.WithOrder([]int{2, 0, 1}))
	if err != nil {
		panic(err)
	}
	if err := cc.Fit(XTrain, YTrain); err != nil {
		panic(err)
	}

	YPred, err := cc.Predict(XTest)
	if err != nil {
		panic(err)
	}
	rows, cols := YPred.Dims()
	fmt.Println(rows, cols, cc.Order())
	// Output: 20 3 [2 0 1]
}

func ExampleNewCSRPE() {
	X, Y, err := datasets.MakeMultilabelClassification(60, 3, 4, datasets.WithRandomState(7))
	if err != nil {
		panic(err)
	}

	base := linear_model.NewLogisticRegression(linear_model.WithLRRandomState(7))
	csrpe, err := multilabel.NewCSRPE(metrics.PairwiseRankLoss, base, 10,
		multilabel.WithRandomState(7), multilabel.WithNJobs(-1))
	if err != nil {
		panic(err)
	}
	if err := csrpe.Fit(X, Y); err != nil {
		panic(err)
	}
	fmt.Println(csrpe.NLabels(), len(csrpe.ReferencePairs()))
	// Output: 4 10
}
