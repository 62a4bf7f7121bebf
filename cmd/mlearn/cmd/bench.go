package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlearn/core/model"
	"github.com/YuminosukeSato/mlearn/metrics"
	"github.com/YuminosukeSato/mlearn/pkg/errors"
	"github.com/YuminosukeSato/mlearn/pkg/log"
	"github.com/YuminosukeSato/mlearn/preprocessing"
	"github.com/YuminosukeSato/mlearn/sklearn/datasets"
	"github.com/YuminosukeSato/mlearn/sklearn/linear_model"
	"github.com/YuminosukeSato/mlearn/sklearn/model_selection"
	"github.com/YuminosukeSato/mlearn/sklearn/multilabel"
)

const defaultAlgorithms = "br,rakel,cc,pcc-f1,pcc-rankloss,csrpe"

// benchConfig is the resolved configuration of one bench run.
type benchConfig struct {
	samples     int
	features    int
	labels      int
	noise       float64
	correlation float64
	testSize    float64
	seed        int64
	nJobs       int
	scaler      string

	algorithms []string
	k          int
	nClfs      int
	nSamples   int
	csrpeLoss  string

	base    string
	c       float64
	maxIter int

	plot string
}

func loadBenchConfig(v *viper.Viper) benchConfig {
	var algorithms []string
	for _, name := range strings.Split(v.GetString("algorithms"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			algorithms = append(algorithms, strings.ToLower(name))
		}
	}
	return benchConfig{
		samples:     v.GetInt("samples"),
		features:    v.GetInt("features"),
		labels:      v.GetInt("labels"),
		noise:       v.GetFloat64("noise"),
		correlation: v.GetFloat64("correlation"),
		testSize:    v.GetFloat64("test-size"),
		seed:        v.GetInt64("seed"),
		nJobs:       v.GetInt("n-jobs"),
		scaler:      strings.ToLower(v.GetString("scaler")),
		algorithms:  algorithms,
		k:           v.GetInt("k"),
		nClfs:       v.GetInt("n-clfs"),
		nSamples:    v.GetInt("n-samples"),
		csrpeLoss:   v.GetString("csrpe-loss"),
		base:        strings.ToLower(v.GetString("base")),
		c:           v.GetFloat64("C"),
		maxIter:     v.GetInt("max-iter"),
		plot:        v.GetString("plot"),
	}
}

func newBenchCommand(v *viper.Viper) *cobra.Command {
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "train and score the meta-learners on synthetic data",
		Long: `Generate a synthetic multi-label dataset, split it, train every selected
algorithm on the training part and report Hamming loss, example-based F1,
pairwise rank loss and subset accuracy on the test part.

Algorithms: br, rakel, cc, pcc-f1, pcc-rankloss, csrpe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.OutOrStdout(), loadBenchConfig(v))
		},
	}

	f := benchCmd.Flags()
	f.Int("samples", 300, "number of synthetic samples")
	f.Int("features", 10, "number of features")
	f.Int("labels", 5, "number of labels")
	f.Float64("noise", 0.1, "standard deviation of the label noise")
	f.Float64("correlation", 0.5, "strength of the dependency on the previous label")
	f.Float64("test-size", 0.3, "fraction of samples held out for scoring")
	f.Int64("seed", 42, "random seed for data, split and models")
	f.Int("n-jobs", 1, "parallel workers per model (-1 = all CPUs)")
	f.String("scaler", "standard", "feature scaling before training: standard, minmax, none")
	f.String("algorithms", defaultAlgorithms, "comma separated list of algorithms")
	f.Int("k", 3, "labelset size for rakel")
	f.Int("n-clfs", 10, "ensemble size for rakel and csrpe")
	f.Int("n-samples", 50, "label vectors sampled per row by pcc")
	f.String("csrpe-loss", "hamming", "cost function for csrpe: hamming, f1, rankloss")
	f.String("base", "lr", "base classifier: lr (logistic regression), pa (passive aggressive)")
	f.Float64("C", 1.0, "inverse regularization strength of the base classifier")
	f.Int("max-iter", 200, "iterations of the base classifier")
	f.String("plot", "", "write a bar chart of the scores to this file (png, svg, pdf)")
	return benchCmd
}

// benchResult holds the test scores of one algorithm.
type benchResult struct {
	name           string
	hamming        float64
	f1             float64
	rankLoss       float64
	subsetAccuracy float64
	fitTime        time.Duration
}

func runBench(w io.Writer, cfg benchConfig) error {
	logger := log.GetLoggerWithName("cmd.bench")
	if len(cfg.algorithms) == 0 {
		return errors.NewValidationError("algorithms", "at least one algorithm is required", cfg.algorithms)
	}

	X, Y, err := datasets.MakeMultilabelClassification(cfg.samples, cfg.features, cfg.labels,
		datasets.WithRandomState(cfg.seed),
		datasets.WithNoise(cfg.noise),
		datasets.WithLabelCorrelation(cfg.correlation),
	)
	if err != nil {
		return err
	}
	XTrain, XTest, YTrain, YTest, err := model_selection.TrainTestSplit(X, Y, cfg.testSize, cfg.seed)
	if err != nil {
		return err
	}
	scaler, err := newScaler(cfg.scaler)
	if err != nil {
		return err
	}
	if scaler != nil {
		if XTrain, err = scaler.FitTransform(XTrain); err != nil {
			return err
		}
		if XTest, err = scaler.Transform(XTest); err != nil {
			return err
		}
	}

	nTrain, _ := XTrain.Dims()
	nTest, _ := XTest.Dims()
	fmt.Fprintf(w, "dataset: n_samples=%d n_features=%d n_labels=%d (train %d / test %d)\n",
		cfg.samples, cfg.features, cfg.labels, nTrain, nTest)

	base, err := newBase(cfg)
	if err != nil {
		return err
	}

	results := make([]benchResult, 0, len(cfg.algorithms))
	for _, name := range cfg.algorithms {
		clf, err := newAlgorithm(name, base, cfg)
		if err != nil {
			return err
		}

		start := time.Now()
		if err := clf.Fit(XTrain, YTrain); err != nil {
			return errors.Wrapf(err, "%s", name)
		}
		fitTime := time.Since(start)

		YPred, err := clf.Predict(XTest)
		if err != nil {
			return errors.Wrapf(err, "%s", name)
		}
		res, err := score(name, YTest, YPred)
		if err != nil {
			return err
		}
		res.fitTime = fitTime
		results = append(results, res)

		logger.Info("algorithm scored",
			"algorithm", name,
			log.DurationMsKey, fitTime.Milliseconds(),
			"hamming_loss", res.hamming,
		)
	}

	if err := writeTable(w, results); err != nil {
		return err
	}
	if cfg.plot != "" {
		if err := plotResults(cfg.plot, results); err != nil {
			return err
		}
		fmt.Fprintf(w, "chart written to %s\n", cfg.plot)
	}
	return nil
}

// newScaler は名前から特徴量の変換器を構築する。"none" なら nil
func newScaler(name string) (model.Transformer, error) {
	switch name {
	case "standard":
		return preprocessing.NewStandardScaler(true, true), nil
	case "minmax":
		return preprocessing.NewMinMaxScaler([2]float64{0, 1}), nil
	case "none":
		return nil, nil
	default:
		return nil, errors.NewValidationError("scaler", "must be one of standard, minmax, none", name)
	}
}

// newBase はメタ学習器がクローンするベース分類器を構築する
func newBase(cfg benchConfig) (model.Classifier, error) {
	switch cfg.base {
	case "lr":
		return linear_model.NewLogisticRegression(
			linear_model.WithLRC(cfg.c),
			linear_model.WithLRMaxIter(cfg.maxIter),
			linear_model.WithLRRandomState(cfg.seed),
		), nil
	case "pa":
		return linear_model.NewPassiveAggressiveClassifier(
			linear_model.WithPAC(cfg.c),
			linear_model.WithPAMaxIter(cfg.maxIter),
			linear_model.WithPARandomState(cfg.seed),
		), nil
	default:
		return nil, errors.NewValidationError("base", "must be lr or pa", cfg.base)
	}
}

// newAlgorithm は名前からメタ学習器を構築する
func newAlgorithm(name string, base model.Classifier, cfg benchConfig) (model.MultiLabelClassifier, error) {
	opts := []multilabel.Option{
		multilabel.WithRandomState(cfg.seed),
		multilabel.WithNJobs(cfg.nJobs),
	}
	switch name {
	case "br":
		return multilabel.NewBinaryRelevance(base, opts...)
	case "rakel":
		return multilabel.NewRandomKLabelsets(base, cfg.nClfs, cfg.k, opts...)
	case "cc":
		return multilabel.NewClassifierChains(base, opts...)
	case "pcc-f1", "pcc-rankloss":
		opts = append(opts, multilabel.WithNSamples(cfg.nSamples))
		return multilabel.NewProbabilisticClassifierChains(base, strings.TrimPrefix(name, "pcc-"), opts...)
	case "csrpe":
		loss, err := parseLabelSetLoss(cfg.csrpeLoss)
		if err != nil {
			return nil, err
		}
		return multilabel.NewCSRPE(loss, base, cfg.nClfs, opts...)
	default:
		return nil, errors.NewValidationError("algorithms", "unknown algorithm", name)
	}
}

func parseLabelSetLoss(name string) (metrics.LabelSetLoss, error) {
	switch strings.ToLower(name) {
	case "hamming":
		return metrics.HammingLossRow, nil
	case "f1":
		return metrics.F1Loss, nil
	case "rankloss":
		return metrics.PairwiseRankLoss, nil
	default:
		return nil, errors.NewValidationError("csrpe-loss", "must be one of hamming, f1, rankloss", name)
	}
}

func score(name string, YTrue, YPred mat.Matrix) (benchResult, error) {
	res := benchResult{name: name}
	var err error
	if res.hamming, err = metrics.HammingLoss(YTrue, YPred); err != nil {
		return res, err
	}
	if res.f1, err = metrics.F1Score(YTrue, YPred); err != nil {
		return res, err
	}
	if res.rankLoss, err = metrics.PairwiseRankLossMatrix(YTrue, YPred); err != nil {
		return res, err
	}
	if res.subsetAccuracy, err = metrics.SubsetAccuracy(YTrue, YPred); err != nil {
		return res, err
	}
	return res, nil
}

func writeTable(w io.Writer, results []benchResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ALGORITHM\tHAMMING\tF1\tRANK LOSS\tSUBSET ACC\tFIT")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%s\n",
			r.name, r.hamming, r.f1, r.rankLoss, r.subsetAccuracy, r.fitTime.Round(time.Millisecond))
	}
	return tw.Flush()
}
