// Package log defines standard attribute keys for machine learning operations.
//
// These keys follow a hierarchical naming convention (e.g., "model.name",
// "data.samples") to enable structured log analysis and filtering.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model.
	// Examples: "BinaryRelevance", "RandomKLabelsets", "LogisticRegression"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is logging.
	// Set automatically by GetLoggerWithName.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// LabelsKey indicates the number of labels of a multi-label problem.
	LabelsKey = "data.labels"
)

// Ensemble and Task Context
const (
	// TasksKey records how many sub-classifiers a meta-learner trains.
	TasksKey = "ensemble.tasks"

	// TaskIndexKey identifies a single sub-classifier (label, labelset, member).
	TaskIndexKey = "ensemble.task"

	// WorkersKey records the resolved degree of parallelism.
	WorkersKey = "ensemble.workers"

	// ChainOrderKey records the label order of a classifier chain.
	ChainOrderKey = "chain.order"

	// SamplesDrawnKey records Monte Carlo samples drawn per example.
	SamplesDrawnKey = "inference.samples"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey records loss value during training or evaluation.
	LossKey = "metrics.loss"

	// IterationKey records the current iteration number during iterative processes.
	IterationKey = "training.iteration"
)

// Error and Configuration Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	// Automatically populated by Logger.Error.
	StacktraceKey = "error.stacktrace"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute value constants for common operations.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"

	PhaseTraining  = "training"
	PhaseInference = "inference"
)
