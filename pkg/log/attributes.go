// Package log defines standard attribute keys for normalization runs.
//
// Keys follow a hierarchical naming convention ("db.engine",
// "diff.kind") so that records emitted by the CLI and by callers of the
// library can be filtered the same way.

package log

// Run context
const (
	// ComponentKey identifies the package emitting the record.
	// Examples: "dbms", "dataset", "cli"
	ComponentKey = "dbnorm.component"

	// OperationKey names the normalization step being performed.
	OperationKey = "dbnorm.operation"

	// EngineKey is the engine tag of the data being normalized.
	EngineKey = "db.engine"

	// VersionKey is the MAJOR.MINOR engine version.
	VersionKey = "db.version"

	// CatalogKey is the path or name of the descriptor catalog in use.
	CatalogKey = "catalog.source"
)

// Data shape
const (
	ObservationIDKey = "observation.id"
	ObservationsKey  = "data.observations"
	KnobsKey         = "data.knobs"
	MetricsKey       = "data.metrics"
	RowsKey          = "data.rows"
	SkippedKey       = "data.skipped"
)

// Reconciliation diffs
const (
	// DiffSourceKey tells whether a diff came from the configuration or the
	// metric snapshot.
	DiffSourceKey = "diff.source"
	DiffKindKey   = "diff.kind"
	DiffCountKey  = "diff.count"
)

// Performance
const (
	DurationMsKey = "perf.duration_ms"
)

// Error context
const (
	// ErrorKindKey carries the pkg/errors Kind of a logged error, if any.
	ErrorKindKey = "error.kind"
)

// Standard values for OperationKey.
const (
	OperationParseConfig       = "parse_config"
	OperationParseMetrics      = "parse_metrics"
	OperationPreprocessParams  = "preprocess_params"
	OperationPreprocessMetrics = "preprocess_metrics"
	OperationNormalize         = "normalize"
	OperationAggregate         = "aggregate"
	OperationCombineDuplicates = "combine_duplicates"
	OperationParseVersion      = "parse_version"
)
