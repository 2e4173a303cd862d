// Package cli implements the dbnorm command line tool.
//
// dbnorm normalizes database configuration and metric snapshots against a
// descriptor catalog and aggregates normalized observations into matrices:
//
//	dbnorm params    --catalog pg96.yaml --config knobs.json
//	dbnorm metrics   --catalog pg96.yaml --metrics stats.json --execution-time 60s
//	dbnorm aggregate --catalog pg96.yaml --observations runs.json --dedupe
//	dbnorm version   "PostgreSQL 9.6.3 on x86_64-pc-linux-gnu, compiled by gcc"
//
// Results are written as JSON or YAML (--format). Reconciliation diffs are
// logged as warnings on stderr together with the rest of the structured log.
//
// Environment variables:
//
//	DBNORM_ENGINE     default for --engine
//	DBNORM_LOG_LEVEL  default for --log-level
package cli
