// Package ottertune normalizes database configuration and telemetry for
// tuning analysis.
//
// A tuning service collects, for every run of a workload, the knob
// settings the database reports and a snapshot of its statistics. Those
// raw strings differ between engines and versions in capitalization, in
// unit suffixes ("128MB", "5min") and in shape (flat mappings or per-scope
// sequences). The packages in this module turn them into fixed-length
// numeric vectors keyed by a versioned descriptor catalog, and stack the
// vectors into matrices.
//
// # Quick Start
//
//	registry := dbms.DefaultRegistry()
//	rec, diffs, err := registry.Normalize(catalog.Postgres, obs, cat.Parameters, cat.Metrics)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	validation.Report("config", diffs.Config)
//
//	o, _ := dataset.NewObservation(rec.ID, rec.Params, rec.Metrics)
//	m, err := dataset.AggregateData([]dataset.Observation{o}, knobs, metrics)
//
// # Packages
//
//   - core/catalog: parameter and metric descriptors, YAML catalogs
//   - conversion: unit-suffixed magnitudes ("8kB", "200ms")
//   - preprocessing: per-type value rules, counter rates
//   - validation: reconciling reported keys against a catalog
//   - dbms: per-engine adapters and the engine registry
//   - dataset: observation matrices and duplicate-row merging
//   - pkg/errors: structured error kinds and the warning channel
//   - pkg/log: slog/zerolog setup
//   - pkg/cli, cmd/dbnorm: the dbnorm command
//
// # Error Handling
//
// Every failure carries a Kind recoverable with errors.KindOf, together
// with the parameter name and raw value involved. Reconciliation diffs are
// never errors; they accompany successful results.
package ottertune
