package dbms

import (
	"github.com/ssyssy/ottertune/core/catalog"
	"github.com/ssyssy/ottertune/pkg/errors"
	"github.com/ssyssy/ottertune/validation"
)

// RawObservation is one collected sample: the reported configuration,
// the metric snapshot and the workload's external measurements.
type RawObservation struct {
	ID              string             `json:"id" yaml:"id"`
	Config          map[string]string  `json:"config" yaml:"config"`
	Metrics         RawMetrics         `json:"metrics" yaml:"metrics"`
	ExternalMetrics map[string]float64 `json:"external_metrics,omitempty" yaml:"external_metrics,omitempty"`
	ExecutionTime   float64            `json:"execution_time" yaml:"execution_time"`
}

// NormalizedRecord holds the numeric knob and metric vectors of one
// observation, keyed by canonical name.
type NormalizedRecord struct {
	ID      string             `json:"id" yaml:"id"`
	Params  map[string]float64 `json:"params" yaml:"params"`
	Metrics map[string]float64 `json:"metrics" yaml:"metrics"`
}

// Diffs collects the reconciliation diffs produced while normalizing.
type Diffs struct {
	Config  []validation.Diff `json:"config,omitempty" yaml:"config,omitempty"`
	Metrics []validation.Diff `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// Len returns the total number of diffs.
func (d Diffs) Len() int {
	return len(d.Config) + len(d.Metrics)
}

// Normalize runs the whole pipeline for one observation: the configuration
// is reconciled against params and its tunable knobs converted, the metric
// snapshot is reconciled against metrics and its numeric entries turned
// into rates. Either both vectors are returned or an error is.
func (r *Registry) Normalize(engine catalog.EngineType, obs RawObservation,
	params []catalog.ParameterDescriptor, metrics []catalog.MetricDescriptor) (NormalizedRecord, Diffs, error) {
	a, err := r.Lookup(engine)
	if err != nil {
		return NormalizedRecord{}, Diffs{}, err
	}

	config, configDiffs, err := a.ParseConfig(obs.Config, params)
	if err != nil {
		return NormalizedRecord{}, Diffs{}, errors.Wrapf(err, "observation %s", obs.ID)
	}
	tunable := make([]catalog.ParameterDescriptor, 0, len(params))
	tunableValues := make(map[string]string, len(config))
	for _, p := range params {
		if p.Tunable {
			tunable = append(tunable, p)
			tunableValues[p.Name] = config[p.Name]
		}
	}
	paramValues, err := a.PreprocessParams(tunableValues, tunable)
	if err != nil {
		return NormalizedRecord{}, Diffs{}, errors.Wrapf(err, "observation %s", obs.ID)
	}

	metricValues, metricDiffs, err := a.ParseMetrics(obs.Metrics, metrics)
	if err != nil {
		return NormalizedRecord{}, Diffs{}, errors.Wrapf(err, "observation %s", obs.ID)
	}
	numeric := make([]catalog.MetricDescriptor, 0, len(metrics))
	numericValues := make(map[string]string, len(metricValues))
	for _, m := range metrics {
		if m.MetricType != catalog.MetricInfo {
			numeric = append(numeric, m)
			numericValues[m.Name] = metricValues[m.Name]
		}
	}
	rates, err := a.PreprocessMetrics(numericValues, numeric, obs.ExternalMetrics, obs.ExecutionTime)
	if err != nil {
		return NormalizedRecord{}, Diffs{}, errors.Wrapf(err, "observation %s", obs.ID)
	}

	return NormalizedRecord{ID: obs.ID, Params: paramValues, Metrics: rates},
		Diffs{Config: configDiffs, Metrics: metricDiffs}, nil
}
