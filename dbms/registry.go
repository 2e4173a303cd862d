package dbms

import (
	"github.com/Masterminds/semver/v3"

	"github.com/ssyssy/ottertune/core/catalog"
	"github.com/ssyssy/ottertune/pkg/errors"
	"github.com/ssyssy/ottertune/validation"
)

// Registry maps engine tags to adapters. It is built once and never
// mutated, so it can be shared freely.
type Registry struct {
	adapters map[catalog.EngineType]Adapter
}

// NewRegistry builds a registry from adapters. Registering two adapters
// for the same engine is an error.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{adapters: make(map[catalog.EngineType]Adapter, len(adapters))}
	for _, a := range adapters {
		if a == nil {
			return nil, errors.NewValueError("NewRegistry", "nil adapter")
		}
		engine := a.Engine()
		if _, dup := r.adapters[engine]; dup {
			return nil, errors.NewValueError("NewRegistry", "duplicate adapter for engine "+string(engine))
		}
		r.adapters[engine] = a
	}
	return r, nil
}

// DefaultRegistry returns a registry holding every built-in adapter.
// Options are applied to each of them.
func DefaultRegistry(opts ...Option) *Registry {
	r, err := NewRegistry(NewPostgres(opts...))
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the adapter for engine, or a NotImplementedForEngine error.
func (r *Registry) Lookup(engine catalog.EngineType) (Adapter, error) {
	a, ok := r.adapters[engine]
	if !ok {
		return nil, errors.NewNotImplementedForEngine(string(engine))
	}
	return a, nil
}

// Engines returns the registered engine tags in sorted order.
func (r *Registry) Engines() []catalog.EngineType {
	keys := sortedKeys(r.adapters)
	out := make([]catalog.EngineType, len(keys))
	for i, k := range keys {
		out[i] = catalog.EngineType(k)
	}
	return out
}

// ParseVersionString dispatches to the adapter of engine.
func (r *Registry) ParseVersionString(engine catalog.EngineType, banner string) (string, error) {
	a, err := r.Lookup(engine)
	if err != nil {
		return "", err
	}
	return a.ParseVersionString(banner)
}

// ParseVersion extracts MAJOR.MINOR from banner and returns it as a
// comparable semantic version (patch is always 0).
func (r *Registry) ParseVersion(engine catalog.EngineType, banner string) (*semver.Version, error) {
	s, err := r.ParseVersionString(engine, banner)
	if err != nil {
		return nil, err
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s version %q", engine, s)
	}
	return v, nil
}

// PreprocessParams dispatches to the adapter of engine.
func (r *Registry) PreprocessParams(engine catalog.EngineType, raw map[string]string,
	params []catalog.ParameterDescriptor) (map[string]float64, error) {
	a, err := r.Lookup(engine)
	if err != nil {
		return nil, err
	}
	return a.PreprocessParams(raw, params)
}

// PreprocessMetrics dispatches to the adapter of engine.
func (r *Registry) PreprocessMetrics(engine catalog.EngineType, raw map[string]string,
	metrics []catalog.MetricDescriptor, external map[string]float64, executionTime float64) (map[string]float64, error) {
	a, err := r.Lookup(engine)
	if err != nil {
		return nil, err
	}
	return a.PreprocessMetrics(raw, metrics, external, executionTime)
}

// ParseConfig dispatches to the adapter of engine.
func (r *Registry) ParseConfig(engine catalog.EngineType, config map[string]string,
	params []catalog.ParameterDescriptor) (map[string]string, []validation.Diff, error) {
	a, err := r.Lookup(engine)
	if err != nil {
		return nil, nil, err
	}
	return a.ParseConfig(config, params)
}

// ParseMetrics dispatches to the adapter of engine.
func (r *Registry) ParseMetrics(engine catalog.EngineType, metrics RawMetrics,
	descriptors []catalog.MetricDescriptor) (map[string]string, []validation.Diff, error) {
	a, err := r.Lookup(engine)
	if err != nil {
		return nil, nil, err
	}
	return a.ParseMetrics(metrics, descriptors)
}
