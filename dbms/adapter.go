// Package dbms composes unit conversion, per-type value parsing and
// catalog reconciliation into one normalization strategy per database
// engine.
//
// Each engine is an Adapter. Engines share the behaviour of Base and
// replace only what differs: Postgres swaps in a unit-aware integer rule
// and flattens its per-scope statistics before reconciling them. Adapters
// are looked up by engine tag in a Registry that is built once and never
// mutated.
package dbms

import (
	"github.com/ssyssy/ottertune/core/catalog"
	"github.com/ssyssy/ottertune/pkg/errors"
	"github.com/ssyssy/ottertune/preprocessing"
	"github.com/ssyssy/ottertune/validation"
)

// Adapter is the normalization strategy of one database engine.
type Adapter interface {
	// Engine returns the tag the adapter is registered under.
	Engine() catalog.EngineType

	// ParseVersionString extracts "MAJOR.MINOR" from a version banner.
	ParseVersionString(banner string) (string, error)

	// PreprocessParams converts reconciled knob values to numbers, one per
	// tunable descriptor.
	PreprocessParams(raw map[string]string, params []catalog.ParameterDescriptor) (map[string]float64, error)

	// PreprocessMetrics converts counters to per-time-unit rates and merges
	// external metrics.
	PreprocessMetrics(raw map[string]string, metrics []catalog.MetricDescriptor,
		external map[string]float64, executionTime float64) (map[string]float64, error)

	// ParseConfig reconciles a reported configuration against the catalog.
	ParseConfig(config map[string]string, params []catalog.ParameterDescriptor) (map[string]string, []validation.Diff, error)

	// ParseMetrics reconciles reported metrics against the catalog,
	// missing metrics default to "0".
	ParseMetrics(metrics RawMetrics, descriptors []catalog.MetricDescriptor) (map[string]string, []validation.Diff, error)
}

// Option configures an adapter.
type Option func(*Base)

// WithValidationOptions passes options to every reconciliation the
// adapter performs, e.g. validation.WithStrictCollisions().
func WithValidationOptions(opts ...validation.Option) Option {
	return func(b *Base) {
		b.validationOpts = append(b.validationOpts, opts...)
	}
}

// WithRules replaces the adapter's value rules.
func WithRules(rules preprocessing.Rules) Option {
	return func(b *Base) {
		b.rules = rules
	}
}

// Base implements the engine-independent parts of Adapter. It is meant to
// be embedded by engine adapters; on its own it cannot parse versions or
// string values.
type Base struct {
	engine         catalog.EngineType
	rules          preprocessing.Rules
	validationOpts []validation.Option
}

// NewBase returns a Base using the default rule table.
func NewBase(engine catalog.EngineType, opts ...Option) Base {
	b := Base{engine: engine, rules: preprocessing.DefaultRules(string(engine))}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Engine implements Adapter.
func (b *Base) Engine() catalog.EngineType {
	return b.engine
}

// Rules returns the value rules in use.
func (b *Base) Rules() preprocessing.Rules {
	return b.rules
}

// ParseVersionString implements Adapter. Version banners are engine
// specific, so Base has no implementation.
func (b *Base) ParseVersionString(string) (string, error) {
	return "", errors.NewAbstractMethodNotImplemented(string(b.engine), "ParseVersionString")
}

// PreprocessParams implements Adapter.
func (b *Base) PreprocessParams(raw map[string]string, params []catalog.ParameterDescriptor) (map[string]float64, error) {
	return preprocessing.PreprocessParams(b.rules, raw, params)
}

// PreprocessMetrics implements Adapter.
func (b *Base) PreprocessMetrics(raw map[string]string, metrics []catalog.MetricDescriptor,
	external map[string]float64, executionTime float64) (map[string]float64, error) {
	return preprocessing.PreprocessMetrics(raw, metrics, external, executionTime)
}

// ParseConfig implements Adapter.
func (b *Base) ParseConfig(config map[string]string, params []catalog.ParameterDescriptor) (map[string]string, []validation.Diff, error) {
	return validation.ExtractValidKeys(config, params, b.validationOpts...)
}

// ParseMetrics implements Adapter for engines that report a flat mapping.
func (b *Base) ParseMetrics(metrics RawMetrics, descriptors []catalog.MetricDescriptor) (map[string]string, []validation.Diff, error) {
	if len(metrics.Scoped) > 0 {
		return nil, nil, errors.NewAbstractMethodNotImplemented(string(b.engine), "ParseMetrics for scoped metrics")
	}
	opts := append([]validation.Option{validation.WithDefault("0")}, b.validationOpts...)
	return validation.ExtractValidKeys(metrics.Flat, descriptors, opts...)
}
