package dbms

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ssyssy/ottertune/conversion"
	"github.com/ssyssy/ottertune/core/catalog"
	"github.com/ssyssy/ottertune/pkg/errors"
	"github.com/ssyssy/ottertune/preprocessing"
	"github.com/ssyssy/ottertune/validation"
)

var postgresVersionPattern = regexp.MustCompile(`(\d+\.\d+)\.\d+`)

// Postgres is the PostgreSQL adapter.
type Postgres struct {
	Base
}

var _ Adapter = (*Postgres)(nil)

// NewPostgres returns a PostgreSQL adapter. Integer knobs that carry a
// unit suffix ("128MB", "200ms") are converted through the byte or time
// table selected by the descriptor's unit.
func NewPostgres(opts ...Option) *Postgres {
	p := &Postgres{Base: NewBase(catalog.Postgres)}
	p.rules.Integer = p.parseInteger
	for _, opt := range opts {
		opt(&p.Base)
	}
	return p
}

func (p *Postgres) parseInteger(raw string, param catalog.ParameterDescriptor) (float64, bool, error) {
	v, ok, err := preprocessing.ParseInteger(raw, param)
	if err == nil || !errors.HasKind(err, errors.KindInvalidIntegerFormat) {
		return v, ok, err
	}

	var sys conversion.System
	switch param.Unit {
	case catalog.UnitBytes:
		sys = conversion.PostgresBytes
	case catalog.UnitMilliseconds:
		sys = conversion.PostgresTime
	default:
		return 0, false, errors.NewUnknownUnitType(param.Name, param.Unit.String())
	}
	n, err := conversion.ParseMagnitude(raw, sys)
	if err != nil {
		return 0, false, errors.NewInvalidIntegerFormat(param.Name, raw, err)
	}
	return float64(n), true, nil
}

// ParseVersionString extracts MAJOR.MINOR from the part of the banner
// before the first comma, e.g. "PostgreSQL 9.6.3 on x86_64-pc-linux-gnu,
// compiled by gcc" yields "9.6". The version must have a patch component.
func (p *Postgres) ParseVersionString(banner string) (string, error) {
	head, _, _ := strings.Cut(banner, ",")
	m := postgresVersionPattern.FindStringSubmatch(head)
	if m == nil {
		return "", errors.NewValueError("ParseVersionString", "no MAJOR.MINOR.PATCH version in "+strconv.Quote(banner))
	}
	return m[1], nil
}

// ParseMetrics flattens per-scope statistics into "<scope>.<metric>" keys,
// reconciles them against the catalog and combines repeated values: INFO
// metrics and single values are taken as is, COUNTER values are summed.
// Flat entries are treated as single-valued keys.
func (p *Postgres) ParseMetrics(metrics RawMetrics, descriptors []catalog.MetricDescriptor) (map[string]string, []validation.Diff, error) {
	flat := make(map[string][]*string)
	for scope, entries := range metrics.Scoped {
		for _, entry := range entries {
			for name, value := range entry {
				key := scope + "." + name
				flat[key] = append(flat[key], value)
			}
		}
	}
	for name, value := range metrics.Flat {
		value := value
		flat[name] = append(flat[name], &value)
	}

	zero := "0"
	valid, diffs, err := validation.Reconcile(flat, descriptors,
		func(catalog.MetricDescriptor) []*string { return []*string{&zero} },
		p.validationOpts...)
	if err != nil {
		return nil, nil, err
	}
	for i := range diffs {
		if values, ok := diffs[i].Value.([]*string); ok {
			diffs[i].Value = derefAll(values)
		}
	}

	byName := make(map[string]catalog.MetricDescriptor, len(descriptors))
	for _, d := range descriptors {
		byName[d.Name] = d
	}

	out := make(map[string]string, len(valid))
	for name, values := range valid {
		m := byName[name]
		switch {
		case m.MetricType == catalog.MetricInfo || len(values) == 1:
			if values[0] != nil {
				out[name] = *values[0]
			} else {
				out[name] = ""
			}
		case m.MetricType == catalog.MetricCounter:
			var sum int64
			for _, v := range values {
				if v == nil {
					continue
				}
				n, err := strconv.ParseInt(strings.TrimSpace(*v), 10, 64)
				if err != nil {
					return nil, nil, errors.NewInvalidIntegerFormat(name, *v, err)
				}
				sum += n
			}
			out[name] = strconv.FormatInt(sum, 10)
		default:
			return nil, nil, errors.NewUnknownMetricType(name, m.MetricType.String())
		}
	}
	return out, diffs, nil
}

func derefAll(values []*string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if v != nil {
			out[i] = *v
		}
	}
	return out
}
