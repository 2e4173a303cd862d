package catalog

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/ssyssy/ottertune/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Catalog は一つのエンジン・バージョンに対応する記述子の集合
type Catalog struct {
	Engine     EngineType            `yaml:"engine"`
	Version    string                `yaml:"version,omitempty"`
	Parameters []ParameterDescriptor `yaml:"parameters"`
	Metrics    []MetricDescriptor    `yaml:"metrics"`
}

// Load はYAML文書からカタログを読み込み、検証する
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if err == io.EOF {
			return nil, errors.Wrap(errors.ErrEmptyData, "catalog document")
		}
		return nil, errors.Wrap(err, "decode catalog")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile はファイルパスからカタログを読み込む
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read catalog %s", path)
	}
	c, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "catalog %s", path)
	}
	return c, nil
}

// Validate はカタログの整合性を検査する
//
// 名前は大文字小文字を無視して一意であること、列挙型のみが列挙ドメインを持つこと、
// 型タグが既知であることを要求する。
func (c *Catalog) Validate() error {
	if c.Engine != "" && !c.Engine.IsValid() {
		return errors.NewValidationError("engine", "unknown engine type", string(c.Engine))
	}

	seen := make(map[string]struct{}, len(c.Parameters))
	for _, p := range c.Parameters {
		if p.Name == "" {
			return errors.NewValidationError("parameters", "descriptor without name", p)
		}
		key := strings.ToLower(p.Name)
		if _, dup := seen[key]; dup {
			return errors.NewValidationError("parameters", "duplicate parameter name", p.Name)
		}
		seen[key] = struct{}{}

		if _, ok := varTypeNames[p.VarType]; !ok {
			return errors.NewUnknownVariableType(p.Name, p.VarType.String())
		}
		if _, ok := unitTypeNames[p.Unit]; !ok {
			return errors.NewUnknownUnitType(p.Name, p.Unit.String())
		}
		if (p.VarType == VarTypeEnum) != (len(p.EnumValues) > 0) {
			return errors.NewValidationError(p.Name, "enum domain must be present iff vartype is ENUM", p.EnumValues)
		}
	}

	seen = make(map[string]struct{}, len(c.Metrics))
	for _, m := range c.Metrics {
		if m.Name == "" {
			return errors.NewValidationError("metrics", "descriptor without name", m)
		}
		key := strings.ToLower(m.Name)
		if _, dup := seen[key]; dup {
			return errors.NewValidationError("metrics", "duplicate metric name", m.Name)
		}
		seen[key] = struct{}{}

		if _, ok := metricTypeNames[m.MetricType]; !ok {
			return errors.NewUnknownMetricType(m.Name, m.MetricType.String())
		}
	}
	return nil
}

// TunableParameters はチューニング可能なパラメータのみを宣言順に返す
func (c *Catalog) TunableParameters() []ParameterDescriptor {
	out := make([]ParameterDescriptor, 0, len(c.Parameters))
	for _, p := range c.Parameters {
		if p.Tunable {
			out = append(out, p)
		}
	}
	return out
}

// NumericMetrics は数値化対象（INFO以外）のメトリクスを宣言順に返す
func (c *Catalog) NumericMetrics() []MetricDescriptor {
	out := make([]MetricDescriptor, 0, len(c.Metrics))
	for _, m := range c.Metrics {
		if m.MetricType != MetricInfo {
			out = append(out, m)
		}
	}
	return out
}
