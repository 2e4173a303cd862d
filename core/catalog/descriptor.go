// Package catalog は正規化処理が参照するパラメータ・メトリクスの記述子を定義する。
//
// 記述子はカタログのバージョンごとに一度だけ読み込まれ、正規化の間は読み取り専用として扱う。
package catalog

// Descriptor はカタログ照合で使用される記述子の共通インターフェース
type Descriptor interface {
	// DescriptorName はカタログ内で一意な正式名を返す
	DescriptorName() string
	// DefaultValue は値が欠落している場合に使う既定値を返す
	DefaultValue() string
}

// ParameterDescriptor はチューニング可能なパラメータ（ノブ）の記述子
type ParameterDescriptor struct {
	Name       string   `yaml:"name" json:"name"`
	VarType    VarType  `yaml:"vartype" json:"vartype"`
	Unit       UnitType `yaml:"unit" json:"unit"`
	EnumValues []string `yaml:"enumvals,omitempty" json:"enumvals,omitempty"`
	Tunable    bool     `yaml:"tunable" json:"tunable"`
	Default    string   `yaml:"default" json:"default"`
}

// DescriptorName は Descriptor を実装する
func (p ParameterDescriptor) DescriptorName() string { return p.Name }

// DefaultValue は Descriptor を実装する
func (p ParameterDescriptor) DefaultValue() string { return p.Default }

// MetricDescriptor はメトリクスの記述子
type MetricDescriptor struct {
	Name       string     `yaml:"name" json:"name"`
	MetricType MetricType `yaml:"metric_type" json:"metric_type"`
	Default    string     `yaml:"default" json:"default"`
}

// DescriptorName は Descriptor を実装する
func (m MetricDescriptor) DescriptorName() string { return m.Name }

// DefaultValue は Descriptor を実装する
func (m MetricDescriptor) DefaultValue() string { return m.Default }

// Names は記述子の正式名を宣言順に返す
func Names[D Descriptor](descriptors []D) []string {
	names := make([]string, len(descriptors))
	for i, d := range descriptors {
		names[i] = d.DescriptorName()
	}
	return names
}
