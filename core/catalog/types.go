package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ssyssy/ottertune/pkg/errors"
)

// VarType はパラメータの宣言型を表す
type VarType int

const (
	// VarTypeString は文字列型
	VarTypeString VarType = iota + 1
	// VarTypeInteger は整数型
	VarTypeInteger
	// VarTypeReal は実数型
	VarTypeReal
	// VarTypeBool は真偽値型
	VarTypeBool
	// VarTypeEnum は列挙型
	VarTypeEnum
	// VarTypeTimestamp はタイムスタンプ型
	VarTypeTimestamp
)

var varTypeNames = map[VarType]string{
	VarTypeString:    "STRING",
	VarTypeInteger:   "INTEGER",
	VarTypeReal:      "REAL",
	VarTypeBool:      "BOOL",
	VarTypeEnum:      "ENUM",
	VarTypeTimestamp: "TIMESTAMP",
}

func (t VarType) String() string {
	if name, ok := varTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("VarType(%d)", int(t))
}

// UnmarshalYAML は名前（大文字小文字を区別しない）または数値を受け付ける
func (t *VarType) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeEnum(node, varTypeNames)
	if err != nil {
		return fmt.Errorf("vartype: %w", err)
	}
	*t = v
	return nil
}

// UnitType はパラメータの単位を表す
type UnitType int

const (
	// UnitNone は単位なし
	UnitNone UnitType = iota
	// UnitBytes はバイト単位
	UnitBytes
	// UnitMilliseconds はミリ秒単位
	UnitMilliseconds
	// UnitOther はその他の単位
	UnitOther
)

var unitTypeNames = map[UnitType]string{
	UnitNone:         "NONE",
	UnitBytes:        "BYTES",
	UnitMilliseconds: "MILLISECONDS",
	UnitOther:        "OTHER",
}

func (u UnitType) String() string {
	if name, ok := unitTypeNames[u]; ok {
		return name
	}
	return fmt.Sprintf("UnitType(%d)", int(u))
}

// UnmarshalYAML は名前（大文字小文字を区別しない）または数値を受け付ける
func (u *UnitType) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeEnum(node, unitTypeNames)
	if err != nil {
		return fmt.Errorf("unit: %w", err)
	}
	*u = v
	return nil
}

// MetricType はメトリクスの種類を表す
type MetricType int

const (
	// MetricCounter は単調増加するカウンタ
	MetricCounter MetricType = iota + 1
	// MetricInfo は数値化しない情報メトリクス
	MetricInfo
)

var metricTypeNames = map[MetricType]string{
	MetricCounter: "COUNTER",
	MetricInfo:    "INFO",
}

func (m MetricType) String() string {
	if name, ok := metricTypeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MetricType(%d)", int(m))
}

// UnmarshalYAML は名前（大文字小文字を区別しない）または数値を受け付ける
func (m *MetricType) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeEnum(node, metricTypeNames)
	if err != nil {
		return fmt.Errorf("metric_type: %w", err)
	}
	*m = v
	return nil
}

// BooleanType は真偽値パラメータの数値表現
type BooleanType int

const (
	False BooleanType = 0
	True  BooleanType = 1
)

// EngineType はデータベースエンジンの識別タグ
type EngineType string

const (
	MySQL     EngineType = "mysql"
	Postgres  EngineType = "postgres"
	DB2       EngineType = "db2"
	Oracle    EngineType = "oracle"
	SQLServer EngineType = "sqlserver"
	SQLite    EngineType = "sqlite"
	HStore    EngineType = "hstore"
	Vector    EngineType = "vector"
	MyRocks   EngineType = "myrocks"
)

var knownEngines = []EngineType{MySQL, Postgres, DB2, Oracle, SQLServer, SQLite, HStore, Vector, MyRocks}

// ParseEngineType は大文字小文字を区別せずにエンジンタグを解釈する
func ParseEngineType(s string) (EngineType, error) {
	e := EngineType(strings.ToLower(strings.TrimSpace(s)))
	if !e.IsValid() {
		return "", errors.Newf("unknown engine type: %q", s)
	}
	return e, nil
}

// IsValid は既知のエンジンタグかどうかを返す
func (e EngineType) IsValid() bool {
	for _, k := range knownEngines {
		if e == k {
			return true
		}
	}
	return false
}

func (e EngineType) String() string {
	return string(e)
}

func decodeEnum[T ~int](node *yaml.Node, names map[T]string) (T, error) {
	if node.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("expected scalar, got %v", node.Tag)
	}
	if n, err := strconv.Atoi(node.Value); err == nil {
		if _, ok := names[T(n)]; !ok {
			return 0, fmt.Errorf("unknown value %d", n)
		}
		return T(n), nil
	}
	for v, name := range names {
		if strings.EqualFold(name, node.Value) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown value %q", node.Value)
}
