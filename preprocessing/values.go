package preprocessing

import (
	"math"
	"strconv"
	"strings"

	"github.com/ssyssy/ottertune/core/catalog"
	"github.com/ssyssy/ottertune/pkg/errors"
)

// Rule は一つの VarType に対する文字列→数値の変換規則
//
// ok が false の場合は「値なし」を意味し、呼び出し側で NullParameterValue として扱われる。
type Rule func(raw string, p catalog.ParameterDescriptor) (value float64, ok bool, err error)

// Rules は VarType ごとの変換規則表
//
// エンジン実装は DefaultRules() の結果をコピーし、異なる規則だけを差し替える。
// nil の規則はそのエンジンでは提供されない（AbstractMethodNotImplemented）。
type Rules struct {
	// Engine はエラーメッセージに使うエンジン名
	Engine string

	Bool      Rule
	Enum      Rule
	Integer   Rule
	Real      Rule
	String    Rule
	Timestamp Rule
}

// DefaultRules は全エンジン共通の既定規則表を返す
//
// STRING はエスケープや引用符の規約がエンジン依存のため既定では提供しない。
// TIMESTAMP は呼び出されると TimestampNotImplemented で失敗する。
func DefaultRules(engine string) Rules {
	return Rules{
		Engine:  engine,
		Bool:    ParseBool,
		Enum:    ParseEnum,
		Integer: ParseInteger,
		Real:    ParseReal,
		Timestamp: func(_ string, p catalog.ParameterDescriptor) (float64, bool, error) {
			return 0, false, errors.NewTimestampNotImplemented(engine, p.Name)
		},
	}
}

// Apply は記述子の VarType に応じて規則を選び、生の値を変換する
func (r Rules) Apply(raw string, p catalog.ParameterDescriptor) (float64, bool, error) {
	var rule Rule
	switch p.VarType {
	case catalog.VarTypeBool:
		rule = r.Bool
	case catalog.VarTypeEnum:
		rule = r.Enum
	case catalog.VarTypeInteger:
		rule = r.Integer
	case catalog.VarTypeReal:
		rule = r.Real
	case catalog.VarTypeString:
		rule = r.String
	case catalog.VarTypeTimestamp:
		rule = r.Timestamp
	default:
		return 0, false, errors.NewUnknownVariableType(p.Name, p.VarType.String())
	}
	if rule == nil {
		return 0, false, errors.NewAbstractMethodNotImplemented(r.Engine, "preprocess "+p.VarType.String())
	}
	return rule(raw, p)
}

// ParseBool は "on"（大文字小文字を区別しない）を TRUE、それ以外を FALSE に変換する
func ParseBool(raw string, _ catalog.ParameterDescriptor) (float64, bool, error) {
	if strings.EqualFold(raw, "on") {
		return float64(catalog.True), true, nil
	}
	return float64(catalog.False), true, nil
}

// ParseEnum は列挙ドメイン内の位置（0始まり）を返す。比較は完全一致
func ParseEnum(raw string, p catalog.ParameterDescriptor) (float64, bool, error) {
	for i, v := range p.EnumValues {
		if v == raw {
			return float64(i), true, nil
		}
	}
	return 0, false, errors.NewInvalidEnumValue(p.Name, raw)
}

// ParseInteger は整数として解釈し、失敗した場合は実数として解釈して切り捨てる
func ParseInteger(raw string, p catalog.ParameterDescriptor) (float64, bool, error) {
	n, err := IntegerValue(p.Name, raw)
	if err != nil {
		return 0, false, err
	}
	return float64(n), true, nil
}

// ParseReal は実数として解釈する。単位付きの値へのフォールバックはない
func ParseReal(raw string, p catalog.ParameterDescriptor) (float64, bool, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false, errors.NewInvalidRealFormat(p.Name, raw, err)
	}
	if err := errors.CheckScalar("ParseReal", p.Name, f); err != nil {
		return 0, false, errors.NewInvalidRealFormat(p.Name, raw, err)
	}
	return f, true, nil
}

// IntegerValue は既定の整数解釈。整数として読めなければ実数として読み、0方向に切り捨てる
//
// どちらにも失敗した場合は name と raw を含む InvalidIntegerFormat を返す。
func IntegerValue(name, raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.NewInvalidIntegerFormat(name, raw, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, errors.NewInvalidIntegerFormat(name, raw, errors.NewNonFiniteValueError("IntegerValue", name, f))
	}
	return int64(math.Trunc(f)), nil
}
