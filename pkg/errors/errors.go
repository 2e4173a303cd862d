// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 正規化処理で発生するエラーは種別 (Kind) ごとに構造化されており、
// 呼び出し側はパラメータ名・生の値・期待値と実際の値から再実行せずに原因を特定できます。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("ottertune-warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler は警告ハンドラを設定します。
// 検証差分 (DiffWarning) などの警告をどう扱うかを呼び出し側が制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// DiffWarning はカタログ照合で見つかった差分（大文字小文字違い・余分なキー・欠落キー）を表す警告です。
// 差分はエラーではなく、常に成功した結果に付随する診断情報です。
type DiffWarning struct {
	Source        string // 照合対象（例: "config", "metrics"）
	Kind          string
	CanonicalName string
	GivenName     string
	Value         interface{}
}

func (w *DiffWarning) Error() string {
	switch {
	case w.CanonicalName != "" && w.GivenName != "":
		return fmt.Sprintf("%s: %s: %q reported as %q", w.Source, w.Kind, w.CanonicalName, w.GivenName)
	case w.GivenName != "":
		return fmt.Sprintf("%s: %s: %q", w.Source, w.Kind, w.GivenName)
	default:
		return fmt.Sprintf("%s: %s: %q", w.Source, w.Kind, w.CanonicalName)
	}
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DiffWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("source", w.Source).
		Str("diff_kind", w.Kind).
		Str("canonical_name", w.CanonicalName).
		Str("given_name", w.GivenName).
		Interface("value", w.Value).
		Str("type", "DiffWarning")
}

// NewDiffWarning は新しいDiffWarningを作成します。
func NewDiffWarning(source, kind, canonical, given string, value interface{}) *DiffWarning {
	return &DiffWarning{Source: source, Kind: kind, CanonicalName: canonical, GivenName: given, Value: value}
}

// ===========================================================================
//
//	エラー種別
//
// ===========================================================================

// Kind はエラーの種別を表すコードです。
type Kind string

const (
	// SchemaMismatch
	KindKnobCountMismatch   Kind = "KNOB_COUNT_MISMATCH"
	KindMetricCountMismatch Kind = "METRIC_COUNT_MISMATCH"

	// ValueFormatError
	KindInvalidEnumValue     Kind = "INVALID_ENUM_VALUE"
	KindInvalidIntegerFormat Kind = "INVALID_INTEGER_FORMAT"
	KindInvalidRealFormat    Kind = "INVALID_REAL_FORMAT"
	KindNullParameterValue   Kind = "NULL_PARAMETER_VALUE"

	// UnknownTypeError
	KindUnknownVariableType Kind = "UNKNOWN_VARIABLE_TYPE"
	KindUnknownMetricType   Kind = "UNKNOWN_METRIC_TYPE"
	KindUnknownUnitType     Kind = "UNKNOWN_UNIT_TYPE"

	// UnsupportedOperation
	KindNotImplementedForEngine      Kind = "NOT_IMPLEMENTED_FOR_ENGINE"
	KindTimestampNotImplemented      Kind = "TIMESTAMP_NOT_IMPLEMENTED"
	KindAbstractMethodNotImplemented Kind = "ABSTRACT_METHOD_NOT_IMPLEMENTED"

	KindConsistencyAssertion Kind = "CONSISTENCY_ASSERTION"
	KindKeyNotFound          Kind = "KEY_NOT_FOUND"
)

type kinded interface {
	Kind() Kind
}

// KindOf はラップされたエラーチェーンから最初に見つかった種別を返します。
// 構造化エラーが含まれていない場合は空文字列を返します。
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}

// HasKind はエラーが指定した種別を持つかどうかを判定します。
func HasKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// SchemaMismatchError はデコードした観測値の件数がラベル数と一致しない場合のエラーです。
type SchemaMismatchError struct {
	Code     Kind
	Op       string
	Expected int
	Got      int
}

func (e *SchemaMismatchError) Kind() Kind { return e.Code }

func (e *SchemaMismatchError) Error() string {
	what := "knobs"
	if e.Code == KindMetricCountMismatch {
		what = "metrics"
	}
	return fmt.Sprintf("ottertune: %s: incorrect number of %s (expected=%d, actual=%d)", e.Op, what, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *SchemaMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("kind", string(e.Code)).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "SchemaMismatchError")
}

// NewKnobCountMismatch はパラメータ数の不一致エラーを作成し、スタックトレースを付与します。
func NewKnobCountMismatch(op string, expected, got int) error {
	return errors.WithStack(&SchemaMismatchError{Code: KindKnobCountMismatch, Op: op, Expected: expected, Got: got})
}

// NewMetricCountMismatch はメトリクス数の不一致エラーを作成し、スタックトレースを付与します。
func NewMetricCountMismatch(op string, expected, got int) error {
	return errors.WithStack(&SchemaMismatchError{Code: KindMetricCountMismatch, Op: op, Expected: expected, Got: got})
}

// ValueFormatError は生の値を宣言された型に変換できない場合のエラーです。
type ValueFormatError struct {
	Code  Kind
	Name  string
	Value string
	Err   error
}

func (e *ValueFormatError) Kind() Kind { return e.Code }

func (e *ValueFormatError) Error() string {
	var msg string
	switch e.Code {
	case KindInvalidEnumValue:
		msg = fmt.Sprintf("invalid enum value for param %s (%s)", e.Name, e.Value)
	case KindInvalidIntegerFormat:
		msg = fmt.Sprintf("invalid integer format for param %s (%s)", e.Name, e.Value)
	case KindInvalidRealFormat:
		msg = fmt.Sprintf("invalid real format for param %s (%s)", e.Name, e.Value)
	case KindNullParameterValue:
		msg = fmt.Sprintf("param value for %s cannot be null", e.Name)
	default:
		msg = fmt.Sprintf("invalid value for %s (%s)", e.Name, e.Value)
	}
	if e.Err != nil {
		return fmt.Sprintf("ottertune: %s: %v", msg, e.Err)
	}
	return "ottertune: " + msg
}

func (e *ValueFormatError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValueFormatError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("kind", string(e.Code)).
		Str("name", e.Name).
		Str("value", e.Value).
		Str("type", "ValueFormatError")
}

// NewInvalidEnumValue は列挙値がドメインに存在しない場合のエラーを作成します。
func NewInvalidEnumValue(name, value string) error {
	return errors.WithStack(&ValueFormatError{Code: KindInvalidEnumValue, Name: name, Value: value})
}

// NewInvalidIntegerFormat は整数として解釈できない場合のエラーを作成します。
func NewInvalidIntegerFormat(name, value string, cause error) error {
	return errors.WithStack(&ValueFormatError{Code: KindInvalidIntegerFormat, Name: name, Value: value, Err: cause})
}

// NewInvalidRealFormat は実数として解釈できない場合のエラーを作成します。
func NewInvalidRealFormat(name, value string, cause error) error {
	return errors.WithStack(&ValueFormatError{Code: KindInvalidRealFormat, Name: name, Value: value, Err: cause})
}

// NewNullParameterValue は変換結果が存在しない場合のエラーを作成します。
func NewNullParameterValue(name string) error {
	return errors.WithStack(&ValueFormatError{Code: KindNullParameterValue, Name: name})
}

// UnknownTypeError は記述子が実装の知らない型・単位を参照している場合のエラーです。
// ユーザー入力の誤りではなく、カタログ設定またはプログラムの誤りとして扱います。
type UnknownTypeError struct {
	Code Kind
	Name string
	Type string
}

func (e *UnknownTypeError) Kind() Kind { return e.Code }

func (e *UnknownTypeError) Error() string {
	what := "variable type"
	switch e.Code {
	case KindUnknownMetricType:
		what = "metric type"
	case KindUnknownUnitType:
		what = "unit type"
	}
	return fmt.Sprintf("ottertune: unknown %s for %s: %s", what, e.Name, e.Type)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnknownTypeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("kind", string(e.Code)).
		Str("name", e.Name).
		Str("declared_type", e.Type).
		Str("type", "UnknownTypeError")
}

// NewUnknownVariableType は未知の変数型のエラーを作成します。
func NewUnknownVariableType(name, vartype string) error {
	return errors.WithStack(&UnknownTypeError{Code: KindUnknownVariableType, Name: name, Type: vartype})
}

// NewUnknownMetricType は未知のメトリクス型のエラーを作成します。
func NewUnknownMetricType(name, metricType string) error {
	return errors.WithStack(&UnknownTypeError{Code: KindUnknownMetricType, Name: name, Type: metricType})
}

// NewUnknownUnitType は未知の単位型のエラーを作成します。
func NewUnknownUnitType(name, unit string) error {
	return errors.WithStack(&UnknownTypeError{Code: KindUnknownUnitType, Name: name, Type: unit})
}

// UnsupportedOperationError は特定のエンジンまたは値の種類で機能が提供されていない場合のエラーです。
type UnsupportedOperationError struct {
	Code      Kind
	Engine    string
	Operation string
}

func (e *UnsupportedOperationError) Kind() Kind { return e.Code }

func (e *UnsupportedOperationError) Error() string {
	switch e.Code {
	case KindNotImplementedForEngine:
		return fmt.Sprintf("ottertune: no adapter registered for engine %q", e.Engine)
	case KindTimestampNotImplemented:
		return fmt.Sprintf("ottertune: %s: timestamp values are not supported (%s)", e.Engine, e.Operation)
	default:
		return fmt.Sprintf("ottertune: %s: %s is not implemented", e.Engine, e.Operation)
	}
}

// Is により errors.Is(err, ErrNotImplemented) が全ての UnsupportedOperationError に一致します。
func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrNotImplemented
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnsupportedOperationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("kind", string(e.Code)).
		Str("engine", e.Engine).
		Str("operation", e.Operation).
		Str("type", "UnsupportedOperationError")
}

// NewNotImplementedForEngine は未登録のエンジンに対するエラーを作成します。
func NewNotImplementedForEngine(engine string) error {
	return errors.WithStack(&UnsupportedOperationError{Code: KindNotImplementedForEngine, Engine: engine})
}

// NewTimestampNotImplemented はタイムスタンプ型の前処理が未実装の場合のエラーを作成します。
func NewTimestampNotImplemented(engine, name string) error {
	return errors.WithStack(&UnsupportedOperationError{Code: KindTimestampNotImplemented, Engine: engine, Operation: name})
}

// NewAbstractMethodNotImplemented はエンジン固有の処理が提供されていない場合のエラーを作成します。
func NewAbstractMethodNotImplemented(engine, method string) error {
	return errors.WithStack(&UnsupportedOperationError{Code: KindAbstractMethodNotImplemented, Engine: engine, Operation: method})
}

// ConsistencyError は呼び出し側またはカタログの契約違反を表します。
// 実行時に回復すべき状態ではなく、欠陥として扱ってください。
type ConsistencyError struct {
	Op     string
	Reason string
}

func (e *ConsistencyError) Kind() Kind { return KindConsistencyAssertion }

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("ottertune: %s: consistency assertion failed: %s", e.Op, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ConsistencyError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("reason", e.Reason).
		Str("type", "ConsistencyError")
}

// NewConsistencyError は新しいConsistencyErrorを作成し、スタックトレースを付与します。
func NewConsistencyError(op, reason string) error {
	return errors.WithStack(&ConsistencyError{Op: op, Reason: reason})
}

// NewConsistencyErrorf はフォーマット済みの理由でConsistencyErrorを作成します。
func NewConsistencyErrorf(op, format string, args ...interface{}) error {
	return errors.WithStack(&ConsistencyError{Op: op, Reason: fmt.Sprintf(format, args...)})
}

// LookupError は必要なキーが入力に存在しない場合のエラーです。
type LookupError struct {
	Op   string
	Name string
}

func (e *LookupError) Kind() Kind { return KindKeyNotFound }

func (e *LookupError) Error() string {
	return fmt.Sprintf("ottertune: %s: no value for %q", e.Op, e.Name)
}

// NewLookupError は新しいLookupErrorを作成し、スタックトレースを付与します。
func NewLookupError(op, name string) error {
	return errors.WithStack(&LookupError{Op: op, Name: name})
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns
}

func (e *DimensionError) Error() string {
	axisName := "columns"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("ottertune: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ottertune: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("ottertune: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrNotImplemented は機能が未実装の場合のエラーです。
	ErrNotImplemented = New("not implemented")

	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")
)
