// Package preprocessing はデータベースの設定値・メトリクスを数値表現に変換する
//
// 出力のキー集合は常にカタログで決まり、入力側の余分なキーは無視される。
// 変換に失敗した場合はその観測値全体の変換を中止し、部分的な結果は返さない。
package preprocessing

import (
	"github.com/ssyssy/ottertune/core/catalog"
	"github.com/ssyssy/ottertune/pkg/errors"
)

// PreprocessParams はカタログ順にパラメータを変換する
//
// パラメータ:
//   - rules: エンジンの変換規則表
//   - raw: パラメータ名→生の文字列値
//   - params: チューニング可能なパラメータの記述子（宣言順）
//
// 戻り値:
//   - map[string]float64: ちょうど len(params) 件の数値
//   - error: 記述子がチューニング不可、値の欠落、変換失敗の場合
func PreprocessParams(rules Rules, raw map[string]string, params []catalog.ParameterDescriptor) (map[string]float64, error) {
	out := make(map[string]float64, len(params))
	for _, p := range params {
		if !p.Tunable {
			return nil, errors.NewConsistencyErrorf("PreprocessParams", "all parameters should be tunable (%s is not)", p.Name)
		}
		value, present := raw[p.Name]
		if !present {
			return nil, errors.NewLookupError("PreprocessParams", p.Name)
		}
		converted, ok, err := rules.Apply(value, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.NewNullParameterValue(p.Name)
		}
		out[p.Name] = converted
	}
	return out, nil
}

// PreprocessMetrics はカウンタ型メトリクスを単位時間あたりの値に変換し、外部メトリクスを合成する
//
// パラメータ:
//   - raw: メトリクス名→生の文字列値（件数はカタログと一致していること）
//   - metrics: 数値メトリクスの記述子（INFO を含まないこと）
//   - external: そのまま合成される外部メトリクス
//   - executionTime: 観測の実行時間（正の有限値）
func PreprocessMetrics(raw map[string]string, metrics []catalog.MetricDescriptor,
	external map[string]float64, executionTime float64) (map[string]float64, error) {
	if len(raw) != len(metrics) {
		return nil, errors.NewMetricCountMismatch("PreprocessMetrics", len(metrics), len(raw))
	}
	if executionTime <= 0 || errors.CheckScalar("PreprocessMetrics", "execution_time", executionTime) != nil {
		return nil, errors.NewValidationError("execution_time", "must be a positive finite number", executionTime)
	}

	out := make(map[string]float64, len(metrics)+len(external))
	for _, m := range metrics {
		if m.MetricType == catalog.MetricInfo {
			return nil, errors.NewConsistencyErrorf("PreprocessMetrics", "INFO metric %s cannot be converted", m.Name)
		}
		value, present := raw[m.Name]
		if !present {
			return nil, errors.NewLookupError("PreprocessMetrics", m.Name)
		}
		switch m.MetricType {
		case catalog.MetricCounter:
			n, err := IntegerValue(m.Name, value)
			if err != nil {
				return nil, err
			}
			out[m.Name] = float64(n) / executionTime
		default:
			return nil, errors.NewUnknownMetricType(m.Name, m.MetricType.String())
		}
	}

	for name, v := range external {
		if err := errors.CheckScalar("PreprocessMetrics", name, v); err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}
