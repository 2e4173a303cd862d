// Package dataset は正規化済みの観測値を学習用の行列に集約する。
//
// 各観測値はノブとメトリクスの JSON オブジェクトとして保存されており、
// AggregateData がそれらをラベル順の gonum 行列に射影する。
// 同一の構成で複数回測定された行は CombineDuplicateRows で一行にまとめる。
package dataset

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/ssyssy/ottertune/pkg/errors"
)

// Observation は一回の測定結果
type Observation struct {
	ID string `json:"id" yaml:"id"`
	// ParamData はノブ名→数値の JSON オブジェクト
	ParamData string `json:"param_data" yaml:"param_data"`
	// MetricData はメトリクス名→数値の JSON オブジェクト
	MetricData string `json:"metric_data" yaml:"metric_data"`
}

// NewObservation は数値ベクトルを JSON にエンコードして Observation を作る
func NewObservation(id string, params, metrics map[string]float64) (Observation, error) {
	p, err := json.Marshal(params)
	if err != nil {
		return Observation{}, errors.Wrapf(err, "encode params of %s", id)
	}
	m, err := json.Marshal(metrics)
	if err != nil {
		return Observation{}, errors.Wrapf(err, "encode metrics of %s", id)
	}
	return Observation{ID: id, ParamData: string(p), MetricData: string(m)}, nil
}

// ObservationMatrix は観測値を行、ラベルを列とする行列の組
//
// X はノブ、Y はメトリクス。RowLabels[i] は i 行目を構成する観測値の ID の並び。
type ObservationMatrix struct {
	X             *mat.Dense
	Y             *mat.Dense
	RowLabels     [][]string
	XColumnLabels []string
	YColumnLabels []string
}

// Rows は行数を返す
func (m *ObservationMatrix) Rows() int {
	return len(m.RowLabels)
}

// CombineDuplicates は CombineDuplicateRows を適用した新しい行列を返す。列ラベルは共有する
func (m *ObservationMatrix) CombineDuplicates() (*ObservationMatrix, error) {
	X, Y, labels, err := CombineDuplicateRows(m.X, m.Y, m.RowLabels)
	if err != nil {
		return nil, err
	}
	return &ObservationMatrix{
		X:             X,
		Y:             Y,
		RowLabels:     labels,
		XColumnLabels: m.XColumnLabels,
		YColumnLabels: m.YColumnLabels,
	}, nil
}

// AggregateData は観測値の列をノブ行列とメトリクス行列に変換する
//
// パラメータ:
//   - observations: 観測値（行の順序になる）
//   - knobLabels: X の列ラベル
//   - metricLabels: Y の列ラベル
//
// 各観測値のノブ・メトリクスの件数はラベル数と一致しなければならない。
// ラベルに対応する値がない場合は LookupError、非有限値は NonFiniteValueError を返す。
func AggregateData(observations []Observation, knobLabels, metricLabels []string) (*ObservationMatrix, error) {
	if len(observations) == 0 || len(knobLabels) == 0 || len(metricLabels) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "AggregateData")
	}

	n := len(observations)
	X := mat.NewDense(n, len(knobLabels), nil)
	Y := mat.NewDense(n, len(metricLabels), nil)
	rowLabels := make([][]string, n)

	for i, obs := range observations {
		params, err := decodeVector(obs.ParamData)
		if err != nil {
			return nil, errors.Wrapf(err, "param data of %s", obs.ID)
		}
		if len(params) != len(knobLabels) {
			return nil, errors.NewKnobCountMismatch("AggregateData", len(knobLabels), len(params))
		}
		metrics, err := decodeVector(obs.MetricData)
		if err != nil {
			return nil, errors.Wrapf(err, "metric data of %s", obs.ID)
		}
		if len(metrics) != len(metricLabels) {
			return nil, errors.NewMetricCountMismatch("AggregateData", len(metricLabels), len(metrics))
		}

		if err := fillRow(X, i, params, knobLabels); err != nil {
			return nil, err
		}
		if err := fillRow(Y, i, metrics, metricLabels); err != nil {
			return nil, err
		}
		rowLabels[i] = []string{obs.ID}
	}

	if err := errors.CheckMatrix("AggregateData", X, n, len(knobLabels)); err != nil {
		return nil, err
	}
	if err := errors.CheckMatrix("AggregateData", Y, n, len(metricLabels)); err != nil {
		return nil, err
	}

	return &ObservationMatrix{
		X:             X,
		Y:             Y,
		RowLabels:     rowLabels,
		XColumnLabels: append([]string(nil), knobLabels...),
		YColumnLabels: append([]string(nil), metricLabels...),
	}, nil
}

func fillRow(m *mat.Dense, i int, values map[string]float64, labels []string) error {
	for j, label := range labels {
		v, ok := values[label]
		if !ok {
			return errors.NewLookupError("AggregateData", label)
		}
		m.Set(i, j, v)
	}
	return nil
}

// decodeVector は JSON オブジェクトを名前→数値に変換する。値は数値または数値文字列
func decodeVector(blob string) (map[string]float64, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(blob)))
	dec.UseNumber()
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode vector")
	}
	if raw == nil {
		return nil, errors.ErrEmptyData
	}

	out := make(map[string]float64, len(raw))
	for name, v := range raw {
		var s string
		switch x := v.(type) {
		case json.Number:
			s = x.String()
		case string:
			s = strings.TrimSpace(x)
		default:
			return nil, errors.NewInvalidRealFormat(name, strings.TrimSpace(stringify(v)), nil)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.NewInvalidRealFormat(name, s, err)
		}
		out[name] = f
	}
	return out, nil
}

func stringify(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "?"
	}
	return string(b)
}
