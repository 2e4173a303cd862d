package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ssyssy/ottertune/pkg/errors"
)

func TestAggregateData(t *testing.T) {
	obs := []Observation{
		{ID: "a", ParamData: `{"k2": 2, "k1": "1"}`, MetricData: `{"m1": 10.5}`},
		{ID: "b", ParamData: `{"k1": 3, "k2": 4}`, MetricData: `{"m1": "20"}`},
	}

	got, err := AggregateData(obs, []string{"k1", "k2"}, []string{"m1"})
	require.NoError(t, err)

	assert.True(t, mat.Equal(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), got.X))
	assert.True(t, mat.Equal(mat.NewDense(2, 1, []float64{10.5, 20}), got.Y))
	assert.Equal(t, [][]string{{"a"}, {"b"}}, got.RowLabels)
	assert.Equal(t, []string{"k1", "k2"}, got.XColumnLabels)
	assert.Equal(t, []string{"m1"}, got.YColumnLabels)
	assert.Equal(t, 2, got.Rows())
}

func TestAggregateDataErrors(t *testing.T) {
	knobs := []string{"k1", "k2"}
	metrics := []string{"m1"}

	tests := []struct {
		name     string
		obs      []Observation
		knobs    []string
		wantKind errors.Kind
		wantIs   error
	}{
		{
			name:   "no observations",
			obs:    nil,
			knobs:  knobs,
			wantIs: errors.ErrEmptyData,
		},
		{
			name:   "no knob labels",
			obs:    []Observation{{ID: "a", ParamData: `{}`, MetricData: `{"m1": 1}`}},
			knobs:  nil,
			wantIs: errors.ErrEmptyData,
		},
		{
			name:     "knob count",
			obs:      []Observation{{ID: "a", ParamData: `{"k1": 1}`, MetricData: `{"m1": 1}`}},
			knobs:    knobs,
			wantKind: errors.KindKnobCountMismatch,
		},
		{
			name:     "metric count",
			obs:      []Observation{{ID: "a", ParamData: `{"k1": 1, "k2": 2}`, MetricData: `{"m1": 1, "m2": 2}`}},
			knobs:    knobs,
			wantKind: errors.KindMetricCountMismatch,
		},
		{
			name:     "label not present",
			obs:      []Observation{{ID: "a", ParamData: `{"k1": 1, "k3": 2}`, MetricData: `{"m1": 1}`}},
			knobs:    knobs,
			wantKind: errors.KindKeyNotFound,
		},
		{
			name:     "not a number",
			obs:      []Observation{{ID: "a", ParamData: `{"k1": "x", "k2": 2}`, MetricData: `{"m1": 1}`}},
			knobs:    knobs,
			wantKind: errors.KindInvalidRealFormat,
		},
		{
			name:     "nested value",
			obs:      []Observation{{ID: "a", ParamData: `{"k1": [1], "k2": 2}`, MetricData: `{"m1": 1}`}},
			knobs:    knobs,
			wantKind: errors.KindInvalidRealFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AggregateData(tt.obs, tt.knobs, metrics)
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.True(t, errors.Is(err, tt.wantIs))
			}
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, errors.KindOf(err))
			}
		})
	}
}

func TestAggregateDataRejectsNonFinite(t *testing.T) {
	obs := []Observation{{ID: "a", ParamData: `{"k1": "NaN"}`, MetricData: `{"m1": "+Inf"}`}}
	_, err := AggregateData(obs, []string{"k1"}, []string{"m1"})
	require.Error(t, err)
	var nf *errors.NonFiniteValueError
	assert.True(t, errors.As(err, &nf))
}

func TestAggregateDataMalformedBlob(t *testing.T) {
	obs := []Observation{{ID: "a", ParamData: `{"k1": 1`, MetricData: `{"m1": 1}`}}
	_, err := AggregateData(obs, []string{"k1"}, []string{"m1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "param data of a")
}

func TestNewObservationRoundTrip(t *testing.T) {
	o, err := NewObservation("r1", map[string]float64{"k": 1.5}, map[string]float64{"m": 2})
	require.NoError(t, err)

	got, err := AggregateData([]Observation{o}, []string{"k"}, []string{"m"})
	require.NoError(t, err)
	assert.Equal(t, 1.5, got.X.At(0, 0))
	assert.Equal(t, 2.0, got.Y.At(0, 0))
	assert.Equal(t, [][]string{{"r1"}}, got.RowLabels)
}
