package dbms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssyssy/ottertune/pkg/errors"
)

func TestDecodeRawMetrics(t *testing.T) {
	data := []byte(`{
		"uptime": 120,
		"version": "9.6.3",
		"enabled": true,
		"missing": null,
		"pg_stat_database": [
			{"datname": "tpcc", "xact_commit": "10"},
			{"datname": null, "xact_commit": 5}
		],
		"pg_stat_bgwriter": {"buffers_alloc": 7}
	}`)

	got, err := DecodeRawMetrics(data)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"uptime":  "120",
		"version": "9.6.3",
		"enabled": "true",
		"missing": "",
	}, got.Flat)

	require.Len(t, got.Scoped["pg_stat_database"], 2)
	db := got.Scoped["pg_stat_database"]
	assert.Equal(t, "tpcc", *db[0]["datname"])
	assert.Equal(t, "10", *db[0]["xact_commit"])
	assert.Nil(t, db[1]["datname"])
	assert.Equal(t, "5", *db[1]["xact_commit"])

	require.Len(t, got.Scoped["pg_stat_bgwriter"], 1)
	assert.Equal(t, "7", *got.Scoped["pg_stat_bgwriter"][0]["buffers_alloc"])
	assert.Equal(t, 7, got.Len())
}

func TestDecodeRawMetricsErrors(t *testing.T) {
	tests := map[string]string{
		"not json":           `{`,
		"not an object":      `[1, 2]`,
		"null document":      `null`,
		"scalar in scope":    `{"s": [1]}`,
		"nested too deep":    `{"s": [{"a": {"b": 1}}]}`,
		"array in flat list": `{"s": [{"a": [1]}]}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeRawMetrics([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestDecodeConfig(t *testing.T) {
	got, err := DecodeConfig([]byte(`{"shared_buffers": "128MB", "max_connections": 100, "random_page_cost": 1.5}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"shared_buffers":   "128MB",
		"max_connections":  "100",
		"random_page_cost": "1.5",
	}, got)

	_, err = DecodeConfig([]byte(`{"work_mem": null}`))
	require.Error(t, err)
	assert.Equal(t, errors.KindNullParameterValue, errors.KindOf(err))

	_, err = DecodeConfig([]byte(`{"work_mem": {"a": 1}}`))
	assert.Error(t, err)
}

func TestRawMetricsJSONRoundTrip(t *testing.T) {
	in := RawMetrics{
		Flat: map[string]string{"uptime": "120"},
		Scoped: map[string][]map[string]*string{
			"pg_stat_database": {{"datname": nil, "xact_commit": strp("5")}},
		},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"uptime":"120","pg_stat_database":[{"datname":null,"xact_commit":"5"}]}`, string(data))

	var out RawMetrics
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestRawObservationJSON(t *testing.T) {
	var obs RawObservation
	err := json.Unmarshal([]byte(`{
		"id": "obs-1",
		"config": {"shared_buffers": "128MB"},
		"metrics": {"pg_stat_bgwriter": {"buffers_alloc": 600}},
		"execution_time": 60
	}`), &obs)
	require.NoError(t, err)
	assert.Equal(t, "obs-1", obs.ID)
	assert.Equal(t, "600", *obs.Metrics.Scoped["pg_stat_bgwriter"][0]["buffers_alloc"])
	assert.Equal(t, 60.0, obs.ExecutionTime)
}
