package dbms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssyssy/ottertune/core/catalog"
	"github.com/ssyssy/ottertune/pkg/errors"
	"github.com/ssyssy/ottertune/validation"
)

func TestPostgresIntegerUnits(t *testing.T) {
	pg := NewPostgres()
	bytesParam := catalog.ParameterDescriptor{Name: "shared_buffers", VarType: catalog.VarTypeInteger, Unit: catalog.UnitBytes}
	timeParam := catalog.ParameterDescriptor{Name: "checkpoint_timeout", VarType: catalog.VarTypeInteger, Unit: catalog.UnitMilliseconds}
	otherParam := catalog.ParameterDescriptor{Name: "max_connections", VarType: catalog.VarTypeInteger, Unit: catalog.UnitOther}

	tests := []struct {
		name     string
		param    catalog.ParameterDescriptor
		raw      string
		want     float64
		wantKind errors.Kind
	}{
		{"plain integer", bytesParam, "100", 100, ""},
		{"real truncates", bytesParam, "1.9", 1, ""},
		{"kilobytes", bytesParam, "8kB", 8192, ""},
		{"megabytes", bytesParam, "128MB", 128 << 20, ""},
		{"bare bytes", bytesParam, "512B", 512, ""},
		{"minutes", timeParam, "5min", 300000, ""},
		{"milliseconds", timeParam, "200ms", 200, ""},
		{"seconds", timeParam, "30s", 30000, ""},
		{"days", timeParam, "1d", 86400000, ""},
		{"unknown suffix", bytesParam, "12XB", 0, errors.KindInvalidIntegerFormat},
		{"bad prefix", bytesParam, "abcMB", 0, errors.KindInvalidIntegerFormat},
		{"time suffix on bytes", bytesParam, "5min", 0, errors.KindInvalidIntegerFormat},
		{"unit without table", otherParam, "5x", 0, errors.KindUnknownUnitType},
		{"plain integer without table", otherParam, "100", 100, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := pg.Rules().Apply(tt.raw, tt.param)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, errors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPostgresInvalidIntegerNamesParameter(t *testing.T) {
	_, err := NewPostgres().PreprocessParams(
		map[string]string{"shared_buffers": "12XB"},
		[]catalog.ParameterDescriptor{{Name: "shared_buffers", VarType: catalog.VarTypeInteger, Unit: catalog.UnitBytes, Tunable: true}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shared_buffers")
	assert.Contains(t, err.Error(), "12XB")
}

func TestPostgresParseVersionString(t *testing.T) {
	tests := []struct {
		banner  string
		want    string
		wantErr bool
	}{
		{"PostgreSQL 9.6.3 on x86_64-pc-linux-gnu, compiled by gcc 4.8.5", "9.6", false},
		{"PostgreSQL 10.1.2.3 on x86_64", "10.1", false},
		{"PostgreSQL 11.2.1", "11.2", false},
		{"PostgreSQL 1.0, compiled by gcc 4.8.5", "", true},
		{"PostgreSQL 10.4", "", true},
		{"", "", true},
	}

	pg := NewPostgres()
	for _, tt := range tests {
		t.Run(tt.banner, func(t *testing.T) {
			got, err := pg.ParseVersionString(tt.banner)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPostgresParseMetricsScoped(t *testing.T) {
	raw := RawMetrics{
		Scoped: map[string][]map[string]*string{
			"pg_stat_database": {
				{"datname": strp("tpcc"), "xact_commit": strp("10")},
				{"datname": strp("postgres"), "xact_commit": strp("5")},
				{"datname": nil, "xact_commit": nil},
			},
			"pg_stat_archiver": {
				{"archived_count": strp("3"), "failed_count": strp("0")},
			},
		},
	}

	got, diffs, err := NewPostgres().ParseMetrics(raw, pgMetrics())
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"pg_stat_database.xact_commit":    "15",
		"pg_stat_database.datname":        "tpcc",
		"pg_stat_archiver.archived_count": "3",
		"pg_stat_bgwriter.buffers_alloc":  "0",
	}, got)

	require.Len(t, diffs, 2)
	assert.Equal(t, validation.ExtraKey, diffs[0].Kind)
	assert.Equal(t, "pg_stat_archiver.failed_count", diffs[0].GivenName)
	assert.Equal(t, []string{"0"}, diffs[0].Value)
	assert.Equal(t, validation.MissingKey, diffs[1].Kind)
	assert.Equal(t, "pg_stat_bgwriter.buffers_alloc", diffs[1].CanonicalName)
}

func TestPostgresParseMetricsCombination(t *testing.T) {
	metrics := []catalog.MetricDescriptor{
		{Name: "s.c", MetricType: catalog.MetricCounter},
		{Name: "s.i", MetricType: catalog.MetricInfo},
	}

	t.Run("all nil counter", func(t *testing.T) {
		got, _, err := NewPostgres().ParseMetrics(RawMetrics{Scoped: map[string][]map[string]*string{
			"s": {{"c": nil, "i": nil}, {"c": nil, "i": strp("x")}},
		}}, metrics)
		require.NoError(t, err)
		assert.Equal(t, "0", got["s.c"])
		assert.Equal(t, "", got["s.i"])
	})

	t.Run("single nil value", func(t *testing.T) {
		got, _, err := NewPostgres().ParseMetrics(RawMetrics{Scoped: map[string][]map[string]*string{
			"s": {{"c": nil, "i": strp("x")}},
		}}, metrics)
		require.NoError(t, err)
		assert.Equal(t, "", got["s.c"])
		assert.Equal(t, "x", got["s.i"])
	})

	t.Run("flat entries", func(t *testing.T) {
		got, diffs, err := NewPostgres().ParseMetrics(RawMetrics{Flat: map[string]string{"S.C": "7"}}, metrics)
		require.NoError(t, err)
		assert.Equal(t, "7", got["s.c"])
		assert.Equal(t, 1, validation.Count(diffs, validation.MiscapitalizedKey))
		assert.Equal(t, 1, validation.Count(diffs, validation.MissingKey))
	})

	t.Run("counter not an integer", func(t *testing.T) {
		_, _, err := NewPostgres().ParseMetrics(RawMetrics{Scoped: map[string][]map[string]*string{
			"s": {{"c": strp("1")}, {"c": strp("x")}},
		}}, metrics)
		require.Error(t, err)
		assert.Equal(t, errors.KindInvalidIntegerFormat, errors.KindOf(err))
	})

	t.Run("unknown metric type", func(t *testing.T) {
		_, _, err := NewPostgres().ParseMetrics(RawMetrics{Scoped: map[string][]map[string]*string{
			"s": {{"u": strp("1")}, {"u": strp("2")}},
		}}, []catalog.MetricDescriptor{{Name: "s.u", MetricType: catalog.MetricType(9)}})
		require.Error(t, err)
		assert.Equal(t, errors.KindUnknownMetricType, errors.KindOf(err))
	})
}

func TestPostgresStrictCollisions(t *testing.T) {
	pg := NewPostgres(WithValidationOptions(validation.WithStrictCollisions()))
	_, _, err := pg.ParseConfig(map[string]string{"Shared_Buffers": "1", "shared_buffers": "2"}, pgParams())
	require.Error(t, err)
	assert.Equal(t, errors.KindConsistencyAssertion, errors.KindOf(err))
}
