package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postgresCatalog = `
engine: postgres
version: "9.6"
parameters:
  - name: shared_buffers
    vartype: integer
    unit: bytes
    tunable: true
    default: 128MB
  - name: wal_level
    vartype: ENUM
    enumvals: [minimal, replica, logical]
    tunable: true
    default: replica
  - name: data_directory
    vartype: string
    tunable: false
    default: /var/lib/postgresql
metrics:
  - name: pg_stat_bgwriter.buffers_alloc
    metric_type: counter
    default: "0"
  - name: pg_stat_database.datname
    metric_type: 2
`

func TestLoad(t *testing.T) {
	c, err := Load(strings.NewReader(postgresCatalog))
	require.NoError(t, err)

	assert.Equal(t, Postgres, c.Engine)
	assert.Equal(t, "9.6", c.Version)
	require.Len(t, c.Parameters, 3)
	assert.Equal(t, VarTypeInteger, c.Parameters[0].VarType)
	assert.Equal(t, UnitBytes, c.Parameters[0].Unit)
	assert.Equal(t, VarTypeEnum, c.Parameters[1].VarType)
	assert.Equal(t, []string{"minimal", "replica", "logical"}, c.Parameters[1].EnumValues)
	assert.Equal(t, UnitNone, c.Parameters[1].Unit)
	assert.Equal(t, MetricInfo, c.Metrics[1].MetricType)

	tunable := c.TunableParameters()
	assert.Equal(t, []string{"shared_buffers", "wal_level"}, Names(tunable))
	assert.Equal(t, []string{"pg_stat_bgwriter.buffers_alloc"}, Names(c.NumericMetrics()))
}

func TestLoadRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "unknown vartype name",
			doc: `
parameters:
  - name: a
    vartype: decimal
`,
		},
		{
			name: "unknown vartype number",
			doc: `
parameters:
  - name: a
    vartype: 42
`,
		},
		{
			name: "duplicate names differing in case",
			doc: `
parameters:
  - name: work_mem
    vartype: integer
  - name: WORK_MEM
    vartype: integer
`,
		},
		{
			name: "enum without domain",
			doc: `
parameters:
  - name: a
    vartype: enum
`,
		},
		{
			name: "domain on non-enum",
			doc: `
parameters:
  - name: a
    vartype: bool
    enumvals: [on, off]
`,
		},
		{
			name: "unknown field",
			doc: `
parameters:
  - name: a
    vartype: bool
    scale: 3
`,
		},
		{
			name: "unknown engine",
			doc:  "engine: cassandra\n",
		},
		{
			name: "empty document",
			doc:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseEngineType(t *testing.T) {
	e, err := ParseEngineType(" PostgreS ")
	require.NoError(t, err)
	assert.Equal(t, Postgres, e)

	_, err = ParseEngineType("cassandra")
	assert.Error(t, err)
}

func TestTypeStrings(t *testing.T) {
	assert.Equal(t, "BOOL", VarTypeBool.String())
	assert.Equal(t, "VarType(99)", VarType(99).String())
	assert.Equal(t, "MILLISECONDS", UnitMilliseconds.String())
	assert.Equal(t, "COUNTER", MetricCounter.String())
	assert.Equal(t, 1, int(True))
	assert.Equal(t, 0, int(False))
}
