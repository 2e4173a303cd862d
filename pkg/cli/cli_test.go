package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ssyssy/ottertune/pkg/errors"
	"github.com/ssyssy/ottertune/validation"
)

const testCatalog = "testdata/postgres-9.6.yaml"

// run executes the app with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		errors.SetZerologWarnFunc(nil)
	})

	var stdout, stderr bytes.Buffer
	app := NewApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(context.Background(), append([]string{name}, args...))
	return stdout.String(), stderr.String(), err
}

func TestParamsCommand(t *testing.T) {
	stdout, stderr, err := run(t, "params", "--catalog", testCatalog, "--config", "testdata/config.json")
	require.NoError(t, err)

	var got ParamsResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "postgres", got.Engine)
	assert.Equal(t, map[string]float64{
		"shared_buffers":     256 << 20,
		"checkpoint_timeout": 600000,
		"enable_seqscan":     0,
		"wal_sync_method":    2,
	}, got.Params)

	require.Len(t, got.Diffs, 2)
	assert.Equal(t, validation.MiscapitalizedKey, got.Diffs[0].Kind)
	assert.Equal(t, "checkpoint_timeout", got.Diffs[0].CanonicalName)
	assert.Equal(t, validation.ExtraKey, got.Diffs[1].Kind)
	assert.Equal(t, "port", got.Diffs[1].GivenName)

	// 差分は警告としてログに出る
	assert.Contains(t, stderr, `"diff_kind":"miscapitalized_key"`)
	assert.Contains(t, stderr, `"diff_kind":"extra_key"`)
}

func TestParamsCommandYAMLToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "params.yaml")
	stdout, _, err := run(t, "params", "--catalog", testCatalog, "--config", "testdata/config.json",
		"--format", "YAML", "--output", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var got ParamsResult
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, 600000.0, got.Params["checkpoint_timeout"])
}

func TestParamsCommandStrict(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{"shared_buffers": "1MB", "Shared_Buffers": "2MB"}`), 0o600))

	_, _, err := run(t, "params", "--catalog", testCatalog, "--config", cfg)
	require.NoError(t, err)

	_, _, err = run(t, "params", "--catalog", testCatalog, "--config", cfg, "--strict")
	require.Error(t, err)
	assert.Equal(t, errors.KindConsistencyAssertion, errors.KindOf(err))
}

func TestMetricsCommand(t *testing.T) {
	stdout, _, err := run(t, "metrics", "--catalog", testCatalog, "--metrics", "testdata/metrics.json",
		"--execution-time", "1m", "--external", "testdata/external.json")
	require.NoError(t, err)

	var got MetricsResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, map[string]float64{
		"pg_stat_database.xact_commit":   20,
		"pg_stat_bgwriter.buffers_alloc": 10,
		"throughput_txn_per_sec":         1500.5,
	}, got.Metrics)
	assert.Equal(t, map[string]string{"pg_stat_database.datname": "tpcc"}, got.Info)
	require.Len(t, got.Diffs, 1)
	assert.Equal(t, "pg_stat_bgwriter.maxwritten_clean", got.Diffs[0].GivenName)
}

func TestAggregateCommand(t *testing.T) {
	_, _, err := run(t, "aggregate", "--catalog", testCatalog, "--observations", "testdata/observations.json")
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidIntegerFormat, errors.KindOf(err))

	stdout, stderr, err := run(t, "aggregate", "--catalog", testCatalog,
		"--observations", "testdata/observations.json", "--skip-invalid")
	require.NoError(t, err)

	var got AggregateResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, []string{"shared_buffers", "checkpoint_timeout", "enable_seqscan", "wal_sync_method"}, got.Knobs)
	assert.Equal(t, []string{"pg_stat_database.xact_commit", "pg_stat_bgwriter.buffers_alloc", "throughput_txn_per_sec"}, got.Metrics)
	assert.Equal(t, []string{"run-4"}, got.Skipped)
	require.Len(t, got.Rows, 3)
	assert.Equal(t, []string{"run-1"}, got.Rows[0].Labels)
	assert.Equal(t, []float64{128 << 20, 300000, 1, 0}, got.Rows[0].X)
	assert.Equal(t, []float64{10, 1, 100}, got.Rows[0].Y)
	assert.Contains(t, stderr, "skipping observation")
}

func TestAggregateCommandDedupe(t *testing.T) {
	stdout, _, err := run(t, "aggregate", "--catalog", testCatalog,
		"--observations", "testdata/observations.json", "--skip-invalid", "--dedupe")
	require.NoError(t, err)

	var got AggregateResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got.Rows, 2)
	assert.Equal(t, []string{"run-1", "run-2"}, got.Rows[0].Labels)
	assert.Equal(t, []float64{15, 2, 200}, got.Rows[0].Y)
	assert.Equal(t, []string{"run-3"}, got.Rows[1].Labels)
	assert.Equal(t, []float64{1 << 30, 30000, 0, 2}, got.Rows[1].X)
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := run(t, "version", "--constraint", ">= 9.6, < 10",
		"PostgreSQL 9.6.3 on x86_64-pc-linux-gnu, compiled by gcc 4.8.5")
	require.NoError(t, err)

	var got VersionResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "9.6", got.Version)
	assert.Equal(t, "9.6.0", got.Semver)
	require.NotNil(t, got.Satisfies)
	assert.True(t, *got.Satisfies)
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantKind errors.Kind
	}{
		{
			name:     "engine without adapter",
			args:     []string{"version", "--engine", "oracle", "Oracle 19.3.0"},
			wantKind: errors.KindNotImplementedForEngine,
		},
		{
			name: "unknown engine",
			args: []string{"version", "--engine", "cassandra", "4.0.1"},
		},
		{
			name: "missing banner",
			args: []string{"version"},
		},
		{
			name: "catalog engine mismatch",
			args: []string{"params", "--engine", "mysql", "--catalog", testCatalog, "--config", "testdata/config.json"},
		},
		{
			name: "unknown format",
			args: []string{"params", "--catalog", testCatalog, "--config", "testdata/config.json", "--format", "xml"},
		},
		{
			name: "missing file",
			args: []string{"params", "--catalog", testCatalog, "--config", "testdata/nope.json"},
		},
		{
			name: "invalid log level",
			args: []string{"--log-level", "loud", "version", "PostgreSQL 9.6.3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, errors.KindOf(err))
			}
		})
	}
}

func TestEngineFromEnvironment(t *testing.T) {
	t.Setenv("DBNORM_ENGINE", "oracle")
	_, _, err := run(t, "version", "Oracle 19.3.0")
	require.Error(t, err)
	assert.Equal(t, errors.KindNotImplementedForEngine, errors.KindOf(err))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{" yaml ", FormatYAML, false},
		{"table", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
