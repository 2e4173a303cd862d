package cli

import (
	"context"
	"encoding/json"

	"github.com/urfave/cli/v3"

	"github.com/ssyssy/ottertune/dbms"
	"github.com/ssyssy/ottertune/pkg/errors"
	"github.com/ssyssy/ottertune/pkg/log"
	"github.com/ssyssy/ottertune/validation"
)

// MetricsResult is the output of the metrics command.
type MetricsResult struct {
	Engine  string             `json:"engine" yaml:"engine"`
	Metrics map[string]float64 `json:"metrics" yaml:"metrics"`
	Info    map[string]string  `json:"info,omitempty" yaml:"info,omitempty"`
	Diffs   []validation.Diff  `json:"diffs,omitempty" yaml:"diffs,omitempty"`
}

func metricsCmd() *cli.Command {
	return &cli.Command{
		Name:  "metrics",
		Usage: "Reconcile a metric snapshot and convert counters to rates",
		Description: `Reads a metric snapshot as reported by the engine (flat, or grouped by
scope such as pg_stat_database), reconciles it against the catalog and
divides every counter by the execution time. External metrics, if given,
are merged into the result unchanged. INFO metrics are reported verbatim.`,
		Flags: []cli.Flag{
			engineFlag(),
			catalogFlag(),
			&cli.StringFlag{
				Name:     "metrics",
				Aliases:  []string{"m"},
				Required: true,
				Usage:    "Path to the JSON metric snapshot",
			},
			&cli.DurationFlag{
				Name:     "execution-time",
				Required: true,
				Usage:    "Duration of the observation window (e.g. 60s, 5m)",
			},
			&cli.StringFlag{
				Name:  "external",
				Usage: "Path to a JSON object of external metrics (e.g. throughput)",
			},
			strictFlag(),
			formatFlag(),
			outputFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := setup(cmd)
			if err != nil {
				return err
			}
			t, err := loadTarget(cmd)
			if err != nil {
				return err
			}
			data, err := readFile(cmd.String("metrics"))
			if err != nil {
				return err
			}
			snapshot, err := dbms.DecodeRawMetrics(data)
			if err != nil {
				return err
			}
			external, err := readExternal(cmd.String("external"))
			if err != nil {
				return err
			}

			valid, diffs, err := t.registry.ParseMetrics(t.engine, snapshot, t.catalog.Metrics)
			if err != nil {
				return err
			}
			validation.Report("metrics", diffs)

			numeric := t.catalog.NumericMetrics()
			raw := make(map[string]string, len(numeric))
			for _, m := range numeric {
				raw[m.Name] = valid[m.Name]
			}
			info := make(map[string]string)
			for name, v := range valid {
				if _, ok := raw[name]; !ok {
					info[name] = v
				}
			}

			rates, err := t.registry.PreprocessMetrics(t.engine, raw, numeric, external, cmd.Duration("execution-time").Seconds())
			if err != nil {
				return err
			}

			logger.Info("metrics normalized",
				log.EngineKey, string(t.engine),
				log.MetricsKey, len(rates),
				log.DiffCountKey, len(diffs))
			return writeResult(cmd, MetricsResult{Engine: string(t.engine), Metrics: rates, Info: info, Diffs: diffs})
		},
	}
}

func readExternal(path string) (map[string]float64, error) {
	if path == "" {
		return nil, nil
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var external map[string]float64
	if err := json.Unmarshal(data, &external); err != nil {
		return nil, errors.Wrapf(err, "decode external metrics %s", path)
	}
	return external, nil
}
