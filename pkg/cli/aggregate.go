package cli

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/urfave/cli/v3"
	"gonum.org/v1/gonum/mat"

	"github.com/ssyssy/ottertune/core/catalog"
	"github.com/ssyssy/ottertune/dataset"
	"github.com/ssyssy/ottertune/dbms"
	"github.com/ssyssy/ottertune/pkg/errors"
	"github.com/ssyssy/ottertune/pkg/log"
	"github.com/ssyssy/ottertune/validation"
)

// AggregateResult is the output of the aggregate command.
type AggregateResult struct {
	Engine  string   `json:"engine" yaml:"engine"`
	Knobs   []string `json:"knobs" yaml:"knobs"`
	Metrics []string `json:"metrics" yaml:"metrics"`
	Rows    []Row    `json:"rows" yaml:"rows"`
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Row is one row of the aggregated matrices.
type Row struct {
	Labels []string  `json:"labels" yaml:"labels"`
	X      []float64 `json:"x" yaml:"x,flow"`
	Y      []float64 `json:"y" yaml:"y,flow"`
}

func aggregateCmd() *cli.Command {
	return &cli.Command{
		Name:  "aggregate",
		Usage: "Normalize a batch of observations into knob and metric matrices",
		Description: `Reads a JSON array of observations, each with an "id", the reported
"config", the "metrics" snapshot, optional "external_metrics" and the
"execution_time" in seconds. Every observation is normalized, then the
results are projected into one row per observation: knob columns in catalog
order, metric columns in catalog order followed by external metrics sorted
by name.

With --dedupe, observations with identical knob rows are merged and their
metrics replaced by the per-column median.`,
		Flags: []cli.Flag{
			engineFlag(),
			catalogFlag(),
			&cli.StringFlag{
				Name:     "observations",
				Required: true,
				Usage:    "Path to a JSON array of observations",
			},
			&cli.BoolFlag{
				Name:  "dedupe",
				Usage: "Merge observations with identical knob settings",
			},
			&cli.BoolFlag{
				Name:  "skip-invalid",
				Usage: "Skip observations that fail to normalize instead of aborting",
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
			data, err := readFile(cmd.String("observations"))
			if err != nil {
				return err
			}
			var raws []dbms.RawObservation
			if err := json.Unmarshal(data, &raws); err != nil {
				return errors.Wrapf(err, "decode observations %s", cmd.String("observations"))
			}

			skipInvalid := cmd.Bool("skip-invalid")
			var (
				observations []dataset.Observation
				external     []string
				skipped      []string
			)
			for i, raw := range raws {
				if raw.ID == "" {
					raw.ID = strconv.Itoa(i)
				}
				var (
					rec   dbms.NormalizedRecord
					diffs dbms.Diffs
				)
				err := errors.SafeExecute("normalize "+raw.ID, func() error {
					var err error
					rec, diffs, err = t.registry.Normalize(t.engine, raw, t.catalog.Parameters, t.catalog.Metrics)
					return err
				})
				if err != nil {
					if !skipInvalid {
						return err
					}
					logger.Warn("skipping observation", log.ObservationIDKey, raw.ID, log.ErrAttr(err))
					skipped = append(skipped, raw.ID)
					continue
				}
				validation.Report("config", diffs.Config)
				validation.Report("metrics", diffs.Metrics)

				if external == nil {
					external = sortedNames(raw.ExternalMetrics)
				}
				obs, err := dataset.NewObservation(rec.ID, rec.Params, rec.Metrics)
				if err != nil {
					return err
				}
				observations = append(observations, obs)
			}

			knobs := catalog.Names(t.catalog.TunableParameters())
			metrics := append(catalog.Names(t.catalog.NumericMetrics()), external...)
			m, err := dataset.AggregateData(observations, knobs, metrics)
			if err != nil {
				return err
			}
			if cmd.Bool("dedupe") {
				if m, err = m.CombineDuplicates(); err != nil {
					return err
				}
			}

			logger.Info("observations aggregated",
				log.EngineKey, string(t.engine),
				log.ObservationsKey, len(raws),
				log.RowsKey, m.Rows(),
				log.SkippedKey, len(skipped))
			return writeResult(cmd, newAggregateResult(string(t.engine), m, skipped))
		},
	}
}

func newAggregateResult(engine string, m *dataset.ObservationMatrix, skipped []string) AggregateResult {
	rows := make([]Row, m.Rows())
	for i := range rows {
		rows[i] = Row{
			Labels: m.RowLabels[i],
			X:      mat.Row(nil, i, m.X),
			Y:      mat.Row(nil, i, m.Y),
		}
	}
	return AggregateResult{
		Engine:  engine,
		Knobs:   m.XColumnLabels,
		Metrics: m.YColumnLabels,
		Rows:    rows,
		Skipped: skipped,
	}
}

func sortedNames(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
