package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/ssyssy/ottertune/dbms"
	"github.com/ssyssy/ottertune/pkg/log"
	"github.com/ssyssy/ottertune/validation"
)

// ParamsResult is the output of the params command.
type ParamsResult struct {
	Engine string             `json:"engine" yaml:"engine"`
	Params map[string]float64 `json:"params" yaml:"params"`
	Diffs  []validation.Diff  `json:"diffs,omitempty" yaml:"diffs,omitempty"`
}

func paramsCmd() *cli.Command {
	return &cli.Command{
		Name:  "params",
		Usage: "Reconcile a knob configuration and convert tunable knobs to numbers",
		Description: `Reads a flat JSON object of knob values, reconciles its keys against the
catalog (fixing capitalization, dropping unknown knobs, filling missing ones
with the catalog default) and converts every tunable knob to its numeric
form. Unit-suffixed values such as "128MB" or "5min" are expanded.`,
		Flags: []cli.Flag{
			engineFlag(),
			catalogFlag(),
			&cli.StringFlag{
				Name:     "config",
				Required: true,
				Usage:    "Path to a JSON object of knob name to value",
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
			data, err := readFile(cmd.String("config"))
			if err != nil {
				return err
			}
			config, err := dbms.DecodeConfig(data)
			if err != nil {
				return err
			}

			valid, diffs, err := t.registry.ParseConfig(t.engine, config, t.catalog.Parameters)
			if err != nil {
				return err
			}
			validation.Report("config", diffs)

			tunable := t.catalog.TunableParameters()
			raw := make(map[string]string, len(tunable))
			for _, p := range tunable {
				raw[p.Name] = valid[p.Name]
			}
			params, err := t.registry.PreprocessParams(t.engine, raw, tunable)
			if err != nil {
				return err
			}

			logger.Info("params normalized",
				log.EngineKey, string(t.engine),
				log.KnobsKey, len(params),
				log.DiffCountKey, len(diffs))
			return writeResult(cmd, ParamsResult{Engine: string(t.engine), Params: params, Diffs: diffs})
		},
	}
}
