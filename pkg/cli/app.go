package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/ssyssy/ottertune/core/catalog"
	"github.com/ssyssy/ottertune/dbms"
	"github.com/ssyssy/ottertune/pkg/errors"
	"github.com/ssyssy/ottertune/pkg/log"
	"github.com/ssyssy/ottertune/validation"
)

const name = "dbnorm"

// overridden during build with ldflags
var version = "dev"

func engineFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "engine",
		Aliases: []string{"e"},
		Value:   string(catalog.Postgres),
		Usage:   "Database engine tag (e.g. postgres)",
		Sources: cli.EnvVars("DBNORM_ENGINE"),
	}
}

func catalogFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "catalog",
		Aliases:  []string{"c"},
		Required: true,
		Usage:    "Path to the YAML descriptor catalog of the engine version",
	}
}

func strictFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "strict",
		Usage: "Fail when two input keys differ only by case instead of picking one",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "format",
		Value: string(FormatJSON),
		Usage: "Output format (json, yaml)",
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write the result to this file instead of stdout",
	}
}

// NewApp returns the root dbnorm command.
func NewApp() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Normalize database knob and metric snapshots",
		Version:               version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("DBNORM_LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			paramsCmd(),
			metricsCmd(),
			aggregateCmd(),
			versionCmd(),
		},
	}
}

// Execute runs the application with os.Args and exits non-zero on error.
func Execute() {
	app := NewApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Default().Error("dbnorm failed", err)
		os.Exit(1)
	}
}

// setup configures logging from the root flags. Every action calls it
// first so that flags and environment overrides are already parsed.
func setup(cmd *cli.Command) (log.Logger, error) {
	w := cmd.Root().ErrWriter
	if w == nil {
		w = os.Stderr
	}
	if err := log.SetupLogger(w, cmd.String("log-level")); err != nil {
		return nil, err
	}
	return log.Default().With(log.ComponentKey, "cli", log.OperationKey, cmd.Name), nil
}

// target is what every normalization command works on: the engine, its
// adapter registry and the loaded catalog.
type target struct {
	engine   catalog.EngineType
	registry *dbms.Registry
	catalog  *catalog.Catalog
}

func loadTarget(cmd *cli.Command) (*target, error) {
	engine, err := catalog.ParseEngineType(cmd.String("engine"))
	if err != nil {
		return nil, err
	}
	path := cmd.String("catalog")
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if cat.Engine != "" && cat.Engine != engine {
		return nil, errors.Newf("catalog %s describes %s, not %s", path, cat.Engine, engine)
	}

	var opts []dbms.Option
	if cmd.Bool("strict") {
		opts = append(opts, dbms.WithValidationOptions(validation.WithStrictCollisions()))
	}
	registry := dbms.DefaultRegistry(opts...)
	if _, err := registry.Lookup(engine); err != nil {
		return nil, err
	}
	return &target{engine: engine, registry: registry, catalog: cat}, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return data, nil
}
