package cli

import (
	"context"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/urfave/cli/v3"

	"github.com/ssyssy/ottertune/core/catalog"
	"github.com/ssyssy/ottertune/dbms"
	"github.com/ssyssy/ottertune/pkg/errors"
	"github.com/ssyssy/ottertune/pkg/log"
)

// VersionResult is the output of the version command.
type VersionResult struct {
	Engine     string `json:"engine" yaml:"engine"`
	Version    string `json:"version" yaml:"version"`
	Semver     string `json:"semver" yaml:"semver"`
	Constraint string `json:"constraint,omitempty" yaml:"constraint,omitempty"`
	Satisfies  *bool  `json:"satisfies,omitempty" yaml:"satisfies,omitempty"`
}

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:      "version",
		Usage:     "Extract MAJOR.MINOR from an engine version banner",
		ArgsUsage: "BANNER",
		Description: `Parses the version banner reported by the engine, for example
"PostgreSQL 9.6.3 on x86_64-pc-linux-gnu, compiled by gcc", and prints the
MAJOR.MINOR version used to select a catalog. With --constraint the version
is also checked against a semantic version range such as ">= 9.6, < 11".`,
		Flags: []cli.Flag{
			engineFlag(),
			&cli.StringFlag{
				Name:  "constraint",
				Usage: "Semantic version range to check the version against",
			},
			formatFlag(),
			outputFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := setup(cmd)
			if err != nil {
				return err
			}
			banner := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
			if banner == "" {
				return errors.New("version banner argument is required")
			}
			engine, err := catalog.ParseEngineType(cmd.String("engine"))
			if err != nil {
				return err
			}

			registry := dbms.DefaultRegistry()
			s, err := registry.ParseVersionString(engine, banner)
			if err != nil {
				return err
			}
			v, err := registry.ParseVersion(engine, banner)
			if err != nil {
				return err
			}
			result := VersionResult{Engine: string(engine), Version: s, Semver: v.String()}

			if c := cmd.String("constraint"); c != "" {
				constraint, err := semver.NewConstraint(c)
				if err != nil {
					return errors.Wrapf(err, "parse constraint %q", c)
				}
				ok := constraint.Check(v)
				result.Constraint = c
				result.Satisfies = &ok
			}

			logger.Debug("version parsed", log.EngineKey, string(engine), log.VersionKey, s)
			return writeResult(cmd, result)
		},
	}
}
