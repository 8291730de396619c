package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/arloliu/bstruct/internal/config"
	"github.com/arloliu/bstruct/internal/logging"
)

// app carries the settings resolved by the root command's Before hook.
type app struct {
	cfg    config.Config
	logger zerolog.Logger
}

func main() {
	if err := newRoot(&app{}).Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRoot(a *app) *cli.Command {
	return &cli.Command{
		Name:  "bstruct",
		Usage: "Inspect, verify and archive bstruct store files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a YAML config file"},
			&cli.StringFlag{Name: "log-level", Usage: "log level (debug, info, warn, error)"},
			&cli.BoolFlag{Name: "human", Usage: "human-friendly console logs"},
		},
		Before: a.setup,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			a.dumpCmd(),
			a.walkCmd(),
			a.infoCmd(),
			a.namesCmd(),
			a.indexCmd(),
			a.packCmd(),
			a.unpackCmd(),
		},
	}
}

func (a *app) setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("human") {
		cfg.Log.Human = cmd.Bool("human")
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Human)
	if err != nil {
		return ctx, err
	}

	a.cfg = cfg
	a.logger = logger

	return ctx, nil
}

// path returns the i-th positional argument or a usage error naming it.
func path(cmd *cli.Command, i int, what string) (string, error) {
	p := cmd.Args().Get(i)
	if p == "" {
		return "", fmt.Errorf("%s: missing %s argument", cmd.Name, what)
	}

	return p, nil
}
