package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/pqgrep/pqgrep/internal/config"
	"github.com/pqgrep/pqgrep/internal/debug"
	"github.com/pqgrep/pqgrep/internal/display"
	"github.com/pqgrep/pqgrep/internal/pattern"
	"github.com/pqgrep/pqgrep/internal/pipeline"
	"github.com/pqgrep/pqgrep/internal/source"
	"github.com/pqgrep/pqgrep/internal/version"
	"github.com/pqgrep/pqgrep/internal/window"
)

func main() {
	app := &cli.App{
		Name:                   "pqgrep",
		Usage:                  "grep-style search over Parquet record files",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Directory to load .pqgrep.kdl from (default: working directory)",
			},
			&cli.BoolFlag{
				Name:    "ignore-case",
				Aliases: []string{"i"},
				Usage:   "Force case-insensitive matching (overrides smart case)",
			},
			&cli.BoolFlag{
				Name:  "invert-match",
				Usage: "Inverted match (grep -v): show records that DON'T match pattern",
			},
			&cli.IntFlag{
				Name:    "offset",
				Aliases: []string{"o"},
				Usage:   "Skip the first N matches per file",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Max matches per file, 0 = unlimited",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output one JSON record per match instead of a table",
			},
			&cli.IntFlag{
				Name:    "trim",
				Aliases: []string{"t"},
				Usage:   "Trim string values to N characters of context around the match, 0 = unlimited",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable match highlighting even on a terminal",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Show debug information",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Aliases:   []string{"s"},
				Usage:     "Search for pattern in parquet files",
				ArgsUsage: "<pattern> [path or URL]",
				Action:    searchCommand,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List files that would be searched",
				Action:  listCommand,
			},
		},
		Action: func(c *cli.Context) error {
			// Default to search when a pattern is given
			if c.NArg() > 0 {
				return searchCommand(c)
			}
			return cli.ShowAppHelp(c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfigForCLI loads configuration honoring the --root override
func loadConfigForCLI(c *cli.Context) (*config.Config, error) {
	rootFlag := c.String("root")
	cfg, err := config.LoadWithRoot("", rootFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if rootFlag != "" {
		config.ResolveRoot(cfg, rootFlag)
	}
	return cfg, nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: pqgrep <pattern> [path or URL]")
	}

	debug.SetVerbose(c.Bool("verbose"))

	query := c.Args().Get(0)
	target := c.Args().Get(1)

	cfg, err := loadConfigForCLI(c)
	if err != nil {
		return err
	}

	pat, err := pattern.Compile(query, c.Bool("ignore-case"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("pqgrep: %v", err), 1)
	}

	win := window.Window{Offset: cfg.Search.Offset, Limit: cfg.Search.Limit}
	if c.IsSet("offset") {
		win.Offset = c.Int("offset")
	}
	if c.IsSet("limit") {
		win.Limit = c.Int("limit")
	}
	if err := win.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("pqgrep: %v", err), 1)
	}

	trimWidth := cfg.Output.TrimWidth
	if c.IsSet("trim") {
		trimWidth = c.Int("trim")
	}
	if trimWidth < 0 {
		trimWidth = 0
	}

	invert := c.Bool("invert-match")
	transform := display.Transform{
		Pattern:   pat,
		Invert:    invert,
		Highlight: highlightEnabled(c, cfg),
		TrimWidth: trimWidth,
	}

	var renderer display.Renderer
	if c.Bool("json") {
		renderer = &display.LineRenderer{Out: os.Stdout, Transform: transform}
	} else {
		renderer = &display.TableRenderer{Out: os.Stdout, Transform: transform}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return pipeline.Run(ctx, target, pipeline.Options{
		Pattern:    pat,
		Invert:     invert,
		Window:     win,
		Renderer:   renderer,
		Opener:     source.DefaultOpener{},
		Extensions: cfg.Extensions,
		Exclude:    cfg.Exclude,
		ErrOut:     os.Stderr,
	})
}

func listCommand(c *cli.Context) error {
	debug.SetVerbose(c.Bool("verbose"))

	cfg, err := loadConfigForCLI(c)
	if err != nil {
		return err
	}

	files, err := pipeline.ResolveTargets(c.Args().Get(0), cfg.Extensions, cfg.Exclude)
	if err != nil {
		return err
	}
	for _, file := range files {
		fmt.Println(file)
	}
	return nil
}

// highlightEnabled decides whether matched spans get emphasis markers.
// Piped or redirected output stays clean.
func highlightEnabled(c *cli.Context, cfg *config.Config) bool {
	if c.Bool("no-color") || os.Getenv("NO_COLOR") != "" {
		return false
	}
	switch cfg.Output.Color {
	case "never":
		return false
	case "always":
		return true
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
