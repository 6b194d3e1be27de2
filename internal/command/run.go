// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/refdiff/refdiff/internal/config"
	"github.com/refdiff/refdiff/internal/dirdiff"
	"github.com/refdiff/refdiff/internal/log"
	"github.com/refdiff/refdiff/internal/meta"
	"github.com/refdiff/refdiff/internal/report"
	"github.com/refdiff/refdiff/internal/tui"
)

// runCommandAction is the action handler for the "run" subcommand. It
// provisions both refs, renders the structural diff, compares every store
// present on both sides, and emits the report per common flags.
func runCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	config.Config.Namespace = "run"

	c, err := NewComparer(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if terr := c.Teardown(); terr != nil {
			log.Warnf("teardown: %v", terr)
		}
	}()

	if err := c.Setup(ctx); err != nil {
		return err
	}

	tree, err := c.Diff()
	if err != nil {
		return err
	}

	rep, err := c.CompareStores()
	if err != nil {
		return err
	}

	if format := cmd.String("output"); format != "text" {
		return rep.Encode(os.Stdout, format, cmd.String("query"))
	}

	if cmd.Bool("titles") {
		fmt.Println("Directory tree:")
	}
	dirdiff.Render(os.Stdout, tree, RenderOpts(cmd)...)
	fmt.Println()
	rep.WriteSummary(os.Stdout)

	if cmd.Bool("heatmaps") {
		for _, path := range rep.Paths() {
			fmt.Printf("\n%s\n", path)
			report.WriteHeatmap(os.Stdout, rep.Get(path), cmd.Bool("color"))
		}
	}

	if cmd.Bool("interactive") {
		for {
			path := tui.SelectStore(rep)
			if path == "" {
				break
			}
			fmt.Printf("\n%s\n", path)
			report.WriteHeatmap(os.Stdout, rep.Get(path), cmd.Bool("color"))
		}
	}

	return nil
}

// runCommandBuilder constructs the cli.Command for "run", wiring metadata,
// flags, and action/validator handlers.
func runCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "full comparison run",
		UsageText: "refdiff run [RepoDir] [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "heatmaps",
				Usage: "render a difference heatmap per compared store",
				Value: false,
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "pick stores to inspect after the run",
				Value:   false,
			},
			&cli.BoolFlag{
				Name:  "patch",
				Usage: "show unified diffs for modified text files",
				Value: false,
			},
			&cli.BoolFlag{
				Name:  "json-diff",
				Usage: "show structural diffs for modified json files",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "skip-keys",
				Usage: "comma-separated top-level keys to ignore in json diffs",
			},
			NewRefFlag("ref1", "REFDIFF_REF1", "run", meta.Config.Source),
			NewRefFlag("ref2", "REFDIFF_REF2", "run", meta.Config.Source),
			NewRepoDirFlag("run", meta.Config.Source),
		}, NewGlobalFlags("run")...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, cmd)
		},
		Action: runCommandAction,
	}
}
