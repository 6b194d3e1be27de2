// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/refdiff/refdiff/internal/config"
	"github.com/refdiff/refdiff/internal/dirdiff"
	"github.com/refdiff/refdiff/internal/log"
	"github.com/refdiff/refdiff/internal/meta"
)

// treeCommandAction provisions both refs and renders the structural diff
// without opening any store.
func treeCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	config.Config.Namespace = "tree"

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

	dirdiff.Render(os.Stdout, tree, RenderOpts(cmd)...)
	return nil
}

func treeCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "tree",
		Usage:     "structural diff of the two refs",
		UsageText: "refdiff tree [RepoDir] [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
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
			NewRefFlag("ref1", "REFDIFF_REF1", "tree", meta.Config.Source),
			NewRefFlag("ref2", "REFDIFF_REF2", "tree", meta.Config.Source),
			NewRepoDirFlag("tree", meta.Config.Source),
		}, NewGlobalFlags("tree")...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, cmd)
		},
		Action: treeCommandAction,
	}
}
