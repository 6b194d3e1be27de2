// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/refdiff/refdiff/internal/config"
	"github.com/refdiff/refdiff/internal/log"
	"github.com/refdiff/refdiff/internal/meta"
	"github.com/refdiff/refdiff/internal/report"
	"github.com/refdiff/refdiff/internal/tablediff"
)

// storeCommandAction compares two store files given directly on the command
// line, bypassing snapshot provisioning.
func storeCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	config.Config.Namespace = "store"

	args := cmd.Args().Slice()
	if len(args) != 2 {
		return fmt.Errorf("usage: refdiff store LEFT RIGHT")
	}

	res, err := tablediff.Compare(args[0], args[1])
	if err != nil {
		return err
	}

	rep := report.New()
	rep.Add(filepath.Base(args[0]), res)

	if format := cmd.String("output"); format != "text" {
		return rep.Encode(os.Stdout, format, cmd.String("query"))
	}

	rep.WriteSummary(os.Stdout)
	fmt.Println()
	report.WriteHeatmap(os.Stdout, res, cmd.Bool("color"))
	return nil
}

func storeCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "store",
		Usage:     "compare two store files",
		UsageText: "refdiff store LEFT RIGHT [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: NewGlobalFlags("store"),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, cmd)
		},
		Action: storeCommandAction,
	}
}
