// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/refdiff/refdiff/internal/aws"
	"github.com/refdiff/refdiff/internal/comparer"
	"github.com/refdiff/refdiff/internal/dirdiff"
	"github.com/refdiff/refdiff/internal/meta"
	"github.com/refdiff/refdiff/internal/snapshot"
)

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// NewComparer builds the orchestrator from the command's ref flags. An S3
// client is only constructed when a ref actually names a bucket.
func NewComparer(ctx context.Context, cmd *cli.Command) (*comparer.Comparer, error) {
	ref1, err := snapshot.ParseSource(cmd.String("ref1"))
	if err != nil {
		return nil, err
	}
	ref2, err := snapshot.ParseSource(cmd.String("ref2"))
	if err != nil {
		return nil, err
	}

	opts := comparer.Options{RepoDir: RepoDir(cmd)}

	if ref1.Kind == snapshot.KindS3 || ref2.Kind == snapshot.KindS3 {
		cfg, err := aws.LoadConfig(ctx)
		if err != nil {
			return nil, err
		}
		opts.S3 = aws.NewS3(cfg)
	}

	return comparer.New(ref1, ref2, opts)
}

// RepoDir resolves the repository directory for a command: the --repo flag
// wins, then the positional directory captured at startup, then the starting
// working directory.
func RepoDir(cmd *cli.Command) string {
	if r := cmd.String("repo"); r != "" {
		return r
	}
	m := GetMeta(cmd)
	if m.RepoDir != "" {
		return m.RepoDir
	}
	if m.StartingDir != "" {
		return m.StartingDir
	}
	return "."
}

// RenderOpts translates the tree rendering flags into dirdiff options.
func RenderOpts(cmd *cli.Command) (opts []dirdiff.RenderOption) {
	if cmd.Bool("color") {
		opts = append(opts, dirdiff.WithColor())
	}
	if cmd.Bool("patch") {
		opts = append(opts, dirdiff.WithPatch())
	}
	if cmd.Bool("json-diff") {
		opts = append(opts, dirdiff.WithJSONDiff(splitCommaList(cmd.String("skip-keys"))))
	}
	return
}

// splitCommaList splits a comma-separated flag value, dropping empty and
// whitespace-only entries.
func splitCommaList(s string) (out []string) {
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return
}
