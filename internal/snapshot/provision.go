// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/boostgo/fsx"

	"github.com/refdiff/refdiff/internal/log"
	"github.com/refdiff/refdiff/internal/scratch"
)

// Snapshot is one materialized copy of the comparison subpath. Root is inside
// the provisioner's scratch directory and is treated as read-only by every
// later stage.
type Snapshot struct {
	Name   string
	Root   string
	Source Source
}

// S3API is the slice of the S3 client the provisioner needs. Satisfied by
// *s3.Client; narrowed for tests.
type S3API interface {
	ListObjectsV2(ctx context.Context, in *s3v2.ListObjectsV2Input, optFns ...func(*s3v2.Options)) (*s3v2.ListObjectsV2Output, error)
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
}

// Provisioner materializes snapshots into a scratch directory. RepoDir is the
// directory holding both the git repository and the on-disk comparison
// subpath; S3 is only consulted for s3:// sources and may be nil otherwise.
type Provisioner struct {
	Scratch     *scratch.Dir
	ComparePath string
	RepoDir     string
	S3          S3API
}

// Provision materializes src into <scratch>/<destName> and returns the
// resulting Snapshot. The original source tree is never mutated: revision
// extraction targets the scratch work-tree only and the filesystem branch is
// a deep copy.
func (p *Provisioner) Provision(ctx context.Context, src Source, destName string) (*Snapshot, error) {
	dest := p.Scratch.Path(destName)

	var err error
	switch src.Kind {
	case KindRevision:
		err = p.fromRevision(ctx, src.Revision, dest)
	case KindS3:
		err = p.fromS3(ctx, src, dest)
	default:
		err = p.fromWorktree(dest)
	}
	if err != nil {
		return nil, &ProvisionError{Source: src, Dest: destName, Err: err}
	}

	log.Infof("provisioned %s from %s source", destName, src.Kind)
	return &Snapshot{Name: destName, Root: dest, Source: src}, nil
}

// fromRevision extracts the comparison subpath from a revision into the
// scratch work-tree, then moves it to dest. The repository's own working copy
// and index stay untouched apart from git's index refresh of the named path.
func (p *Provisioner) fromRevision(ctx context.Context, rev, dest string) error {
	cmd := exec.CommandContext(ctx, "git",
		"-C", p.RepoDir,
		"--work-tree="+p.Scratch.Root(),
		"checkout", rev, "--", p.ComparePath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git checkout %s -- %s: %v: %s", rev, p.ComparePath, err, strings.TrimSpace(string(out)))
	}

	extracted := p.Scratch.Path(p.ComparePath)
	if _, err := os.Stat(extracted); err != nil {
		return fmt.Errorf("revision %s does not contain %s: %w", rev, p.ComparePath, err)
	}
	return os.Rename(extracted, dest)
}

// fromWorktree deep-copies the on-disk comparison subpath into dest.
// Permissions are preserved and symlinks are recreated as links, never
// followed.
func (p *Provisioner) fromWorktree(dest string) error {
	return fsx.CopyDirectory(filepath.Join(p.RepoDir, p.ComparePath), dest)
}

// fromS3 downloads every object under the source prefix into dest, preserving
// the key structure below the prefix.
func (p *Provisioner) fromS3(ctx context.Context, src Source, dest string) error {
	if p.S3 == nil {
		return fmt.Errorf("no s3 client configured")
	}

	prefix := src.Prefix
	if prefix != "" {
		prefix += "/"
	}

	var (
		token *string
		count int
	)
	for {
		out, err := p.S3.ListObjectsV2(ctx, &s3v2.ListObjectsV2Input{
			Bucket:            awsv2.String(src.Bucket),
			Prefix:            awsv2.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return fmt.Errorf("list s3://%s/%s: %w", src.Bucket, prefix, err)
		}

		for _, obj := range out.Contents {
			key := awsv2.ToString(obj.Key)
			rel := strings.TrimPrefix(key, prefix)
			if rel == "" || strings.HasSuffix(rel, "/") {
				continue
			}
			if err := p.downloadObject(ctx, src.Bucket, key, filepath.Join(dest, filepath.FromSlash(rel))); err != nil {
				return err
			}
			count++
		}

		if !awsv2.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}

	if count == 0 {
		return fmt.Errorf("no objects under s3://%s/%s", src.Bucket, prefix)
	}
	log.Debugf("downloaded %d objects from s3://%s/%s", count, src.Bucket, prefix)
	return nil
}

// downloadObject fetches one object to the given local path.
func (p *Provisioner) downloadObject(ctx context.Context, bucket, key, path string) error {
	out, err := p.S3.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		return fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer func() { _ = out.Body.Close() }()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, out.Body); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
