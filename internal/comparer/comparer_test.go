// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package comparer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refdiff/refdiff/internal/snapshot"
	"github.com/refdiff/refdiff/internal/store"
	"github.com/refdiff/refdiff/internal/table"
)

// fakeS3 serves the right-hand snapshot from memory.
type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3v2.ListObjectsV2Input, _ ...func(*s3v2.Options)) (*s3v2.ListObjectsV2Output, error) {
	var contents []s3types.Object
	for key := range f.objects {
		if strings.HasPrefix(key, awsv2.ToString(in.Prefix)) {
			contents = append(contents, s3types.Object{Key: awsv2.String(key)})
		}
	}
	return &s3v2.ListObjectsV2Output{Contents: contents, IsTruncated: awsv2.Bool(false)}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3v2.GetObjectInput, _ ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error) {
	body, ok := f.objects[awsv2.ToString(in.Key)]
	if !ok {
		return nil, errors.New("no such key")
	}
	return &s3v2.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

// storeBytes builds a store file in memory-backed temp space and returns its
// raw bytes for the fake S3.
func storeBytes(t *testing.T, tables map[string]*table.Table) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "s.h5")
	w, err := store.Create(path)
	require.NoError(t, err)
	for key, tbl := range tables {
		require.NoError(t, w.Put(key, tbl))
	}
	require.NoError(t, w.Close())
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return raw
}

func writeStoreFile(t *testing.T, path string, tables map[string]*table.Table) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, storeBytes(t, tables), 0o644))
}

func series(vals ...float64) *table.Table {
	tbl := &table.Table{Columns: []string{"v"}}
	for i, v := range vals {
		tbl.Index = append(tbl.Index, string(rune('a'+i)))
		tbl.Data = append(tbl.Data, []float64{v})
	}
	return tbl
}

func s3Source(t *testing.T, spec string) snapshot.Source {
	t.Helper()
	src, err := snapshot.ParseSource(spec)
	require.NoError(t, err)
	return src
}

// fixture builds a worktree repo for ref1 and a fake S3 keyspace for ref2.
func fixture(t *testing.T) *Comparer {
	t.Helper()

	repo := t.TempDir()
	tardis := filepath.Join(repo, "tardis")

	identical := map[string]*table.Table{"/data/t1": series(1, 2)}

	writeStoreFile(t, filepath.Join(tardis, "b.h5"), map[string]*table.Table{
		"/data/t1": series(1, 2),
		"/data/t2": series(10, 20),
	})
	writeStoreFile(t, filepath.Join(tardis, "a.h5"), identical)
	writeStoreFile(t, filepath.Join(tardis, "plasma", "b.h5"), identical)
	require.NoError(t, os.WriteFile(filepath.Join(tardis, "broken.h5"), []byte("not a store"), 0o644))

	fake := &fakeS3{objects: map[string][]byte{
		"run/tardis/b.h5": storeBytes(t, map[string]*table.Table{
			"/data/t1": series(1, 2),
			"/data/t2": series(11, 20),
		}),
		"run/tardis/c.h5":        storeBytes(t, identical),
		"run/tardis/plasma/b.h5": storeBytes(t, map[string]*table.Table{"/data/t1": series(9, 9)}),
		"run/tardis/broken.h5":   []byte("also not a store"),
	}}

	c, err := New(
		snapshot.Source{Kind: snapshot.KindWorktree},
		s3Source(t, "s3://refs/run/tardis"),
		Options{ComparePath: "tardis", ScratchPrefix: "refdiff_test_", RepoDir: repo, S3: fake},
	)
	require.NoError(t, err)
	return c
}

func TestNewRequiresASource(t *testing.T) {
	_, err := New(snapshot.Source{}, snapshot.Source{}, Options{})
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestFullRun(t *testing.T) {
	c := fixture(t)
	defer func() { _ = c.Teardown() }()

	require.NoError(t, c.Setup(context.Background()))

	tree, err := c.Diff()
	require.NoError(t, err)
	assert.Contains(t, tree.OnlyLeft, "a.h5")
	assert.Contains(t, tree.OnlyRight, "c.h5")
	assert.Contains(t, tree.Modified, "b.h5")

	rep, err := c.CompareStores()
	require.NoError(t, err)

	// Same-named stores in different directories get separate entries.
	assert.Equal(t, []string{"b.h5", "plasma/b.h5"}, rep.Paths())

	top := rep.Get("b.h5")
	require.NotNil(t, top)
	assert.Equal(t, 0, top.KeySetDiff)
	assert.Equal(t, 1, top.IdenticalKeys)
	assert.Equal(t, 1, top.DifferingKeys)
	assert.Contains(t, top.RelDiff, "/data/t2")
	assert.NotContains(t, top.RelDiff, "/data/t1")

	nested := rep.Get("plasma/b.h5")
	require.NotNil(t, nested)
	assert.Equal(t, 1, nested.DifferingKeys)

	// a.h5 exists only in ref1: structural diff territory, not compared.
	assert.Nil(t, rep.Get("a.h5"))

	// The unopenable store is skipped, not fatal.
	require.Len(t, rep.Skipped(), 1)
	assert.Equal(t, "broken.h5", rep.Skipped()[0].Path)

	require.NoError(t, c.Teardown())
	snap1, _ := c.Snapshots()
	_, err = os.Stat(snap1.Root)
	assert.Error(t, err)
}

func TestOutOfOrderCallsFailFast(t *testing.T) {
	c := fixture(t)
	defer func() { _ = c.Teardown() }()

	var iserr *InvalidStateError

	_, err := c.Diff()
	require.ErrorAs(t, err, &iserr)
	assert.Equal(t, "Diff", iserr.Op)

	_, err = c.CompareStores()
	require.ErrorAs(t, err, &iserr)

	require.NoError(t, c.Setup(context.Background()))

	err = c.Setup(context.Background())
	require.ErrorAs(t, err, &iserr)
	assert.Equal(t, StateProvisioned, iserr.State)
}

func TestTeardownIsSafeAnytime(t *testing.T) {
	c := fixture(t)

	// Before setup, and twice in a row.
	require.NoError(t, c.Teardown())
	require.NoError(t, c.Teardown())

	// After teardown the state machine refuses further work.
	var iserr *InvalidStateError
	require.ErrorAs(t, c.Setup(context.Background()), &iserr)
}

func TestSetupRetryReplacesScratch(t *testing.T) {
	repo := t.TempDir() // tardis missing, first Setup fails
	identical := map[string]*table.Table{"/data/t1": series(1, 2)}

	c, err := New(
		snapshot.Source{Kind: snapshot.KindWorktree},
		s3Source(t, "s3://refs/run/tardis"),
		Options{ComparePath: "tardis", ScratchPrefix: "refdiff_test_", RepoDir: repo, S3: &fakeS3{objects: map[string][]byte{
			"run/tardis/b.h5": storeBytes(t, identical),
		}}},
	)
	require.NoError(t, err)
	defer func() { _ = c.Teardown() }()

	var perr *snapshot.ProvisionError
	require.ErrorAs(t, c.Setup(context.Background()), &perr)
	first := c.scratch.Root()

	// Materialize the compare path and retry. The failed attempt's scratch
	// dir must be released, not leaked.
	writeStoreFile(t, filepath.Join(repo, "tardis", "b.h5"), identical)
	require.NoError(t, c.Setup(context.Background()))

	assert.NotEqual(t, first, c.scratch.Root())
	_, err = os.Stat(first)
	assert.Error(t, err)
}

func TestSetupFailureStillTearsDown(t *testing.T) {
	repo := t.TempDir() // no tardis directory

	c, err := New(
		snapshot.Source{Kind: snapshot.KindWorktree},
		s3Source(t, "s3://refs/run/tardis"),
		Options{ComparePath: "tardis", ScratchPrefix: "refdiff_test_", RepoDir: repo, S3: &fakeS3{objects: map[string][]byte{}}},
	)
	require.NoError(t, err)

	err = c.Setup(context.Background())
	var perr *snapshot.ProvisionError
	require.ErrorAs(t, err, &perr)

	require.NoError(t, c.Teardown())
	require.NoError(t, c.Teardown())
}
