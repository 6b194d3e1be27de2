// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/refdiff/refdiff/internal/table"
)

// Writer produces a tabular store file. Keys must be unique within one file;
// slash-delimited hierarchical keys ("/simulation/plasma") are conventional
// but not enforced.
type Writer struct {
	f    *os.File
	seen map[string]struct{}
	err  error
}

// Create starts a new store file at path, truncating any existing file.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(magic); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Writer{f: f, seen: map[string]struct{}{}}, nil
}

// Put appends one table under the given key. The first error sticks: later
// calls and Close report it.
func (w *Writer) Put(key string, t *table.Table) error {
	if w.err != nil {
		return w.err
	}
	if key == "" || len(key) > maxKeyLen {
		return w.fail(fmt.Errorf("invalid key %q", key))
	}
	if _, dup := w.seen[key]; dup {
		return w.fail(fmt.Errorf("duplicate key %q", key))
	}

	payload, err := encodePayload(t)
	if err != nil {
		return w.fail(fmt.Errorf("encode %s: %w", key, err))
	}

	var header []byte
	header = binary.AppendUvarint(header, uint64(len(key)))
	header = append(header, key...)
	header = binary.AppendUvarint(header, uint64(len(payload)))

	if _, err := w.f.Write(header); err != nil {
		return w.fail(err)
	}
	if _, err := w.f.Write(payload); err != nil {
		return w.fail(err)
	}

	w.seen[key] = struct{}{}
	return nil
}

// Close finishes the file.
func (w *Writer) Close() error {
	if w.f == nil {
		return w.err
	}
	cerr := w.f.Close()
	w.f = nil
	if w.err != nil {
		return w.err
	}
	return cerr
}

func (w *Writer) fail(err error) error {
	w.err = err
	return err
}

// encodePayload serializes one table as a single-record Arrow IPC stream.
func encodePayload(t *table.Table) ([]byte, error) {
	rec, err := t.ToRecord(memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}
	defer rec.Release()

	var buf bytes.Buffer
	iw := ipc.NewWriter(&buf, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(memory.DefaultAllocator))
	if err := iw.Write(rec); err != nil {
		_ = iw.Close()
		return nil, err
	}
	if err := iw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
