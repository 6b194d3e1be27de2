// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/refdiff/refdiff/internal/table"
)

// magic identifies a store file; the trailing byte is the format version.
var magic = []byte{'R', 'D', 'S', 'T', 1}

// maxKeyLen bounds key sizes so a corrupt length prefix cannot drive a huge
// allocation.
const maxKeyLen = 4096

// OpenError reports a file that could not be opened as a tabular store. The
// orchestrator treats it as per-file: the file is skipped and the run
// continues.
type OpenError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *OpenError) Error() string {
	return fmt.Sprintf("open store %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *OpenError) Unwrap() error {
	return e.Err
}

// span locates one table's IPC payload within the file.
type span struct {
	off    int64
	length int64
}

// Store is an open tabular store file. Tables are decoded lazily, one Table
// call at a time; the underlying file stays open until Close.
type Store struct {
	path    string
	f       *os.File
	entries map[string]span
}

// Open indexes the store file at path. The index (keys and payload spans) is
// read eagerly; payloads are not. Returns *OpenError if the file is missing,
// not a store, or truncated.
func Open(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	entries, err := scanIndex(f)
	if err != nil {
		_ = f.Close()
		return nil, &OpenError{Path: path, Err: err}
	}

	return &Store{path: path, f: f, entries: entries}, nil
}

// scanIndex walks the entry headers, skipping over payloads.
func scanIndex(f *os.File) (map[string]span, error) {
	r := &countingReader{r: bufio.NewReader(f)}

	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, errors.New("not a tabular store: short header")
	}
	if string(header) != string(magic) {
		return nil, errors.New("not a tabular store: bad magic")
	}

	entries := map[string]span{}
	for {
		keyLen, err := binary.ReadUvarint(r)
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("corrupt entry header: %w", err)
		}
		if keyLen == 0 || keyLen > maxKeyLen {
			return nil, fmt.Errorf("corrupt key length %d", keyLen)
		}

		key := make([]byte, keyLen)
		if _, err := io.ReadFull(r, key); err != nil {
			return nil, fmt.Errorf("truncated key: %w", err)
		}

		payloadLen, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("truncated entry %s: %w", key, err)
		}

		entries[string(key)] = span{off: r.n, length: int64(payloadLen)}

		if err := r.skip(int64(payloadLen)); err != nil {
			return nil, fmt.Errorf("truncated payload for %s: %w", key, err)
		}
	}
}

// Keys returns all table keys in ascending order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether the store holds the given key.
func (s *Store) Has(key string) bool {
	_, ok := s.entries[key]
	return ok
}

// Table decodes and returns the table stored under key.
func (s *Store) Table(key string) (*table.Table, error) {
	sp, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("store %s has no key %s", s.path, key)
	}

	section := io.NewSectionReader(s.f, sp.off, sp.length)
	rdr, err := ipc.NewReader(section, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	defer rdr.Release()

	if !rdr.Next() {
		if err := rdr.Err(); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		return nil, fmt.Errorf("decode %s: empty payload", key)
	}

	return table.FromRecord(rdr.Record())
}

// Close releases the underlying file. Safe to call more than once.
func (s *Store) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

// IsStorePath reports whether the file name carries one of the store
// extensions (case-insensitive).
func IsStorePath(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// countingReader tracks the absolute file offset while scanning, so spans can
// be addressed with a SectionReader later.
type countingReader struct {
	r *bufio.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}

func (c *countingReader) skip(n int64) error {
	m, err := io.CopyN(io.Discard, c.r, n)
	c.n += m
	return err
}
