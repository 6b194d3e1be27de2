// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dirdiff

import (
	"encoding/json"
	"fmt"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// RenderJSONDiff computes a structural diff of two JSON documents and renders
// it in ascii form. Top-level keys named in skipKeys are removed from the
// rendered document first, which keeps volatile fields (timestamps, run ids)
// out of the output. Returns an empty string when the documents are
// structurally identical.
func RenderJSONDiff(left, right []byte, skipKeys []string) (string, error) {
	differ := gojsondiff.New()

	delta, err := differ.Compare(left, right)
	if err != nil {
		return "", fmt.Errorf("failed to compare documents: %w", err)
	}

	if !delta.Modified() {
		return "", nil
	}

	var jdoc map[string]interface{}
	if err := json.Unmarshal(left, &jdoc); err != nil {
		return "", fmt.Errorf("failed to unmarshal document: %w", err)
	}

	for _, key := range skipKeys {
		if key != "" {
			delete(jdoc, key)
		}
	}

	config := formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       false,
	}

	f := formatter.NewAsciiFormatter(jdoc, config)
	out, err := f.Format(delta)
	if err != nil {
		return "", err
	}

	return out, nil
}
