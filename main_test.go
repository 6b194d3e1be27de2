// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"reflect"
	"testing"
)

func TestHandleNakedCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "only program name",
			args:     []string{"refdiff"},
			expected: []string{"refdiff", "--help"},
		},
		{
			name:     "command present",
			args:     []string{"refdiff", "run"},
			expected: []string{"refdiff", "run"},
		},
		{
			name:     "command and flags present",
			args:     []string{"refdiff", "tree", "--patch"},
			expected: []string{"refdiff", "tree", "--patch"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handleNakedCommand(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("handleNakedCommand(%v) = %v, want %v", tt.args, got, tt.expected)
			}
		})
	}
}

func TestHandleVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{
			name:     "long flag",
			args:     []string{"refdiff", "--version"},
			expected: true,
		},
		{
			name:     "short flag",
			args:     []string{"refdiff", "-v"},
			expected: true,
		},
		{
			name:     "no flag",
			args:     []string{"refdiff", "run"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := handleVersion(tt.args); got != tt.expected {
				t.Errorf("handleVersion(%v) = %v, want %v", tt.args, got, tt.expected)
			}
		})
	}
}
