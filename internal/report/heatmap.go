// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"image/color"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"

	"github.com/refdiff/refdiff/internal/config"
	"github.com/refdiff/refdiff/internal/tablediff"
)

// Relative-difference buckets. A key's row is tinted by its worst (max)
// relative difference.
const (
	thresholdLow  = 1e-2
	thresholdMid  = 1e-1
	thresholdHigh = 1.0
)

// heatmapColors resolves the bucket colors, honoring colors.heatmap.*
// overrides from the config file.
func heatmapColors() [4]color.Color {
	resolve := func(key, fallback string) color.Color {
		if c, err := config.GetString("colors.heatmap." + key); err == nil {
			return lipgloss.Color(c)
		}
		return lipgloss.Color(fallback)
	}
	return [4]color.Color{
		resolve("low", "#BCF5A9"),
		resolve("mid", "#F2F5A9"),
		resolve("high", "#F5D0A9"),
		resolve("extreme", "#F5A9A9"),
	}
}

// bucket maps a max relative difference to its color index.
func bucket(relMax float64) int {
	switch {
	case relMax <= thresholdLow:
		return 0
	case relMax <= thresholdMid:
		return 1
	case relMax <= thresholdHigh:
		return 2
	default:
		return 3
	}
}

// WriteHeatmap renders one store's per-key difference statistics as a table
// whose rows are tinted by severity. With color disabled it degrades to a
// plain table.
func WriteHeatmap(w io.Writer, res *tablediff.Result, color bool) {
	if len(res.Stats) == 0 {
		return
	}

	keys := make([]string, 0, len(res.Stats))
	for k := range res.Stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	colors := heatmapColors()
	buckets := make([]int, len(keys))
	rows := make([][]string, len(keys))
	for i, k := range keys {
		s := res.Stats[k]
		buckets[i] = bucket(s.RelMax)
		rows[i] = []string{
			k,
			fmt.Sprintf("%.2g", s.AbsMean),
			fmt.Sprintf("%.2g", s.AbsMax),
			fmt.Sprintf("%.2g", s.RelMean),
			fmt.Sprintf("%.2g", s.RelMax),
		}
	}

	headerStyle := lipgloss.NewStyle().Align(lipgloss.Left).Bold(true)
	cellStyle := lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Left)

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			style := cellStyle
			if color && row >= 0 && row < len(buckets) {
				style = style.Background(colors[buckets[row]]).Foreground(lipgloss.Color("#000000"))
			}
			return style
		}).
		Headers("key", "abs mean", "abs max", "rel mean", "rel max").
		Rows(rows...)

	fmt.Fprintf(w, "Heatmap for %s\n", res.RelPath)
	fmt.Fprintln(w, t)
}
