// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/refdiff/refdiff/internal/report"
)

// SelectStore runs a picker over the compared stores and returns the relative
// path of the chosen one, or "" if the user quit without choosing.
func SelectStore(rep *report.Report) string {
	items := rep.Paths()
	if len(items) == 0 {
		return ""
	}

	p := tea.NewProgram(model{rep: rep, items: items})
	m, err := p.Run()
	if err != nil {
		return ""
	}
	return m.(model).chosen
}

type model struct {
	rep    *report.Report
	items  []string
	cursor int
	chosen string
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "w":
			return m, tea.WindowSize()
		case "q", "esc":
			m.chosen = ""
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter":
			m.chosen = m.items[m.cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	s := "Select a store:\n\n"
	for i, path := range m.items {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}
		res := m.rep.Get(path)
		s += fmt.Sprintf("%s %-40s %4d differing %4d identical\n", cursor, path, res.DifferingKeys, res.IdenticalKeys)
	}
	return s + "\nENTER: show, Q/ESCAPE: quit\n"
}
