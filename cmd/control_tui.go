// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Focus states
const (
	focusChannels = iota
	focusLevelInput
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	gaugeFullStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	gaugeEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("203"))
)

// channelRow is the TUI's view of one mirrored channel.
type channelRow struct {
	name  string
	rng   uint8
	level uint8
}

// controlModel is the Bubble Tea model for the control TUI.
type controlModel struct {
	cm       *controlManager
	connInfo string

	channels []channelRow
	cursor   int

	levelInput textinput.Model
	focused    int

	sleeping bool

	queued   int
	sent     uint64
	received uint64
	errors   uint64

	width  int
	height int
}

func initialControlModel(cm *controlManager, connInfo string, cfg []channelConfig) controlModel {
	ti := textinput.New()
	ti.Placeholder = "level"
	ti.CharLimit = 3
	ti.Width = 6

	rows := make([]channelRow, len(cfg))
	for i, ch := range cfg {
		rows[i] = channelRow{name: ch.Name, rng: ch.Range, level: ch.Initial}
	}

	return controlModel{
		cm:         cm,
		connInfo:   connInfo,
		channels:   rows,
		levelInput: ti,
		focused:    focusChannels,
	}
}

func (m controlModel) Init() tea.Cmd {
	return nil
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case levelMsg:
		if int(msg.channel) < len(m.channels) {
			m.channels[msg.channel].level = msg.level
		}
		return m, nil

	case statsMsg:
		m.queued = msg.queued
		m.sent = msg.sent
		m.received = msg.received
		m.errors = msg.errors
		return m, nil

	case tea.KeyMsg:
		if m.focused == focusLevelInput {
			return m.updateLevelInput(msg)
		}
		return m.updateChannels(msg)
	}

	return m, nil
}

func (m controlModel) updateChannels(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ch := uint8(m.cursor)

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.channels)-1 {
			m.cursor++
		}

	case "+", "=", "right", "l":
		if !m.sleeping {
			m.cm.send(ctrlCmd{kind: ctrlAdjust, channel: ch, value: 1})
		}

	case "-", "_", "left", "h":
		if !m.sleeping {
			m.cm.send(ctrlCmd{kind: ctrlAdjust, channel: ch, value: -1})
		}

	case "s":
		if !m.sleeping {
			m.focused = focusLevelInput
			m.levelInput.SetValue("")
			m.levelInput.Focus()
			return m, textinput.Blink
		}

	case "r":
		if !m.sleeping {
			m.cm.send(ctrlCmd{kind: ctrlSync, channel: ch})
		}

	case "z":
		if m.sleeping {
			m.cm.send(ctrlCmd{kind: ctrlWake})
		} else {
			m.cm.send(ctrlCmd{kind: ctrlSleep})
		}
		m.sleeping = !m.sleeping
	}

	return m, nil
}

func (m controlModel) updateLevelInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focused = focusChannels
		m.levelInput.Blur()
		return m, nil

	case "enter":
		value, err := strconv.Atoi(m.levelInput.Value())
		m.focused = focusChannels
		m.levelInput.Blur()
		if err == nil {
			m.cm.send(ctrlCmd{kind: ctrlSet, channel: uint8(m.cursor), value: value})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.levelInput, cmd = m.levelInput.Update(msg)
	return m, cmd
}

const gaugeWidth = 24

func renderGauge(level, rng uint8) string {
	filled := 0
	if rng > 0 {
		filled = int(level) * gaugeWidth / int(rng)
	}
	if filled > gaugeWidth {
		filled = gaugeWidth
	}
	return gaugeFullStyle.Render(strings.Repeat("█", filled)) +
		gaugeEmptyStyle.Render(strings.Repeat("░", gaugeWidth-filled))
}

func (m controlModel) View() string {
	var b strings.Builder

	title := fmt.Sprintf(" rcn control · host %d ", m.cm.ctrl.Host())
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.connInfo))
	b.WriteString("\n\n")

	if m.sleeping {
		b.WriteString(warnStyle.Render("radio asleep: press z to wake (cache resets)"))
		b.WriteString("\n\n")
	}

	for i, ch := range m.channels {
		cursor := "  "
		line := fmt.Sprintf("%-14s %s %3d/%3d", ch.name, renderGauge(ch.level, ch.rng), ch.level, ch.rng)
		if i == m.cursor {
			cursor = "> "
			line = selectedStyle.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}

	b.WriteString("\n")
	if m.focused == focusLevelInput {
		b.WriteString(fmt.Sprintf("set %s to: %s\n", m.channels[m.cursor].name, m.levelInput.View()))
	} else {
		b.WriteString(dimStyle.Render("↑/↓ select · +/- adjust · s set · r sync · z sleep · q quit"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("queued %d · sent %d · received %d · errors %d",
		m.queued, m.sent, m.received, m.errors)))
	b.WriteString("\n")

	return b.String()
}
