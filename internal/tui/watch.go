// Package tui renders the live progress view for a running suite.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ResultMsg is sent into the program for every finished check.
type ResultMsg struct {
	Group    string
	Name     string
	Passed   bool
	Duration time.Duration
	Err      error
}

// DoneMsg is sent once after the last check finishes.
type DoneMsg struct {
	Report string
	Ok     bool
}

type groupProgress struct {
	passed int
	failed int
}

// Model is the bubbletea model for the watch view.
type Model struct {
	spinner  spinner.Model
	total    int
	done     int
	groups   map[string]*groupProgress
	failures []ResultMsg
	report   string
	finished bool
	ok       bool
	started  time.Time
}

// NewModel creates the watch model for a run of total checks.
func NewModel(total int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(DeepSlate)

	return Model{
		spinner: sp,
		total:   total,
		groups:  make(map[string]*groupProgress),
		started: time.Now(),
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles key presses, spinner ticks, and run progress.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ResultMsg:
		m.done++
		g, ok := m.groups[msg.Group]
		if !ok {
			g = &groupProgress{}
			m.groups[msg.Group] = g
		}
		if msg.Passed {
			g.passed++
		} else {
			g.failed++
			m.failures = append(m.failures, msg)
		}
		return m, nil

	case DoneMsg:
		m.finished = true
		m.ok = msg.Ok
		m.report = msg.Report
		return m, tea.Quit
	}

	return m, nil
}

// View renders the progress panel.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("bankprobe"))
	b.WriteString("\n\n")

	if m.finished {
		if m.ok {
			b.WriteString(SuccessStyle.Render("✓ all checks passed"))
		} else {
			b.WriteString(ErrorStyle.Render("✗ failures detected"))
		}
		b.WriteString("\n\n")
		b.WriteString(m.report)
		return BorderStyle.Render(b.String())
	}

	fmt.Fprintf(&b, "%s running  %s\n\n",
		m.spinner.View(),
		ValueStyle.Render(fmt.Sprintf("%d/%d checks", m.done, m.total)))

	names := make([]string, 0, len(m.groups))
	for name := range m.groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		g := m.groups[name]
		line := fmt.Sprintf("%-14s %s passed", name, ValueStyle.Render(fmt.Sprintf("%3d", g.passed)))
		if g.failed > 0 {
			line += "  " + ErrorStyle.Render(fmt.Sprintf("%d failed", g.failed))
		}
		b.WriteString(LabelStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(DimStyle.Render(fmt.Sprintf("elapsed %s · press q to quit",
		time.Since(m.started).Round(time.Second))))

	return BorderStyle.Render(b.String())
}
