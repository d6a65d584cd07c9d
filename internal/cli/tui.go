package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stackorder/pkg/plan"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// BatchModel - Interactive schedule browser
// =============================================================================

// BatchModel is the bubbletea model for browsing a schedule batch by batch.
// Left/right switch batches, up/down move between the steps of a batch.
type BatchModel struct {
	Plan     *plan.Plan
	Schedule *plan.Schedule
	Batch    int
	Cursor   int
	Selected string
}

// NewBatchModel creates a browser positioned on the first step.
func NewBatchModel(p *plan.Plan, s *plan.Schedule) BatchModel {
	return BatchModel{Plan: p, Schedule: s}
}

func (m BatchModel) Init() tea.Cmd {
	return nil
}

func (m BatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h", "shift+tab":
		if m.Batch > 0 {
			m.Batch--
			m.Cursor = 0
		}
	case "right", "l", "tab":
		if m.Batch < len(m.Schedule.Batches)-1 {
			m.Batch++
			m.Cursor = 0
		}
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.current())-1 {
			m.Cursor++
		}
	case "enter":
		if steps := m.current(); len(steps) > 0 {
			m.Selected = steps[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m BatchModel) current() []string {
	if m.Batch >= len(m.Schedule.Batches) {
		return nil
	}
	return m.Schedule.Batches[m.Batch]
}

func (m BatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Schedule " + m.Plan.String()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ batch  ↑/↓ step  ⏎ select  q quit"))
	b.WriteString("\n\n")

	tabs := make([]string, len(m.Schedule.Batches))
	for i, batch := range m.Schedule.Batches {
		label := fmt.Sprintf(" %d (%d) ", i+1, len(batch))
		if i == m.Batch {
			tabs[i] = listSelectedStyle.Render("[" + label + "]")
		} else {
			tabs[i] = listNormalStyle.Render(" " + label + " ")
		}
	}
	b.WriteString(strings.Join(tabs, ""))
	b.WriteString("\n")

	if steps := m.current(); len(steps) > 0 {
		b.WriteString(stepTable(m.Plan, steps, m.Cursor))
	} else {
		b.WriteString(listDimStyle.Render("  (empty batch)"))
	}
	b.WriteString("\n")

	if len(m.Schedule.Broken) > 0 {
		b.WriteString("\n")
		for _, l := range m.Schedule.Broken {
			b.WriteString(StyleWarning.Render(fmt.Sprintf("  dropped %s %s %s", l.From, iconArrow, l.To)))
			b.WriteString("\n")
		}
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [batch %d/%d]", m.Batch+1, len(m.Schedule.Batches))))
	return b.String()
}
