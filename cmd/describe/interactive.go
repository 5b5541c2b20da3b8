package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hpckit/mpibind/datatype"
	"github.com/hpckit/mpibind/transport/inproc"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	tr       *inproc.Transport
	reg      *datatype.Registry
	filter   textinput.Model
	names    []string
	visible  []string
	selected int
}

func newInteractiveModel() (*interactiveModel, error) {
	tr := inproc.New()
	reg, err := datatype.NewRegistry(tr)
	if err != nil {
		tr.Shutdown()
		return nil, err
	}

	filter := textinput.New()
	filter.Placeholder = "filter types"
	filter.Prompt = "/ "
	filter.Focus()

	names := sampleNames()
	return &interactiveModel{
		tr:      tr,
		reg:     reg,
		filter:  filter,
		names:   names,
		visible: names,
	}, nil
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down":
			if m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refilter()
	return m, cmd
}

func (m *interactiveModel) refilter() {
	needle := strings.ToLower(m.filter.Value())
	m.visible = make([]string, 0, len(m.names))
	for _, name := range m.names {
		if needle == "" || strings.Contains(name, needle) {
			m.visible = append(m.visible, name)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = 0
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("mpibind layout inspector"))
	b.WriteString("\n\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	list := make([]string, 0, len(m.visible))
	for i, name := range m.visible {
		line := "  " + name
		if i == m.selected {
			line = selectedStyle.Render("> " + name)
		}
		list = append(list, line)
	}
	if len(list) == 0 {
		list = append(list, errorStyle.Render("  no matches"))
	}

	detail := ""
	if m.selected < len(m.visible) {
		name := m.visible[m.selected]
		detail = renderDescription(m.reg, name, samples[name])
	}

	b.WriteString(lipgloss.JoinHorizontal(
		lipgloss.Top,
		strings.Join(list, "\n"),
		"   ",
		detail,
	))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("up/down select, type to filter, esc quits"))
	b.WriteString("\n")
	return b.String()
}

func runInteractive() error {
	m, err := newInteractiveModel()
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	defer func() {
		m.reg.Close()
		m.tr.Shutdown()
	}()

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
