package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/upkg"
	"github.com/wippyai/upkg/upk"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98FB98")).
			Underline(true).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var browserTables = []string{tableNames, tableImports, tableExports, tableGenerations}

const pageSize = 20

type browserModel struct {
	err      error
	pkg      *upk.Package
	filename string
	opts     []upk.Option
	filter   textinput.Model
	rows     []string
	tab      int
	selected int
	offset   int
	editing  bool
}

type loadedMsg struct {
	err error
	pkg *upk.Package
}

func newBrowserModel(filename string, opts []upk.Option) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.Width = 40
	return &browserModel{
		filename: filename,
		opts:     opts,
		filter:   ti,
		tab:      1,
	}
}

func (m *browserModel) Init() tea.Cmd {
	return m.load
}

func (m *browserModel) load() tea.Msg {
	p, err := upkg.Open(m.filename, m.opts...)
	return loadedMsg{pkg: p, err: err}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.err = msg.err
		m.pkg = msg.pkg
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			switch msg.String() {
			case "enter", "esc":
				m.editing = false
				m.filter.Blur()
				if msg.String() == "esc" {
					m.filter.SetValue("")
				}
				m.refresh()
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.refresh()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "/":
			m.editing = true
			return m, m.filter.Focus()
		case "tab", "right", "l":
			m.tab = (m.tab + 1) % len(browserTables)
			m.refresh()
		case "shift+tab", "left", "h":
			m.tab = (m.tab + len(browserTables) - 1) % len(browserTables)
			m.refresh()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.rows)-1 {
				m.selected++
			}
		}
		m.scroll()
	}
	return m, nil
}

// refresh rebuilds the visible rows for the current table and filter.
func (m *browserModel) refresh() {
	m.rows = nil
	m.selected, m.offset = 0, 0
	if m.pkg == nil {
		return
	}
	needle := strings.ToLower(m.filter.Value())
	for _, row := range tableRows(m.pkg, browserTables[m.tab]) {
		if needle == "" || strings.Contains(strings.ToLower(row), needle) {
			m.rows = append(m.rows, row)
		}
	}
}

func (m *browserModel) scroll() {
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+pageSize {
		m.offset = m.selected - pageSize + 1
	}
}

func (m *browserModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.pkg == nil {
		return "Loading package..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Package Browser"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString(fmt.Sprintf("  v%d/%d\n\n", m.pkg.FileVersion, m.pkg.LicenseeVersion))

	for i, name := range browserTables {
		label := fmt.Sprintf("%s (%d)", name, len(tableRows(m.pkg, name)))
		if i == m.tab {
			b.WriteString(activeTabStyle.Render(label))
		} else {
			b.WriteString(tabStyle.Render(label))
		}
	}
	b.WriteString("\n\n")

	if m.editing || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	end := min(m.offset+pageSize, len(m.rows))
	for i := m.offset; i < end; i++ {
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + m.rows[i]))
		} else {
			b.WriteString("  " + m.rows[i])
		}
		b.WriteString("\n")
	}
	if len(m.rows) == 0 {
		b.WriteString("  (empty)\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab switch table • ↑/↓ select • / filter • q quit"))
	return b.String()
}

func runInteractive(filename string, opts []upk.Option) error {
	p := tea.NewProgram(newBrowserModel(filename, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
