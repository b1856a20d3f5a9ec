// Package historyui provides the Bubble Tea run history browser.
package historyui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/masterdata/internal/model"
	"github.com/verte-zerg/masterdata/internal/store"
	"github.com/verte-zerg/masterdata/internal/summary"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#1F4E79"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Source is the read side of the run history.
type Source interface {
	ListRuns(ctx context.Context, filter store.RunFilter) ([]model.RunRecord, error)
	ListRunFiles(ctx context.Context, runID string) ([]model.FileOutcome, error)
}

// Model implements the Bubble Tea history UI.
type Model struct {
	src    Source
	filter store.RunFilter

	runs   []model.RunRecord
	errMsg string

	runTable  table.Model
	fileTable table.Model
	// detail is the run whose files are shown, nil on the run list.
	detail *model.RunRecord

	width  int
	height int
}

// NewModel constructs a history UI model and loads the runs.
func NewModel(src Source, filter store.RunFilter) *Model {
	m := &Model{
		src:       src,
		filter:    filter,
		runTable:  newTable(runColumns()),
		fileTable: newTable(fileColumns()),
	}
	m.runTable.Focus()
	m.reload()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.detail != nil {
			switch msg.String() {
			case "esc", "backspace", "left", "h":
				m.closeDetail()
				return m, tea.ClearScreen
			}
			var cmd tea.Cmd
			m.fileTable, cmd = m.fileTable.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "enter", "right", "l":
			m.openDetail()
			return m, tea.ClearScreen
		case "r":
			m.reload()
			return m, nil
		}
		var cmd tea.Cmd
		m.runTable, cmd = m.runTable.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := maxInt(1, m.height-lipgloss.Height(header)-lipgloss.Height(footer))
	body := m.runTable.View()
	if m.detail != nil {
		body = m.fileTable.View()
	}
	return strings.Join([]string{
		header,
		fitLines(body, m.width, bodyHeight),
		footer,
	}, "\n")
}

func (m *Model) reload() {
	runs, err := m.src.ListRuns(context.Background(), m.filter)
	if err != nil {
		m.errMsg = fmt.Sprintf("Failed to load runs: %v", err)
		return
	}
	m.errMsg = ""
	m.runs = runs
	rows := make([]table.Row, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, table.Row(summary.RunRow(r)))
	}
	m.runTable.SetRows(rows)
}

func (m *Model) openDetail() {
	idx := m.runTable.Cursor()
	if idx < 0 || idx >= len(m.runs) {
		return
	}
	run := m.runs[idx]
	files, err := m.src.ListRunFiles(context.Background(), run.RunID)
	if err != nil {
		m.errMsg = fmt.Sprintf("Failed to load files: %v", err)
		return
	}
	m.errMsg = ""
	rows := make([]table.Row, 0, len(files))
	for _, f := range files {
		rows = append(rows, table.Row{f.Name, f.Type.String(), f.Status, f.Reason})
	}
	m.fileTable.SetRows(rows)
	m.fileTable.GotoTop()
	m.runTable.Blur()
	m.fileTable.Focus()
	m.detail = &run
}

func (m *Model) closeDetail() {
	m.detail = nil
	m.fileTable.Blur()
	m.runTable.Focus()
}

func (m *Model) updateLayout() {
	header := m.renderHeader()
	footer := m.renderFooter()
	height := maxInt(2, m.height-lipgloss.Height(header)-lipgloss.Height(footer))
	for _, t := range []*table.Model{&m.runTable, &m.fileTable} {
		t.SetWidth(m.width)
		t.SetHeight(height)
	}
}

func (m *Model) renderHeader() string {
	if m.detail == nil {
		title := titleStyle.Render("Çalıştırma Geçmişi")
		return title + "\n" + headerStyle.Render(fmt.Sprintf("%d çalıştırma", len(m.runs)))
	}
	title := titleStyle.Render("Dosyalar")
	info := fmt.Sprintf("%s  %s", m.detail.EndedAt.Local().Format("02.01.2006 15:04"), m.detail.Output)
	if m.detail.Error != "" {
		info += "  " + errorStyle.Render(m.detail.Error)
	}
	return title + "\n" + headerStyle.Render(info)
}

func (m *Model) renderFooter() string {
	help := "↑/↓ move • enter files • r reload • q quit"
	if m.detail != nil {
		help = "↑/↓ move • esc back • q quit"
	}
	lines := []string{headerStyle.Render(help)}
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	}
	return strings.Join(lines, "\n")
}

func runColumns() []table.Column {
	return []table.Column{
		{Title: "Zaman", Width: 16},
		{Title: "Durum", Width: 5},
		{Title: "Hafta", Width: 5},
		{Title: "Temsilci", Width: 8},
		{Title: "Planlanan", Width: 9},
		{Title: "Yapılan", Width: 7},
		{Title: "Sipariş", Width: 7},
		{Title: "Müşteri", Width: 7},
		{Title: "Sorun", Width: 5},
		{Title: "Dosya", Width: 9},
		{Title: "Klasör", Width: 30},
	}
}

func fileColumns() []table.Column {
	return []table.Column{
		{Title: "Dosya", Width: 50},
		{Title: "Tip", Width: 17},
		{Title: "Durum", Width: 8},
		{Title: "Neden", Width: 30},
	}
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(1),
	)
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
