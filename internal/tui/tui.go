package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/n0roo/richness-kit/internal/analytics"
	"github.com/n0roo/richness-kit/internal/persona"
	"github.com/n0roo/richness-kit/internal/richness"
)

// Tab represents a viewer tab
type Tab int

const (
	TabData Tab = iota
	TabStats
	TabPersona
)

const tabCount = 3

// filterSteps is the number of key presses spanning the full score range
const filterSteps = 20

const histogramBins = 20

func (t Tab) String() string {
	return []string{"Data", "Stats", "Persona"}[t]
}

// Loader returns the artifact records. It is called once per session.
type Loader func() ([]richness.Record, error)

// Model is the main TUI model
type Model struct {
	// Config
	source   string
	load     Loader
	personas *persona.Set
	maxRows  int

	// State
	currentTab Tab
	width      int
	height     int
	ready      bool
	loading    bool
	err        error

	// Data
	records  []richness.Record
	filtered []richness.Record
	summary  analytics.Summary
	lo, hi   float64
	from, to float64

	// Components
	spinner spinner.Model
	table   table.Model
}

// dataMsg carries the loaded artifact
type dataMsg struct {
	records []richness.Record
	err     error
}

// NewModel creates a new TUI model
func NewModel(source string, load Loader, personas *persona.Set, maxRows int) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	if personas == nil {
		personas = persona.Default()
	}
	if maxRows <= 0 {
		maxRows = 1000
	}

	t := table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	return Model{
		source:     source,
		load:       load,
		personas:   personas,
		maxRows:    maxRows,
		currentTab: TabData,
		loading:    true,
		spinner:    s,
		table:      t,
	}
}

func columns() []table.Column {
	cols := richness.ArtifactColumns()
	out := make([]table.Column, len(cols))
	for i, c := range cols {
		w := len(c)
		if i == 0 {
			w = 20
		}
		out[i] = table.Column{Title: c, Width: w}
	}
	return out
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.loadData,
	)
}

// loadData reads the artifact once
func (m Model) loadData() tea.Msg {
	recs, err := m.load()
	return dataMsg{records: recs, err: err}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "1":
			m.currentTab = TabData
		case "2":
			m.currentTab = TabStats
		case "3":
			m.currentTab = TabPersona
		case "tab":
			m.currentTab = Tab((int(m.currentTab) + 1) % tabCount)
		case "shift+tab":
			m.currentTab = Tab((int(m.currentTab) + tabCount - 1) % tabCount)
		case "enter":
			if m.currentTab == TabData {
				m.currentTab = TabPersona
			}
		case "[":
			m.setFilter(m.from-m.step(), m.to)
		case "]":
			m.setFilter(m.from+m.step(), m.to)
		case "{":
			m.setFilter(m.from, m.to-m.step())
		case "}":
			m.setFilter(m.from, m.to+m.step())
		case "c":
			m.setFilter(m.lo, m.hi)
		default:
			if m.currentTab == TabData {
				var cmd tea.Cmd
				m.table, cmd = m.table.Update(msg)
				return m, cmd
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		if h := msg.Height - 12; h > 3 {
			m.table.SetHeight(h)
		}

	case dataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.records = msg.records
			m.summary = analytics.DescribeRecords(m.records)
			m.lo, m.hi = analytics.Range(m.records)
			m.setFilter(m.lo, m.hi)
		}

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) step() float64 {
	s := (m.hi - m.lo) / filterSteps
	if s <= 0 {
		return 1
	}
	return s
}

// setFilter clamps the range to the data bounds and refreshes the table
func (m *Model) setFilter(lo, hi float64) {
	lo = math.Max(m.lo, math.Min(lo, m.hi))
	hi = math.Min(m.hi, math.Max(hi, m.lo))
	if lo > hi {
		lo = hi
	}
	m.from, m.to = lo, hi
	m.filtered = analytics.Filter(m.records, lo, hi)

	n := len(m.filtered)
	if n > m.maxRows {
		n = m.maxRows
	}
	rows := make([]table.Row, n)
	for i := 0; i < n; i++ {
		rows[i] = recordRow(m.filtered[i])
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= n {
		m.table.SetCursor(0)
	}
}

func recordRow(r richness.Record) table.Row {
	return table.Row{
		r.DeviceID,
		fmt.Sprint(r.CafeCluster),
		fmt.Sprint(r.PingCluster),
		fmt.Sprint(r.RestaurantCluster),
		formatScore(r.CafeScore),
		formatScore(r.PingScore),
		formatScore(r.RestaurantScore),
		fmt.Sprintf("%.4f", r.Overall),
	}
}

func formatScore(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *p)
}

// Selected returns the record under the table cursor
func (m Model) Selected() (richness.Record, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.filtered) || i >= m.maxRows {
		return richness.Record{}, false
	}
	return m.filtered[i], true
}

// View renders the UI
func (m Model) View() string {
	if m.loading {
		return fmt.Sprintf("\n  %s Loading %s...", m.spinner.View(), m.source)
	}
	if m.err != nil {
		return statusErrorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)) + "\n" +
			subtitleStyle.Render("  Run `richness run` first to generate the artifact.") + "\n"
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.currentTab {
	case TabData:
		b.WriteString(m.renderDataTab())
	case TabStats:
		b.WriteString(m.renderStatsTab())
	case TabPersona:
		b.WriteString(m.renderPersonaTab())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

func (m Model) renderHeader() string {
	title := "Device Richness Score Viewer"
	info := fmt.Sprintf("%s (%d rows)", m.source, len(m.records))

	headerWidth := m.width
	if headerWidth < 60 {
		headerWidth = 60
	}

	left := lipgloss.NewStyle().Bold(true).Render(title)
	right := lipgloss.NewStyle().Foreground(mutedColor).Render(info)

	gap := headerWidth - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 0 {
		gap = 0
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color("#2D3748")).
		Foreground(lipgloss.Color("#FFFFFF")).
		Padding(0, 1).
		Width(headerWidth).
		Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderTabs() string {
	var tabs []string
	for i := 0; i < tabCount; i++ {
		tab := Tab(i)
		style := tabStyle
		if tab == m.currentTab {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("[%d]%s", i+1, tab.String())))
	}
	return strings.Join(tabs, " ")
}

func (m Model) renderFooter() string {
	help := "  [1-3] Tabs  [↑/↓] Move  [Enter] Persona  [ [ ] ] Min  [ { } ] Max  [c] Clear  [q] Quit"
	return helpStyle.Render(help)
}

func (m Model) renderDataTab() string {
	var b strings.Builder

	shown := len(m.filtered)
	if shown > m.maxRows {
		shown = m.maxRows
	}

	if m.from == m.lo && m.to == m.hi {
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("Displaying top %d rows out of %d total rows.", shown, len(m.records))))
	} else {
		b.WriteString(statusPendingStyle.Render(fmt.Sprintf("Score between %.2f and %.2f", m.from, m.to)))
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("Displaying top %d rows out of %d filtered rows.", shown, len(m.filtered))))
	}
	b.WriteString("\n\n")
	b.WriteString(m.table.View())

	return b.String()
}

func (m Model) renderStatsTab() string {
	var b strings.Builder
	s := m.summary

	stats := []struct {
		label string
		value string
	}{
		{"count", fmt.Sprint(s.Count)},
		{"mean", formatStat(s.Mean)},
		{"std", formatStat(s.Std)},
		{"min", formatStat(s.Min)},
		{"25%", formatStat(s.P25)},
		{"50%", formatStat(s.P50)},
		{"75%", formatStat(s.P75)},
		{"max", formatStat(s.Max)},
	}

	var lines []string
	for _, st := range stats {
		lines = append(lines, detailLabelStyle.Render(st.label)+detailValueStyle.Render(st.value))
	}
	lines = append(lines, "")
	for _, d := range richness.Domains() {
		lines = append(lines, detailLabelStyle.Render("null "+string(d))+detailValueStyle.Render(fmt.Sprint(s.NullScores[d])))
	}

	describe := boxStyle.Width(36).Render(
		titleStyle.Render(richness.OverallColumn) + "\n" + strings.Join(lines, "\n"),
	)

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, describe, "  ", m.renderHistogram()))
	return b.String()
}

func (m Model) renderHistogram() string {
	bins := analytics.Histogram(analytics.Overall(m.records), histogramBins)
	if len(bins) == 0 {
		return statusMutedStyle.Render("No valid numeric data to plot histogram.")
	}

	peak := 0
	for _, bin := range bins {
		if bin.Count > peak {
			peak = bin.Count
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Distribution"))
	b.WriteString("\n")
	for _, bin := range bins {
		ratio := float64(bin.Count) / float64(peak)
		b.WriteString(fmt.Sprintf("%10.3f %s %d\n", bin.Lower, RenderBar(ratio, 30), bin.Count))
	}
	return b.String()
}

func (m Model) renderPersonaTab() string {
	rec, ok := m.Selected()
	if !ok {
		return statusMutedStyle.Render("  Select a device in the Data tab.")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Persona for Device: " + rec.DeviceID))
	b.WriteString("\n")

	width := m.width - 6
	if width < 40 {
		width = 74
	}

	for _, p := range m.personas.ForRecord(rec) {
		status := "missing"
		if p.Found {
			status = "found"
		}
		name := string(p.Domain)
		heading := fmt.Sprintf("%s %s Persona - Cluster %d", StatusIcon(status), strings.ToUpper(name[:1])+name[1:], p.ClusterID)
		b.WriteString(detailPanelStyle.Width(width).Render(
			detailValueStyle.Bold(true).Render(heading) + "\n" + p.Text,
		))
		b.WriteString("\n")
	}
	return b.String()
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.6f", v)
}

// Run starts the TUI
func Run(source string, load Loader, personas *persona.Set, maxRows int) error {
	p := tea.NewProgram(
		NewModel(source, load, personas, maxRows),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
