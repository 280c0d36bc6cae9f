// Package tui renders the live tracking dashboard and feeds key presses and
// terminal focus back to the session as activity and focus signals.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/huangsam/timesplit/core/algo"
	"github.com/huangsam/timesplit/schema"
)

// tickInterval is how often the status line redraws its elapsed time.
const tickInterval = time.Second

// Controller is the part of a tracking session the dashboard drives.
type Controller interface {
	Metrics(now time.Time) []schema.BranchMetric
	Current() (schema.Interval, bool)
	RegisterActivity()
	OnFocusChange(focused bool)
}

type (
	tickMsg    time.Time
	metricsMsg []schema.BranchMetric
	noticeMsg  schema.Notice
)

// Options configures the dashboard.
type Options struct {
	Repo     string
	SortKey  schema.SortKey
	SortDesc bool
	Now      func() time.Time
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctl      Controller
	repo     string
	now      func() time.Time
	sortKey  schema.SortKey
	sortDesc bool

	metrics []schema.BranchMetric
	notice  *schema.Notice
	table   table.Model
	width   int
	height  int
}

// NewModel creates a dashboard over ctl.
func NewModel(ctl Controller, opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	sortKey := opts.SortKey
	if sortKey == "" {
		sortKey = schema.SortByLastSeen
	}
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())
	return Model{
		ctl:      ctl,
		repo:     opts.Repo,
		now:      now,
		sortKey:  sortKey,
		sortDesc: opts.SortDesc,
		table:    t,
		width:    80,
		height:   24,
	}
}

// Init starts the clock and loads the first metrics.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.refreshCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) refreshCmd() tea.Cmd {
	ctl, now := m.ctl, m.now
	return func() tea.Msg {
		return metricsMsg(ctl.Metrics(now()))
	}
}

// Update handles input, focus reports and pushed snapshots.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.FocusMsg:
		m.ctl.OnFocusChange(true)
		return m, nil

	case tea.BlurMsg:
		m.ctl.OnFocusChange(false)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetColumns(columns(m.width))
		m.table.SetWidth(m.width)
		m.table.SetHeight(max(3, m.height-chartHeight(len(m.metrics))-14))
		return m, nil

	case tea.KeyMsg:
		m.ctl.RegisterActivity()
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.sortKey = algo.NextSortKey(m.sortKey)
			m.table.SetRows(rows(m.sorted(), m.width))
			return m, nil
		case "o":
			m.sortDesc = !m.sortDesc
			m.table.SetRows(rows(m.sorted(), m.width))
			return m, nil
		case "r":
			return m, m.refreshCmd()
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case tickMsg:
		return m, tickCmd()

	case metricsMsg:
		m.metrics = msg
		m.table.SetRows(rows(m.sorted(), m.width))
		return m, nil

	case noticeMsg:
		n := schema.Notice(msg)
		m.notice = &n
		return m, nil
	}
	return m, nil
}

func (m Model) sorted() []schema.BranchMetric {
	return algo.SortMetrics(m.metrics, m.sortKey, m.sortDesc)
}
