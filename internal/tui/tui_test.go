package tui

import (
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/huangsam/timesplit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, time.June, 9, 14, 0, 0, 0, time.UTC)

type fakeController struct {
	mu       sync.Mutex
	metrics  []schema.BranchMetric
	current  *schema.Interval
	activity int
	focus    []bool
}

func (c *fakeController) Metrics(time.Time) []schema.BranchMetric {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

func (c *fakeController) Current() (schema.Interval, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return schema.Interval{}, false
	}
	return *c.current, true
}

func (c *fakeController) RegisterActivity() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activity++
}

func (c *fakeController) OnFocusChange(focused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focus = append(c.focus, focused)
}

func sampleMetrics() []schema.BranchMetric {
	return []schema.BranchMetric{
		{Subject: "main", Active: 40 * time.Minute, Inactive: 20 * time.Minute, Total: time.Hour, FirstSeen: t0, LastSeen: t0.Add(time.Hour)},
		{Subject: "feature/search", Active: 90 * time.Minute, Total: 90 * time.Minute, FirstSeen: t0.Add(time.Hour), LastSeen: t0.Add(150 * time.Minute)},
	}
}

func newTestModel(ctl *fakeController) Model {
	return NewModel(ctl, Options{Repo: "/work/app", SortKey: schema.SortByTotal, SortDesc: true, Now: func() time.Time { return t0.Add(3 * time.Hour) }})
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(Model)
	require.True(t, ok)
	return updated, cmd
}

func TestModel_FocusReports(t *testing.T) {
	ctl := &fakeController{}
	m := newTestModel(ctl)

	m, _ = update(t, m, tea.BlurMsg{})
	_, _ = update(t, m, tea.FocusMsg{})
	assert.Equal(t, []bool{false, true}, ctl.focus)
}

func TestModel_KeysAreActivity(t *testing.T) {
	ctl := &fakeController{}
	m := newTestModel(ctl)

	m, _ = update(t, m, key("x"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, ctl.activity)

	_, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, 3, ctl.activity)
}

func TestModel_MetricsAndSorting(t *testing.T) {
	ctl := &fakeController{metrics: sampleMetrics()}
	m := newTestModel(ctl)

	m, _ = update(t, m, metricsMsg(sampleMetrics()))
	rows := m.table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "feature/search", rows[0][0], "total descending")
	assert.Equal(t, "100%", rows[0][4])

	m, _ = update(t, m, key("s"))
	assert.Equal(t, schema.SortByActive, m.sortKey)
	m, _ = update(t, m, key("o"))
	assert.False(t, m.sortDesc)
	rows = m.table.Rows()
	assert.Equal(t, "main", rows[0][0], "active ascending")
}

func TestModel_RefreshKeyPullsMetrics(t *testing.T) {
	ctl := &fakeController{metrics: sampleMetrics()}
	m := newTestModel(ctl)

	_, cmd := update(t, m, key("r"))
	require.NotNil(t, cmd)
	msg := cmd()
	metrics, ok := msg.(metricsMsg)
	require.True(t, ok)
	assert.Len(t, metrics, 2)
}

func TestModel_View(t *testing.T) {
	start := t0.Add(3*time.Hour - 75*time.Second)
	ctl := &fakeController{current: &schema.Interval{Subject: "main", Start: start, Kind: schema.ActiveKind}}
	m := newTestModel(ctl)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	assert.Contains(t, view, "/work/app")
	assert.Contains(t, view, "● main (1m 15s)")
	assert.Contains(t, view, "No time tracked yet")

	m, _ = update(t, m, metricsMsg(sampleMetrics()))
	m, _ = update(t, m, noticeMsg{Level: schema.NoticeWarn, Message: "Failed to save interval"})
	view = m.View()
	assert.Contains(t, view, "Top branches")
	assert.Contains(t, view, "02h:30m:00s")
	assert.Contains(t, view, "Most used")
	assert.Contains(t, view, "feature/search")
	assert.Contains(t, view, "! Failed to save interval")
	assert.Contains(t, view, "sort: total desc")
}

func TestModel_ViewNotTracking(t *testing.T) {
	m := newTestModel(&fakeController{})
	assert.Contains(t, m.View(), "Not tracking")
}

func TestModel_InitAndTick(t *testing.T) {
	m := newTestModel(&fakeController{})
	assert.NotNil(t, m.Init())

	_, cmd := update(t, m, tickMsg(t0))
	assert.NotNil(t, cmd, "ticks keep the clock running")
}

func TestRenderChart(t *testing.T) {
	chart := renderChart(sampleMetrics(), 30)
	lines := strings.Split(chart, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "feature/search"))
	assert.Equal(t, 30, strings.Count(lines[0], "█"))
	assert.Equal(t, 13, strings.Count(lines[1], "█"))
	assert.Equal(t, 6, strings.Count(lines[1], "▒"))

	assert.Empty(t, renderChart(nil, 30))
}

func TestColumns(t *testing.T) {
	assert.Equal(t, 12, columns(40)[0].Width)
	assert.Equal(t, 50, columns(300)[0].Width)
	assert.Len(t, columns(120), 6)
}
