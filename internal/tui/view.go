package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/huangsam/timesplit/core/agg"
	"github.com/huangsam/timesplit/core/algo"
	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/schema"
)

// fixedColumnsWidth is the width of every table column except the branch.
const fixedColumnsWidth = 10*4 + 19 + 12

func columns(width int) []table.Column {
	branchWidth := max(12, min(50, width-fixedColumnsWidth))
	return []table.Column{
		{Title: "Branch", Width: branchWidth},
		{Title: "Active", Width: 10},
		{Title: "Inactive", Width: 10},
		{Title: "Total", Width: 10},
		{Title: "Active %", Width: 10},
		{Title: "Last Seen", Width: 19},
	}
}

func rows(metrics []schema.BranchMetric, width int) []table.Row {
	branchWidth := columns(width)[0].Width
	out := make([]table.Row, len(metrics))
	for i, m := range metrics {
		out[i] = table.Row{
			contract.TruncateName(m.Subject, branchWidth),
			schema.FormatDurationSimple(m.Active),
			schema.FormatDurationSimple(m.Inactive),
			schema.FormatDurationSimple(m.Total),
			fmt.Sprintf("%.0f%%", m.ActiveRatio()*100),
			schema.FormatTimestamp(m.LastSeen),
		}
	}
	return out
}

// chartHeight is the number of lines the bar chart takes.
func chartHeight(branches int) int {
	return min(branches, algo.DefaultChartSize) + 1
}

// View renders the header, summary cards, chart, table and footer.
func (m Model) View() string {
	now := m.now()
	sections := []string{
		titleStyle.Render("⏱ timesplit") + " " + cardLabelStyle.Render(m.repo),
		m.renderStatus(),
		m.renderCards(),
	}
	if len(m.metrics) > 0 {
		sections = append(sections,
			sectionStyle.Render("Top branches"),
			renderChart(m.metrics, max(10, m.width-40)),
			sectionStyle.Render(fmt.Sprintf("Branches (sort: %s %s)", m.sortKey, orderLabel(m.sortDesc))),
			m.table.View(),
		)
	} else {
		sections = append(sections, helpStyle.Render(fmt.Sprintf("No time tracked yet (%s)", now.Format("15:04:05"))))
	}
	if m.notice != nil {
		sections = append(sections, renderNotice(*m.notice))
	}
	sections = append(sections, helpStyle.Render("↑/↓ move • s sort • o order • r refresh • q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderStatus() string {
	current, ok := m.ctl.Current()
	if !ok {
		return inactiveStyle.Render(schema.FormatStatusLine(nil, m.now()))
	}
	line := schema.FormatStatusLine(&current, m.now())
	if current.Kind == schema.ActiveKind {
		return activeStyle.Render(line)
	}
	return inactiveStyle.Render(line)
}

func (m Model) renderCards() string {
	s := agg.Summarize(m.metrics)
	total := card("Total time", schema.FormatDurationDetailed(s.Total),
		fmt.Sprintf("%s active • %s inactive", schema.FormatDurationSimple(s.Active), schema.FormatDurationSimple(s.Inactive)))
	branches := card("Branches tracked", fmt.Sprintf("%d", s.BranchCount), "")
	mostUsed := "-"
	mostUsedTime := ""
	if s.MostUsed != "" {
		mostUsed = s.MostUsed
		mostUsedTime = schema.FormatDurationSimple(s.MostUsedTime)
	}
	used := card("Most used", mostUsed, mostUsedTime)
	return lipgloss.JoinHorizontal(lipgloss.Top, total, branches, used)
}

func card(label, value, detail string) string {
	body := cardLabelStyle.Render(label) + "\n" + lipgloss.NewStyle().Bold(true).Render(value)
	if detail != "" {
		body += "\n" + cardLabelStyle.Render(detail)
	}
	return cardStyle.Render(body)
}

// renderChart draws one stacked active/inactive bar per top branch, scaled to the longest total.
func renderChart(metrics []schema.BranchMetric, barWidth int) string {
	top := algo.RankMetrics(metrics, algo.DefaultChartSize)
	if len(top) == 0 || top[0].Total <= 0 {
		return ""
	}
	longest := top[0].Total

	labelWidth := 0
	for _, mt := range top {
		labelWidth = max(labelWidth, lipgloss.Width(contract.TruncateName(mt.Subject, 24)))
	}

	var b strings.Builder
	for _, mt := range top {
		active := int(float64(barWidth) * float64(mt.Active) / float64(longest))
		inactive := int(float64(barWidth) * float64(mt.Inactive) / float64(longest))
		if active+inactive == 0 && mt.Total > 0 {
			inactive = 1
		}
		name := contract.TruncateName(mt.Subject, 24)
		fmt.Fprintf(&b, "%-*s %s%s %s\n",
			labelWidth, name,
			activeStyle.Render(strings.Repeat("█", active)),
			inactiveStyle.Render(strings.Repeat("▒", inactive)),
			schema.FormatDurationSimple(mt.Total),
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderNotice(n schema.Notice) string {
	switch n.Level {
	case schema.NoticeError:
		return errorStyle.Render("✗ " + n.Message)
	case schema.NoticeWarn:
		return warnStyle.Render("! " + n.Message)
	default:
		return helpStyle.Render("• " + n.Message)
	}
}

func orderLabel(desc bool) string {
	if desc {
		return "desc"
	}
	return "asc"
}
