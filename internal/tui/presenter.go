package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/schema"
)

// Presenter forwards session snapshots and notices into a running program.
type Presenter struct {
	program *tea.Program
}

var _ contract.Presenter = &Presenter{} // Compile-time check

// NewPresenter creates a Presenter for program.
func NewPresenter(program *tea.Program) *Presenter {
	return &Presenter{program: program}
}

// Refresh implements the Presenter interface.
func (p *Presenter) Refresh(metrics []schema.BranchMetric) {
	p.program.Send(metricsMsg(metrics))
}

// Notify implements the Presenter interface.
func (p *Presenter) Notify(level schema.NoticeLevel, msg string) {
	p.program.Send(noticeMsg{Level: level, Message: msg, At: time.Now()})
}

// NewProgram creates the full-screen dashboard program. Terminal focus
// reporting is enabled so focus changes reach the session.
func NewProgram(ctx context.Context, m Model) *tea.Program {
	return tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
}
