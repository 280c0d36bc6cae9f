package outwriter

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/huangsam/timesplit/core/agg"
	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/internal/logging"
	"github.com/huangsam/timesplit/schema"
	"github.com/sirupsen/logrus"
)

// ConsolePresenter prints session notices as timestamped lines.
type ConsolePresenter struct {
	mu        sync.Mutex
	w         io.Writer
	useColors bool
	now       func() time.Time
	logger    *logrus.Entry
}

var _ contract.Presenter = &ConsolePresenter{} // Compile-time check

// NewConsolePresenter creates a presenter writing to w.
func NewConsolePresenter(w io.Writer, useColors bool) *ConsolePresenter {
	return &ConsolePresenter{w: w, useColors: useColors, now: time.Now, logger: logging.NewLogger("presenter")}
}

// Refresh implements the Presenter interface. Snapshots are only logged;
// the headless report is printed once at the end of the session.
func (p *ConsolePresenter) Refresh(metrics []schema.BranchMetric) {
	summary := agg.Summarize(metrics)
	p.logger.WithFields(logrus.Fields{
		"branches":  summary.BranchCount,
		"total":     summary.Total,
		"most_used": summary.MostUsed,
	}).Debug("Metrics refreshed")
}

// Notify implements the Presenter interface.
func (p *ConsolePresenter) Notify(level schema.NoticeLevel, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	label := string(level)
	if p.useColors {
		label = contract.GetNoticeLabel(level)
	}
	_, _ = fmt.Fprintf(p.w, "%s [%s] %s\n", p.now().Format(schema.DateTimeFormat), label, msg)
}
