package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/huangsam/timesplit/core"
	"github.com/huangsam/timesplit/core/agg"
	"github.com/huangsam/timesplit/internal/activity"
	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/internal/gitwatch"
	"github.com/huangsam/timesplit/internal/logging"
	"github.com/huangsam/timesplit/internal/outwriter"
	"github.com/huangsam/timesplit/internal/tui"
	"github.com/spf13/cobra"
)

// trackCmd follows the checked-out branch until interrupted.
var trackCmd = &cobra.Command{
	Use:   "track [repo-path]",
	Short: "Track time spent on the checked-out branch.",
	Long: `Follow the checked-out branch of a repository and record active and inactive time on it.

Time counts as active while you interact with the dashboard or, with --watch-activity,
while files in the worktree change. After --idle-threshold without activity the time
counts as inactive until the next interaction. Switching branches closes the running
interval and starts one on the new branch. Closed intervals are saved to the store.

Examples:
  # Track the current repository with the dashboard
  timesplit track

  # Track without a terminal UI, counting file writes as activity
  timesplit track ~/src/app --headless --watch-activity

  # Treat five quiet minutes as a break
  timesplit track --idle-threshold "5 minutes"`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := repoSetupWrapper(cmd, args); err != nil {
			return err
		}
		// The dashboard owns the terminal, so logs go to a file.
		if !cfg.Headless && cfg.LogFile == "" {
			cfg.LogFile = contract.GetLogFilePath()
			return logging.Configure(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
		}
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return runTrack(rootCtx, cfg, storeManager)
	},
}

// runTrack wires a session to the git HEAD watcher, the optional activity
// watcher and a presenter, and runs until interrupted.
func runTrack(parent context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := contract.NewLocalGitClient()
	gitDir, err := client.GetGitDir(ctx, cfg.RepoPath)
	if err != nil {
		return err
	}

	var intervals contract.IntervalStore
	if mgr != nil {
		intervals = mgr.GetIntervalStore()
	}
	session := core.NewSession(core.SessionOptions{
		Repo:              cfg.RepoPath,
		Branches:          contract.NewRepoBranchSource(client, cfg.RepoPath),
		Store:             intervals,
		IdleThreshold:     cfg.IdleThreshold,
		IdleCheckInterval: cfg.IdleCheckInterval,
		PollInterval:      cfg.PollInterval,
		RefreshInterval:   cfg.RefreshInterval,
		Since:             cfg.Since,
	})
	defer func() { _ = session.Close() }()

	head, err := gitwatch.New(gitDir, gitwatch.DefaultDebounce, func() { session.CheckBranch(ctx) })
	if err != nil {
		return err
	}
	session.AddWatcher(head)

	// Without a dashboard, file writes are the only activity signal.
	if cfg.WatchActivity || cfg.Headless {
		files, err := activity.New(cfg.RepoPath, cfg.Excludes, activity.DefaultThrottle, func(time.Time) {
			session.RegisterActivity()
		})
		if err != nil {
			return err
		}
		session.AddWatcher(files)
	}

	if cfg.Headless {
		return runHeadless(ctx, session, cfg)
	}
	return runDashboard(ctx, session, cfg)
}

// runHeadless prints notices until the context ends, then the session report.
func runHeadless(ctx context.Context, session *core.Session, cfg *contract.Config) error {
	presenter := outwriter.NewConsolePresenter(os.Stdout, cfg.UseColors)
	session.SetPresenter(presenter)
	if err := session.Start(ctx); err != nil {
		return err
	}
	fmt.Printf("Tracking %s (session %s). Press Ctrl+C to stop.\n", cfg.RepoPath, session.ID())

	<-ctx.Done()
	fmt.Println()

	start := time.Now()
	if err := session.Close(); err != nil {
		contract.LogWarn("Failed to close session", err)
	}
	metrics := session.Metrics(start)
	report := outwriter.Report{
		Repo:    cfg.RepoPath,
		Since:   cfg.Since,
		Metrics: metrics,
		Summary: agg.Summarize(metrics),
	}
	return outwriter.NewOutWriter().WriteMetrics(report, cfg, time.Since(start))
}

// runDashboard runs the full-screen dashboard. The session starts alongside
// the program because presenter sends wait for its event loop.
func runDashboard(ctx context.Context, session *core.Session, cfg *contract.Config) error {
	model := tui.NewModel(session, tui.Options{
		Repo:     cfg.RepoPath,
		SortKey:  cfg.SortKey,
		SortDesc: cfg.SortDesc,
	})
	program := tui.NewProgram(ctx, model)
	session.SetPresenter(tui.NewPresenter(program))

	startErr := make(chan error, 1)
	go func() {
		defer close(startErr)
		if err := session.Start(ctx); err != nil {
			startErr <- err
			program.Quit()
		}
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return <-startErr
}
