package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/timesplit/core/agg"
	"github.com/huangsam/timesplit/core/track"
	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/internal/logging"
	"github.com/huangsam/timesplit/internal/store"
	"github.com/huangsam/timesplit/schema"
	"github.com/sirupsen/logrus"
)

// persistQueueSize bounds the closed intervals waiting for the store.
const persistQueueSize = 64

// Watcher is a push source of signals owned by a session, like the HEAD
// watcher or the worktree watcher.
type Watcher interface {
	Start(ctx context.Context)
	Close() error
}

// SessionOptions configures a tracking session. Zero durations use the contract defaults.
type SessionOptions struct {
	Repo     string
	Branches contract.BranchSource
	Store    contract.IntervalStore // nil disables persistence

	IdleThreshold     time.Duration
	IdleCheckInterval time.Duration
	PollInterval      time.Duration
	RefreshInterval   time.Duration
	Since             time.Time // Lower bound of the stored history shown in metrics

	Now    func() time.Time
	Logger *logrus.Entry
}

// Session drives a Tracker from branch, activity and focus signals, persists
// the intervals it closes and feeds metrics to a presenter.
type Session struct {
	id       string
	repo     string
	since    time.Time
	tracker  *track.Tracker
	branches contract.BranchSource
	store    contract.IntervalStore
	agg      *agg.Aggregator
	logger   *logrus.Entry
	now      func() time.Time

	idleTask, pollTask, refreshTask *Task

	mu        sync.RWMutex
	presenter contract.Presenter
	baseline  []schema.Interval
	watchers  []Watcher

	qmu       sync.RWMutex // Guards sends on queue against its close
	closing   bool
	queue     chan schema.Interval
	queueDone chan struct{}
	closeOnce sync.Once
}

// NewSession creates a session with a fresh id. Nothing runs until Start.
func NewSession(opts SessionOptions) *Session {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger("session")
	}
	idle := valueOr(opts.IdleThreshold, contract.DefaultIdleThreshold)

	s := &Session{
		id:        uuid.NewString(),
		repo:      opts.Repo,
		since:     opts.Since,
		branches:  opts.Branches,
		store:     opts.Store,
		agg:       agg.New(nil),
		now:       now,
		queue:     make(chan schema.Interval, persistQueueSize),
		queueDone: make(chan struct{}),
	}
	s.logger = logger.WithField("session", s.id)
	s.tracker = track.New(
		track.WithClock(now),
		track.WithIdleThreshold(idle),
		track.WithSessionID(s.id),
	)
	s.tracker.Subscribe(s.enqueue)

	s.idleTask = NewTask("idle-check", valueOr(opts.IdleCheckInterval, contract.DefaultIdleCheckInterval), func(context.Context) {
		s.tracker.OnIdleTimeout(s.now())
	})
	s.pollTask = NewTask("branch-poll", valueOr(opts.PollInterval, contract.DefaultPollInterval), func(ctx context.Context) {
		s.CheckBranch(ctx)
	})
	s.refreshTask = NewTask("refresh", valueOr(opts.RefreshInterval, contract.DefaultRefreshInterval), func(context.Context) {
		s.Refresh()
	})

	go s.persistLoop()
	return s
}

func valueOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// ID returns the session UUID stamped on every interval it records.
func (s *Session) ID() string {
	return s.id
}

// Repo returns the repository root being tracked.
func (s *Session) Repo() string {
	return s.repo
}

// SetPresenter attaches the presenter that receives metrics and notices.
func (s *Session) SetPresenter(p contract.Presenter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presenter = p
}

// AddWatcher hands a push source to the session. It is started by Start and closed by Close.
func (s *Session) AddWatcher(w Watcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, w)
}

// Start loads the stored history, begins tracking the current branch and
// launches the timers and watchers.
func (s *Session) Start(ctx context.Context) error {
	if s.branches == nil {
		return errors.New("session requires a branch source")
	}

	if s.store != nil {
		records, err := s.store.List(schema.ListQuery{Repo: s.repo, Since: s.since})
		if err != nil {
			s.warn("Failed to load stored intervals", err)
		} else {
			s.mu.Lock()
			s.baseline = agg.ClipToWindow(store.Intervals(records), s.since)
			s.mu.Unlock()
		}
	}

	s.CheckBranch(ctx)

	s.idleTask.Start(ctx)
	s.pollTask.Start(ctx)
	s.refreshTask.Start(ctx)

	s.mu.RLock()
	watchers := append([]Watcher(nil), s.watchers...)
	s.mu.RUnlock()
	for _, w := range watchers {
		go w.Start(ctx)
	}

	s.logger.WithFields(logrus.Fields{"repo": s.repo, "branch": s.tracker.Subject()}).Info("Session started")
	return nil
}

// CheckBranch asks the branch source for the current branch and switches
// tracking when it differs. Lookup errors leave the tracker untouched.
func (s *Session) CheckBranch(ctx context.Context) {
	branch, err := s.branches.CurrentBranch(ctx)
	if err != nil {
		s.logger.WithError(err).Debug("Branch lookup failed")
		return
	}
	if branch == s.tracker.Subject() {
		return
	}
	s.tracker.OnBranchChanged(branch)
	if branch == "" {
		s.notify(schema.NoticeInfo, "No branch checked out, tracking paused")
		return
	}
	s.logger.WithField("branch", branch).Info("Switched branch")
	s.notify(schema.NoticeInfo, fmt.Sprintf("Switched to branch: %s", branch))
}

// RegisterActivity forwards a user activity signal to the tracker.
func (s *Session) RegisterActivity() {
	s.tracker.RegisterActivity()
}

// OnFocusChange forwards a focus signal to the tracker.
func (s *Session) OnFocusChange(focused bool) {
	s.tracker.OnFocusChange(focused)
}

// Current returns the open interval, if any.
func (s *Session) Current() (schema.Interval, bool) {
	return s.tracker.Current()
}

// Metrics returns per-branch metrics over the stored history and this session.
// The history is loaded once at Start; intervals closed since then come from
// the tracker, so nothing is counted twice. now is cut to the tracker resolution.
func (s *Session) Metrics(now time.Time) []schema.BranchMetric {
	now = now.Truncate(track.Resolution)
	s.mu.RLock()
	intervals := make([]schema.Interval, 0, len(s.baseline)+8)
	intervals = append(intervals, s.baseline...)
	s.mu.RUnlock()
	intervals = append(intervals, s.tracker.Intervals()...)
	return s.agg.ComputeMetrics(intervals, now)
}

// Refresh pushes a metrics snapshot to the presenter, if one is attached.
func (s *Session) Refresh() {
	s.mu.RLock()
	p := s.presenter
	s.mu.RUnlock()
	if p == nil {
		return
	}
	p.Refresh(s.Metrics(s.now()))
}

// enqueue hands a closed interval to the persistence goroutine.
func (s *Session) enqueue(iv schema.Interval) {
	s.qmu.RLock()
	defer s.qmu.RUnlock()
	if s.closing {
		s.logger.WithField("branch", iv.Subject).Warn("Dropping interval closed after shutdown")
		return
	}
	s.queue <- iv
}

func (s *Session) persistLoop() {
	defer close(s.queueDone)
	for iv := range s.queue {
		if s.store == nil {
			continue
		}
		if err := s.store.Record(s.repo, iv); err != nil {
			s.warn(fmt.Sprintf("Failed to save %s interval on %s", iv.Kind, iv.Subject), err)
		}
	}
}

// warn logs a failure and surfaces it to the presenter. Tracking goes on in memory.
func (s *Session) warn(msg string, err error) {
	s.logger.WithError(err).Warn(msg)
	s.notify(schema.NoticeWarn, fmt.Sprintf("%s: %v", msg, err))
}

func (s *Session) notify(level schema.NoticeLevel, msg string) {
	s.mu.RLock()
	p := s.presenter
	s.mu.RUnlock()
	if p != nil {
		p.Notify(level, msg)
	}
}

// Close ends the session: the open interval is closed and persisted, timers
// and watchers stop, the queue drains and the store is closed.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.tracker.Dispose()

		s.idleTask.Cancel()
		s.pollTask.Cancel()
		s.refreshTask.Cancel()

		s.mu.Lock()
		watchers := s.watchers
		s.watchers = nil
		s.mu.Unlock()
		for _, w := range watchers {
			if cerr := w.Close(); cerr != nil {
				s.logger.WithError(cerr).Debug("Failed to close watcher")
			}
		}

		s.qmu.Lock()
		s.closing = true
		close(s.queue)
		s.qmu.Unlock()
		<-s.queueDone

		if s.store != nil {
			err = s.store.Close()
		}
		s.logger.Info("Session closed")
	})
	return err
}
