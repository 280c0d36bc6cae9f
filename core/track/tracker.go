// Package track implements the branch time tracking state machine.
//
// A Tracker owns at most one open interval. Branch changes, activity, idle
// timeouts and focus changes close the open interval and open the next one at
// the same instant, so consecutive intervals never overlap and never leave a gap.
package track

import (
	"sync"
	"time"

	"github.com/huangsam/timesplit/internal/logging"
	"github.com/huangsam/timesplit/schema"
	"github.com/sirupsen/logrus"
)

// DefaultIdleThreshold is how long an active interval may go without activity
// before it is reclassified as inactive.
const DefaultIdleThreshold = 60 * time.Second

// Resolution is the precision of every instant the tracker records. It matches
// the millisecond columns of the interval store.
const Resolution = time.Millisecond

// State is the coarse tracker state.
type State int

// All tracker states.
const (
	Idle State = iota
	Tracking
)

// String implements fmt.Stringer.
func (s State) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "idle"
}

// Listener receives every interval the tracker closes, in completion order.
type Listener func(schema.Interval)

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the clock used for every transition.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithIdleThreshold overrides DefaultIdleThreshold.
func WithIdleThreshold(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.idleThreshold = d
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithSessionID stamps every interval with the given session identifier.
func WithSessionID(id string) Option {
	return func(t *Tracker) {
		t.sessionID = id
	}
}

// WithFocused sets the initial focus state. Trackers start focused by default.
func WithFocused(focused bool) Option {
	return func(t *Tracker) {
		t.focused = focused
	}
}

// Tracker is the branch time tracking state machine. It is safe for concurrent use:
// every operation runs to completion under a single mutex, and listeners are
// invoked after the mutex is released.
type Tracker struct {
	mu sync.Mutex

	now           func() time.Time
	idleThreshold time.Duration
	logger        *logrus.Entry
	sessionID     string

	open         *schema.Interval
	closed       []schema.Interval
	lastActivity time.Time
	focused      bool
	disposed     bool

	listeners []Listener
}

// New creates an idle Tracker. The construction instant counts as the last activity.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		now:           time.Now,
		idleThreshold: DefaultIdleThreshold,
		focused:       true,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logging.NewLogger("tracker")
	}
	t.lastActivity = t.now().Truncate(Resolution)
	return t
}

// Subscribe registers a listener for closed intervals.
func (t *Tracker) Subscribe(fn Listener) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Start begins tracking subject with the kind implied by the current focus and activity state.
// Any open interval is closed first. Starting the subject already tracked restarts its interval.
func (t *Tracker) Start(subject string) {
	t.apply(func(now time.Time) {
		t.startLocked(subject, t.derivedKindLocked(now), now)
	})
}

// StartKind begins tracking subject with an explicit kind.
func (t *Tracker) StartKind(subject string, kind schema.Kind) {
	t.apply(func(now time.Time) {
		t.startLocked(subject, kind, now)
	})
}

// Stop closes the open interval, if any.
func (t *Tracker) Stop() {
	t.apply(func(now time.Time) {
		t.stopLocked(now)
	})
}

// Current returns a copy of the open interval with no end, or false when idle.
func (t *Tracker) Current() (schema.Interval, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.open == nil {
		return schema.Interval{}, false
	}
	return t.open.Snapshot(), true
}

// State returns Idle or Tracking.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.open == nil {
		return Idle
	}
	return Tracking
}

// Subject returns the tracked branch, or "" when idle.
func (t *Tracker) Subject() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.open == nil {
		return ""
	}
	return t.open.Subject
}

// Focused reports the last focus state seen by the tracker.
func (t *Tracker) Focused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.focused
}

// LastActivity returns the instant of the most recent activity signal.
func (t *Tracker) LastActivity() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastActivity
}

// Closed returns a copy of every closed interval in completion order.
func (t *Tracker) Closed() []schema.Interval {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]schema.Interval, len(t.closed))
	for i, iv := range t.closed {
		out[i] = iv.Snapshot()
	}
	return out
}

// Intervals returns the closed intervals followed by the open one, if any.
func (t *Tracker) Intervals() []schema.Interval {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]schema.Interval, 0, len(t.closed)+1)
	for _, iv := range t.closed {
		out = append(out, iv.Snapshot())
	}
	if t.open != nil {
		out = append(out, t.open.Snapshot())
	}
	return out
}

// RegisterActivity records user activity. An inactive interval is split so that
// the active time that follows is recorded separately.
func (t *Tracker) RegisterActivity() {
	t.apply(func(now time.Time) {
		t.lastActivity = now
		t.transitionLocked(schema.ActiveKind, now)
	})
}

// OnIdleTimeout reclassifies the open interval as inactive when no activity was
// seen for longer than the idle threshold. The transition happens at now.
func (t *Tracker) OnIdleTimeout(now time.Time) {
	t.applyAt(now, func(now time.Time) {
		if t.open == nil || t.open.Kind != schema.ActiveKind {
			return
		}
		if now.Sub(t.lastActivity) <= t.idleThreshold {
			return
		}
		t.logger.Debugf("Idle for %v on %s", now.Sub(t.lastActivity).Round(time.Second), t.open.Subject)
		t.transitionLocked(schema.InactiveKind, now)
	})
}

// OnFocusChange records the window focus. A change splits the open interval into
// active (focused) or inactive (unfocused) time. Regaining focus counts as activity.
func (t *Tracker) OnFocusChange(focused bool) {
	t.apply(func(now time.Time) {
		if focused == t.focused {
			return
		}
		t.focused = focused
		if focused {
			t.lastActivity = now
			t.transitionLocked(schema.ActiveKind, now)
			return
		}
		t.transitionLocked(schema.InactiveKind, now)
	})
}

// OnBranchChanged switches tracking to subject. The same subject is a no-op and an
// empty subject (no repository or detached HEAD) stops tracking.
func (t *Tracker) OnBranchChanged(subject string) {
	t.apply(func(now time.Time) {
		if t.open != nil && t.open.Subject == subject {
			return
		}
		if subject == "" {
			t.logger.Debug("Branch is absent, stopping")
			t.stopLocked(now)
			return
		}
		t.startLocked(subject, t.derivedKindLocked(now), now)
	})
}

// Dispose closes any open interval and ignores every later signal.
func (t *Tracker) Dispose() {
	t.apply(func(now time.Time) {
		t.stopLocked(now)
		t.disposed = true
	})
}

// apply runs fn under the mutex with the current instant and then notifies
// listeners of the intervals it closed.
func (t *Tracker) apply(fn func(now time.Time)) {
	t.applyAt(time.Time{}, fn)
}

func (t *Tracker) applyAt(at time.Time, fn func(now time.Time)) {
	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		return
	}
	if at.IsZero() {
		at = t.now()
	}
	at = at.Truncate(Resolution)
	before := len(t.closed)
	fn(at)
	emitted := make([]schema.Interval, 0, len(t.closed)-before)
	for _, iv := range t.closed[before:] {
		emitted = append(emitted, iv.Snapshot())
	}
	listeners := append([]Listener(nil), t.listeners...)
	t.mu.Unlock()

	for _, iv := range emitted {
		for _, fn := range listeners {
			fn(iv)
		}
	}
}

func (t *Tracker) derivedKindLocked(now time.Time) schema.Kind {
	if t.focused && now.Sub(t.lastActivity) <= t.idleThreshold {
		return schema.ActiveKind
	}
	return schema.InactiveKind
}

func (t *Tracker) startLocked(subject string, kind schema.Kind, now time.Time) {
	t.stopLocked(now)
	if subject == "" {
		return
	}
	if _, ok := schema.ValidKinds[kind]; !ok {
		kind = schema.InactiveKind
	}
	t.open = &schema.Interval{
		Subject:   subject,
		Start:     now,
		Kind:      kind,
		SessionID: t.sessionID,
	}
	t.logger.Debugf("Started %s interval on %s", kind, subject)
}

func (t *Tracker) stopLocked(now time.Time) {
	if t.open == nil {
		return
	}
	iv := t.open.Closed(now)
	t.open = nil
	if !iv.Valid() {
		t.logger.Debugf("Discarded %s interval on %s with non-positive duration", iv.Kind, iv.Subject)
		return
	}
	t.closed = append(t.closed, iv)
	t.logger.Debugf("Closed %s interval on %s after %v", iv.Kind, iv.Subject, iv.Duration(now))
}

// transitionLocked splits the open interval at now when its kind differs from kind.
func (t *Tracker) transitionLocked(kind schema.Kind, now time.Time) {
	if t.open == nil || t.open.Kind == kind {
		return
	}
	t.startLocked(t.open.Subject, kind, now)
}
