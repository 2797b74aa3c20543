package thinking

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/entrhq/vigil/pkg/audit"
	"github.com/entrhq/vigil/pkg/logging"
	"github.com/entrhq/vigil/pkg/types"
)

// Default cadence of the three tiers and the inter-tick sleep.
const (
	DefaultTickInterval   = 5 * time.Second
	DefaultQuickInterval  = 30 * time.Second
	DefaultMediumInterval = 5 * time.Minute
	DefaultDeepInterval   = 30 * time.Minute
)

// deepPhaseProposalLimit caps how many proposals one self-assessment may
// emit.
const deepPhaseProposalLimit = 2

// Scheduler orchestrates the quick, medium, and deep thinking phases. It is
// single-threaded and cooperative: exactly one phase executes at a time, and
// cancellation is checked at every suspension boundary, giving bounded but
// not instant cancellation latency (one sleep interval or one in-flight
// external call).
type Scheduler struct {
	callbacks Callbacks
	auditLog  *audit.Log
	logger    *logging.Logger
	state     *State

	mode        ParseMode
	digest      string
	auditWindow time.Duration

	tickInterval   time.Duration
	quickInterval  time.Duration
	mediumInterval time.Duration
	deepInterval   time.Duration

	paused atomic.Bool

	// lastModel is the previous project snapshot, kept to compute deltas
	// for trigger evaluation.
	lastModel *types.ProjectModel
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTickInterval overrides the inter-tick sleep.
func WithTickInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		s.tickInterval = d
	}
}

// WithIntervals overrides the per-tier cadence.
func WithIntervals(quick, medium, deep time.Duration) Option {
	return func(s *Scheduler) {
		s.quickInterval = quick
		s.mediumInterval = medium
		s.deepInterval = deep
	}
}

// WithParseMode sets how strictly model output is validated.
func WithParseMode(mode ParseMode) Option {
	return func(s *Scheduler) {
		s.mode = mode
	}
}

// WithEthicsDigest embeds the policy digest into prompts for tamper
// evidence.
func WithEthicsDigest(digest string) Option {
	return func(s *Scheduler) {
		s.digest = digest
	}
}

// WithAuditWindow overrides the lookback used for anomaly detection.
func WithAuditWindow(d time.Duration) Option {
	return func(s *Scheduler) {
		s.auditWindow = d
	}
}

// WithLogger sets the component logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a scheduler reading anomalies from the given audit
// log and driving collaborators through the callbacks.
func NewScheduler(callbacks Callbacks, auditLog *audit.Log, opts ...Option) *Scheduler {
	if auditLog == nil {
		auditLog = audit.NewLog(0)
	}

	s := &Scheduler{
		callbacks:      callbacks.withDefaults(),
		auditLog:       auditLog,
		state:          NewState(),
		mode:           ModeStrict,
		auditWindow:    audit.DefaultWindow,
		tickInterval:   DefaultTickInterval,
		quickInterval:  DefaultQuickInterval,
		mediumInterval: DefaultMediumInterval,
		deepInterval:   DefaultDeepInterval,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger, _ = logging.NewLogger("thinking")
	}
	return s
}

// State returns the scheduler's state handle. The caller owns persistence
// of the snapshot after Run returns.
func (s *Scheduler) State() *State {
	return s.state
}

// Pause suspends tier execution. The loop keeps ticking and re-polling but
// no tier timer advances and no phase runs until Resume.
func (s *Scheduler) Pause() {
	s.paused.Store(true)
}

// Resume lifts a Pause.
func (s *Scheduler) Resume() {
	s.paused.Store(false)
}

// Run executes the thinking loop until the context is canceled or
// hasTaskAvailable reports pending real work, whichever comes first;
// thinking never starves the task queue. The state is returned by handle so
// the caller may persist and later resume it.
func (s *Scheduler) Run(ctx context.Context, hasTaskAvailable func() bool) *State {
	if hasTaskAvailable == nil {
		hasTaskAvailable = func() bool { return false }
	}

	s.logger.Infof("thinking loop started (tick=%s quick=%s medium=%s deep=%s)",
		s.tickInterval, s.quickInterval, s.mediumInterval, s.deepInterval)

	for {
		if done := s.yieldCheck(ctx, hasTaskAvailable); done {
			return s.state
		}

		if !s.sleepTick(ctx) {
			s.logger.Infof("thinking loop aborted during sleep")
			return s.state
		}

		if done := s.yieldCheck(ctx, hasTaskAvailable); done {
			return s.state
		}

		if s.paused.Load() {
			continue
		}

		s.runDueTier(ctx)
	}
}

// RunImmediateDeepThink is the synchronous on-demand path: quick, medium,
// and deep in sequence, honoring abort checks between steps.
func (s *Scheduler) RunImmediateDeepThink(ctx context.Context) *State {
	s.runPhase(ctx, PhaseQuick, &s.state.LastQuickCheck, s.runQuickPhase)
	if ctx.Err() != nil {
		return s.state
	}
	s.runPhase(ctx, PhaseMedium, &s.state.LastMediumCheck, s.runMediumPhase)
	if ctx.Err() != nil {
		return s.state
	}
	s.runPhase(ctx, PhaseDeep, &s.state.LastDeepCheck, s.runDeepPhase)
	return s.state
}

// yieldCheck reports whether the loop should exit: context canceled or a
// real task waiting.
func (s *Scheduler) yieldCheck(ctx context.Context, hasTaskAvailable func() bool) bool {
	if ctx.Err() != nil {
		return true
	}
	if hasTaskAvailable() {
		s.logger.Infof("task available, yielding thinking loop")
		return true
	}
	return false
}

// sleepTick sleeps one tick interval; returns false if the context was
// canceled mid-sleep.
func (s *Scheduler) sleepTick(ctx context.Context) bool {
	timer := time.NewTimer(s.tickInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// runDueTier runs at most one tier, checking in fixed priority order deep,
// then medium, then quick. Running the least-frequent tier first when
// several are simultaneously due keeps the cheap quick tier from
// perpetually deferring expensive deep analysis. Returns the phase that
// ran, or PhaseIdle.
func (s *Scheduler) runDueTier(ctx context.Context) Phase {
	now := time.Now()
	switch {
	case now.Sub(s.state.LastDeepCheck) >= s.deepInterval:
		s.runPhase(ctx, PhaseDeep, &s.state.LastDeepCheck, s.runDeepPhase)
		return PhaseDeep
	case now.Sub(s.state.LastMediumCheck) >= s.mediumInterval:
		s.runPhase(ctx, PhaseMedium, &s.state.LastMediumCheck, s.runMediumPhase)
		return PhaseMedium
	case now.Sub(s.state.LastQuickCheck) >= s.quickInterval:
		s.runPhase(ctx, PhaseQuick, &s.state.LastQuickCheck, s.runQuickPhase)
		return PhaseQuick
	default:
		return PhaseIdle
	}
}

// runPhase wraps one phase body so that no failure can wedge the loop: any
// error or panic is recorded into CurrentThought, the tier's timestamp
// still advances, and the state returns to idle. A failed phase is never
// retried before its next regular interval.
func (s *Scheduler) runPhase(ctx context.Context, phase Phase, lastCheck *time.Time, body func(context.Context) error) {
	s.state.Phase = phase
	s.callbacks.PushEvent(types.EventTypeThinkingUpdate, map[string]interface{}{
		"phase": string(phase),
	})

	defer func() {
		if r := recover(); r != nil {
			s.state.setThought("%s phase panic: %v", phase, r)
			s.logger.Errorf("%s phase panicked: %v", phase, r)
		}
		*lastCheck = time.Now()
		s.state.Phase = PhaseIdle
	}()

	if err := body(ctx); err != nil {
		s.state.setThought("%s phase error: %v", phase, err)
		s.logger.Warnf("%s phase failed: %v", phase, err)
	}
}
