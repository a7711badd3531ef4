// Package orchestrator manages simulation sessions: creation, the periodic
// stepping loop, market-driven parameters, and state broadcasting.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/solflu/outbreak/pkg/broadcast"
	"github.com/solflu/outbreak/pkg/logging"
	"github.com/solflu/outbreak/pkg/metrics"
	"github.com/solflu/outbreak/pkg/simulation"
	"github.com/solflu/outbreak/pkg/statecache"
	"github.com/solflu/outbreak/pkg/translator"
)

// ErrSessionNotFound is returned for operations on unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// ErrTooManySessions is returned when the session cap is reached.
var ErrTooManySessions = errors.New("session limit reached")

// Options configures an Orchestrator.
type Options struct {
	// StepInterval is the wall-clock delay between loop steps.
	StepInterval time.Duration

	// BroadcastEvery forces a broadcast every N steps.
	BroadcastEvery int

	// CacheTTL is the freshness window for cached snapshots.
	CacheTTL time.Duration

	// MaxSessions caps concurrent sessions.
	MaxSessions int

	// Translator supplies market-driven parameters; nil uses defaults.
	Translator *translator.Client

	// Publisher broadcasts state snapshots; nil disables broadcasting.
	Publisher *broadcast.Publisher

	// Metrics records step and broadcast metrics; nil uses the default
	// registry.
	Metrics *metrics.Registry

	Logger logging.Logger
}

// Orchestrator owns all simulation sessions.
type Orchestrator struct {
	opts    Options
	logger  logging.Logger
	metrics *metrics.Registry

	mu       sync.RWMutex
	sessions map[string]*Session
}

// New creates an orchestrator with defaults filled in.
func New(opts Options) *Orchestrator {
	if opts.StepInterval <= 0 {
		opts.StepInterval = 100 * time.Millisecond
	}
	if opts.BroadcastEvery <= 0 {
		opts.BroadcastEvery = 10
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Second
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 16
	}
	if opts.Logger == nil {
		opts.Logger = logging.DefaultLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.DefaultRegistry()
	}

	return &Orchestrator{
		opts:     opts,
		logger:   opts.Logger.With(logging.Component("orchestrator")),
		metrics:  opts.Metrics,
		sessions: make(map[string]*Session),
	}
}

// CreateSession registers a new empty simulation session.
func (o *Orchestrator) CreateSession() (*Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.sessions) >= o.opts.MaxSessions {
		return nil, fmt.Errorf("%w (max %d)", ErrTooManySessions, o.opts.MaxSessions)
	}

	model := simulation.New(simulation.WithLogger(o.logger))
	session := newSession(model, o.opts.CacheTTL)
	o.sessions[session.ID] = session

	o.logger.Info("Session created", logging.SessionID(session.ID))
	return session, nil
}

// Session looks up a session by ID.
func (o *Orchestrator) Session(id string) (*Session, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	session, ok := o.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Sessions returns all sessions.
func (o *Orchestrator) Sessions() []*Session {
	o.mu.RLock()
	defer o.mu.RUnlock()
	sessions := make([]*Session, 0, len(o.sessions))
	for _, session := range o.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// DeleteSession stops and removes a session.
func (o *Orchestrator) DeleteSession(id string) error {
	o.mu.Lock()
	session, ok := o.sessions[id]
	if ok {
		delete(o.sessions, id)
	}
	o.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	o.stop(session)
	o.logger.Info("Session deleted", logging.SessionID(id))
	return nil
}

// StartSession launches the stepping loop for a session.
func (o *Orchestrator) StartSession(id string) error {
	session, err := o.Session(id)
	if err != nil {
		return err
	}

	session.mu.Lock()
	if session.running {
		session.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	session.running = true
	session.cancel = cancel
	session.mu.Unlock()

	o.metrics.SessionStarted()
	o.logger.Info("Session started", logging.SessionID(id))

	go o.runLoop(ctx, session)
	return nil
}

// StopSession halts the stepping loop for a session.
func (o *Orchestrator) StopSession(id string) error {
	session, err := o.Session(id)
	if err != nil {
		return err
	}
	o.stop(session)
	return nil
}

func (o *Orchestrator) stop(session *Session) {
	session.mu.Lock()
	cancel := session.cancel
	wasRunning := session.running
	session.running = false
	session.cancel = nil
	session.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if wasRunning {
		o.metrics.SessionStopped()
		o.logger.Info("Session stopped", logging.SessionID(session.ID))
	}
}

// LastSteps reports the last step time of every running session, for the
// health checker.
func (o *Orchestrator) LastSteps() map[string]time.Time {
	o.mu.RLock()
	defer o.mu.RUnlock()

	steps := make(map[string]time.Time)
	for id, session := range o.sessions {
		if session.Running() {
			steps[id] = session.LastStep()
		}
	}
	return steps
}

// StopAll halts every session loop, used during shutdown.
func (o *Orchestrator) StopAll() {
	for _, session := range o.Sessions() {
		o.stop(session)
	}
}

func (o *Orchestrator) runLoop(ctx context.Context, session *Session) {
	ticker := time.NewTicker(o.opts.StepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.stepOnce(ctx, session)
		}
	}
}

func (o *Orchestrator) stepOnce(ctx context.Context, session *Session) {
	params := o.parameters(ctx, session)

	before := session.State().MutationState.Strain

	start := time.Now()
	snapshot, err := session.Step(params)
	duration := time.Since(start)

	if err != nil {
		o.metrics.RecordStep(session.ID, "error", duration)
		o.logger.Error("Step failed",
			logging.SessionID(session.ID), logging.Error(err))
		return
	}
	o.metrics.RecordStep(session.ID, "success", duration)
	o.metrics.UpdateSessionState(session.ID, &snapshot)

	if snapshot.MutationState.Strain > before {
		o.metrics.RecordMutation(session.ID)
		o.logger.Info("Pathogen mutated",
			logging.SessionID(session.ID),
			logging.Strain(snapshot.MutationState.Strain))
	}

	o.maybeBroadcast(session, &snapshot)
}

// parameters resolves the parameters for the next step: session override
// first, then translator, then defaults.
func (o *Orchestrator) parameters(ctx context.Context, session *Session) simulation.Parameters {
	if override := session.Override(); override != nil {
		return *override
	}
	if o.opts.Translator == nil {
		return simulation.DefaultParameters()
	}

	start := time.Now()
	params, source := o.opts.Translator.Parameters(ctx)
	status := "ok"
	if source == translator.SourceFallback {
		status = "fallback"
	}
	o.metrics.RecordTranslatorRequest(status, time.Since(start))
	return params
}

func (o *Orchestrator) maybeBroadcast(session *Session, snapshot *simulation.Snapshot) {
	if o.opts.Publisher == nil {
		return
	}

	reason := ""
	if session.Steps()%uint64(o.opts.BroadcastEvery) == 0 {
		reason = "interval"
	} else if diff := session.Diff(); diff != nil && diff.Significant() {
		reason = "significant"
	}
	if reason == "" {
		return
	}

	payload, err := statecache.Encode(snapshot)
	if err != nil {
		o.metrics.RecordBroadcastError()
		o.logger.Error("Snapshot encode failed",
			logging.SessionID(session.ID), logging.Error(err))
		return
	}

	if err := o.opts.Publisher.Publish(session.ID, payload); err != nil {
		o.metrics.RecordBroadcastError()
		o.logger.Error("Broadcast failed",
			logging.SessionID(session.ID), logging.Error(err))
		return
	}
	o.metrics.RecordBroadcast(session.ID, reason, len(payload))
	o.logger.Debug("State broadcast",
		logging.SessionID(session.ID),
		logging.String("reason", reason),
		logging.Int("size", len(payload)))
}
