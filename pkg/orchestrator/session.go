package orchestrator

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/solflu/outbreak/pkg/simulation"
	"github.com/solflu/outbreak/pkg/statecache"
)

// Session is one independent simulation with its own model, cache and loop.
// The model itself is not goroutine safe; all access goes through the
// session mutex.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.RWMutex
	model    *simulation.Model
	cache    *statecache.Cache
	override *simulation.Parameters

	running  bool
	cancel   func()
	lastStep time.Time
	steps    uint64
}

func newSession(model *simulation.Model, cacheTTL time.Duration) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		model:     model,
		cache:     statecache.New(cacheTTL),
	}
}

// WithModel runs fn while holding the session write lock. Handlers use this
// for registering countries and routes.
func (s *Session) WithModel(fn func(*simulation.Model) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.model)
}

// State returns a deep copy of the current simulation state.
func (s *Session) State() simulation.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.State()
}

// CachedState returns the latest snapshot from the cache, falling back to a
// fresh copy when the cache has expired.
func (s *Session) CachedState() simulation.Snapshot {
	if snapshot, ok := s.cache.Get(); ok {
		return *snapshot
	}
	return s.State()
}

// Step advances the simulation one tick under the session lock and refreshes
// the cache. Returns the resulting snapshot. A failed step leaves the step
// counter, cache and diff history untouched so error ticks neither advance
// the broadcast interval nor mask a stalled loop.
func (s *Session) Step(params simulation.Parameters) (simulation.Snapshot, error) {
	s.mu.Lock()
	err := s.model.Step(params)
	snapshot := s.model.State()
	if err != nil {
		s.mu.Unlock()
		return snapshot, err
	}
	s.steps++
	s.lastStep = time.Now()
	s.mu.Unlock()

	s.cache.Update(snapshot)
	return snapshot, nil
}

// SetOverride pins the session to fixed parameters instead of translator
// output. A nil override returns control to the translator.
func (s *Session) SetOverride(params *simulation.Parameters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = params
}

// Override returns the pinned parameters, if any.
func (s *Session) Override() *simulation.Parameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.override == nil {
		return nil
	}
	p := *s.override
	return &p
}

// Running reports whether the session loop is active.
func (s *Session) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// LastStep returns when the loop last advanced the model.
func (s *Session) LastStep() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastStep
}

// Steps returns the number of steps executed so far.
func (s *Session) Steps() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.steps
}

// Diff exposes the cache diff between the two most recent snapshots.
func (s *Session) Diff() *statecache.Diff {
	return s.cache.Diff()
}
