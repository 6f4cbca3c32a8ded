// Package session holds the client-side authentication state and the
// operations that change it. All reads observe a whole session: the
// authenticated flag, account and credential are swapped together.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/entitlement"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/onboarding"
)

// Options configures a Store. Directory is required; Persister and Sync are optional.
type Options struct {
	Directory Directory
	Persister Persister
	Sync      SyncBuffer
	Logger    *zap.Logger
	Now       func() time.Time
}

// Store is the single source of truth for the current session.
type Store struct {
	directory Directory
	persister Persister
	sync      SyncBuffer
	logger    *zap.Logger
	now       func() time.Time

	mu         sync.RWMutex
	state      domain.Session
	errMsg     string
	generation uint64

	ready     chan struct{}
	readyOnce sync.Once
}

// New builds an anonymous store. Call Restore (or use Open) to load the
// persisted session and mark the store ready.
func New(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		directory: opts.Directory,
		persister: opts.Persister,
		sync:      opts.Sync,
		logger:    logger,
		now:       now,
		state:     domain.AnonymousSession(),
		ready:     make(chan struct{}),
	}
}

// Open builds a store and restores the persisted session.
func Open(ctx context.Context, opts Options) (*Store, error) {
	s := New(opts)
	if err := s.Restore(ctx); err != nil {
		return s, err
	}
	return s, nil
}

// Restore loads the persisted session. A record that cannot be decoded or
// that breaks the session invariant is replaced by the anonymous state.
// The store is marked ready whatever the outcome.
func (s *Store) Restore(ctx context.Context) error {
	defer s.readyOnce.Do(func() { close(s.ready) })

	if s.persister == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	saved, err := s.persister.Load()
	if err != nil {
		s.logger.Warn("discarding unreadable persisted session", zap.Error(err))
		s.mu.Lock()
		s.state = domain.AnonymousSession()
		s.persistLocked()
		s.mu.Unlock()
		return nil
	}
	if saved == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !saved.Consistent() || (saved.IsAuthenticated && !saved.Account.Role.Valid()) {
		s.logger.Warn("discarding inconsistent persisted session")
		s.state = domain.AnonymousSession()
		s.persistLocked()
		return nil
	}
	s.state = saved.Clone()
	s.logger.Debug("session restored", zap.Bool("authenticated", s.state.IsAuthenticated))
	return nil
}

// Ready is closed once the persisted session has been restored.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Session returns a snapshot of the current session.
func (s *Store) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// State classifies the current session.
func (s *Store) State() onboarding.State {
	return onboarding.Classify(s.Session())
}

// CurrentTier returns the tier of the signed-in account, or free.
func (s *Store) CurrentTier() domain.SubscriptionTier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entitlement.TierOf(s.state.Account)
}

// HasFeature reports whether the current session may use feature.
func (s *Store) HasFeature(feature entitlement.FeatureKey) bool {
	return entitlement.HasAccess(s.CurrentTier(), feature)
}

// CredentialFor returns the current bearer credential when the session is
// signed in as accountID.
func (s *Store) CredentialFor(accountID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.state.IsAuthenticated || s.state.Account == nil || s.state.Account.ID != accountID {
		return "", false
	}
	return s.state.Token(), true
}

// Error returns the last user-facing failure message, or "".
func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// ClearError empties the error slot.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

// begin starts a remote operation and returns its generation.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// fail records err in the error slot and returns it.
func (s *Store) fail(err *domain.Error) error {
	s.mu.Lock()
	s.errMsg = err.Message
	s.mu.Unlock()
	return err
}

// failAt records err unless a newer operation started after gen.
func (s *Store) failAt(gen uint64, err *domain.Error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return domain.ErrSuperseded
	}
	s.errMsg = err.Message
	return err
}

// persistLocked saves the current state. Callers hold mu.
func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(s.state.Clone()); err != nil {
		s.logger.Error("failed to persist session", zap.Error(err))
	}
}
