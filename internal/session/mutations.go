package session

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/entitlement"
)

// Login authenticates against the directory. On failure the prior session is
// kept and the error slot is populated.
func (s *Store) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, s.fail(err)
	}

	gen := s.begin()
	result, err := s.directory.Login(ctx, email, password)
	if err != nil {
		s.logger.Info("login failed", zap.String("email", email), zap.Error(err))
		return nil, s.failAt(gen, classify(err))
	}
	return s.establish(gen, result)
}

// Register creates an account and signs it in. The new account starts on the
// default role and the free tier.
func (s *Store) Register(ctx context.Context, email, password string) (*domain.Account, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, s.fail(err)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, s.fail(domain.ErrWeakPassword)
	}

	gen := s.begin()
	result, err := s.directory.Register(ctx, email, password)
	if err != nil {
		s.logger.Info("registration failed", zap.String("email", email), zap.Error(err))
		return nil, s.failAt(gen, classify(err))
	}
	return s.establish(gen, result)
}

// Refresh exchanges the refresh credential for a new credential pair. A
// rejected refresh credential signs the session out; transport failures leave
// it untouched. Refresh never writes the error slot.
func (s *Store) Refresh(ctx context.Context) error {
	current := s.Session()
	if !current.IsAuthenticated || current.RefreshCredential == "" {
		return domain.ErrNotAuthenticated
	}

	gen := s.begin()
	result, err := s.directory.Refresh(ctx, current.RefreshCredential)
	if err != nil {
		classified := classify(err)
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.generation {
			return domain.ErrSuperseded
		}
		switch classified.Code {
		case domain.ErrCodeInvalidCredentials, domain.ErrCodeNotAuthenticated:
			s.logger.Info("refresh rejected, signing out", zap.Error(err))
			s.state = domain.AnonymousSession()
			s.persistLocked()
		}
		return classified
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return domain.ErrSuperseded
	}
	account := s.state.Account
	if result.Account != nil {
		account = normalizeAccount(result.Account)
	}
	s.state = domain.NewAuthenticatedSession(account, result.Credential, result.RefreshCredential)
	s.persistLocked()
	return nil
}

// ReloadAccount replaces the cached account with the directory's copy.
func (s *Store) ReloadAccount(ctx context.Context) (*domain.Account, error) {
	current := s.Session()
	if !current.IsAuthenticated {
		return nil, domain.ErrNotAuthenticated
	}

	gen := s.begin()
	account, err := s.directory.CurrentAccount(ctx, current.Token())
	if err != nil {
		classified := classify(err)
		s.mu.RLock()
		stale := gen != s.generation
		s.mu.RUnlock()
		if stale {
			return nil, domain.ErrSuperseded
		}
		return nil, classified
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil, domain.ErrSuperseded
	}
	s.state = domain.NewAuthenticatedSession(normalizeAccount(account), current.Token(), current.RefreshCredential)
	s.persistLocked()
	return s.state.Account.Clone(), nil
}

// Logout clears the session locally and then asks the directory to revoke
// the credential. Any remote operation still in flight is superseded.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.generation++
	previous := s.state
	if !previous.IsAuthenticated {
		s.mu.Unlock()
		return
	}
	s.state = domain.AnonymousSession()
	s.persistLocked()
	s.mu.Unlock()

	if token := previous.Token(); token != "" && s.directory != nil {
		if err := s.directory.Logout(ctx, token); err != nil {
			s.logger.Warn("remote logout failed", zap.Error(err))
		}
	}
}

// UpdateRole sets the role of the signed-in account. A linked player is kept.
// It is a no-op when nobody is signed in.
func (s *Store) UpdateRole(ctx context.Context, role domain.Role) error {
	if !role.Valid() {
		return domain.ErrInvalidRole
	}

	change, ok := s.applyLocal(func(account *domain.Account) {
		account.Role = role
	})
	if !ok {
		return nil
	}
	change.Kind = ChangeRole
	change.Role = role
	s.push(ctx, change)
	return nil
}

// LinkPlayer asks the directory to verify and link a registry player. It
// returns true when the account is now linked.
func (s *Store) LinkPlayer(ctx context.Context, playerID, fullName, birthDate string) (bool, error) {
	current := s.Session()
	if !current.IsAuthenticated {
		return false, s.fail(domain.ErrNotAuthenticated)
	}
	link := domain.PlayerLink{
		PlayerID:  strings.TrimSpace(playerID),
		FullName:  strings.TrimSpace(fullName),
		BirthDate: strings.TrimSpace(birthDate),
	}
	if link.PlayerID == "" || link.FullName == "" || link.BirthDate == "" {
		return false, s.fail(domain.NewError(domain.ErrCodeMissingField, "player id, full name and birth date are required"))
	}

	gen := s.begin()
	account, err := s.directory.LinkPlayer(ctx, current.Token(), link)
	if err != nil {
		s.logger.Info("player link failed", zap.String("player_id", link.PlayerID), zap.Error(err))
		return false, s.failAt(gen, classify(err))
	}

	linked := link.PlayerID
	if account.HasLinkedPlayer() {
		linked = *account.LinkedPlayerID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || !s.state.IsAuthenticated {
		return false, domain.ErrSuperseded
	}
	next := s.state.Account.Clone()
	next.LinkedPlayerID = &linked
	s.state = domain.NewAuthenticatedSession(next, s.state.Token(), s.state.RefreshCredential)
	s.errMsg = ""
	s.persistLocked()
	return true, nil
}

// UnlinkPlayer clears the linked player of the signed-in account.
func (s *Store) UnlinkPlayer(ctx context.Context) error {
	change, ok := s.applyLocal(func(account *domain.Account) {
		account.LinkedPlayerID = nil
	})
	if !ok {
		return nil
	}
	change.Kind = ChangeUnlinkPlayer
	s.push(ctx, change)
	return nil
}

// UpdateSubscription switches the signed-in account to tier.
func (s *Store) UpdateSubscription(ctx context.Context, tier domain.SubscriptionTier) error {
	if !entitlement.ValidTier(tier) {
		return domain.ErrInvalidTier
	}

	now := s.now()
	change, ok := s.applyLocal(func(account *domain.Account) {
		account.Subscription = entitlement.Subscribe(tier, now)
	})
	if !ok {
		return nil
	}
	change.Kind = ChangeSubscription
	change.Tier = tier
	s.push(ctx, change)
	return nil
}

// establish installs the result of a successful login or registration.
func (s *Store) establish(gen uint64, result *domain.AuthResult) (*domain.Account, error) {
	if result == nil || result.Account == nil || result.Credential == "" {
		return nil, s.failAt(gen, domain.WrapError(domain.ErrCodeServerError, domain.ErrServerError.Message, domain.ErrInvalidPayload))
	}
	account := normalizeAccount(result.Account)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Debug("discarding stale authentication result")
		return nil, domain.ErrSuperseded
	}
	s.state = domain.NewAuthenticatedSession(account, result.Credential, result.RefreshCredential)
	s.errMsg = ""
	s.persistLocked()
	return s.state.Account.Clone(), nil
}

// applyLocal edits the signed-in account in place and persists it. It reports
// false when nobody is signed in.
func (s *Store) applyLocal(edit func(account *domain.Account)) (Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsAuthenticated {
		return Change{}, false
	}
	next := s.state.Account.Clone()
	edit(next)
	next.UpdatedAt = s.now()
	s.state = domain.NewAuthenticatedSession(next, s.state.Token(), s.state.RefreshCredential)
	s.persistLocked()
	return Change{AccountID: next.ID, Credential: s.state.Token()}, true
}

func (s *Store) push(ctx context.Context, change Change) {
	if s.sync == nil {
		return
	}
	if err := s.sync.Push(ctx, change); err != nil {
		s.logger.Warn("failed to queue account change",
			zap.String("kind", string(change.Kind)),
			zap.String("account_id", change.AccountID),
			zap.Error(err))
	}
}

func normalizeAccount(account *domain.Account) *domain.Account {
	out := account.Clone()
	if out.Role == "" {
		out.Role = domain.DefaultRole
	}
	if !entitlement.ValidTier(out.Subscription.Tier) {
		out.Subscription = domain.FreeSubscription(out.CreatedAt)
	}
	return out
}
