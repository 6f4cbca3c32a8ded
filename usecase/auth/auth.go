package auth

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	credentials "github.com/Daniil-Sakharov/hockey-project-sub001/internal/auth"
	"github.com/Daniil-Sakharov/hockey-project-sub001/repository"
	"github.com/Daniil-Sakharov/hockey-project-sub001/usecase"
)

// TokenIssuer mints access credentials.
type TokenIssuer interface {
	Issue(account *domain.Account) (string, error)
	TTL() time.Duration
}

type UseCase struct {
	accounts   repository.AccountRepository
	sessions   repository.SessionRepository
	tokens     TokenIssuer
	audit      *usecase.Recorder
	refreshTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func New(
	accounts repository.AccountRepository,
	sessions repository.SessionRepository,
	tokens TokenIssuer,
	audit *usecase.Recorder,
	refreshTTL time.Duration,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &UseCase{
		accounts:   accounts,
		sessions:   sessions,
		tokens:     tokens,
		audit:      audit,
		refreshTTL: refreshTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates an account on the default role and the free tier.
func (uc *UseCase) Register(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrMissingField
	}
	if utf8.RuneCountInString(password) < credentials.MinPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	hash, err := credentials.HashPassword(password)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to hash password", err)
	}

	now := uc.now().UTC()
	account := &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		Role:         domain.DefaultRole,
		Subscription: domain.FreeSubscription(now),
		CreatedAt:    now,
		UpdatedAt:    now,
		PasswordHash: hash,
	}
	if err := uc.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.logger.Info("account registered", zap.String("account_id", account.ID))
	uc.audit.Record(ctx, account.ID, domain.EventAccountRegistered, map[string]string{"role": string(account.Role)})
	return uc.issue(ctx, account)
}

// Login verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrMissingField
	}

	account, err := uc.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := credentials.CheckPassword(account.PasswordHash, password); err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, account.ID, domain.EventAccountLoggedIn, struct{}{})
	return uc.issue(ctx, account)
}

// Refresh rotates a refresh credential.
func (uc *UseCase) Refresh(ctx context.Context, refreshCredential string) (*domain.AuthResult, error) {
	if refreshCredential == "" {
		return nil, domain.ErrNotAuthenticated
	}
	session, err := uc.sessions.Get(ctx, refreshCredential)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, err
	}
	if err := uc.sessions.Delete(ctx, session.ID); err != nil {
		return nil, err
	}
	if session.IsExpired(uc.now()) {
		return nil, domain.ErrNotAuthenticated
	}

	account, err := uc.accounts.GetByID(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, err
	}
	return uc.issue(ctx, account)
}

// Logout revokes every refresh session of the account.
func (uc *UseCase) Logout(ctx context.Context, accountID string) error {
	return uc.sessions.DeleteByAccount(ctx, accountID)
}

func (uc *UseCase) issue(ctx context.Context, account *domain.Account) (*domain.AuthResult, error) {
	token, err := uc.tokens.Issue(account)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to issue credential", err)
	}

	now := uc.now()
	session := &domain.RefreshSession{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.refreshTTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	return &domain.AuthResult{
		Credential:        token,
		RefreshCredential: session.ID,
		ExpiresIn:         int(uc.tokens.TTL().Seconds()),
		Account:           account,
	}, nil
}
