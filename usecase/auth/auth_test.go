package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	credentials "github.com/Daniil-Sakharov/hockey-project-sub001/internal/auth"
	"github.com/Daniil-Sakharov/hockey-project-sub001/repository"
	"github.com/Daniil-Sakharov/hockey-project-sub001/usecase"
)

type AccountRepoMock struct {
	mock.Mock
}

func (m *AccountRepoMock) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *AccountRepoMock) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *AccountRepoMock) Create(ctx context.Context, account *domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *AccountRepoMock) Update(ctx context.Context, account *domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

type SessionRepoMock struct {
	mock.Mock
}

func (m *SessionRepoMock) Get(ctx context.Context, id string) (*domain.RefreshSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshSession), args.Error(1)
}

func (m *SessionRepoMock) Save(ctx context.Context, session *domain.RefreshSession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *SessionRepoMock) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *SessionRepoMock) DeleteByAccount(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}

type EventRepoMock struct {
	mock.Mock
}

func (m *EventRepoMock) Append(ctx context.Context, event domain.AccountEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *EventRepoMock) List(ctx context.Context, filter repository.EventFilter) ([]domain.AccountEvent, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.AccountEvent), args.Error(1)
}

type fixture struct {
	accounts *AccountRepoMock
	sessions *SessionRepoMock
	events   *EventRepoMock
	uc       *UseCase
}

func newFixture() fixture {
	f := fixture{
		accounts: new(AccountRepoMock),
		sessions: new(SessionRepoMock),
		events:   new(EventRepoMock),
	}
	issuer := credentials.NewIssuer("test-secret", "test", time.Minute)
	f.uc = New(f.accounts, f.sessions, issuer, usecase.NewRecorder(f.events, nil), time.Hour, nil)
	return f
}

func eventNamed(name string) interface{} {
	return mock.MatchedBy(func(e domain.AccountEvent) bool { return e.Name == name })
}

func TestRegister(t *testing.T) {
	f := newFixture()
	f.accounts.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Account) bool {
		return a.Email == "p@example.com" &&
			a.Role == domain.RoleFan &&
			a.Subscription.Tier == domain.TierFree &&
			a.Subscription.EndDate == nil &&
			a.PasswordHash != "" && a.PasswordHash != "abcdef"
	})).Return(nil).Once()
	f.events.On("Append", mock.Anything, eventNamed(domain.EventAccountRegistered)).Return(nil).Once()
	f.sessions.On("Save", mock.Anything, mock.AnythingOfType("*domain.RefreshSession")).Return(nil).Once()

	result, err := f.uc.Register(context.Background(), "p@example.com", "abcdef")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Credential)
	assert.NotEmpty(t, result.RefreshCredential)
	assert.Equal(t, 60, result.ExpiresIn)
	assert.Equal(t, domain.RoleFan, result.Account.Role)

	f.accounts.AssertExpectations(t)
	f.events.AssertExpectations(t)
	f.sessions.AssertExpectations(t)
}

func TestRegisterRejects(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		setup    func(f fixture)
		want     domain.ErrorCode
	}{
		{name: "missing email", email: "", password: "abcdef", want: domain.ErrCodeMissingField},
		{name: "weak password", email: "a@b.co", password: "abc", want: domain.ErrCodeWeakPassword},
		{
			name:     "duplicate email",
			email:    "a@b.co",
			password: "abcdef",
			setup: func(f fixture) {
				f.accounts.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateEmail).Once()
			},
			want: domain.ErrCodeDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			_, err := f.uc.Register(context.Background(), tt.email, tt.password)
			assert.Equal(t, tt.want, domain.CodeOf(err))
			f.sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestLogin(t *testing.T) {
	hash, err := credentials.HashPassword("abcdef")
	require.NoError(t, err)
	stored := &domain.Account{ID: "acc-1", Email: "p@example.com", Role: domain.RoleScout, PasswordHash: hash}

	f := newFixture()
	f.accounts.On("GetByEmail", mock.Anything, "p@example.com").Return(stored, nil)
	f.accounts.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrAccountNotFound)
	f.events.On("Append", mock.Anything, eventNamed(domain.EventAccountLoggedIn)).Return(nil)
	f.sessions.On("Save", mock.Anything, mock.Anything).Return(nil)

	result, err := f.uc.Login(context.Background(), "p@example.com", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", result.Account.ID)

	_, err = f.uc.Login(context.Background(), "p@example.com", "wrong1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.uc.Login(context.Background(), "ghost@example.com", "abcdef")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.uc.Login(context.Background(), "p@example.com", "")
	assert.ErrorIs(t, err, domain.ErrMissingField)
}

func TestRefreshRotatesSession(t *testing.T) {
	f := newFixture()
	account := &domain.Account{ID: "acc-1", Role: domain.RoleFan}
	live := &domain.RefreshSession{ID: "ref-1", AccountID: "acc-1", ExpiresAt: time.Now().Add(time.Hour)}

	f.sessions.On("Get", mock.Anything, "ref-1").Return(live, nil).Once()
	f.sessions.On("Delete", mock.Anything, "ref-1").Return(nil).Once()
	f.accounts.On("GetByID", mock.Anything, "acc-1").Return(account, nil).Once()
	f.sessions.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.RefreshSession) bool {
		return s.AccountID == "acc-1" && s.ID != "ref-1"
	})).Return(nil).Once()

	result, err := f.uc.Refresh(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.NotEqual(t, "ref-1", result.RefreshCredential)
	f.sessions.AssertExpectations(t)
}

func TestRefreshRejectsUnknownAndExpired(t *testing.T) {
	f := newFixture()
	f.sessions.On("Get", mock.Anything, "missing").Return(nil, domain.ErrSessionNotFound).Once()
	_, err := f.uc.Refresh(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	expired := &domain.RefreshSession{ID: "old", AccountID: "acc-1", ExpiresAt: time.Now().Add(-time.Minute)}
	f.sessions.On("Get", mock.Anything, "old").Return(expired, nil).Once()
	f.sessions.On("Delete", mock.Anything, "old").Return(nil).Once()
	_, err = f.uc.Refresh(context.Background(), "old")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	f.accounts.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestLogoutRevokesAccountSessions(t *testing.T) {
	f := newFixture()
	f.sessions.On("DeleteByAccount", mock.Anything, "acc-1").Return(nil).Once()
	require.NoError(t, f.uc.Logout(context.Background(), "acc-1"))
	f.sessions.AssertExpectations(t)
}
