package session

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/entitlement"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/onboarding"
)

type DirectoryMock struct {
	mock.Mock
}

func (m *DirectoryMock) Register(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *DirectoryMock) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *DirectoryMock) Refresh(ctx context.Context, refreshCredential string) (*domain.AuthResult, error) {
	args := m.Called(ctx, refreshCredential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *DirectoryMock) CurrentAccount(ctx context.Context, credential string) (*domain.Account, error) {
	args := m.Called(ctx, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *DirectoryMock) LinkPlayer(ctx context.Context, credential string, link domain.PlayerLink) (*domain.Account, error) {
	args := m.Called(ctx, credential, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *DirectoryMock) Logout(ctx context.Context, credential string) error {
	return m.Called(ctx, credential).Error(0)
}

type SyncMock struct {
	mock.Mock
}

func (m *SyncMock) Push(ctx context.Context, change Change) error {
	return m.Called(ctx, change).Error(0)
}

var fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func newAccount(id string) *domain.Account {
	return &domain.Account{
		ID:           id,
		Email:        id + "@rink.test",
		Role:         domain.DefaultRole,
		Subscription: domain.FreeSubscription(fixedNow),
		CreatedAt:    fixedNow,
		UpdatedAt:    fixedNow,
	}
}

func authResult(account *domain.Account, token string) *domain.AuthResult {
	return &domain.AuthResult{Credential: token, RefreshCredential: "refresh-" + token, ExpiresIn: 900, Account: account}
}

func newTestStore(t *testing.T, dir *DirectoryMock) (*Store, *MemoryPersister) {
	t.Helper()
	persister := NewMemoryPersister()
	store, err := Open(context.Background(), Options{
		Directory: dir,
		Persister: persister,
		Now:       func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return store, persister
}

func signedIn(t *testing.T, dir *DirectoryMock, account *domain.Account) (*Store, *MemoryPersister) {
	t.Helper()
	store, persister := newTestStore(t, dir)
	dir.On("Login", mock.Anything, account.Email, "secret1").Return(authResult(account, "tok-"+account.ID), nil).Once()
	_, err := store.Login(context.Background(), account.Email, "secret1")
	require.NoError(t, err)
	return store, persister
}

func TestRegisterStartsOnDefaultRoleAndFreeTier(t *testing.T) {
	dir := new(DirectoryMock)
	store, persister := newTestStore(t, dir)
	dir.On("Register", mock.Anything, "new@rink.test", "secret1").
		Return(authResult(newAccount("acc-1"), "tok-1"), nil).Once()

	account, err := store.Register(context.Background(), " new@rink.test ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleFan, account.Role)
	assert.Nil(t, account.LinkedPlayerID)

	session := store.Session()
	assert.True(t, session.IsAuthenticated)
	assert.Equal(t, "tok-1", session.Token())
	assert.Equal(t, onboarding.NeedsRoleDecision, store.State())
	assert.Equal(t, domain.TierFree, store.CurrentTier())

	saved, err := persister.Load()
	require.NoError(t, err)
	assert.True(t, saved.IsAuthenticated)
	dir.AssertExpectations(t)
}

func TestRegisterValidatesLocally(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		code     domain.ErrorCode
	}{
		{name: "empty email", email: "", password: "secret1", code: domain.ErrCodeMissingField},
		{name: "blank email", email: "   ", password: "secret1", code: domain.ErrCodeMissingField},
		{name: "empty password", email: "a@b.co", password: "", code: domain.ErrCodeMissingField},
		{name: "short password", email: "a@b.co", password: "12345", code: domain.ErrCodeWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := new(DirectoryMock)
			store, _ := newTestStore(t, dir)

			_, err := store.Register(context.Background(), tt.email, tt.password)
			require.Error(t, err)
			assert.Equal(t, tt.code, domain.CodeOf(err))
			assert.NotEmpty(t, store.Error())
			assert.False(t, store.Session().IsAuthenticated)
			dir.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	dir := new(DirectoryMock)
	store, _ := newTestStore(t, dir)
	dir.On("Register", mock.Anything, "taken@rink.test", "secret1").Return(nil, domain.ErrDuplicateEmail).Once()

	_, err := store.Register(context.Background(), "taken@rink.test", "secret1")
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	assert.Equal(t, domain.ErrDuplicateEmail.Message, store.Error())
	assert.Equal(t, onboarding.Anonymous, store.State())
}

func TestLoginFailureKeepsPriorSession(t *testing.T) {
	dir := new(DirectoryMock)
	store, _ := signedIn(t, dir, newAccount("acc-1"))
	before := store.Session()

	dir.On("Login", mock.Anything, "other@rink.test", "wrong!").Return(nil, domain.ErrInvalidCredentials).Once()
	_, err := store.Login(context.Background(), "other@rink.test", "wrong!")

	assert.Equal(t, domain.ErrCodeInvalidCredentials, domain.CodeOf(err))
	assert.Equal(t, before, store.Session())
	assert.Equal(t, domain.ErrInvalidCredentials.Message, store.Error())

	store.ClearError()
	assert.Empty(t, store.Error())
}

func TestLoginTransportFailuresMapToTaxonomy(t *testing.T) {
	dir := new(DirectoryMock)
	store, _ := newTestStore(t, dir)

	dir.On("Login", mock.Anything, "a@b.co", "secret1").Return(nil, context.DeadlineExceeded).Once()
	_, err := store.Login(context.Background(), "a@b.co", "secret1")
	assert.Equal(t, domain.ErrCodeNetworkUnavailable, domain.CodeOf(err))

	dir.On("Login", mock.Anything, "a@b.co", "secret1").Return(nil, errors.New("boom")).Once()
	_, err = store.Login(context.Background(), "a@b.co", "secret1")
	assert.Equal(t, domain.ErrCodeServerError, domain.CodeOf(err))
	assert.False(t, store.Session().IsAuthenticated)
}

func TestLoginSuccessClearsError(t *testing.T) {
	dir := new(DirectoryMock)
	store, _ := newTestStore(t, dir)
	_, _ = store.Login(context.Background(), "", "")
	require.NotEmpty(t, store.Error())

	account := newAccount("acc-1")
	dir.On("Login", mock.Anything, account.Email, "secret1").Return(authResult(account, "tok"), nil).Once()
	_, err := store.Login(context.Background(), account.Email, "secret1")
	require.NoError(t, err)
	assert.Empty(t, store.Error())
}

func TestLogoutIsLocalFirstAndIdempotent(t *testing.T) {
	dir := new(DirectoryMock)
	store, persister := signedIn(t, dir, newAccount("acc-1"))
	dir.On("Logout", mock.Anything, "tok-acc-1").Return(domain.ErrNetworkUnavailable).Once()

	store.Logout(context.Background())
	assert.Equal(t, domain.AnonymousSession(), store.Session())
	saved, err := persister.Load()
	require.NoError(t, err)
	assert.False(t, saved.IsAuthenticated)

	saves := persister.Saves()
	store.Logout(context.Background())
	assert.Equal(t, domain.AnonymousSession(), store.Session())
	assert.Equal(t, saves, persister.Saves())
	dir.AssertNumberOfCalls(t, "Logout", 1)
}

func TestStaleLoginAfterLogoutIsDiscarded(t *testing.T) {
	dir := new(DirectoryMock)
	store, _ := newTestStore(t, dir)
	release := make(chan struct{})
	started := make(chan struct{})

	dir.On("Login", mock.Anything, "slow@rink.test", "secret1").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(authResult(newAccount("slow"), "tok-slow"), nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := store.Login(context.Background(), "slow@rink.test", "secret1")
		done <- err
	}()

	<-started
	store.Logout(context.Background())
	close(release)

	err := <-done
	assert.ErrorIs(t, err, domain.ErrSuperseded)
	assert.False(t, store.Session().IsAuthenticated)
	assert.Empty(t, store.Error())
}

func TestUpdateRole(t *testing.T) {
	dir := new(DirectoryMock)
	account := newAccount("acc-1")
	linked := "player-1"
	account.Role = domain.RolePlayer
	account.LinkedPlayerID = &linked
	store, _ := signedIn(t, dir, account)
	require.Equal(t, onboarding.PlayerLinked, store.State())

	require.NoError(t, store.UpdateRole(context.Background(), domain.RoleScout))
	session := store.Session()
	assert.Equal(t, domain.RoleScout, session.Account.Role)
	require.NotNil(t, session.Account.LinkedPlayerID)
	assert.Equal(t, "player-1", *session.Account.LinkedPlayerID)
	assert.Equal(t, onboarding.NonPlayerRole, store.State())

	require.NoError(t, store.UpdateRole(context.Background(), domain.RolePlayer))
	assert.Equal(t, onboarding.PlayerLinked, store.State())

	assert.ErrorIs(t, store.UpdateRole(context.Background(), "goalie"), domain.ErrInvalidRole)
	assert.Equal(t, domain.RolePlayer, store.Session().Account.Role)
}

func TestLocalMutationsAreNoOpsWhenAnonymous(t *testing.T) {
	dir := new(DirectoryMock)
	sync := new(SyncMock)
	store := New(Options{Directory: dir, Sync: sync})

	require.NoError(t, store.UpdateRole(context.Background(), domain.RoleScout))
	require.NoError(t, store.UnlinkPlayer(context.Background()))
	require.NoError(t, store.UpdateSubscription(context.Background(), domain.TierPro))

	assert.Equal(t, domain.AnonymousSession(), store.Session())
	sync.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
}

func TestLocalMutationsAreQueuedForSync(t *testing.T) {
	dir := new(DirectoryMock)
	sync := new(SyncMock)
	account := newAccount("acc-1")
	dir.On("Login", mock.Anything, account.Email, "secret1").Return(authResult(account, "tok"), nil).Once()
	store := New(Options{Directory: dir, Sync: sync, Now: func() time.Time { return fixedNow }})
	_, err := store.Login(context.Background(), account.Email, "secret1")
	require.NoError(t, err)

	sync.On("Push", mock.Anything, Change{Kind: ChangeRole, AccountID: "acc-1", Credential: "tok", Role: domain.RolePlayer}).Return(nil).Once()
	sync.On("Push", mock.Anything, Change{Kind: ChangeSubscription, AccountID: "acc-1", Credential: "tok", Tier: domain.TierUltra}).Return(errors.New("disk full")).Once()
	sync.On("Push", mock.Anything, Change{Kind: ChangeUnlinkPlayer, AccountID: "acc-1", Credential: "tok"}).Return(nil).Once()

	require.NoError(t, store.UpdateRole(context.Background(), domain.RolePlayer))
	require.NoError(t, store.UpdateSubscription(context.Background(), domain.TierUltra))
	require.NoError(t, store.UnlinkPlayer(context.Background()))

	assert.Equal(t, domain.TierUltra, store.CurrentTier())
	sync.AssertExpectations(t)
}

func TestLinkPlayer(t *testing.T) {
	dir := new(DirectoryMock)
	account := newAccount("acc-1")
	account.Role = domain.RolePlayer
	store, _ := signedIn(t, dir, account)
	require.Equal(t, onboarding.PlayerUnlinked, store.State())

	link := domain.PlayerLink{PlayerID: "player-9", FullName: "Nobody", BirthDate: "2010-01-01"}
	dir.On("LinkPlayer", mock.Anything, "tok-acc-1", link).Return(nil, domain.ErrPlayerNotFound).Once()
	ok, err := store.LinkPlayer(context.Background(), "player-9", "Nobody", "2010-01-01")
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
	assert.Equal(t, domain.ErrPlayerNotFound.Message, store.Error())
	assert.Equal(t, onboarding.PlayerUnlinked, store.State())

	linkedAccount := account.Clone()
	id := "player-1"
	linkedAccount.LinkedPlayerID = &id
	good := domain.PlayerLink{PlayerID: "player-1", FullName: "Ivanov Alexander", BirthDate: "2008-03-15"}
	dir.On("LinkPlayer", mock.Anything, "tok-acc-1", good).Return(linkedAccount, nil).Once()

	ok, err = store.LinkPlayer(context.Background(), "player-1", "Ivanov Alexander", "2008-03-15")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, store.Error())
	assert.Equal(t, onboarding.PlayerLinked, store.State())

	require.NoError(t, store.UnlinkPlayer(context.Background()))
	assert.Equal(t, onboarding.PlayerUnlinked, store.State())
}

func TestLinkPlayerRequiresAuthenticationAndFields(t *testing.T) {
	dir := new(DirectoryMock)
	store, _ := newTestStore(t, dir)

	ok, err := store.LinkPlayer(context.Background(), "player-1", "Ivanov Alexander", "2008-03-15")
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.NotEmpty(t, store.Error())

	store, _ = signedIn(t, dir, newAccount("acc-1"))
	ok, err = store.LinkPlayer(context.Background(), "player-1", "", "2008-03-15")
	assert.False(t, ok)
	assert.Equal(t, domain.ErrCodeMissingField, domain.CodeOf(err))
	dir.AssertNotCalled(t, "LinkPlayer", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateSubscriptionChangesEntitlements(t *testing.T) {
	dir := new(DirectoryMock)
	store, _ := signedIn(t, dir, newAccount("acc-1"))
	assert.False(t, store.HasFeature(entitlement.FeatureAdvancedStats))

	require.NoError(t, store.UpdateSubscription(context.Background(), domain.TierPro))
	sub := store.Session().Account.Subscription
	assert.Equal(t, domain.TierPro, sub.Tier)
	assert.Equal(t, entitlement.Price(domain.TierPro), sub.Price)
	require.NotNil(t, sub.EndDate)
	assert.Equal(t, fixedNow.Add(30*24*time.Hour), *sub.EndDate)
	assert.True(t, store.HasFeature(entitlement.FeatureAdvancedStats))
	assert.False(t, store.HasFeature(entitlement.FeatureAIRecommendations))

	require.NoError(t, store.UpdateSubscription(context.Background(), domain.TierFree))
	assert.Nil(t, store.Session().Account.Subscription.EndDate)
	assert.False(t, store.HasFeature(entitlement.FeatureAdvancedStats))

	assert.ErrorIs(t, store.UpdateSubscription(context.Background(), "gold"), domain.ErrInvalidTier)
}

func TestAnonymousHasFreeFeaturesOnly(t *testing.T) {
	store := New(Options{})
	assert.Equal(t, domain.TierFree, store.CurrentTier())
	assert.True(t, store.HasFeature(entitlement.FeatureBasicStats))
	assert.False(t, store.HasFeature(entitlement.FeatureScoutNotes))
}

func TestRestore(t *testing.T) {
	linked := "player-1"
	account := newAccount("acc-1")
	account.Role = domain.RolePlayer
	account.LinkedPlayerID = &linked

	persister := NewMemoryPersister()
	require.NoError(t, persister.Save(domain.NewAuthenticatedSession(account, "tok", "ref")))

	store := New(Options{Persister: persister})
	select {
	case <-store.Ready():
		t.Fatal("store reported ready before restore")
	default:
	}

	require.NoError(t, store.Restore(context.Background()))
	<-store.Ready()
	assert.Equal(t, onboarding.PlayerLinked, store.State())
	assert.Equal(t, "tok", store.Session().Token())
}

func TestRestoreDiscardsInconsistentRecord(t *testing.T) {
	persister := NewMemoryPersister()
	require.NoError(t, persister.Save(domain.Session{IsAuthenticated: true}))

	store, err := Open(context.Background(), Options{Persister: persister})
	require.NoError(t, err)
	assert.Equal(t, domain.AnonymousSession(), store.Session())

	saved, err := persister.Load()
	require.NoError(t, err)
	assert.False(t, saved.IsAuthenticated)
}

type brokenPersister struct{}

func (brokenPersister) Load() (*domain.Session, error) { return nil, errors.New("corrupt") }
func (brokenPersister) Save(domain.Session) error       { return errors.New("read-only") }

func TestRestoreSurvivesUnreadableStorage(t *testing.T) {
	store, err := Open(context.Background(), Options{Persister: brokenPersister{}})
	require.NoError(t, err)
	<-store.Ready()
	assert.Equal(t, onboarding.Anonymous, store.State())
}

func TestRefresh(t *testing.T) {
	dir := new(DirectoryMock)
	account := newAccount("acc-1")
	store, _ := signedIn(t, dir, account)

	dir.On("Refresh", mock.Anything, "refresh-tok-acc-1").Return(authResult(account, "tok-2"), nil).Once()
	require.NoError(t, store.Refresh(context.Background()))
	assert.Equal(t, "tok-2", store.Session().Token())

	dir.On("Refresh", mock.Anything, "refresh-tok-2").Return(nil, domain.ErrNetworkUnavailable).Once()
	assert.ErrorIs(t, store.Refresh(context.Background()), domain.ErrNetworkUnavailable)
	assert.True(t, store.Session().IsAuthenticated)

	dir.On("Refresh", mock.Anything, "refresh-tok-2").Return(nil, domain.ErrNotAuthenticated).Once()
	assert.ErrorIs(t, store.Refresh(context.Background()), domain.ErrNotAuthenticated)
	assert.False(t, store.Session().IsAuthenticated)
	assert.Empty(t, store.Error())

	assert.ErrorIs(t, store.Refresh(context.Background()), domain.ErrNotAuthenticated)
}

func TestReloadAccount(t *testing.T) {
	dir := new(DirectoryMock)
	account := newAccount("acc-1")
	store, _ := signedIn(t, dir, account)

	remote := account.Clone()
	remote.Role = domain.RoleCoach
	dir.On("CurrentAccount", mock.Anything, "tok-acc-1").Return(remote, nil).Once()

	got, err := store.ReloadAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCoach, got.Role)
	assert.Equal(t, onboarding.NonPlayerRole, store.State())
}

func TestSessionInvariantHoldsAcrossRandomSequences(t *testing.T) {
	dir := new(DirectoryMock)
	account := newAccount("acc-1")
	linked := account.Clone()
	id := "player-1"
	linked.LinkedPlayerID = &id

	dir.On("Login", mock.Anything, account.Email, "secret1").Return(authResult(account, "tok"), nil)
	dir.On("Login", mock.Anything, account.Email, "bad!!!").Return(nil, domain.ErrInvalidCredentials)
	dir.On("Register", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrDuplicateEmail)
	dir.On("LinkPlayer", mock.Anything, mock.Anything, mock.Anything).Return(linked, nil)
	dir.On("Logout", mock.Anything, mock.Anything).Return(nil)

	store, persister := newTestStore(t, dir)
	ctx := context.Background()
	roles := []domain.Role{domain.RoleFan, domain.RolePlayer, domain.RoleScout, domain.RoleCoach, domain.RoleParent}
	tiers := entitlement.Tiers()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		switch rng.Intn(8) {
		case 0:
			_, _ = store.Login(ctx, account.Email, "secret1")
		case 1:
			_, _ = store.Login(ctx, account.Email, "bad!!!")
		case 2:
			_, _ = store.Register(ctx, "dup@rink.test", "secret1")
		case 3:
			store.Logout(ctx)
		case 4:
			_ = store.UpdateRole(ctx, roles[rng.Intn(len(roles))])
		case 5:
			_, _ = store.LinkPlayer(ctx, "player-1", "Ivanov Alexander", "2008-03-15")
		case 6:
			_ = store.UnlinkPlayer(ctx)
		case 7:
			_ = store.UpdateSubscription(ctx, tiers[rng.Intn(len(tiers))])
		}

		session := store.Session()
		require.True(t, session.Consistent(), "step %d left an inconsistent session", i)
		saved, err := persister.Load()
		require.NoError(t, err)
		if saved != nil {
			require.True(t, saved.Consistent())
			require.Equal(t, session.IsAuthenticated, saved.IsAuthenticated)
		}
	}
}
