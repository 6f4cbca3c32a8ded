package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/onboarding"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/session"
)

var allStates = []onboarding.State{
	onboarding.Anonymous,
	onboarding.NeedsRoleDecision,
	onboarding.PlayerUnlinked,
	onboarding.PlayerLinked,
	onboarding.NonPlayerRole,
}

type staticSource struct {
	session domain.Session
	ready   chan struct{}
}

func newSource(s domain.Session, ready bool) *staticSource {
	src := &staticSource{session: s, ready: make(chan struct{})}
	if ready {
		close(src.ready)
	}
	return src
}

func (s *staticSource) Session() domain.Session { return s.session }
func (s *staticSource) Ready() <-chan struct{}  { return s.ready }

func sessionWith(role domain.Role, linked string) domain.Session {
	account := &domain.Account{ID: "acc-1", Email: "p@example.com", Role: role, Subscription: domain.FreeSubscription(time.Now())}
	if linked != "" {
		account.LinkedPlayerID = &linked
	}
	return domain.NewAuthenticatedSession(account, "tok", "")
}

func TestPolicyFor(t *testing.T) {
	tests := []struct {
		destination string
		want        Policy
	}{
		{"/", Public},
		{"", Public},
		{"/pricing", Public},
		{"/login", GuestOnly},
		{"/register/", GuestOnly},
		{"/login?next=/player", GuestOnly},
		{"/explore", Protected},
		{"/settings/billing", Protected},
		{"player", PlayerArea},
		{"/player/stats", PlayerArea},
		{"/unknown", Protected},
		{"/pricingx", Protected},
	}

	for _, tt := range tests {
		t.Run(tt.destination, func(t *testing.T) {
			assert.Equal(t, tt.want, PolicyFor(tt.destination))
		})
	}
}

func TestPostAuthDestinationMatchesGuestOnlyRedirect(t *testing.T) {
	sessions := []domain.Session{
		sessionWith(domain.RoleFan, ""),
		sessionWith(domain.RoleFan, "player-1"),
		sessionWith(domain.RolePlayer, ""),
		sessionWith(domain.RolePlayer, "player-1"),
		sessionWith(domain.RoleScout, ""),
		sessionWith(domain.RoleCoach, "player-1"),
		sessionWith(domain.RoleParent, ""),
	}

	for _, s := range sessions {
		state := onboarding.Classify(s)
		require.True(t, state.Authenticated())

		decision := GuestOnlyFor(state, PathLogin)
		assert.Equal(t, Redirect, decision.Action)
		assert.Equal(t, decision.Target, PostAuthDestination(s), "state %s", state)
	}
}

func TestHomeTable(t *testing.T) {
	assert.Equal(t, PathLogin, Home(onboarding.Anonymous))
	assert.Equal(t, PathExplore, Home(onboarding.NeedsRoleDecision))
	assert.Equal(t, PathLinkPlayer, Home(onboarding.PlayerUnlinked))
	assert.Equal(t, PathPlayer, Home(onboarding.PlayerLinked))
	assert.Equal(t, PathScout, Home(onboarding.NonPlayerRole))
	assert.Equal(t, PathLogin, Home(onboarding.State(99)))
}

func TestProtectedNeverRendersForAnonymous(t *testing.T) {
	for _, requiresLink := range []bool{false, true} {
		d := ProtectedFor(onboarding.Anonymous, "/scout", requiresLink)
		assert.Equal(t, Decision{Action: Redirect, Target: PathLogin, ReturnTo: "/scout"}, d)
	}
	d := ProtectedFor(onboarding.State(42), "/player", true)
	assert.Equal(t, PathLogin, d.Target)
}

func TestPlayerAreaRedirectsOnlyUnlinkedPlayers(t *testing.T) {
	for _, state := range allStates {
		d := ProtectedFor(state, PathPlayer, true)
		switch state {
		case onboarding.Anonymous:
			assert.Equal(t, Decision{Action: Redirect, Target: PathLogin, ReturnTo: PathPlayer}, d)
		case onboarding.PlayerUnlinked:
			assert.Equal(t, Decision{Action: Redirect, Target: PathLinkPlayer}, d)
		default:
			assert.Equal(t, Decision{Action: Render, Target: PathPlayer}, d, "state %s", state)
		}
	}
}

func TestSignedInNonPlayersOpenPlayerArea(t *testing.T) {
	ctx := context.Background()
	fan := New(newSource(sessionWith(domain.RoleFan, ""), true), nil)
	assert.Equal(t, Decision{Action: Render, Target: PathPlayer}, fan.ProtectedAccess(ctx, PathPlayer))

	scout := New(newSource(sessionWith(domain.RoleScout, ""), true), nil)
	assert.Equal(t, Decision{Action: Render, Target: PathPlayer}, scout.ProtectedAccess(ctx, PathPlayer))
}

func TestGuardScenarios(t *testing.T) {
	ctx := context.Background()

	fan := New(newSource(sessionWith(domain.RoleFan, ""), true), nil)
	assert.Equal(t, Decision{Action: Redirect, Target: PathExplore}, fan.GuestOnlyAccess(ctx, PathLogin))

	unlinked := New(newSource(sessionWith(domain.RolePlayer, ""), true), nil)
	assert.Equal(t, Decision{Action: Redirect, Target: PathLinkPlayer}, unlinked.ProtectedAccess(ctx, PathPlayer))
	assert.Equal(t, Render, unlinked.ProtectedAccess(ctx, PathLinkPlayer).Action)

	linked := New(newSource(sessionWith(domain.RolePlayer, "player-1"), true), nil)
	assert.Equal(t, Decision{Action: Render, Target: PathPlayer}, linked.Navigate(ctx, PathPlayer))

	anonymous := New(newSource(domain.AnonymousSession(), true), nil)
	assert.Equal(t, Render, anonymous.Navigate(ctx, PathRegister).Action)
	assert.Equal(t, Render, anonymous.Navigate(ctx, PathPricing).Action)
	assert.Equal(t, Decision{Action: Redirect, Target: PathLogin, ReturnTo: "/reports"}, anonymous.Navigate(ctx, "/reports"))
}

func TestInconsistentSessionFallsBackToLogin(t *testing.T) {
	broken := domain.Session{IsAuthenticated: true, Account: &domain.Account{ID: "x", Role: domain.RoleScout}}
	g := New(newSource(broken, true), nil)

	d := g.ProtectedAccess(context.Background(), PathScout)
	assert.Equal(t, PathLogin, d.Target)

	unknownRole := sessionWith("goalie", "")
	g = New(newSource(unknownRole, true), nil)
	assert.Equal(t, PathLogin, g.Navigate(context.Background(), PathSettings).Target)
}

func TestGuardWaitsForRestore(t *testing.T) {
	src := newSource(sessionWith(domain.RolePlayer, "player-1"), false)
	g := New(src, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	d := g.ProtectedAccess(ctx, PathPlayer)
	assert.Equal(t, Decision{Action: Block, Target: PathPlayer}, d)

	result := make(chan Decision, 1)
	go func() { result <- g.ProtectedAccess(context.Background(), PathPlayer) }()
	close(src.ready)
	assert.Equal(t, Render, (<-result).Action)
}

func TestGuestPageBlocksUntilRestored(t *testing.T) {
	src := newSource(sessionWith(domain.RoleScout, ""), false)
	g := New(src, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Equal(t, Decision{Action: Block, Target: PathLogin}, g.GuestOnlyAccess(ctx, PathLogin))
	assert.Equal(t, "block", Block.String())

	close(src.ready)
	assert.Equal(t, Decision{Action: Redirect, Target: PathScout}, g.GuestOnlyAccess(context.Background(), PathLogin))
}

func TestAfterAuth(t *testing.T) {
	ctx := context.Background()
	linked := New(newSource(sessionWith(domain.RolePlayer, "player-1"), true), nil)
	assert.Equal(t, "/settings", linked.AfterAuth(ctx, "/settings"))
	assert.Equal(t, PathPlayer, linked.AfterAuth(ctx, ""))
	assert.Equal(t, PathPlayer, linked.AfterAuth(ctx, PathLogin))

	unlinked := New(newSource(sessionWith(domain.RolePlayer, ""), true), nil)
	assert.Equal(t, PathLinkPlayer, unlinked.AfterAuth(ctx, PathPlayer))
}

type directoryStub struct {
	mock.Mock
}

func (d *directoryStub) Register(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	args := d.Called(ctx, email, password)
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (d *directoryStub) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	args := d.Called(ctx, email, password)
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (d *directoryStub) Refresh(ctx context.Context, refresh string) (*domain.AuthResult, error) {
	args := d.Called(ctx, refresh)
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (d *directoryStub) CurrentAccount(ctx context.Context, credential string) (*domain.Account, error) {
	args := d.Called(ctx, credential)
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (d *directoryStub) LinkPlayer(ctx context.Context, credential string, link domain.PlayerLink) (*domain.Account, error) {
	args := d.Called(ctx, credential, link)
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (d *directoryStub) Logout(ctx context.Context, credential string) error {
	return d.Called(ctx, credential).Error(0)
}

func TestOnboardingJourneyThroughStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	account := &domain.Account{ID: "acc-7", Email: "p@example.com", Role: domain.RoleFan, Subscription: domain.FreeSubscription(now)}

	dir := new(directoryStub)
	dir.On("Register", mock.Anything, "p@example.com", "abcdef").
		Return(&domain.AuthResult{Credential: "tok", Account: account}, nil).Once()

	linked := account.Clone()
	linked.Role = domain.RolePlayer
	id := "player-1"
	linked.LinkedPlayerID = &id
	dir.On("LinkPlayer", mock.Anything, "tok", domain.PlayerLink{PlayerID: "player-1", FullName: "Ivanov Alexander", BirthDate: "2008-03-15"}).
		Return(linked, nil).Once()

	store, err := session.Open(ctx, session.Options{Directory: dir, Persister: session.NewMemoryPersister(), Now: func() time.Time { return now }})
	require.NoError(t, err)
	g := New(store, nil)

	registered, err := store.Register(ctx, "p@example.com", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleFan, registered.Role)
	assert.Equal(t, domain.TierFree, registered.Subscription.Tier)
	assert.Equal(t, onboarding.NeedsRoleDecision, store.State())
	assert.Equal(t, PathExplore, g.GuestOnlyAccess(ctx, PathLogin).Target)
	assert.Equal(t, PathExplore, PostAuthDestination(store.Session()))

	require.NoError(t, store.UpdateRole(ctx, domain.RolePlayer))
	assert.Equal(t, Decision{Action: Redirect, Target: PathLinkPlayer}, g.ProtectedAccess(ctx, PathPlayer))

	ok, err := store.LinkPlayer(ctx, "player-1", "Ivanov Alexander", "2008-03-15")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Render, g.ProtectedAccess(ctx, PathPlayer).Action)

	dir.On("Logout", mock.Anything, "tok").Return(nil).Once()
	store.Logout(ctx)
	assert.Equal(t, PathLogin, g.Navigate(ctx, PathPlayer).Target)
}
