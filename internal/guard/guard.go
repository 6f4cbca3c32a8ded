// Package guard decides whether a destination renders for the current session
// or where it redirects instead. Post-login navigation and the guest-only
// redirect share one home table keyed by onboarding state.
package guard

import (
	"context"

	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/onboarding"
)

// Action is the outcome of a navigation decision.
type Action int

const (
	Render Action = iota
	Redirect
	// Block holds navigation while the session is still being restored.
	Block
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case Block:
		return "block"
	default:
		return "redirect"
	}
}

// Decision tells the presentation layer what to show. Target is the
// destination to render or redirect to; ReturnTo is set when a protected
// destination bounced an anonymous session to the login page.
type Decision struct {
	Action   Action `json:"action"`
	Target   string `json:"target"`
	ReturnTo string `json:"returnTo,omitempty"`
}

func render(destination string) Decision {
	return Decision{Action: Render, Target: destination}
}

func redirect(target string) Decision {
	return Decision{Action: Redirect, Target: target}
}

func block(destination string) Decision {
	return Decision{Action: Block, Target: destination}
}

func toLogin(returnTo string) Decision {
	return Decision{Action: Redirect, Target: PathLogin, ReturnTo: returnTo}
}

var homes = map[onboarding.State]string{
	onboarding.NeedsRoleDecision: PathExplore,
	onboarding.PlayerUnlinked:    PathLinkPlayer,
	onboarding.PlayerLinked:      PathPlayer,
	onboarding.NonPlayerRole:     PathScout,
}

// Home is the landing destination of a state. Anonymous and unrecognised
// states land on the login page.
func Home(state onboarding.State) string {
	if home, ok := homes[state]; ok {
		return home
	}
	return PathLogin
}

// PostAuthDestination is where a session goes right after login or registration.
func PostAuthDestination(session domain.Session) string {
	return Home(onboarding.Classify(session))
}

// ProtectedFor applies the protected-destination rule to a state.
func ProtectedFor(state onboarding.State, destination string, requiresLink bool) Decision {
	switch state {
	case onboarding.Anonymous:
		return toLogin(destination)
	case onboarding.PlayerUnlinked:
		if requiresLink {
			return redirect(PathLinkPlayer)
		}
		return render(destination)
	case onboarding.NeedsRoleDecision, onboarding.NonPlayerRole, onboarding.PlayerLinked:
		return render(destination)
	default:
		return toLogin(destination)
	}
}

// GuestOnlyFor applies the guest-only rule to a state.
func GuestOnlyFor(state onboarding.State, destination string) Decision {
	if state == onboarding.Anonymous {
		return render(destination)
	}
	return redirect(Home(state))
}

// SessionSource is the read side of the session store.
type SessionSource interface {
	Session() domain.Session
	Ready() <-chan struct{}
}

// Guard evaluates destinations against the live session.
type Guard struct {
	source SessionSource
	logger *zap.Logger
}

// New builds a Guard over source.
func New(source SessionSource, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{source: source, logger: logger}
}

// ProtectedAccess decides a destination that needs a signed-in account. It
// blocks when ctx ends before the session is restored.
func (g *Guard) ProtectedAccess(ctx context.Context, destination string) Decision {
	state, ok := g.state(ctx)
	if !ok {
		return block(destination)
	}
	return ProtectedFor(state, destination, PolicyFor(destination) == PlayerArea)
}

// GuestOnlyAccess decides a destination reserved for anonymous visitors.
func (g *Guard) GuestOnlyAccess(ctx context.Context, destination string) Decision {
	state, ok := g.state(ctx)
	if !ok {
		return block(destination)
	}
	return GuestOnlyFor(state, destination)
}

// Navigate decides any destination using its declared policy.
func (g *Guard) Navigate(ctx context.Context, destination string) Decision {
	switch PolicyFor(destination) {
	case Public:
		return render(destination)
	case GuestOnly:
		return g.GuestOnlyAccess(ctx, destination)
	default:
		return g.ProtectedAccess(ctx, destination)
	}
}

// AfterAuth picks the destination following a successful login. A remembered
// returnTo wins when the new session may open it.
func (g *Guard) AfterAuth(ctx context.Context, returnTo string) string {
	state, ok := g.state(ctx)
	if !ok {
		return PathLogin
	}
	if returnTo != "" && PolicyFor(returnTo) != GuestOnly {
		if d := g.Navigate(ctx, returnTo); d.Action == Render {
			return returnTo
		}
	}
	return Home(state)
}

// state waits for the session to be restored, then classifies it. It reports
// false when ctx ends first.
func (g *Guard) state(ctx context.Context) (onboarding.State, bool) {
	if g == nil || g.source == nil {
		return onboarding.Anonymous, false
	}
	select {
	case <-g.source.Ready():
	case <-ctx.Done():
		g.logger.Warn("session not restored before navigation deadline", zap.Error(ctx.Err()))
		return onboarding.Anonymous, false
	}
	return onboarding.Classify(g.source.Session()), true
}
