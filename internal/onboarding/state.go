// Package onboarding derives where an account stands in the onboarding
// lifecycle. Route guards and post-login navigation both read it from here.
package onboarding

import "github.com/Daniil-Sakharov/hockey-project-sub001/domain"

// State is the onboarding lifecycle position of a session.
type State int

const (
	Anonymous State = iota
	NeedsRoleDecision
	PlayerUnlinked
	PlayerLinked
	NonPlayerRole
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case NeedsRoleDecision:
		return "needs_role_decision"
	case PlayerUnlinked:
		return "player_unlinked"
	case PlayerLinked:
		return "player_linked"
	case NonPlayerRole:
		return "non_player_role"
	default:
		return "unknown"
	}
}

// Authenticated reports whether s implies a signed-in account.
func (s State) Authenticated() bool {
	return s != Anonymous
}

// Classify maps a session to exactly one State. Sessions whose authentication
// fields disagree, or whose role is not declared, classify as Anonymous.
func Classify(session domain.Session) State {
	if !session.IsAuthenticated || !session.Consistent() {
		return Anonymous
	}

	account := session.Account
	switch account.Role {
	case domain.RoleFan:
		return NeedsRoleDecision
	case domain.RolePlayer:
		if account.HasLinkedPlayer() {
			return PlayerLinked
		}
		return PlayerUnlinked
	case domain.RoleScout, domain.RoleCoach, domain.RoleParent:
		return NonPlayerRole
	default:
		return Anonymous
	}
}
