package guard

import "strings"

// Destinations known to the client.
const (
	PathRoot       = "/"
	PathPricing    = "/pricing"
	PathLogin      = "/login"
	PathRegister   = "/register"
	PathLinkPlayer = "/link-player"
	PathExplore    = "/explore"
	PathPlayer     = "/player"
	PathScout      = "/scout"
	PathSettings   = "/settings"
)

// Policy is the access rule attached to a destination.
type Policy int

const (
	// Public destinations render for everyone.
	Public Policy = iota
	// GuestOnly destinations render only for anonymous sessions.
	GuestOnly
	// Protected destinations require a signed-in account.
	Protected
	// PlayerArea destinations additionally require a linked player.
	PlayerArea
)

func (p Policy) String() string {
	switch p {
	case Public:
		return "public"
	case GuestOnly:
		return "guest"
	case Protected:
		return "protected"
	case PlayerArea:
		return "player"
	default:
		return "unknown"
	}
}

var routeTable = map[string]Policy{
	PathRoot:       Public,
	PathPricing:    Public,
	PathLogin:      GuestOnly,
	PathRegister:   GuestOnly,
	PathLinkPlayer: Protected,
	PathExplore:    Protected,
	PathScout:      Protected,
	PathSettings:   Protected,
	PathPlayer:     PlayerArea,
}

// PolicyFor resolves the policy of destination. Nested paths inherit the
// policy of their closest declared ancestor; anything undeclared is Protected.
func PolicyFor(destination string) Policy {
	path := normalize(destination)
	for {
		if policy, ok := routeTable[path]; ok {
			return policy
		}
		idx := strings.LastIndex(path, "/")
		if idx <= 0 {
			return Protected
		}
		path = path[:idx]
	}
}

func normalize(destination string) string {
	path := strings.TrimSpace(destination)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return PathRoot
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = PathRoot
		}
	}
	return path
}
