package domain

import (
	"strings"
	"time"
)

// BirthDateLayout is the wire format of player birth dates.
const BirthDateLayout = "2006-01-02"

// Player is a registry entry owned by the catalog.
type Player struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	BirthDate string    `json:"birthDate"`
	TeamID    string    `json:"teamId,omitempty"`
	Position  string    `json:"position,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MatchesIdentity reports whether the supplied identity fields describe p.
// Names compare case-insensitively with collapsed whitespace.
func (p *Player) MatchesIdentity(fullName, birthDate string) bool {
	if p == nil {
		return false
	}
	return normalizeName(p.FullName) == normalizeName(fullName) &&
		strings.TrimSpace(p.BirthDate) == strings.TrimSpace(birthDate)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
