package session

import (
	"context"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
)

// Directory is the account directory the store authenticates against.
type Directory interface {
	Register(ctx context.Context, email, password string) (*domain.AuthResult, error)
	Login(ctx context.Context, email, password string) (*domain.AuthResult, error)
	Refresh(ctx context.Context, refreshCredential string) (*domain.AuthResult, error)
	CurrentAccount(ctx context.Context, credential string) (*domain.Account, error)
	LinkPlayer(ctx context.Context, credential string, link domain.PlayerLink) (*domain.Account, error)
	Logout(ctx context.Context, credential string) error
}

// Persister keeps the session across process restarts. Load returns nil when
// nothing has been stored yet.
type Persister interface {
	Load() (*domain.Session, error)
	Save(session domain.Session) error
}

// ChangeKind names a locally applied change that the directory should learn about.
type ChangeKind string

const (
	ChangeRole         ChangeKind = "role"
	ChangeSubscription ChangeKind = "subscription"
	ChangeUnlinkPlayer ChangeKind = "unlink_player"
)

// Change is a local-first mutation awaiting delivery to the directory.
type Change struct {
	Kind       ChangeKind              `json:"kind"`
	AccountID  string                  `json:"accountId"`
	Credential string                  `json:"credential"`
	Role       domain.Role             `json:"role,omitempty"`
	Tier       domain.SubscriptionTier `json:"tier,omitempty"`
}

// SyncBuffer delivers local-first changes, buffering them when the directory
// cannot be reached.
type SyncBuffer interface {
	Push(ctx context.Context, change Change) error
}
