package domain

import (
	"encoding/json"
	"time"
)

// Account lifecycle event names recorded by the directory service.
const (
	EventAccountRegistered   = "account.registered"
	EventAccountLoggedIn     = "account.logged_in"
	EventRoleChanged         = "account.role_changed"
	EventPlayerLinked        = "account.player_linked"
	EventPlayerUnlinked      = "account.player_unlinked"
	EventSubscriptionChanged = "account.subscription_changed"
)

// AccountEvent represents a change applied to an account.
type AccountEvent struct {
	ID        string            `json:"id"`
	AccountID string            `json:"account_id"`
	Name      string            `json:"name"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
