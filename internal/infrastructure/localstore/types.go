package localstore

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	KindRole         = "role"
	KindSubscription = "subscription"
	KindUnlinkPlayer = "unlink_player"
)

// Item is a pending change waiting for the account directory to become reachable.
type Item struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Kind      string          `json:"kind"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = 3
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
