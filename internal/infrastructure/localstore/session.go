package localstore

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
)

var currentKey = []byte("current")

// Sessions persists the single client session under a fixed key.
type Sessions struct {
	store *Store
}

// Sessions returns the session persister backed by s.
func (s *Store) Sessions() *Sessions {
	return &Sessions{store: s}
}

// Load returns the stored session, nil when none was saved, or ErrCorrupt
// when the stored bytes do not decode.
func (p *Sessions) Load() (*domain.Session, error) {
	if p == nil || p.store == nil || p.store.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	var raw []byte
	err := p.store.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(sessionBucket).Get(currentKey); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || raw == nil {
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &session, nil
}

// Save overwrites the stored session.
func (p *Sessions) Save(session domain.Session) error {
	if p == nil || p.store == nil || p.store.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return p.store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Put(currentKey, payload)
	})
}

// Clear removes the stored session.
func (p *Sessions) Clear() error {
	if p == nil || p.store == nil || p.store.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return p.store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete(currentKey)
	})
}
