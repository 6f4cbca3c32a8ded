package session

import (
	"sync"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
)

// MemoryPersister keeps the session in process memory. Useful for tests and
// for short-lived tools that must not touch disk.
type MemoryPersister struct {
	mu      sync.RWMutex
	session *domain.Session
	saves   int
}

// NewMemoryPersister creates an empty MemoryPersister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (p *MemoryPersister) Load() (*domain.Session, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.session == nil {
		return nil, nil
	}
	out := p.session.Clone()
	return &out, nil
}

func (p *MemoryPersister) Save(session domain.Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	stored := session.Clone()
	p.session = &stored
	p.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (p *MemoryPersister) Saves() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.saves
}
