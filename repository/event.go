package repository

import (
	"context"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
)

type EventFilter struct {
	AccountID string
	Name      string
	Limit     int
	Offset    int
}

// EventRepository stores the account audit trail.
type EventRepository interface {
	Append(ctx context.Context, event domain.AccountEvent) error
	List(ctx context.Context, filter EventFilter) ([]domain.AccountEvent, error)
}
