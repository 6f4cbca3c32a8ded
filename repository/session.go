package repository

import (
	"context"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
)

// SessionRepository stores refresh sessions keyed by their opaque ID.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.RefreshSession, error)
	Save(ctx context.Context, session *domain.RefreshSession) error
	Delete(ctx context.Context, id string) error
	DeleteByAccount(ctx context.Context, accountID string) error
}
