package repository

import (
	"context"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
)

type PlayerFilter struct {
	TeamID string
	Limit  int
	Offset int
}

type PlayerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Player, error)
	List(ctx context.Context, filter PlayerFilter) ([]domain.Player, error)
}
