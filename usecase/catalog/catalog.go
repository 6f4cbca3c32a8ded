package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/repository"
)

type UseCase struct {
	players repository.PlayerRepository
	logger  *zap.Logger
}

func New(players repository.PlayerRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		players: players,
		logger:  logger,
	}
}

func (uc *UseCase) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	return uc.players.GetByID(ctx, id)
}

func (uc *UseCase) ListPlayers(ctx context.Context, filter repository.PlayerFilter) ([]domain.Player, error) {
	players, err := uc.players.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if players == nil {
		players = []domain.Player{}
	}
	return players, nil
}
