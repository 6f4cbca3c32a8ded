package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/repository"
)

type playerRepository struct {
	pool *pgxpool.Pool
}

// NewPlayerRepository returns a Postgres-backed implementation of PlayerRepository.
func NewPlayerRepository(pool *pgxpool.Pool) repository.PlayerRepository {
	return &playerRepository{pool: pool}
}

func (r *playerRepository) GetByID(ctx context.Context, id string) (*domain.Player, error) {
	const query = `
	SELECT id, full_name, birth_date, team_id, position, created_at
	FROM players
	WHERE id = $1
	`
	return scanPlayer(r.pool.QueryRow(ctx, query, id))
}

func (r *playerRepository) List(ctx context.Context, filter repository.PlayerFilter) ([]domain.Player, error) {
	const query = `
	SELECT id, full_name, birth_date, team_id, position, created_at
	FROM players
	WHERE ($1 = '' OR team_id = $1)
	ORDER BY full_name ASC
	LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, filter.TeamID, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *player)
	}
	return players, rows.Err()
}

func scanPlayer(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Player, error) {
	var (
		player domain.Player
		born   time.Time
	)

	if err := row.Scan(
		&player.ID,
		&player.FullName,
		&born,
		&player.TeamID,
		&player.Position,
		&player.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, err
	}

	player.BirthDate = born.Format(domain.BirthDateLayout)
	return &player, nil
}
