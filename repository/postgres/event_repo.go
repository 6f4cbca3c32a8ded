package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/repository"
)

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a Postgres-backed audit trail.
func NewEventRepository(pool *pgxpool.Pool) repository.EventRepository {
	return &eventRepository{pool: pool}
}

func (r *eventRepository) Append(ctx context.Context, event domain.AccountEvent) error {
	if event.AccountID == "" || event.Name == "" {
		return domain.ErrInvalidPayload
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO account_events (id, account_id, name, payload, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
	`

	payload := []byte(event.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.AccountID,
		event.Name,
		payload,
		marshalMap(event.Metadata),
		nullTime(event.CreatedAt),
	)
	return err
}

func (r *eventRepository) List(ctx context.Context, filter repository.EventFilter) ([]domain.AccountEvent, error) {
	const query = `
	SELECT id, account_id, name, payload, metadata, created_at
	FROM account_events
	WHERE ($1 = '' OR account_id = $1)
	  AND ($2 = '' OR name = $2)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.AccountID, filter.Name, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.AccountEvent
	for rows.Next() {
		var (
			event    domain.AccountEvent
			payload  []byte
			metadata []byte
		)
		if err := rows.Scan(&event.ID, &event.AccountID, &event.Name, &payload, &metadata, &event.CreatedAt); err != nil {
			return nil, err
		}
		event.Payload = append(json.RawMessage(nil), payload...)
		event.Metadata = unmarshalMap(metadata)
		events = append(events, event)
	}
	return events, rows.Err()
}
