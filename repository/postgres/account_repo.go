package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/repository"
)

const accountColumns = `
	id, email, password_hash, name, role, linked_player_id,
	sub_tier, sub_start, sub_end, sub_auto_renew, sub_price,
	created_at, updated_at`

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository instantiates a Postgres-backed account repository.
func NewAccountRepository(pool *pgxpool.Pool) repository.AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, normalizeEmail(email)))
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	if account == nil {
		return domain.ErrInvalidPayload
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.Email = normalizeEmail(account.Email)

	const query = `
	INSERT INTO accounts (id, email, password_hash, name, role, linked_player_id,
		sub_tier, sub_start, sub_end, sub_auto_renew, sub_price, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, NOW()), NOW())
	RETURNING created_at, updated_at
	`

	sub := account.Subscription
	if err := r.pool.QueryRow(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.Name,
		string(account.Role),
		account.LinkedPlayerID,
		string(sub.Tier),
		sub.StartDate,
		sub.EndDate,
		sub.AutoRenew,
		sub.Price,
		nullTime(account.CreatedAt),
	).Scan(&account.CreatedAt, &account.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	if account == nil || account.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE accounts
	SET name = $2,
		role = $3,
		linked_player_id = $4,
		sub_tier = $5,
		sub_start = $6,
		sub_end = $7,
		sub_auto_renew = $8,
		sub_price = $9,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	sub := account.Subscription
	if err := r.pool.QueryRow(ctx, query,
		account.ID,
		account.Name,
		string(account.Role),
		account.LinkedPlayerID,
		string(sub.Tier),
		sub.StartDate,
		sub.EndDate,
		sub.AutoRenew,
		sub.Price,
	).Scan(&account.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAccountNotFound
		}
		return err
	}
	return nil
}

func scanAccount(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Account, error) {
	var (
		account domain.Account
		role    string
		tier    string
		linked  *string
		end     *time.Time
	)

	if err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Name,
		&role,
		&linked,
		&tier,
		&account.Subscription.StartDate,
		&end,
		&account.Subscription.AutoRenew,
		&account.Subscription.Price,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	account.Role = domain.Role(role)
	account.LinkedPlayerID = linked
	account.Subscription.Tier = domain.SubscriptionTier(tier)
	account.Subscription.EndDate = end
	return &account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
