package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/config"
	pgInfra "github.com/Daniil-Sakharov/hockey-project-sub001/internal/infrastructure/postgres"
	"github.com/Daniil-Sakharov/hockey-project-sub001/repository"
)

// openPool connects to HOCKEY_TEST_DATABASE_URL and applies the migrations.
func openPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("HOCKEY_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("HOCKEY_TEST_DATABASE_URL not set")
	}

	cfg := &config.Config{
		Database:   config.DatabaseConfig{URL: url, Name: "hockey"},
		Migrations: config.MigrationsConfig{Enabled: true, Path: "../../assets/migrations"},
	}
	require.NoError(t, pgInfra.RunMigrations(cfg, nil))

	pool, err := pgInfra.NewPool(context.Background(), cfg.Database, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestAccountRepository(t *testing.T) {
	pool := openPool(t)
	repo := NewAccountRepository(pool)
	ctx := context.Background()

	start := time.Now().UTC().Truncate(time.Second)
	account := &domain.Account{
		Email:        "  " + uuid.NewString() + "@Example.com ",
		PasswordHash: "hash",
		Role:         domain.RoleFan,
		Subscription: domain.Subscription{Tier: domain.TierFree, StartDate: start},
	}
	require.NoError(t, repo.Create(ctx, account))
	require.NotEmpty(t, account.ID)

	dup := *account
	dup.ID = ""
	assert.ErrorIs(t, repo.Create(ctx, &dup), domain.ErrDuplicateEmail)

	byEmail, err := repo.GetByEmail(ctx, account.Email)
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)
	assert.Nil(t, byEmail.Subscription.EndDate)

	end := start.Add(30 * 24 * time.Hour)
	player := "player-1"
	byEmail.Role = domain.RolePlayer
	byEmail.LinkedPlayerID = &player
	byEmail.Subscription = domain.Subscription{Tier: domain.TierPro, StartDate: start, EndDate: &end, AutoRenew: true, Price: 299}
	require.NoError(t, repo.Update(ctx, byEmail))

	stored, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RolePlayer, stored.Role)
	require.NotNil(t, stored.LinkedPlayerID)
	assert.Equal(t, "player-1", *stored.LinkedPlayerID)
	assert.Equal(t, domain.TierPro, stored.Subscription.Tier)
	require.NotNil(t, stored.Subscription.EndDate)
	assert.True(t, end.Equal(*stored.Subscription.EndDate))

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestPlayerRepositoryReadsSeed(t *testing.T) {
	repo := NewPlayerRepository(openPool(t))
	ctx := context.Background()

	player, err := repo.GetByID(ctx, "player-1")
	require.NoError(t, err)
	assert.Equal(t, "Ivanov Alexander", player.FullName)
	assert.Equal(t, "2008-03-15", player.BirthDate)

	team, err := repo.List(ctx, repository.PlayerFilter{TeamID: "team-2"})
	require.NoError(t, err)
	assert.Len(t, team, 2)

	page, err := repo.List(ctx, repository.PlayerFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	_, err = repo.GetByID(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestEventRepositoryKeepsMetadata(t *testing.T) {
	pool := openPool(t)
	accounts := NewAccountRepository(pool)
	events := NewEventRepository(pool)
	ctx := context.Background()

	account := &domain.Account{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		Role:         domain.RoleFan,
		Subscription: domain.Subscription{Tier: domain.TierFree, StartDate: time.Now().UTC()},
	}
	require.NoError(t, accounts.Create(ctx, account))

	require.NoError(t, events.Append(ctx, domain.AccountEvent{
		AccountID: account.ID,
		Name:      domain.EventRoleChanged,
		Payload:   []byte(`{"role":"scout"}`),
		Metadata:  map[string]string{"user_agent": "hockeyctl/1"},
	}))
	assert.ErrorIs(t, events.Append(ctx, domain.AccountEvent{Name: domain.EventRoleChanged}), domain.ErrInvalidPayload)

	list, err := events.List(ctx, repository.EventFilter{AccountID: account.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.JSONEq(t, `{"role":"scout"}`, string(list[0].Payload))
	assert.Equal(t, "hockeyctl/1", list[0].Metadata["user_agent"])
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, maxPageSize, clampLimit(0))
	assert.Equal(t, maxPageSize, clampLimit(1000))
	assert.Equal(t, 5, clampLimit(5))
	assert.Nil(t, marshalMap(nil))
	assert.Equal(t, map[string]string{"a": "b"}, unmarshalMap(marshalMap(map[string]string{"a": "b"})))
	assert.Nil(t, nullTime(time.Time{}))
	assert.False(t, isUniqueViolation(nil))
}
