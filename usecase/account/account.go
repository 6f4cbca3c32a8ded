package account

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/entitlement"
	"github.com/Daniil-Sakharov/hockey-project-sub001/repository"
	"github.com/Daniil-Sakharov/hockey-project-sub001/usecase"
)

type UseCase struct {
	accounts repository.AccountRepository
	players  repository.PlayerRepository
	audit    *usecase.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

func New(accounts repository.AccountRepository, players repository.PlayerRepository, audit *usecase.Recorder, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		accounts: accounts,
		players:  players,
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

func (uc *UseCase) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := uc.accounts.GetByID(ctx, accountID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, domain.ErrNotAuthenticated
	}
	return account, err
}

// UpdateRole changes the role. The linked player is left as is.
func (uc *UseCase) UpdateRole(ctx context.Context, accountID string, role domain.Role) (*domain.Account, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	account, err := uc.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	previous := account.Role
	account.Role = role
	if err := uc.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, account.ID, domain.EventRoleChanged, map[string]string{"from": string(previous), "to": string(role)})
	return account, nil
}

// UpdateSubscription switches tiers using the entitlement table's prices.
func (uc *UseCase) UpdateSubscription(ctx context.Context, accountID string, tier domain.SubscriptionTier) (*domain.Account, error) {
	if !entitlement.ValidTier(tier) {
		return nil, domain.ErrInvalidTier
	}
	account, err := uc.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	previous := account.Subscription.Tier
	account.Subscription = entitlement.Subscribe(tier, uc.now().UTC())
	if err := uc.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, account.ID, domain.EventSubscriptionChanged, map[string]string{"from": string(previous), "to": string(tier)})
	return account, nil
}

// LinkPlayer links a catalog player after checking the supplied identity.
// A wrong name or birth date reads the same as a missing player.
func (uc *UseCase) LinkPlayer(ctx context.Context, accountID string, link domain.PlayerLink) (*domain.Account, error) {
	if link.PlayerID == "" || link.FullName == "" || link.BirthDate == "" {
		return nil, domain.NewError(domain.ErrCodeMissingField, "player id, full name and birth date are required")
	}
	account, err := uc.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	player, err := uc.players.GetByID(ctx, link.PlayerID)
	if err != nil {
		return nil, err
	}
	if !player.MatchesIdentity(link.FullName, link.BirthDate) {
		uc.logger.Info("player identity mismatch", zap.String("account_id", accountID), zap.String("player_id", link.PlayerID))
		return nil, domain.ErrPlayerNotFound
	}

	id := player.ID
	account.LinkedPlayerID = &id
	if err := uc.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, account.ID, domain.EventPlayerLinked, map[string]string{"player_id": id})
	return account, nil
}

// UnlinkPlayer clears the link. Unlinking an unlinked account succeeds.
func (uc *UseCase) UnlinkPlayer(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := uc.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.HasLinkedPlayer() {
		return account, nil
	}

	previous := *account.LinkedPlayerID
	account.LinkedPlayerID = nil
	if err := uc.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, account.ID, domain.EventPlayerUnlinked, map[string]string{"player_id": previous})
	return account, nil
}
