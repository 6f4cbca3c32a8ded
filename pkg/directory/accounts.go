package directory

import (
	"context"

	"github.com/valyala/fasthttp"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
)

type roleRequest struct {
	Role domain.Role `json:"role"`
}

type subscriptionRequest struct {
	Tier domain.SubscriptionTier `json:"tier"`
}

// CurrentAccount returns the account owning credential.
func (c *Client) CurrentAccount(ctx context.Context, credential string) (*domain.Account, error) {
	return c.account(ctx, fasthttp.MethodGet, "/accounts/me", credential, nil)
}

// LinkPlayer verifies identity fields against the catalog and links the player.
func (c *Client) LinkPlayer(ctx context.Context, credential string, link domain.PlayerLink) (*domain.Account, error) {
	return c.account(ctx, fasthttp.MethodPost, "/accounts/me/player-link", credential, link)
}

// UnlinkPlayer removes the player link.
func (c *Client) UnlinkPlayer(ctx context.Context, credential string) (*domain.Account, error) {
	return c.account(ctx, fasthttp.MethodDelete, "/accounts/me/player-link", credential, nil)
}

// UpdateRole changes the account role.
func (c *Client) UpdateRole(ctx context.Context, credential string, role domain.Role) (*domain.Account, error) {
	return c.account(ctx, fasthttp.MethodPut, "/accounts/me/role", credential, roleRequest{Role: role})
}

// UpdateSubscription switches the account tier.
func (c *Client) UpdateSubscription(ctx context.Context, credential string, tier domain.SubscriptionTier) (*domain.Account, error) {
	return c.account(ctx, fasthttp.MethodPut, "/accounts/me/subscription", credential, subscriptionRequest{Tier: tier})
}

func (c *Client) account(ctx context.Context, method, path, credential string, body interface{}) (*domain.Account, error) {
	var out domain.Account
	if err := c.do(ctx, method, apiPrefix+path, credential, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
