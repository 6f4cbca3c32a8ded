package directory

import (
	"context"
	"net/url"
	"strconv"

	"github.com/valyala/fasthttp"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
)

// Player fetches a catalog entry.
func (c *Client) Player(ctx context.Context, id string) (*domain.Player, error) {
	var out domain.Player
	if err := c.do(ctx, fasthttp.MethodGet, apiPrefix+"/players/"+url.PathEscape(id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Players lists catalog entries, optionally filtered by team.
func (c *Client) Players(ctx context.Context, team string, limit, offset int) ([]domain.Player, error) {
	query := url.Values{}
	if team != "" {
		query.Set("team", team)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	path := apiPrefix + "/players"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out []domain.Player
	if err := c.do(ctx, fasthttp.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Entitlements returns the server's feature to tier table.
func (c *Client) Entitlements(ctx context.Context) (map[string]domain.SubscriptionTier, error) {
	var out map[string]domain.SubscriptionTier
	if err := c.do(ctx, fasthttp.MethodGet, apiPrefix+"/entitlements", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
