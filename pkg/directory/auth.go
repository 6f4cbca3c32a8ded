package directory

import (
	"context"

	"github.com/valyala/fasthttp"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshCredential string `json:"refreshCredential"`
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	var out domain.AuthResult
	if err := c.do(ctx, fasthttp.MethodPost, apiPrefix+"/auth/register", "", credentials{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a credential pair.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	var out domain.AuthResult
	if err := c.do(ctx, fasthttp.MethodPost, apiPrefix+"/auth/login", "", credentials{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh rotates the refresh credential.
func (c *Client) Refresh(ctx context.Context, refreshCredential string) (*domain.AuthResult, error) {
	var out domain.AuthResult
	err := c.do(ctx, fasthttp.MethodPost, apiPrefix+"/auth/refresh", "", refreshRequest{RefreshCredential: refreshCredential}, &out)
	if err != nil {
		// A rejected refresh credential is an expired login, not bad input.
		if domain.IsDomainError(err, domain.ErrCodeInvalidCredentials) {
			return nil, domain.WrapError(domain.ErrCodeNotAuthenticated, domain.ErrNotAuthenticated.Message, err)
		}
		return nil, err
	}
	return &out, nil
}

// Logout revokes the refresh sessions of the credential's account.
func (c *Client) Logout(ctx context.Context, credential string) error {
	return c.do(ctx, fasthttp.MethodPost, apiPrefix+"/auth/logout", credential, nil, nil)
}
