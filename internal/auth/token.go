// Package auth issues and verifies the bearer credentials of the directory
// service and hashes account passwords.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
)

// Claims carried by an access credential.
type Claims struct {
	AccountID string      `json:"account_id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issuer mints and parses HS256 access credentials.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer builds an Issuer. ttl defaults to 15 minutes.
func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// TTL returns the credential lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs an access credential for account.
func (i *Issuer) Issue(account *domain.Account) (string, error) {
	if account == nil || account.ID == "" {
		return "", domain.ErrInvalidPayload
	}
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})
	return token.SignedString(i.secret)
}

// Parse verifies credential and returns its claims. Any failure is reported
// as NOT_AUTHENTICATED.
func (i *Issuer) Parse(credential string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(credential, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeNotAuthenticated, domain.ErrNotAuthenticated.Message, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.AccountID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if i.issuer != "" && !claims.VerifyIssuer(i.issuer, true) {
		return nil, domain.ErrNotAuthenticated
	}
	return claims, nil
}
