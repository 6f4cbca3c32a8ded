package middleware

import (
	"encoding/json"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/api/transport"
	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/auth"
	"github.com/Daniil-Sakharov/hockey-project-sub001/pkg/httpcontext"
)

// CredentialParser verifies a bearer credential.
type CredentialParser interface {
	Parse(credential string) (*auth.Claims, error)
}

// JWTAuth rejects requests without a valid bearer credential and forwards the
// account ID to handlers via the X-Account-ID header. Any client supplied
// X-Account-ID is discarded.
func JWTAuth(parser CredentialParser, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.Request.Header.Del(httpcontext.AccountIDHeader)

			credential := extractToken(ctx)
			if credential == "" {
				unauthorized(ctx)
				return
			}

			claims, err := parser.Parse(credential)
			if err != nil {
				logger.Debug("bearer credential rejected", zap.Error(err))
				unauthorized(ctx)
				return
			}

			ctx.Request.Header.Set(httpcontext.AccountIDHeader, claims.AccountID)
			next(ctx)
		}
	}
}

func unauthorized(ctx *fasthttp.RequestCtx) {
	body, _ := json.Marshal(transport.NewError(
		string(domain.ErrCodeNotAuthenticated),
		domain.ErrNotAuthenticated.Message,
		nil,
	))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	ctx.SetBody(body)
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
