package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/api/transport"
	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/pkg/httpcontext"
	authUC "github.com/Daniil-Sakharov/hockey-project-sub001/usecase/auth"
)

// AuthMetrics counts authentication outcomes.
type AuthMetrics interface {
	AuthOutcome(operation, result string)
}

type AuthHandler struct {
	baseHandler
	uc      *authUC.UseCase
	metrics AuthMetrics
}

func NewAuthHandler(uc *authUC.UseCase, metrics AuthMetrics, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		metrics:     metrics,
	}
}

func (h *AuthHandler) record(operation string, err error) {
	if h.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = string(domain.CodeOf(err))
	}
	h.metrics.AuthOutcome(operation, result)
}

// @Summary Create an account
// @Tags auth
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.CredentialsRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Register(stdCtx, req.Email, req.Password)
	h.record("register", err)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, result)
}

// @Summary Sign in with email and password
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.CredentialsRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Login(stdCtx, req.Email, req.Password)
	h.record("login", err)
	if err != nil {
		h.requestLogger(stdCtx).Debug("login rejected", zap.Error(err))
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Rotate a refresh credential
// @Tags auth
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(ctx *fasthttp.RequestCtx) {
	var req transport.RefreshRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Refresh(stdCtx, req.RefreshCredential)
	h.record("refresh", err)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Revoke refresh credentials of the caller
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	accountID, ok := h.accountID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx, accountID); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}
