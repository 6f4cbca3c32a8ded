package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/api/transport"
	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/pkg/httpcontext"
	accountUC "github.com/Daniil-Sakharov/hockey-project-sub001/usecase/account"
)

type AccountHandler struct {
	baseHandler
	uc *accountUC.UseCase
}

func NewAccountHandler(uc *accountUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Current account
// @Tags accounts
// @Router /api/v1/accounts/me [get]
func (h *AccountHandler) Me(ctx *fasthttp.RequestCtx) {
	accountID, ok := h.accountID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	account, err := h.uc.Get(stdCtx, accountID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, account)
}

// @Summary Change role
// @Tags accounts
// @Router /api/v1/accounts/me/role [put]
func (h *AccountHandler) UpdateRole(ctx *fasthttp.RequestCtx) {
	accountID, ok := h.accountID(ctx)
	if !ok {
		return
	}
	var req transport.RoleRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	account, err := h.uc.UpdateRole(stdCtx, accountID, domain.Role(req.Role))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, account)
}

// @Summary Change subscription tier
// @Tags accounts
// @Router /api/v1/accounts/me/subscription [put]
func (h *AccountHandler) UpdateSubscription(ctx *fasthttp.RequestCtx) {
	accountID, ok := h.accountID(ctx)
	if !ok {
		return
	}
	var req transport.SubscriptionRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	account, err := h.uc.UpdateSubscription(stdCtx, accountID, domain.SubscriptionTier(req.Tier))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, account)
}

// @Summary Link a player profile
// @Tags accounts
// @Router /api/v1/accounts/me/player-link [post]
func (h *AccountHandler) LinkPlayer(ctx *fasthttp.RequestCtx) {
	accountID, ok := h.accountID(ctx)
	if !ok {
		return
	}
	var req transport.PlayerLinkRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	account, err := h.uc.LinkPlayer(stdCtx, accountID, domain.PlayerLink{
		PlayerID:  req.PlayerID,
		FullName:  req.FullName,
		BirthDate: req.BirthDate,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, account)
}

// @Summary Remove the player link
// @Tags accounts
// @Router /api/v1/accounts/me/player-link [delete]
func (h *AccountHandler) UnlinkPlayer(ctx *fasthttp.RequestCtx) {
	accountID, ok := h.accountID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	account, err := h.uc.UnlinkPlayer(stdCtx, accountID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, account)
}
