package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/api/transport"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/entitlement"
	"github.com/Daniil-Sakharov/hockey-project-sub001/pkg/httpcontext"
	"github.com/Daniil-Sakharov/hockey-project-sub001/repository"
	catalogUC "github.com/Daniil-Sakharov/hockey-project-sub001/usecase/catalog"
)

type CatalogHandler struct {
	baseHandler
	uc *catalogUC.UseCase
}

func NewCatalogHandler(uc *catalogUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Player by id
// @Tags players
// @Router /api/v1/players/{id} [get]
func (h *CatalogHandler) GetPlayer(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	player, err := h.uc.GetPlayer(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, player)
}

// @Summary List players
// @Tags players
// @Router /api/v1/players [get]
func (h *CatalogHandler) ListPlayers(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	query := transport.PlayerListQuery{
		Team:   string(args.Peek("team")),
		Limit:  args.GetUintOrZero("limit"),
		Offset: args.GetUintOrZero("offset"),
	}
	if err := validate.Struct(query); err != nil {
		h.respondError(ctx, validationError(err))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	players, err := h.uc.ListPlayers(stdCtx, repository.PlayerFilter{
		TeamID: query.Team,
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondPage(ctx, players, transport.Page{
		Limit:  query.Limit,
		Offset: query.Offset,
		Count:  len(players),
	})
}

// @Summary Feature to tier table
// @Tags entitlements
// @Router /api/v1/entitlements [get]
func (h *CatalogHandler) Entitlements(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, entitlement.Table())
}
