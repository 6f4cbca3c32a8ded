package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/api/transport"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/infrastructure/monitor"
	"github.com/Daniil-Sakharov/hockey-project-sub001/pkg/httpcontext"
)

// StatusSource reports dependency reachability. Refresh probes synchronously.
type StatusSource interface {
	GetStatus() monitor.Status
	Refresh(ctx context.Context) monitor.Status
}

type healthReport struct {
	Timestamp time.Time       `json:"timestamp"`
	Services  map[string]bool `json:"services"`
	LastCheck time.Time       `json:"last_check"`
}

type HealthHandler struct {
	baseHandler
	source StatusSource
}

func NewHealthHandler(source StatusSource, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		source:      source,
	}
}

// @Summary Dependency health; ?refresh=true probes before answering
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	var status monitor.Status
	if ctx.QueryArgs().GetBool("refresh") {
		stdCtx, cancel := h.requestContext(ctx)
		defer cancel()
		status = h.source.Refresh(stdCtx)
	} else {
		status = h.source.GetStatus()
	}

	report := healthReport{
		Timestamp: time.Now().UTC(),
		Services:  status.Checks,
		LastCheck: status.LastCheck,
	}
	if !status.Online() {
		h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", report))
		return
	}
	h.respondSuccess(ctx, http.StatusOK, report)
}
