package middleware

import (
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/pkg/metrics"
)

// Instrument records request metrics labelled with the matched route pattern
// and logs every request at debug level.
func Instrument(reg *metrics.Registry, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			done := reg.InFlight()
			defer done()

			next(ctx)

			elapsed := time.Since(start)
			path, _ := ctx.UserValue(router.MatchedRoutePathParam).(string)
			if path == "" {
				path = "unmatched"
			}
			status := ctx.Response.StatusCode()
			reg.ObserveRequest(string(ctx.Method()), path, status, elapsed)
			logger.Debug("request served",
				zap.ByteString("method", ctx.Method()),
				zap.String("route", path),
				zap.Int("status", status),
				zap.Duration("elapsed", elapsed),
				zap.ByteString("request_id", ctx.Response.Header.Peek("X-Request-ID")),
			)
		}
	}
}
