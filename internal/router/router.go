package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/pprofhandler"

	apiHandler "github.com/Daniil-Sakharov/hockey-project-sub001/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Account *apiHandler.AccountHandler
	Catalog *apiHandler.CatalogHandler
	Health  *apiHandler.HealthHandler
	// Metrics is mounted at /metrics when set.
	Metrics fasthttp.RequestHandler
	Pprof   bool
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()
	r.SaveMatchedRoutePath = true

	r.GET("/health", handlers.Health.Check)
	if handlers.Metrics != nil {
		r.GET("/metrics", handlers.Metrics)
	}
	if handlers.Pprof {
		r.GET("/debug/pprof/{profile:*}", pprofhandler.PprofHandler)
	}

	// Auth routes
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Catalog
	r.GET("/api/v1/players", handlers.Catalog.ListPlayers)
	r.GET("/api/v1/players/{id}", handlers.Catalog.GetPlayer)
	r.GET("/api/v1/entitlements", handlers.Catalog.Entitlements)

	// Protected routes
	r.GET("/api/v1/accounts/me", authMiddleware(handlers.Account.Me))
	r.PUT("/api/v1/accounts/me/role", authMiddleware(handlers.Account.UpdateRole))
	r.PUT("/api/v1/accounts/me/subscription", authMiddleware(handlers.Account.UpdateSubscription))
	r.POST("/api/v1/accounts/me/player-link", authMiddleware(handlers.Account.LinkPlayer))
	r.DELETE("/api/v1/accounts/me/player-link", authMiddleware(handlers.Account.UnlinkPlayer))

	return r
}
