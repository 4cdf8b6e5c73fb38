package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-passwordless-api/internal/application/logincode"
	"github.com/go-passwordless-api/internal/config"
	"github.com/go-passwordless-api/internal/transport/http/handler"
	appmiddleware "github.com/go-passwordless-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true, // the session cookie must cross origins
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to the code endpoints so a
	// single client cannot flood the mailer or brute-force codes.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := logincode.NewService(logincode.ServiceDeps{
		Codes:    deps.Codes,
		Mailer:   deps.Mailer,
		Tokens:   deps.Tokens,
		CodeTTL:  cfg.CodeTTL,
		LogCodes: !cfg.IsProduction(),
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, deps.Tokens.Expiry(), cfg.IsProduction())
	sessionH := handler.NewSessionHandler()

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/request-code", authH.RequestCode)
		r.With(sensitiveRL.Limit).Post("/auth/verify", authH.Verify)
		r.Post("/auth/logout", authH.Logout)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Session(deps.Tokens))

			r.Get("/session", sessionH.Current)
		})
	})

	return r
}
