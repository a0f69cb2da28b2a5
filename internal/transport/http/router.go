package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-otp-auth/internal/application/auth"
	"github.com/go-otp-auth/internal/application/session"
	"github.com/go-otp-auth/internal/config"
	"github.com/go-otp-auth/internal/transport/http/handler"
	appmiddleware "github.com/go-otp-auth/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds the services and verifier the router exposes.
type Deps struct {
	AuthService    auth.Service
	SessionService session.Service
	Verifier       appmiddleware.Verifier
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxy {
		// Only safe when a proxy overwrites these headers.
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.GlobalRatePerMinute > 0 {
		r.Use(appmiddleware.PerMinute(cfg.GlobalRatePerMinute).Limit)
	}

	// 5 requests/second, burst of 10, on the endpoints that mail or check codes.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(deps.AuthService, deps.SessionService)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.With(sensitiveRL.Limit).Post("/auth/send-otp", authH.SendOTP)
		r.With(sensitiveRL.Limit).Post("/auth/verify-otp", authH.VerifyOTP)

		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.Verifier))
			r.Get("/auth/me", authH.Me)
		})
	})

	return r
}
