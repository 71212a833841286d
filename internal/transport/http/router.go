package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-dataroom-api/internal/application/access"
	"github.com/go-dataroom-api/internal/application/preview"
	"github.com/go-dataroom-api/internal/application/verification"
	"github.com/go-dataroom-api/internal/application/view"
	"github.com/go-dataroom-api/internal/config"
	"github.com/go-dataroom-api/internal/infrastructure/ratelimit"
	"github.com/go-dataroom-api/internal/transport/http/handler"
	appmiddleware "github.com/go-dataroom-api/internal/transport/http/middleware"
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
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// OTP issuance and both verification paths share one keyed limiter:
	// 10 requests/minute per (operation, client IP).
	limiter := ratelimit.PerMinute(10)

	tokenSvc := verification.NewService(deps.VerificationRepo, deps.Mailer)
	gateSvc := access.NewService(tokenSvc, limiter, deps.Publisher, deps.PasswordKey)
	previewSvc := preview.NewService(deps.JWTProvider)
	recorderSvc := view.NewService(deps.ViewerRepo, deps.ViewRepo, deps.Publisher)

	healthH := handler.NewHealthHandler()
	viewH := handler.NewViewHandler(
		deps.LinkRepo,
		deps.TeamRepo,
		deps.DocumentRepo,
		gateSvc,
		previewSvc,
		recorderSvc,
		deps.Resolver,
	)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		// Public endpoint; the Bearer token is optional and only consulted
		// for preview assertions.
		r.With(appmiddleware.OptionalAuth(deps.JWTProvider)).Post("/views", viewH.Create)
	})

	return r
}
