package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	captchaHandler "github.com/springlegal/website/backend/internal/handler/captcha"
	contactHandler "github.com/springlegal/website/backend/internal/handler/contact"
	"github.com/springlegal/website/backend/internal/handler/pages"
	"github.com/springlegal/website/backend/internal/handler/status"
	middlewarePkg "github.com/springlegal/website/backend/internal/middleware"
	captchaService "github.com/springlegal/website/backend/internal/service/captcha"
	contactService "github.com/springlegal/website/backend/internal/service/contact"
	"github.com/springlegal/website/backend/internal/session"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Contact  *contactService.Service
	Issuer   *captchaService.Issuer
	Sessions *session.Manager
	Pages    *pages.Server

	SiteName       string
	APIVersion     string
	AllowedOrigins []string
	Production     bool
	// TrustProxy lets X-Forwarded-For and X-Real-IP replace the socket address.
	TrustProxy bool

	// Limiter enables per-IP rate limiting when non-nil.
	Limiter *middlewarePkg.LimiterStore
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if deps.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middlewarePkg.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(middlewarePkg.SecurityHeaders(deps.Production))
	r.Use(middlewarePkg.CORS(deps.AllowedOrigins))
	if deps.Limiter != nil {
		r.Use(middlewarePkg.RateLimit(deps.Limiter))
	}

	statusHandler := status.New(deps.SiteName, deps.APIVersion)
	captchaH := captchaHandler.New(deps.Issuer, deps.Sessions)
	contactH := contactHandler.New(deps.Contact, deps.Sessions)

	r.Route("/api", func(api chi.Router) {
		statusHandler.RegisterRoutes(api)

		api.Route("/v1", func(v1 chi.Router) {
			captchaH.RegisterRoutes(v1)
			contactH.RegisterRoutes(v1)
		})
	})

	if deps.Pages != nil {
		deps.Pages.RegisterRoutes(r)
	} else {
		r.NotFound(pages.NotFound)
		r.MethodNotAllowed(pages.NotFound)
	}

	return r
}
