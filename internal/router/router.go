package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vostok-trade/backend/internal/auth"
	"github.com/vostok-trade/backend/internal/catalog"
	"github.com/vostok-trade/backend/internal/middleware"
	"github.com/vostok-trade/backend/internal/pricerequest"
	"github.com/vostok-trade/backend/internal/respond"
)

// Deps are the handlers and collaborators the API is built from.
type Deps struct {
	Auth          *auth.Handler
	Catalog       *catalog.Handler
	PriceRequests *pricerequest.Handler
	Tokens        middleware.TokenVerifier
	Users         middleware.UserLookup
	Origins       *middleware.OriginPolicy
}

// New wires every route onto a chi router.
func New(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(d.Origins))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	requireAuth := middleware.RequireAuth(d.Tokens, d.Users)

	r.Route("/api", func(r chi.Router) {
		// public
		r.Post("/register", d.Auth.Register)
		r.Post("/login", d.Auth.Login)
		r.Get("/products", d.Catalog.List)
		r.Post("/products", d.Catalog.Create)

		// authenticated
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/auth/me", d.Auth.Me)
			r.Post("/request-price", d.PriceRequests.RequestPrice)
			r.Get("/price-requests", d.PriceRequests.History)
			r.With(middleware.RequireAdmin).Post("/upload-price", d.Catalog.ImportPriceList)
		})
	})

	return r
}
