package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/anonboard/backend/internal/setup"
	mw "github.com/itchan-dev/anonboard/shared/middleware"
	"github.com/itchan-dev/anonboard/shared/middleware/metrics"
	rl "github.com/itchan-dev/anonboard/shared/middleware/ratelimiter"
)

// New creates the chi router with all routes.
// The returned limiter must be stopped on shutdown.
func New(deps *setup.Dependencies) (*chi.Mux, *rl.KeyedRateLimiter) {
	cfg := deps.Config.Public
	h := deps.Handler

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	r.Use(mw.SecurityHeadersWithCSP(cfg.SecureCookies, mw.APIContentSecurityPolicy))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	// POSTs create content, so they are limited per client ip
	postLimiter := rl.PerMinute(cfg.PostsPerMinute, time.Hour)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
		api.Use(mw.RateLimitMethods(postLimiter, mw.IPIdentity(cfg.TrustProxy), http.MethodPost))

		api.Route("/threads/{board}", func(t chi.Router) {
			t.Get("/", h.ListThreads)
			t.Post("/", h.CreateThread)
			t.Put("/", h.ReportThread)
			t.Delete("/", h.DeleteThread)
		})

		api.Route("/replies/{board}", func(rp chi.Router) {
			rp.Get("/", h.GetReplies)
			rp.Post("/", h.CreateReply)
			rp.Put("/", h.ReportReply)
			rp.Delete("/", h.DeleteReply)
			rp.Get("/{thread_id}/{reply_id}", h.GetReply)
		})

		if cfg.EnableDeleteAll {
			api.Route("/admin", func(admin chi.Router) {
				admin.Use(deps.AuthMiddleware.OperatorOnly())
				admin.Delete("/threads", h.DeleteAllThreads)
			})
		}
	})

	return r, postLimiter
}
