package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/technosupport/live-urlgen/internal/middleware"
)

// RouterDeps wires the optional guards; nil Auth or RateLimit disables them.
type RouterDeps struct {
	URLs      *URLHandler
	Auth      *middleware.JWTAuth
	RateLimit *middleware.RateLimitMiddleware
	// TrustProxyHeaders rewrites RemoteAddr from X-Forwarded-For / X-Real-IP.
	// Off, clients are identified by the socket peer.
	TrustProxyHeaders bool
}

func NewRouter(d RouterDeps) http.Handler {
	form := NewFormHandler(d.URLs)

	r := chi.NewRouter()
	if d.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", d.URLs.Metrics.Handler())

	r.Get("/", form.Show)

	r.Group(func(r chi.Router) {
		if d.RateLimit != nil {
			r.Use(d.RateLimit.PerIP)
		}
		if d.Auth != nil {
			r.Use(d.Auth.Middleware)
		}
		r.Post("/", form.Submit)
		r.Post("/generate", d.URLs.Generate)
		r.Post("/validate", d.URLs.Validate)
	})

	return r
}
