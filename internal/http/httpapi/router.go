package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/middleware"
	"server/internal/obs"
)

// NewRouter wires the API surface expected by the front-end.
func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(app.Logger))
	if len(app.Config.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(app.Config.CORSAllowedOrigins))
	}
	if app.Config.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
	}

	r.Get("/healthz", app.Health)
	r.Method(stdhttp.MethodGet, "/metrics", obs.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/credits", app.Credits)
		r.Post("/purchase-credits", app.PurchaseCredits)
		r.Get("/queue-image-generation", app.QueueImageGeneration)
		r.Get("/job-status", app.JobStatus)
		r.Post("/job-status/cancel", app.JobCancel)
	})

	r.Post("/generate", app.Generate)

	return r
}
