package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"match-service/internal/config"
	"match-service/internal/middleware"
	recHnd "match-service/internal/reconcile/handler"
	"match-service/internal/store"
	"match-service/server/http/handlers"
)

// NewRouter wires the API; rl may be nil to disable rate limiting.
func NewRouter(cfg config.Config, logger zerolog.Logger, st *store.Store, rl *middleware.IPRateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	// health-check
	r.Get("/health", handlers.Health)

	r.Group(func(r chi.Router) {
		// разбор загрузок и сверка тяжёлые, ограничиваем только их
		if rl != nil {
			r.Use(middleware.RateLimit(rl, logger))
		}
		r.Post("/sheets", recHnd.Sheets())
		r.Post("/match", recHnd.Match(cfg, st))
	})

	r.Get("/reports/{id}", recHnd.GetReport(st))
	r.Get("/reports/{id}/download", recHnd.DownloadReport(st))
	r.Delete("/reports/{id}", recHnd.DeleteReport(st))

	return r
}
