package chi

import (
	"encoding/json"
	"file-service/internal/adapters/handlers/http/chi/v1/file"
	"file-service/internal/adapters/handlers/http/chi/v1/tag"
	"file-service/internal/metrics"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options tunes the router
type Options struct {
	Env            string
	RequestTimeout time.Duration
	// MaxBodyBytes caps every request body, 0 disables the cap
	MaxBodyBytes int64
}

// NewRouter builds http.Handler with chi.
// m and gatherer may be nil, then no metrics are recorded or exposed.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer, tagHandler *tag.HandlerV1, fileHandler *file.HandlerV1, opts Options) http.Handler {
	r := chi.NewRouter()

	//handle requestID to facilitate debug (X-Request-ID)
	//It fetches from request if exists, or creates it
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	if m != nil {
		r.Use(MetricsMiddleware(m))
	}
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	if opts.MaxBodyBytes > 0 {
		r.Use(middleware.RequestSize(opts.MaxBodyBytes))
	}

	if !isProd(opts.Env) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User-Id", "X-User-Roles", "X-Organization-Id", "X-Team-Ids", "X-Share-Password"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if tagHandler != nil {
			r.Mount("/tags", tagHandler.Routes())
		}
		if fileHandler != nil {
			r.Mount("/files", fileHandler.Routes())
		}
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func isProd(env string) bool {
	env = strings.TrimSpace(env)
	return strings.EqualFold(env, "prod") || strings.EqualFold(env, "production")
}
