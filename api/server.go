/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, logged by handlers
  2. RealIP:     Client address for rate limiting
  3. Logger:     Structured request log (zap)
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for the frontend
  6. httprate:   Per-IP limit on POST endpoints only

ROUTE GROUPS:
  /healthz              Liveness
  /metrics              Prometheus
  /api/streams          Rule table
  /api/validate         Validation only
  /api/assessments      Assessment
  /api/courses/*        Catalogue and course assessments
  /api/postcodes/*      Authority lookup
  /api/scenarios/*      Demo learners

SECURITY NOTE:
  No authentication middleware. All endpoints are public and nothing
  submitted is stored.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// RouterConfig holds the HTTP settings that come from configuration.
type RouterConfig struct {
	AllowedOrigins  []string
	RateLimitPerMin int
}

// DefaultRouterConfig allows local frontends and 120 POSTs per minute per IP.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		AllowedOrigins:  []string{"http://localhost:3000", "http://localhost:8080"},
		RateLimitPerMin: 120,
	}
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	limit := httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/streams", h.ListStreams)
		r.With(limit).Post("/validate", h.Validate)
		r.With(limit).Post("/assessments", h.CreateAssessment)

		// Course routes
		r.Route("/courses", func(r chi.Router) {
			r.Get("/", h.SearchCourses)
			r.Get("/{lar}", h.GetCourse)
			r.With(limit).Post("/{lar}/assessments", h.AssessForCourse)
		})

		r.Get("/postcodes/{postcode}", h.LookupPostcode)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.With(limit).Post("/{id}/assess", h.AssessScenario)
		})
	})

	return r
}

// requestLogger logs one line per request with the chi request id.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
