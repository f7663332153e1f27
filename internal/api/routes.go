package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// requestTimeout bounds every /api request; handlers observe it through
// the request context.
const requestTimeout = 60 * time.Second

// SetupRoutes configures all routes.
func SetupRoutes(h *Handlers, health *HealthChecker, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Server-Identity", "customer-analytics")
			next.ServeHTTP(w, req)
		})
	})

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health checks
	if health != nil {
		r.Get("/health", health.HandleHealth)
		r.Get("/health/live", health.HandleLiveness)
		r.Get("/health/ready", health.HandleReadiness)
		r.Get("/health/db", health.HandleDBStats)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Get("/customers", h.ListCustomers)
		r.Get("/customers/insights", h.CustomerInsights)
		r.Get("/products/usage", h.ProductUsage)
		r.Get("/revenue/trends", h.RevenueTrends)

		r.Route("/customer/{customer_id}", func(r chi.Router) {
			r.Get("/personal_info", h.PersonalInfo)
			r.Get("/services_used", h.ServicesUsed)
			r.Get("/transactions", h.TransactionHistory)
			r.Get("/segmentation", h.Segmentation)
		})

		r.Post("/reports/trends", h.ExportTrends)
		r.Get("/reports/trends/{report_id}", h.GetTrendReport)
	})

	return r
}
