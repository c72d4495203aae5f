package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/tucredito/tu-credito-api-go/internal/infra/observability"
	"github.com/tucredito/tu-credito-api-go/internal/service"
)

var tracer = otel.Tracer("handler")

// Pinger reports backend connectivity for the readiness probe.
// A nil Pinger means the backend has no external dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the application services the router exposes.
type Services struct {
	Banks   *service.BankService
	Clients *service.ClientService
	Credits *service.CreditService
	Auth    *service.AuthService
}

// NewRouter creates the HTTP router with all routes and middleware.
// The three resource groups are JWT-protected; token issuance, the
// schema and the operational endpoints are public.
func NewRouter(svcs Services, db Pinger, metrics *observability.Metrics, logger *zap.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)
	r.Use(observability.ZapLoggerMiddleware(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler(db))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/token", authTokenHandler(svcs.Auth, logger))
		r.Post("/auth/token/refresh", authRefreshHandler(svcs.Auth, logger))

		r.Get("/schema", schemaHandler())
		r.Get("/docs", docsHandler())

		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			r.Route("/banks", func(r chi.Router) {
				r.Get("/", listBanksHandler(svcs.Banks, logger))
				r.Post("/", createBankHandler(svcs.Banks, logger))
				r.Get("/{id}", getBankHandler(svcs.Banks, logger))
				r.Put("/{id}", updateBankHandler(svcs.Banks, logger, false))
				r.Patch("/{id}", updateBankHandler(svcs.Banks, logger, true))
				r.Delete("/{id}", deleteBankHandler(svcs.Banks, logger))
			})

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", listClientsHandler(svcs.Clients, logger))
				r.Post("/", createClientHandler(svcs.Clients, logger))
				r.Get("/{id}", getClientHandler(svcs.Clients, logger))
				r.Put("/{id}", updateClientHandler(svcs.Clients, logger, false))
				r.Patch("/{id}", updateClientHandler(svcs.Clients, logger, true))
				r.Delete("/{id}", deleteClientHandler(svcs.Clients, logger))
			})

			r.Route("/credits", func(r chi.Router) {
				r.Get("/", listCreditsHandler(svcs.Credits, logger))
				r.Post("/", createCreditHandler(svcs.Credits, logger))
				r.Get("/{id}", getCreditHandler(svcs.Credits, logger))
				r.Put("/{id}", updateCreditHandler(svcs.Credits, logger, false))
				r.Patch("/{id}", updateCreditHandler(svcs.Credits, logger, true))
				r.Delete("/{id}", deleteCreditHandler(svcs.Credits, logger))
			})
		})
	})

	return r
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func readyzHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"reason": "database unreachable",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
