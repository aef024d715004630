/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:        Request logging
  2. Recoverer:     Panic recovery (500 instead of crash)
  3. RequestID:     Unique ID per request for tracing
  4. requestLogger: Request-scoped zerolog child stashed in the context
  5. CORS:          Cross-origin requests for frontend
  6. Authenticate:  JWT bearer verification (everything under /api)

ROLE GATES:
  Writes are mandataire-only; approval is comptable-only; reads are open
  to all three roles. The candidat role never reaches a mutating route.

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Authenticate and RequireRole
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/quitus/campaign-ledger/campaign"
	"github.com/quitus/campaign-ledger/logger"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, jwtSecret string, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	mandataire := RequireRole(campaign.RoleMandataire)
	comptable := RequireRole(campaign.RoleComptable)
	anyRole := RequireRole(campaign.RoleMandataire, campaign.RoleComptable, campaign.RoleCandidat)

	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(jwtSecret))

		// Campaign routes
		r.Route("/campaigns", func(r chi.Router) {
			r.With(anyRole).Get("/", h.ListCampaigns)
			r.With(mandataire).Post("/", h.CreateCampaign)

			r.Route("/{id}", func(r chi.Router) {
				r.With(anyRole).Get("/", h.GetCampaign)
				r.With(anyRole).Get("/totals", h.GetTotals)
				r.With(anyRole).Get("/export", h.ExportCSV)
				r.With(anyRole).Get("/operations", h.ListOperations)
				r.With(mandataire).Post("/operations", h.SubmitOperation)
				r.With(mandataire).Post("/validate", h.ValidateDraft)
			})
		})

		// Operation routes
		r.Route("/operations", func(r chi.Router) {
			r.With(anyRole).Get("/{id}", h.GetOperation)
			r.With(mandataire).Put("/{id}", h.EditOperation)
			r.With(mandataire).Delete("/{id}", h.DeleteOperation)
			r.With(comptable).Post("/{id}/approve", h.ApproveOperation)
			r.With(comptable).Post("/{id}/reject", h.RejectOperation)
		})

		// Reference data
		r.With(anyRole).Get("/catalog/{kind}", h.ListCatalog)

		// Uploads
		r.With(mandataire).Post("/uploads", h.UploadAttachment)
	})

	return r
}

// requestLogger stashes a request-scoped child of the base logger in the
// request context, tagged with the chi request ID. Handlers read it back
// with logger.FromContext.
func requestLogger(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			child := base.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
			next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), child)))
		})
	}
}
