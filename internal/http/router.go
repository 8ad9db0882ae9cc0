// Package http assembles the service's HTTP surface.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	assignmenthandler "bmmhub/internal/assignment/handler"
	memberhandler "bmmhub/internal/member/handler"
	reporthandler "bmmhub/internal/report/handler"
	"bmmhub/pkg/platform/middleware/admin"
	"bmmhub/pkg/platform/middleware/requestmeta"
)

// Deps carries everything the router wires together.
type Deps struct {
	Members     *memberhandler.Handler
	Assignments *assignmenthandler.Handler
	Reports     *reporthandler.Handler
	AdminToken  string
	Health      func() error
	Logger      *slog.Logger
}

// New builds the full route tree: member endpoints under /bmm, operator
// endpoints under /admin behind the shared-token middleware, plus health
// and metrics.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestmeta.Inject)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if deps.Health != nil {
			if err := deps.Health(); err != nil {
				deps.Logger.ErrorContext(req.Context(), "health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Mount("/bmm", deps.Members.Routes())

	r.Route("/admin", func(r chi.Router) {
		r.Use(admin.RequireAdminToken(deps.AdminToken, deps.Logger))
		r.Mount("/assignments", deps.Assignments.Routes())
		r.Mount("/reports", deps.Reports.Routes())
		deps.Members.AdminRoutes(r)
	})

	return r
}
