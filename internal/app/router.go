package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	analytichttp "github.com/glossworks/glossworks/internal/analytics/http"
	"github.com/glossworks/glossworks/internal/appointments"
	"github.com/glossworks/glossworks/internal/assessments"
	audithttp "github.com/glossworks/glossworks/internal/audit/http"
	"github.com/glossworks/glossworks/internal/auth"
	"github.com/glossworks/glossworks/internal/bookings"
	"github.com/glossworks/glossworks/internal/catalog"
	"github.com/glossworks/glossworks/internal/clients"
	"github.com/glossworks/glossworks/internal/feedback"
	"github.com/glossworks/glossworks/internal/invoices"
	"github.com/glossworks/glossworks/internal/observability"
	"github.com/glossworks/glossworks/internal/orgs"
	"github.com/glossworks/glossworks/internal/shared"
	"github.com/glossworks/glossworks/internal/tenants"
	"github.com/glossworks/glossworks/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	RateLimiter    *shared.RateLimiter

	AuthHandler         *auth.Handler
	OrgsHandler         *orgs.Handler
	TenantsHandler      *tenants.Handler
	ClientsHandler      *clients.Handler
	CatalogHandler      *catalog.Handler
	InvoicesHandler     *invoices.Handler
	AppointmentsHandler *appointments.Handler
	BookingsHandler     *bookings.Handler
	AssessmentsHandler  *assessments.Handler
	FeedbackHandler     *feedback.Handler
	AnalyticsHandler    *analytichttp.Handler
	AuditHandler        *audithttp.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with Glossworks defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		RateLimiter:    params.RateLimiter,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Organization-scoped API. Every handler registers /{orgID}/... paths
	// and resolves the caller's role itself.
	r.Route("/orgs", func(r chi.Router) {
		params.OrgsHandler.MountRoutes(r)
		if params.TenantsHandler != nil {
			params.TenantsHandler.MountRoutes(r)
		}
		if params.ClientsHandler != nil {
			params.ClientsHandler.MountRoutes(r)
		}
		if params.CatalogHandler != nil {
			params.CatalogHandler.MountRoutes(r)
		}
		if params.InvoicesHandler != nil {
			params.InvoicesHandler.MountRoutes(r)
		}
		if params.AppointmentsHandler != nil {
			params.AppointmentsHandler.MountRoutes(r)
		}
		if params.BookingsHandler != nil {
			params.BookingsHandler.MountRoutes(r)
		}
		if params.AssessmentsHandler != nil {
			params.AssessmentsHandler.MountRoutes(r)
		}
		if params.FeedbackHandler != nil {
			params.FeedbackHandler.MountRoutes(r)
		}
		if params.AnalyticsHandler != nil {
			params.AnalyticsHandler.MountRoutes(r)
		}
		if params.AuditHandler != nil {
			params.AuditHandler.MountRoutes(r)
		}
	})

	// Unauthenticated intake surface reached from the QR code. Exempt from
	// CSRF by path prefix.
	if params.AssessmentsHandler != nil {
		r.Route("/public/assess", params.AssessmentsHandler.MountPublicRoutes)
	}

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
