package analytichttp

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/glossworks/glossworks/internal/shared"
)

// MountRoutes registers analytics endpoints (nested under /orgs/{orgID}).
// The chart renderers get a tighter rate limit since they recompute or
// refetch the whole report per request.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/{orgID}/analytics/summary", h.handleSummary)
	r.Get("/{orgID}/analytics/report", h.handleReport)
	r.Post("/{orgID}/analytics/report/snapshot", h.handleSnapshot)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/{orgID}/analytics/charts/revenue.svg", h.handleRevenueChart)
		gr.Get("/{orgID}/analytics/charts/acquisition.svg", h.handleAcquisitionChart)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if user := strings.TrimSpace(sess.User()); user != "" {
			return "user:" + user, nil
		}
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
