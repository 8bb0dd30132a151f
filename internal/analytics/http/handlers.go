package analytichttp

import (
	"log/slog"
	"net/http"

	"github.com/glossworks/glossworks/internal/analytics"
	"github.com/glossworks/glossworks/internal/analytics/svg"
	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/rbac"
)

// Handler coordinates HTTP requests for the analytics dashboard.
type Handler struct {
	logger  *slog.Logger
	service *analytics.Service
}

// NewHandler constructs the analytics HTTP handler.
func NewHandler(logger *slog.Logger, service *analytics.Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func timeRangeParam(w http.ResponseWriter, r *http.Request) (analytics.TimeRange, bool) {
	raw := r.URL.Query().Get("time_range")
	if raw == "" {
		return analytics.RangeMonth, true
	}
	tr, err := analytics.ParseTimeRange(raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return "", false
	}
	return tr, true
}

func writeSVG(w http.ResponseWriter, chart string) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(chart))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	summary, err := h.service.GetSummary(r.Context(), userID, orgID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	tr, ok := timeRangeParam(w, r)
	if !ok {
		return
	}
	report, err := h.service.GetReport(r.Context(), userID, orgID, tr)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	tr, ok := timeRangeParam(w, r)
	if !ok {
		return
	}
	report, err := h.service.Snapshot(r.Context(), userID, orgID, tr)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, report)
}

// handleRevenueChart renders revenue over time as an SVG line chart.
func (h *Handler) handleRevenueChart(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	tr, ok := timeRangeParam(w, r)
	if !ok {
		return
	}
	report, err := h.service.GetReport(r.Context(), userID, orgID, tr)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	series := make([]float64, 0, len(report.RevenueData))
	labels := make([]string, 0, len(report.RevenueData))
	for _, point := range report.RevenueData {
		series = append(series, point.Revenue)
		labels = append(labels, point.Date)
	}
	if len(series) == 0 {
		series = []float64{0}
		labels = []string{""}
	}
	chart, err := svg.Line(0, 0, series, labels, svg.LineOpts{
		Title:       "Revenue over time",
		Description: "Daily revenue for the selected window",
		ShowDots:    len(series) <= 31,
	})
	if err != nil {
		h.logger.Error("render revenue chart", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "chart rendering failed")
		return
	}
	writeSVG(w, chart)
}

// handleAcquisitionChart renders new versus returning clients as a
// grouped bar chart.
func (h *Handler) handleAcquisitionChart(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	tr, ok := timeRangeParam(w, r)
	if !ok {
		return
	}
	report, err := h.service.GetReport(r.Context(), userID, orgID, tr)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	seriesA := make([]float64, 0, len(report.ClientAcquisition))
	seriesB := make([]float64, 0, len(report.ClientAcquisition))
	labels := make([]string, 0, len(report.ClientAcquisition))
	for _, point := range report.ClientAcquisition {
		seriesA = append(seriesA, float64(point.NewClients))
		seriesB = append(seriesB, float64(point.ReturningClients))
		labels = append(labels, point.Date)
	}
	if len(labels) == 0 {
		seriesA = []float64{0}
		seriesB = []float64{0}
		labels = []string{""}
	}
	chart, err := svg.Bars(0, 0, seriesA, seriesB, labels, svg.BarOpts{
		Title:        "Client acquisition",
		Description:  "New versus returning clients by day",
		SeriesALabel: "New",
		SeriesBLabel: "Returning",
	})
	if err != nil {
		h.logger.Error("render acquisition chart", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "chart rendering failed")
		return
	}
	writeSVG(w, chart)
}
