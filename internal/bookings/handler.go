package bookings

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/rbac"
)

// Handler wires HTTP endpoints for bookings.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers booking routes (nested under /orgs/{orgID}).
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{orgID}/bookings", h.list)
	r.Post("/{orgID}/bookings", h.create)
	r.Get("/{orgID}/bookings/{bookingID}", h.get)
	r.Post("/{orgID}/bookings/{bookingID}/cancel", h.cancel)
	r.Patch("/{orgID}/bookings/{bookingID}/status", h.updateStatus)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	list, pagination, err := h.service.List(r.Context(), userID, orgID, page, perPage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Booking{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"bookings": list, "pagination": pagination})
}

type createRequest struct {
	AppointmentID int64  `json:"appointment_id" validate:"required"`
	ServiceID     *int64 `json:"service_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	booking, err := h.service.Book(r.Context(), userID, orgID, req.AppointmentID, req.ServiceID)
	if err != nil {
		h.logger.Warn("create booking", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, booking)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid booking id")
		return
	}
	booking, err := h.service.Get(r.Context(), userID, orgID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, booking)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid booking id")
		return
	}
	booking, err := h.service.Cancel(r.Context(), userID, orgID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, booking)
}

type statusRequest struct {
	Status Status `json:"status" validate:"required"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid booking id")
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	booking, err := h.service.UpdateStatus(r.Context(), userID, orgID, id, req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, booking)
}
