package appointments

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/rbac"
)

// Handler wires HTTP endpoints for appointments.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers appointment routes (nested under /orgs/{orgID}).
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{orgID}/appointments", h.list)
	r.Post("/{orgID}/appointments", h.schedule)
	r.Post("/{orgID}/appointments/slots", h.createSlots)
	r.Get("/{orgID}/appointments/{appointmentID}", h.get)
	r.Patch("/{orgID}/appointments/{appointmentID}", h.update)
	r.Post("/{orgID}/appointments/{appointmentID}/cancel", h.cancel)
	r.Post("/{orgID}/appointments/{appointmentID}/complete", h.complete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	var from, to *time.Time
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid from timestamp")
			return
		}
		from = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid to timestamp")
			return
		}
		to = &t
	}
	list, pagination, err := h.service.List(r.Context(), userID, orgID, from, to, page, perPage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Appointment{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"appointments": list, "pagination": pagination})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "appointmentID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid appointment id")
		return
	}
	appt, err := h.service.Get(r.Context(), userID, orgID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, appt)
}

type createSlotsRequest struct {
	Slots []SlotInput `json:"slots" validate:"required,min=1,dive"`
}

func (h *Handler) createSlots(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	var req createSlotsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	created, err := h.service.CreateSlots(r.Context(), userID, orgID, req.Slots)
	if err != nil {
		h.logger.Warn("create slots", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"slots": created})
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	var input ScheduleInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	appt, err := h.service.Schedule(r.Context(), userID, orgID, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, appt)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "appointmentID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid appointment id")
		return
	}
	var input UpdateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	appt, err := h.service.Update(r.Context(), userID, orgID, id, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, appt)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "appointmentID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid appointment id")
		return
	}
	appt, err := h.service.Cancel(r.Context(), userID, orgID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, appt)
}

type completeRequest struct {
	Amount float64 `json:"amount" validate:"gte=0"`
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "appointmentID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid appointment id")
		return
	}
	var req completeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	appt, err := h.service.Complete(r.Context(), userID, orgID, id, req.Amount)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, appt)
}
