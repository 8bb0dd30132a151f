package assessments

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/glossworks/glossworks/internal/ai"
	"github.com/glossworks/glossworks/internal/catalog"
	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/rbac"
	"github.com/glossworks/glossworks/internal/uploads"
	"github.com/glossworks/glossworks/jobs"
)

const maxMediaUpload = 32 << 20

// Handler wires HTTP endpoints for assessments. Intake routes are
// public; moderation routes sit behind the session.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	media     *uploads.Service
	jobs      *jobs.Client
	validator *validator.Validate
}

// NewHandler constructs a Handler. jobsClient may be nil; intake then
// skips the confirmation email.
func NewHandler(logger *slog.Logger, service *Service, media *uploads.Service, jobsClient *jobs.Client) *Handler {
	return &Handler{logger: logger, service: service, media: media, jobs: jobsClient, validator: validator.New()}
}

// MountPublicRoutes registers the anonymous intake surface
// (mounted under /public/assess).
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/{orgID}/services", h.intakeServices)
	r.Post("/{orgID}/questions", h.intakeQuestions)
	r.Post("/{orgID}", h.submit)
	r.Post("/{orgID}/{assessmentID}/media", h.intakeMedia)
}

// MountRoutes registers the staff moderation surface
// (nested under /orgs/{orgID}).
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{orgID}/assessments", h.list)
	r.Get("/{orgID}/assessments/{assessmentID}", h.get)
	r.Post("/{orgID}/assessments/{assessmentID}/approve", h.approve)
	r.Post("/{orgID}/assessments/{assessmentID}/reject", h.reject)
	r.Post("/{orgID}/assessments/{assessmentID}/insight", h.insight)
	r.Patch("/{orgID}/assessments/{assessmentID}/hotspots", h.updateHotspots)
	r.Post("/{orgID}/assessments/{assessmentID}/media", h.uploadMedia)
	r.Get("/{orgID}/assessments/{assessmentID}/media", h.listMedia)
	r.Get("/{orgID}/assessments/{assessmentID}/media/{mediaID}/link", h.mediaLink)
	r.Delete("/{orgID}/assessments/{assessmentID}/media/{mediaID}", h.deleteMedia)
}

func orgParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	orgID, err := strconv.ParseInt(chi.URLParam(r, "orgID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid organization id")
		return 0, false
	}
	return orgID, true
}

func assessmentParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "assessmentID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid assessment id")
		return 0, false
	}
	return id, true
}

func (h *Handler) intakeServices(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgParam(w, r)
	if !ok {
		return
	}
	services, err := h.service.IntakeServices(r.Context(), orgID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if services == nil {
		services = []catalog.Service{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"services": services})
}

func (h *Handler) intakeQuestions(w http.ResponseWriter, r *http.Request) {
	if _, ok := orgParam(w, r); !ok {
		return
	}
	var vehicle ai.VehicleInfo
	if err := httpx.DecodeJSON(r, &vehicle); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	questions, err := h.service.IntakeQuestions(r.Context(), vehicle)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgParam(w, r)
	if !ok {
		return
	}
	var input SubmitInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, err := h.service.Submit(r.Context(), orgID, input)
	if err != nil {
		h.logger.Warn("assessment submit", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if h.jobs != nil {
		if _, err := h.jobs.EnqueueSendEmail(r.Context(), jobs.SendEmailPayload{
			To:      result.Assessment.ClientEmail,
			Subject: "We received your detailing assessment",
			Body:    "Thanks for the submission. Our team will review it and get back to you shortly.",
		}); err != nil {
			h.logger.Warn("enqueue intake email", slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	var status *Status
	if raw := q.Get("status"); raw != "" {
		s := Status(raw)
		status = &s
	}
	list, pagination, err := h.service.List(r.Context(), userID, orgID, status, page, perPage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Assessment{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assessments": list, "pagination": pagination})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	id, ok := assessmentParam(w, r)
	if !ok {
		return
	}
	assessment, err := h.service.Get(r.Context(), userID, orgID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, assessment)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, StatusApproved)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, StatusRejected)
}

func (h *Handler) moderate(w http.ResponseWriter, r *http.Request, status Status) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	id, ok := assessmentParam(w, r)
	if !ok {
		return
	}
	assessment, err := h.service.SetStatus(r.Context(), userID, orgID, id, status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, assessment)
}

func (h *Handler) insight(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	id, ok := assessmentParam(w, r)
	if !ok {
		return
	}
	assessment, err := h.service.GenerateInsight(r.Context(), userID, orgID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, assessment)
}

type hotspotsRequest struct {
	Hotspots []Hotspot `json:"hotspots" validate:"required,min=1,dive"`
}

func (h *Handler) updateHotspots(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	id, ok := assessmentParam(w, r)
	if !ok {
		return
	}
	var req hotspotsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	assessment, err := h.service.UpdateHotspots(r.Context(), userID, orgID, id, req.Hotspots)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, assessment)
}

func (h *Handler) uploadMedia(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	id, ok := assessmentParam(w, r)
	if !ok {
		return
	}
	// Upload rides the staff gate via Get.
	if _, err := h.service.Get(r.Context(), userID, orgID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.storeMedia(w, r, orgID, id)
}

// intakeMedia lets the public submitter attach photos and videos after
// the submit call returned the assessment id. The pending-status gate
// lives in the service.
func (h *Handler) intakeMedia(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgParam(w, r)
	if !ok {
		return
	}
	id, ok := assessmentParam(w, r)
	if !ok {
		return
	}
	if _, err := h.service.IntakeMediaTarget(r.Context(), orgID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.storeMedia(w, r, orgID, id)
}

func (h *Handler) storeMedia(w http.ResponseWriter, r *http.Request, orgID, id int64) {
	if err := r.ParseMultipartForm(maxMediaUpload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "file field required")
		return
	}
	defer file.Close()
	media, err := h.media.Upload(r.Context(), orgID, id, header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		h.logger.Warn("media upload", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, media)
}

func (h *Handler) listMedia(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	id, ok := assessmentParam(w, r)
	if !ok {
		return
	}
	if _, err := h.service.Get(r.Context(), userID, orgID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.media.List(r.Context(), orgID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []uploads.Media{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"media": list})
}

func (h *Handler) mediaLink(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	id, ok := assessmentParam(w, r)
	if !ok {
		return
	}
	if _, err := h.service.Get(r.Context(), userID, orgID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	url, err := h.media.DownloadLink(r.Context(), orgID, chi.URLParam(r, "mediaID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"url": url})
}

func (h *Handler) deleteMedia(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := rbac.RequestIdentity(w, r)
	if !ok {
		return
	}
	id, ok := assessmentParam(w, r)
	if !ok {
		return
	}
	if _, err := h.service.Get(r.Context(), userID, orgID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.media.Delete(r.Context(), orgID, chi.URLParam(r, "mediaID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
