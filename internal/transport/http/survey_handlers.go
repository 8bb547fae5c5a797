package httptransport

import (
	"context"
	"net/http"
	"strconv"

	"surveysphere/internal/domains"
	"surveysphere/internal/httpx"

	"github.com/gorilla/mux"
)

type SurveyHandlers struct {
	service SurveyServices
}

type SurveyServices interface {
	CreateSurvey(ctx context.Context, principal domains.Principal, payload domains.SurveyCreate) (domains.Survey, error)
	UpdateSurvey(ctx context.Context, principal domains.Principal, surveyID string, payload domains.SurveyCreate) (domains.Survey, error)
	GetSurvey(ctx context.Context, surveyID string) (domains.Survey, error)
	ListSurveys(ctx context.Context, principal domains.Principal, tab string, page, limit int) (domains.SurveyPage, error)
	ListUserSurveys(ctx context.Context, principal domains.Principal, ownerID, tab string, page, limit int) (domains.SurveyPage, error)
	ListTemplates(ctx context.Context, tab string, page, limit int) (domains.SurveyPage, error)
	ArchiveSurvey(ctx context.Context, principal domains.Principal, surveyID string) (domains.DistributionResult, error)
	DeleteSurvey(ctx context.Context, principal domains.Principal, surveyID string) (domains.DistributionResult, error)
	SetTakingResponses(ctx context.Context, principal domains.Principal, surveyID string, taking bool) error
	SetDeactivated(ctx context.Context, principal domains.Principal, surveyID, status string) (domains.Survey, error)
	DistributeSurvey(ctx context.Context, principal domains.Principal, distribution domains.SurveyDistribution) (domains.DistributionResult, error)
	ScheduleDistribution(ctx context.Context, principal domains.Principal, schedule domains.SurveySchedule) (domains.ScheduledSurvey, error)
	ScheduleDeletion(ctx context.Context, principal domains.Principal, schedule domains.SurveySchedule) (domains.ScheduledSurvey, error)
	ScheduleArchiving(ctx context.Context, principal domains.Principal, schedule domains.SurveySchedule) (domains.ScheduledSurvey, error)
}

func NewSurveyHandlers(service SurveyServices) *SurveyHandlers {
	return &SurveyHandlers{service: service}
}

func (h *SurveyHandlers) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	payload, err := httpx.ReadBody[domains.SurveyCreate](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.CreateSurvey(r.Context(), principal, payload)
	if err != nil {
		writeError(w, "CreateSurvey", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *SurveyHandlers) UpdateSurvey(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	surveyID, ok := httpx.PathVar(w, r, "surveyId")
	if !ok {
		return
	}

	payload, err := httpx.ReadBody[domains.SurveyCreate](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.UpdateSurvey(r.Context(), principal, surveyID, payload)
	if err != nil {
		writeError(w, "UpdateSurvey", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *SurveyHandlers) GetSurvey(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := httpx.PathVar(w, r, "surveyId")
	if !ok {
		return
	}

	survey, err := h.service.GetSurvey(r.Context(), surveyID)
	if err != nil {
		writeError(w, "GetSurvey", err)
		return
	}
	httpx.JSON(w, http.StatusOK, survey)
}

func (h *SurveyHandlers) ListSurveys(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q := r.URL.Query()
	page, err := h.service.ListSurveys(r.Context(), principal, q.Get("tab"), httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "limit", 10))
	if err != nil {
		writeError(w, "ListSurveys", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *SurveyHandlers) ListUserSurveys(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	userID, ok := httpx.PathVar(w, r, "userId")
	if !ok {
		return
	}

	q := r.URL.Query()
	page, err := h.service.ListUserSurveys(r.Context(), principal, userID, q.Get("tab"), httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "limit", 10))
	if err != nil {
		writeError(w, "ListUserSurveys", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *SurveyHandlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.service.ListTemplates(r.Context(), q.Get("tab"), httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "limit", 10))
	if err != nil {
		writeError(w, "ListTemplates", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *SurveyHandlers) ArchiveSurvey(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	surveyID, ok := httpx.PathVar(w, r, "surveyId")
	if !ok {
		return
	}

	result, err := h.service.ArchiveSurvey(r.Context(), principal, surveyID)
	if err != nil {
		writeError(w, "ArchiveSurvey", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *SurveyHandlers) DeleteSurvey(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	surveyID, ok := httpx.PathVar(w, r, "surveyId")
	if !ok {
		return
	}

	result, err := h.service.DeleteSurvey(r.Context(), principal, surveyID)
	if err != nil {
		writeError(w, "DeleteSurvey", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *SurveyHandlers) SetTakingResponses(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	surveyID, ok := httpx.PathVar(w, r, "surveyId")
	if !ok {
		return
	}
	taking, err := strconv.ParseBool(r.URL.Query().Get("isTakingResponses"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "isTakingResponses must be true or false")
		return
	}

	if err := h.service.SetTakingResponses(r.Context(), principal, surveyID, taking); err != nil {
		writeError(w, "SetTakingResponses", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SurveyHandlers) SetSurveyStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	surveyID, ok := httpx.PathVar(w, r, "surveyId")
	if !ok {
		return
	}
	body, err := httpx.ReadBody[SurveyStatusRequest](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	survey, err := h.service.SetDeactivated(r.Context(), principal, surveyID, body.Status)
	if err != nil {
		writeError(w, "SetSurveyStatus", err)
		return
	}
	httpx.JSON(w, http.StatusOK, survey)
}

func (h *SurveyHandlers) ShareSurvey(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	surveyID, ok := httpx.PathVar(w, r, "surveyId")
	if !ok {
		return
	}
	distribution, err := httpx.ReadBody[domains.SurveyDistribution](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	distribution.SurveyID = surveyID

	result, err := h.service.DistributeSurvey(r.Context(), principal, distribution)
	if err != nil {
		writeError(w, "ShareSurvey", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *SurveyHandlers) ScheduleSurvey(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	schedule, err := httpx.ReadBody[domains.SurveySchedule](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if schedule.SharingInfo.SurveyID == "" {
		httpx.Error(w, http.StatusBadRequest, "sharingInfo.surveyId is required")
		return
	}

	var scheduled domains.ScheduledSurvey
	switch action := mux.Vars(r)["action"]; action {
	case domains.ScheduleDistribute:
		scheduled, err = h.service.ScheduleDistribution(r.Context(), principal, schedule)
	case domains.ScheduleDelete:
		scheduled, err = h.service.ScheduleDeletion(r.Context(), principal, schedule)
	case domains.ScheduleArchive:
		scheduled, err = h.service.ScheduleArchiving(r.Context(), principal, schedule)
	default:
		httpx.Error(w, http.StatusBadRequest, "unknown schedule action "+strconv.Quote(action))
		return
	}
	if err != nil {
		writeError(w, "ScheduleSurvey", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, scheduled)
}
