package httptransport

import (
	"context"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"surveysphere/internal/domains"
	"surveysphere/internal/httpx"
)

type ResponseHandlers struct {
	recorder ResponseRecorder
	analyzer ResponseAnalyzer
	exporter SurveyExporter
	owners   OwnerAuthorizer
}

type ResponseRecorder interface {
	RecordResponse(ctx context.Context, submission domains.ResponseSubmission, respondentID string, principal *domains.Principal) (domains.ResponseReceipt, error)
}

type ResponseAnalyzer interface {
	GetResponses(ctx context.Context, surveyID string) (domains.ResponseAnalysis, error)
}

type SurveyExporter interface {
	ExportSurvey(ctx context.Context, surveyID string) (domains.SpreadsheetExport, error)
}

type OwnerAuthorizer interface {
	AuthorizeOwner(ctx context.Context, principal domains.Principal, surveyID string) error
}

func NewResponseHandlers(recorder ResponseRecorder, analyzer ResponseAnalyzer, exporter SurveyExporter, owners OwnerAuthorizer) *ResponseHandlers {
	return &ResponseHandlers{
		recorder: recorder,
		analyzer: analyzer,
		exporter: exporter,
		owners:   owners,
	}
}

func (h *ResponseHandlers) RecordResponse(w http.ResponseWriter, r *http.Request) {
	submission, err := httpx.ReadBody[domains.ResponseSubmission](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(submission.SurveyID) == "" {
		httpx.Error(w, http.StatusBadRequest, "surveyId is required")
		return
	}

	var principal *domains.Principal
	if p, ok := httpx.PrincipalFromContext(r.Context()); ok {
		principal = &p
	}

	receipt, err := h.recorder.RecordResponse(r.Context(), submission, r.URL.Query().Get("respondentId"), principal)
	if err != nil {
		writeError(w, "RecordResponse", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, receipt)
}

func (h *ResponseHandlers) GetResponses(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	analysis, err := h.analyzer.GetResponses(r.Context(), surveyID)
	if err != nil {
		writeError(w, "GetResponses", err)
		return
	}
	httpx.JSON(w, http.StatusOK, analysis)
}

func (h *ResponseHandlers) ExportResponses(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	export, err := h.exporter.ExportSurvey(r.Context(), surveyID)
	if err != nil {
		writeError(w, "ExportResponses", err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Content)
}

func (h *ResponseHandlers) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	principal, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	surveyID, ok := httpx.PathVar(w, r, "surveyId")
	if !ok {
		return "", false
	}
	if err := h.owners.AuthorizeOwner(r.Context(), principal, surveyID); err != nil {
		writeError(w, "AuthorizeOwner", err)
		return "", false
	}
	return surveyID, true
}
