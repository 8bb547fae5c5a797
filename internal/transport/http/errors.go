package httptransport

import (
	"errors"
	"log/slog"
	"net/http"

	"surveysphere/internal/httpx"
	"surveysphere/internal/service"
	"surveysphere/internal/storage"
)

// writeError maps service and storage errors onto HTTP statuses.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrSurveyNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrSurveyTitleMissing),
		errors.Is(err, storage.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, rootMessage(err))
	case errors.Is(err, service.ErrSurveyNotTakingResponses),
		errors.Is(err, service.ErrPasswordIncorrect),
		errors.Is(err, service.ErrTokenIncorrect):
		httpx.Error(w, http.StatusUnauthorized, rootMessage(err))
	case errors.Is(err, service.ErrAccountDeactivated):
		httpx.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrForbidden):
		httpx.Error(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, service.ErrAlreadyScheduled), errors.Is(err, service.ErrSamePassword):
		httpx.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrUserExist), errors.Is(err, storage.ErrConflict):
		httpx.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSurveyIDRequired),
		errors.Is(err, service.ErrInvalidScheduleDate),
		errors.Is(err, service.ErrInvalidTab),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidQuestionType),
		errors.Is(err, service.ErrInvalidAccountStatus),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrInvalidRegistration):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrExportFailed):
		httpx.Error(w, http.StatusInternalServerError, service.ErrExportFailed.Error())
	default:
		slog.Error(op+" failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

// rootMessage returns the message of the sentinel at the bottom of a wrap chain.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
