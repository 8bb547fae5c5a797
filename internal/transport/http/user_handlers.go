package httptransport

import (
	"context"
	"net/http"

	"surveysphere/internal/domains"
	"surveysphere/internal/httpx"
)

type UserHandlers struct {
	service UserServices
}

type UserServices interface {
	ListUsers(ctx context.Context, principal domains.Principal) ([]domains.User, error)
	SetAccountStatus(ctx context.Context, principal domains.Principal, userID, status string) (domains.User, error)
	UpdateUser(ctx context.Context, principal domains.Principal, userID string, update domains.UserUpdate) (domains.User, error)
	UpdatePassword(ctx context.Context, principal domains.Principal, password string) error
	Dashboard(ctx context.Context, principal domains.Principal) (domains.Dashboard, error)
}

func NewUserHandlers(service UserServices) *UserHandlers {
	return &UserHandlers{service: service}
}

func (h *UserHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	users, err := h.service.ListUsers(r.Context(), principal)
	if err != nil {
		writeError(w, "ListUsers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *UserHandlers) SetAccountStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	userID, ok := httpx.PathVar(w, r, "userId")
	if !ok {
		return
	}

	body, err := httpx.ReadBody[AccountStatusRequest](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.SetAccountStatus(r.Context(), principal, userID, body.Status)
	if err != nil {
		writeError(w, "SetAccountStatus", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// UpdateUser edits the account named in the path.
func (h *UserHandlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	userID, ok := httpx.PathVar(w, r, "userId")
	if !ok {
		return
	}
	h.updateUser(w, r, principal, userID)
}

// UpdateProfile edits the caller's own account.
func (h *UserHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	h.updateUser(w, r, principal, principal.UserID)
}

func (h *UserHandlers) updateUser(w http.ResponseWriter, r *http.Request, principal domains.Principal, userID string) {
	update, err := httpx.ReadBody[domains.UserUpdate](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.UpdateUser(r.Context(), principal, userID, update)
	if err != nil {
		writeError(w, "UpdateUser", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *UserHandlers) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	body, err := httpx.ReadBody[domains.PasswordUpdate](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpdatePassword(r.Context(), principal, body.Password); err != nil {
		writeError(w, "UpdatePassword", err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{Message: "Password Reset Successful"})
}

func (h *UserHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), principal)
	if err != nil {
		writeError(w, "Dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}
