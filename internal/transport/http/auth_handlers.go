package httptransport

import (
	"context"
	"net/http"

	"surveysphere/internal/domains"
	"surveysphere/internal/httpx"
)

const refreshCookieName = "refreshToken"

type AuthHandlers struct {
	service AuthServices
}

type AuthServices interface {
	Register(ctx context.Context, registration domains.UserRegistration) (domains.User, error)
	Login(ctx context.Context, email string, password string) (string, string, error)
	Refresh(ctx context.Context, token string) (string, string, error)
	Me(ctx context.Context, token string) (domains.User, error)
}

func NewAuthHandlers(service AuthServices) *AuthHandlers {
	return &AuthHandlers{
		service: service,
	}
}

func (srv AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	registration, err := httpx.ReadBody[domains.UserRegistration](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := srv.service.Register(r.Context(), registration)
	if err != nil {
		writeError(w, "Register", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (srv AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	loginData, err := httpx.ReadBody[LoginData](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, refreshToken, err := srv.service.Login(r.Context(), loginData.Email, loginData.Password)
	if err != nil {
		writeError(w, "Login", err)
		return
	}
	setRefreshCookie(w, refreshToken)
	httpx.JSON(w, http.StatusOK, TokenPair{AccessToken: accessToken, RefreshToken: refreshToken})
}

// Refresh reads the refresh token from the cookie, falling back to the JSON body.
func (srv AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		token = cookie.Value
	}
	if token == "" {
		if body, err := httpx.ReadBody[TokenRefreshRequest](*r); err == nil {
			token = body.RefreshToken
		}
	}
	if token == "" {
		httpx.Error(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	accessToken, refreshToken, err := srv.service.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, "Refresh", err)
		return
	}
	setRefreshCookie(w, refreshToken)
	httpx.JSON(w, http.StatusOK, TokenPair{AccessToken: accessToken, RefreshToken: refreshToken})
}

func (srv AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	token, ok := httpx.BearerToken(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := srv.service.Me(r.Context(), token)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/api/auth",
		MaxAge:   60 * 60 * 24 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
