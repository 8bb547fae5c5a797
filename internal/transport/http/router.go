package httptransport

import (
	"net/http"

	"surveysphere/internal/config"
	"surveysphere/internal/httpx"
	"surveysphere/internal/service"
	"surveysphere/internal/storage/providers"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Auth      *AuthHandlers
	Surveys   *SurveyHandlers
	Responses *ResponseHandlers
	Users     *UserHandlers
}

func Router(p *providers.Providers, cfg *config.Config, mailer service.Mailer) *mux.Router {
	authService := service.NewAuthService(p.UserProvider, service.AuthOptions{
		Secret:      cfg.JWT.Secret,
		AccessTTL:   cfg.JWT.AccessTTL,
		RefreshTTL:  cfg.JWT.RefreshTTL,
		AdminEmails: cfg.Auth.AdminEmails,
	})
	questionService := service.NewQuestionService(p.QuestionProvider)
	surveyService := service.NewSurveyService(p.SurveyProvider, questionService, p.ScheduleProvider, mailer, cfg.FrontendOrigin)
	responseService := service.NewResponseService(p.SurveyProvider, p.RespondentProvider, p.ResponseProvider, p.QuestionProvider, p.UserProvider)
	timeService := service.NewTimeService(p.RespondentProvider)
	analysisService := service.NewAnalysisService(p.SurveyProvider, p.QuestionProvider, p.ResponseProvider, p.RespondentProvider, timeService)
	exportService := service.NewExportService(p.SurveyProvider, analysisService)
	userService := service.NewUserService(p.UserProvider, p.DashboardProvider)

	return NewRouter(Handlers{
		Auth:      NewAuthHandlers(authService),
		Surveys:   NewSurveyHandlers(surveyService),
		Responses: NewResponseHandlers(responseService, analysisService, exportService, surveyService),
		Users:     NewUserHandlers(userService),
	}, authService)
}

func NewRouter(h Handlers, auth httpx.Authenticator) *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/register", h.Auth.Register).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)
	authRoutes.HandleFunc("/refresh", h.Auth.Refresh).Methods(http.MethodPost)
	authRoutes.HandleFunc("/me", h.Auth.Me).Methods(http.MethodGet)

	public := api.PathPrefix("/public").Subrouter()
	public.Use(httpx.Authenticated(auth))
	public.HandleFunc("/survey/{surveyId}", h.Surveys.GetSurvey).Methods(http.MethodGet)
	public.HandleFunc("/response", h.Responses.RecordResponse).Methods(http.MethodPost)
	public.HandleFunc("/templates", h.Surveys.ListTemplates).Methods(http.MethodGet)

	surveys := api.PathPrefix("/surveys").Subrouter()
	surveys.Use(httpx.Protected(auth))
	surveys.HandleFunc("", h.Surveys.CreateSurvey).Methods(http.MethodPost)
	surveys.HandleFunc("", h.Surveys.ListSurveys).Methods(http.MethodGet)
	surveys.HandleFunc("/schedule/{action}", h.Surveys.ScheduleSurvey).Methods(http.MethodPost)
	surveys.HandleFunc("/{surveyId}", h.Surveys.UpdateSurvey).Methods(http.MethodPut)
	surveys.HandleFunc("/{surveyId}", h.Surveys.DeleteSurvey).Methods(http.MethodDelete)
	surveys.HandleFunc("/{surveyId}/responses", h.Responses.GetResponses).Methods(http.MethodGet)
	surveys.HandleFunc("/{surveyId}/export", h.Responses.ExportResponses).Methods(http.MethodGet)
	surveys.HandleFunc("/{surveyId}/archive", h.Surveys.ArchiveSurvey).Methods(http.MethodPatch)
	surveys.HandleFunc("/{surveyId}/taking-responses", h.Surveys.SetTakingResponses).Methods(http.MethodPatch)
	surveys.HandleFunc("/{surveyId}/share", h.Surveys.ShareSurvey).Methods(http.MethodPost)

	users := api.PathPrefix("/users").Subrouter()
	users.Use(httpx.Protected(auth))
	users.HandleFunc("/me", h.Users.UpdateProfile).Methods(http.MethodPut)
	users.HandleFunc("/me/password", h.Users.UpdatePassword).Methods(http.MethodPut)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(httpx.Protected(auth))
	admin.HandleFunc("/dashboard", h.Users.Dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/users", h.Users.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{userId}", h.Users.UpdateUser).Methods(http.MethodPut)
	admin.HandleFunc("/users/{userId}/status", h.Users.SetAccountStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/users/{userId}/surveys", h.Surveys.ListUserSurveys).Methods(http.MethodGet)
	admin.HandleFunc("/surveys/{surveyId}/status", h.Surveys.SetSurveyStatus).Methods(http.MethodPatch)

	return router
}
