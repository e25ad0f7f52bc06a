package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"safehaven/internal/config"
	"safehaven/internal/docs"
	"safehaven/internal/logger"
	"safehaven/internal/service"
	"safehaven/internal/transport/rest/handler"
	"safehaven/internal/transport/rest/middleware"
	"safehaven/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	Config         *config.Config
	AuthService    *service.AuthService
	SurveyLoader   *service.SurveyLoader
	SessionService *service.SessionService
	DraftService   *service.DraftService
	WSHub          *ws.Hub
	Logger         logger.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler()
	surveyHandler := handler.NewSurveyHandler(c.SurveyLoader, c.Logger)
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.Config.Workflow.RedirectPath, c.Logger)
	draftHandler := handler.NewDraftHandler(c.DraftService, c.Logger)
	wsHandler := ws.NewHandler(c.WSHub, c.SessionService, c.Config.HTTP.Origins(), c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.Config.HTTP))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/swagger/doc.json", docs.Handler).Methods("GET")

	// API v1 routes; a bearer token is optional everywhere
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(authMW.OptionalAuth)

	v1.HandleFunc("/auth/me", authHandler.Me).Methods("GET", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyId}", surveyHandler.Get).Methods("GET", "OPTIONS")

	v1.HandleFunc("/sessions", sessionHandler.Start).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{id}", sessionHandler.Close).Methods("DELETE", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/answers/{order}", sessionHandler.SetAnswer).Methods("PUT", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/next", sessionHandler.Next).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/prev", sessionHandler.Prev).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/submit", sessionHandler.Submit).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/exit", sessionHandler.Exit).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/toast", sessionHandler.Toast).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/toast", sessionHandler.DismissToast).Methods("DELETE", "OPTIONS")

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/sessions/{id}", wsHandler.SessionWS).Methods("GET")

	// Draft routes (require a user)
	draftRoutes := v1.NewRoute().Subrouter()
	draftRoutes.Use(authMW.RequireAuth)

	draftRoutes.HandleFunc("/drafts/{surveyId}", draftHandler.Get).Methods("GET", "OPTIONS")
	draftRoutes.HandleFunc("/drafts/{surveyId}", draftHandler.Save).Methods("PUT", "OPTIONS")
	draftRoutes.HandleFunc("/drafts/{surveyId}", draftHandler.Clear).Methods("DELETE", "OPTIONS")

	return r
}

func corsMiddleware(cfg config.HTTPConfig) mux.MiddlewareFunc {
	allowedOrigins := cfg.AllowedOrigins
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	allowedMethods := cfg.AllowedMethods
	if allowedMethods == "" {
		allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
	}
	allowedHeaders := cfg.AllowedHeaders
	if allowedHeaders == "" {
		allowedHeaders = "Content-Type, Authorization"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
