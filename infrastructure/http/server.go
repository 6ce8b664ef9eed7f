package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/peroapp/pero/application/port/inbound"
	"github.com/peroapp/pero/infrastructure/config"
	"github.com/peroapp/pero/infrastructure/http/handler"
	"github.com/peroapp/pero/infrastructure/http/middleware"
)

// Server wires the handlers onto a mux router behind the shared middleware
// chain and owns the http.Server lifecycle.
type Server struct {
	server *http.Server
}

func NewServer(
	cfg *config.Config,
	authUseCase inbound.AuthUseCase,
	userUseCase inbound.UserUseCase,
	authMiddleware *middleware.AuthMiddleware,
) *Server {
	authHandler := handler.NewAuthHandler(authUseCase)
	userHandler := handler.NewUserHandler(userUseCase, authMiddleware)

	router := mux.NewRouter()

	router.HandleFunc("/v1/auth/register", authHandler.Register).Methods(http.MethodPost)
	router.HandleFunc("/v1/auth/login", authHandler.Login).Methods(http.MethodPost)
	router.HandleFunc("/v1/auth/refresh", authHandler.Refresh).Methods(http.MethodPost)
	router.HandleFunc("/v1/auth/logout", authMiddleware.RequireAuth(authHandler.Logout)).Methods(http.MethodPost)
	router.HandleFunc("/v1/auth/me", authMiddleware.RequireAuth(authHandler.Me)).Methods(http.MethodGet)

	userHandler.RegisterRoutes(router)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	var root http.Handler = middleware.CorrelationIDMiddleware(router)
	if cfg.CORSEnabled && len(cfg.CORSAllowedOrigins) > 0 {
		root = middleware.CORSMiddleware(root, cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials)
	}

	return &Server{
		server: &http.Server{
			Addr:         cfg.ServerHost + ":" + cfg.ServerPort,
			Handler:      root,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func (s *Server) Addr() string {
	return s.server.Addr
}

func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
