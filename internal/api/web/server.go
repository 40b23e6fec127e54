package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fortuna/pitchside/internal/dashboard"
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Options configures the dashboard server
type Options struct {
	Port        string
	CORSOrigins []string
	// Notifications serves /ws/notifications; nil leaves the route out.
	Notifications http.Handler
	// Runs backs /api/v1/sync/runs; nil answers 503.
	Runs RunLister
	// Database is checked by /health when set.
	Database HealthChecker
	// Clients reports connected notification sockets for /health.
	Clients ClientCounter
}

// Server is the dashboard HTTP server
type Server struct {
	server  *http.Server
	handler *Handler
}

// NewServer creates the dashboard server around ctrl
func NewServer(ctrl *dashboard.Controller, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	handler := NewHandler(ctrl, opts, log)

	return &Server{
		handler: handler,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%s", opts.Port),
			Handler:           NewRouter(handler, opts, log),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter builds the dashboard routes with recovery, logging and CORS applied
func NewRouter(handler *Handler, opts Options, log *zap.Logger) http.Handler {
	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggingMiddleware(log))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Navigation
	router.HandleFunc("/", handler.Index).Methods("GET")
	router.HandleFunc("/section/{section}", handler.Section).Methods("GET")

	// Fragments
	router.HandleFunc("/teams/grid", handler.TeamsGrid).Methods("GET")
	router.HandleFunc("/matches/table", handler.MatchesTable).Methods("GET")
	router.HandleFunc("/matches/{matchID:[0-9]+}/analyze", handler.AnalyzeSpecificMatch).Methods("GET")
	router.HandleFunc("/opportunities/today", handler.TodayOpportunities).Methods("GET")
	router.HandleFunc("/odds/opportunities", handler.FindOpportunities).Methods("POST")
	router.HandleFunc("/analysis", handler.AnalyzeMatch).Methods("POST")
	router.HandleFunc("/calculator", handler.CalculateBet).Methods("POST")
	router.HandleFunc("/toasts", handler.Toasts).Methods("GET")

	// Actions
	router.HandleFunc("/sync", handler.Sync).Methods("POST")

	if opts.Notifications != nil {
		router.Handle("/ws/notifications", opts.Notifications).Methods("GET")
	}

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/sync/runs", handler.ListSyncRuns).Methods("GET")

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	// Wrapping the router lets preflight requests through before route matching
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(router)
}

// Start starts the dashboard server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
