// Package api serves persisted topic terms and run summaries to merchants.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/todmy/topic-miner/internal/auth"
	"github.com/todmy/topic-miner/internal/storage"
)

// ServerConfig holds the server dependencies
type ServerConfig struct {
	TopicTerms     storage.TopicTermRepository
	Runs           storage.RunRepository
	Auth           auth.Service
	AllowedOrigins []string
}

type Server struct {
	router *chi.Mux
	terms  storage.TopicTermRepository
	runs   storage.RunRepository
	auth   auth.Service
}

func NewServer(config ServerConfig) *Server {
	r := chi.NewRouter()

	origins := config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization"},
		MaxAge:         300,
	}))

	s := &Server{
		router: r,
		terms:  config.TopicTerms,
		runs:   config.Runs,
		auth:   config.Auth,
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(s.auth))

		r.Get("/topics", s.handleGetTopics)
		r.Get("/topics/map", s.handleGetTopicMap)
		r.Get("/runs/latest", s.handleGetLatestRun)
	})
}

// ServeHTTP makes the server usable as an http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// Helper to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
