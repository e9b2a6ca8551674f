package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/coursehq/courseapi/pkg/auth"
	"github.com/coursehq/courseapi/pkg/collections"
	"github.com/coursehq/courseapi/pkg/courses"
	"github.com/coursehq/courseapi/pkg/middleware"
	"github.com/coursehq/courseapi/pkg/observability"
	"github.com/coursehq/courseapi/pkg/users"
)

// Server represents the API server
type Server struct {
	router      *mux.Router
	courses     *courses.Service
	collections *collections.Service
	users       *users.Service
	tokens      *auth.TokenManager
	logger      *observability.Logger
	metrics     *observability.Metrics
}

// NewServer creates the API server and wires its routes
func NewServer(courseSvc *courses.Service, collectionSvc *collections.Service, userSvc *users.Service, tokens *auth.TokenManager, logger *observability.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		router:      mux.NewRouter(),
		courses:     courseSvc,
		collections: collectionSvc,
		users:       userSvc,
		tokens:      tokens,
		logger:      logger,
		metrics:     metrics,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(middleware.Logging(s.logger, s.metrics))
	// Auth runs in optional mode: register and login are public, and the
	// services reject missing principals on everything else
	s.router.Use(middleware.NewAuthMiddleware(s.tokens, true).Handler)

	// Credential routes
	s.router.HandleFunc("/auth/register", s.register).Methods("POST")
	s.router.HandleFunc("/auth/login", s.login).Methods("POST")

	// Course routes
	s.router.HandleFunc("/courses", s.listCourses).Methods("GET")
	s.router.HandleFunc("/courses", s.createCourse).Methods("POST")
	s.router.HandleFunc("/courses/{id:[0-9]+}", s.getCourse).Methods("GET")
	s.router.HandleFunc("/courses/{id:[0-9]+}", s.updateCourse).Methods("PATCH")
	s.router.HandleFunc("/courses/{id:[0-9]+}", s.deleteCourse).Methods("DELETE")

	// Collection routes
	s.router.HandleFunc("/collections", s.listCollections).Methods("GET")
	s.router.HandleFunc("/collections/{id:[0-9]+}", s.getCollection).Methods("GET")

	// User routes
	s.router.HandleFunc("/users", s.listUsers).Methods("GET")
}

// Handler returns the server's root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}
