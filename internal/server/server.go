// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/mstacm/dashboard-tui/internal/storage"
	"github.com/mstacm/dashboard-tui/internal/users"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8790"

	// APIPrefix is where the user-record routes are mounted.
	APIPrefix = "/api"

	// MaxRequestBodySize bounds JSON request bodies.
	MaxRequestBodySize = 64 * 1024

	// Version is the server version.
	Version = "1.0.0"
)

// Store is the persistence the API needs.
type Store interface {
	Get(ctx context.Context, username string) (*storage.Record, error)
	Upsert(ctx context.Context, r storage.Record) error
	RequestAccount(ctx context.Context, username string) (*storage.Record, error)
	List(ctx context.Context) ([]storage.Record, error)
}

// Config configures the server.
type Config struct {
	Addr           string
	SigningKey     []byte
	AllowedOrigins []string
	RatePerSecond  float64
	RateBurst      int
	Logger         *log.Logger
}

// ============================================================================
// SERVER STATS
// ============================================================================

// Stats counts requests handled since start.
type Stats struct {
	StartTime      time.Time
	UserReads      atomic.Int64
	AccessRequests atomic.Int64
	AdminUpdates   atomic.Int64
}

// Uptime returns time since start.
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the development user-record API.
type Server struct {
	config  Config
	store   Store
	router  *mux.Router
	limiter *RateLimiter
	stats   *Stats
	server  *http.Server
}

// New creates a Server backed by store.
func New(store Store, config Config) (*Server, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if len(config.SigningKey) == 0 {
		return nil, errors.New("signing key is required")
	}
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	if config.RatePerSecond <= 0 {
		config.RatePerSecond = 20
	}
	if config.RateBurst <= 0 {
		config.RateBurst = 40
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	s := &Server{
		config:  config,
		store:   store,
		router:  mux.NewRouter(),
		limiter: NewRateLimiter(config.RatePerSecond, config.RateBurst),
		stats:   &Stats{StartTime: time.Now()},
	}
	s.setupRoutes()
	return s, nil
}

// setupRoutes registers the HTTP handlers.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix(APIPrefix).Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(AuthMiddleware(s.config.SigningKey))
	authed.HandleFunc("/users/{id}", s.handleGetUser).Methods(http.MethodGet)
	authed.HandleFunc("/users/{id}/request-account", s.handleRequestAccount).Methods(http.MethodPost)
	authed.HandleFunc("/admin/users/{id}", s.handleAdminUpdate).Methods(http.MethodPut)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(),
		RequestIDMiddleware(),
		LoggingMiddleware(s.config.Logger),
		SecurityHeadersMiddleware(),
		CORSMiddleware(s.config.AllowedOrigins),
		RateLimitMiddleware(s.limiter),
	)(s.router)
}

// Stats returns the live counters.
func (s *Server) Stats() *Stats { return s.stats }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.config.Addr }

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("SERVER_START | addr=%s version=%s", ln.Addr(), Version)
	err := s.server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Close()
	if s.server == nil {
		return nil
	}
	log.Printf("SERVER_SHUTDOWN | reads=%d requests=%d admin=%d uptime=%s",
		s.stats.UserReads.Load(), s.stats.AccessRequests.Load(), s.stats.AdminUpdates.Load(),
		s.stats.Uptime().Round(time.Second))
	return s.server.Shutdown(ctx)
}

// ============================================================================
// HANDLERS
// ============================================================================

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Users   int    `json:"users"`
	Uptime  string `json:"uptime"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:  "ok",
		Version: Version,
		Uptime:  s.stats.Uptime().Round(time.Second).String(),
	}
	if records, err := s.store.List(r.Context()); err == nil {
		health.Users = len(records)
	} else {
		health.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, health)
}

// handleGetUser handles GET /users/{id}.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.authorize(w, r, id) {
		return
	}
	s.stats.UserReads.Add(1)

	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec.User())
}

// requestAccountBody mirrors the web client's POST body.
type requestAccountBody struct {
	UserID string `json:"userId"`
}

// handleRequestAccount handles POST /users/{id}/request-account.
func (s *Server) handleRequestAccount(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.authorize(w, r, id) {
		return
	}

	var body requestAccountBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.UserID != "" && body.UserID != id {
		writeError(w, http.StatusBadRequest, "userId does not match path")
		return
	}

	rec, err := s.store.RequestAccount(r.Context(), id)
	if err != nil {
		log.Printf("ACCESS_REQUEST_REJECTED | user=%s err=%v", id, err)
		writeStoreError(w, err)
		return
	}
	s.stats.AccessRequests.Add(1)
	log.Printf("ACCESS_REQUESTED | user=%s request_id=%s", id, RequestIDFromContext(r.Context()))
	writeJSON(w, http.StatusAccepted, rec.User())
}

// handleAdminUpdate handles PUT /admin/users/{id}. Non-empty fields of the
// body are applied; a missing record is created.
func (s *Server) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	if claims == nil || claims.Role != RoleAdmin {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}
	id := mux.Vars(r)["id"]

	var body users.User
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.store.Get(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		rec = &storage.Record{Username: id}
	case err != nil:
		writeStoreError(w, err)
		return
	}
	if body.Role != "" {
		rec.Role = body.Role
	}
	if body.Email != "" {
		rec.Email = body.Email
	}
	if body.AWSAccountStatus != "" {
		rec.AWSAccountStatus = body.AWSAccountStatus
	}

	if err := s.store.Upsert(r.Context(), *rec); err != nil {
		writeStoreError(w, err)
		return
	}
	s.stats.AdminUpdates.Add(1)
	log.Printf("USER_UPDATED | user=%s by=%s status=%q", id, claims.Username, rec.AWSAccountStatus)

	updated, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.User())
}

// authorize writes 403 and returns false unless the caller may act on id.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, id string) bool {
	claims, _ := ClaimsFromContext(r.Context())
	if !canActOn(claims, id) {
		writeError(w, http.StatusForbidden, "not allowed to access this user")
		return false
	}
	return true
}

// ============================================================================
// HELPERS
// ============================================================================

// errorResponse is the error envelope read by users.Client.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeStoreError maps storage errors to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, storage.ErrNotFound.Error())
	case errors.Is(err, storage.ErrAlreadyPending):
		writeError(w, http.StatusConflict, storage.ErrAlreadyPending.Error())
	case errors.Is(err, storage.ErrAlreadyProvisioned):
		writeError(w, http.StatusConflict, storage.ErrAlreadyProvisioned.Error())
	case errors.Is(err, storage.ErrInvalidUsername):
		writeError(w, http.StatusBadRequest, storage.ErrInvalidUsername.Error())
	default:
		log.Printf("STORE_ERROR | err=%v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody decodes an optional JSON body. An empty body is not an error.
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxRequestBodySize))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
