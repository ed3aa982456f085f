// Package server exposes the HTTP API and the daemon that hosts it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"teachassist/internal/config"
	"teachassist/internal/evaluate"
	"teachassist/internal/generator"
	"teachassist/internal/intake"
	"teachassist/internal/jobs"
	"teachassist/internal/llm"
	"teachassist/internal/planner"
	"teachassist/internal/policy"
	"teachassist/internal/prompts"
	"teachassist/internal/services"
	"teachassist/internal/store"
)

// Server wires the request pipeline services behind the HTTP API.
type Server struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger

	intake    *intake.Service
	planner   *planner.Service
	generator *generator.Service
	policy    *policy.Service
	evaluator *evaluate.Service
	queue     *jobs.Queue
	kick      func()

	mu        sync.Mutex
	listener  net.Listener
	server    *http.Server
	startedAt time.Time
}

// New composes the pipeline services over one store and provider, and
// registers the generation job handler on the queue. The kick callback
// wakes the queue worker after an enqueue; pass nil when no worker runs.
func New(cfg *config.Config, st *store.Store, provider llm.Provider, queue *jobs.Queue, kick func(), logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if kick == nil {
		kick = func() {}
	}
	library := prompts.NewLibrary()
	srv := &Server{
		cfg:       cfg,
		store:     st,
		logger:    logger.With("component", "api-server"),
		intake:    intake.NewService(st, cfg, logger),
		planner:   planner.NewService(st, logger),
		generator: generator.NewService(st, provider, library, cfg, logger),
		policy:    policy.NewService(st, logger),
		evaluator: evaluate.NewService(completerFor(provider), logger),
		queue:     queue,
		kick:      kick,
	}
	queue.RegisterHandler(jobs.JobGeneratePackage, srv.handleGenerateJob)
	return srv
}

// completerFor extracts the JSON-completion surface from a provider. Both
// the HTTP client and the fixture provider support it; anything else gets
// a completer whose errors make evaluation degrade to its passing default.
func completerFor(provider llm.Provider) evaluate.JSONCompleter {
	if completer, ok := provider.(evaluate.JSONCompleter); ok {
		return completer
	}
	return unsupportedCompleter{}
}

type unsupportedCompleter struct{}

func (unsupportedCompleter) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", errors.New("provider does not support JSON completion")
}

func (s *Server) handleGenerateJob(ctx context.Context, planID string) (string, error) {
	ctx = services.WithPlanID(ctx, planID)
	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return "", err
	}
	if plan == nil {
		return "", services.Wrap(services.ErrNotFound, "server", "generate job", fmt.Sprintf("plan %s not found", planID), nil)
	}
	ctx = services.WithRequestID(ctx, plan.RequestID)
	artifacts, err := s.generator.GenerateArtifacts(ctx, plan)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("generated %d artifacts", len(artifacts)), nil
}

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/requests", s.handleRequests)
	mux.HandleFunc("/api/requests/", s.handleRequestItem)
	mux.HandleFunc("/api/artifacts/", s.handleArtifactItem)
	mux.HandleFunc("/api/status", s.handleStatus)
	return mux
}

// Start binds the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Paths.APIBind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	srv := s.server
	s.startedAt = time.Now().UTC()
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", "address", listener.Addr().String())
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	s.mu.Lock()
	srv := s.server
	listener := s.listener
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	if listener != nil {
		_ = listener.Close()
	}
}

// Addr returns the bound address, or empty before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.mu.Lock()
	startedAt := s.startedAt
	s.mu.Unlock()

	counts := s.queue.Counts()
	jobCounts := make(map[string]int, len(counts))
	for status, count := range counts {
		jobCounts[string(status)] = count
	}
	s.writeJSON(w, http.StatusOK, statusResponse{
		Running:      true,
		PID:          os.Getpid(),
		DatabasePath: s.store.Path(),
		StartedAt:    startedAt,
		Jobs:         jobCounts,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the service sentinel errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrValidation):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := decoder.Decode(target); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}
