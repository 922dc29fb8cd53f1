// Package httpserver exposes the local admin surface: health, sync status
// and manual sync triggers.
package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/namatovu-christine/alumni-sync/internal/service"
	syncer "github.com/namatovu-christine/alumni-sync/internal/sync"
)

// Syncer is the orchestrator surface the admin endpoints drive.
type Syncer interface {
	RequestImmediate()
	RequestForce(dataType string)
	Status(ctx context.Context) (syncer.Status, error)
}

var knownTypes = map[string]bool{
	syncer.KeyUsers:  true,
	syncer.KeyJobs:   true,
	syncer.KeyEvents: true,
	syncer.KeyChat:   true,
}

// Deps collects everything the local API serves. Sync is required; feature
// services are optional so a bare admin surface can run without them.
type Deps struct {
	Sync      Syncer
	Auth      Authenticator
	Directory service.DirectoryService
	Jobs      service.JobBoardService
	Events    service.EventsService
	Chat      service.ChatService
	Profile   service.ProfileService
}

// Server serves the admin and portal endpoints.
type Server struct {
	srv *http.Server
	log *zap.Logger
}

// NewServer builds the local API server on addr.
func NewServer(addr string, deps Deps, log *zap.Logger) *Server {
	r := mux.NewRouter()
	r.Use(Recover(log), Logging(log))

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", handleStatus(deps.Sync)).Methods(http.MethodGet)
	r.HandleFunc("/sync", handleSync(deps.Sync)).Methods(http.MethodPost)
	r.HandleFunc("/sync/{type}", handleSyncType(deps.Sync)).Methods(http.MethodPost)

	registerPortal(r, deps)

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	s.log.Info("admin server listening", zap.String("addr", s.srv.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleStatus(s Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := s.Status(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(st)
	}
}

func handleSync(s Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.RequestImmediate()
		w.WriteHeader(http.StatusAccepted)
	}
}

func handleSyncType(s Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dataType := mux.Vars(r)["type"]
		if !knownTypes[dataType] {
			http.Error(w, "unknown data type", http.StatusNotFound)
			return
		}
		s.RequestForce(dataType)
		w.WriteHeader(http.StatusAccepted)
	}
}
