package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/valve"
	"go.uber.org/zap"

	"github.com/SohamA2002/Automated-Backup/pkg/backup"
	"github.com/SohamA2002/Automated-Backup/pkg/rotation"
)

// Server is the agent control surface: trigger a pass, list archives,
// health check. It listens on TCP or a unix socket ("unix://" prefix).
type Server struct {
	Addr        string
	router      *chi.Mux
	runner      *backup.Runner
	repo        rotation.Repository
	useUnixSock bool

	// signal chan use for testing.
	testSignalCh chan os.Signal

	logger *zap.Logger
}

// New creates new server instance.
func New(opts ...Option) (*Server, error) {
	s := &Server{}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.router = chi.NewRouter()

	if s.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		s.logger = l
	}

	s.setupRoutes()
	s.useUnixSock = strings.HasPrefix(s.Addr, "unix://")
	s.Addr = strings.TrimPrefix(s.Addr, "unix://")

	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.Health)

	s.router.Route("/archives", func(r chi.Router) {
		r.Get("/", s.ListArchives)
	})

	s.router.Route("/backups", func(r chi.Router) {
		r.Post("/", s.TriggerBackup)
	})
}

// Health reports liveness.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// ListArchives returns every archive currently on storage.
func (s *Server) ListArchives(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		http.Error(w, "no archive repository configured", http.StatusServiceUnavailable)
		return
	}
	records, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list archives", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []rotation.Record{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(records); err != nil {
		s.logger.Error("failed to encode archives", zap.Error(err))
	}
}

// TriggerBackup starts a pass in the background and returns 202.
// An overlapping trigger hits the run lock and is skipped with a log
// line. The valve lever keeps shutdown waiting for an in-flight pass.
func (s *Server) TriggerBackup(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		http.Error(w, "no runner configured", http.StatusServiceUnavailable)
		return
	}
	lever := valve.Lever(r.Context())
	if err := lever.Open(); err != nil {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	go func() {
		defer lever.Close()
		if err := s.runner.Run(context.Background()); err != nil {
			if errors.Is(err, backup.ErrRunInProgress) {
				s.logger.Warn("backup already running, trigger skipped")
				return
			}
			s.logger.Error("triggered backup failed", zap.Error(err))
		}
	}()
	w.WriteHeader(http.StatusAccepted)
}

// Run serves until SIGTERM/SIGINT, then shuts down gracefully, waiting
// up to 20 seconds for an in-flight backup pass.
func (s *Server) Run() error {
	valv := valve.New()
	baseCtx := valv.Context()

	srv := http.Server{Handler: chi.ServerBaseContext(baseCtx, s.router)}

	c := make(chan os.Signal, 1)
	if s.testSignalCh != nil {
		c = s.testSignalCh
	}
	signal.Notify(c, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-c
		s.logger.Info("shutting down...")

		// first valv
		if err := valv.Shutdown(20 * time.Second); err != nil {
			s.logger.Error("failed to shutdown valv; a backup pass may still be running")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown http server")
		}

		select {
		case <-time.After(21 * time.Second):
			s.logger.Error("not all connections done")
		case <-ctx.Done():
		}
	}()

	if s.useUnixSock {
		unixListener, err := net.Listen("unix", s.Addr)
		if err != nil {
			return err
		}
		return srv.Serve(unixListener)
	}

	srv.Addr = s.Addr
	return srv.ListenAndServe()
}
