package server

import (
	"go.uber.org/zap"

	"github.com/SohamA2002/Automated-Backup/pkg/backup"
	"github.com/SohamA2002/Automated-Backup/pkg/rotation"
)

type Option func(s *Server) error

// WithAddr returns an Option which set the server listening address.
func WithAddr(addr string) Option {
	return func(s *Server) error {
		s.Addr = addr
		return nil
	}
}

// WithRunner returns an Option which set the backup runner triggered by
// the server.
func WithRunner(r *backup.Runner) Option {
	return func(s *Server) error {
		s.runner = r
		return nil
	}
}

// WithRepository returns an Option which set the archive repository the
// server lists archives from.
func WithRepository(repo rotation.Repository) Option {
	return func(s *Server) error {
		s.repo = repo
		return nil
	}
}

// WithLogger returns an Option which set the logger for Server.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}
