package source

import (
	"context"
	"fmt"
	"os"

	gogit "github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

// Git ensures the project directory exists, cloning it when absent.
type Git struct {
	url    string
	dir    string
	logger *zap.Logger
}

// NewGit returns a Git source for dir, cloned from url when missing.
func NewGit(url, dir string, logger *zap.Logger) *Git {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Git{url: url, dir: dir, logger: logger}
}

// Ensure is a no-op when the project directory already exists.
// Otherwise it clones the repository; a clone failure is fatal to the
// backup pass.
func (g *Git) Ensure(ctx context.Context) error {
	if _, err := os.Stat(g.dir); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("source: stat %s: %w", g.dir, err)
	}

	if g.url == "" {
		return fmt.Errorf("source: %s does not exist and no repository url is configured", g.dir)
	}

	g.logger.Sugar().Infof("Cloning repository from %s", g.url)
	if _, err := gogit.PlainCloneContext(ctx, g.dir, false, &gogit.CloneOptions{URL: g.url}); err != nil {
		return fmt.Errorf("source: clone %s: %w", g.url, err)
	}
	return nil
}
