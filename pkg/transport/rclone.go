package transport

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

const defaultBinary = "rclone"

// Uploader ships one archive file to remote storage.
type Uploader interface {
	Upload(ctx context.Context, path string) error
}

// Rclone uploads archives by executing "rclone copy". The remote and
// folder are opaque strings handed to the binary; no retry is attempted.
type Rclone struct {
	remote string
	folder string
	binary string
	logger *zap.Logger
}

// Option configures an Rclone uploader.
type Option func(r *Rclone)

// WithBinary overrides the rclone binary path.
func WithBinary(binary string) Option {
	return func(r *Rclone) {
		r.binary = binary
	}
}

// WithLogger sets the logger for the uploader.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Rclone) {
		r.logger = logger
	}
}

// NewRclone returns an Uploader targeting <remote>:<folder>.
func NewRclone(remote, folder string, opts ...Option) *Rclone {
	r := &Rclone{
		remote: remote,
		folder: folder,
		binary: defaultBinary,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Upload copies path to the configured remote folder.
func (r *Rclone) Upload(ctx context.Context, path string) error {
	dest := r.remote + ":" + r.folder
	r.logger.Sugar().Debugf("running %s copy %s %s", r.binary, path, dest)

	cmd := exec.CommandContext(ctx, r.binary, "copy", path, dest)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("transport: rclone copy to %s: %v: %s", dest, err, bytes.TrimSpace(out))
	}
	return nil
}
