package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/SohamA2002/Automated-Backup/pkg/archive"
	"github.com/SohamA2002/Automated-Backup/pkg/config"
	"github.com/SohamA2002/Automated-Backup/pkg/notify"
	"github.com/SohamA2002/Automated-Backup/pkg/rotation"
)

// lockName is the flock file guarding the archive tree against
// overlapping passes.
const lockName = ".backup.lock"

// ErrRunInProgress reports that another pass holds the storage lock.
// Callers log it and skip the run; it is never fatal.
var ErrRunInProgress = errors.New("backup: another run is in progress")

// Source ensures the project directory exists before archiving.
type Source interface {
	Ensure(ctx context.Context) error
}

// Uploader ships one archive to remote storage.
type Uploader interface {
	Upload(ctx context.Context, path string) error
}

// Notifier delivers the completion webhook.
type Notifier interface {
	Send(ctx context.Context, p notify.Payload) error
}

// Runner sequences one backup pass: lock, clone-if-absent, archive,
// upload, rotate, notify. Steps run strictly one after another.
type Runner struct {
	cfg      config.Config
	source   Source
	uploader Uploader
	notifier Notifier
	engine   *rotation.Engine
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Runner.
type Option func(r *Runner) error

// WithSource sets the project source for the Runner.
func WithSource(s Source) Option {
	return func(r *Runner) error {
		r.source = s
		return nil
	}
}

// WithUploader sets the remote transport for the Runner.
func WithUploader(u Uploader) Option {
	return func(r *Runner) error {
		r.uploader = u
		return nil
	}
}

// WithNotifier sets the webhook notifier for the Runner.
func WithNotifier(n Notifier) Option {
	return func(r *Runner) error {
		r.notifier = n
		return nil
	}
}

// WithEngine sets the rotation engine for the Runner.
func WithEngine(e *rotation.Engine) Option {
	return func(r *Runner) error {
		r.engine = e
		return nil
	}
}

// WithLogger sets the event logger for the Runner.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) error {
		if logger == nil {
			return errors.New("nil logger")
		}
		r.logger = logger
		return nil
	}
}

// WithClock overrides the pass clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) error {
		r.now = now
		return nil
	}
}

// NewRunner creates a Runner for cfg.
func NewRunner(cfg config.Config, opts ...Option) (*Runner, error) {
	r := &Runner{
		cfg:    cfg,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.engine == nil {
		r.engine = rotation.NewEngine(
			rotation.NewFSRepository(cfg.ArchiveDir()),
			cfg.Retention,
			rotation.WithLogger(r.logger),
		)
	}
	return r, nil
}

// Run executes one pass. Upload and notification failures are logged
// and absorbed; clone and archive-creation failures abort the pass and
// propagate to the caller. If another pass holds the storage lock, Run
// returns ErrRunInProgress without doing anything.
func (r *Runner) Run(ctx context.Context) error {
	log := r.logger.Sugar()
	log.Info("Backup started")

	if err := os.MkdirAll(r.cfg.ArchiveDir(), 0755); err != nil {
		return fmt.Errorf("backup: create archive folder: %w", err)
	}

	lock := flock.New(filepath.Join(r.cfg.ArchiveDir(), lockName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("backup: acquire run lock: %w", err)
	}
	if !locked {
		return ErrRunInProgress
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if r.source != nil {
		if err := r.source.Ensure(ctx); err != nil {
			return err
		}
	}

	now := r.now()
	zipPath, size, err := archive.Create(r.cfg.ProjectDir, r.cfg.ArchiveDir(), r.cfg.ProjectName, now)
	if err != nil {
		return err
	}
	log.Infof("Created zip: %s (%s)", zipPath, humanize.Bytes(uint64(size)))

	if r.uploader != nil {
		if err := r.uploader.Upload(ctx, zipPath); err != nil {
			log.Errorf("Upload to remote failed: %v", err)
		} else {
			log.Infof("Uploaded to remote folder: %s", r.cfg.RcloneFolder)
		}
	}

	r.engine.Rotate(now)

	if r.cfg.EnableNotify && r.notifier != nil {
		payload := notify.NewPayload(r.cfg.ProjectName, filepath.Base(zipPath), r.now())
		if err := r.notifier.Send(ctx, payload); err != nil {
			var statusErr *notify.StatusError
			if errors.As(err, &statusErr) {
				log.Errorf("Webhook failed with status code %d", statusErr.Code)
			} else {
				log.Errorf("Notification error: %v", err)
			}
		} else {
			log.Info("Notification sent to webhook")
		}
	}

	log.Info("Backup completed successfully")
	return nil
}
