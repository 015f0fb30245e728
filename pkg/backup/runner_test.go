package backup

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/SohamA2002/Automated-Backup/pkg/archive"
	"github.com/SohamA2002/Automated-Backup/pkg/config"
	"github.com/SohamA2002/Automated-Backup/pkg/notify"
	"github.com/SohamA2002/Automated-Backup/pkg/rotation"
)

type fakeSource struct {
	called bool
	err    error
}

func (f *fakeSource) Ensure(ctx context.Context) error {
	f.called = true
	return f.err
}

type fakeUploader struct {
	paths []string
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, path string) error {
	f.paths = append(f.paths, path)
	return f.err
}

type fakeNotifier struct {
	payloads []notify.Payload
	err      error
}

func (f *fakeNotifier) Send(ctx context.Context, p notify.Payload) error {
	f.payloads = append(f.payloads, p)
	return f.err
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	projectDir := filepath.Join(t.TempDir(), "myproject")
	require.NoError(t, os.MkdirAll(projectDir, 0755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(projectDir, "app.py"), []byte("pass\n"), 0644))

	return config.Config{
		ProjectName:  "myproject",
		ProjectDir:   projectDir,
		BackupRoot:   t.TempDir(),
		RcloneRemote: "gdrive",
		RcloneFolder: "backups",
		NotifyURL:    "http://127.0.0.1/notify",
		EnableNotify: true,
		Retention:    rotation.Policy{Days: 7, Weeks: 4, Months: 3},
	}
}

func logMessages(logs *observer.ObservedLogs) []string {
	var msgs []string
	for _, entry := range logs.All() {
		msgs = append(msgs, entry.Message)
	}
	return msgs
}

func containsPrefix(msgs []string, prefix string) bool {
	for _, m := range msgs {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

func TestRunnerRun(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2025, 7, 21, 2, 0, 0, 0, time.Local)

	// A stale Thursday archive the rotation step must remove.
	staleAt := time.Date(2025, 7, 10, 2, 0, 0, 0, time.Local)
	staleDir := filepath.Join(cfg.ArchiveDir(), "2025", "07", "10")
	require.NoError(t, os.MkdirAll(staleDir, 0755))
	stale := filepath.Join(staleDir, archive.Name("myproject", staleAt))
	require.NoError(t, ioutil.WriteFile(stale, []byte("old"), 0644))

	src := &fakeSource{}
	up := &fakeUploader{}
	not := &fakeNotifier{}

	core, logs := observer.New(zapcore.InfoLevel)
	runner, err := NewRunner(cfg,
		WithLogger(zap.New(core)),
		WithSource(src),
		WithUploader(up),
		WithNotifier(not),
		WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	require.NoError(t, runner.Run(context.Background()))

	wantZip := filepath.Join(cfg.ArchiveDir(), "2025", "07", "21", "myproject_20250721_020000.zip")
	assert.FileExists(t, wantZip)
	assert.True(t, src.called)
	assert.Equal(t, []string{wantZip}, up.paths)
	assert.NoFileExists(t, stale)

	require.Len(t, not.payloads, 1)
	assert.Equal(t, "myproject", not.payloads[0].Project)
	assert.Equal(t, "myproject_20250721_020000.zip", not.payloads[0].Filename)
	assert.Equal(t, notify.StatusBackupSuccessful, not.payloads[0].Status)
	assert.Equal(t, "2025-07-21 02:00:00", not.payloads[0].Date)

	msgs := logMessages(logs)
	assert.Contains(t, msgs, "Backup started")
	assert.Contains(t, msgs, "Uploaded to remote folder: backups")
	assert.Contains(t, msgs, "Deleted 1 old daily backup(s)")
	assert.Contains(t, msgs, "Notification sent to webhook")
	assert.Contains(t, msgs, "Backup completed successfully")
}

func TestRunnerRunUploadFailureIsNotFatal(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2025, 7, 21, 2, 0, 0, 0, time.Local)

	staleAt := time.Date(2025, 7, 10, 2, 0, 0, 0, time.Local)
	require.NoError(t, os.MkdirAll(cfg.ArchiveDir(), 0755))
	stale := filepath.Join(cfg.ArchiveDir(), archive.Name("myproject", staleAt))
	require.NoError(t, ioutil.WriteFile(stale, []byte("old"), 0644))

	up := &fakeUploader{err: errors.New("remote unreachable")}
	not := &fakeNotifier{}

	core, logs := observer.New(zapcore.InfoLevel)
	runner, err := NewRunner(cfg,
		WithLogger(zap.New(core)),
		WithUploader(up),
		WithNotifier(not),
		WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	// The pass still completes: rotation runs, notification goes out.
	require.NoError(t, runner.Run(context.Background()))
	assert.NoFileExists(t, stale)
	assert.Len(t, not.payloads, 1)

	msgs := logMessages(logs)
	assert.True(t, containsPrefix(msgs, "Upload to remote failed"))
	assert.Contains(t, msgs, "Backup completed successfully")
}

func TestRunnerRunNotifyFailuresAreLoggedOnly(t *testing.T) {
	tests := []struct {
		name       string
		notifyErr  error
		wantPrefix string
	}{
		{"non-200 response", &notify.StatusError{Code: 503}, "Webhook failed with status code 503"},
		{"transport error", errors.New("connection refused"), "Notification error:"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(t)
			core, logs := observer.New(zapcore.InfoLevel)
			runner, err := NewRunner(cfg,
				WithLogger(zap.New(core)),
				WithNotifier(&fakeNotifier{err: tc.notifyErr}),
			)
			require.NoError(t, err)

			require.NoError(t, runner.Run(context.Background()))

			msgs := logMessages(logs)
			assert.True(t, containsPrefix(msgs, tc.wantPrefix), "missing %q in %v", tc.wantPrefix, msgs)
			assert.Contains(t, msgs, "Backup completed successfully")
		})
	}
}

func TestRunnerRunSourceFailureIsFatal(t *testing.T) {
	cfg := testConfig(t)
	not := &fakeNotifier{}

	runner, err := NewRunner(cfg,
		WithSource(&fakeSource{err: errors.New("clone failed")}),
		WithNotifier(not),
	)
	require.NoError(t, err)

	require.Error(t, runner.Run(context.Background()))
	// The sequence aborted before archiving and notification.
	assert.Empty(t, not.payloads)
}

func TestRunnerRunArchiveFailureIsFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.ProjectDir = filepath.Join(cfg.BackupRoot, "does-not-exist")

	runner, err := NewRunner(cfg)
	require.NoError(t, err)

	assert.Error(t, runner.Run(context.Background()))
}

func TestRunnerRunLockHeld(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.ArchiveDir(), 0755))

	other := flock.New(filepath.Join(cfg.ArchiveDir(), lockName))
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer other.Unlock()

	runner, err := NewRunner(cfg)
	require.NoError(t, err)

	err = runner.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)
}
