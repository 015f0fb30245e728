package config

import (
	"errors"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/SohamA2002/Automated-Backup/pkg/rotation"
)

// Config carries every knob the agent reads, resolved once at startup
// and passed by value into the components. Nothing reads the
// environment after Load returns.
type Config struct {
	// ProjectName prefixes archive file names and the archive subfolder.
	ProjectName string
	// ProjectDir is the directory that gets archived.
	ProjectDir string
	// BackupRoot is the directory under which the per-project archive
	// tree <project>/<YYYY>/<MM>/<DD>/ lives.
	BackupRoot string
	// RepoURL, when set, is cloned into ProjectDir if the directory is
	// missing.
	RepoURL string

	// LogFile is the append-only event log; empty logs to stdout only.
	LogFile string

	RcloneRemote string
	RcloneFolder string

	NotifyURL    string
	EnableNotify bool

	// Schedule is the cron expression for agent mode.
	Schedule string

	Retention rotation.Policy
}

// Load builds a Config from the given viper instance. Callers set
// defaults and bind the environment before calling Load.
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		ProjectName:  v.GetString("project_name"),
		ProjectDir:   v.GetString("project_dir"),
		BackupRoot:   v.GetString("backup_dir"),
		RepoURL:      v.GetString("github_repo_url"),
		LogFile:      v.GetString("log_file"),
		RcloneRemote: v.GetString("rclone_remote"),
		RcloneFolder: v.GetString("rclone_folder"),
		NotifyURL:    v.GetString("notify_url"),
		EnableNotify: v.GetBool("enable_notify"),
		Schedule:     v.GetString("backup_schedule"),
		Retention: rotation.Policy{
			Days:   v.GetInt("retention_days"),
			Weeks:  v.GetInt("retention_weeks"),
			Months: v.GetInt("retention_months"),
		},
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if c.ProjectName == "" {
		return errors.New("config: PROJECT_NAME is required")
	}
	if c.ProjectDir == "" {
		return errors.New("config: PROJECT_DIR is required")
	}
	if c.BackupRoot == "" {
		return errors.New("config: BACKUP_DIR is required")
	}
	if c.Retention.Days < 0 || c.Retention.Weeks < 0 || c.Retention.Months < 0 {
		return errors.New("config: retention windows must not be negative")
	}
	if c.EnableNotify && c.NotifyURL == "" {
		return errors.New("config: ENABLE_NOTIFY is set but NOTIFY_URL is empty")
	}
	return nil
}

// ArchiveDir is the project's own archive tree root.
func (c Config) ArchiveDir() string {
	return filepath.Join(c.BackupRoot, c.ProjectName)
}
