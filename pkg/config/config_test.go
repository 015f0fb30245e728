package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SohamA2002/Automated-Backup/pkg/rotation"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.Set("project_name", "MyProject")
	v.Set("project_dir", "/srv/myproject")
	v.Set("backup_dir", "/var/backups")
	v.Set("retention_days", 7)
	v.Set("retention_weeks", 4)
	v.Set("retention_months", 3)
	return v
}

func TestLoad(t *testing.T) {
	v := newViper()
	v.Set("github_repo_url", "https://github.com/example/myproject.git")
	v.Set("log_file", "/var/log/backup.log")
	v.Set("rclone_remote", "gdrive")
	v.Set("rclone_folder", "backups")
	v.Set("notify_url", "https://hooks.example.com/backup")
	v.Set("enable_notify", true)
	v.Set("backup_schedule", "30 3 * * *")

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "MyProject", cfg.ProjectName)
	assert.Equal(t, "/srv/myproject", cfg.ProjectDir)
	assert.Equal(t, "/var/backups", cfg.BackupRoot)
	assert.Equal(t, "https://github.com/example/myproject.git", cfg.RepoURL)
	assert.Equal(t, "/var/log/backup.log", cfg.LogFile)
	assert.Equal(t, "gdrive", cfg.RcloneRemote)
	assert.Equal(t, "backups", cfg.RcloneFolder)
	assert.Equal(t, "https://hooks.example.com/backup", cfg.NotifyURL)
	assert.True(t, cfg.EnableNotify)
	assert.Equal(t, "30 3 * * *", cfg.Schedule)
	assert.Equal(t, rotation.Policy{Days: 7, Weeks: 4, Months: 3}, cfg.Retention)
	assert.Equal(t, filepath.Join("/var/backups", "MyProject"), cfg.ArchiveDir())
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *viper.Viper)
	}{
		{"missing project name", func(v *viper.Viper) { v.Set("project_name", "") }},
		{"missing project dir", func(v *viper.Viper) { v.Set("project_dir", "") }},
		{"missing backup dir", func(v *viper.Viper) { v.Set("backup_dir", "") }},
		{"negative retention", func(v *viper.Viper) { v.Set("retention_days", -1) }},
		{"notify enabled without url", func(v *viper.Viper) { v.Set("enable_notify", true) }},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			v := newViper()
			tc.mutate(v)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}
