// This file is part of automated-backup
//
// Copyright (C) 2026  Automated Backup Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>

package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SohamA2002/Automated-Backup/pkg/backup"
	"github.com/SohamA2002/Automated-Backup/pkg/backuplog"
	"github.com/SohamA2002/Automated-Backup/pkg/config"
	"github.com/SohamA2002/Automated-Backup/pkg/notify"
	"github.com/SohamA2002/Automated-Backup/pkg/source"
	"github.com/SohamA2002/Automated-Backup/pkg/transport"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one backup pass immediately.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			logger.Fatal("invalid configuration", zap.Error(err))
		}

		runner, eventLog, err := newRunner(cfg)
		if err != nil {
			logger.Fatal("failed to create backup runner", zap.Error(err))
		}
		defer eventLog.Sync()

		if err := runner.Run(context.Background()); err != nil {
			if errors.Is(err, backup.ErrRunInProgress) {
				eventLog.Sugar().Info("Another backup run is in progress, skipping")
				return
			}
			eventLog.Sugar().Errorf("Backup failed: %v", err)
			os.Exit(1)
		}
	},
}

// newRunner wires the collaborators for one pass from cfg.
func newRunner(cfg config.Config) (*backup.Runner, *zap.Logger, error) {
	eventLog, err := backuplog.New(cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}

	opts := []backup.Option{
		backup.WithLogger(eventLog),
		backup.WithSource(source.NewGit(cfg.RepoURL, cfg.ProjectDir, eventLog)),
	}
	if cfg.RcloneRemote != "" {
		opts = append(opts, backup.WithUploader(transport.NewRclone(cfg.RcloneRemote, cfg.RcloneFolder, transport.WithLogger(eventLog))))
	}
	if cfg.NotifyURL != "" {
		webhook, err := notify.NewWebhook(cfg.NotifyURL, notify.WithLogger(eventLog))
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, backup.WithNotifier(webhook))
	}

	runner, err := backup.NewRunner(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return runner, eventLog, nil
}

func init() {
	rootCmd.AddCommand(runCmd)
}
