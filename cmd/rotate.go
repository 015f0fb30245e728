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
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SohamA2002/Automated-Backup/pkg/backuplog"
	"github.com/SohamA2002/Automated-Backup/pkg/rotation"
)

var dryRun bool

// rotateCmd represents the rotate command
var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Prune old archives without taking a new backup.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			logger.Fatal("invalid configuration", zap.Error(err))
		}

		eventLog, err := backuplog.New(cfg.LogFile)
		if err != nil {
			logger.Fatal("failed to open event log", zap.Error(err))
		}
		defer eventLog.Sync()

		engine := rotation.NewEngine(
			rotation.NewFSRepository(cfg.ArchiveDir()),
			cfg.Retention,
			rotation.WithLogger(eventLog),
			rotation.WithDryRun(dryRun),
		)
		engine.Rotate(time.Now())
	},
}

func init() {
	rotateCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "report deletions without removing anything")
	rootCmd.AddCommand(rotateCmd)
}
