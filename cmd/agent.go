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
	"net/http"
	"time"

	"github.com/jpillora/backoff"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SohamA2002/Automated-Backup/pkg/backup"
	"github.com/SohamA2002/Automated-Backup/pkg/rotation"
	"github.com/SohamA2002/Automated-Backup/pkg/server"
)

// agentCmd represents the agent command
var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the backup agent: scheduled passes plus a control server.",
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

		s, err := server.New(
			server.WithAddr(addr),
			server.WithRunner(runner),
			server.WithRepository(rotation.NewFSRepository(cfg.ArchiveDir())),
			server.WithLogger(eventLog),
		)
		if err != nil {
			logger.Fatal("failed to create control server", zap.Error(err))
		}

		c := cron.New()
		if _, err := c.AddFunc(cfg.Schedule, func() {
			if err := runner.Run(context.Background()); err != nil {
				if errors.Is(err, backup.ErrRunInProgress) {
					eventLog.Sugar().Info("Another backup run is in progress, skipping scheduled run")
					return
				}
				eventLog.Sugar().Errorf("Scheduled backup failed: %v", err)
			}
		}); err != nil {
			logger.Fatal("invalid backup schedule", zap.Error(err), zap.String("schedule", cfg.Schedule))
		}

		g, ctx := errgroup.WithContext(context.Background())

		g.Go(func() error {
			c.Start()
			<-ctx.Done()
			stopCtx := c.Stop()
			<-stopCtx.Done()
			return nil
		})

		g.Go(func() error {
			b := &backoff.Backoff{Jitter: true}
			for {
				err := s.Run()
				if errors.Is(err, http.ErrServerClosed) {
					return err
				}
				logger.Error("control server exited, restarting", zap.Error(err))
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(b.Duration()):
				}
			}
		})

		if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("agent stopped", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(agentCmd)
}
