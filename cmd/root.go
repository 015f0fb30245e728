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
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/SohamA2002/Automated-Backup/pkg/config"
)

const (
	defaultRetentionDays   = 7
	defaultRetentionWeeks  = 4
	defaultRetentionMonths = 3
	defaultSchedule        = "0 2 * * *"
)

var defaultAddr = "unix://" + filepath.Join(os.TempDir(), "automated-backup.sock")

var (
	cfgFile string
	addr    string
	debug   bool
	logger  *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "automated-backup",
	Short: "Unattended project backup agent.",
	Long: `Automated backup agent: archives a project directory, uploads the
archive to a remote via rclone, prunes old archives by daily/weekly/monthly
retention windows and notifies a webhook.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cmd.Help(); err != nil {
			fmt.Println(err)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if debug {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.automated-backup.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug (default is false)")
	rootCmd.PersistentFlags().StringVar(&addr, "addr", defaultAddr, "listening address of agent control server.")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	newLogger := zap.NewProduction
	if debug {
		newLogger = zap.NewDevelopment
	}
	var err error
	if logger, err = newLogger(); err != nil {
		panic(err)
	}

	// Pick up a .env next to the working directory first, the way the
	// scheduled deployments ship their settings.
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded .env file")
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}

		// Search config in home directory with name ".automated-backup" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".automated-backup")
	}

	// Set default value for config
	viper.SetDefault("retention_days", defaultRetentionDays)
	viper.SetDefault("retention_weeks", defaultRetentionWeeks)
	viper.SetDefault("retention_months", defaultRetentionMonths)
	viper.SetDefault("enable_notify", false)
	viper.SetDefault("backup_schedule", defaultSchedule)

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logger.Info("Using config file: " + viper.ConfigFileUsed())
	}
}

// loadConfig resolves the immutable run configuration once.
func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}
