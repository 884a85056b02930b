package main

import (
	"fmt"
	"os"

	"github.com/eerojala/My-video-game-collection/config"
	"github.com/eerojala/My-video-game-collection/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "collection",
	Short: "Video game collection API",
	Long: `REST API for a video game catalog of platforms and games, with user
accounts and per-user game collections.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, adminCmd)
}

// setup loads the configuration and the logger every command starts from.
func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Release: cfg.Release(),
	})
	return cfg, log, nil
}
