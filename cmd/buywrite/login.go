package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdewey/buywrite/internal/logger"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize with Schwab and cache the OAuth tokens",
	Long: `login opens the Schwab consent page in a browser and waits for the
redirect on the configured loopback address. The resulting tokens are cached
locally so scans can refresh them without another browser round trip.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	manager, err := newAuthManager(cfg, log, true)
	if err != nil {
		return err
	}

	if err := manager.Authorize(cmd.Context()); err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	fmt.Println("login successful, tokens cached")
	return nil
}
