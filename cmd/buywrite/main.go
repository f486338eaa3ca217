package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mdewey/buywrite/internal/advisor"
	"github.com/mdewey/buywrite/internal/app"
	"github.com/mdewey/buywrite/internal/archive"
	"github.com/mdewey/buywrite/internal/config"
	"github.com/mdewey/buywrite/internal/metrics"
	"github.com/mdewey/buywrite/internal/schwab"
	"github.com/mdewey/buywrite/internal/schwab/auth"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "buywrite",
	Short: "buywrite - covered-call dividend-capture scanner",
	Long: `buywrite scans option chains for deep in-the-money covered calls on
dividend payers and reports the annualized return of holding each position
through its coming ex-dividend dates.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads and validates the config file, falling back to defaults
// when no file is given.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// newAuthManager wires the token store and OAuth manager from config.
func newAuthManager(cfg *config.Config, log *zap.Logger, interactive bool) (*auth.Manager, error) {
	store, err := auth.DefaultStore()
	if err != nil {
		return nil, fmt.Errorf("opening token store: %w", err)
	}
	return auth.NewManager(auth.Config{
		AppKey:      cfg.Schwab.AppKey,
		AppSecret:   cfg.Schwab.AppSecret,
		RedirectURL: cfg.Schwab.RedirectURL,
		Interactive: interactive,
	}, store, log), nil
}

// buildApp assembles the scanner with every configured component. When live
// is false no API client is attached, which is enough for snapshot replays.
// A non-nil registry instruments both the scan loop and the API client.
func buildApp(cfg *config.Config, log *zap.Logger, live bool, reg *metrics.Registry) (*app.App, error) {
	a := app.New(cfg, log)
	if reg != nil {
		a.SetMetrics(reg)
	}

	if live {
		if err := cfg.RequireCredentials(); err != nil {
			return nil, err
		}
		manager, err := newAuthManager(cfg, log, false)
		if err != nil {
			return nil, err
		}
		opts := []schwab.Option{schwab.WithTimeout(cfg.Schwab.Timeout)}
		if cfg.Schwab.BaseURL != "" {
			opts = append(opts, schwab.WithBaseURL(cfg.Schwab.BaseURL))
		}
		if reg != nil {
			opts = append(opts, schwab.WithRecorder(reg))
		}
		a.SetMarketData(schwab.NewClient(manager, log, opts...))
	}

	store, err := archive.New(archive.Options{
		Kind: cfg.Archive.Kind,
		Path: cfg.Archive.Path,
		S3: archive.S3Options{
			Bucket:    cfg.Archive.S3.Bucket,
			Endpoint:  cfg.Archive.S3.Endpoint,
			Region:    cfg.Archive.S3.Region,
			AccessKey: cfg.Archive.S3.AccessKey,
			SecretKey: cfg.Archive.S3.SecretKey,
			Prefix:    cfg.Archive.S3.Prefix,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("configuring archive: %w", err)
	}
	if store != nil {
		a.SetArchive(store)
	}

	adv, err := advisor.New(cfg.Advisor)
	if err != nil {
		return nil, fmt.Errorf("configuring advisor: %w", err)
	}
	if adv != nil {
		a.SetAdvisor(adv)
	}

	return a, nil
}
