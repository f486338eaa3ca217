package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mdewey/buywrite/internal/app"
	"github.com/mdewey/buywrite/internal/logger"
	"github.com/mdewey/buywrite/internal/metrics"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Scan on an interval and expose Prometheus metrics",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	a, err := buildApp(cfg, log, true, reg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var srv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, reg.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		srv = &http.Server{Addr: cfg.Watch.ListenAddr, Handler: mux}
		go func() {
			log.Info("metrics server listening",
				zap.String("addr", cfg.Watch.ListenAddr),
				zap.String("path", cfg.Metrics.Path))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	// Stop the loop on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info("shutdown signal received")
		cancel()
	}()

	err = a.Watch(ctx, app.ScanOptions{})

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			log.Error("metrics server shutdown", zap.Error(serr))
		}
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
