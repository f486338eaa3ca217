package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mdewey/buywrite/internal/app"
	"github.com/mdewey/buywrite/internal/logger"
)

var (
	scanSnapshot     string
	scanFromSnapshot string
	scanOutDir       string
	scanAdvise       bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [symbols...]",
	Short: "Run one scan over the watchlist and write the return report",
	Long: `scan fetches quotes and option chains for the configured watchlist
(or the symbols given as arguments), runs the eligibility filter and return
calculator, and writes the report as CSV and JSON lines.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanSnapshot, "snapshot", "", "also store the raw quotes and chains at this path")
	scanCmd.Flags().StringVar(&scanFromSnapshot, "from-snapshot", "", "replay a stored snapshot instead of calling the API")
	scanCmd.Flags().StringVarP(&scanOutDir, "out", "o", "", "output directory (overrides config)")
	scanCmd.Flags().BoolVar(&scanAdvise, "advise", false, "ask the configured advisor to comment on the results")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Watchlist = args
	}

	live := scanFromSnapshot == ""
	a, err := buildApp(cfg, log, live, nil)
	if err != nil {
		return err
	}

	res, err := a.Scan(cmd.Context(), app.ScanOptions{
		SnapshotPath: scanSnapshot,
		FromSnapshot: scanFromSnapshot,
		OutDir:       scanOutDir,
		Advise:       scanAdvise,
	})
	if err != nil {
		return err
	}

	log.Info("report written",
		zap.String("csv", res.CSVPath),
		zap.String("jsonl", res.JSONLPath))

	if res.Advice != "" {
		fmt.Println(res.Advice)
	}
	return nil
}
