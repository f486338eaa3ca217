// Package app wires the scanner together: it pulls quotes and option chains
// for the watchlist, runs the eligibility filter and return calculator, and
// writes the report wherever it is configured to go.
package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mdewey/buywrite/internal/advisor"
	"github.com/mdewey/buywrite/internal/archive"
	"github.com/mdewey/buywrite/internal/config"
	"github.com/mdewey/buywrite/internal/core"
	"github.com/mdewey/buywrite/internal/dates"
	"github.com/mdewey/buywrite/internal/marketdata"
	"github.com/mdewey/buywrite/internal/metrics"
	"github.com/mdewey/buywrite/internal/report"
	"github.com/mdewey/buywrite/internal/returns"
	"github.com/mdewey/buywrite/internal/snapshot"
)

// chainWorkers bounds concurrent chain fetches; Schwab rate-limits
// aggressively.
const chainWorkers = 4

// MarketData is the slice of the Schwab client the scanner needs.
type MarketData interface {
	Quotes(ctx context.Context, symbols []string) (marketdata.QuoteResponse, error)
	Chain(ctx context.Context, symbol string) (*marketdata.Chain, error)
}

// App is the scanner orchestrator.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	market  MarketData
	filter  returns.Filter
	metrics *metrics.Registry
	store   archive.Store
	adv     advisor.Advisor

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// New creates an App. The market-data source, archive, and advisor are
// attached with the Set methods; a nil logger is replaced with a no-op.
func New(cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		filter: returns.Filter{
			MinPremium:          cfg.Filter.MinPremium,
			MinDaysToExpiration: cfg.Filter.MinDaysToExpiration,
			StrikeDiscount:      cfg.Filter.StrikeDiscount,
		},
	}
}

// SetMarketData attaches the live data source. Snapshot replays work
// without one.
func (a *App) SetMarketData(m MarketData) { a.market = m }

// SetMetrics attaches the Prometheus registry.
func (a *App) SetMetrics(r *metrics.Registry) { a.metrics = r }

// SetArchive attaches the cold-storage backend.
func (a *App) SetArchive(s archive.Store) { a.store = s }

// SetAdvisor attaches the LLM commentator.
func (a *App) SetAdvisor(adv advisor.Advisor) { a.adv = adv }

// ScanOptions control a single scan run.
type ScanOptions struct {
	// SnapshotPath, when set, stores the fetched raw data as JSON lines.
	SnapshotPath string
	// FromSnapshot replays a stored snapshot instead of hitting the API.
	FromSnapshot string
	// OutDir overrides the configured data directory.
	OutDir string
	// Advise asks the configured advisor for commentary.
	Advise bool
}

// ScanResult is what one scan produced.
type ScanResult struct {
	Rows      []report.Row
	Summary   report.Summary
	CSVPath   string
	JSONLPath string
	Advice    string
}

// Scan runs one full pass over the watchlist.
func (a *App) Scan(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	started := time.Now()
	res, err := a.scan(ctx, opts)
	if a.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		a.metrics.RecordScan(status, time.Since(started).Seconds())
	}
	return res, err
}

func (a *App) scan(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	asOf := dates.Today()

	var records []snapshot.Record
	var err error
	if opts.FromSnapshot != "" {
		records, err = snapshot.Read(opts.FromSnapshot)
		if err != nil {
			return nil, core.WrapError(core.ErrSnapshotInvalid, err)
		}
		a.logger.Info("replaying snapshot",
			zap.String("path", opts.FromSnapshot),
			zap.Int("symbols", len(records)))
	} else {
		records, err = a.fetch(ctx)
		if err != nil {
			return nil, err
		}
	}

	if opts.SnapshotPath != "" && opts.FromSnapshot == "" {
		if err := snapshot.Write(opts.SnapshotPath, records); err != nil {
			return nil, err
		}
		a.logger.Info("snapshot written", zap.String("path", opts.SnapshotPath))
		if err := a.archiveSnapshot(ctx, opts.SnapshotPath, asOf); err != nil {
			return nil, err
		}
	}

	var rows []report.Row
	for i := range records {
		rec := &records[i]
		if !rec.Quote.Fundamental.PaysDividend() {
			a.logger.Debug("no dividend schedule", zap.String("symbol", rec.Quote.Symbol))
			continue
		}
		symbolRows, stats := report.BuildWithTrace(rec.Quote, &rec.Chain, a.filter, a.cfg.Dividends.MaxCaptures, asOf, a.traceEvaluation)
		if a.metrics != nil {
			a.metrics.RecordContracts(stats.Contracts, stats.Rows, stats.Skipped)
		}
		a.logger.Debug("symbol scanned",
			zap.String("symbol", rec.Quote.Symbol),
			zap.Int("contracts", stats.Contracts),
			zap.Int("rows", stats.Rows))
		rows = append(rows, symbolRows...)
	}

	summary := report.Summarize(rows)
	if a.metrics != nil {
		a.metrics.SetBestReturn(summary.BestReturn)
	}

	res := &ScanResult{Rows: rows, Summary: summary}
	if err := a.writeReport(ctx, res, opts, asOf); err != nil {
		return nil, err
	}

	a.logger.Info("scan complete",
		zap.Int("symbols", summary.Symbols),
		zap.Int("rows", summary.Rows),
		zap.Float64("best_return", summary.BestReturn),
		zap.String("best_contract", summary.BestContract))

	if opts.Advise && a.adv != nil {
		advice, err := a.adv.Advise(ctx, summary, rows)
		if err != nil {
			// Advice is garnish; the scan already succeeded.
			a.logger.Warn("advisor failed", zap.Error(err))
		} else {
			res.Advice = advice
		}
	}

	return res, nil
}

// traceEvaluation logs the event-date table behind one return computation.
func (a *App) traceEvaluation(contractSymbol string, ev returns.Evaluation) {
	if !a.logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	a.logger.Debug("return evaluated",
		zap.String("contract", contractSymbol),
		zap.Int("dividends", ev.NDividends),
		zap.Time("next_div_ex", ev.NextDivExDate),
		zap.Time("final_div_ex", ev.FinalDivExDate),
		zap.Time("next_event", ev.NextEventDate),
		zap.Int("days_to_next_event", ev.DaysToNextEvent),
		zap.Float64("value", ev.Value),
		zap.Bool("ok", ev.OK))
}

// fetch pulls quotes in one batch, then chains with a bounded worker pool.
func (a *App) fetch(ctx context.Context) ([]snapshot.Record, error) {
	if a.market == nil {
		return nil, fmt.Errorf("no market data source configured")
	}
	symbols := a.cfg.Watchlist
	if len(symbols) == 0 {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("watchlist is empty"))
	}
	if a.metrics != nil {
		a.metrics.SetWatchlistSize(len(symbols))
	}

	quotes, err := a.market.Quotes(ctx, symbols)
	if err != nil {
		return nil, core.WrapError(core.ErrQuoteFailed, err)
	}

	type result struct {
		record snapshot.Record
		err    error
		skip   bool
	}
	results := make([]result, len(symbols))

	var wg sync.WaitGroup
	sem := make(chan struct{}, chainWorkers)
	for i, symbol := range symbols {
		quote, ok := quotes[symbol]
		if !ok {
			a.logger.Warn("no quote returned", zap.String("symbol", symbol))
			results[i].skip = true
			continue
		}
		wg.Add(1)
		go func(i int, symbol string, quote marketdata.Quote) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			chain, err := a.market.Chain(ctx, symbol)
			if err != nil {
				results[i].err = fmt.Errorf("chain for %s: %w", symbol, err)
				return
			}
			results[i].record = snapshot.Record{Quote: quote, Chain: *chain}
		}(i, symbol, quote)
	}
	wg.Wait()

	records := make([]snapshot.Record, 0, len(symbols))
	for _, r := range results {
		if r.skip {
			continue
		}
		if r.err != nil {
			return nil, core.WrapError(core.ErrChainFailed, r.err)
		}
		records = append(records, r.record)
	}
	return records, nil
}

func (a *App) writeReport(ctx context.Context, res *ScanResult, opts ScanOptions, asOf time.Time) error {
	dir := opts.OutDir
	if dir == "" {
		dir = a.cfg.Data.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	day := asOf.Format(dates.Format)
	res.CSVPath = filepath.Join(dir, "returns-"+day+".csv")
	res.JSONLPath = filepath.Join(dir, "returns-"+day+".jsonl")

	// Rows sorted best-first read better in the raw files too.
	sort.SliceStable(res.Rows, func(i, j int) bool {
		return res.Rows[i].BestReturn() > res.Rows[j].BestReturn()
	})

	var csvBuf, jsonlBuf bytes.Buffer
	if err := report.WriteCSV(&csvBuf, res.Rows); err != nil {
		return err
	}
	if err := report.WriteJSONL(&jsonlBuf, res.Rows); err != nil {
		return err
	}
	if err := os.WriteFile(res.CSVPath, csvBuf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	if err := os.WriteFile(res.JSONLPath, jsonlBuf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing jsonl: %w", err)
	}

	if a.store != nil {
		if err := a.store.Put(ctx, archive.ReportKey(asOf, "csv"), csvBuf.Bytes()); err != nil {
			return core.WrapError(core.ErrArchiveFailed, err)
		}
		if err := a.store.Put(ctx, archive.ReportKey(asOf, "jsonl"), jsonlBuf.Bytes()); err != nil {
			return core.WrapError(core.ErrArchiveFailed, err)
		}
	}
	return nil
}

func (a *App) archiveSnapshot(ctx context.Context, path string, asOf time.Time) error {
	if a.store == nil {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := a.store.Put(ctx, archive.SnapshotKey(asOf), data); err != nil {
		return core.WrapError(core.ErrArchiveFailed, err)
	}
	return nil
}

// Watch runs Scan on the configured interval until the context is canceled.
// The first scan happens immediately.
func (a *App) Watch(ctx context.Context, opts ScanOptions) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("watch already running")
	}
	a.running = true
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	a.logger.Info("watch starting",
		zap.Int("watchlist", len(a.cfg.Watchlist)),
		zap.Duration("interval", a.cfg.Watch.Interval))

	if _, err := a.Scan(ctx, opts); err != nil {
		a.logger.Error("scan failed", zap.Error(err))
	}

	ticker := time.NewTicker(a.cfg.Watch.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("watch shutting down")
			return ctx.Err()
		case <-ticker.C:
			if _, err := a.Scan(ctx, opts); err != nil {
				a.logger.Error("scan failed", zap.Error(err))
			}
		}
	}
}

// Stop cancels a running Watch loop.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}
