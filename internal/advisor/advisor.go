// Package advisor asks an LLM to narrate a scan's results: which buy-write
// candidates look strongest and what risks the raw numbers hide.
package advisor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mdewey/buywrite/internal/config"
	"github.com/mdewey/buywrite/internal/report"
)

// Advisor produces commentary for a finished scan.
type Advisor interface {
	Name() string
	Advise(ctx context.Context, summary report.Summary, rows []report.Row) (string, error)
}

// New builds the configured advisor, or (nil, nil) when no provider is set.
func New(cfg config.AdvisorConfig) (Advisor, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "claude":
		return newClaude(cfg.Claude.APIKey, cfg.Claude.Model, cfg.TopRows)
	case "openai":
		return newOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.TopRows)
	default:
		return nil, fmt.Errorf("unknown advisor provider: %s", cfg.Provider)
	}
}

const systemPrompt = `You are an options income analyst. You are given the ` +
	`output of a covered-call dividend-capture scan: deep in-the-money calls ` +
	`on dividend payers, with the annualized return of holding each position ` +
	`through N ex-dividend dates. Comment on the strongest candidates, note ` +
	`anything suspicious (stale quotes, thin premiums, returns that depend ` +
	`on many captures), and keep it under 300 words. This is not investment ` +
	`advice and you should say so.`

// buildPrompt renders the summary and the top rows by best return as the
// user message.
func buildPrompt(summary report.Summary, rows []report.Row, topRows int) string {
	if topRows <= 0 {
		topRows = 10
	}

	sorted := make([]report.Row, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].BestReturn() > sorted[j].BestReturn()
	})
	if len(sorted) > topRows {
		sorted = sorted[:topRows]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scan summary: %d symbols, %d eligible contracts, mean best return %.4f, median %.4f, p90 %.4f.\n\n",
		summary.Symbols, summary.Rows, summary.MeanReturn, summary.MedianReturn, summary.P90Return)
	b.WriteString("Top candidates (annualized return after 1..N dividend captures):\n")
	for i := range sorted {
		r := &sorted[i]
		returns := make([]string, len(r.DividendReturns))
		for j, v := range r.DividendReturns {
			returns[j] = fmt.Sprintf("%.4f", v)
		}
		fmt.Fprintf(&b, "%s %s strike=%.2f exp=%s net=%.2f premium=%.2f insurance=%.3f returns=[%s]\n",
			r.Symbol, r.ContractSymbol, r.StrikePrice, r.ExpirationDate,
			r.Net, r.Premium, r.Insurance, strings.Join(returns, " "))
	}
	return b.String()
}
