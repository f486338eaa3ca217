// Package report turns scanned option chains into per-contract return rows
// and renders them as CSV or JSON lines, matching the schema of the daily
// returns exports.
package report

import (
	"sort"
	"strconv"
	"time"

	"github.com/mdewey/buywrite/internal/dates"
	"github.com/mdewey/buywrite/internal/marketdata"
	"github.com/mdewey/buywrite/internal/returns"
)

// Row is one eligible contract with its buy-write metrics and the annualized
// return vector for 1..N captured dividends.
type Row struct {
	Symbol         string  `json:"symbol"`
	CompanyName    string  `json:"company_name"`
	ContractSymbol string  `json:"contract_symbol"`
	Last           float64 `json:"last"`
	Net            float64 `json:"net"`
	StrikePrice    float64 `json:"strike_price"`
	ExpirationDate string  `json:"expiration_date"`
	Insurance      float64 `json:"insurance"`
	Premium        float64 `json:"premium"`
	DividendAmount float64 `json:"dividend_amount"`
	DividendExDate string  `json:"dividend_ex_date"`
	// DividendReturns[i] is the annualized return after capturing i+1
	// dividends; 0 marks a capture count that was not computable.
	DividendReturns    []float64 `json:"dividend_returns"`
	ReturnAfterLastDiv float64   `json:"return_after_last_div"`
	Bid                float64   `json:"bid"`
	Mid                float64   `json:"mid"`
	Ask                float64   `json:"ask"`
	PreviousDate       string    `json:"previous_date"`
}

// BestReturn is the largest entry of the return vector, or 0 when nothing
// was computable.
func (r *Row) BestReturn() float64 {
	return bestOf(r.DividendReturns)
}

// Stats counts what Build saw, for logging and metrics.
type Stats struct {
	Contracts int
	Rows      int
	Skipped   map[string]int
}

// Build walks every call contract on the chain, gates it through the
// eligibility filter, and computes the return vector for the survivors.
// Expirations and strikes are visited in sorted order so output is
// deterministic. A zero asOf means today.
func Build(q marketdata.Quote, chain *marketdata.Chain, filter returns.Filter, maxDividends int, asOf time.Time) ([]Row, Stats) {
	return BuildWithTrace(q, chain, filter, maxDividends, asOf, nil)
}

// BuildWithTrace is Build with a hook that receives every return evaluation,
// for debug logging of the underlying event dates.
func BuildWithTrace(q marketdata.Quote, chain *marketdata.Chain, filter returns.Filter, maxDividends int, asOf time.Time, trace func(contractSymbol string, ev returns.Evaluation)) ([]Row, Stats) {
	stats := Stats{Skipped: make(map[string]int)}
	if asOf.IsZero() {
		asOf = dates.Today()
	}
	equityPrice := q.Quote.LastPrice
	previousDate := dates.PreviousTradingDay(asOf).Format(dates.Format)

	var rows []Row
	for _, expKey := range sortedKeys(chain.CallExpDateMap) {
		expiration, err := marketdata.ExpirationFromKey(expKey)
		if err != nil {
			continue
		}
		strikes := chain.CallExpDateMap[expKey]
		for _, strikeKey := range sortedStrikes(strikes) {
			for i := range strikes[strikeKey] {
				c := &strikes[strikeKey][i]
				stats.Contracts++
				if reason := filter.Reason(c, equityPrice); reason != returns.SkipNone {
					stats.Skipped[reason]++
					continue
				}

				// Eligibility guarantees the pricing below is computable.
				mid, _ := c.Mid()
				net, _ := c.CostBasis(equityPrice)
				premium, _ := c.Premium(equityPrice)
				insurance, _ := c.Insurance(equityPrice)

				divReturns := make([]float64, 0, maxDividends)
				for n := 1; n <= maxDividends; n++ {
					ev := returns.Evaluate(c, equityPrice, q.Fundamental, n, asOf)
					if trace != nil {
						trace(c.Symbol, ev)
					}
					divReturns = append(divReturns, ev.Value)
				}

				rows = append(rows, Row{
					Symbol:             q.Symbol,
					CompanyName:        q.Reference.Description,
					ContractSymbol:     c.Symbol,
					Last:               equityPrice,
					Net:                net,
					StrikePrice:        c.StrikePrice,
					ExpirationDate:     expiration,
					Insurance:          insurance,
					Premium:            premium,
					DividendAmount:     q.Fundamental.DivPayAmount,
					DividendExDate:     q.Fundamental.DivExDate,
					DividendReturns:    divReturns,
					ReturnAfterLastDiv: returns.LastNonzero(divReturns),
					Bid:                deref(c.BidPrice),
					Mid:                mid,
					Ask:                deref(c.AskPrice),
					PreviousDate:       previousDate,
				})
				stats.Rows++
			}
		}
	}
	return rows, stats
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func sortedKeys(m marketdata.ExpDateMap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortedStrikes orders strike keys numerically; the map keys are decimal
// strings like "165.0".
func sortedStrikes(m map[string][]marketdata.OptionContract) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aerr := strconv.ParseFloat(keys[i], 64)
		b, berr := strconv.ParseFloat(keys[j], 64)
		if aerr != nil || berr != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})
	return keys
}
