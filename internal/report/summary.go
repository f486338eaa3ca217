package report

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates a scan's rows into the numbers worth logging: how many
// contracts survived the filter and the distribution of their best
// annualized returns.
type Summary struct {
	Symbols      int     `json:"symbols"`
	Rows         int     `json:"rows"`
	MeanReturn   float64 `json:"mean_return"`
	MedianReturn float64 `json:"median_return"`
	P90Return    float64 `json:"p90_return"`
	BestReturn   float64 `json:"best_return"`
	BestSymbol   string  `json:"best_symbol"`
	BestContract string  `json:"best_contract"`
}

// Summarize computes distribution stats over each row's best return. Rows
// whose entire return vector was not computable are excluded.
func Summarize(rows []Row) Summary {
	s := Summary{Rows: len(rows)}

	symbols := make(map[string]struct{})
	var best []float64
	for i := range rows {
		symbols[rows[i].Symbol] = struct{}{}
		b := bestOf(rows[i].DividendReturns)
		if b == 0 {
			continue
		}
		best = append(best, b)
		if b > s.BestReturn {
			s.BestReturn = b
			s.BestSymbol = rows[i].Symbol
			s.BestContract = rows[i].ContractSymbol
		}
	}
	s.Symbols = len(symbols)

	if len(best) == 0 {
		return s
	}
	sort.Float64s(best)
	s.MeanReturn = stat.Mean(best, nil)
	s.MedianReturn = stat.Quantile(0.5, stat.Empirical, best, nil)
	s.P90Return = stat.Quantile(0.9, stat.Empirical, best, nil)
	return s
}

func bestOf(values []float64) float64 {
	var max float64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}
