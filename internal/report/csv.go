package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV renders rows in the daily export schema. The number of
// return_after_N_div columns follows the first row's return vector.
func WriteCSV(w io.Writer, rows []Row) error {
	maxN := 0
	if len(rows) > 0 {
		maxN = len(rows[0].DividendReturns)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header(maxN)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range rows {
		if err := cw.Write(record(&rows[i], maxN)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func header(maxN int) []string {
	cols := []string{
		"symbol",
		"company_name",
		"contract_symbol",
		"last",
		"net",
		"strike_price",
		"expiration_date",
		"insurance",
		"premium",
		"dividend_amount",
		"dividend_ex_date",
	}
	for n := 1; n <= maxN; n++ {
		cols = append(cols, fmt.Sprintf("return_after_%d_div", n))
	}
	cols = append(cols,
		"return_after_last_div",
		"bid",
		"mid",
		"ask",
		"previous_date",
	)
	return cols
}

func record(r *Row, maxN int) []string {
	rec := []string{
		r.Symbol,
		r.CompanyName,
		r.ContractSymbol,
		ftoa(r.Last),
		ftoa(r.Net),
		ftoa(r.StrikePrice),
		r.ExpirationDate,
		ftoa(r.Insurance),
		ftoa(r.Premium),
		ftoa(r.DividendAmount),
		r.DividendExDate,
	}
	for n := 0; n < maxN; n++ {
		v := 0.0
		if n < len(r.DividendReturns) {
			v = r.DividendReturns[n]
		}
		rec = append(rec, ftoa(v))
	}
	rec = append(rec,
		ftoa(r.ReturnAfterLastDiv),
		ftoa(r.Bid),
		ftoa(r.Mid),
		ftoa(r.Ask),
		r.PreviousDate,
	)
	return rec
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
