// Package marketdata defines the Schwab market-data payloads the scanner
// consumes: equity quotes with dividend fundamentals, and option chains keyed
// by expiration and strike. Buy-write pricing primitives live on
// OptionContract.
package marketdata

// QuoteResponse maps ticker symbols to their quote payloads.
type QuoteResponse map[string]Quote

// Quote is one equity snapshot from /quotes.
type Quote struct {
	Symbol        string      `json:"symbol"`
	AssetMainType string      `json:"assetMainType"`
	AssetSubType  string      `json:"assetSubType"`
	Realtime      bool        `json:"realtime"`
	Reference     Reference   `json:"reference"`
	Quote         QuoteDetail `json:"quote"`
	Fundamental   Fundamental `json:"fundamental"`
}

// Reference carries the instrument description fields.
type Reference struct {
	CUSIP        string `json:"cusip"`
	Description  string `json:"description"`
	Exchange     string `json:"exchange"`
	ExchangeName string `json:"exchangeName"`
}

// QuoteDetail carries the live trade and book fields.
type QuoteDetail struct {
	AskPrice    float64 `json:"askPrice"`
	AskSize     int64   `json:"askSize"`
	BidPrice    float64 `json:"bidPrice"`
	BidSize     int64   `json:"bidSize"`
	ClosePrice  float64 `json:"closePrice"`
	HighPrice   float64 `json:"highPrice"`
	LastPrice   float64 `json:"lastPrice"`
	LowPrice    float64 `json:"lowPrice"`
	Mark        float64 `json:"mark"`
	NetChange   float64 `json:"netChange"`
	OpenPrice   float64 `json:"openPrice"`
	QuoteTime   int64   `json:"quoteTime"`
	TotalVolume int64   `json:"totalVolume"`
	TradeTime   int64   `json:"tradeTime"`
}

// Fundamental carries the dividend data the return calculator depends on.
// DivFreq is payments per year (4 = quarterly); it must be positive for any
// dividend arithmetic to apply. DivExDate arrives as either a plain date or a
// full timestamp.
type Fundamental struct {
	DeclarationDate string  `json:"declarationDate"`
	DivAmount       float64 `json:"divAmount"`
	DivExDate       string  `json:"divExDate"`
	DivFreq         int     `json:"divFreq"`
	DivPayAmount    float64 `json:"divPayAmount"`
	DivPayDate      string  `json:"divPayDate"`
	DivYield        float64 `json:"divYield"`
	EPS             float64 `json:"eps"`
	NextDivExDate   string  `json:"nextDivExDate"`
	NextDivPayDate  string  `json:"nextDivPayDate"`
	PERatio         float64 `json:"peRatio"`
}

// PaysDividend reports whether the equity has a usable dividend schedule.
func (f Fundamental) PaysDividend() bool {
	return f.DivFreq > 0 && f.DivExDate != ""
}
