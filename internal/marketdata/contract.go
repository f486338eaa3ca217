package marketdata

// OptionContract is one strike/expiration leg on the chain. Outside market
// hours Schwab omits the live bid/ask/last quotes, so those fields are
// pointers and every derived metric reports whether it could be computed.
type OptionContract struct {
	PutCall                string   `json:"putCall"`
	Symbol                 string   `json:"symbol"`
	Description            string   `json:"description"`
	ExchangeName           string   `json:"exchangeName"`
	BidPrice               *float64 `json:"bidPrice"`
	AskPrice               *float64 `json:"askPrice"`
	LastPrice              *float64 `json:"lastPrice"`
	MarkPrice              *float64 `json:"markPrice"`
	BidSize                int64    `json:"bidSize"`
	AskSize                int64    `json:"askSize"`
	LastSize               int64    `json:"lastSize"`
	HighPrice              float64  `json:"highPrice"`
	LowPrice               float64  `json:"lowPrice"`
	OpenPrice              float64  `json:"openPrice"`
	ClosePrice             *float64 `json:"closePrice"`
	TotalVolume            int64    `json:"totalVolume"`
	QuoteTimeInLong        int64    `json:"quoteTimeInLong"`
	TradeTimeInLong        int64    `json:"tradeTimeInLong"`
	NetChange              float64  `json:"netChange"`
	Volatility             float64  `json:"volatility"`
	Delta                  float64  `json:"delta"`
	Gamma                  float64  `json:"gamma"`
	Theta                  float64  `json:"theta"`
	Vega                   float64  `json:"vega"`
	Rho                    float64  `json:"rho"`
	TimeValue              float64  `json:"timeValue"`
	OpenInterest           int64    `json:"openInterest"`
	IsInTheMoney           *bool    `json:"isInTheMoney"`
	TheoreticalOptionValue float64  `json:"theoreticalOptionValue"`
	TheoreticalVolatility  float64  `json:"theoreticalVolatility"`
	StrikePrice            float64  `json:"strikePrice"`
	ExpirationDate         string   `json:"expirationDate"`
	DaysToExpiration       float64  `json:"daysToExpiration"`
	ExpirationType         string   `json:"expirationType"`
	LastTradingDay         int64    `json:"lastTradingDay"`
	Multiplier             float64  `json:"multiplier"`
	SettlementType         string   `json:"settlementType"`
}

// Mid returns the bid/ask midpoint, falling back to the previous close when
// either side of the book is missing (the markets-closed case). The second
// return is false when no price is available at all. The result is never
// cached: the underlying moves between calls.
func (c *OptionContract) Mid() (float64, bool) {
	if c.BidPrice != nil && c.AskPrice != nil {
		return (*c.BidPrice + *c.AskPrice) / 2, true
	}
	if c.ClosePrice != nil {
		return *c.ClosePrice, true
	}
	return 0, false
}

// CostBasis is the net capital outlay of a buy-write: buy the equity, sell
// this call at its mid.
func (c *OptionContract) CostBasis(equityPrice float64) (float64, bool) {
	mid, ok := c.Mid()
	if !ok {
		return 0, false
	}
	return equityPrice - mid, true
}

// Premium is the total premium captured if the position is called away at the
// strike.
func (c *OptionContract) Premium(equityPrice float64) (float64, bool) {
	net, ok := c.CostBasis(equityPrice)
	if !ok {
		return 0, false
	}
	return c.StrikePrice - net, true
}

// Insurance is the fractional downside buffer before the buy-write loses
// money relative to holding the equity naked.
func (c *OptionContract) Insurance(equityPrice float64) (float64, bool) {
	net, ok := c.CostBasis(equityPrice)
	if !ok {
		return 0, false
	}
	return (equityPrice - net) / equityPrice, true
}
