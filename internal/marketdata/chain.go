package marketdata

import "fmt"

// ExpDateMap nests contracts by expiration key and then strike. Expiration
// keys look like "2025-07-18:56" where the suffix is days to expiration.
type ExpDateMap map[string]map[string][]OptionContract

// Chain is one option-chain response from /chains.
type Chain struct {
	Symbol            string     `json:"symbol"`
	Status            string     `json:"status"`
	Strategy          string     `json:"strategy"`
	Interval          float64    `json:"interval"`
	IsDelayed         bool       `json:"isDelayed"`
	IsIndex           bool       `json:"isIndex"`
	DaysToExpiration  float64    `json:"daysToExpiration"`
	InterestRate      float64    `json:"interestRate"`
	UnderlyingPrice   float64    `json:"underlyingPrice"`
	Volatility        float64    `json:"volatility"`
	DividendYield     float64    `json:"dividendYield"`
	NumberOfContracts int64      `json:"numberOfContracts"`
	AssetMainType     string     `json:"assetMainType"`
	Underlying        Underlying `json:"underlying"`
	CallExpDateMap    ExpDateMap `json:"callExpDateMap"`
	PutExpDateMap     ExpDateMap `json:"putExpDateMap"`
}

// Underlying is the equity snapshot embedded in a chain response.
type Underlying struct {
	Ask          float64 `json:"ask"`
	AskSize      int64   `json:"askSize"`
	Bid          float64 `json:"bid"`
	BidSize      int64   `json:"bidSize"`
	Change       float64 `json:"change"`
	Close        float64 `json:"close"`
	Delayed      bool    `json:"delayed"`
	Description  string  `json:"description"`
	ExchangeName string  `json:"exchangeName"`
	Last         float64 `json:"last"`
	Mark         float64 `json:"mark"`
	Symbol       string  `json:"symbol"`
}

// Mid returns the bid/ask midpoint of the underlying equity.
func (u Underlying) Mid() float64 {
	return (u.Ask + u.Bid) / 2
}

// ExpirationFromKey extracts the ISO date from an expiration-map key such as
// "2025-07-18:56".
func ExpirationFromKey(key string) (string, error) {
	if len(key) < 10 {
		return "", fmt.Errorf("malformed expiration key %q", key)
	}
	return key[:10], nil
}
