package returns

import "github.com/mdewey/buywrite/internal/marketdata"

// Skip reasons reported by Filter.Reason, used as metric labels.
const (
	SkipNone         = ""
	SkipMissingPrice = "missing_price"
	SkipStrike       = "strike"
	SkipExpiry       = "expiry"
	SkipPremium      = "premium"
)

// Filter decides whether a contract is worth evaluating at all. Zero-value
// thresholds are valid but admit everything with a price; use DefaultFilter
// for the standard gates.
type Filter struct {
	// MinPremium rejects premiums too small to be economically meaningful.
	MinPremium float64
	// MinDaysToExpiration rejects near-term contracts; the strategy targets
	// multi-quarter horizons.
	MinDaysToExpiration float64
	// StrikeDiscount rejects strikes below this fraction of the equity price,
	// which filters noise from far in-the-money legs.
	StrikeDiscount float64
}

// DefaultFilter returns the standard eligibility gates.
func DefaultFilter() Filter {
	return Filter{
		MinPremium:          0.05,
		MinDaysToExpiration: 90,
		StrikeDiscount:      0.50,
	}
}

// Reason explains why a contract would be skipped, or SkipNone when it is
// eligible. Checks run in a fixed order so a contract failing several gates
// reports the first.
func (f Filter) Reason(c *marketdata.OptionContract, equityPrice float64) string {
	if _, ok := c.CostBasis(equityPrice); !ok {
		return SkipMissingPrice
	}
	if equityPrice*f.StrikeDiscount > c.StrikePrice {
		return SkipStrike
	}
	if c.DaysToExpiration <= f.MinDaysToExpiration {
		return SkipExpiry
	}
	// A missing premium is treated as zero, which disqualifies.
	if premium, ok := c.Premium(equityPrice); !ok || premium < f.MinPremium {
		return SkipPremium
	}
	return SkipNone
}

// Ignore reports whether the contract should be skipped before any return
// computation.
func (f Filter) Ignore(c *marketdata.OptionContract, equityPrice float64) bool {
	return f.Reason(c, equityPrice) != SkipNone
}
