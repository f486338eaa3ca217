// Package returns implements the dividend-capture return engine for covered
// calls: given a contract, the underlying's dividend schedule, and a target
// number of captured dividends, it works out the relevant event dates and the
// simple annualized yield of the position.
package returns

import (
	"time"

	"github.com/mdewey/buywrite/internal/dates"
	"github.com/mdewey/buywrite/internal/marketdata"
)

// settlementDays pads the holding period past the final ex-date so the
// position is held through assignment settling.
const settlementDays = 2

// daysPerYear annualizes the simple (non-compounded) yield.
const daysPerYear = 365

// Evaluation is the full result of one return computation, including the
// event dates it was derived from. OK is false when the return could not be
// computed (missing prices, non-positive holding period, cadence/expiration
// mismatch); Value is 0 in that case.
type Evaluation struct {
	NDividends int

	Today          time.Time
	Expiration     time.Time
	NextDivExDate  time.Time
	FinalDivExDate time.Time
	NextEventDate  time.Time

	DaysToNextEvent       int
	DaysToNextExDividend  int
	DaysToFinalExDividend int

	CapturedDividend float64
	Premium          float64
	CostBasis        float64

	Value float64
	OK    bool
}

// AfterDividend estimates the annualized return of a buy-write position held
// while capturing nDividends dividend payments, assuming the position is
// called away at the ex-date of the last captured dividend or at expiration,
// whichever comes first. A zero asOf means today.
//
// Failure paths (unparseable dates, missing prices, events in the past,
// schedules that run past expiration by more than a full cadence) all yield
// 0.0 rather than an error; use Evaluate to tell those apart from a true zero
// return.
func AfterDividend(c *marketdata.OptionContract, equityPrice float64, f marketdata.Fundamental, nDividends int, asOf time.Time) float64 {
	return Evaluate(c, equityPrice, f, nDividends, asOf).Value
}

// Evaluate is AfterDividend with the intermediate dates and day deltas kept
// for logging and inspection.
func Evaluate(c *marketdata.OptionContract, equityPrice float64, f marketdata.Fundamental, nDividends int, asOf time.Time) Evaluation {
	ev := Evaluation{NDividends: nDividends}

	today := asOf
	if today.IsZero() {
		today = dates.Today()
	}
	today = dates.Midnight(today)
	ev.Today = today

	divExDate, err := dates.Parse(f.DivExDate)
	if err != nil {
		return ev
	}
	if f.DivFreq <= 0 {
		return ev
	}

	monthsBetweenDividends := 12 / f.DivFreq
	ev.CapturedDividend = (f.DivAmount / float64(f.DivFreq)) * float64(nDividends)

	var nextDivExDate, finalDivExDate, callEventDate time.Time
	if today.Before(divExDate) {
		// The announced ex-date is still ahead, so it is the first
		// capturable dividend.
		nextDivExDate = divExDate
		monthsToLastCapture := monthsBetweenDividends * (nDividends - 1)
		if monthsToLastCapture < 0 {
			monthsToLastCapture = 0
		}
		finalDivExDate = dates.AddMonths(divExDate, monthsToLastCapture)
		callEventDate = dates.AddMonths(divExDate, monthsBetweenDividends*nDividends)
	} else {
		// The known ex-date has elapsed; the next capturable dividend is one
		// cadence ahead and the nth capture is when the position can be
		// called away.
		nextDivExDate = dates.PreviousBusinessDay(dates.AddMonths(divExDate, monthsBetweenDividends))
		finalDivExDate = dates.AddMonths(divExDate, monthsBetweenDividends*nDividends)
		callEventDate = dates.AddMonths(divExDate, monthsBetweenDividends*nDividends)
	}
	finalDivExDate = dates.PreviousBusinessDay(finalDivExDate)
	callEventDate = dates.PreviousBusinessDay(callEventDate)

	expiration, err := dates.Parse(c.ExpirationDate)
	if err != nil {
		return ev
	}

	// The position cannot be held past expiration.
	nextEventDate := callEventDate
	if expiration.Before(nextEventDate) {
		nextEventDate = expiration
	}

	ev.Expiration = expiration
	ev.NextDivExDate = nextDivExDate
	ev.FinalDivExDate = finalDivExDate
	ev.NextEventDate = nextEventDate
	ev.DaysToNextEvent = dates.DaysBetween(today, nextEventDate) + settlementDays
	ev.DaysToNextExDividend = dates.DaysBetween(today, nextDivExDate)
	ev.DaysToFinalExDividend = dates.DaysBetween(today, finalDivExDate)

	if ev.DaysToNextEvent <= 0 {
		return ev
	}
	// A capture schedule running a full cadence past expiration means the
	// requested dividend count does not fit this contract.
	if dates.DaysBetween(expiration, callEventDate) >= monthsBetweenDividends*30 {
		return ev
	}

	premium, ok := c.Premium(equityPrice)
	if !ok {
		return ev
	}
	net, ok := c.CostBasis(equityPrice)
	if !ok {
		return ev
	}
	ev.Premium = premium
	ev.CostBasis = net

	ev.Value = ((f.DivPayAmount*float64(nDividends) + premium) / net) / float64(ev.DaysToNextEvent) * daysPerYear
	ev.OK = true
	return ev
}

// Vector evaluates AfterDividend for every capture count from 0 through maxN.
func Vector(c *marketdata.OptionContract, equityPrice float64, f marketdata.Fundamental, maxN int, asOf time.Time) []float64 {
	out := make([]float64, 0, maxN+1)
	for n := 0; n <= maxN; n++ {
		out = append(out, AfterDividend(c, equityPrice, f, n, asOf))
	}
	return out
}

// LastNonzero returns the last computable return in a Vector result, or 0
// when none was computable.
func LastNonzero(values []float64) float64 {
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != 0 {
			return values[i]
		}
	}
	return 0
}
