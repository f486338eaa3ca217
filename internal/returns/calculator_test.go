package returns

import (
	"math"
	"testing"
	"time"

	"github.com/mdewey/buywrite/internal/marketdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Deep in-the-money AAPL leap quoted after hours: close price only.
func sampleContract() *marketdata.OptionContract {
	return &marketdata.OptionContract{
		PutCall:          "CALL",
		Symbol:           "AAPL  270617C00165000",
		Description:      "AAPL 06/17/2027 165.00 C",
		ClosePrice:       fp(70.13),
		TimeValue:        24.61,
		StrikePrice:      165.0,
		ExpirationDate:   "2027-06-17T20:00:00.000+00:00",
		DaysToExpiration: 761,
	}
}

func sampleFundamental() marketdata.Fundamental {
	return marketdata.Fundamental{
		DivAmount:    1.04,
		DivExDate:    "2025-05-12",
		DivFreq:      4,
		DivPayAmount: 0.26,
	}
}

var asOf = time.Date(2025, time.May, 19, 0, 0, 0, 0, time.UTC)

func TestAfterDividend_QuarterlyCaptures(t *testing.T) {
	c := sampleContract()
	f := sampleFundamental()

	expected := map[int]float64{
		1: 0.836,
		2: 0.4102,
		3: 0.2735,
		4: 0.2078,
		5: 0.167,
	}
	for n, want := range expected {
		got := AfterDividend(c, 207.93, f, n, asOf)
		assert.Equal(t, want, roundTo(got, 4), "n=%d", n)
	}
}

func TestEvaluate_EventDates(t *testing.T) {
	c := sampleContract()
	f := sampleFundamental()

	ev := Evaluate(c, 207.93, f, 1, asOf)
	require.True(t, ev.OK)

	// The 2025-05-12 ex-date has elapsed, so the first capturable dividend
	// and the call event are both one quarter out.
	assert.Equal(t, time.Date(2025, time.August, 12, 0, 0, 0, 0, time.UTC), ev.NextDivExDate)
	assert.Equal(t, time.Date(2025, time.August, 12, 0, 0, 0, 0, time.UTC), ev.NextEventDate)
	assert.Equal(t, 85, ev.DaysToNextExDividend)
	assert.Equal(t, 87, ev.DaysToNextEvent)
	assert.InDelta(t, 0.26, ev.CapturedDividend, 1e-9)
	assert.InDelta(t, 137.80, ev.CostBasis, 1e-9)
	assert.InDelta(t, 27.20, ev.Premium, 1e-9)
}

func TestEvaluate_FutureExDate(t *testing.T) {
	c := sampleContract()
	f := sampleFundamental()

	// A week before the announced ex-date: it is itself the first capture.
	before := time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC)
	ev := Evaluate(c, 207.93, f, 1, before)
	require.True(t, ev.OK)
	assert.Equal(t, time.Date(2025, time.May, 12, 0, 0, 0, 0, time.UTC), ev.NextDivExDate)
	assert.Equal(t, time.Date(2025, time.August, 12, 0, 0, 0, 0, time.UTC), ev.NextEventDate)
	assert.Equal(t, 101, ev.DaysToNextEvent)
	assert.Equal(t, 0.7201, roundTo(ev.Value, 4))
}

func TestEvaluate_WeekendEventRollsBack(t *testing.T) {
	c := sampleContract()
	f := sampleFundamental()
	f.DivExDate = "2025-03-14"

	ev := Evaluate(c, 207.93, f, 1, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ev.OK)
	// 2025-06-14 is a Saturday; the event rolls back to Friday the 13th.
	assert.Equal(t, time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC), ev.NextEventDate)
	assert.Equal(t, 75, ev.DaysToNextEvent)
}

func TestAfterDividend_SentinelConditions(t *testing.T) {
	c := sampleContract()
	f := sampleFundamental()

	t.Run("event already passed", func(t *testing.T) {
		late := time.Date(2025, time.November, 20, 0, 0, 0, 0, time.UTC)
		assert.Zero(t, AfterDividend(c, 207.93, f, 1, late))
	})

	t.Run("zero captures with elapsed ex-date", func(t *testing.T) {
		assert.Zero(t, AfterDividend(c, 207.93, f, 0, asOf))
	})

	t.Run("unparseable ex-date", func(t *testing.T) {
		bad := f
		bad.DivExDate = "May 12th"
		assert.Zero(t, AfterDividend(c, 207.93, bad, 1, asOf))
	})

	t.Run("unparseable expiration", func(t *testing.T) {
		broken := sampleContract()
		broken.ExpirationDate = "soon"
		assert.Zero(t, AfterDividend(broken, 207.93, f, 1, asOf))
	})

	t.Run("no dividend schedule", func(t *testing.T) {
		bad := f
		bad.DivFreq = 0
		assert.Zero(t, AfterDividend(c, 207.93, bad, 1, asOf))
	})

	t.Run("missing prices", func(t *testing.T) {
		unquoted := sampleContract()
		unquoted.ClosePrice = nil
		assert.Zero(t, AfterDividend(unquoted, 207.93, f, 1, asOf))
	})

	t.Run("capture schedule outruns expiration", func(t *testing.T) {
		near := sampleContract()
		near.ExpirationDate = "2025-09-19"
		near.DaysToExpiration = 123
		assert.Zero(t, AfterDividend(near, 207.93, f, 5, asOf))
	})
}

func TestVector_LastNonzero(t *testing.T) {
	c := sampleContract()
	c.ExpirationDate = "2026-01-16"
	c.DaysToExpiration = 242
	f := sampleFundamental()

	v := Vector(c, 207.93, f, 5, asOf)
	require.Len(t, v, 6)

	assert.Zero(t, v[0], "n=0 has no capturable event")
	assert.NotZero(t, v[1])
	assert.NotZero(t, v[2])
	// n=3 is clamped to expiration but still within one cadence of it.
	assert.NotZero(t, v[3])
	// Beyond that the schedule outruns the contract.
	assert.Zero(t, v[4])
	assert.Zero(t, v[5])

	assert.Equal(t, v[3], LastNonzero(v))
	assert.Zero(t, LastNonzero([]float64{0, 0}))
	assert.Zero(t, LastNonzero(nil))
}
