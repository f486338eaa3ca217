package schwab

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

// staticTokens is a TokenSource that rotates to a second token after
// Invalidate, mimicking the auth manager's refresh chain.
type staticTokens struct {
	tokens  []string
	idx     atomic.Int32
	invalid atomic.Int32
}

func (s *staticTokens) Token(context.Context) (string, error) {
	i := int(s.idx.Load())
	if i >= len(s.tokens) {
		return "", errors.New("out of tokens")
	}
	return s.tokens[i], nil
}

func (s *staticTokens) Invalidate() {
	s.invalid.Add(1)
	s.idx.Add(1)
}

const quotesPayload = `{
	"AAPL": {
		"symbol": "AAPL",
		"assetMainType": "EQUITY",
		"reference": {"description": "APPLE INC", "exchangeName": "NASDAQ"},
		"quote": {"lastPrice": 207.93, "bidPrice": 207.90, "askPrice": 207.96},
		"fundamental": {
			"divAmount": 1.04,
			"divExDate": "2025-05-12T00:00:00Z",
			"divFreq": 4,
			"divPayAmount": 0.26
		}
	}
}`

const chainPayload = `{
	"symbol": "AAPL",
	"status": "SUCCESS",
	"strategy": "SINGLE",
	"underlyingPrice": 207.93,
	"callExpDateMap": {
		"2027-06-17:761": {
			"165.0": [{
				"putCall": "CALL",
				"symbol": "AAPL  270617C00165000",
				"bidPrice": null,
				"askPrice": null,
				"closePrice": 70.13,
				"strikePrice": 165.0,
				"expirationDate": "2027-06-17T20:00:00.000+00:00",
				"daysToExpiration": 761.0
			}]
		}
	}
}`

func TestClient_Quotes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want Bearer tok-1", got)
		}
		if r.URL.Path != "/quotes" {
			t.Errorf("path = %q, want /quotes", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbols"); got != "AAPL,MSFT" {
			t.Errorf("symbols = %q, want AAPL,MSFT", got)
		}
		fmt.Fprint(w, quotesPayload)
	}))
	defer ts.Close()

	c := NewClient(&staticTokens{tokens: []string{"tok-1"}}, zap.NewNop(), WithBaseURL(ts.URL))
	quotes, err := c.Quotes(context.Background(), []string{"AAPL", "MSFT"})
	if err != nil {
		t.Fatalf("Quotes: %v", err)
	}

	q, ok := quotes["AAPL"]
	if !ok {
		t.Fatal("AAPL missing from response")
	}
	if q.Quote.LastPrice != 207.93 {
		t.Errorf("LastPrice = %v, want 207.93", q.Quote.LastPrice)
	}
	if q.Fundamental.DivFreq != 4 || q.Fundamental.DivPayAmount != 0.26 {
		t.Errorf("fundamental decoded wrong: %+v", q.Fundamental)
	}
}

func TestClient_Chain(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chains" {
			t.Errorf("path = %q, want /chains", r.URL.Path)
		}
		fmt.Fprint(w, chainPayload)
	}))
	defer ts.Close()

	c := NewClient(&staticTokens{tokens: []string{"tok-1"}}, zap.NewNop(), WithBaseURL(ts.URL))
	chain, err := c.Chain(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Chain: %v", err)
	}

	strikes := chain.CallExpDateMap["2027-06-17:761"]
	contracts := strikes["165.0"]
	if len(contracts) != 1 {
		t.Fatalf("contracts = %d, want 1", len(contracts))
	}
	if contracts[0].BidPrice != nil {
		t.Error("null bidPrice should decode to nil")
	}
	mid, ok := contracts[0].Mid()
	if !ok || mid != 70.13 {
		t.Errorf("Mid = %v %v, want 70.13 true", mid, ok)
	}
}

func TestClient_RetriesOnceOn401(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") == "Bearer stale" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, chainPayload)
	}))
	defer ts.Close()

	src := &staticTokens{tokens: []string{"stale", "fresh"}}
	c := NewClient(src, zap.NewNop(), WithBaseURL(ts.URL))

	if _, err := c.Chain(context.Background(), "AAPL"); err != nil {
		t.Fatalf("Chain: %v", err)
	}
	if calls != 2 {
		t.Errorf("requests = %d, want 2", calls)
	}
	if src.invalid.Load() != 1 {
		t.Errorf("Invalidate calls = %d, want 1", src.invalid.Load())
	}
}

func TestClient_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewClient(&staticTokens{tokens: []string{"tok"}}, zap.NewNop(), WithBaseURL(ts.URL))
	_, err := c.Quotes(context.Background(), []string{"AAPL"})
	if err == nil {
		t.Fatal("expected error")
	}
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("error %T is not a *StatusError", err)
	}
	if serr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", serr.StatusCode)
	}
}

func TestClient_EmptySymbolRejected(t *testing.T) {
	c := NewClient(&staticTokens{tokens: []string{"tok"}}, zap.NewNop())
	if _, err := c.Chain(context.Background(), ""); err == nil {
		t.Error("expected error for empty symbol")
	}
}

type recordedCall struct {
	endpoint string
	status   string
}

type fakeRecorder struct {
	calls []recordedCall
}

func (f *fakeRecorder) RecordAPIRequest(endpoint, status string, duration float64) {
	f.calls = append(f.calls, recordedCall{endpoint: endpoint, status: status})
}

func TestClient_Recorder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/quotes" {
			fmt.Fprint(w, quotesPayload)
			return
		}
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer ts.Close()

	rec := &fakeRecorder{}
	c := NewClient(&staticTokens{tokens: []string{"tok"}}, zap.NewNop(), WithBaseURL(ts.URL), WithRecorder(rec))

	if _, err := c.Quotes(context.Background(), []string{"AAPL"}); err != nil {
		t.Fatalf("Quotes: %v", err)
	}
	c.Chain(context.Background(), "AAPL")

	if len(rec.calls) != 2 {
		t.Fatalf("expected 2 recorded calls, got %d", len(rec.calls))
	}
	if rec.calls[0] != (recordedCall{endpoint: "quotes", status: "2xx"}) {
		t.Errorf("unexpected first call %+v", rec.calls[0])
	}
	if rec.calls[1] != (recordedCall{endpoint: "chains", status: "4xx"}) {
		t.Errorf("unexpected second call %+v", rec.calls[1])
	}
}
