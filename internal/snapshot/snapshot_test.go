package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mdewey/buywrite/internal/marketdata"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "snapshot.jsonl")

	close1 := 70.13
	records := []Record{
		{
			Quote: marketdata.Quote{
				Symbol: "AAPL",
				Quote:  marketdata.QuoteDetail{LastPrice: 207.93},
				Fundamental: marketdata.Fundamental{
					DivExDate: "2025-05-12", DivFreq: 4, DivPayAmount: 0.26,
				},
			},
			Chain: marketdata.Chain{
				Symbol: "AAPL",
				Status: "SUCCESS",
				CallExpDateMap: marketdata.ExpDateMap{
					"2027-06-17:761": {
						"165.0": []marketdata.OptionContract{
							{Symbol: "AAPL  270617C00165000", StrikePrice: 165, ClosePrice: &close1},
						},
					},
				},
			},
		},
		{
			Quote: marketdata.Quote{Symbol: "KO"},
			Chain: marketdata.Chain{Symbol: "KO", Status: "SUCCESS"},
		},
	}

	if err := Write(path, records); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records = %d, want 2", len(got))
	}
	if got[0].Quote.Symbol != "AAPL" || got[1].Quote.Symbol != "KO" {
		t.Errorf("symbols = %s, %s", got[0].Quote.Symbol, got[1].Quote.Symbol)
	}
	contracts := got[0].Chain.CallExpDateMap["2027-06-17:761"]["165.0"]
	if len(contracts) != 1 || contracts[0].ClosePrice == nil || *contracts[0].ClosePrice != 70.13 {
		t.Errorf("contract did not survive the round trip: %+v", contracts)
	}
}

func TestRead_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.jsonl")
	content := `{"quote":{"symbol":"AAPL"},"chain":{"symbol":"AAPL"}}` + "\n\n" +
		`{"quote":{"symbol":"KO"},"chain":{"symbol":"KO"}}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("records = %d, want 2", len(got))
	}
}

func TestRead_MalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); err == nil {
		t.Error("expected error for malformed line")
	}
}

func TestRead_MissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
		t.Error("expected error for missing file")
	}
}
