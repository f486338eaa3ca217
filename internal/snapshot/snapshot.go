// Package snapshot persists fetched market data as JSON lines so a scan can
// be replayed offline or re-run with different thresholds without touching
// the API again.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mdewey/buywrite/internal/marketdata"
)

// Record pairs one equity quote with its option chain, one line per symbol.
type Record struct {
	Quote marketdata.Quote `json:"quote"`
	Chain marketdata.Chain `json:"chain"`
}

// Write stores records at path, one JSON document per line, replacing any
// existing file.
func Write(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding snapshot record for %s: %w", rec.Quote.Symbol, err)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// Read loads all records from a snapshot file.
func Read(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	var records []Record
	sc := bufio.NewScanner(f)
	// Chain payloads for liquid symbols run well past the default limit.
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("snapshot line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return records, nil
}
