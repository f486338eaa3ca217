package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSONL renders one JSON object per line, one line per row.
func WriteJSONL(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i := range rows {
		if err := enc.Encode(&rows[i]); err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
	}
	return bw.Flush()
}
