package ingestion

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/guttosm/tradesapi/internal/domain/models"
	"github.com/guttosm/tradesapi/internal/service"
)

// expectedHeaders enforces strict column ordering for import files.
// If the header doesn't match EXACTLY (order + count), the import must fail.
var expectedHeaders = []string{
	"type",
	"user_id",
	"symbol",
	"shares",
	"price",
}

// parseFile opens, validates and parses one import file.
// It fails on:
//   - header not matching expected order/length
//   - a row with the wrong column count or an invalid value
//   - unrecoverable I/O errors
//
// Rows are validated with the same rules as POST /trades.
func parseFile(ctx context.Context, path string) ([]models.TradeInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1 // allow variable but we’ll check explicitly

	// Validate headers strictly.
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(expectedHeaders) {
		return nil, fmt.Errorf("invalid header length: expected %d, got %d", len(expectedHeaders), len(header))
	}
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) != expectedHeaders[i] {
			return nil, fmt.Errorf("invalid header at col %d: expected %q, got %q", i+1, expectedHeaders[i], h)
		}
	}

	var out []models.TradeInput
	lineNumber := 1 // header already read

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read line after %d: %w", lineNumber, err)
		}
		lineNumber++

		if len(rec) != len(expectedHeaders) {
			return nil, fmt.Errorf("invalid column count on line %d: expected %d got %d", lineNumber, len(expectedHeaders), len(rec))
		}

		in, err := recordToInput(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		out = append(out, in)
	}

	return out, nil
}

// recordToInput converts one CSV record (already validated length==5) into
// the JSON field set POST /trades accepts and validates it the same way.
//
// Column handling:
//
//	0 type     → string, kept as-is
//	1 user_id  → integer when the cell is one, otherwise string; empty → null
//	2 symbol   → string, kept as-is
//	3 shares   → number
//	4 price    → number, comma accepted as decimal separator
func recordToInput(rec []string) (models.TradeInput, error) {
	fields := make(map[string]json.RawMessage, len(expectedHeaders))

	fields["type"] = quote(strings.TrimSpace(rec[0]))
	fields["symbol"] = quote(strings.TrimSpace(rec[2]))

	s := strings.TrimSpace(rec[1])
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		fields["user_id"] = json.RawMessage(strconv.FormatInt(n, 10))
	} else if s == "" {
		fields["user_id"] = json.RawMessage("null")
	} else {
		fields["user_id"] = quote(s)
	}

	shares, err := number(rec[3])
	if err != nil {
		return models.TradeInput{}, fmt.Errorf("invalid shares: %w", err)
	}
	fields["shares"] = shares

	price, err := number(strings.ReplaceAll(rec[4], ",", "."))
	if err != nil {
		return models.TradeInput{}, fmt.Errorf("invalid price: %w", err)
	}
	fields["price"] = price

	return service.ParseTradeInput(fields)
}

func quote(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

// number re-encodes a numeric cell as a JSON number literal.
func number(cell string) (json.RawMessage, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}
