package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/guttosm/tradesapi/internal/domain/models"
)

// ErrNoCollection is returned by a Backend when nothing has been stored yet
// (missing file, missing key, missing object).
var ErrNoCollection = errors.New("trade collection not found")

// Backend moves the whole trade collection in and out of a storage medium.
//
// Implementations report every failure; deciding what a failure means for
// the caller is the Store's job.
type Backend interface {
	// Name identifies the backend in logs and health output.
	Name() string
	// Read returns the persisted collection in insertion order.
	Read(ctx context.Context) ([]models.Trade, error)
	// Write replaces the persisted collection with trades.
	Write(ctx context.Context, trades []models.Trade) error
	// Ping reports whether the medium is reachable.
	Ping(ctx context.Context) error
}

// encodeTrades renders the collection as a pretty-printed JSON array.
// A nil collection is written as [] so it reads back as empty, not null.
func encodeTrades(trades []models.Trade) ([]byte, error) {
	if trades == nil {
		trades = []models.Trade{}
	}
	b, err := json.MarshalIndent(trades, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode trades: %w", err)
	}
	return b, nil
}

// decodeTrades parses a JSON array document. A literal null decodes to an
// empty collection; anything that is not an array of trades is an error.
func decodeTrades(data []byte) ([]models.Trade, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("decode trades: empty document")
	}
	var trades []models.Trade
	if err := json.Unmarshal(data, &trades); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}
	if trades == nil {
		trades = []models.Trade{}
	}
	return trades, nil
}
