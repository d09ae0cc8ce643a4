package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/guttosm/tradesapi/internal/domain/models"
	"github.com/guttosm/tradesapi/internal/logger"
	"github.com/guttosm/tradesapi/internal/storage"
)

var (
	// ErrInvalidTrade is returned when a create payload misses a required
	// field or its shares is not a whole number within range.
	ErrInvalidTrade = errors.New("invalid trade data")
	// ErrInvalidPrice is returned when a price update is not a JSON number.
	ErrInvalidPrice = errors.New("invalid price data")
	// ErrTradeNotFound is returned when no trade has the requested id.
	ErrTradeNotFound = errors.New("trade not found")
)

// TradeService defines the operations exposed over HTTP and by the importer.
// This decouples HTTP handlers from the record store.
type TradeService interface {
	List(ctx context.Context) []models.Trade
	Get(ctx context.Context, id int64) (models.Trade, error)
	Create(ctx context.Context, fields map[string]json.RawMessage) (models.Trade, error)
	CreateMany(ctx context.Context, inputs []models.TradeInput) ([]models.Trade, error)
	UpdatePrice(ctx context.Context, id int64, price json.RawMessage) (models.Trade, error)
	Delete(ctx context.Context, id int64)
	Ping(ctx context.Context) error
}

// tradeService runs every operation as one load, an optional mutation and
// one save against the store. mu serializes those cycles so concurrent
// requests in this process cannot hand out the same id or clobber each
// other's writes. Other processes sharing the same storage are not covered.
type tradeService struct {
	mu    sync.Mutex
	store *storage.Store
}

func NewTradeService(store *storage.Store) TradeService {
	return &tradeService{store: store}
}

func (s *tradeService) List(ctx context.Context) []models.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.LoadAll(ctx)
}

func (s *tradeService) Get(ctx context.Context, id int64) (models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trades := s.store.LoadAll(ctx)
	if i := indexOf(trades, id); i >= 0 {
		return trades[i], nil
	}
	return models.Trade{}, ErrTradeNotFound
}

func (s *tradeService) Create(ctx context.Context, fields map[string]json.RawMessage) (models.Trade, error) {
	in, err := ParseTradeInput(fields)
	if err != nil {
		return models.Trade{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trades := s.store.LoadAll(ctx)
	tr := in.WithID(storage.NextID(trades))
	trades = append(trades, tr)
	s.store.SaveAll(ctx, trades)

	logger.L().Debug().Int64("id", tr.ID).RawJSON("symbol", rawOrNull(tr.Symbol)).Msg("trade created")
	return tr, nil
}

// CreateMany appends all inputs with a single load and a single save. Ids are
// assigned in input order. Nothing is stored if any input is invalid.
func (s *tradeService) CreateMany(ctx context.Context, inputs []models.TradeInput) ([]models.Trade, error) {
	for i, in := range inputs {
		if !storage.ValidateShares(in.Shares) {
			return nil, fmt.Errorf("input %d: shares %d: %w", i+1, in.Shares, ErrInvalidTrade)
		}
	}
	if len(inputs) == 0 {
		return []models.Trade{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trades := s.store.LoadAll(ctx)
	created := make([]models.Trade, 0, len(inputs))
	next := storage.NextID(trades)
	for _, in := range inputs {
		tr := in.WithID(next)
		next++
		trades = append(trades, tr)
		created = append(created, tr)
	}
	s.store.SaveAll(ctx, trades)

	logger.L().Info().Int("count", len(created)).Int64("first_id", created[0].ID).Msg("trades created")
	return created, nil
}

func (s *tradeService) UpdatePrice(ctx context.Context, id int64, price json.RawMessage) (models.Trade, error) {
	p, ok := jsonNumber(price)
	if !ok {
		return models.Trade{}, ErrInvalidPrice
	}
	stored, err := json.Marshal(p)
	if err != nil {
		return models.Trade{}, ErrInvalidPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trades := s.store.LoadAll(ctx)
	i := indexOf(trades, id)
	if i < 0 {
		return models.Trade{}, ErrTradeNotFound
	}
	trades[i].Price = stored
	s.store.SaveAll(ctx, trades)
	return trades[i], nil
}

// Delete removes the trade with id if present. Deleting an unknown id still
// rewrites the (unchanged) collection.
func (s *tradeService) Delete(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trades := s.store.LoadAll(ctx)
	kept := trades[:0]
	for _, t := range trades {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.store.SaveAll(ctx, kept)
}

func (s *tradeService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ParseTradeInput validates a create payload and converts it to a TradeInput.
//
// Only presence is checked for type, user_id, symbol and price (null counts as
// present); their values are kept verbatim whatever their JSON type. shares
// must be a whole number within the accepted range.
func ParseTradeInput(fields map[string]json.RawMessage) (models.TradeInput, error) {
	var in models.TradeInput
	if !storage.ValidateShape(fields) {
		return in, ErrInvalidTrade
	}

	var shares float64
	if err := json.Unmarshal(fields["shares"], &shares); err != nil {
		return in, fmt.Errorf("shares: %w", ErrInvalidTrade)
	}
	if shares != math.Trunc(shares) || math.Abs(shares) > math.MaxInt32 {
		return in, fmt.Errorf("shares %v: %w", shares, ErrInvalidTrade)
	}
	in.Shares = int(shares)
	if !storage.ValidateShares(in.Shares) {
		return in, fmt.Errorf("shares %d: %w", in.Shares, ErrInvalidTrade)
	}

	in.Type = rawCopy(fields["type"])
	in.UserID = rawCopy(fields["user_id"])
	in.Symbol = rawCopy(fields["symbol"])
	in.Price = rawCopy(fields["price"])
	return in, nil
}

func rawCopy(raw json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), bytes.TrimSpace(raw)...)
}

func rawOrNull(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}

// jsonNumber reports whether raw is a JSON number literal and returns its value.
func jsonNumber(raw json.RawMessage) (float64, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

func indexOf(trades []models.Trade, id int64) int {
	for i, t := range trades {
		if t.ID == id {
			return i
		}
	}
	return -1
}
