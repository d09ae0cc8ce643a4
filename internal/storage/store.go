package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/guttosm/tradesapi/internal/domain/models"
	"github.com/guttosm/tradesapi/internal/logger"
)

// Share bounds accepted on create, inclusive.
const (
	MinShares = 10
	MaxShares = 30
)

// RequiredFields must all be present in a create payload. Only presence is
// checked; a null value counts as present.
var RequiredFields = []string{"type", "user_id", "symbol", "shares", "price"}

// ErrorHook receives storage failures the Store swallows.
// op is "load" or "save".
type ErrorHook func(op string, backend string, err error)

// Store is the record store for the trade collection.
//
// Every call goes to the backend; nothing is cached between calls. Reads fail
// open (any failure yields an empty collection) and writes fail silent (the
// caller is never told); both report through the ErrorHook instead.
type Store struct {
	backend Backend
	onError ErrorHook
}

// Option configures a Store.
type Option func(*Store)

// WithErrorHook replaces the default zerolog reporting of swallowed errors.
func WithErrorHook(h ErrorHook) Option {
	return func(s *Store) {
		if h != nil {
			s.onError = h
		}
	}
}

// NewStore wraps backend with the record store policy.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{backend: backend, onError: logError}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadAll returns the persisted collection, or an empty one if it cannot be
// read or parsed. It never returns nil.
func (s *Store) LoadAll(ctx context.Context) []models.Trade {
	trades, err := s.backend.Read(ctx)
	if err != nil {
		s.onError("load", s.backend.Name(), err)
		return []models.Trade{}
	}
	if trades == nil {
		return []models.Trade{}
	}
	return trades
}

// SaveAll overwrites the persisted collection. Failures are reported to the
// ErrorHook only.
func (s *Store) SaveAll(ctx context.Context, trades []models.Trade) {
	if err := s.backend.Write(ctx, trades); err != nil {
		s.onError("save", s.backend.Name(), err)
	}
}

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Backend returns the name of the underlying backend.
func (s *Store) Backend() string {
	return s.backend.Name()
}

// NextID returns 1 for an empty collection, otherwise one more than the
// highest id present. Ids of deleted trades at the top of the range are
// therefore handed out again.
func NextID(trades []models.Trade) int64 {
	var max int64
	for _, t := range trades {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

// ValidateShape reports whether every required field is present in fields.
func ValidateShape(fields map[string]json.RawMessage) bool {
	if fields == nil {
		return false
	}
	for _, name := range RequiredFields {
		if _, ok := fields[name]; !ok {
			return false
		}
	}
	return true
}

// ValidateShares reports whether shares lies in [MinShares, MaxShares].
func ValidateShares(shares int) bool {
	return shares >= MinShares && shares <= MaxShares
}

func logError(op, backend string, err error) {
	ev := logger.L().Error()
	if errors.Is(err, ErrNoCollection) {
		ev = logger.L().Warn()
	}
	ev.Err(err).Str("op", op).Str("backend", backend).Msg("trade storage error")
}
