package storage

import (
	"context"
	"sync"

	"github.com/guttosm/tradesapi/internal/domain/models"
)

// MemoryBackend keeps the collection in process memory. It backs the
// "memory" driver and stands in for real storage in tests.
type MemoryBackend struct {
	mu       sync.Mutex
	trades   []models.Trade
	stored   bool
	ReadErr  error
	WriteErr error
	PingErr  error
	Reads    int
	Writes   int
}

// NewMemoryBackend returns a backend seeded with trades. Passing no trades
// leaves the backend in the "nothing stored yet" state.
func NewMemoryBackend(trades ...models.Trade) *MemoryBackend {
	m := &MemoryBackend{}
	if len(trades) > 0 {
		m.trades = cloneTrades(trades)
		m.stored = true
	}
	return m
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Read(_ context.Context) ([]models.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads++
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	if !m.stored {
		return nil, ErrNoCollection
	}
	return cloneTrades(m.trades), nil
}

func (m *MemoryBackend) Write(_ context.Context, trades []models.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Writes++
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.trades = cloneTrades(trades)
	m.stored = true
	return nil
}

func (m *MemoryBackend) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PingErr
}

// Snapshot returns a copy of what is currently stored.
func (m *MemoryBackend) Snapshot() []models.Trade {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneTrades(m.trades)
}

func cloneTrades(in []models.Trade) []models.Trade {
	out := make([]models.Trade, len(in))
	for i, t := range in {
		t.Type = append([]byte(nil), t.Type...)
		t.UserID = append([]byte(nil), t.UserID...)
		t.Symbol = append([]byte(nil), t.Symbol...)
		t.Price = append([]byte(nil), t.Price...)
		out[i] = t
	}
	return out
}
