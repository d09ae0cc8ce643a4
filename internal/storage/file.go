package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/guttosm/tradesapi/internal/domain/models"
)

// FileBackend keeps the collection as a pretty-printed JSON array in a single
// file. Every write rewrites the whole file.
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend for the JSON file at path. The file does
// not need to exist yet.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) Name() string { return "file" }

// Path is the location of the collection file.
func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) Read(_ context.Context) ([]models.Trade, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoCollection, b.path)
		}
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}
	trades, err := decodeTrades(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.path, err)
	}
	return trades, nil
}

func (b *FileBackend) Write(_ context.Context, trades []models.Trade) error {
	data, err := encodeTrades(trades)
	if err != nil {
		return err
	}
	if err := os.WriteFile(b.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", b.path, err)
	}
	return nil
}

// Ping succeeds when the directory that holds the file exists.
func (b *FileBackend) Ping(_ context.Context) error {
	dir := filepath.Dir(b.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
