package ingestion

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/tradesapi/internal/domain/models"
	"github.com/guttosm/tradesapi/internal/logger"
)

const (
	filePattern = "*.csv"
	maxParallel = 8
)

// ErrNoFiles is returned when the import directory holds no *.csv file.
var ErrNoFiles = errors.New("no import files found")

// TradeCreator is the part of the trade service the importer needs.
type TradeCreator interface {
	CreateMany(ctx context.Context, inputs []models.TradeInput) ([]models.Trade, error)
}

// ProcessDirectory imports every *.csv file in dir.
//
//   - dir:      directory containing the import files.
//   - svc:      destination of the parsed trades.
//   - parallel: how many files to parse concurrently (0 = min(8, NumCPU)).
//
// Behavior:
//   - Files are parsed concurrently; the first failing file cancels the rest
//     and nothing is stored.
//   - All rows are then appended with a single CreateMany call, in file name
//     order and row order within a file, so ids follow that order.
//
// Returns:
//   - int: number of trades created.
//   - error: first error encountered (if any).
func ProcessDirectory(ctx context.Context, dir string, svc TradeCreator, parallel int) (int, error) {
	// Glob returns matches in lexical order.
	files, err := filepath.Glob(filepath.Join(dir, filePattern))
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", dir, err)
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("%s: %w", dir, ErrNoFiles)
	}

	limit := parallelism(parallel)
	logger.L().Info().Int("files", len(files)).Str("dir", dir).Int("max_parallel", limit).Msg("import start")

	// errgroup will cancel siblings on first error.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	parsed := make([][]models.TradeInput, len(files))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			start := time.Now()
			base := filepath.Base(file)

			rows, err := parseFile(gctx, file)
			if err != nil {
				logger.L().Error().Str("file", base).Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", file, err)
			}
			parsed[i] = rows
			logger.L().Info().Int("idx", i+1).Int("total", len(files)).Str("file", base).Int("rows", len(rows)).Dur("elapsed", time.Since(start)).Msg("file parsed")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	var inputs []models.TradeInput
	for _, rows := range parsed {
		inputs = append(inputs, rows...)
	}

	created, err := svc.CreateMany(ctx, inputs)
	if err != nil {
		return 0, fmt.Errorf("store trades: %w", err)
	}
	logger.L().Info().Int("trades", len(created)).Msg("import done")
	return len(created), nil
}

// parallelism clamps the requested concurrency to 1..maxParallel, defaulting
// to the CPU count.
func parallelism(requested int) int {
	n := requested
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > maxParallel {
		n = maxParallel
	}
	if n < 1 {
		n = 1
	}
	return n
}
