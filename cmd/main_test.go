package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/guttosm/tradesapi/config"
)

type dummyHandler struct{}

func (d dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestStartServerAndShutdown(t *testing.T) {
	srv := startServer(dummyHandler{}, "0") // random port
	if srv == nil {
		t.Fatalf("expected server")
	}

	// Give server a moment to start
	time.Sleep(50 * time.Millisecond)

	shutdownCtx, c := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer c()
	if err := srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		t.Fatalf("shutdown err: %v", err)
	}
}

func TestGracefulShutdown_SignalPath(t *testing.T) {
	// Use a server that responds immediately
	srv := startServer(dummyHandler{}, "0")

	cleaned := make(chan struct{}, 1)
	go func() {
		ctx := context.Background()
		gracefulShutdown(ctx, srv, func() { close(cleaned) })
	}()

	// Give the goroutine time to set up signal notifications
	time.Sleep(50 * time.Millisecond)

	// Send SIGTERM to current process
	p, _ := os.FindProcess(os.Getpid())
	_ = p.Signal(syscall.SIGTERM)

	select {
	case <-cleaned:
		// success
	case <-time.After(2 * time.Second):
		t.Fatalf("cleanup not called after SIGTERM")
	}
}

func TestRunImport_FileDriver(t *testing.T) {
	in := t.TempDir()
	if err := os.WriteFile(filepath.Join(in, "day1.csv"), []byte("type;user_id;symbol;shares;price\nbuy;1;ACME;15;10.5\nsell;2;ACME;20;11\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := filepath.Join(t.TempDir(), "trades.json")
	cfg := config.Config{Storage: config.StorageConfig{Driver: config.DriverFile, File: out}}

	n, err := runImport(context.Background(), cfg, in, 1)
	if err != nil {
		t.Fatalf("runImport: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d, want 2", n)
	}
	if b, err := os.ReadFile(out); err != nil || len(b) == 0 {
		t.Fatalf("trades file not written: %v", err)
	}
}

func TestRunImport_UnknownDriver(t *testing.T) {
	cfg := config.Config{Storage: config.StorageConfig{Driver: "floppy"}}
	if _, err := runImport(context.Background(), cfg, t.TempDir(), 1); err == nil {
		t.Fatalf("expected error")
	}
}
