package main

import (
	"context"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/guttosm/polypulse/config"
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

	// Shutdown quickly with short timeout and no-op cleanup
	_, cancel := context.WithCancel(context.Background())
	go func() {
		// trigger gracefulShutdown select by simulating signal via closing after a brief delay
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	// We cannot send OS signals easily here; instead, directly call Shutdown to simulate graceful flow.
	// Verify it doesn't panic and completes.
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

func TestRenderToFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "panel.csv")
	body := "event_market_name,question,token_outcome_name,trade_date,avg_price,daily_volume\n" +
		"M,Q1,Yes,2024-01-01,0.4,100\n" +
		"M,Q1,Yes,2024-01-02,0.5,120\n"
	if err := os.WriteFile(in, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := config.Config{
		Data:  config.DataConfig{Source: config.SourceCSV, Path: in},
		Chart: config.ChartConfig{Width: 400, Height: 300},
	}
	out := filepath.Join(dir, "chart.png")
	if err := renderToFile(context.Background(), cfg, "", out); err != nil {
		t.Fatalf("renderToFile: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Fatalf("unexpected size %v", b)
	}
}

func TestRenderToFile_MissingInput(t *testing.T) {
	cfg := config.Config{
		Data:  config.DataConfig{Source: config.SourceCSV, Path: filepath.Join(t.TempDir(), "nope.csv")},
		Chart: config.ChartConfig{Width: 400, Height: 300},
	}
	if err := renderToFile(context.Background(), cfg, "", filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Fatalf("expected error")
	}
}
