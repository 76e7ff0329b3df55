package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/glint/internal/logging"
	"github.com/dshills/glint/internal/renderer/backend"
)

func testOptions() Options {
	return Options{
		Cols:    40,
		Rows:    12,
		Backend: backend.NewMemory(backend.Caps{}),
		Logger:  logging.Null,
	}
}

func TestNewWithDefaults(t *testing.T) {
	application, err := New(testOptions())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	cfg := application.Config()
	if cfg.CacheFactor != 4 {
		t.Errorf("expected default cache factor, got %d", cfg.CacheFactor)
	}
	if application.Scheduler() == nil || application.Source() == nil {
		t.Error("pipeline components should be wired")
	}
	if application.Atlas() == nil {
		t.Error("atlas should be exposed")
	}
}

func TestNewRequiresBackend(t *testing.T) {
	opts := testOptions()
	opts.Backend = nil

	_, err := New(opts)
	var initErr *InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("expected InitError, got %v", err)
	}
	if initErr.Component != "backend" {
		t.Errorf("unexpected component %q", initErr.Component)
	}
}

func TestNewSingleThreadedDrawNeedsPoster(t *testing.T) {
	opts := testOptions()
	opts.Backend = backend.NewMemory(backend.Caps{SingleThreadedDraw: true})

	if _, err := New(opts); err == nil {
		t.Error("single-threaded-draw backend without a poster should fail")
	}

	opts.Poster = backend.DrawPosterFunc(func(draw func()) { draw() })
	if _, err := New(opts); err != nil {
		t.Errorf("with a poster the backend should wire: %v", err)
	}
}

func TestNewLoadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glint.toml")
	if err := os.WriteFile(path, []byte(`cache_factor = 7`), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	opts := testOptions()
	opts.ConfigPath = path
	application, err := New(opts)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if application.Config().CacheFactor != 7 {
		t.Errorf("config file not applied, got %d", application.Config().CacheFactor)
	}
}

func TestNewBrokenConfigFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glint.toml")
	if err := os.WriteFile(path, []byte(`cache_factor = [`), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	opts := testOptions()
	opts.ConfigPath = path
	application, err := New(opts)
	if err != nil {
		t.Fatalf("broken config should fall back to defaults: %v", err)
	}
	if application.Config().CacheFactor != 4 {
		t.Errorf("expected default cache factor, got %d", application.Config().CacheFactor)
	}
}

func TestWriteBeforeRun(t *testing.T) {
	application, err := New(testOptions())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	if _, err := application.Write([]byte("x")); !errors.Is(err, ErrNotRunning) {
		t.Errorf("expected ErrNotRunning before Run, got %v", err)
	}
}

func TestRunAndShutdown(t *testing.T) {
	application, err := New(testOptions())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- application.Run(ctx) }()

	// The scheduler accepts work once running.
	deadline := time.After(2 * time.Second)
	for {
		if _, err := application.Write([]byte("hi")); err == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("application never became writable")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop on cancel")
	}

	select {
	case <-application.Done():
	default:
		t.Error("done channel should be closed after run returns")
	}
}

func TestRunTwiceFails(t *testing.T) {
	application, err := New(testOptions())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = application.Run(ctx) }()

	// Wait for the first run to take the flag.
	deadline := time.After(2 * time.Second)
	for !application.running.Load() {
		select {
		case <-deadline:
			t.Fatal("first run never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if err := application.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
}
