package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Sternrassler/placeholder-batch/internal/testutil"
	"github.com/Sternrassler/placeholder-batch/pkg/client"
	"github.com/Sternrassler/placeholder-batch/pkg/logging"
)

func TestLoadOptions_Defaults(t *testing.T) {
	for _, key := range []string{"BASE_URL", "OUTPUT_DIR", "LOG_LEVEL", "LOG_PRETTY", "REDIS_URL", "METRICS_ADDR"} {
		t.Setenv(key, "")
	}

	opts := loadOptions()

	if opts.BaseURL != defaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", opts.BaseURL, defaultBaseURL)
	}
	if opts.OutputDir != "test" {
		t.Errorf("OutputDir = %q, want test", opts.OutputDir)
	}
	if opts.RedisURL != "" || opts.MetricsAddr != "" {
		t.Errorf("optional integrations should be off: %+v", opts)
	}
	if opts.Log.Level != logging.LevelInfo || !opts.Log.Pretty {
		t.Errorf("Log = %+v, want info/pretty", opts.Log)
	}
}

func TestLoadOptions_FromEnv(t *testing.T) {
	t.Setenv("BASE_URL", "http://localhost:9999/img")
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "false")
	t.Setenv("REDIS_URL", "localhost:6379")
	t.Setenv("METRICS_ADDR", ":9100")

	opts := loadOptions()

	if opts.BaseURL != "http://localhost:9999/img" || opts.OutputDir != "/tmp/out" {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Log.Level != logging.LevelDebug || opts.Log.Pretty {
		t.Errorf("Log = %+v, want debug/json", opts.Log)
	}
	if opts.RedisURL != "localhost:6379" || opts.MetricsAddr != ":9100" {
		t.Errorf("opts = %+v", opts)
	}
}

func TestTextList(t *testing.T) {
	if len(textList) != 20 {
		t.Errorf("len(textList) = %d, want 20", len(textList))
	}
	seen := make(map[string]bool)
	for _, text := range textList {
		if seen[text] {
			t.Errorf("duplicate text %q", text)
		}
		seen[text] = true
	}
}

func TestRun_SavesImages(t *testing.T) {
	mock := testutil.NewMockPlaceholder()
	defer mock.Close()

	mock.SetResponses("sleepy", testutil.NewNotFoundResponse())

	dir := t.TempDir()
	opts := options{BaseURL: mock.URL(), OutputDir: dir}

	if err := run(context.Background(), opts, []string{"clumsy", "sleepy", "forgets boundaries"}); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	for _, name := range []string{"clumsy.png", "forgets boundaries.png"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%s missing: %v", name, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "sleepy.png")); !os.IsNotExist(err) {
		t.Error("sleepy.png must not exist")
	}

	q := mock.Requests()[0]
	if q.Get("width") != "600" || q.Get("height") != "600" || q.Get("font") != "New Amsterdam" || q.Get("format") != "png" {
		t.Errorf("unexpected template query %q", q.Encode())
	}
}

func TestRun_InvalidBaseURL(t *testing.T) {
	err := run(context.Background(), options{BaseURL: "not a url", OutputDir: t.TempDir()}, textList)
	if !errors.Is(err, client.ErrInvalidConfig) {
		t.Errorf("run() error = %v, want ErrInvalidConfig", err)
	}
}

func TestRun_RedisUnavailable(t *testing.T) {
	mock := testutil.NewMockPlaceholder()
	defer mock.Close()

	// Nothing listens on port 1.
	opts := options{BaseURL: mock.URL(), OutputDir: t.TempDir(), RedisURL: "127.0.0.1:1"}
	if err := run(context.Background(), opts, []string{"clumsy"}); err == nil {
		t.Fatal("run() should fail when redis is unreachable")
	}
	if mock.RequestCount() != 0 {
		t.Errorf("no requests should be made, got %d", mock.RequestCount())
	}
}

func TestRun_Cancelled(t *testing.T) {
	mock := testutil.NewMockPlaceholder()
	defer mock.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, options{BaseURL: mock.URL(), OutputDir: t.TempDir()}, []string{"clumsy"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("run() error = %v, want context.Canceled", err)
	}
}
