//go:build integration

package main

import (
	"context"
	"testing"

	"github.com/Sternrassler/placeholder-batch/internal/testutil"
	"github.com/Sternrassler/placeholder-batch/pkg/report"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestRedis(t *testing.T) (*redis.Client, string) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisC.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisC.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	addr := host + ":" + port.Port()
	redisClient := redis.NewClient(&redis.Options{Addr: addr})

	t.Cleanup(func() {
		redisClient.Close()
		redisC.Terminate(ctx)
	})

	return redisClient, addr
}

func TestRun_RecordsToRedis(t *testing.T) {
	redisClient, addr := setupTestRedis(t)

	mock := testutil.NewMockPlaceholder()
	defer mock.Close()
	mock.SetResponses("sleepy", testutil.NewNotFoundResponse())

	opts := options{BaseURL: mock.URL(), OutputDir: t.TempDir(), RedisURL: addr}
	if err := run(context.Background(), opts, []string{"clumsy", "sleepy"}); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	ctx := context.Background()
	keys, err := redisClient.Keys(ctx, "placeholder:run:*:counts").Result()
	if err != nil {
		t.Fatalf("Keys() failed: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("Expected one run recorded, got %v", keys)
	}

	// placeholder:run:<id>:counts
	runID := keys[0][len("placeholder:run:") : len(keys[0])-len(":counts")]

	store := report.NewRedisStore(redisClient, 0, zerolog.Nop())
	counts, err := store.Counts(ctx, runID)
	if err != nil {
		t.Fatalf("Counts() failed: %v", err)
	}
	if counts.Succeeded != 1 || counts.Failed != 1 {
		t.Errorf("Counts() = %+v, want {1 1}", counts)
	}
}
