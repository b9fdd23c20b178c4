package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Sternrassler/placeholder-batch/pkg/batch"
	"github.com/Sternrassler/placeholder-batch/pkg/client"
	"github.com/Sternrassler/placeholder-batch/pkg/logging"
	"github.com/Sternrassler/placeholder-batch/pkg/metrics"
	"github.com/Sternrassler/placeholder-batch/pkg/report"
	"github.com/Sternrassler/placeholder-batch/pkg/sink"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://placeholder-hono-api.yapzanan.workers.dev/placeholder"

// textList is the set of texts to render, in order.
var textList = []string{
	"clumsy",
	"chaotic",
	"bossy",
	"forgetful",
	"nerdy",
	"stubborn",
	"sarcastic",
	"shy",
	"competitive",
	"mischievous",
	"scatterbrained",
	"dramatic",
	"foodie",
	"sleepy",
	"loud",
	"awkward",
	"picky",
	"artsy",
	"forgets boundaries",
	"quirky",
}

var imageOptions = client.ImageOptions{
	Width:  600,
	Height: 600,
	Font:   "New Amsterdam",
	Format: "png",
}

type options struct {
	BaseURL     string
	OutputDir   string
	RedisURL    string
	MetricsAddr string
	Log         logging.Config
}

func loadOptions() options {
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.LogLevel(getEnv("LOG_LEVEL", string(logging.LevelInfo)))
	if pretty, err := strconv.ParseBool(getEnv("LOG_PRETTY", "true")); err == nil {
		logCfg.Pretty = pretty
	}

	return options{
		BaseURL:     getEnv("BASE_URL", defaultBaseURL),
		OutputDir:   getEnv("OUTPUT_DIR", "test"),
		RedisURL:    os.Getenv("REDIS_URL"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
		Log:         logCfg,
	}
}

func main() {
	opts := loadOptions()
	logging.Setup(opts.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, textList); err != nil {
		log.Error().Err(err).Msg("Batch run failed")
		stop()
		os.Exit(1)
	}
}

// run fetches every item and saves the images under opts.OutputDir.
// Per-item failures are logged, not returned.
func run(ctx context.Context, opts options, items []string) error {
	api, err := client.New(client.DefaultConfig(opts.BaseURL))
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	cfg := batch.DefaultConfig(sink.ExtensionPath(opts.OutputDir, "."+imageOptions.Format))

	if opts.RedisURL != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: opts.RedisURL,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis at %s: %w", opts.RedisURL, err)
		}
		cfg.Recorder = report.NewRedisStore(redisClient, report.DefaultTTL, logging.NewLogger("report"))
	}

	if opts.MetricsAddr != "" {
		srv := metrics.NewServer(opts.MetricsAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn().Err(err).Str("addr", opts.MetricsAddr).Msg("Metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	bf, err := batch.NewBatchFetcher(api, sink.NewFileSink(), client.NewImageTemplate(imageOptions), cfg)
	if err != nil {
		return fmt.Errorf("create batch fetcher: %w", err)
	}

	summary, err := bf.Run(ctx, items)
	if summary != nil {
		log.Debug().
			Str("run_id", summary.RunID).
			Int("succeeded", summary.Succeeded).
			Int("failed", summary.Failed).
			Dur("duration", summary.Duration).
			Msg("Batch summary")
	}
	return err
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
