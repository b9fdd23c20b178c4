package batch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Sternrassler/placeholder-batch/pkg/client"
	"github.com/Sternrassler/placeholder-batch/pkg/report"
	"github.com/Sternrassler/placeholder-batch/pkg/sink"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrAborted is returned when a run stops early because of an abort policy.
var ErrAborted = errors.New("batch aborted")

// DefaultTimeout bounds the fetch and write of a single item.
const DefaultTimeout = 30 * time.Second

// Config holds batch fetcher configuration
type Config struct {
	// ItemKey is the query parameter each work item is sent under (default: "text").
	ItemKey string

	// PathFor maps an item to its destination file. Required.
	PathFor sink.PathFunc

	// Timeout per item (default: 30s).
	Timeout time.Duration

	// AbortOnTransportError stops the run at the first transport failure
	// instead of recording it and moving on.
	AbortOnTransportError bool

	// AbortOnWriteError stops the run at the first failed file write.
	AbortOnWriteError bool

	// Recorder receives one outcome per item. Optional.
	Recorder report.Recorder
}

// DefaultConfig returns the per-item-recovery configuration.
func DefaultConfig(pathFor sink.PathFunc) Config {
	return Config{
		ItemKey: client.ParamText,
		PathFor: pathFor,
		Timeout: DefaultTimeout,
	}
}

// Fetcher performs one request. *client.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, params url.Values) (*client.Response, error)
}

// Writer persists one image. *sink.FileSink implements it.
type Writer interface {
	Write(ctx context.Context, path string, data []byte) (int64, error)
}

// BatchFetcher runs the request/response/persist pipeline over work items.
type BatchFetcher struct {
	fetcher  Fetcher
	writer   Writer
	template client.RequestTemplate
	config   Config
	logger   zerolog.Logger
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher(fetcher Fetcher, writer Writer, template client.RequestTemplate, config Config) (*BatchFetcher, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if writer == nil {
		return nil, fmt.Errorf("writer is required")
	}
	if config.PathFor == nil {
		return nil, fmt.Errorf("path function is required")
	}
	if config.ItemKey == "" {
		config.ItemKey = client.ParamText
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	return &BatchFetcher{
		fetcher:  fetcher,
		writer:   writer,
		template: template,
		config:   config,
		logger:   log.With().Str("component", "batch-fetcher").Logger(),
	}, nil
}

// SetLogger replaces the logger the per-item diagnostics go to.
func (bf *BatchFetcher) SetLogger(logger zerolog.Logger) {
	bf.logger = logger
}

// Run processes items in order and returns what happened to each.
//
// The returned error is non-nil only when the run stopped early: the context
// was cancelled or an abort policy fired. The summary then covers the items
// processed so far.
func (bf *BatchFetcher) Run(ctx context.Context, items []string) (*Summary, error) {
	start := time.Now()
	summary := &Summary{
		RunID:   uuid.NewString(),
		Results: make([]Result, 0, len(items)),
	}
	logger := bf.logger.With().Str("run_id", summary.RunID).Logger()

	logger.Debug().
		Int("items", len(items)).
		Str("item_key", bf.config.ItemKey).
		Msg("Starting batch run")

	defer func() {
		summary.Duration = time.Since(start)
		batchDuration.Observe(summary.Duration.Seconds())
	}()

	for i, item := range items {
		select {
		case <-ctx.Done():
			logger.Debug().
				Int("processed", i).
				Int("total", len(items)).
				Msg("Batch run stopping (context cancelled)")
			return summary, fmt.Errorf("batch cancelled after %d/%d items: %w", i, len(items), ctx.Err())
		default:
		}

		result := bf.process(ctx, logger, item)
		summary.add(result)
		itemsTotal.WithLabelValues(result.Kind.label()).Inc()
		bf.record(ctx, logger, summary.RunID, result)

		if bf.shouldAbort(result) {
			return summary, fmt.Errorf("%w at item %q: %w", ErrAborted, item, result.Err)
		}
	}

	logger.Debug().
		Int("total", summary.Total).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Dur("duration", time.Since(start)).
		Msg("Batch run complete")

	return summary, nil
}

// process runs one item through fetch and write, emitting exactly one
// diagnostic line.
func (bf *BatchFetcher) process(ctx context.Context, logger zerolog.Logger, item string) Result {
	itemCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	defer cancel()

	params := bf.template.With(bf.config.ItemKey, item)
	resp, err := bf.fetcher.Fetch(itemCtx, params)

	switch {
	case resp == nil:
		if err == nil {
			err = fmt.Errorf("fetcher returned no response")
		}
		logger.Warn().
			Err(err).
			Str("item", item).
			Str("error_class", string(client.ErrorClassNetwork)).
			Msg("Failed to request image")
		return Result{Item: item, Kind: KindTransport, Err: err}

	case err != nil || resp.StatusCode != http.StatusOK:
		if err == nil {
			err = &client.FetchError{
				StatusCode: resp.StatusCode,
				ErrorClass: client.ClassifyStatus(resp.StatusCode),
				Message:    http.StatusText(resp.StatusCode),
			}
		}
		logger.Warn().
			Str("item", item).
			Int("status_code", resp.StatusCode).
			Msg("Failed to generate image")
		return Result{Item: item, StatusCode: resp.StatusCode, Kind: KindStatus, Err: err}
	}

	dest := bf.config.PathFor(item)
	n, err := bf.writer.Write(itemCtx, dest, resp.Body)
	if err != nil {
		logger.Error().
			Err(err).
			Str("item", item).
			Str("path", dest).
			Msg("Failed to write image")
		return Result{Item: item, Path: dest, StatusCode: resp.StatusCode, Kind: KindWrite, Err: err}
	}

	logger.Info().
		Str("item", item).
		Str("path", dest).
		Int64("bytes", n).
		Dur("duration", resp.Duration).
		Msg("Saved image")

	return Result{Item: item, Path: dest, StatusCode: resp.StatusCode, Bytes: n}
}

func (bf *BatchFetcher) record(ctx context.Context, logger zerolog.Logger, runID string, result Result) {
	if bf.config.Recorder == nil {
		return
	}
	if err := bf.config.Recorder.Record(ctx, runID, result.Outcome()); err != nil {
		logger.Warn().
			Err(err).
			Str("item", result.Item).
			Msg("Failed to record outcome")
	}
}

func (bf *BatchFetcher) shouldAbort(result Result) bool {
	switch result.Kind {
	case KindTransport:
		return bf.config.AbortOnTransportError
	case KindWrite:
		return bf.config.AbortOnWriteError
	default:
		return false
	}
}
