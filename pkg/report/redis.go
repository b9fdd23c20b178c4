package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultTTL is how long run data is kept in Redis.
const DefaultTTL = 24 * time.Hour

const (
	fieldSucceeded = "succeeded"
	fieldFailed    = "failed"
)

// RedisStore records outcomes in Redis so runs can be inspected after the
// process exits.
//
// Keys:
//
//	placeholder:run:<id>:items   list of JSON outcomes, in order
//	placeholder:run:<id>:counts  hash {succeeded, failed}
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed store. A non-positive ttl uses DefaultTTL.
func NewRedisStore(redisClient *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger,
	}
}

// ItemsKey returns the list key of a run.
func ItemsKey(runID string) string {
	return "placeholder:run:" + runID + ":items"
}

// CountsKey returns the counts hash key of a run.
func CountsKey(runID string) string {
	return "placeholder:run:" + runID + ":counts"
}

// Record appends outcome and bumps the matching counter in one pipeline.
func (s *RedisStore) Record(ctx context.Context, runID string, outcome Outcome) error {
	if outcome.RecordedAt.IsZero() {
		outcome.RecordedAt = time.Now()
	}

	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	field := fieldFailed
	if outcome.Succeeded() {
		field = fieldSucceeded
	}

	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, ItemsKey(runID), data)
	pipe.HIncrBy(ctx, CountsKey(runID), field, 1)
	pipe.Expire(ctx, ItemsKey(runID), s.ttl)
	pipe.Expire(ctx, CountsKey(runID), s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store outcome in redis: %w", err)
	}

	s.logger.Debug().
		Str("run_id", runID).
		Str("item", outcome.Item).
		Str("kind", outcome.Kind).
		Msg("Outcome recorded")

	return nil
}

// Counts returns the success/failure counts of a run.
func (s *RedisStore) Counts(ctx context.Context, runID string) (Counts, error) {
	values, err := s.redis.HGetAll(ctx, CountsKey(runID)).Result()
	if err != nil {
		return Counts{}, fmt.Errorf("redis hgetall: %w", err)
	}
	if len(values) == 0 {
		return Counts{}, ErrUnknownRun
	}

	var c Counts
	if c.Succeeded, err = parseCount(values[fieldSucceeded]); err != nil {
		return Counts{}, err
	}
	if c.Failed, err = parseCount(values[fieldFailed]); err != nil {
		return Counts{}, err
	}
	return c, nil
}

// Outcomes returns the outcomes of a run in recording order.
func (s *RedisStore) Outcomes(ctx context.Context, runID string) ([]Outcome, error) {
	raw, err := s.redis.LRange(ctx, ItemsKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrUnknownRun
	}

	outcomes := make([]Outcome, 0, len(raw))
	for _, item := range raw {
		var o Outcome
		if err := json.Unmarshal([]byte(item), &o); err != nil {
			return nil, fmt.Errorf("unmarshal outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

// Delete removes all data of a run.
func (s *RedisStore) Delete(ctx context.Context, runID string) error {
	if err := s.redis.Del(ctx, ItemsKey(runID), CountsKey(runID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func parseCount(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse count %q: %w", v, err)
	}
	return n, nil
}
