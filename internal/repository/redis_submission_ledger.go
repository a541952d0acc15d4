package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const submissionKeyPrefix = "contact:submissions:"

// RedisSubmissionLedger keeps one sorted set per origin, scored by submission
// time in unix milliseconds. Entries older than the window are pruned on write
// and the key expires once the origin has been quiet for a full window.
type RedisSubmissionLedger struct {
	client *redis.Client
	window time.Duration
}

// NewRedisSubmissionLedger creates a ledger that retains entries for window.
func NewRedisSubmissionLedger(client *redis.Client, window time.Duration) *RedisSubmissionLedger {
	return &RedisSubmissionLedger{client: client, window: window}
}

var _ SubmissionLedger = (*RedisSubmissionLedger)(nil)

func submissionKey(origin string) string {
	return submissionKeyPrefix + origin
}

// ExistsSince counts entries scored at or after since.
func (l *RedisSubmissionLedger) ExistsSince(ctx context.Context, origin string, since time.Time) (bool, error) {
	n, err := l.client.ZCount(ctx, submissionKey(origin), strconv.FormatInt(since.UnixMilli(), 10), "+inf").Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Record adds an entry at at, drops entries that fell out of the window and
// refreshes the key expiry, all in one MULTI/EXEC.
func (l *RedisSubmissionLedger) Record(ctx context.Context, origin string, at time.Time) error {
	key := submissionKey(origin)
	cutoff := at.Add(-l.window).UnixMilli()
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(at.UnixMilli()), Member: uuid.NewString()})
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10))
		pipe.PExpire(ctx, key, l.window)
		return nil
	})
	return err
}
