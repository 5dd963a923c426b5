package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultCacheTTL = 24 * time.Hour
	cachePrefix     = "evidenx:kb:"
	pingTimeout     = 5 * time.Second
)

// NewRedisClient connects to the Redis server at redisURL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err = client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "connect to redis", slog.String("addr", opts.Addr))
	}
	return client, nil
}

// CachedQuerier keeps answers in Redis. Cache failures are logged and the question goes to the next querier.
type CachedQuerier struct {
	next   Querier
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedQuerier(next Querier, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedQuerier {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedQuerier{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (q *CachedQuerier) Query(ctx context.Context, caseID string, question string) (Answer, error) {
	return q.QueryStream(ctx, caseID, question, nil)
}

// QueryStream streams from the next querier when it supports it. A cached answer is delivered as one delta.
func (q *CachedQuerier) QueryStream(
	ctx context.Context,
	caseID string,
	question string,
	onDelta func(delta string),
) (Answer, error) {
	key := CacheKey(caseID, question)
	if answer, ok := q.lookup(ctx, key); ok {
		if onDelta != nil {
			onDelta(answer.Answer)
		}
		answer.Query = question
		return answer, nil
	}

	var (
		answer Answer
		err    error
	)
	if streamer, ok := q.next.(StreamingQuerier); ok && onDelta != nil {
		answer, err = streamer.QueryStream(ctx, caseID, question, onDelta)
	} else {
		answer, err = q.next.Query(ctx, caseID, question)
		if err == nil && onDelta != nil {
			onDelta(answer.Answer)
		}
	}
	if err != nil {
		return Answer{}, err //nolint:wrapcheck // cache is transparent
	}
	q.store(ctx, key, answer)
	return answer, nil
}

func (q *CachedQuerier) lookup(ctx context.Context, key string) (Answer, bool) {
	data, err := q.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Answer{}, false
	}
	if err != nil {
		q.logger.LogAttrs(ctx, slog.LevelWarn, "knowledge cache lookup failed", errors.SlogError(err))
		return Answer{}, false
	}
	var answer Answer
	if err = json.Unmarshal(data, &answer); err != nil {
		q.logger.LogAttrs(ctx, slog.LevelWarn, "corrupt knowledge cache entry",
			slog.String("key", key), errors.SlogError(err))
		return Answer{}, false
	}
	return answer, true
}

func (q *CachedQuerier) store(ctx context.Context, key string, answer Answer) {
	data, err := json.Marshal(answer)
	if err != nil {
		q.logger.LogAttrs(ctx, slog.LevelWarn, "marshal knowledge cache entry", errors.SlogError(err))
		return
	}
	if err = q.client.Set(ctx, key, data, q.ttl).Err(); err != nil {
		q.logger.LogAttrs(ctx, slog.LevelWarn, "knowledge cache store failed", errors.SlogError(err))
	}
}

// CacheKey identifies a question about a case regardless of letter case and spacing.
func CacheKey(caseID string, question string) string {
	normalised := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	sum := sha256.Sum256([]byte(normalised))
	return cachePrefix + caseID + ":" + hex.EncodeToString(sum[:])
}
