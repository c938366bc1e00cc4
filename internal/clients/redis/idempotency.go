package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/draftmint/clausebind-backend/internal/platform/envutil"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
)

// IdempotencyCache is a read-through cache in front of the bind-receipt
// ledger. The postgres ledger row stays authoritative; this only spares a
// round trip for replayed bind requests. A nil cache is a valid degraded
// mode.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) (*CachedBind, error)
	Put(ctx context.Context, key string, entry CachedBind) error
	Close() error
}

type CachedBind struct {
	RequestHash string          `json:"request_hash"`
	Response    json.RawMessage `json:"response"`
}

type idempotencyCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewIdempotencyCache(log *logger.Logger) (IdempotencyCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(envutil.String("REDIS_ADDR", ""))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttlSeconds := envutil.Int("REDIS_IDEMPOTENCY_TTL", 86400)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &idempotencyCache{
		log:    log.With("client", "RedisIdempotencyCache"),
		rdb:    rdb,
		prefix: "bind:idem:",
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func (c *idempotencyCache) Get(ctx context.Context, key string) (*CachedBind, error) {
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var entry CachedBind
	if err := json.Unmarshal(raw, &entry); err != nil {
		// A corrupt cache entry is treated as a miss; the ledger decides.
		c.log.Warn("Dropping unreadable idempotency cache entry", "key", key, "error", err)
		return nil, nil
	}
	return &entry, nil
}

func (c *idempotencyCache) Put(ctx context.Context, key string, entry CachedBind) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := c.rdb.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *idempotencyCache) Close() error {
	return c.rdb.Close()
}
