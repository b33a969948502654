package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/go-redis/redis/v8"
)

// InitRedis connects to the shared rate limit store. An empty or unreachable
// URL returns nil and the caller keeps counting in process.
func InitRedis(ctx context.Context, url string) *redis.Client {
	logger := log.WithField("component", "redis")
	if url == "" {
		logger.Info("REDIS_URL not set, rate limiting in memory")
		return nil
	}

	opts, err := parseOptions(url)
	if err != nil {
		logger.WithError(err).Warn("invalid REDIS_URL, rate limiting in memory")
		return nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("redis unavailable, rate limiting in memory")
		client.Close()
		return nil
	}

	logger.WithField("addr", opts.Addr).Info("connected to redis")
	return client
}

// parseOptions accepts redis:// URLs as well as a bare host:port.
func parseOptions(url string) (*redis.Options, error) {
	if strings.Contains(url, "://") {
		return redis.ParseURL(url)
	}
	return &redis.Options{Addr: url}, nil
}

// WindowCounter counts hits per key in fixed time windows. Every instance
// sharing the redis sees the same counts.
type WindowCounter struct {
	client *redis.Client
	prefix string
	window time.Duration
	now    func() time.Time
}

func NewWindowCounter(client *redis.Client, prefix string, window time.Duration) *WindowCounter {
	if window <= 0 {
		window = time.Minute
	}
	return &WindowCounter{
		client: client,
		prefix: prefix,
		window: window,
		now:    time.Now,
	}
}

// Hit records one request for key and returns the count in the current window.
func (c *WindowCounter) Hit(ctx context.Context, key string) (int64, error) {
	k := c.key(key)

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, c.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("count %s: %w", k, err)
	}
	return incr.Val(), nil
}

func (c *WindowCounter) Window() time.Duration { return c.window }

func (c *WindowCounter) key(key string) string {
	bucket := c.now().UnixNano() / int64(c.window)
	return fmt.Sprintf("%s:%s:%d", c.prefix, key, bucket)
}
