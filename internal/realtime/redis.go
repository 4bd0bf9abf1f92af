package realtime

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis returns a client for addr, or nil when addr is empty or the
// server does not answer a ping.
func NewRedis(ctx context.Context, addr, password string) *redis.Client {
	if addr == "" {
		log.Printf("[realtime] REDIS_ADDR not set, publishing disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[realtime] redis %s unreachable, publishing disabled: %v", addr, err)
		_ = rdb.Close()
		return nil
	}

	log.Printf("[realtime] redis connected (addr: %s)", addr)
	return rdb
}
