// Package redisadapter holds the Redis backed adapters.
package redisadapter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still holds our token, so an
// expired holder never releases a lock re-acquired by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript pushes the lease expiry out only while we still hold it.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// SellerLocker serializes admission per seller across instances with a
// SET NX PX lease. The holder renews the lease every ttl/3 until unlock, so
// TTL only bounds how long a crashed holder blocks the seller. A lease lost
// anyway (a stalled process, a Redis failover) is caught by the store's
// admission guard at write time.
type SellerLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

// NewSellerLocker returns a locker. Zero ttl or retry fall back to 10s and
// 25ms.
func NewSellerLocker(client *redis.Client, prefix string, ttl, retry time.Duration) *SellerLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if retry <= 0 {
		retry = 25 * time.Millisecond
	}
	if prefix == "" {
		prefix = "boost:lock:seller:"
	}
	return &SellerLocker{client: client, prefix: prefix, ttl: ttl, retry: retry}
}

// Lock polls until the lease is acquired or ctx is done.
func (l *SellerLocker) Lock(ctx context.Context, sellerID string) (func(), error) {
	key := l.prefix + sellerID
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis SETNX %s: %w", key, err)
		}
		if ok {
			stop := make(chan struct{})
			go l.keepAlive(key, token, stop)
			var once sync.Once
			return func() {
				once.Do(func() {
					close(stop)
					l.release(key, token)
				})
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// keepAlive renews the lease until stop is closed or the lease is lost.
func (l *SellerLocker) keepAlive(key, token string, stop <-chan struct{}) {
	ticker := time.NewTicker(max(l.ttl/3, time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), l.ttl/3)
		held, err := extendScript.Run(ctx, l.client, []string{key}, token, l.ttl.Milliseconds()).Int()
		cancel()
		if err == nil && held == 0 {
			return
		}
	}
}

func (l *SellerLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), l.retry*10)
	defer cancel()
	// A failed release is harmless: the lease expires after ttl.
	_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
}
