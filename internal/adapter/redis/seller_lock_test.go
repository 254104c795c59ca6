package redisadapter

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boost-engine/internal/core/port"
)

var _ port.SellerLocker = (*SellerLocker)(nil)

func setup(t *testing.T) (*miniredis.Miniredis, *SellerLocker) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewSellerLocker(client, "test:lock:", time.Second, 5*time.Millisecond)
}

func TestLockExcludesConcurrentHolders(t *testing.T) {
	_, l := setup(t)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		inside  atomic.Int32
		maxSeen atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "seller")
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			for {
				cur := maxSeen.Load()
				if n <= cur || maxSeen.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen.Load())
}

func TestLockTimesOutWhileHeld(t *testing.T) {
	mr, l := setup(t)
	unlock, err := l.Lock(context.Background(), "seller")
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:seller"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "seller")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.False(t, mr.Exists("test:lock:seller"))
}

func TestStaleUnlockKeepsNewHolder(t *testing.T) {
	mr, l := setup(t)
	staleUnlock, err := l.Lock(context.Background(), "seller")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists("test:lock:seller"), "lease expired")

	unlock, err := l.Lock(context.Background(), "seller")
	require.NoError(t, err)

	staleUnlock()
	assert.True(t, mr.Exists("test:lock:seller"), "stale holder must not release the new lease")
	unlock()
	assert.False(t, mr.Exists("test:lock:seller"))
}

func TestRedisUnavailable(t *testing.T) {
	mr, l := setup(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := l.Lock(ctx, "seller")
	assert.Error(t, err)
}

func TestLeaseIsRenewedWhileHeld(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	l := NewSellerLocker(client, "test:lock:", 90*time.Millisecond, 5*time.Millisecond)

	unlock, err := l.Lock(context.Background(), "seller")
	require.NoError(t, err)
	defer unlock()

	// three leases worth of simulated time, with real time between jumps
	// for the renewal ticks
	for i := 0; i < 5; i++ {
		mr.FastForward(60 * time.Millisecond)
		require.True(t, mr.Exists("test:lock:seller"), "lease lost after jump %d", i)
		time.Sleep(70 * time.Millisecond)
	}
}

func TestUnlockStopsRenewal(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	l := NewSellerLocker(client, "test:lock:", 30*time.Millisecond, 5*time.Millisecond)

	unlock, err := l.Lock(context.Background(), "seller")
	require.NoError(t, err)
	unlock()
	unlock()
	time.Sleep(50 * time.Millisecond)
	assert.False(t, mr.Exists("test:lock:seller"))
}
