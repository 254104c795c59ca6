package memory

import (
	"context"
	"sync"
)

// SellerLocker is a keyed mutex. Entries are reference counted and dropped
// once no goroutine holds or waits for them.
type SellerLocker struct {
	mu    sync.Mutex
	locks map[string]*sellerLock
}

type sellerLock struct {
	ch   chan struct{}
	refs int
}

// NewSellerLocker returns an empty locker.
func NewSellerLocker() *SellerLocker {
	return &SellerLocker{locks: make(map[string]*sellerLock)}
}

// Lock blocks until sellerID is free or ctx is done.
func (l *SellerLocker) Lock(ctx context.Context, sellerID string) (func(), error) {
	l.mu.Lock()
	sl, ok := l.locks[sellerID]
	if !ok {
		sl = &sellerLock{ch: make(chan struct{}, 1)}
		l.locks[sellerID] = sl
	}
	sl.refs++
	l.mu.Unlock()

	select {
	case sl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(sellerID, sl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-sl.ch
			l.release(sellerID, sl)
		})
	}, nil
}

func (l *SellerLocker) release(sellerID string, sl *sellerLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sl.refs--
	if sl.refs == 0 {
		delete(l.locks, sellerID)
	}
}

// held reports how many sellers have lock state; used by tests.
func (l *SellerLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
