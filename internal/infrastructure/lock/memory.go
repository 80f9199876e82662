package lock

import (
	"context"
	"fmt"
	"sync"

	"github.com/johnquangdev/webhook-relay/internal/domain/entities"
)

// MemoryLocker is an in-process keyed mutex. Entries exist only while a key
// is held or awaited.
type MemoryLocker struct {
	mu    sync.Mutex
	items map[string]*memoryItem
}

type memoryItem struct {
	sem  chan struct{}
	refs int
}

// NewMemoryLocker creates a new in-process locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		items: make(map[string]*memoryItem),
	}
}

// Lock blocks until key is free or ctx is done
func (ml *MemoryLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	ml.mu.Lock()
	item, exists := ml.items[key]
	if !exists {
		item = &memoryItem{sem: make(chan struct{}, 1)}
		ml.items[key] = item
	}
	item.refs++
	ml.mu.Unlock()

	select {
	case item.sem <- struct{}{}:
	case <-ctx.Done():
		ml.release(key, item)
		return nil, fmt.Errorf("%w: %s: %v", entities.ErrLockNotAcquired, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-item.sem
			ml.release(key, item)
		})
	}, nil
}

// Len returns the number of keys currently held or awaited
func (ml *MemoryLocker) Len() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return len(ml.items)
}

func (ml *MemoryLocker) release(key string, item *memoryItem) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	item.refs--
	if item.refs == 0 {
		delete(ml.items, key)
	}
}
