// Package lock serializes work on one meeting directory at a time.
package lock

import "context"

// Unlock releases a held lock. Calling it more than once is a no-op.
type Unlock func()

// Locker hands out exclusive per-key locks
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}
