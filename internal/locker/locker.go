// Package locker serializes work per key, either inside one process or
// across instances through redis.
package locker

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when the lock could not be taken before ctx ended.
var ErrNotAcquired = errors.New("lock not acquired")

// Unlock releases a held lock. Calling it more than once is a no-op.
type Unlock func()

type Locker interface {
	// Lock blocks until key is held or ctx is done.
	Lock(ctx context.Context, key string) (Unlock, error)
}
