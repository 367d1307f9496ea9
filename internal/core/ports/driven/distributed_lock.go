package driven

import (
	"context"
	"time"
)

// DistributedLock serialises work that must not overlap across processes
// sharing one backend, such as two prefetch runs writing the same snapshot.
type DistributedLock interface {
	// Acquire takes the named lock for ttl. It returns false when another
	// holder already owns it.
	Acquire(ctx context.Context, name string, ttl time.Duration) (acquired bool, err error)

	// Release drops the lock if this holder still owns it.
	Release(ctx context.Context, name string) error

	// Ping checks the lock backend.
	Ping(ctx context.Context) error
}
