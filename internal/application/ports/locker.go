package ports

import (
	"context"
	"errors"
	"time"
)

// ErrLockNotObtained otro proceso tiene el lock.
var ErrLockNotObtained = errors.New("lock no disponible")

// Lock lock distribuido adquirido.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker adquiere locks distribuidos con TTL.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}
