package repositories

import (
	"context"
)

// UnitOfWork runs a read-modify-write against one employee's records
// atomically. Repositories called with the context passed to fn join the
// same transaction.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker serialises work per key across service instances. Acquire returns
// ErrLocked when the key is held elsewhere.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
