package webhook

import (
	"context"
	"time"
)

// ReplayGuard remembers deliveries that were already accepted.
//
// Remember records key for ttl and reports whether it was new. Implementations
// must make the check-and-set atomic; see storage/memory and storage/redis.
//
// Forget releases key so a redelivery is processed again. It is called when
// the event handler fails; forgetting an unknown key is not an error.
type ReplayGuard interface {
	Remember(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, key string) error
}
