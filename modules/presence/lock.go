package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a presence lock can outlive a crashed
// coordinator before expiring on its own.
const DefaultTTL = time.Hour

// LockStore is a distributed, expiring reservation keyed by (origin, room).
// While an entry exists, no other join from the same origin to the same room
// may succeed.
type LockStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLockStore creates a lock store over the given Redis client.
func NewLockStore(client *redis.Client, ttl time.Duration) *LockStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LockStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *LockStore) key(roomID, origin string) string {
	return fmt.Sprintf("lock:%s:%s", origin, roomID)
}

// TryAcquire sets the lock entry only if it is absent and returns whether it
// was acquired. SET NX with a TTL is a single atomic operation; a separate
// GET-then-SET would open a race window allowing two joins.
func (s *LockStore) TryAcquire(ctx context.Context, roomID, origin, holder string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(roomID, origin), holder, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("lock store unavailable: %w", err)
	}
	return ok, nil
}

// Release deletes the lock entry. Deleting an absent entry is not an error;
// the entry may already have expired.
func (s *LockStore) Release(ctx context.Context, roomID, origin string) error {
	if err := s.client.Del(ctx, s.key(roomID, origin)).Err(); err != nil {
		return fmt.Errorf("lock store unavailable: %w", err)
	}
	return nil
}

// Holder returns the connection currently holding the lock, if any.
func (s *LockStore) Holder(ctx context.Context, roomID, origin string) (string, bool, error) {
	holder, err := s.client.Get(ctx, s.key(roomID, origin)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lock store unavailable: %w", err)
	}
	return holder, true, nil
}

// Ping checks the Redis connection.
func (s *LockStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
