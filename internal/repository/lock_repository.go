package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// LockRepository hands out short-lived per-driver locks in Redis.
type LockRepository struct {
	client *redis.Client
}

// NewLockRepository constructs a lock repository.
func NewLockRepository(client *redis.Client) *LockRepository {
	return &LockRepository{client: client}
}

// AcquireDriverLock tries to take lock:driver:<id>. It returns the release token and
// whether the lock was obtained.
func (r *LockRepository) AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, driverLockKey(driverID), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire driver lock: %w", err)
	}
	return token, ok, nil
}

// ReleaseDriverLock frees the lock if token still owns it.
func (r *LockRepository) ReleaseDriverLock(ctx context.Context, driverID, token string) error {
	if err := releaseScript.Run(ctx, r.client, []string{driverLockKey(driverID)}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("release driver lock: %w", err)
	}
	return nil
}

func driverLockKey(driverID string) string {
	return fmt.Sprintf("lock:driver:%s", driverID)
}
