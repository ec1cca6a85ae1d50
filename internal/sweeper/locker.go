package sweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auction-engine/utils"

	"github.com/redis/go-redis/v9"
)

// Locker grants a named lease to one holder at a time
type Locker interface {
	// TryLock acquires key for ttl. It returns false without error when
	// another holder owns the lease.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// releaseScript deletes the lease only if it is still held by this token
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// RedisLocker leases keys in Redis so that only one replica sweeps at a time
type RedisLocker struct {
	client *redis.Client
	token  string
}

// NewRedisLocker connects to Redis at addr and verifies the connection
func NewRedisLocker(addr string) (*RedisLocker, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisLocker{client: rdb, token: utils.GenerateID()}, nil
}

// TryLock sets key with NX and a TTL
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, l.token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return ok, nil
}

// Unlock releases key if this locker still holds it
func (l *RedisLocker) Unlock(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, l.client, []string{key}, l.token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

// LocalLocker leases keys within a single process
type LocalLocker struct {
	mu     sync.Mutex
	leases map[string]time.Time
	now    func() time.Time
}

// NewLocalLocker creates a new LocalLocker instance
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{leases: make(map[string]time.Time), now: time.Now}
}

func (l *LocalLocker) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expires, held := l.leases[key]; held && now.Before(expires) {
		return false, nil
	}
	l.leases[key] = now.Add(ttl)
	return true, nil
}

func (l *LocalLocker) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.leases, key)
	return nil
}
