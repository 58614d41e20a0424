package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"carrental/internal/utils"

	"github.com/google/uuid"
)

const lockRetryInterval = 50 * time.Millisecond

type DistributedLock struct {
	Key        string        `json:"key"`
	Value      string        `json:"value"`
	Expiration time.Duration `json:"expiration"`
	CreatedAt  time.Time     `json:"created_at"`
}

// LockService serializes work on a key across requests. Lock waits until the
// key is free, the wait budget (ttl) runs out, or ctx is done.
type LockService interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (*DistributedLock, error)
	Unlock(ctx context.Context, lock *DistributedLock) error
}

type redisLockService struct {
	cache CacheService
}

// NewRedisLockService locks with SET NX so every instance sharing the Redis
// sees the same lock.
func NewRedisLockService(cache CacheService) LockService {
	return &redisLockService{cache: cache}
}

func (s *redisLockService) Lock(ctx context.Context, key string, ttl time.Duration) (*DistributedLock, error) {
	lock := &DistributedLock{
		Key:        key,
		Value:      uuid.NewString(),
		Expiration: ttl,
		CreatedAt:  time.Now(),
	}

	deadline := time.NewTimer(ttl)
	defer deadline.Stop()
	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		acquired, err := s.cache.AcquireLock(ctx, lock.Key, lock.Value, ttl)
		if err != nil {
			return nil, utils.NewInternalError("failed to acquire lock", err)
		}
		if acquired {
			return lock, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, utils.NewConflictError("resource is busy, please retry")
		case <-ticker.C:
		}
	}
}

func (s *redisLockService) Unlock(ctx context.Context, lock *DistributedLock) error {
	if lock == nil {
		return nil
	}
	return s.cache.ReleaseLock(ctx, lock.Key, lock.Value)
}

type localLockService struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocalLockService locks within this process only. Used when Redis is not
// configured, which is only safe for a single instance.
func NewLocalLockService() LockService {
	return &localLockService{slots: make(map[string]chan struct{})}
}

func (s *localLockService) slot(key string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.slots[key] = ch
	}
	return ch
}

func (s *localLockService) Lock(ctx context.Context, key string, ttl time.Duration) (*DistributedLock, error) {
	deadline := time.NewTimer(ttl)
	defer deadline.Stop()

	select {
	case s.slot(key) <- struct{}{}:
		return &DistributedLock{Key: key, Expiration: ttl, CreatedAt: time.Now()}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-deadline.C:
		return nil, utils.NewConflictError("resource is busy, please retry")
	}
}

func (s *localLockService) Unlock(ctx context.Context, lock *DistributedLock) error {
	if lock == nil {
		return nil
	}
	select {
	case <-s.slot(lock.Key):
		return nil
	default:
		return fmt.Errorf("lock %s is not held", lock.Key)
	}
}
