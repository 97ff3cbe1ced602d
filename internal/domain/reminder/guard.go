package reminder

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TickGuard keeps reminder ticks from overlapping. When ok is false the
// caller must skip the tick; release is only non-nil when ok is true.
type TickGuard interface {
	TryAcquire(ctx context.Context) (release func(), ok bool, err error)
}

// LocalGuard serialises ticks inside one process.
type LocalGuard struct {
	mu sync.Mutex
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{}
}

func (g *LocalGuard) TryAcquire(context.Context) (func(), bool, error) {
	if !g.mu.TryLock() {
		return nil, false, nil
	}
	return g.mu.Unlock, true, nil
}

const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// RedisGuard extends LocalGuard with a SET NX lock so the API process and
// the one-shot cron binary never tick at the same time. If redis cannot be
// reached the tick proceeds under the local lock only.
type RedisGuard struct {
	local  LocalGuard
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	unlock *redis.Script
}

func NewRedisGuard(client redis.UniversalClient, key string, ttl time.Duration) *RedisGuard {
	if key == "" {
		key = "travelagency:reminder:tick"
	}
	return &RedisGuard{
		client: client,
		key:    key,
		ttl:    ttl,
		unlock: redis.NewScript(unlockScript),
	}
}

func (g *RedisGuard) TryAcquire(ctx context.Context) (func(), bool, error) {
	releaseLocal, ok, _ := g.local.TryAcquire(ctx)
	if !ok {
		return nil, false, nil
	}

	token := uuid.NewString()
	acquired, err := g.client.SetNX(ctx, g.key, token, g.ttl).Result()
	if err != nil {
		log.Printf("reminder_lock_unavailable key=%s err=%v", g.key, err)
		return releaseLocal, true, err
	}
	if !acquired {
		releaseLocal()
		return nil, false, nil
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := g.unlock.Run(ctx, g.client, []string{g.key}, token).Err(); err != nil {
			log.Printf("reminder_lock_release_failed key=%s err=%v", g.key, err)
		}
		releaseLocal()
	}, true, nil
}
