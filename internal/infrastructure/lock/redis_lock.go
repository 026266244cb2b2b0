// Package lock implementa locks distribuidos simples sobre Redis para que dos
// workers no precalculen a la vez las valorizaciones del mismo tenant.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired el lock está tomado por otro proceso.
var ErrNotAcquired = errors.New("lock: ocupado")

// releaseScript borra la clave solo si sigue siendo nuestra.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("lock: ping: %w", err)
	}
	return client, nil
}

// Locker toma locks con expiración sobre un cliente Redis.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLocker construye el locker; ttl acota cuánto sobrevive un lock si el dueño muere.
func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl}
}

// Lock lock tomado; Release lo libera si no expiró.
type Lock struct {
	client *redis.Client
	key    string
	token  string
}

// Acquire intenta tomar key sin esperar. ErrNotAcquired si otro lo tiene.
func (l *Locker) Acquire(ctx context.Context, key string) (*Lock, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock: set %s: %w", key, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	return &Lock{client: l.client, key: key, token: token}, nil
}

// Release libera el lock. No toca la clave si ya expiró y la tomó otro.
func (lk *Lock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, lk.client, []string{lk.key}, lk.token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("lock: release %s: %w", lk.key, err)
	}
	return nil
}

// Key clave del lock.
func (lk *Lock) Key() string { return lk.key }
