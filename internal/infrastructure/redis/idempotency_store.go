package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyPrefix  = "wms:idempotency:"
	defaultIdempotencyTTL = 24 * time.Hour
)

// IdempotencyStore reserva llaves Idempotency-Key con SETNX + TTL.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient abre el cliente y verifica la conexión con PING.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewIdempotencyStore ttl <= 0 usa 24h.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve devuelve false si la llave ya estaba tomada.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reservar llave de idempotencia: %w", err)
	}
	return ok, nil
}

// Release libera la llave para permitir un reintento (la petición falló).
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, idempotencyKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("liberar llave de idempotencia: %w", err)
	}
	return nil
}
