package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	appinventory "github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	redis "github.com/redis/go-redis/v9"
)

var _ appinventory.ValuationCache = (*RedisValuationCache)(nil)

const generationPrefix = "valuation:gen:"

// RedisValuationCache comparte valorizaciones y generaciones entre instancias de la API.
type RedisValuationCache struct {
	client *redis.Client
}

func NewRedisValuationCache(addr string, password string, db int) *RedisValuationCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisValuationCache{client: client}
}

func (c *RedisValuationCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisValuationCache) Close() error {
	return c.client.Close()
}

func (c *RedisValuationCache) Get(ctx context.Context, key string) ([]inventory.ProductValuation, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []inventory.ProductValuation
	if err := json.Unmarshal(val, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (c *RedisValuationCache) Set(ctx context.Context, key string, value []inventory.ProductValuation, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if value == nil {
		value = []inventory.ProductValuation{}
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

// Generation clave ausente equivale a generación 0.
func (c *RedisValuationCache) Generation(ctx context.Context, companyID string) (int64, error) {
	gen, err := c.client.Get(ctx, generationPrefix+companyID).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Bump INCR atómico: dos escrituras concurrentes nunca comparten generación.
func (c *RedisValuationCache) Bump(ctx context.Context, companyID string) error {
	return c.client.Incr(ctx, generationPrefix+companyID).Err()
}
