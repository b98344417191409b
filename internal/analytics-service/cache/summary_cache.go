package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func keyUser(userID string) string { return "analytics:summary:" + userID }

// GetSummary lê o resumo cacheado do usuário; (false, nil) em cache miss.
func (c *Cache) GetSummary(ctx context.Context, userID string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyUser(userID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetSummary(ctx context.Context, userID string, v any, ttl time.Duration) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyUser(userID), b, ttl).Err()
}

// Invalidate remove o resumo cacheado; chamado quando uma aposta do
// usuário muda de status.
func (c *Cache) Invalidate(ctx context.Context, userID string) error {
	return c.R.Del(ctx, keyUser(userID)).Err()
}
