package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

// Repository persists one cart per customer. Each operation is a full
// read-modify-write; concurrent sessions on the same cart resolve
// last-write-wins.
type Repository interface {
	Load(ctx context.Context, customerID string) (*Cart, error)
	Save(ctx context.Context, customerID string, c *Cart) error
	Clear(ctx context.Context, customerID string) error
}

type RedisRepository struct {
	rdb *redis.Client
}

func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb}
}

func cartKey(customerID string) string {
	return "cart:" + customerID
}

// Load returns an empty cart for customers with no persisted state, so a
// first visit never errors.
func (r *RedisRepository) Load(ctx context.Context, customerID string) (*Cart, error) {
	data, err := r.rdb.Get(ctx, cartKey(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var items []domain.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}

	return FromItems(items), nil
}

func (r *RedisRepository) Save(ctx context.Context, customerID string, c *Cart) error {
	data, err := json.Marshal(c.Snapshot())
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	if err := r.rdb.Set(ctx, cartKey(customerID), data, 0).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	return nil
}

func (r *RedisRepository) Clear(ctx context.Context, customerID string) error {
	if err := r.rdb.Del(ctx, cartKey(customerID)).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
