package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

type Repository interface {
	Load(ctx context.Context, customerID string) (*Wishlist, error)
	Save(ctx context.Context, customerID string, w *Wishlist) error
}

type RedisRepository struct {
	rdb *redis.Client
}

func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb}
}

func wishlistKey(customerID string) string {
	return "wishlist:" + customerID
}

func (r *RedisRepository) Load(ctx context.Context, customerID string) (*Wishlist, error) {
	data, err := r.rdb.Get(ctx, wishlistKey(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}

	var entries []domain.WishlistEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode wishlist: %w", err)
	}

	return FromEntries(entries), nil
}

func (r *RedisRepository) Save(ctx context.Context, customerID string, w *Wishlist) error {
	data, err := json.Marshal(w.Entries())
	if err != nil {
		return fmt.Errorf("encode wishlist: %w", err)
	}

	if err := r.rdb.Set(ctx, wishlistKey(customerID), data, 0).Err(); err != nil {
		return fmt.Errorf("save wishlist: %w", err)
	}

	return nil
}
