package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

var ErrNoData = errors.New("no checkout data")

// Bundle is the last-submitted contact and shipping info for a customer,
// kept so a returning customer's checkout form can be prefilled.
type Bundle struct {
	Customer        domain.Customer        `json:"customer"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	PaymentMethod   domain.PaymentMethod   `json:"payment_method"`
	SubmittedAt     time.Time              `json:"submitted_at"`
}

type DataStore interface {
	SaveBundle(ctx context.Context, customerID string, b Bundle) error
	LoadBundle(ctx context.Context, customerID string) (*Bundle, error)
}

type RedisDataStore struct {
	rdb *redis.Client
}

func NewRedisDataStore(rdb *redis.Client) *RedisDataStore {
	return &RedisDataStore{rdb: rdb}
}

func bundleKey(customerID string) string {
	return "checkout:" + customerID
}

func (s *RedisDataStore) SaveBundle(ctx context.Context, customerID string, b Bundle) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode checkout data: %w", err)
	}

	if err := s.rdb.Set(ctx, bundleKey(customerID), data, 0).Err(); err != nil {
		return fmt.Errorf("save checkout data: %w", err)
	}

	return nil
}

func (s *RedisDataStore) LoadBundle(ctx context.Context, customerID string) (*Bundle, error) {
	data, err := s.rdb.Get(ctx, bundleKey(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("load checkout data: %w", err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode checkout data: %w", err)
	}

	return &b, nil
}
