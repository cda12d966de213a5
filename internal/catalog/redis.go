package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// DefaultSnapshotKey is the Redis key the catalog snapshot lives under.
const DefaultSnapshotKey = "catalog:snapshot"

type snapshot struct {
	FetchedAt time.Time        `json:"fetched_at"`
	Products  []domain.Product `json:"products"`
}

// RedisStore implements Store on top of a Redis string key, so several engine
// instances share the last fetched catalog.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore creates a Redis-backed snapshot store. A zero ttl keeps the
// snapshot until it is overwritten.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		key:    DefaultSnapshotKey,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Load reads the stored snapshot.
func (s *RedisStore) Load(ctx context.Context) (_ []domain.Product, err error) {
	ctx, end := database.TraceCommand(ctx, "GET", s.key)
	defer func() { end(err) }()

	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("catalog snapshot", s.key)
		}
		return nil, fmt.Errorf("redis get catalog snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal catalog snapshot: %w", err)
	}
	if snap.Products == nil {
		snap.Products = []domain.Product{}
	}
	return snap.Products, nil
}

// Save overwrites the snapshot with products.
func (s *RedisStore) Save(ctx context.Context, products []domain.Product) (err error) {
	ctx, end := database.TraceCommand(ctx, "SET", s.key)
	defer func() { end(err) }()

	data, err := json.Marshal(snapshot{FetchedAt: s.now().UTC(), Products: products})
	if err != nil {
		return fmt.Errorf("marshal catalog snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set catalog snapshot: %w", err)
	}
	return nil
}

// Clear removes the snapshot.
func (s *RedisStore) Clear(ctx context.Context) (err error) {
	ctx, end := database.TraceCommand(ctx, "DEL", s.key)
	defer func() { end(err) }()

	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del catalog snapshot: %w", err)
	}
	return nil
}
