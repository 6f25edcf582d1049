// Package cache is a read-through document cache in front of the
// reconstructor. Reads of a single event hit Redis first; writes and
// deactivations invalidate the entry.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IvanBrasilico/apirecintos/config"

	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned when the cache holds no entry for the key.
var ErrMiss = redis.Nil

// DocumentCache caches reconstructed event documents keyed by event
// type, facility and external id.
type DocumentCache interface {
	GetDocument(ctx context.Context, eventType, facility, externalID string) (map[string]interface{}, error)
	SetDocument(ctx context.Context, eventType, facility, externalID string, doc map[string]interface{}) error
	DeleteDocument(ctx context.Context, eventType, facility, externalID string) error
	Close() error
}

// redisCache implements DocumentCache over go-redis. When disabled it
// reports a miss on every read and discards writes, so callers never
// branch on configuration.
type redisCache struct {
	client  *redis.Client
	enabled bool
	ttl     time.Duration
}

// NewRedisCache creates a document cache. With cfg.Enabled false no
// connection is attempted.
func NewRedisCache(cfg config.RedisConfig) (DocumentCache, error) {
	if !cfg.Enabled {
		return &redisCache{enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisCache{
		client:  client,
		enabled: true,
		ttl:     time.Duration(cfg.TTL) * time.Second,
	}, nil
}

func cacheKey(eventType, facility, externalID string) string {
	return fmt.Sprintf("evento:%s:%s:%s", eventType, facility, externalID)
}

// GetDocument retrieves a cached document
func (r *redisCache) GetDocument(ctx context.Context, eventType, facility, externalID string) (map[string]interface{}, error) {
	if !r.enabled {
		return nil, ErrMiss
	}
	raw, err := r.client.Get(ctx, cacheKey(eventType, facility, externalID)).Result()
	if err != nil {
		return nil, err
	}
	// UseNumber keeps 64-bit fingerprints exact through the round trip.
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// SetDocument caches a document with the configured TTL
func (r *redisCache) SetDocument(ctx context.Context, eventType, facility, externalID string, doc map[string]interface{}) error {
	if !r.enabled {
		return nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, cacheKey(eventType, facility, externalID), string(raw), r.ttl).Err()
}

// DeleteDocument removes a cached document
func (r *redisCache) DeleteDocument(ctx context.Context, eventType, facility, externalID string) error {
	if !r.enabled {
		return nil
	}
	return r.client.Del(ctx, cacheKey(eventType, facility, externalID)).Err()
}

// Close closes the Redis connection
func (r *redisCache) Close() error {
	if !r.enabled || r.client == nil {
		return nil
	}
	return r.client.Close()
}
