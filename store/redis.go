package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements SessionCache on Redis, for deployments where several
// processes must share one session cache. Like the memory cache, entries
// live until explicitly removed; expiry is enforced by the session manager,
// not by Redis TTLs.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// RedisConfig contains configuration options for the Redis session cache.
type RedisConfig struct {
	// Addr is the Redis server address (e.g., "localhost:6379").
	Addr string

	// Password is the Redis password (empty for no auth).
	Password string

	// DB is the Redis database number.
	DB int

	// KeyPrefix is prepended to all keys (default: "chargeauth:").
	// Typically ends with a colon.
	KeyPrefix string
}

// NewRedisCache creates a Redis session cache from an existing client and a
// key prefix. The prefix typically ends with a colon.
func NewRedisCache(client *redis.Client, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = "chargeauth:"
	}
	return &RedisCache{client: client, prefix: keyPrefix}
}

// NewRedisFromConfig creates a Redis session cache, verifying connectivity.
func NewRedisFromConfig(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: failed to connect: %w", err)
	}

	return NewRedisCache(client, cfg.KeyPrefix), nil
}

type redisSession struct {
	CustomerID     int64     `json:"customer_id"`
	AccessRights   string    `json:"access_rights"`
	ExpirationDate time.Time `json:"expiration_date"`
}

func (c *RedisCache) tokenKey(token string) string {
	return c.prefix + "session:" + token
}

func (c *RedisCache) customerKey(customerID int64) string {
	return c.prefix + "customer:" + strconv.FormatInt(customerID, 10)
}

// Lookup returns the cached session for token, if present.
func (c *RedisCache) Lookup(token string) (UserSession, bool, error) {
	ctx := context.Background()

	raw, err := c.client.Get(ctx, c.tokenKey(token)).Result()
	if err == redis.Nil {
		return UserSession{}, false, nil
	}
	if err != nil {
		return UserSession{}, false, fmt.Errorf("redis: failed to get session: %w", err)
	}

	var rs redisSession
	if err := json.Unmarshal([]byte(raw), &rs); err != nil {
		return UserSession{}, false, fmt.Errorf("redis: failed to decode session: %w", err)
	}
	return UserSession{
		CustomerID:     rs.CustomerID,
		AccessRights:   rs.AccessRights,
		ExpirationDate: rs.ExpirationDate,
	}, true, nil
}

// Store caches a session under token and indexes it by customer.
func (c *RedisCache) Store(token string, s UserSession) error {
	ctx := context.Background()

	raw, err := json.Marshal(redisSession{
		CustomerID:     s.CustomerID,
		AccessRights:   s.AccessRights,
		ExpirationDate: s.ExpirationDate,
	})
	if err != nil {
		return fmt.Errorf("redis: failed to encode session: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.tokenKey(token), raw, 0)
	pipe.SAdd(ctx, c.customerKey(s.CustomerID), token)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: failed to store session: %w", err)
	}
	return nil
}

// Replace evicts every cached token for the customer, then stores the new
// one as the sole entry.
func (c *RedisCache) Replace(customerID int64, token string, s UserSession) error {
	if err := c.RemoveCustomer(customerID); err != nil {
		return err
	}
	return c.Store(token, s)
}

// Remove drops token from both indexes.
func (c *RedisCache) Remove(token string) error {
	ctx := context.Background()

	s, ok, err := c.Lookup(token)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, c.tokenKey(token))
	pipe.SRem(ctx, c.customerKey(s.CustomerID), token)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: failed to remove session: %w", err)
	}
	return nil
}

// RemoveCustomer drops every cached token belonging to the customer.
func (c *RedisCache) RemoveCustomer(customerID int64) error {
	ctx := context.Background()

	tokens, err := c.client.SMembers(ctx, c.customerKey(customerID)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("redis: failed to list customer sessions: %w", err)
	}

	pipe := c.client.TxPipeline()
	for _, t := range tokens {
		pipe.Del(ctx, c.tokenKey(t))
	}
	pipe.Del(ctx, c.customerKey(customerID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: failed to remove customer sessions: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error { return c.client.Close() }
