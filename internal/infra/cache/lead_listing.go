package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xavierca1/lead-pipeline/internal/entity"
	"go.uber.org/zap"
)

const (
	listingPrefix = "leads:"
	// Fora do prefixo, senão o próprio Invalidate apagaria o contador
	generationKey = "lead-listings:generation"

	// DefaultListingTTL is how long an unused listing is kept around to serve
	// as a stale fallback.
	DefaultListingTTL = 10 * time.Minute
)

// Listing is a fetched lead listing and the moment it was fetched.
// Generation is the invalidation count read before the fetch started; a
// listing whose generation is behind the current one predates a write.
type Listing struct {
	Leads      []*entity.Lead `json:"leads"`
	FetchedAt  time.Time      `json:"fetched_at"`
	Generation int64          `json:"generation"`
}

// ListingKey scopes a listing to the acting profile and its role, so a role
// change never serves leads from the old scope.
func ListingKey(role, profileID string) string {
	return listingPrefix + role + ":" + profileID
}

type LeadListingCache struct {
	client *Client
	ttl    time.Duration
}

func NewLeadListingCache(client *Client, ttl time.Duration) *LeadListingCache {
	if ttl <= 0 {
		ttl = DefaultListingTTL
	}
	return &LeadListingCache{client: client, ttl: ttl}
}

// Get returns nil, nil on a miss.
func (c *LeadListingCache) Get(ctx context.Context, key string) (*Listing, error) {
	raw, err := c.client.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get listing %s: %w", key, err)
	}

	var listing Listing
	if err := json.Unmarshal(raw, &listing); err != nil {
		// Entrada corrompida vale como miss
		c.client.logger.Warn("dropping unreadable listing", zap.String("key", key), zap.Error(err))
		_ = c.client.Redis.Del(ctx, key).Err()
		return nil, nil
	}
	return &listing, nil
}

func (c *LeadListingCache) Set(ctx context.Context, key string, listing Listing) error {
	raw, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("encode listing: %w", err)
	}
	return c.client.Redis.Set(ctx, key, raw, c.ttl).Err()
}

// Generation returns the current invalidation count, 0 before the first write.
func (c *LeadListingCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Redis.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get listing generation: %w", err)
	}
	return gen, nil
}

// Invalidate bumps the generation and drops every cached listing. Any lead
// write can change what any profile sees, so there is no finer scope. The
// bump comes first so a listing fetched before the write and stored after
// the delete is still recognised as outdated.
func (c *LeadListingCache) Invalidate(ctx context.Context) error {
	if err := c.client.Redis.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("bump listing generation: %w", err)
	}
	n, err := c.client.DeletePattern(ctx, listingPrefix+"*")
	if err != nil {
		return err
	}
	c.client.logger.Debug("lead listings invalidated", zap.Int("keys", n))
	return nil
}
