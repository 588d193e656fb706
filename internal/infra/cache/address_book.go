package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xavierca1/lead-pipeline/internal/entity"
)

const (
	addressPrefix = "profile:email:"

	// DefaultAddressTTL keeps an address around for staff who sign in rarely.
	DefaultAddressTTL = 30 * 24 * time.Hour
)

// AddressBook remembers the e-mail each signed-in user presented, so the
// notification worker can reach an assignee outside their session. The
// profiles table has no address column.
type AddressBook struct {
	client *Client
	ttl    time.Duration
}

func NewAddressBook(client *Client, ttl time.Duration) *AddressBook {
	if ttl <= 0 {
		ttl = DefaultAddressTTL
	}
	return &AddressBook{client: client, ttl: ttl}
}

// Remember stores or refreshes the address for userID. Blank addresses are
// ignored.
func (b *AddressBook) Remember(ctx context.Context, userID, email string) error {
	email = strings.TrimSpace(email)
	if userID == "" || email == "" {
		return nil
	}
	if err := b.client.Redis.Set(ctx, addressPrefix+userID, email, b.ttl).Err(); err != nil {
		return fmt.Errorf("remember address for %s: %w", userID, err)
	}
	return nil
}

// FindByID returns a profile carrying only the id and the remembered address.
func (b *AddressBook) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	email, err := b.client.Redis.Get(ctx, addressPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, &entity.StoreError{Op: "find address", Err: entity.ErrProfileNotFound}
	}
	if err != nil {
		return nil, &entity.StoreError{Op: "find address", Err: err}
	}
	return &entity.Profile{ID: id, Email: email}, nil
}
