package usecase

import (
	"context"

	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/infra/cache"
	"github.com/xavierca1/lead-pipeline/internal/infra/queue"
)

// LeadListingCache holds fetched listings per acting profile. Get returns
// nil, nil on a miss. Generation moves forward on every Invalidate.
type LeadListingCache interface {
	Get(ctx context.Context, key string) (*cache.Listing, error)
	Set(ctx context.Context, key string, listing cache.Listing) error
	Generation(ctx context.Context) (int64, error)
	Invalidate(ctx context.Context) error
}

type QueueProducerInterface interface {
	PublishLeadEvent(ctx context.Context, event queue.LeadEvent) error
}

// AddressDirectory keeps the session e-mail of each user for notifications.
type AddressDirectory interface {
	Remember(ctx context.Context, userID, email string) error
}

// SLATracker receives every freshly fetched listing so the SLA monitor can
// keep re-classifying it between fetches.
type SLATracker interface {
	Track(leads []*entity.Lead)
}
