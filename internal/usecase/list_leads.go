package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/infra/cache"
	"go.uber.org/zap"
)

const DefaultListingStaleAfter = 20 * time.Second

type ListLeadsUseCase struct {
	Leads    entity.LeadRepositoryInterface
	Profiles entity.ProfileRepositoryInterface
	Cache    LeadListingCache
	Tracker  SLATracker
	Logger   *zap.Logger
	Now      func() time.Time

	// StaleAfter is how long a cached listing is served without refetching.
	StaleAfter time.Duration
}

func NewListLeadsUseCase(
	leads entity.LeadRepositoryInterface,
	profiles entity.ProfileRepositoryInterface,
	listingCache LeadListingCache,
	tracker SLATracker,
	staleAfter time.Duration,
	logger *zap.Logger,
) *ListLeadsUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if staleAfter <= 0 {
		staleAfter = DefaultListingStaleAfter
	}
	return &ListLeadsUseCase{
		Leads:      leads,
		Profiles:   profiles,
		Cache:      listingCache,
		Tracker:    tracker,
		Logger:     logger,
		Now:        time.Now,
		StaleAfter: staleAfter,
	}
}

func (uc *ListLeadsUseCase) Execute(ctx context.Context, input ListLeadsInput) (*ListLeadsOutput, error) {
	var status entity.LeadStatus
	if raw := strings.TrimSpace(input.Status); raw != "" && !strings.EqualFold(raw, "all") {
		parsed, ok := entity.ParseLeadStatus(raw)
		if !ok {
			return nil, &entity.ValidationError{Field: "status", Message: "must be All or one of New, Negotiation, Won, Lost"}
		}
		status = parsed
	}

	listing, stale, err := uc.visible(ctx, input.Profile)
	if err != nil {
		return nil, err
	}

	now := uc.Now()
	search := strings.ToLower(strings.TrimSpace(input.Search))
	views := make([]LeadView, 0, len(listing.Leads))
	for _, lead := range listing.Leads {
		if status != "" && lead.Status != status {
			continue
		}
		if search != "" && !matchesSearch(lead, search) {
			continue
		}
		views = append(views, LeadView{Lead: lead, SLA: entity.EvaluateSLA(lead.DeadlineAt, now)})
	}

	return &ListLeadsOutput{
		Leads:     views,
		Total:     len(views),
		FetchedAt: listing.FetchedAt,
		Stale:     stale,
	}, nil
}

// visible returns every lead the profile may see, newest first, going
// through the listing cache. A cached listing is served only when no write
// has invalidated since its fetch began. When the store fails, a stale
// listing is served instead of an error.
func (uc *ListLeadsUseCase) visible(ctx context.Context, p entity.Profile) (*cache.Listing, bool, error) {
	key := listingKey(p)
	now := uc.Now()

	var (
		cached   *cache.Listing
		gen      int64
		writable bool
	)
	if uc.Cache != nil {
		var err error
		gen, err = uc.Cache.Generation(ctx)
		if err != nil {
			uc.Logger.Warn("lead listing generation read failed", zap.Error(err))
		}
		writable = err == nil

		cached, err = uc.Cache.Get(ctx, key)
		if err != nil {
			uc.Logger.Warn("lead listing cache read failed", zap.String("key", key), zap.Error(err))
			cached = nil
		}
		if writable && cached != nil && cached.Generation == gen && now.Sub(cached.FetchedAt) < uc.StaleAfter {
			if uc.Tracker != nil {
				uc.Tracker.Track(cached.Leads)
			}
			return cached, false, nil
		}
	}

	leads, err := uc.fetch(ctx, p)
	if err != nil {
		if cached != nil {
			uc.Logger.Warn("serving stale lead listing",
				zap.String("profile_id", p.ID),
				zap.Time("fetched_at", cached.FetchedAt),
				zap.Error(err),
			)
			return cached, true, nil
		}
		return nil, false, err
	}

	listing := &cache.Listing{Leads: leads, FetchedAt: now, Generation: gen}
	if writable {
		if err := uc.Cache.Set(ctx, key, *listing); err != nil {
			uc.Logger.Warn("lead listing cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	if uc.Tracker != nil {
		uc.Tracker.Track(leads)
	}
	return listing, false, nil
}

func (uc *ListLeadsUseCase) fetch(ctx context.Context, p entity.Profile) ([]*entity.Lead, error) {
	team, err := teamFor(ctx, uc.Profiles, p)
	if err != nil {
		return nil, err
	}

	filter := entity.LeadFilter{}
	if ids, all := entity.VisibleAssignees(p, team); !all {
		filter.AssignedTo = ids
	}

	leads, err := uc.Leads.List(ctx, filter)
	if err != nil {
		uc.Logger.Error("list leads failed", zap.String("profile_id", p.ID), zap.Error(err))
		return nil, asStoreError("list leads", err)
	}
	return leads, nil
}

// GetLead returns a single lead the profile may see.
func (uc *ListLeadsUseCase) GetLead(ctx context.Context, p entity.Profile, id string) (*LeadView, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &entity.ValidationError{Field: "id", Message: "must be a valid lead id"}
	}

	lead, err := uc.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, asStoreError("find lead", err)
	}

	team, err := teamFor(ctx, uc.Profiles, p)
	if err != nil {
		return nil, err
	}
	if !entity.CanViewLead(p, lead, team) {
		return nil, &entity.AccessDeniedError{Action: "view lead " + lead.ID}
	}

	return &LeadView{Lead: lead, SLA: entity.EvaluateSLA(lead.DeadlineAt, uc.Now())}, nil
}

func listingKey(p entity.Profile) string {
	return cache.ListingKey(string(p.Role), p.ID)
}

func matchesSearch(l *entity.Lead, needle string) bool {
	for _, field := range []string{l.ClientName, l.CompanyName, l.Phone, l.Email} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
