package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/infra/queue"
	"go.uber.org/zap"
)

type CreateLeadUseCase struct {
	Leads    entity.LeadRepositoryInterface
	Profiles entity.ProfileRepositoryInterface
	Cache    LeadListingCache
	Queue    QueueProducerInterface
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewCreateLeadUseCase(
	leads entity.LeadRepositoryInterface,
	profiles entity.ProfileRepositoryInterface,
	cache LeadListingCache,
	queue QueueProducerInterface,
	logger *zap.Logger,
) *CreateLeadUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreateLeadUseCase{
		Leads:    leads,
		Profiles: profiles,
		Cache:    cache,
		Queue:    queue,
		Logger:   logger,
		Now:      time.Now,
	}
}

func (uc *CreateLeadUseCase) Execute(ctx context.Context, input CreateLeadInput) (*entity.Lead, error) {
	now := uc.Now()

	// 1. Valida o formulário antes de qualquer I/O
	lead, err := entity.NewLead(input.Draft, now)
	if err != nil {
		return nil, err
	}

	// 2. Resolve o dono do lead
	var team []*entity.Profile
	if input.Profile.Role.IsPrivileged() && lead.AssignedTo != "" && lead.AssignedTo != input.Profile.ID {
		team, err = teamFor(ctx, uc.Profiles, input.Profile)
		if err != nil {
			return nil, err
		}
	}
	owner, err := entity.ResolveAssignee(input.Profile, team, lead.AssignedTo)
	if err != nil {
		return nil, err
	}
	lead.AssignedTo = owner

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	// 3. Persiste
	created, err := uc.Leads.Create(ctx, lead)
	if err != nil {
		uc.Logger.Error("create lead failed", zap.String("actor", input.Profile.ID), zap.Error(err))
		return nil, err
	}

	uc.Logger.Info("lead created",
		zap.String("lead_id", created.ID),
		zap.String("assigned_to", created.AssignedTo),
		zap.String("status", string(created.Status)),
		zap.String("actor", input.Profile.ID),
	)

	// 4. Efeitos colaterais. Nenhum deles desfaz a criação.
	invalidateListings(ctx, uc.Cache, uc.Logger)
	publish(ctx, uc.Queue, uc.Logger, newLeadEvent(queue.EventLeadCreated, created, input.Profile.ID, now))

	return created, nil
}

func invalidateListings(ctx context.Context, c LeadListingCache, logger *zap.Logger) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx); err != nil {
		logger.Warn("lead listing cache invalidation failed", zap.Error(err))
	}
}

func publish(ctx context.Context, q QueueProducerInterface, logger *zap.Logger, event queue.LeadEvent) {
	if q == nil {
		return
	}
	if err := q.PublishLeadEvent(ctx, event); err != nil {
		logger.Warn("lead event not published",
			zap.String("type", event.Type),
			zap.String("lead_id", event.LeadID),
			zap.Error(err),
		)
	}
}

func newLeadEvent(eventType string, l *entity.Lead, actorID string, now time.Time) queue.LeadEvent {
	event := queue.LeadEvent{
		Type:       eventType,
		OccurredAt: now,
		ActorID:    actorID,
		LeadID:     l.ID,
		ClientName: l.ClientName,
		Status:     string(l.Status),
		AssignedTo: l.AssignedTo,
		DocNo:      l.DocNo,
		LostReason: l.LostReason,
		AutoLost:   l.AutoLost,
	}
	if l.Amount.Valid {
		event.Amount = l.Amount.Decimal.String()
	}
	return event
}
