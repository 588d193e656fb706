package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/infra/queue"
	"go.uber.org/zap"
)

// TransitionValidator decides whether a status change may be written.
type TransitionValidator func(current, proposed entity.LeadStatus, draft entity.TransitionDraft, now time.Time) (entity.LeadPatch, error)

type UpdateLeadUseCase struct {
	Leads    entity.LeadRepositoryInterface
	Profiles entity.ProfileRepositoryInterface
	Cache    LeadListingCache
	Queue    QueueProducerInterface
	Logger   *zap.Logger
	Now      func() time.Time

	ValidateTransition TransitionValidator

	// Precondition runs against the freshly read lead right before the
	// write. Nil means last write wins.
	Precondition func(current *entity.Lead) error
}

func NewUpdateLeadUseCase(
	leads entity.LeadRepositoryInterface,
	profiles entity.ProfileRepositoryInterface,
	cache LeadListingCache,
	queue QueueProducerInterface,
	logger *zap.Logger,
) *UpdateLeadUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpdateLeadUseCase{
		Leads:              leads,
		Profiles:           profiles,
		Cache:              cache,
		Queue:              queue,
		Logger:             logger,
		Now:                time.Now,
		ValidateTransition: entity.ValidateTransition,
	}
}

func (uc *UpdateLeadUseCase) Execute(ctx context.Context, input UpdateLeadInput) (*entity.Lead, error) {
	if _, err := uuid.Parse(input.LeadID); err != nil {
		return nil, &entity.ValidationError{Field: "id", Message: "must be a valid lead id"}
	}

	patch, err := toPatch(input.Changes)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, &entity.ValidationError{Field: "lead", Message: "no changes submitted"}
	}
	if err := patch.ValidateIntakeEdits(); err != nil {
		return nil, err
	}

	current, err := uc.Leads.FindByID(ctx, input.LeadID)
	if err != nil {
		return nil, asStoreError("find lead", err)
	}

	var team []*entity.Profile
	if input.Profile.Role.IsPrivileged() {
		if team, err = teamFor(ctx, uc.Profiles, input.Profile); err != nil {
			return nil, err
		}
	}
	if !entity.CanViewLead(input.Profile, current, team) {
		return nil, &entity.AccessDeniedError{Action: "update lead " + current.ID}
	}

	reassigned := patch.AssignedTo != nil && *patch.AssignedTo != current.AssignedTo
	if reassigned && !entity.CanReassign(input.Profile, team, *patch.AssignedTo) {
		return nil, &entity.AccessDeniedError{Action: "reassign lead to " + *patch.AssignedTo}
	}

	now := uc.Now()
	statusChanged := patch.Status != nil && *patch.Status != current.Status
	if statusChanged {
		merged := patch.Apply(*current)
		draft := entity.TransitionDraft{
			DocNo:      merged.DocNo,
			LostReason: merged.LostReason,
			Edits:      patch,
		}
		if merged.Amount.Valid {
			draft.Amount = merged.Amount.Decimal.String()
		}
		patch, err = uc.ValidateTransition(current.Status, *patch.Status, draft, now)
		if err != nil {
			uc.Logger.Info("status change rejected",
				zap.String("lead_id", current.ID),
				zap.String("from", string(current.Status)),
				zap.String("to", string(*input.Changes.Status)),
				zap.Error(err),
			)
			return nil, err
		}
	} else {
		// Resubmitting the current status is not a transition
		patch.Status = nil
		patch.LastStatusChangeAt = nil
	}

	if uc.Precondition != nil {
		if err := uc.Precondition(current); err != nil {
			return nil, err
		}
	}

	updated, err := uc.Leads.Update(ctx, current.ID, patch)
	if err != nil {
		uc.Logger.Error("update lead failed", zap.String("lead_id", current.ID), zap.Error(err))
		return nil, err
	}

	uc.Logger.Info("lead updated",
		zap.String("lead_id", updated.ID),
		zap.String("actor", input.Profile.ID),
		zap.Bool("status_changed", statusChanged),
		zap.Bool("reassigned", reassigned),
	)

	invalidateListings(ctx, uc.Cache, uc.Logger)

	switch {
	case statusChanged:
		event := newLeadEvent(queue.EventLeadStatusChanged, updated, input.Profile.ID, now)
		event.PreviousStatus = string(current.Status)
		publish(ctx, uc.Queue, uc.Logger, event)
	case !reassigned:
		publish(ctx, uc.Queue, uc.Logger, newLeadEvent(queue.EventLeadUpdated, updated, input.Profile.ID, now))
	}
	if reassigned {
		event := newLeadEvent(queue.EventLeadReassigned, updated, input.Profile.ID, now)
		event.PreviousAssignee = current.AssignedTo
		publish(ctx, uc.Queue, uc.Logger, event)
	}

	return updated, nil
}

func toPatch(c LeadChanges) (entity.LeadPatch, error) {
	patch := entity.LeadPatch{
		InquiryDate:     trimmed(c.InquiryDate),
		ClientName:      trimmed(c.ClientName),
		CompanyName:     trimmed(c.CompanyName),
		Phone:           trimmed(c.Phone),
		Email:           trimmed(c.Email),
		Source:          trimmed(c.Source),
		Channel:         trimmed(c.Channel),
		ProductCategory: trimmed(c.ProductCategory),
		EnquiringAbout:  trimmed(c.EnquiringAbout),
		Notes:           c.Notes,
		AssignedTo:      trimmed(c.AssignedTo),
		LatestUpdate:    c.LatestUpdate,
		DocNo:           trimmed(c.DocNo),
		PaymentDone:     c.PaymentDone,
		LostReason:      trimmed(c.LostReason),
	}

	if c.Status != nil {
		status, ok := entity.ParseLeadStatus(strings.TrimSpace(*c.Status))
		if !ok {
			return entity.LeadPatch{}, &entity.ValidationError{Field: "status", Message: "must be one of New, Negotiation, Won, Lost"}
		}
		patch.Status = &status
	}

	if c.DeadlineAt != nil {
		if raw := strings.TrimSpace(*c.DeadlineAt); raw == "" {
			patch.ClearDeadline = true
		} else {
			deadline, ok := entity.ParseDeadline(raw)
			if !ok {
				return entity.LeadPatch{}, &entity.ValidationError{Field: "deadline_at", Message: "must be a valid timestamp"}
			}
			patch.DeadlineAt = &deadline
		}
	}

	if c.Amount != nil {
		amount, err := entity.ParseAmount(*c.Amount)
		if err != nil {
			return entity.LeadPatch{}, err
		}
		patch.Amount = &amount
	}

	return patch, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
