package worker

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/infra/queue"
	"go.uber.org/zap"
)

const AutoLostReason = "SLA deadline exceeded"

var autoLostTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "leads_auto_lost_total",
		Help: "Total number of open leads closed as Lost by the deadline sweeper",
	},
)

type ListingInvalidator interface {
	Invalidate(ctx context.Context) error
}

type EventPublisher interface {
	PublishLeadEvent(ctx context.Context, event queue.LeadEvent) error
}

// SweepLock is satisfied by *cache.Locker.
type SweepLock interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

const sweepLockKey = "lock:leads:auto-lost"

// AutoLostSweeper closes open leads whose deadline passed more than grace
// ago.
type AutoLostSweeper struct {
	db       *sql.DB
	cron     *cron.Cron
	schedule string
	grace    time.Duration
	cache    ListingInvalidator
	queue    EventPublisher
	lock     SweepLock
	logger   *zap.Logger
	now      func() time.Time
}

func NewAutoLostSweeper(db *sql.DB, schedule string, grace time.Duration, cache ListingInvalidator, queue EventPublisher, logger *zap.Logger) *AutoLostSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoLostSweeper{
		db:       db,
		cron:     cron.New(),
		schedule: schedule,
		grace:    grace,
		cache:    cache,
		queue:    queue,
		logger:   logger,
		now:      time.Now,
	}
}

// Enabled is false when the grace period is zero.
func (s *AutoLostSweeper) Enabled() bool {
	return s.grace > 0
}

// WithLock makes every scheduled run take lock first. Without a lock each
// replica sweeps; SKIP LOCKED keeps them from closing the same lead twice.
func (s *AutoLostSweeper) WithLock(lock SweepLock) *AutoLostSweeper {
	s.lock = lock
	return s
}

func (s *AutoLostSweeper) Start() error {
	if !s.Enabled() {
		s.logger.Info("auto-lost sweeper disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		s.run(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid auto-lost schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("auto-lost sweeper started", zap.String("schedule", s.schedule), zap.Duration("grace", s.grace))
	return nil
}

// run is one scheduled tick: lock, sweep, release.
func (s *AutoLostSweeper) run(ctx context.Context) {
	if s.lock != nil {
		release, ok, err := s.lock.TryLock(ctx, sweepLockKey, 2*time.Minute)
		switch {
		case err != nil:
			s.logger.Warn("sweep lock unavailable, sweeping without it", zap.Error(err))
		case !ok:
			s.logger.Debug("another replica holds the sweep lock")
			return
		default:
			defer func() {
				if err := release(context.Background()); err != nil {
					s.logger.Warn("failed to release sweep lock", zap.Error(err))
				}
			}()
		}
	}

	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error("auto-lost sweep failed", zap.Error(err))
	}
}

// Stop waits for a running sweep to finish.
func (s *AutoLostSweeper) Stop() {
	<-s.cron.Stop().Done()
}

const sweepQuery = `
	WITH expired AS (
		SELECT id, status
		FROM leads
		WHERE status IN ('New', 'Negotiation')
			AND deadline_at IS NOT NULL
			AND deadline_at < $2
		FOR UPDATE SKIP LOCKED
	)
	UPDATE leads l
	SET
		status = 'Lost',
		auto_lost = true,
		lost_reason = $3,
		last_status_change_at = $1
	FROM expired e
	WHERE l.id = e.id
	RETURNING l.id, l.client_name, l.assigned_to, e.status
`

// Sweep runs one pass and returns how many leads were closed.
func (s *AutoLostSweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now().UTC()
	cutoff := now.Add(-s.grace)

	rows, err := s.db.QueryContext(ctx, sweepQuery, now, cutoff, AutoLostReason)
	if err != nil {
		return 0, &entity.StoreError{Op: "sweep overdue leads", Err: err}
	}
	defer rows.Close()

	var events []queue.LeadEvent
	for rows.Next() {
		var id, clientName, assignedTo, previous string
		if err := rows.Scan(&id, &clientName, &assignedTo, &previous); err != nil {
			s.logger.Warn("failed to scan swept lead", zap.Error(err))
			continue
		}
		events = append(events, queue.LeadEvent{
			Type:           queue.EventLeadStatusChanged,
			OccurredAt:     now,
			LeadID:         id,
			ClientName:     clientName,
			Status:         string(entity.StatusLost),
			PreviousStatus: previous,
			AssignedTo:     assignedTo,
			LostReason:     AutoLostReason,
			AutoLost:       true,
		})
	}
	if err := rows.Err(); err != nil {
		return 0, &entity.StoreError{Op: "sweep overdue leads", Err: err}
	}

	if len(events) == 0 {
		return 0, nil
	}

	autoLostTotal.Add(float64(len(events)))
	s.logger.Info("overdue leads closed as lost", zap.Int("count", len(events)), zap.Time("cutoff", cutoff))

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("lead listing cache invalidation failed", zap.Error(err))
		}
	}
	if s.queue != nil {
		for _, event := range events {
			if err := s.queue.PublishLeadEvent(ctx, event); err != nil {
				s.logger.Warn("lead event not published", zap.String("lead_id", event.LeadID), zap.Error(err))
			}
		}
	}

	return len(events), nil
}
