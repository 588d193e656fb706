package worker

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/xavierca1/lead-pipeline/internal/entity"
	"go.uber.org/zap"
)

var slaLeads = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "lead_sla_leads",
		Help: "Tracked leads per SLA state as of the last tick",
	},
	[]string{"state"},
)

// snapshotTTL is how long a lead stays tracked after the last listing that
// carried it.
const snapshotTTL = 15 * time.Minute

type trackedLead struct {
	lead   *entity.Lead
	seenAt time.Time
}

// SLAMonitor keeps the most recently fetched leads and re-classifies them on
// every tick. It never fetches on its own.
type SLAMonitor struct {
	mu       sync.Mutex
	leads    map[string]trackedLead
	states   map[string]entity.SLAState
	interval time.Duration
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewSLAMonitor(interval time.Duration, logger *zap.Logger) *SLAMonitor {
	if interval <= 0 {
		interval = entity.SLATickInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SLAMonitor{
		leads:    make(map[string]trackedLead),
		states:   make(map[string]entity.SLAState),
		interval: interval,
		ttl:      snapshotTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Track merges a listing into the snapshot. Leads no listing has carried for
// the snapshot TTL are dropped on the next tick.
func (m *SLAMonitor) Track(leads []*entity.Lead) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for _, l := range leads {
		if l == nil || l.ID == "" {
			continue
		}
		m.leads[l.ID] = trackedLead{lead: l, seenAt: now}
	}
}

func (m *SLAMonitor) Start(ctx context.Context) {
	m.logger.Info("sla monitor started", zap.Duration("interval", m.interval))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Tick()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("sla monitor stopped")
			return
		case <-ticker.C:
			m.Tick()
		}
	}
}

// Tick re-evaluates every tracked lead and returns the count per state.
func (m *SLAMonitor) Tick() map[entity.SLAState]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	counts := map[entity.SLAState]int{
		entity.SLANeutral: 0,
		entity.SLAOK:      0,
		entity.SLAWarning: 0,
		entity.SLAOverdue: 0,
	}

	for id, t := range m.leads {
		if now.Sub(t.seenAt) > m.ttl {
			delete(m.leads, id)
			delete(m.states, id)
			continue
		}

		l := t.lead
		state := entity.EvaluateSLA(l.DeadlineAt, now).State
		counts[state]++

		prev, seen := m.states[id]
		if state == entity.SLAOverdue && seen && prev != entity.SLAOverdue && l.Status.IsOpen() {
			m.logger.Warn("lead went overdue",
				zap.String("lead_id", id),
				zap.String("assigned_to", l.AssignedTo),
				zap.String("status", string(l.Status)),
			)
		}
		m.states[id] = state
	}

	for state, n := range counts {
		slaLeads.WithLabelValues(string(state)).Set(float64(n))
	}
	return counts
}
