package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Pinger covers *sql.DB and the redis cache client.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Closable covers the RabbitMQ connection wrapper.
type Closable interface {
	IsClosed() bool
}

type HealthHandler struct {
	DB        Pinger
	Cache     Pinger
	RabbitMQ  Closable
	StartTime time.Time
	Timeout   time.Duration
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(db Pinger, cache Pinger, rabbitMQ Closable) *HealthHandler {
	return &HealthHandler{
		DB:        db,
		Cache:     cache,
		RabbitMQ:  rabbitMQ,
		StartTime: time.Now(),
		Timeout:   2 * time.Second,
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	deps := make(map[string]string)

	deps["database"] = pingStatus(ctx, h.DB)
	// Cache is optional; listings fall back to the store without it.
	deps["redis"] = pingStatus(ctx, h.Cache)

	if h.RabbitMQ != nil {
		if h.RabbitMQ.IsClosed() {
			deps["rabbitmq"] = "unhealthy: connection closed"
		} else {
			deps["rabbitmq"] = "healthy"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	response := HealthResponse{
		Status:       status,
		Version:      "1.0.0",
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "degraded" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "not configured"
	}
	if err := p.PingContext(ctx); err != nil {
		return fmt.Sprintf("unhealthy: %v", err)
	}
	return "healthy"
}
