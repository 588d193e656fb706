package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/lead-pipeline/internal/infra/http/handlers"
)

type fakeBroker struct{ closed bool }

func (b fakeBroker) IsClosed() bool { return b.closed }

func healthy(context.Context) error { return nil }

func TestHealthAllDependenciesUp(t *testing.T) {
	h := handlers.NewHealthHandler(handlers.PingFunc(healthy), handlers.PingFunc(healthy), fakeBroker{})

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body handlers.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Dependencies["redis"])
}

func TestHealthOptionalDependenciesMissing(t *testing.T) {
	h := handlers.NewHealthHandler(handlers.PingFunc(healthy), nil, nil)

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body handlers.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "not configured", body.Dependencies["rabbitmq"])
}

func TestHealthDegraded(t *testing.T) {
	down := handlers.PingFunc(func(context.Context) error { return errors.New("dial tcp: refused") })
	h := handlers.NewHealthHandler(down, nil, fakeBroker{closed: true})

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body handlers.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unhealthy: connection closed", body.Dependencies["rabbitmq"])
}
