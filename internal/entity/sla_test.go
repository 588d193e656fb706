package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateSLAExamples(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	in30m := now.Add(30 * time.Minute)
	assert.Equal(t, SLAView{State: SLAWarning, Label: "30m"}, EvaluateSLA(&in30m, now))

	past := now.Add(-time.Second)
	assert.Equal(t, SLAOverdue, EvaluateSLA(&past, now).State)
	assert.Equal(t, "Overdue", EvaluateSLA(&past, now).Label)

	in50h := now.Add(50 * time.Hour)
	assert.Equal(t, SLAView{State: SLAOK, Label: "2d 2h"}, EvaluateSLA(&in50h, now))
}

func TestEvaluateSLABoundaries(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	exactly := now
	assert.Equal(t, SLAOverdue, EvaluateSLA(&exactly, now).State)

	day := now.Add(24 * time.Hour)
	assert.Equal(t, SLAWarning, EvaluateSLA(&day, now).State)
	assert.Equal(t, "1d 0h", EvaluateSLA(&day, now).Label)

	dayAndASecond := now.Add(24*time.Hour + time.Second)
	assert.Equal(t, SLAOK, EvaluateSLA(&dayAndASecond, now).State)

	assert.Equal(t, SLANeutral, EvaluateSLA(nil, now).State)
}

func TestParseDeadline(t *testing.T) {
	want := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	for _, raw := range []string{"2024-06-01T10:00:00Z", "2024-06-01 10:00:00+00:00", " 2024-06-01T10:00:00 "} {
		got, ok := ParseDeadline(raw)
		assert.True(t, ok, raw)
		assert.True(t, want.Equal(got), raw)
	}

	day, ok := ParseDeadline("2024-06-01")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), day)

	_, ok = ParseDeadline("not a date")
	assert.False(t, ok)
	_, ok = ParseDeadline("")
	assert.False(t, ok)
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "0m", FormatRemaining(59*time.Second))
	assert.Equal(t, "1m", FormatRemaining(119*time.Second))
	assert.Equal(t, "1h 0m", FormatRemaining(time.Hour))
	assert.Equal(t, "5h 42m", FormatRemaining(5*time.Hour+42*time.Minute+30*time.Second))
	assert.Equal(t, "3d 4h", FormatRemaining(76*time.Hour+59*time.Minute))
	assert.Equal(t, "0m", FormatRemaining(-time.Hour))
}

func TestEvaluateSLAIsMonotonic(t *testing.T) {
	deadline := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	rank := map[SLAState]int{SLAOK: 0, SLAWarning: 1, SLAOverdue: 2}

	prev := -1
	for now := deadline.Add(-72 * time.Hour); now.Before(deadline.Add(6 * time.Hour)); now = now.Add(17 * time.Minute) {
		state := EvaluateSLA(&deadline, now).State
		r, ok := rank[state]
		assert.True(t, ok)
		assert.GreaterOrEqual(t, r, prev, "state went back at %s", now)
		prev = r
	}
	assert.Equal(t, 2, prev)
}

func TestIsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, IsOverdue(&past, now))
	assert.False(t, IsOverdue(&future, now))
	assert.False(t, IsOverdue(nil, now))
}
