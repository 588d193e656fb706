package entity

import (
	"fmt"
	"strings"
	"time"
)

type SLAState string

const (
	SLANeutral SLAState = "neutral"
	SLAOverdue SLAState = "overdue"
	SLAWarning SLAState = "warning"
	SLAOK      SLAState = "ok"
)

const (
	// SLAWarningWindow is how close to the deadline a lead turns to warning.
	SLAWarningWindow = 24 * time.Hour
	// SLATickInterval is the cadence at which loaded leads are re-classified.
	SLATickInterval = time.Minute

	SLAOverdueLabel = "Overdue"
	SLANeutralLabel = "—"
)

// SLAView is the derived countdown shown next to a lead. It is never stored.
type SLAView struct {
	State SLAState `json:"state"`
	Label string   `json:"label"`
}

// EvaluateSLA classifies a deadline against now.
func EvaluateSLA(deadline *time.Time, now time.Time) SLAView {
	if deadline == nil || deadline.IsZero() {
		return SLAView{State: SLANeutral, Label: SLANeutralLabel}
	}

	remaining := deadline.Sub(now)
	switch {
	case remaining <= 0:
		return SLAView{State: SLAOverdue, Label: SLAOverdueLabel}
	case remaining <= SLAWarningWindow:
		return SLAView{State: SLAWarning, Label: FormatRemaining(remaining)}
	default:
		return SLAView{State: SLAOK, Label: FormatRemaining(remaining)}
	}
}

// ParseDeadline accepts the timestamp shapes clients send for deadline_at.
func ParseDeadline(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999Z07:00", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatRemaining renders whole minutes left as "2d 3h", "5h 10m" or "42m".
func FormatRemaining(d time.Duration) string {
	totalMinutes := int64(d / time.Minute)
	if totalMinutes < 0 {
		totalMinutes = 0
	}
	days := totalMinutes / (60 * 24)
	hours := (totalMinutes % (60 * 24)) / 60
	minutes := totalMinutes % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// IsOverdue matches the dashboard KPI: a deadline strictly in the past.
func IsOverdue(deadline *time.Time, now time.Time) bool {
	return deadline != nil && !deadline.IsZero() && deadline.Before(now)
}
