package scheduler

import (
	"time"

	"restobot/internal/models"
)

// dispatchTime gates a send against the restaurant's messaging-hours
// window. It returns the given time when dispatch is allowed now, or
// the next in-window instant otherwise. A job can drift across the
// window boundary between scheduling and dispatch (backlog, downtime),
// so the gate runs at dispatch time, not at schedule time.
func dispatchTime(cfg *models.BotConfig, now time.Time) time.Time {
	if cfg == nil || !cfg.HoursEnabled {
		return now
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)

	start, end := cfg.HoursStart, cfg.HoursEnd
	if start == end {
		return now // degenerate window, treat as always open
	}

	hour := local.Hour()
	if inWindow(hour, start, end) {
		return now
	}

	// Next occurrence of the start hour.
	next := time.Date(local.Year(), local.Month(), local.Day(), start, 0, 0, 0, loc)
	if !next.After(local) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// inWindow handles both same-day (9..22) and overnight (18..2) windows.
func inWindow(hour, start, end int) bool {
	if start < end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}
