package core

import (
	"time"
)

// LockWindow answers time questions about a schedule in a fixed timezone
type LockWindow struct {
	schedule ScheduleConfig
	timezone *time.Location
}

// NewLockWindow creates a window for the given schedule.
// A nil timezone means UTC.
func NewLockWindow(schedule ScheduleConfig, timezone *time.Location) *LockWindow {
	if timezone == nil {
		timezone = time.UTC
	}
	return &LockWindow{
		schedule: schedule,
		timezone: timezone,
	}
}

// IsLocked reports whether t falls between the lock and the following unlock.
// Equal lock and unlock times give an empty window.
func (w *LockWindow) IsLocked(t time.Time) bool {
	localTime := t.In(w.timezone)

	currentMinutes := localTime.Hour()*60 + localTime.Minute()
	lockMinutes := w.schedule.LockHour*60 + w.schedule.LockMinute
	unlockMinutes := w.schedule.UnlockHour*60 + w.schedule.UnlockMinute

	if lockMinutes > unlockMinutes {
		// Overnight (e.g. 23:00 to 07:00)
		return currentMinutes >= lockMinutes || currentMinutes < unlockMinutes
	}

	return currentMinutes >= lockMinutes && currentMinutes < unlockMinutes
}

// NextLock returns the next time the lock trigger fires after now
func (w *LockWindow) NextLock(now time.Time) time.Time {
	return w.next(now, w.schedule.LockHour, w.schedule.LockMinute)
}

// NextUnlock returns the next time the unlock trigger fires after now
func (w *LockWindow) NextUnlock(now time.Time) time.Time {
	return w.next(now, w.schedule.UnlockHour, w.schedule.UnlockMinute)
}

func (w *LockWindow) next(now time.Time, hour, minute int) time.Time {
	localNow := now.In(w.timezone)

	candidate := time.Date(
		localNow.Year(),
		localNow.Month(),
		localNow.Day(),
		hour,
		minute,
		0, 0,
		w.timezone,
	)

	if localNow.Before(candidate) {
		return candidate
	}

	// AddDate keeps the wall clock across DST changes
	return candidate.AddDate(0, 0, 1)
}
