package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ScheduleConfig holds the daily lock and unlock times of the group chat.
// Lock may be before or after unlock; both fire independently every day.
type ScheduleConfig struct {
	LockHour     int `validate:"min=0,max=23"`
	LockMinute   int `validate:"min=0,max=59"`
	UnlockHour   int `validate:"min=0,max=23"`
	UnlockMinute int `validate:"min=0,max=59"`
}

// Field identifies one of the four values of a ScheduleConfig
type Field int

const (
	FieldLockHour Field = iota
	FieldLockMinute
	FieldUnlockHour
	FieldUnlockMinute
)

var fieldKeys = [...]string{"lock_hour", "lock_minute", "unlock_hour", "unlock_minute"}

// Validation errors
var (
	ErrInvalidSchedule = errors.New("invalid schedule")
	ErrInvalidClock    = errors.New("invalid clock value")
	ErrNotANumber      = errors.New("value is not a number")
	ErrOutOfRange      = errors.New("value out of range")
)

var validate = validator.New()

// Validate checks that every field holds a valid time of day
func (c ScheduleConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	return nil
}

// LockAt returns the lock time as HH:MM
func (c ScheduleConfig) LockAt() string {
	return FormatClock(c.LockHour, c.LockMinute)
}

// UnlockAt returns the unlock time as HH:MM
func (c ScheduleConfig) UnlockAt() string {
	return FormatClock(c.UnlockHour, c.UnlockMinute)
}

func (c ScheduleConfig) String() string {
	return fmt.Sprintf("lock=%s unlock=%s", c.LockAt(), c.UnlockAt())
}

// Get returns the value of a single field
func (c ScheduleConfig) Get(f Field) int {
	switch f {
	case FieldLockHour:
		return c.LockHour
	case FieldLockMinute:
		return c.LockMinute
	case FieldUnlockHour:
		return c.UnlockHour
	default:
		return c.UnlockMinute
	}
}

func (c *ScheduleConfig) set(f Field, v int) {
	switch f {
	case FieldLockHour:
		c.LockHour = v
	case FieldLockMinute:
		c.LockMinute = v
	case FieldUnlockHour:
		c.UnlockHour = v
	default:
		c.UnlockMinute = v
	}
}

// Key returns the wire name used in button tokens, e.g. "lock_hour"
func (f Field) Key() string {
	if f < FieldLockHour || f > FieldUnlockMinute {
		return "unknown"
	}
	return fieldKeys[f]
}

// Label returns a human readable name, e.g. "lock hour"
func (f Field) Label() string {
	return strings.ReplaceAll(f.Key(), "_", " ")
}

// Max returns the largest accepted value for the field
func (f Field) Max() int {
	if f == FieldLockHour || f == FieldUnlockHour {
		return 23
	}
	return 59
}

// Check validates v against the field's bound
func (f Field) Check(v int) error {
	if v < 0 || v > f.Max() {
		return fmt.Errorf("%w: %s must be between 0 and %d", ErrOutOfRange, f.Label(), f.Max())
	}
	return nil
}

// Parse converts typed user input into a value for the field
func (f Field) Parse(text string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, text)
	}
	if err := f.Check(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ParseField resolves a wire name back to a Field
func ParseField(key string) (Field, bool) {
	for i, k := range fieldKeys {
		if k == key {
			return Field(i), true
		}
	}
	return 0, false
}

// FormatClock renders an hour and minute as HH:MM
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// ParseClock parses an HH:MM string
func ParseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidClock, s)
	}
	hour, err = FieldLockHour.Parse(h)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidClock, s, err)
	}
	minute, err = FieldLockMinute.Parse(m)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidClock, s, err)
	}
	return hour, minute, nil
}
