package core

import (
	"errors"
	"fmt"
	"time"

	"nightlock/internal/idgen"
)

// Step is the position of a reconfiguration session
type Step int

const (
	StepLockHour Step = iota
	StepLockMinute
	StepUnlockHour
	StepUnlockMinute
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepLockHour:
		return "awaiting_lock_hour"
	case StepLockMinute:
		return "awaiting_lock_minute"
	case StepUnlockHour:
		return "awaiting_unlock_hour"
	case StepUnlockMinute:
		return "awaiting_unlock_minute"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// Field returns the field this step collects; false once done
func (s Step) Field() (Field, bool) {
	if s < StepLockHour || s >= StepDone {
		return 0, false
	}
	return Field(s), true
}

// InputKind distinguishes typed values from button presses
type InputKind int

const (
	InputText InputKind = iota
	InputIncrement
	InputDecrement
	InputAccept
)

// Input is one piece of reconfiguration input. Field is only set for button
// presses and must match the step the session is in.
type Input struct {
	Kind  InputKind
	Field Field
	Text  string
}

// Flow errors
var (
	ErrNoSession   = errors.New("no reconfiguration in progress")
	ErrStaleButton = errors.New("button does not belong to the current step")
	ErrSessionDone = errors.New("reconfiguration already finished")
	ErrReprogram   = errors.New("failed to reprogram triggers")
)

// Session is an administrator's in-progress reconfiguration
type Session struct {
	ID        string
	UserID    int64
	Step      Step
	Draft     ScheduleConfig
	StartedAt time.Time
	MessageID int // message carrying the adjustment keyboard, 0 if none
}

// Current returns the field awaiting input
func (s *Session) Current() (Field, bool) {
	return s.Step.Field()
}

// apply consumes one input. On error the session is left untouched.
func (s *Session) apply(in Input) error {
	field, ok := s.Current()
	if !ok {
		return ErrSessionDone
	}

	switch in.Kind {
	case InputText:
		v, err := field.Parse(in.Text)
		if err != nil {
			return err
		}
		s.Draft.set(field, v)
		s.Step++
	case InputIncrement, InputDecrement:
		if in.Field != field {
			return fmt.Errorf("%w: got %s, expected %s", ErrStaleButton, in.Field.Key(), field.Key())
		}
		delta := 1
		if in.Kind == InputDecrement {
			delta = -1
		}
		span := field.Max() + 1
		s.Draft.set(field, (s.Draft.Get(field)+delta+span)%span)
	case InputAccept:
		if in.Field != field {
			return fmt.Errorf("%w: got %s, expected %s", ErrStaleButton, in.Field.Key(), field.Key())
		}
		if err := field.Check(s.Draft.Get(field)); err != nil {
			return err
		}
		s.Step++
	default:
		return fmt.Errorf("unknown input kind %d", in.Kind)
	}
	return nil
}

// Flow runs reconfiguration sessions against the schedule store and the
// trigger registrar
type Flow struct {
	store     *Store
	registrar Reprogrammer
	sessions  *SessionTable
}

// NewFlow creates a reconfiguration flow
func NewFlow(store *Store, registrar Reprogrammer, sessions *SessionTable) *Flow {
	return &Flow{
		store:     store,
		registrar: registrar,
		sessions:  sessions,
	}
}

// Begin starts a new session for userID, discarding any earlier one.
// The draft starts from the schedule currently in force.
func (f *Flow) Begin(userID int64) *Session {
	session := &Session{
		ID:        idgen.NewReconfiguration(),
		UserID:    userID,
		Step:      StepLockHour,
		Draft:     f.store.Get(),
		StartedAt: f.sessions.now(),
	}
	f.sessions.Put(session)
	return session
}

// Active returns the user's live session, if any
func (f *Flow) Active(userID int64) (*Session, bool) {
	return f.sessions.Get(userID)
}

// Cancel drops the user's session without committing anything
func (f *Flow) Cancel(userID int64) bool {
	return f.sessions.Delete(userID)
}

// Handle feeds one input into the user's session. Invalid input returns an
// error and leaves the session where it was. The final valid value
// reprograms the triggers, writes the store and ends the session.
func (f *Flow) Handle(userID int64, in Input) (*Session, error) {
	session, ok := f.sessions.Get(userID)
	if !ok {
		return nil, ErrNoSession
	}

	if err := session.apply(in); err != nil {
		return session, err
	}

	if session.Step != StepDone {
		return session, nil
	}

	if err := session.Draft.Validate(); err != nil {
		session.Step = StepUnlockMinute
		return session, err
	}

	if err := f.registrar.Reprogram(session.Draft); err != nil {
		session.Step = StepUnlockMinute
		return session, fmt.Errorf("%w: %v", ErrReprogram, err)
	}

	f.store.Set(session.Draft)
	f.sessions.Delete(userID)
	return session, nil
}
