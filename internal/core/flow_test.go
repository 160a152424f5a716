package core

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock implementations

type mockRegistrar struct {
	calls []ScheduleConfig
	fail  bool
}

func (m *mockRegistrar) Reprogram(config ScheduleConfig) error {
	if m.fail {
		return errors.New("cron refused")
	}
	m.calls = append(m.calls, config)
	return nil
}

var defaultSchedule = ScheduleConfig{LockHour: 23, LockMinute: 0, UnlockHour: 7, UnlockMinute: 0}

func newTestFlow() (*Flow, *Store, *mockRegistrar, *SessionTable) {
	store := NewStore(defaultSchedule)
	registrar := &mockRegistrar{}
	sessions := NewSessionTable(time.Minute)
	return NewFlow(store, registrar, sessions), store, registrar, sessions
}

func text(s string) Input {
	return Input{Kind: InputText, Text: s}
}

func TestFlow_TypedSequenceCommits(t *testing.T) {
	tests := []struct {
		values []int
		want   ScheduleConfig
	}{
		{[]int{22, 30, 6, 45}, ScheduleConfig{22, 30, 6, 45}},
		{[]int{0, 0, 0, 0}, ScheduleConfig{0, 0, 0, 0}},
		{[]int{23, 59, 23, 59}, ScheduleConfig{23, 59, 23, 59}},
		{[]int{8, 15, 20, 5}, ScheduleConfig{8, 15, 20, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			flow, store, registrar, sessions := newTestFlow()
			flow.Begin(42)

			var session *Session
			for i, v := range tt.values {
				var err error
				session, err = flow.Handle(42, text(strconv.Itoa(v)))
				require.NoError(t, err)
				assert.Equal(t, Step(i+1), session.Step)
			}

			assert.Equal(t, StepDone, session.Step)
			assert.Equal(t, tt.want, store.Get())
			require.Len(t, registrar.calls, 1)
			assert.Equal(t, tt.want, registrar.calls[0])
			assert.Equal(t, 0, sessions.Len())

			_, err := flow.Handle(42, text("1"))
			assert.ErrorIs(t, err, ErrNoSession)
		})
	}
}

func TestFlow_InvalidInputKeepsState(t *testing.T) {
	inputs := []struct {
		name    string
		step    Step
		prefix  []string
		input   string
		wantErr error
	}{
		{"hour 24", StepLockHour, nil, "24", ErrOutOfRange},
		{"negative hour", StepLockHour, nil, "-1", ErrOutOfRange},
		{"words", StepLockHour, nil, "ten", ErrNotANumber},
		{"minute 60", StepLockMinute, []string{"22"}, "60", ErrOutOfRange},
		{"negative minute", StepLockMinute, []string{"22"}, "-1", ErrOutOfRange},
		{"unlock hour 99", StepUnlockHour, []string{"22", "30"}, "99", ErrOutOfRange},
		{"last minute empty", StepUnlockMinute, []string{"22", "30", "6"}, " ", ErrNotANumber},
	}

	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			flow, store, registrar, _ := newTestFlow()
			flow.Begin(42)
			for _, p := range tt.prefix {
				_, err := flow.Handle(42, text(p))
				require.NoError(t, err)
			}

			before, ok := flow.Active(42)
			require.True(t, ok)
			draft := before.Draft

			session, err := flow.Handle(42, text(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.step, session.Step)
			assert.Equal(t, draft, session.Draft)
			assert.Equal(t, defaultSchedule, store.Get())
			assert.Empty(t, registrar.calls)
		})
	}
}

func TestFlow_ButtonAdjustment(t *testing.T) {
	flow, store, registrar, _ := newTestFlow()
	session := flow.Begin(7)
	assert.Equal(t, defaultSchedule, session.Draft)

	// 23 + 1 wraps to 0
	session, err := flow.Handle(7, Input{Kind: InputIncrement, Field: FieldLockHour})
	require.NoError(t, err)
	assert.Equal(t, 0, session.Draft.LockHour)
	assert.Equal(t, StepLockHour, session.Step)

	// 0 - 1 wraps back to 23, then down to 22
	_, err = flow.Handle(7, Input{Kind: InputDecrement, Field: FieldLockHour})
	require.NoError(t, err)
	session, err = flow.Handle(7, Input{Kind: InputDecrement, Field: FieldLockHour})
	require.NoError(t, err)
	assert.Equal(t, 22, session.Draft.LockHour)

	session, err = flow.Handle(7, Input{Kind: InputAccept, Field: FieldLockHour})
	require.NoError(t, err)
	assert.Equal(t, StepLockMinute, session.Step)

	// minutes wrap at 60
	session, err = flow.Handle(7, Input{Kind: InputDecrement, Field: FieldLockMinute})
	require.NoError(t, err)
	assert.Equal(t, 59, session.Draft.LockMinute)

	// a button from an earlier step is stale
	_, err = flow.Handle(7, Input{Kind: InputIncrement, Field: FieldLockHour})
	assert.ErrorIs(t, err, ErrStaleButton)
	assert.Equal(t, 22, session.Draft.LockHour)

	_, err = flow.Handle(7, Input{Kind: InputAccept, Field: FieldLockMinute})
	require.NoError(t, err)
	_, err = flow.Handle(7, Input{Kind: InputAccept, Field: FieldUnlockHour})
	require.NoError(t, err)
	session, err = flow.Handle(7, Input{Kind: InputAccept, Field: FieldUnlockMinute})
	require.NoError(t, err)

	want := ScheduleConfig{LockHour: 22, LockMinute: 59, UnlockHour: 7, UnlockMinute: 0}
	assert.Equal(t, StepDone, session.Step)
	assert.Equal(t, want, store.Get())
	assert.Equal(t, []ScheduleConfig{want}, registrar.calls)
}

func TestFlow_MixedTextAndButtons(t *testing.T) {
	flow, store, _, _ := newTestFlow()
	flow.Begin(7)

	_, err := flow.Handle(7, text("21"))
	require.NoError(t, err)
	_, err = flow.Handle(7, Input{Kind: InputIncrement, Field: FieldLockMinute})
	require.NoError(t, err)
	_, err = flow.Handle(7, Input{Kind: InputAccept, Field: FieldLockMinute})
	require.NoError(t, err)
	_, err = flow.Handle(7, text("5"))
	require.NoError(t, err)
	_, err = flow.Handle(7, text("30"))
	require.NoError(t, err)

	assert.Equal(t, ScheduleConfig{21, 1, 5, 30}, store.Get())
}

func TestFlow_BeginDiscardsPreviousSession(t *testing.T) {
	flow, _, _, sessions := newTestFlow()

	first := flow.Begin(42)
	_, err := flow.Handle(42, text("20"))
	require.NoError(t, err)

	second := flow.Begin(42)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, strings.HasPrefix(second.ID, "rcfg_"))
	assert.Equal(t, StepLockHour, second.Step)
	assert.Equal(t, defaultSchedule, second.Draft)
	assert.Equal(t, 1, sessions.Len())
}

func TestFlow_SessionsArePerUser(t *testing.T) {
	flow, _, _, _ := newTestFlow()
	flow.Begin(1)
	flow.Begin(2)

	_, err := flow.Handle(1, text("20"))
	require.NoError(t, err)

	s1, _ := flow.Active(1)
	s2, _ := flow.Active(2)
	assert.Equal(t, StepLockMinute, s1.Step)
	assert.Equal(t, StepLockHour, s2.Step)
}

func TestFlow_Cancel(t *testing.T) {
	flow, store, registrar, _ := newTestFlow()
	flow.Begin(42)
	_, err := flow.Handle(42, text("20"))
	require.NoError(t, err)

	assert.True(t, flow.Cancel(42))
	assert.False(t, flow.Cancel(42))

	_, err = flow.Handle(42, text("30"))
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, defaultSchedule, store.Get())
	assert.Empty(t, registrar.calls)
}

func TestFlow_ReprogramFailureDoesNotCommit(t *testing.T) {
	flow, store, registrar, _ := newTestFlow()
	registrar.fail = true
	flow.Begin(42)

	for _, v := range []string{"22", "30", "6"} {
		_, err := flow.Handle(42, text(v))
		require.NoError(t, err)
	}

	session, err := flow.Handle(42, text("45"))
	assert.ErrorIs(t, err, ErrReprogram)
	assert.Equal(t, StepUnlockMinute, session.Step)
	assert.Equal(t, defaultSchedule, store.Get())

	// still in progress, a retry succeeds once the registrar recovers
	registrar.fail = false
	session, err = flow.Handle(42, text("45"))
	require.NoError(t, err)
	assert.Equal(t, StepDone, session.Step)
	assert.Equal(t, ScheduleConfig{22, 30, 6, 45}, store.Get())
}

func TestSessionTable_Expiry(t *testing.T) {
	table := NewSessionTable(10 * time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	table.now = func() time.Time { return now }

	table.Put(&Session{UserID: 42, StartedAt: now})

	_, ok := table.Get(42)
	assert.True(t, ok)

	now = now.Add(10 * time.Minute)
	_, ok = table.Get(42)
	assert.True(t, ok, "session is alive up to the TTL")

	now = now.Add(time.Second)
	_, ok = table.Get(42)
	assert.False(t, ok)
	assert.Equal(t, 0, table.Len(), "expired session is removed on access")
}

func TestSessionTable_DefaultTTL(t *testing.T) {
	table := NewSessionTable(0)
	assert.Equal(t, DefaultSessionTTL, table.ttl)
}

func TestStep_String(t *testing.T) {
	assert.Equal(t, "awaiting_lock_hour", StepLockHour.String())
	assert.Equal(t, "awaiting_unlock_minute", StepUnlockMinute.String())
	assert.Equal(t, "done", StepDone.String())

	_, ok := StepDone.Field()
	assert.False(t, ok)
	f, ok := StepUnlockHour.Field()
	assert.True(t, ok)
	assert.Equal(t, FieldUnlockHour, f)
}
