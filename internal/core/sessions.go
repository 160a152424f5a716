package core

import (
	"sync"
	"time"
)

// DefaultSessionTTL is how long an abandoned reconfiguration stays alive
const DefaultSessionTTL = 10 * time.Minute

// SessionTable holds reconfiguration sessions keyed by requester user ID
type SessionTable struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionTable creates an empty table. A non-positive ttl selects
// DefaultSessionTTL.
func NewSessionTable(ttl time.Duration) *SessionTable {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionTable{
		sessions: make(map[int64]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Put stores a session, replacing any earlier one for the same user
func (t *SessionTable) Put(session *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[session.UserID] = session
}

// Get returns the user's session unless it has expired. Expired sessions
// are removed on access.
func (t *SessionTable) Get(userID int64) (*Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	session, ok := t.sessions[userID]
	if !ok {
		return nil, false
	}
	if t.now().Sub(session.StartedAt) > t.ttl {
		delete(t.sessions, userID)
		return nil, false
	}
	return session, true
}

// Delete removes the user's session and reports whether one existed
func (t *SessionTable) Delete(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.sessions[userID]
	delete(t.sessions, userID)
	return ok
}

// Len returns the number of stored sessions, expired ones included
func (t *SessionTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
