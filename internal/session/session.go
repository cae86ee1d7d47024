// Package session tracks multi-turn conversation state per user and
// conversation: the rolling transcript fed back to the model and the pending
// approval, if any, that the next affirmative message resolves.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foyerhq/foyer/internal/approval"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// DefaultMaxHistory bounds the transcript kept per conversation. Older
	// turns fall off the front; the model never needs the full history.
	DefaultMaxHistory = 40
)

// Turn is one message in a conversation transcript.
type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Session is the per-conversation state. Pending is non-nil while an
// approval-gated action is staged and waiting for the user's decision.
type Session struct {
	ID             string
	UserID         string
	ConversationID string
	History        []Turn
	Pending        *approval.PendingAction
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// Manager is a thread-safe in-memory session store keyed by
// (userID, conversationID).
type Manager struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	maxHistory int
	now        func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		sessions:   make(map[string]*Session),
		maxHistory: DefaultMaxHistory,
		now:        time.Now,
	}
}

func sessionKey(userID, conversationID string) string {
	return userID + "\x00" + conversationID
}

// GetOrCreate returns the session for the pair, creating it on first use.
// An empty conversationID starts a fresh conversation with a generated ID.
// The returned snapshot is a copy; mutate through Manager methods.
func (m *Manager) GetOrCreate(userID, conversationID string) Session {
	if conversationID == "" {
		conversationID = uuid.New().String()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionKey(userID, conversationID)
	sess, ok := m.sessions[key]
	if !ok {
		now := m.now().UTC()
		sess = &Session{
			ID:             uuid.New().String(),
			UserID:         userID,
			ConversationID: conversationID,
			CreatedAt:      now,
			LastActivityAt: now,
		}
		m.sessions[key] = sess
	}
	return m.snapshotLocked(sess)
}

// AppendTurn records one message and bumps activity. Unknown sessions are
// ignored; callers always GetOrCreate first.
func (m *Manager) AppendTurn(userID, conversationID, role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionKey(userID, conversationID)]
	if !ok {
		return
	}
	sess.History = append(sess.History, Turn{Role: role, Content: content, At: m.now().UTC()})
	if len(sess.History) > m.maxHistory {
		sess.History = sess.History[len(sess.History)-m.maxHistory:]
	}
	sess.LastActivityAt = m.now().UTC()
}

// SetPending stages an approval against the conversation. Passing nil clears
// any staged action.
func (m *Manager) SetPending(userID, conversationID string, pa *approval.PendingAction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionKey(userID, conversationID)]
	if !ok {
		return
	}
	sess.Pending = pa
	sess.LastActivityAt = m.now().UTC()
}

// TakePending returns the staged action and clears it in one step, so a
// decision is consumed exactly once.
func (m *Manager) TakePending(userID, conversationID string) *approval.PendingAction {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionKey(userID, conversationID)]
	if !ok || sess.Pending == nil {
		return nil
	}
	pa := sess.Pending
	sess.Pending = nil
	sess.LastActivityAt = m.now().UTC()
	return pa
}

// Pending reports the staged action without consuming it.
func (m *Manager) Pending(userID, conversationID string) *approval.PendingAction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[sessionKey(userID, conversationID)]
	if !ok {
		return nil
	}
	return sess.Pending
}

// History returns a copy of the transcript.
func (m *Manager) History(userID, conversationID string) []Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[sessionKey(userID, conversationID)]
	if !ok {
		return nil
	}
	out := make([]Turn, len(sess.History))
	copy(out, sess.History)
	return out
}

func (m *Manager) snapshotLocked(sess *Session) Session {
	out := *sess
	out.History = make([]Turn, len(sess.History))
	copy(out.History, sess.History)
	return out
}
