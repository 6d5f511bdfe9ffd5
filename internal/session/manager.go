package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

var ErrNotFound = errors.New("session not found")

// Session is one tutoring connection's bookkeeping record. The orchestrator
// owning the conversation lives with the websocket; this record outlives
// reconnect races and feeds the janitor.
type Session struct {
	ID             string    `json:"session_id"`
	ProfileID      string    `json:"profile_id"`
	Status         Status    `json:"status"`
	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

type Manager struct {
	mu                sync.RWMutex
	sessions          map[string]*Session
	sessionByProfile  map[string]string
	inactivityTimeout time.Duration
	onExpire          func(*Session)
}

func NewManager(inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 10 * time.Minute
	}
	return &Manager{
		sessions:          make(map[string]*Session),
		sessionByProfile:  make(map[string]string),
		inactivityTimeout: inactivityTimeout,
	}
}

// SetExpireHook registers the callback run for sessions the janitor ends.
func (m *Manager) SetExpireHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

func (m *Manager) Create(profileID string) *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:             uuid.NewString(),
		ProfileID:      profileID,
		Status:         StatusActive,
		StartedAt:      now,
		LastActivityAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	if profileID != "" {
		m.sessionByProfile[profileID] = s.ID
	}
	return clone(s)
}

func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

// Touch refreshes the inactivity clock.
func (m *Manager) Touch(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	s.LastActivityAt = time.Now().UTC()
	return nil
}

func (m *Manager) End(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	s.Status = StatusEnded
	s.LastActivityAt = time.Now().UTC()
	if s.ProfileID != "" {
		delete(m.sessionByProfile, s.ProfileID)
	}
	return clone(s), nil
}

// StartJanitor periodically ends sessions idle past the inactivity timeout.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, s := range m.sessions {
		if s.Status == StatusActive {
			count++
		}
	}
	return count
}

func (m *Manager) expireInactive() {
	now := time.Now().UTC()
	var expired []*Session

	m.mu.Lock()
	for _, s := range m.sessions {
		if s.Status != StatusActive {
			continue
		}
		if now.Sub(s.LastActivityAt) < m.inactivityTimeout {
			continue
		}
		s.Status = StatusEnded
		s.LastActivityAt = now
		expired = append(expired, clone(s))
		if s.ProfileID != "" {
			delete(m.sessionByProfile, s.ProfileID)
		}
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
}

func clone(s *Session) *Session {
	c := *s
	return &c
}
