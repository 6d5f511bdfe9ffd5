package session

import (
	"sync"
	"testing"
	"time"
)

func TestManagerCreateGetEnd(t *testing.T) {
	m := NewManager(time.Minute)

	created := m.Create("p1")
	if created.Status != StatusActive {
		t.Fatalf("Status = %v, want active", created.Status)
	}

	got, err := m.Get(created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ProfileID != "p1" {
		t.Fatalf("ProfileID = %q, want p1", got.ProfileID)
	}

	ended, err := m.End(created.ID)
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if ended.Status != StatusEnded {
		t.Fatalf("Status after End = %v, want ended", ended.Status)
	}
	if m.ActiveCount() != 0 {
		t.Fatalf("ActiveCount() = %d, want 0", m.ActiveCount())
	}
}

func TestManagerGetUnknown(t *testing.T) {
	m := NewManager(time.Minute)
	if _, err := m.Get("nope"); err != ErrNotFound {
		t.Fatalf("Get(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestManagerExpireInactive(t *testing.T) {
	m := NewManager(time.Millisecond)

	var mu sync.Mutex
	var expired []string
	m.SetExpireHook(func(s *Session) {
		mu.Lock()
		expired = append(expired, s.ID)
		mu.Unlock()
	})

	s := m.Create("p1")
	time.Sleep(5 * time.Millisecond)
	m.expireInactive()

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != StatusEnded {
		t.Fatalf("Status = %v, want ended", got.Status)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(expired) != 1 || expired[0] != s.ID {
		t.Fatalf("expire hook calls = %v, want [%s]", expired, s.ID)
	}
}

func TestManagerTouchKeepsAlive(t *testing.T) {
	m := NewManager(50 * time.Millisecond)
	s := m.Create("p1")

	time.Sleep(30 * time.Millisecond)
	if err := m.Touch(s.ID); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	m.expireInactive()

	got, _ := m.Get(s.ID)
	if got.Status != StatusActive {
		t.Fatalf("Status = %v, want still active after Touch", got.Status)
	}
}
