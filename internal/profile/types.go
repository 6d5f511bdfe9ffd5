package profile

import (
	"context"
	"time"
)

// DateLayout keys the activity log and the streak's last-activity marker.
const DateLayout = "2006-01-02"

// Profile is one learner's persistent record.
type Profile struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	XP               int                 `json:"xp"`
	CurrentStreak    int                 `json:"current_streak"`
	LastActivityDate string              `json:"last_activity_date"`
	ActivityLog      map[string]int      `json:"activity_log"`
	Badges           []string            `json:"badges"`
	CompletedTopics  map[string][]string `json:"completed_topics"`
	CreatedAt        time.Time           `json:"created_at"`
}

// Snapshot is the whole persisted blob: the profile list plus the active
// profile id. Persistence is last-write-wins, no transactional requirements.
type Snapshot struct {
	Profiles []Profile `json:"profiles"`
	ActiveID string    `json:"active_id"`
}

// Store persists and retrieves the profile snapshot.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Close() error
}

// HasBadge reports whether the profile already earned the named badge.
func (p *Profile) HasBadge(badge string) bool {
	for _, b := range p.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

// TopicCompleted reports whether a topic is recorded as done for a skill.
func (p *Profile) TopicCompleted(skill, topic string) bool {
	for _, t := range p.CompletedTopics[skill] {
		if t == topic {
			return true
		}
	}
	return false
}

// MarkTopicCompleted records a topic as done, once.
func (p *Profile) MarkTopicCompleted(skill, topic string) {
	if p.TopicCompleted(skill, topic) {
		return
	}
	if p.CompletedTopics == nil {
		p.CompletedTopics = make(map[string][]string)
	}
	p.CompletedTopics[skill] = append(p.CompletedTopics[skill], topic)
}
