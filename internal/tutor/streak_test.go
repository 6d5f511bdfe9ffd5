package tutor

import (
	"testing"
	"time"

	"github.com/guruji-labs/guruji/internal/profile"
)

var streakNow = time.Date(2026, 9, 1, 18, 30, 0, 0, time.UTC)

func TestApplyCompletionIncrementsAfterYesterday(t *testing.T) {
	p := &profile.Profile{
		CurrentStreak:    3,
		LastActivityDate: streakNow.AddDate(0, 0, -1).Format(profile.DateLayout),
	}
	applyCompletion(p, streakNow, 50)

	if p.CurrentStreak != 4 {
		t.Fatalf("CurrentStreak = %d, want 4", p.CurrentStreak)
	}
	if p.LastActivityDate != "2026-09-01" {
		t.Fatalf("LastActivityDate = %q, want 2026-09-01", p.LastActivityDate)
	}
	if p.ActivityLog["2026-09-01"] != 50 {
		t.Fatalf("ActivityLog[today] = %d, want 50", p.ActivityLog["2026-09-01"])
	}
}

func TestApplyCompletionResetsAfterGap(t *testing.T) {
	p := &profile.Profile{
		CurrentStreak:    9,
		LastActivityDate: streakNow.AddDate(0, 0, -3).Format(profile.DateLayout),
	}
	applyCompletion(p, streakNow, 50)

	if p.CurrentStreak != 1 {
		t.Fatalf("CurrentStreak = %d, want 1", p.CurrentStreak)
	}
}

func TestApplyCompletionSameDayAccumulatesPoints(t *testing.T) {
	p := &profile.Profile{
		CurrentStreak:    5,
		LastActivityDate: streakNow.Format(profile.DateLayout),
		ActivityLog:      map[string]int{"2026-09-01": 50},
		XP:               200,
	}
	applyCompletion(p, streakNow, 50)

	if p.CurrentStreak != 5 {
		t.Fatalf("CurrentStreak = %d, want unchanged 5", p.CurrentStreak)
	}
	if got := p.ActivityLog["2026-09-01"]; got != 100 {
		t.Fatalf("ActivityLog[today] = %d, want accumulated 100", got)
	}
	if len(p.ActivityLog) != 1 {
		t.Fatalf("ActivityLog has %d entries, want 1", len(p.ActivityLog))
	}
	if p.XP != 250 {
		t.Fatalf("XP = %d, want 250", p.XP)
	}
}

func TestApplyCompletionFirstEverActivity(t *testing.T) {
	p := &profile.Profile{}
	applyCompletion(p, streakNow, 50)
	if p.CurrentStreak != 1 {
		t.Fatalf("CurrentStreak = %d, want 1", p.CurrentStreak)
	}
}
