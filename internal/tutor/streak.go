package tutor

import (
	"time"

	"github.com/guruji-labs/guruji/internal/profile"
)

// lessonPoints is the activity value of one completed lesson.
const lessonPoints = 50

// applyCompletion records one finished lesson against the profile: streak
// update, per-date activity accumulation and XP. The streak increments only
// when the last activity was exactly yesterday, stays unchanged when today
// already has activity, and resets to 1 otherwise.
func applyCompletion(p *profile.Profile, now time.Time, points int) {
	today := now.Format(profile.DateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(profile.DateLayout)

	switch p.LastActivityDate {
	case today:
		// Already counted for the streak; only points accumulate.
	case yesterday:
		p.CurrentStreak++
	default:
		p.CurrentStreak = 1
	}
	p.LastActivityDate = today

	if p.ActivityLog == nil {
		p.ActivityLog = make(map[string]int)
	}
	p.ActivityLog[today] += points
	p.XP += points
}
