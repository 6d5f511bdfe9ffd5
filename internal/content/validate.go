package content

import (
	"fmt"
	"strings"
)

// ValidateLesson filters unusable steps and rejects lessons that end up
// empty. A MULTIPLE_CHOICE step with a missing or out-of-range correct index
// must never reach the user as an answerable step.
func ValidateLesson(lesson Lesson) (Lesson, error) {
	if len(lesson.Steps) == 0 {
		return Lesson{}, fmt.Errorf("lesson %q has no steps: %w", lesson.Title, ErrMalformedResponse)
	}

	kept := make([]LessonStep, 0, len(lesson.Steps))
	for _, step := range lesson.Steps {
		if stepUsable(step) {
			kept = append(kept, step)
		}
	}
	if len(kept) == 0 {
		return Lesson{}, fmt.Errorf("lesson %q: %w", lesson.Title, ErrEmptyLesson)
	}

	lesson.Steps = kept
	return lesson, nil
}

func stepUsable(step LessonStep) bool {
	switch step.Kind {
	case StepExplanation:
		return strings.TrimSpace(step.Content) != ""
	case StepMultipleChoice:
		if strings.TrimSpace(step.Question) == "" || len(step.Choices) == 0 {
			return false
		}
		if step.CorrectChoice == nil {
			return false
		}
		idx := *step.CorrectChoice
		return idx >= 0 && idx < len(step.Choices)
	case StepCodeTask:
		return strings.TrimSpace(step.Mission) != ""
	default:
		return false
	}
}

// ValidateEval rejects verdicts that omit the mandatory tiered hint on an
// incorrect result.
func ValidateEval(res EvalResult) (EvalResult, error) {
	if !res.Correct && res.Hint == nil {
		return EvalResult{}, fmt.Errorf("incorrect verdict without hint: %w", ErrMalformedResponse)
	}
	return res, nil
}

// ValidateInterviewPlan rejects plans without rounds or with unnamed
// interviewers.
func ValidateInterviewPlan(plan InterviewPlan) (InterviewPlan, error) {
	if len(plan.Rounds) == 0 {
		return InterviewPlan{}, fmt.Errorf("interview plan has no rounds: %w", ErrMalformedResponse)
	}
	for i, round := range plan.Rounds {
		if strings.TrimSpace(round.Interviewer) == "" {
			return InterviewPlan{}, fmt.Errorf("round %d has no interviewer: %w", i, ErrMalformedResponse)
		}
	}
	return plan, nil
}
