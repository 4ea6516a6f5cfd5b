package wizard

import (
	"fmt"
	"strings"

	"campaign_builder/internal/domain"
)

// ValidationError lists why a step cannot be left. The draft is untouched.
type ValidationError struct {
	Step     Step
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %s: %s", e.Step, strings.Join(e.Problems, "; "))
}

// Validate checks the predicates of step. Review re-checks every earlier
// step as well.
func (w *Wizard) Validate(step Step) error {
	var problems []string
	switch step {
	case StepBasics:
		problems = w.basicsProblems()
	case StepAudience:
		problems = w.audienceProblems()
	case StepAccounts:
		problems = w.accountProblems()
	case StepContent:
		problems = w.contentProblems()
	case StepReview:
		problems = w.reviewProblems()
	default:
		return fmt.Errorf("%w: %d", ErrUnknownStep, int(step))
	}

	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Step: step, Problems: problems}
}

// CanAdvance reports whether Advance would succeed.
func (w *Wizard) CanAdvance() bool {
	return w.step < StepReview && w.Validate(w.step) == nil
}

// CanSubmit reports whether Submit would succeed.
func (w *Wizard) CanSubmit() bool {
	return w.step == StepReview && w.Validate(StepReview) == nil
}

func (w *Wizard) basicsProblems() []string {
	var problems []string
	if strings.TrimSpace(w.draft.Name) == "" {
		problems = append(problems, "campaign name is required")
	}
	if len(w.draft.Schedules) == 0 {
		problems = append(problems, "at least one schedule is required")
	}

	now := w.deps.Now()
	for i, s := range w.draft.Schedules {
		switch {
		case !s.Complete():
			problems = append(problems, fmt.Sprintf("schedule %d needs a date and a time", i+1))
		case !s.InFuture(now):
			if _, err := s.At(now.Location()); err != nil {
				problems = append(problems, fmt.Sprintf("schedule %d is not a valid date and time", i+1))
			} else {
				problems = append(problems, fmt.Sprintf("schedule %d is not in the future", i+1))
			}
		}
	}
	return problems
}

func (w *Wizard) audienceProblems() []string {
	if phase := w.deps.Tags.Phase(); !phase.Terminal() {
		return []string{fmt.Sprintf("tags are not loaded yet (%s)", phase)}
	}

	leadTags := make(map[string]struct{})
	for _, t := range w.deps.Tags.ByKind(domain.TagKindLead) {
		leadTags[t.Name] = struct{}{}
	}

	var problems []string
	matched := 0
	for _, name := range w.draft.SelectedLeadTags {
		if _, ok := leadTags[name]; !ok {
			problems = append(problems, fmt.Sprintf("tag %q is not a known lead tag", name))
			continue
		}
		matched++
	}
	if matched == 0 {
		problems = append(problems, "select at least one lead tag")
	}
	return problems
}

func (w *Wizard) accountProblems() []string {
	if phase := w.deps.Accounts.Phase(); !phase.Terminal() {
		return []string{fmt.Sprintf("accounts are not loaded yet (%s)", phase)}
	}

	if len(w.draft.SelectedAccountIDs) == 0 {
		return []string{"select at least one account"}
	}

	var problems []string
	for _, id := range w.draft.SelectedAccountIDs {
		if _, ok := w.deps.Accounts.ByID(id); !ok {
			problems = append(problems, fmt.Sprintf("account %d no longer exists", id))
		}
	}
	return problems
}

func (w *Wizard) contentProblems() []string {
	if !w.media.HasContent() {
		return []string{"add at least one message to a sequence"}
	}
	return nil
}

func (w *Wizard) reviewProblems() []string {
	var problems []string
	problems = append(problems, w.basicsProblems()...)
	problems = append(problems, w.audienceProblems()...)
	problems = append(problems, w.accountProblems()...)
	problems = append(problems, w.contentProblems()...)

	if err := w.media.Validate(); err != nil {
		problems = append(problems, strings.Split(err.Error(), "\n")...)
	}
	if w.draft.DelayMin >= w.draft.DelayMax {
		problems = append(problems, fmt.Sprintf("delay minimum %ds must be below maximum %ds", w.draft.DelayMin, w.draft.DelayMax))
	}
	if w.draft.SaveAsTemplate && w.draft.TemplateName == "" {
		problems = append(problems, "template name is required to save as template")
	}
	return problems
}
