package wizard

import "fmt"

type Step int

const (
	StepBasics Step = iota + 1
	StepAudience
	StepAccounts
	StepContent
	StepReview
)

var stepNames = map[Step]string{
	StepBasics:   "basics",
	StepAudience: "audience",
	StepAccounts: "accounts",
	StepContent:  "content",
	StepReview:   "review",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

func (s Step) valid() bool {
	return s >= StepBasics && s <= StepReview
}
