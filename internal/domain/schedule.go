package domain

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Schedule is one send slot entered in the wizard.
type Schedule struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Complete reports whether both date and time are set.
func (s Schedule) Complete() bool {
	return s.Date != "" && s.Time != ""
}

// At resolves the schedule to an instant in loc.
func (s Schedule) At(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, s.Date+" "+s.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse schedule %s %s: %w", s.Date, s.Time, err)
	}
	return t, nil
}

// InFuture reports whether the schedule is strictly after now. Incomplete or
// unparsable schedules are never in the future.
func (s Schedule) InFuture(now time.Time) bool {
	if !s.Complete() {
		return false
	}
	at, err := s.At(now.Location())
	if err != nil {
		return false
	}
	return at.After(now)
}

// ScheduleFrom formats t as a schedule truncated to the minute.
func ScheduleFrom(t time.Time) Schedule {
	return Schedule{Date: t.Format(DateLayout), Time: t.Format(TimeLayout)}
}
