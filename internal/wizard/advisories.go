package wizard

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"campaign_builder/internal/domain"
	"campaign_builder/internal/media"
)

type AdvisoryKind string

const (
	AdvisoryTooEarly AdvisoryKind = "too-early"
	AdvisoryTooLate  AdvisoryKind = "too-late"
	AdvisoryLunch    AdvisoryKind = "lunch"
)

// ScheduleAdvisory flags a send time that is allowed but likely to perform
// poorly.
type ScheduleAdvisory struct {
	Index    int
	Schedule domain.Schedule
	Kind     AdvisoryKind
	Message  string
}

// ScheduleAdvisories reviews the hour of every schedule that has a time.
func (w *Wizard) ScheduleAdvisories() []ScheduleAdvisory {
	var out []ScheduleAdvisory
	for i, s := range w.draft.Schedules {
		hour, ok := scheduleHour(s.Time)
		if !ok {
			continue
		}

		var kind AdvisoryKind
		var msg string
		switch {
		case hour <= 6:
			kind, msg = AdvisoryTooEarly, fmt.Sprintf("%s is very early, contacts may be annoyed and the account reputation may suffer", s.Time)
		case hour >= 22:
			kind, msg = AdvisoryTooLate, fmt.Sprintf("%s is very late, sends between 08:00 and 21:00 are received better", s.Time)
		case hour >= 12 && hour <= 14:
			kind, msg = AdvisoryLunch, fmt.Sprintf("%s is lunch time, response rates may be lower", s.Time)
		default:
			continue
		}
		out = append(out, ScheduleAdvisory{Index: i, Schedule: s, Kind: kind, Message: msg})
	}
	return out
}

func scheduleHour(t string) (int, bool) {
	h, _, found := strings.Cut(t, ":")
	if !found {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}

// UnknownPlaceholders returns the {{variables}} used in text items, their
// alternatives included, that are not among columns.
func (w *Wizard) UnknownPlaceholders(columns []string) []string {
	var out []string
	check := func(it domain.MediaItem) {
		if it.Kind != domain.MediaText {
			return
		}
		for _, v := range media.Placeholders(it.Content) {
			if !slices.Contains(columns, v) && !slices.Contains(out, v) {
				out = append(out, v)
			}
		}
	}

	for _, seq := range w.media.Sequences() {
		for _, it := range seq.Items {
			check(it)
			for _, alt := range it.Alternatives {
				check(alt)
			}
		}
	}
	return out
}
