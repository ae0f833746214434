package events

import (
	"fmt"
	"time"

	"github.com/practicehq/calendar-backend/internal/model"
	"github.com/teambition/rrule-go"
)

// normalizeAllDay pins an all-day event to the local calendar day:
// 00:00:00 at the start, 23:59:59.999 at the end.
func normalizeAllDay(from, to time.Time) (time.Time, time.Time) {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 999_000_000, to.Location())
	return start, end
}

func applyDefaults(info *model.EventCreate) {
	if info.Status == "" {
		info.Status = model.EventStatusConfirmed
	}
	if info.Visibility == "" {
		info.Visibility = model.VisibilityPrivate
	}
	for _, a := range info.Attendees {
		if a.Role == "" {
			a.Role = model.RoleReqParticipant
		}
		if a.Status == "" {
			a.Status = model.ResponseNeedsAction
		}
	}
	for _, r := range info.Reminders {
		if r.Method == "" {
			r.Method = model.ReminderPush
		}
	}
}

func getRule(t model.RepeatType, from time.Time, to *time.Time) (string, error) {
	var freq rrule.Frequency
	var interval int

	switch t {
	case model.RepeatTypeNone:
		return "", nil
	case model.RepeatTypeEveryDay:
		freq = rrule.DAILY
		interval = 1
	case model.RepeatTypeEveryThreeDays:
		freq = rrule.DAILY
		interval = 3
	case model.RepeatTypeEveryWeek:
		freq = rrule.WEEKLY
		interval = 1
	case model.RepeatTypeEveryMonth:
		freq = rrule.MONTHLY
		interval = 1
	case model.RepeatTypeEveryYear:
		freq = rrule.YEARLY
		interval = 1
	default:
		return "", fmt.Errorf("unknown repeat type: %v", t)
	}

	opt := rrule.ROption{
		Freq:     freq,
		Interval: interval,
		Dtstart:  from.UTC(),
	}

	if to != nil {
		opt.Until = *to
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return "", fmt.Errorf("creating rule: %w", err)
	}

	return rule.String(), nil
}
