// Package recurrence serializes the conversational recurrence shape into
// RFC 5545 RRULE strings for the calendar provider, and back.
package recurrence

import (
	"fmt"
	"strings"
	"time"

	"meeting_assistant_backend/internal/meetingupdate/domain"

	"github.com/teambition/rrule-go"
)

var frequencies = map[domain.RecurrenceFrequency]rrule.Frequency{
	domain.FrequencyDaily:   rrule.DAILY,
	domain.FrequencyWeekly:  rrule.WEEKLY,
	domain.FrequencyMonthly: rrule.MONTHLY,
	domain.FrequencyYearly:  rrule.YEARLY,
}

var weekdays = map[string]rrule.Weekday{
	"MO": rrule.MO, "TU": rrule.TU, "WE": rrule.WE, "TH": rrule.TH,
	"FR": rrule.FR, "SA": rrule.SA, "SU": rrule.SU,
}

// Serialize renders a rule as provider recurrence lines ("RRULE:..."). A
// rule without a frequency serializes to nil.
func Serialize(rule *domain.RecurrenceRule) ([]string, error) {
	if !rule.Present() {
		return nil, nil
	}
	freq, ok := frequencies[rule.Frequency]
	if !ok {
		return nil, fmt.Errorf("unknown recurrence frequency %q", rule.Frequency)
	}
	opt := rrule.ROption{Freq: freq}
	if rule.Interval > 1 {
		opt.Interval = rule.Interval
	}
	if rule.Occurrence > 0 {
		opt.Count = rule.Occurrence
	}
	if !rule.EndDate.IsZero() {
		opt.Until = rule.EndDate.UTC()
	}
	for _, day := range rule.ByWeekDay {
		wd, ok := weekdays[strings.ToUpper(day)]
		if !ok {
			return nil, fmt.Errorf("unknown recurrence weekday %q", day)
		}
		opt.Byweekday = append(opt.Byweekday, wd)
	}
	if len(rule.ByMonthDay) > 0 {
		opt.Bymonthday = rule.ByMonthDay
	}
	return []string{"RRULE:" + opt.String()}, nil
}

// NextAfter returns the first occurrence of the stored recurrence lines
// strictly after the given instant, anchored at the series start. ok is
// false when the series has ended or the lines carry no RRULE.
func NextAfter(lines []string, seriesStart, after time.Time) (time.Time, bool, error) {
	for _, line := range lines {
		value, found := strings.CutPrefix(line, "RRULE:")
		if !found {
			continue
		}
		opt, err := rrule.StrToROption(value)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("parse recurrence %q: %w", line, err)
		}
		opt.Dtstart = seriesStart
		rule, err := rrule.NewRRule(*opt)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("build recurrence %q: %w", line, err)
		}
		next := rule.After(after, false)
		if next.IsZero() {
			return time.Time{}, false, nil
		}
		return next, true, nil
	}
	return time.Time{}, false, nil
}
