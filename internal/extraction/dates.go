package extraction

import (
	"strconv"
	"strings"
	"time"

	"meeting_assistant_backend/internal/meetingupdate/domain"
)

// dateTimeBody is the raw date/time extraction output. Pointer fields
// distinguish "not mentioned" from zero values; the body is round-tripped
// through the continuation context so a later turn can fill remaining gaps.
type dateTimeBody struct {
	Year       *int   `json:"year,omitempty"`
	Month      *int   `json:"month,omitempty"`
	Day        *int   `json:"day,omitempty"`
	ISOWeekday *int   `json:"isoWeekday,omitempty"`
	Hour       *int   `json:"hour,omitempty"`
	Minute     *int   `json:"minute,omitempty"`
	StartTime  string `json:"startTime,omitempty"`
	Duration   *int   `json:"duration,omitempty"`
}

// fillFrom keeps the current turn's values and fills gaps from the prior
// turn's body.
func (d *dateTimeBody) fillFrom(prior dateTimeBody) {
	if d.Year == nil {
		d.Year = prior.Year
	}
	if d.Month == nil {
		d.Month = prior.Month
	}
	if d.Day == nil {
		d.Day = prior.Day
	}
	if d.ISOWeekday == nil {
		d.ISOWeekday = prior.ISOWeekday
	}
	if d.Hour == nil {
		d.Hour = prior.Hour
	}
	if d.Minute == nil {
		d.Minute = prior.Minute
	}
	if d.StartTime == "" {
		d.StartTime = prior.StartTime
	}
	if d.Duration == nil {
		d.Duration = prior.Duration
	}
}

func (d dateTimeBody) signals() domain.DateSignals {
	signals := domain.DateSignals{
		Hour:      d.Hour,
		Minute:    d.Minute,
		StartTime: d.StartTime,
	}
	if d.Year != nil {
		signals.Year = *d.Year
	}
	if d.Month != nil {
		signals.Month = *d.Month
	}
	if d.Day != nil {
		signals.Day = *d.Day
	}
	if d.ISOWeekday != nil {
		signals.ISOWeekday = *d.ISOWeekday
	}
	return signals
}

func (d dateTimeBody) hasDaySignal() bool {
	return d.Year != nil || d.Month != nil || d.Day != nil || d.ISOWeekday != nil
}

func (d dateTimeBody) hasTimeSignal() bool {
	return d.Hour != nil || d.Minute != nil || d.StartTime != ""
}

// extrapolate turns the raw signals into a concrete start date anchored at
// the reference time, plus the search boundary for meeting resolution. A
// day-level signal narrows the boundary to that day; otherwise the caller's
// default window applies.
func extrapolate(d dateTimeBody, referenceTime time.Time, location *time.Location) (time.Time, domain.SearchBoundary) {
	if !d.hasDaySignal() && !d.hasTimeSignal() {
		return time.Time{}, domain.SearchBoundary{}
	}

	base := referenceTime.In(location)
	year, month, day := base.Date()

	if d.Year != nil {
		year = *d.Year
	}
	if d.Month != nil {
		month = time.Month(*d.Month)
	}
	switch {
	case d.Day != nil:
		day = *d.Day
	case d.ISOWeekday != nil:
		// Next occurrence of the weekday, today included.
		current := isoWeekday(base.Weekday())
		day += (*d.ISOWeekday - current + 7) % 7
	}

	hour, minute := base.Hour(), base.Minute()
	switch {
	case d.Hour != nil:
		hour = *d.Hour
		minute = 0
		if d.Minute != nil {
			minute = *d.Minute
		}
	case d.StartTime != "":
		if h, m, ok := parseClock(d.StartTime); ok {
			hour, minute = h, m
		}
	}

	start := time.Date(year, month, day, hour, minute, 0, 0, location)

	var boundary domain.SearchBoundary
	if d.hasDaySignal() {
		dayStart := time.Date(year, month, day, 0, 0, 0, 0, location)
		boundary = domain.SearchBoundary{Start: dayStart, End: dayStart.AddDate(0, 0, 1)}
	}
	return start, boundary
}

func isoWeekday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

func parseClock(value string) (hour, minute int, ok bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
