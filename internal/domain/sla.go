package domain

import (
	"fmt"
	"strings"
	"time"
)

// Business-day SLA offsets per service zone.
var slaBusinessDays = map[string]int{
	ZoneCancun:          7,
	ZonePuertoMorelos:   7,
	ZonePlayaDelCarmen:  2, // 48 hours
	ZonePuertoAventuras: 2,
	ZoneTulum:           3,
	ZoneOther:           10,
}

// DeadlineFor computes the SLA deadline for a report assigned at the given
// time in the given zone: the configured number of business days counted
// day by day, skipping Saturdays and Sundays. The result is a civil date
// (midnight UTC). Unrecognized zones have no deadline.
func DeadlineFor(assignedAt time.Time, zone string) (time.Time, bool) {
	days, ok := slaBusinessDays[zone]
	if !ok {
		return time.Time{}, false
	}

	d := assignedAt.UTC()
	added := 0
	for added < days {
		d = d.AddDate(0, 0, 1)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}
	return civilDate(d), true
}

// civilDate truncates t to its calendar date at midnight UTC.
func civilDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DeadlineClass is the display/metrics classification of a report
// relative to its deadline.
type DeadlineClass string

const (
	ClassNone            DeadlineClass = "none"
	ClassCompletedOnTime DeadlineClass = "completed_on_time"
	ClassCompletedLate   DeadlineClass = "completed_late"
	ClassOverdue         DeadlineClass = "overdue"
	ClassDueSoon         DeadlineClass = "due_soon"
	ClassOnTime          DeadlineClass = "on_time"
)

// Classify buckets a report by deadline state. The deadline is a calendar
// date: a report is on time through the end of its deadline day and
// overdue from the following midnight.
func Classify(r *Report, now time.Time) DeadlineClass {
	if r.Deadline == nil {
		return ClassNone
	}
	if r.Status == StatusCompleted {
		if r.CompletedAt == nil {
			return ClassNone
		}
		if CompletedOnTime(*r.CompletedAt, *r.Deadline) {
			return ClassCompletedOnTime
		}
		return ClassCompletedLate
	}
	if r.Status.IsTerminal() {
		return ClassNone
	}

	due := deadlineEnd(*r.Deadline)
	switch {
	case now.After(due):
		return ClassOverdue
	case due.Sub(now) <= 24*time.Hour:
		return ClassDueSoon
	default:
		return ClassOnTime
	}
}

// CompletedOnTime reports whether a completion timestamp falls on or
// before the deadline date.
func CompletedOnTime(completedAt, deadline time.Time) bool {
	return !completedAt.After(deadlineEnd(deadline))
}

// PastDeadline reports whether now has passed the end of the deadline day.
func PastDeadline(deadline, now time.Time) bool {
	return now.After(deadlineEnd(deadline))
}

// deadlineEnd returns the last instant that still counts as on time.
func deadlineEnd(deadline time.Time) time.Time {
	return civilDate(deadline).Add(24*time.Hour - time.Nanosecond)
}

// OverdueBy returns how long past its deadline a report is, rendered with
// FormatDelta, or "" when not past due.
func OverdueBy(deadline, now time.Time) string {
	if !PastDeadline(deadline, now) {
		return ""
	}
	return FormatDelta(now.Sub(deadlineEnd(deadline)))
}

// FormatDelta renders a duration as its non-zero units from days down to
// minutes, e.g. "2d 3h 15m". Sub-minute durations fall back to seconds,
// and "menos de 1m" when even the seconds round to zero.
func FormatDelta(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}

	if secs := int(d.Seconds()); secs > 0 {
		return fmt.Sprintf("%ds", secs)
	}
	return "menos de 1m"
}
