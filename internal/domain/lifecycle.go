package domain

import (
	"errors"
	"strings"
	"time"
)

// Validation errors surfaced before any write is attempted.
var (
	ErrInvalidStatus         = errors.New("unknown report status")
	ErrJustificationRequired = errors.New("completing an overdue report requires a delay justification")
)

// FieldUpdate is a partial update to a report: field name -> new value.
// Repositories translate it into a per-field UPDATE so concurrent writers
// never overwrite each other's unrelated fields. A nil value clears the
// field.
type FieldUpdate map[string]any

// ChangeStatus applies a status transition to r and returns the partial
// update to persist. Rules:
//
//   - pending -> in_progress with no assignee auto-claims the report for
//     the acting technician: assignedTo, assignedAt and the zone deadline
//     are set.
//   - -> completed sets completedAt. If the report is already past its
//     deadline, a non-empty justification is mandatory and the transition
//     is rejected without it; an on-time completion clears any stale
//     justification.
//   - any transition to a non-completed status clears completedAt and
//     delayJustification (re-opening a finished report).
//
// r is updated in place on success so callers can return the fresh entity.
func ChangeStatus(r *Report, to Status, actor, justification string, now time.Time) (FieldUpdate, error) {
	if !ValidStatus(to) {
		return nil, ErrInvalidStatus
	}

	fields := FieldUpdate{"status": string(to)}

	switch {
	case to == StatusInProgress && r.AssignedTo == "":
		assignedAt := now
		r.AssignedTo = actor
		r.AssignedAt = &assignedAt
		fields["assignedTo"] = actor
		fields["assignedAt"] = &assignedAt
		if deadline, ok := DeadlineFor(assignedAt, r.Zone); ok {
			r.Deadline = &deadline
			fields["deadline"] = &deadline
		}

	case to == StatusCompleted:
		completedAt := now
		justification = strings.TrimSpace(justification)
		if r.Deadline != nil && PastDeadline(*r.Deadline, completedAt) {
			if justification == "" {
				return nil, ErrJustificationRequired
			}
			r.DelayJustification = justification
			fields["delayJustification"] = justification
		} else {
			r.DelayJustification = ""
			fields["delayJustification"] = nil
		}
		r.CompletedAt = &completedAt
		fields["completedAt"] = &completedAt
	}

	if to != StatusCompleted {
		r.CompletedAt = nil
		r.DelayJustification = ""
		fields["completedAt"] = nil
		fields["delayJustification"] = nil
	}

	r.Status = to
	return fields, nil
}

// Assign sets or changes the technician responsible for a report,
// independent of its status. A new assignee stamps assignedAt and
// recomputes the deadline from it; an empty username unassigns and clears
// assignedTo, assignedAt and deadline together.
func Assign(r *Report, username string, now time.Time) FieldUpdate {
	if username == "" {
		r.AssignedTo = ""
		r.AssignedAt = nil
		r.Deadline = nil
		return FieldUpdate{
			"assignedTo": nil,
			"assignedAt": nil,
			"deadline":   nil,
		}
	}

	if username == r.AssignedTo {
		return FieldUpdate{}
	}

	assignedAt := now
	r.AssignedTo = username
	r.AssignedAt = &assignedAt
	fields := FieldUpdate{
		"assignedTo": username,
		"assignedAt": &assignedAt,
	}
	if deadline, ok := DeadlineFor(assignedAt, r.Zone); ok {
		r.Deadline = &deadline
		fields["deadline"] = &deadline
	} else {
		r.Deadline = nil
		fields["deadline"] = nil
	}
	return fields
}

// SanitizeCost coerces an intake cost to the stored value: anything that
// is not a non-negative number becomes 0 ("no charge").
func SanitizeCost(cost float64, err error) float64 {
	if err != nil || cost < 0 {
		return 0
	}
	return cost
}
