package domain

import (
	"fmt"
	"sort"
	"time"
)

// TechnicianStats are per-technician productivity numbers derived from
// the full report set on demand; nothing here is stored.
type TechnicianStats struct {
	Technician    string `json:"technician"`
	Completed     int    `json:"completed"`
	AvgDuration   string `json:"avgDuration"`   // mean completedAt - assignedAt, "" when no data
	OnTimePercent string `json:"onTimePercent"` // "N/A" when no completed report has a deadline
}

// Overview is the global dashboard summary.
type Overview struct {
	ByStatus map[Status]int  `json:"byStatus"`
	Buckets  DeadlineBuckets `json:"buckets"`
}

// DeadlineBuckets counts non-terminal reports by deadline state; reports
// completed after their deadline are counted as overdue.
type DeadlineBuckets struct {
	OnTime  int `json:"onTime"`
	DueSoon int `json:"dueSoon"`
	Overdue int `json:"overdue"`
}

// ComputeTechnicianStats aggregates completed-report stats per assigned
// technician, sorted by username.
func ComputeTechnicianStats(reports []Report) []TechnicianStats {
	type acc struct {
		completed     int
		totalDuration time.Duration
		withDuration  int
		withDeadline  int
		onTime        int
	}
	byTech := make(map[string]*acc)

	for i := range reports {
		r := &reports[i]
		if r.AssignedTo == "" || r.Status != StatusCompleted {
			continue
		}
		a := byTech[r.AssignedTo]
		if a == nil {
			a = &acc{}
			byTech[r.AssignedTo] = a
		}
		a.completed++
		if r.CompletedAt != nil && r.AssignedAt != nil {
			a.totalDuration += r.CompletedAt.Sub(*r.AssignedAt)
			a.withDuration++
		}
		if r.Deadline != nil && r.CompletedAt != nil {
			a.withDeadline++
			if CompletedOnTime(*r.CompletedAt, *r.Deadline) {
				a.onTime++
			}
		}
	}

	stats := make([]TechnicianStats, 0, len(byTech))
	for tech, a := range byTech {
		s := TechnicianStats{
			Technician:    tech,
			Completed:     a.completed,
			OnTimePercent: "N/A",
		}
		if a.withDuration > 0 {
			s.AvgDuration = FormatDelta(a.totalDuration / time.Duration(a.withDuration))
		}
		if a.withDeadline > 0 {
			s.OnTimePercent = fmt.Sprintf("%.1f%%", float64(a.onTime)/float64(a.withDeadline)*100)
		}
		stats = append(stats, s)
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Technician < stats[j].Technician })
	return stats
}

// ComputeOverview derives the global status counts and deadline buckets.
func ComputeOverview(reports []Report, now time.Time) Overview {
	o := Overview{ByStatus: make(map[Status]int)}

	for i := range reports {
		r := &reports[i]
		o.ByStatus[r.Status]++

		switch Classify(r, now) {
		case ClassOnTime:
			o.Buckets.OnTime++
		case ClassDueSoon:
			o.Buckets.DueSoon++
		case ClassOverdue, ClassCompletedLate:
			o.Buckets.Overdue++
		}
	}
	return o
}
