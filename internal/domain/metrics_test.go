package domain

import (
	"testing"
	"time"
)

func TestComputeTechnicianStats(t *testing.T) {
	deadline := date(2026, 3, 5)
	assigned := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	onTime := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	late := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	reports := []Report{
		{AssignedTo: "carlos", Status: StatusCompleted, AssignedAt: &assigned, CompletedAt: &onTime, Deadline: &deadline},
		{AssignedTo: "carlos", Status: StatusCompleted, AssignedAt: &assigned, CompletedAt: &late, Deadline: &deadline},
		{AssignedTo: "ana", Status: StatusCompleted, AssignedAt: &assigned, CompletedAt: &onTime},
		{AssignedTo: "carlos", Status: StatusInProgress, AssignedAt: &assigned, Deadline: &deadline},
		{Status: StatusPending},
	}

	stats := ComputeTechnicianStats(reports)
	if len(stats) != 2 {
		t.Fatalf("len(stats) = %d, want 2", len(stats))
	}

	// Sorted by username: ana first
	ana := stats[0]
	if ana.Technician != "ana" || ana.Completed != 1 {
		t.Errorf("ana = %+v", ana)
	}
	if ana.OnTimePercent != "N/A" {
		t.Errorf("ana without deadlines should be N/A, got %q", ana.OnTimePercent)
	}
	if ana.AvgDuration != "2d" {
		t.Errorf("ana avg = %q, want 2d", ana.AvgDuration)
	}

	carlos := stats[1]
	if carlos.Technician != "carlos" || carlos.Completed != 2 {
		t.Errorf("carlos = %+v", carlos)
	}
	if carlos.OnTimePercent != "50.0%" {
		t.Errorf("carlos on-time = %q, want 50.0%%", carlos.OnTimePercent)
	}
	// (2d + 8d) / 2
	if carlos.AvgDuration != "5d" {
		t.Errorf("carlos avg = %q, want 5d", carlos.AvgDuration)
	}
}

func TestComputeTechnicianStatsEmpty(t *testing.T) {
	if stats := ComputeTechnicianStats(nil); len(stats) != 0 {
		t.Errorf("stats = %v, want empty", stats)
	}
}

func TestComputeOverview(t *testing.T) {
	deadline := date(2026, 3, 5)
	farDeadline := date(2026, 3, 20)
	lateCompleted := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC)

	reports := []Report{
		{Status: StatusPending},
		{Status: StatusInProgress, Deadline: &farDeadline},
		{Status: StatusInProgress, Deadline: &deadline},
		{Status: StatusCompleted, Deadline: &deadline, CompletedAt: &lateCompleted},
		{Status: StatusUnrepaired},
	}

	o := ComputeOverview(reports, now)

	if o.ByStatus[StatusPending] != 1 || o.ByStatus[StatusInProgress] != 2 ||
		o.ByStatus[StatusCompleted] != 1 || o.ByStatus[StatusUnrepaired] != 1 {
		t.Errorf("byStatus = %v", o.ByStatus)
	}
	if o.Buckets.OnTime != 1 {
		t.Errorf("onTime = %d, want 1", o.Buckets.OnTime)
	}
	if o.Buckets.Overdue != 2 {
		t.Errorf("overdue = %d, want 2 (one open overdue, one completed late)", o.Buckets.Overdue)
	}
	if o.Buckets.DueSoon != 0 {
		t.Errorf("dueSoon = %d, want 0", o.Buckets.DueSoon)
	}
}
