package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDeadlineFor(t *testing.T) {
	// 2026-03-02 is a Monday
	monday := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		assignedAt time.Time
		zone       string
		want       time.Time
		wantOK     bool
	}{
		{
			name:       "tulum three business days",
			assignedAt: monday,
			zone:       ZoneTulum,
			want:       date(2026, 3, 5), // Thursday
			wantOK:     true,
		},
		{
			name:       "playa del carmen crosses weekend",
			assignedAt: time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC), // Thursday
			zone:       ZonePlayaDelCarmen,
			want:       date(2026, 3, 9), // Monday, Sat+Sun skipped
			wantOK:     true,
		},
		{
			name:       "cancun seven business days",
			assignedAt: monday,
			zone:       ZoneCancun,
			want:       date(2026, 3, 11),
			wantOK:     true,
		},
		{
			name:       "puerto morelos same as cancun",
			assignedAt: monday,
			zone:       ZonePuertoMorelos,
			want:       date(2026, 3, 11),
			wantOK:     true,
		},
		{
			name:       "assigned on saturday starts monday",
			assignedAt: time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC), // Saturday
			zone:       ZoneTulum,
			want:       date(2026, 3, 11),
			wantOK:     true,
		},
		{
			name:       "otro ten business days",
			assignedAt: monday,
			zone:       ZoneOther,
			want:       date(2026, 3, 16),
			wantOK:     true,
		},
		{
			name:       "unknown zone has no deadline",
			assignedAt: monday,
			zone:       "Bacalar",
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DeadlineFor(tt.assignedAt, tt.zone)
			if ok != tt.wantOK {
				t.Fatalf("DeadlineFor ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("DeadlineFor = %v, want %v", got, tt.want)
			}
			if wd := got.Weekday(); wd == time.Saturday || wd == time.Sunday {
				t.Errorf("deadline fell on weekend: %v", wd)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	deadline := date(2026, 3, 5)
	completedOnTime := time.Date(2026, 3, 5, 18, 0, 0, 0, time.UTC)
	completedLate := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		report Report
		now    time.Time
		want   DeadlineClass
	}{
		{
			name:   "no deadline",
			report: Report{Status: StatusInProgress},
			now:    time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC),
			want:   ClassNone,
		},
		{
			name:   "on time with room to spare",
			report: Report{Status: StatusInProgress, Deadline: &deadline},
			now:    time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC),
			want:   ClassOnTime,
		},
		{
			name:   "due soon on deadline day",
			report: Report{Status: StatusInProgress, Deadline: &deadline},
			now:    time.Date(2026, 3, 5, 1, 0, 0, 0, time.UTC),
			want:   ClassDueSoon,
		},
		{
			name:   "overdue the midnight after",
			report: Report{Status: StatusInProgress, Deadline: &deadline},
			now:    time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC),
			want:   ClassOverdue,
		},
		{
			name:   "completed on the deadline day counts as on time",
			report: Report{Status: StatusCompleted, Deadline: &deadline, CompletedAt: &completedOnTime},
			now:    time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
			want:   ClassCompletedOnTime,
		},
		{
			name:   "completed after the deadline day is late",
			report: Report{Status: StatusCompleted, Deadline: &deadline, CompletedAt: &completedLate},
			now:    time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
			want:   ClassCompletedLate,
		},
		{
			name:   "unrepaired never counts as overdue",
			report: Report{Status: StatusUnrepaired, Deadline: &deadline},
			now:    time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
			want:   ClassNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(&tt.report, tt.now); got != tt.want {
				t.Errorf("Classify = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOverdueBy(t *testing.T) {
	deadline := date(2026, 3, 5)

	if got := OverdueBy(deadline, time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)); got != "" {
		t.Errorf("not yet overdue, got %q", got)
	}
	got := OverdueBy(deadline, time.Date(2026, 3, 8, 3, 15, 0, 0, time.UTC))
	if got != "2d 3h 15m" {
		t.Errorf("OverdueBy = %q, want %q", got, "2d 3h 15m")
	}
}

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{51*time.Hour + 15*time.Minute, "2d 3h 15m"},
		{45 * time.Minute, "45m"},
		{3 * time.Hour, "3h"},
		{26 * time.Hour, "1d 2h"},
		{30 * time.Second, "30s"},
		{100 * time.Millisecond, "menos de 1m"},
		{0, "menos de 1m"},
		{-5 * time.Minute, "menos de 1m"},
	}
	for _, tt := range tests {
		if got := FormatDelta(tt.d); got != tt.want {
			t.Errorf("FormatDelta(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
