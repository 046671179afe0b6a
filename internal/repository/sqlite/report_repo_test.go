package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cafetrack/internal/domain"
	"cafetrack/internal/repository"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func newTestReport(t *testing.T, repo repository.ReportRepository) *domain.Report {
	t.Helper()
	report := &domain.Report{
		Folio:            domain.NewFolio(),
		CompanyName:      "Café Central",
		ReporterName:     "María",
		PhoneNumber:      "9981234567",
		EquipmentType:    domain.EquipmentCoffeeMaker,
		EquipmentModel:   "Linea Mini",
		IssueDescription: "No calienta el agua",
		Zone:             domain.ZoneTulum,
	}
	if err := repo.Create(context.Background(), report); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return report
}

func TestReportCreateAndGet(t *testing.T) {
	repo := NewReportRepo(newTestDB(t))
	ctx := context.Background()

	report := newTestReport(t, repo)
	if report.ID == 0 {
		t.Fatal("Create did not set ID")
	}
	if report.Status != domain.StatusPending {
		t.Errorf("status = %q, want pending", report.Status)
	}

	byID, err := repo.GetByID(ctx, report.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID == nil || byID.Folio != report.Folio || byID.CompanyName != "Café Central" {
		t.Errorf("GetByID = %+v", byID)
	}

	byFolio, err := repo.GetByFolio(ctx, report.Folio)
	if err != nil {
		t.Fatalf("GetByFolio: %v", err)
	}
	if byFolio == nil || byFolio.ID != report.ID {
		t.Errorf("GetByFolio = %+v", byFolio)
	}

	missing, err := repo.GetByFolio(ctx, "CAF-NOPE00000")
	if err != nil {
		t.Fatalf("GetByFolio missing: %v", err)
	}
	if missing != nil {
		t.Errorf("missing folio = %+v, want nil", missing)
	}
}

func TestReportUpdateFieldsPartial(t *testing.T) {
	repo := NewReportRepo(newTestDB(t))
	ctx := context.Background()
	report := newTestReport(t, repo)

	assignedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	deadline := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	err := repo.UpdateFields(ctx, report.ID, domain.FieldUpdate{
		"status":     string(domain.StatusInProgress),
		"assignedTo": "carlos",
		"assignedAt": &assignedAt,
		"deadline":   &deadline,
	})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	// A second update naming only status must leave the rest untouched.
	if err := repo.UpdateFields(ctx, report.ID, domain.FieldUpdate{"status": string(domain.StatusUnrepaired)}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	got, err := repo.GetByID(ctx, report.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.StatusUnrepaired {
		t.Errorf("status = %q", got.Status)
	}
	if got.AssignedTo != "carlos" {
		t.Errorf("assignedTo = %q, partial update clobbered it", got.AssignedTo)
	}
	if got.Deadline == nil || !got.Deadline.Equal(deadline) {
		t.Errorf("deadline = %v, want %v", got.Deadline, deadline)
	}

	// nil clears a field
	if err := repo.UpdateFields(ctx, report.ID, domain.FieldUpdate{"assignedTo": nil, "assignedAt": nil, "deadline": nil}); err != nil {
		t.Fatalf("UpdateFields clear: %v", err)
	}
	got, _ = repo.GetByID(ctx, report.ID)
	if got.AssignedTo != "" || got.AssignedAt != nil || got.Deadline != nil {
		t.Errorf("clear left %q %v %v", got.AssignedTo, got.AssignedAt, got.Deadline)
	}
}

func TestReportUpdateFieldsRejectsUnknown(t *testing.T) {
	repo := NewReportRepo(newTestDB(t))
	report := newTestReport(t, repo)

	err := repo.UpdateFields(context.Background(), report.ID, domain.FieldUpdate{"folio": "CAF-HACKED000"})
	if err == nil {
		t.Fatal("expected error for non-updatable field")
	}
}

func TestReportUpdateFieldsNotFound(t *testing.T) {
	repo := NewReportRepo(newTestDB(t))
	err := repo.UpdateFields(context.Background(), 9999, domain.FieldUpdate{"status": "completed"})
	if err == nil {
		t.Fatal("expected error for missing report")
	}
}

func TestReportList(t *testing.T) {
	repo := NewReportRepo(newTestDB(t))
	ctx := context.Background()

	mine := newTestReport(t, repo)
	other := newTestReport(t, repo)
	pool := newTestReport(t, repo)

	repo.UpdateFields(ctx, mine.ID, domain.FieldUpdate{"assignedTo": "carlos", "status": string(domain.StatusInProgress)})
	repo.UpdateFields(ctx, other.ID, domain.FieldUpdate{"assignedTo": "gabriel"})

	t.Run("assigned only", func(t *testing.T) {
		got, err := repo.List(ctx, repository.ReportFilter{AssignedTo: "carlos"})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 1 || got[0].ID != mine.ID {
			t.Errorf("got %d reports", len(got))
		}
	})

	t.Run("technician queue includes unassigned", func(t *testing.T) {
		got, err := repo.List(ctx, repository.ReportFilter{AssignedTo: "carlos", IncludeUnassigned: true})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d reports, want mine + pool", len(got))
		}
		for _, r := range got {
			if r.ID == other.ID {
				t.Error("queue leaked another technician's report")
			}
		}
		_ = pool
	})

	t.Run("status filter", func(t *testing.T) {
		got, err := repo.List(ctx, repository.ReportFilter{Status: domain.StatusInProgress})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 1 || got[0].ID != mine.ID {
			t.Errorf("got %d reports", len(got))
		}
	})

	t.Run("all", func(t *testing.T) {
		got, err := repo.All(ctx)
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("got %d reports, want 3", len(got))
		}
	})
}

func TestWorkLogAppendAndRead(t *testing.T) {
	repo := NewReportRepo(newTestDB(t))
	ctx := context.Background()
	report := newTestReport(t, repo)

	entries := []domain.WorkLogEntry{
		{ReportID: report.ID, Date: "2026-03-03", Time: "10:00", Description: "Diagnóstico inicial", Cost: 0},
		{ReportID: report.ID, Date: "2026-03-04", Time: "16:30", Description: "Cambio de resistencia", Cost: 850},
	}
	for i := range entries {
		if err := repo.AppendWorkLog(ctx, &entries[i]); err != nil {
			t.Fatalf("AppendWorkLog: %v", err)
		}
		if entries[i].ID == 0 {
			t.Fatal("AppendWorkLog did not set ID")
		}
	}

	got, err := repo.GetByID(ctx, report.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.WorkLog) != 2 {
		t.Fatalf("len(workLog) = %d, want 2", len(got.WorkLog))
	}
	if got.WorkLog[0].Description != "Diagnóstico inicial" || got.WorkLog[1].Cost != 850 {
		t.Errorf("workLog out of order or corrupted: %+v", got.WorkLog)
	}
}

func TestWorkLogConcurrentAppends(t *testing.T) {
	repo := NewReportRepo(newTestDB(t))
	ctx := context.Background()
	report := newTestReport(t, repo)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry := &domain.WorkLogEntry{
				ReportID:    report.ID,
				Date:        "2026-03-03",
				Time:        "10:00",
				Description: "avance",
			}
			errs <- repo.AppendWorkLog(ctx, entry)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("AppendWorkLog: %v", err)
		}
	}

	log, err := repo.GetWorkLog(ctx, report.ID)
	if err != nil {
		t.Fatalf("GetWorkLog: %v", err)
	}
	if len(log) != n {
		t.Fatalf("len(workLog) = %d, want %d (appends were lost)", len(log), n)
	}
}

func TestCountByStatus(t *testing.T) {
	repo := NewReportRepo(newTestDB(t))
	ctx := context.Background()

	a := newTestReport(t, repo)
	newTestReport(t, repo)
	repo.UpdateFields(ctx, a.ID, domain.FieldUpdate{"status": string(domain.StatusCompleted)})

	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[domain.StatusPending] != 1 || counts[domain.StatusCompleted] != 1 {
		t.Errorf("counts = %v", counts)
	}
}
