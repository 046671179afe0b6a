package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cafetrack/internal/domain"
	"cafetrack/internal/repository"
)

// deadlineLayout is how civil dates are stored (no time-of-day component)
const deadlineLayout = "2006-01-02"

// ReportRepo implements repository.ReportRepository
type ReportRepo struct {
	db *DB
}

// NewReportRepo creates a new ReportRepo
func NewReportRepo(db *DB) repository.ReportRepository {
	return &ReportRepo{db: db}
}

func (r *ReportRepo) Create(ctx context.Context, report *domain.Report) error {
	query := `
		INSERT INTO reports (folio, status, company_name, reporter_name, phone_number,
			equipment_type, equipment_model, issue_description, zone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	if report.Status == "" {
		report.Status = domain.StatusPending
	}
	result, err := r.db.ExecContext(ctx, query,
		report.Folio, report.Status, report.CompanyName, report.ReporterName, report.PhoneNumber,
		report.EquipmentType, report.EquipmentModel, report.IssueDescription, report.Zone, now, now)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get report ID: %w", err)
	}
	report.ID = id
	report.CreatedAt = now
	report.UpdatedAt = now
	return nil
}

const reportColumns = `id, folio, status, company_name, reporter_name, phone_number,
	equipment_type, equipment_model, issue_description, zone,
	assigned_to, assigned_at, deadline, completed_at, delay_justification,
	created_at, updated_at`

func (r *ReportRepo) GetByID(ctx context.Context, id int64) (*domain.Report, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)
	return r.getOne(ctx, row)
}

func (r *ReportRepo) GetByFolio(ctx context.Context, folio string) (*domain.Report, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE folio = ?`, folio)
	return r.getOne(ctx, row)
}

func (r *ReportRepo) getOne(ctx context.Context, row *sql.Row) (*domain.Report, error) {
	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	workLog, err := r.GetWorkLog(ctx, report.ID)
	if err != nil {
		return nil, err
	}
	report.WorkLog = workLog
	return report, nil
}

func (r *ReportRepo) List(ctx context.Context, filter repository.ReportFilter) ([]domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports`
	var conds []string
	var args []interface{}

	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.AssignedTo != "" {
		if filter.IncludeUnassigned {
			conds = append(conds, "(assigned_to = ? OR assigned_to IS NULL)")
		} else {
			conds = append(conds, "assigned_to = ?")
		}
		args = append(args, filter.AssignedTo)
	}

	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

func (r *ReportRepo) All(ctx context.Context) ([]domain.Report, error) {
	return r.List(ctx, repository.ReportFilter{})
}

// fieldColumns whitelists the mutable lifecycle fields; everything else
// (the intake fields, the folio) is immutable after Create.
var fieldColumns = map[string]string{
	"status":             "status",
	"assignedTo":         "assigned_to",
	"assignedAt":         "assigned_at",
	"deadline":           "deadline",
	"completedAt":        "completed_at",
	"delayJustification": "delay_justification",
}

// UpdateFields merges the given fields into the stored report. Only the
// named columns are touched; a nil value writes NULL. Unknown field names
// are an error so engine and schema cannot silently drift apart.
func (r *ReportRepo) UpdateFields(ctx context.Context, id int64, fields domain.FieldUpdate) error {
	if len(fields) == 0 {
		return nil
	}

	set := "updated_at = ?"
	args := []interface{}{time.Now()}
	for name, value := range fields {
		col, ok := fieldColumns[name]
		if !ok {
			return fmt.Errorf("update report: field %q is not updatable", name)
		}
		set += ", " + col + " = ?"
		if name == "deadline" {
			args = append(args, deadlineValue(value))
		} else {
			args = append(args, toDBValue(value))
		}
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, "UPDATE reports SET "+set+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update report %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update report %d: not found", id)
	}
	return nil
}

// deadlineValue formats a deadline as a bare date for storage.
func deadlineValue(v interface{}) interface{} {
	switch t := v.(type) {
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(deadlineLayout)
	case time.Time:
		return t.UTC().Format(deadlineLayout)
	default:
		return nil
	}
}

// toDBValue converts engine field values to SQL arguments.
func toDBValue(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case *time.Time:
		if t == nil {
			return nil
		}
		return *t
	case time.Time:
		return t
	default:
		return v
	}
}

// AppendWorkLog adds one entry to the end of a report's work log. It is a
// plain INSERT, so concurrent appends from different actors can never
// overwrite each other.
func (r *ReportRepo) AppendWorkLog(ctx context.Context, entry *domain.WorkLogEntry) error {
	query := `
		INSERT INTO work_log_entries (report_id, work_date, work_time, description, cost, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		entry.ReportID, entry.Date, entry.Time, entry.Description, entry.Cost, now)
	if err != nil {
		return fmt.Errorf("failed to append work log entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get work log entry ID: %w", err)
	}
	entry.ID = id
	entry.CreatedAt = now

	// Touch the parent so list orderings and watchers see the change.
	_, err = r.db.ExecContext(ctx, `UPDATE reports SET updated_at = ? WHERE id = ?`, now, entry.ReportID)
	if err != nil {
		return fmt.Errorf("failed to touch report %d: %w", entry.ReportID, err)
	}
	return nil
}

func (r *ReportRepo) GetWorkLog(ctx context.Context, reportID int64) ([]domain.WorkLogEntry, error) {
	query := `
		SELECT id, report_id, work_date, work_time, description, cost, created_at
		FROM work_log_entries WHERE report_id = ? ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get work log: %w", err)
	}
	defer rows.Close()

	var entries []domain.WorkLogEntry
	for rows.Next() {
		var e domain.WorkLogEntry
		if err := rows.Scan(&e.ID, &e.ReportID, &e.Date, &e.Time, &e.Description, &e.Cost, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan work log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *ReportRepo) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM reports GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Status]int)
	for rows.Next() {
		var status domain.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan report count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*domain.Report, error) {
	var rep domain.Report
	var equipmentModel, assignedTo, deadline, justification sql.NullString
	var assignedAt, completedAt, updatedAt sql.NullTime

	err := row.Scan(
		&rep.ID, &rep.Folio, &rep.Status, &rep.CompanyName, &rep.ReporterName, &rep.PhoneNumber,
		&rep.EquipmentType, &equipmentModel, &rep.IssueDescription, &rep.Zone,
		&assignedTo, &assignedAt, &deadline, &completedAt, &justification,
		&rep.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rep.EquipmentModel = equipmentModel.String
	rep.AssignedTo = assignedTo.String
	rep.DelayJustification = justification.String
	if assignedAt.Valid {
		t := assignedAt.Time
		rep.AssignedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		rep.CompletedAt = &t
	}
	if updatedAt.Valid {
		rep.UpdatedAt = updatedAt.Time
	}
	if deadline.Valid && deadline.String != "" {
		d, err := time.ParseInLocation(deadlineLayout, deadline.String, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse deadline %q: %w", deadline.String, err)
		}
		rep.Deadline = &d
	}
	return &rep, nil
}

func scanReports(rows *sql.Rows) ([]domain.Report, error) {
	var reports []domain.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *rep)
	}
	return reports, rows.Err()
}
