// Package repository defines interfaces for data persistence
package repository

import (
	"context"

	"cafetrack/internal/domain"
)

// ReportFilter narrows report listings. Zero values mean "no filter".
type ReportFilter struct {
	Status domain.Status
	// AssignedTo limits to reports assigned to this username.
	AssignedTo string
	// IncludeUnassigned widens AssignedTo to also return unassigned
	// reports (the technician queue: mine plus up-for-grabs).
	IncludeUnassigned bool
	Limit             int
	Offset            int
}

// ReportRepository defines the interface for report data operations.
// UpdateFields is a per-field partial update: only the named fields are
// written, so concurrent writers never clobber each other's unrelated
// fields. AppendWorkLog inserts a new entry atomically; existing entries
// are never touched.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id int64) (*domain.Report, error)
	GetByFolio(ctx context.Context, folio string) (*domain.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]domain.Report, error)
	All(ctx context.Context) ([]domain.Report, error)
	UpdateFields(ctx context.Context, id int64, fields domain.FieldUpdate) error
	AppendWorkLog(ctx context.Context, entry *domain.WorkLogEntry) error
	GetWorkLog(ctx context.Context, reportID int64) ([]domain.WorkLogEntry, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int, error)
}

// UserRepository defines the interface for user account operations (the
// identity provider: technicians and admins).
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, role string) ([]domain.User, error)
	Count(ctx context.Context, role string) (int, error)
}

// SettingsRepository handles mutable operational configuration
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Well-known settings keys
const (
	SettingTrackingBaseURL = "tracking_base_url"
	SettingAdminEmail      = "admin_email"
)

// Repositories bundles all repository interfaces
type Repositories struct {
	Reports  ReportRepository
	Users    UserRepository
	Settings SettingsRepository
}
