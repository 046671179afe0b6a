// Package domain defines core business entities
package domain

import (
	"crypto/rand"
	"math/big"
	"time"
)

// Report represents a coffee-equipment failure report (the work order of
// the whole system). Intake fields are immutable after creation; the
// lifecycle fields are mutated only through the functions in this package.
type Report struct {
	ID               int64  `json:"id"`
	Folio            string `json:"folio"`
	Status           Status `json:"status"`
	CompanyName      string `json:"companyName"`
	ReporterName     string `json:"reporterName"`
	PhoneNumber      string `json:"phoneNumber"`
	EquipmentType    string `json:"equipmentType"` // Cafetera, Molino
	EquipmentModel   string `json:"equipmentModel"`
	IssueDescription string `json:"issueDescription"`
	Zone             string `json:"zone"`

	AssignedTo         string     `json:"assignedTo,omitempty"` // technician username, empty = unassigned
	AssignedAt         *time.Time `json:"assignedAt,omitempty"`
	Deadline           *time.Time `json:"deadline,omitempty"` // civil date, midnight UTC
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	DelayJustification string     `json:"delayJustification,omitempty"`

	WorkLog []WorkLogEntry `json:"workLog,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WorkLogEntry is one append-only record of work performed against a report.
// Entries are never edited or removed.
type WorkLogEntry struct {
	ID          int64     `json:"id"`
	ReportID    int64     `json:"reportId"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Time        string    `json:"time"` // HH:MM
	Description string    `json:"description"`
	Cost        float64   `json:"cost"` // 0 means no charge
	CreatedAt   time.Time `json:"createdAt"`
}

// User represents a system user (technician or admin)
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"` // technician, admin
	CreatedAt    time.Time `json:"createdAt"`
}

// Status is the report lifecycle state
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusUnrepaired Status = "unrepaired"
)

// Equipment types offered on the intake form
const (
	EquipmentCoffeeMaker = "Cafetera"
	EquipmentGrinder     = "Molino"
)

// Service zones. SLA offsets live in sla.go; any other zone string is
// accepted at intake but never gets a deadline.
const (
	ZoneCancun          = "Cancun"
	ZonePuertoMorelos   = "Puerto Morelos"
	ZonePlayaDelCarmen  = "Playa del Carmen"
	ZonePuertoAventuras = "Puerto Aventuras"
	ZoneTulum           = "Tulum"
	ZoneOther           = "Otro"
)

// User roles
const (
	RoleTechnician = "technician"
	RoleAdmin      = "admin"
)

// ValidStatus reports whether s is one of the four lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusUnrepaired:
		return true
	}
	return false
}

// IsTerminal reports whether the status offers no further work
// (re-opening is still permitted by the engine).
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusUnrepaired
}

// StatusLabel returns the human-readable (Spanish) label for a status
func StatusLabel(status Status) string {
	labels := map[Status]string{
		StatusPending:    "Pendiente",
		StatusInProgress: "En Proceso",
		StatusCompleted:  "Completado",
		StatusUnrepaired: "No Reparado",
	}
	if label, ok := labels[status]; ok {
		return label
	}
	return string(status)
}

const folioAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewFolio generates a human-facing ticket identifier: "CAF-" plus nine
// random base-36 characters.
func NewFolio() string {
	b := make([]byte, 9)
	max := big.NewInt(int64(len(folioAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			panic(err)
		}
		b[i] = folioAlphabet[n.Int64()]
	}
	return "CAF-" + string(b)
}
