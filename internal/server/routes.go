package server

import (
	"net/http"
	"time"

	"cafetrack/internal/domain"

	"github.com/go-chi/chi/v5"
)

// setupRoutes configures all application routes
func (s *Server) setupRoutes() {
	r := s.router

	// Health check endpoint
	r.Get("/health", s.handleHealth)

	// Public routes
	r.Group(func(r chi.Router) {
		r.Post("/api/login", s.handleLogin)
		r.Post("/api/logout", s.handleLogout)

		// Intake: anyone can file a report
		r.Post("/api/reports", s.handleCreateReport)

		// Public folio tracking
		r.Get("/api/reports/track/{folio}", s.handleTrackReport)
		r.Get("/api/reports/track/{folio}/qr", s.handleTrackingQR)
	})

	// Protected routes - Technician (and admin)
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Use(s.roleMiddleware(domain.RoleTechnician))

		r.Get("/api/reports", s.handleReportQueue)
		r.Get("/api/reports/watch", s.handleWatchReports)
		r.Get("/api/reports/{id}", s.handleReportDetail)
		r.Post("/api/reports/{id}/status", s.handleChangeStatus)
		r.Post("/api/reports/{id}/worklog", s.handleAppendWorkLog)
	})

	// Protected routes - Admin only
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Use(s.roleMiddleware(domain.RoleAdmin))

		r.Get("/api/admin/reports", s.handleAdminReportsList)
		r.Post("/api/admin/reports/{id}/technician", s.handleAssignTechnician)
		r.Get("/api/admin/metrics", s.handleMetrics)

		// User management (the identity provider surface)
		r.Get("/api/admin/users", s.handleUsersList)
		r.Post("/api/admin/users", s.handleCreateUser)
		r.Put("/api/admin/users/{id}", s.handleUpdateUser)
		r.Delete("/api/admin/users/{id}", s.handleDeleteUser)

		r.Get("/api/admin/settings", s.handleGetSettings)
		r.Put("/api/admin/settings", s.handleUpdateSettings)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"watchers":  s.hub.Len(),
	})
}
