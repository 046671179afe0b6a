package server

import (
	"log"
	"net/http"
	"strings"
	"time"

	"cafetrack/internal/domain"
	"cafetrack/internal/repository"
	"cafetrack/internal/repository/sqlite"
)

// handleAdminReportsList lists every report, optionally filtered by
// status or assignee via query params.
func (s *Server) handleAdminReportsList(w http.ResponseWriter, r *http.Request) {
	filter := repository.ReportFilter{
		Status:     domain.Status(strings.TrimSpace(r.URL.Query().Get("status"))),
		AssignedTo: strings.TrimSpace(r.URL.Query().Get("technician")),
	}

	reports, err := s.repos.Reports.List(r.Context(), filter)
	if err != nil {
		log.Printf("Error listing reports: %v", err)
		respondError(w, http.StatusInternalServerError, "error al listar reportes")
		return
	}

	respondJSON(w, http.StatusOK, newReportViews(reports, time.Now()))
}

type assignRequest struct {
	Technician string `json:"technician"`
}

// handleAssignTechnician assigns or reassigns a report. An empty
// technician name returns the report to the unassigned pool.
func (s *Server) handleAssignTechnician(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "solicitud inválida")
		return
	}
	req.Technician = strings.TrimSpace(req.Technician)

	id, err := getIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "identificador inválido")
		return
	}

	report, err := s.repos.Reports.GetByID(r.Context(), id)
	if err != nil {
		log.Printf("Error loading report %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "error al cargar reporte")
		return
	}
	if report == nil {
		respondError(w, http.StatusNotFound, "reporte no encontrado")
		return
	}

	if req.Technician != "" {
		tech, err := s.repos.Users.GetByUsername(r.Context(), req.Technician)
		if err != nil {
			log.Printf("Error loading technician %s: %v", req.Technician, err)
			respondError(w, http.StatusInternalServerError, "error al asignar reporte")
			return
		}
		if tech == nil {
			respondError(w, http.StatusBadRequest, "técnico no encontrado")
			return
		}
	}

	fields := domain.Assign(report, req.Technician, time.Now())
	if len(fields) > 0 {
		if err := s.repos.Reports.UpdateFields(r.Context(), report.ID, fields); err != nil {
			log.Printf("Error assigning report %d: %v", report.ID, err)
			respondError(w, http.StatusInternalServerError, "error al asignar reporte")
			return
		}
		s.hub.Notify()
	}

	respondJSON(w, http.StatusOK, newReportView(*report, time.Now()))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	reports, err := s.repos.Reports.All(r.Context())
	if err != nil {
		log.Printf("Error loading reports for metrics: %v", err)
		respondError(w, http.StatusInternalServerError, "error al calcular métricas")
		return
	}

	now := time.Now()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"overview":    domain.ComputeOverview(reports, now),
		"technicians": domain.ComputeTechnicianStats(reports),
	})
}

func (s *Server) handleUsersList(w http.ResponseWriter, r *http.Request) {
	role := strings.TrimSpace(r.URL.Query().Get("role"))
	users, err := s.repos.Users.List(r.Context(), role)
	if err != nil {
		log.Printf("Error listing users: %v", err)
		respondError(w, http.StatusInternalServerError, "error al listar usuarios")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

type userRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "solicitud inválida")
		return
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Name = strings.TrimSpace(req.Name)
	if req.Username == "" || req.Password == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "usuario, contraseña y nombre son obligatorios")
		return
	}
	if req.Role == "" {
		req.Role = domain.RoleTechnician
	}
	if req.Role != domain.RoleTechnician && req.Role != domain.RoleAdmin {
		respondError(w, http.StatusBadRequest, "rol desconocido")
		return
	}
	if existing, _ := s.repos.Users.GetByUsername(r.Context(), req.Username); existing != nil {
		respondError(w, http.StatusConflict, "el usuario ya existe")
		return
	}

	hash, err := sqlite.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		respondError(w, http.StatusInternalServerError, "error al crear usuario")
		return
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         req.Role,
	}
	if err := s.repos.Users.Create(r.Context(), user); err != nil {
		log.Printf("Error creating user %s: %v", req.Username, err)
		respondError(w, http.StatusInternalServerError, "error al crear usuario")
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "identificador inválido")
		return
	}

	user, err := s.repos.Users.GetByID(r.Context(), id)
	if err != nil {
		log.Printf("Error loading user %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "error al cargar usuario")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "usuario no encontrado")
		return
	}

	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "solicitud inválida")
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		user.Phone = phone
	}
	if req.Role != "" {
		if req.Role != domain.RoleTechnician && req.Role != domain.RoleAdmin {
			respondError(w, http.StatusBadRequest, "rol desconocido")
			return
		}
		user.Role = req.Role
	}
	if req.Password != "" {
		hash, err := sqlite.HashPassword(req.Password)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			respondError(w, http.StatusInternalServerError, "error al actualizar usuario")
			return
		}
		user.PasswordHash = hash
	}

	if err := s.repos.Users.Update(r.Context(), user); err != nil {
		log.Printf("Error updating user %d: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "error al actualizar usuario")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r)
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "no autorizado")
		return
	}

	id, err := getIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "identificador inválido")
		return
	}
	if id == claims.UserID {
		respondError(w, http.StatusBadRequest, "no puedes eliminar tu propia cuenta")
		return
	}

	if err := s.repos.Users.Delete(r.Context(), id); err != nil {
		log.Printf("Error deleting user %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "error al eliminar usuario")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

var settingKeys = []string{
	repository.SettingTrackingBaseURL,
	repository.SettingAdminEmail,
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]string, len(settingKeys))
	for _, key := range settingKeys {
		value, err := s.repos.Settings.Get(r.Context(), key)
		if err != nil {
			log.Printf("Error reading setting %s: %v", key, err)
			respondError(w, http.StatusInternalServerError, "error al leer configuración")
			return
		}
		out[key] = value
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "solicitud inválida")
		return
	}

	for key, value := range req {
		known := false
		for _, k := range settingKeys {
			if k == key {
				known = true
				break
			}
		}
		if !known {
			respondError(w, http.StatusBadRequest, "configuración desconocida: "+key)
			return
		}
		if err := s.repos.Settings.Set(r.Context(), key, strings.TrimSpace(value)); err != nil {
			log.Printf("Error saving setting %s: %v", key, err)
			respondError(w, http.StatusInternalServerError, "error al guardar configuración")
			return
		}
	}

	s.handleGetSettings(w, r)
}
