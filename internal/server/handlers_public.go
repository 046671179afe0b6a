package server

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"cafetrack/internal/domain"
	"cafetrack/internal/repository"
	"cafetrack/internal/repository/sqlite"

	"github.com/skip2/go-qrcode"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin validates credentials and issues a JWT session
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	user, err := s.repos.Users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if user == nil || !sqlite.CheckPassword(req.Password, user.PasswordHash) {
		respondError(w, http.StatusUnauthorized, "credenciales inválidas")
		return
	}

	token, err := s.generateToken(user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "error generating token")
		return
	}

	s.setAuthCookie(w, token, s.config.JWT.ExpirationHours*3600)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// handleLogout clears the session cookie
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

type createReportRequest struct {
	CompanyName      string `json:"companyName"`
	ReporterName     string `json:"reporterName"`
	PhoneNumber      string `json:"phoneNumber"`
	EquipmentType    string `json:"equipmentType"`
	EquipmentModel   string `json:"equipmentModel"`
	IssueDescription string `json:"issueDescription"`
	Zone             string `json:"zone"`
}

// handleCreateReport is the public intake: a new report starts pending,
// unassigned, with an empty work log, and gets a generated folio.
func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.ReporterName = strings.TrimSpace(req.ReporterName)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.IssueDescription = strings.TrimSpace(req.IssueDescription)
	req.Zone = strings.TrimSpace(req.Zone)

	if req.CompanyName == "" || req.ReporterName == "" || req.PhoneNumber == "" ||
		req.IssueDescription == "" || req.Zone == "" {
		respondError(w, http.StatusBadRequest, "companyName, reporterName, phoneNumber, issueDescription and zone are required")
		return
	}
	if req.EquipmentType != domain.EquipmentCoffeeMaker && req.EquipmentType != domain.EquipmentGrinder {
		respondError(w, http.StatusBadRequest, "equipmentType must be Cafetera or Molino")
		return
	}

	report := &domain.Report{
		Folio:            domain.NewFolio(),
		Status:           domain.StatusPending,
		CompanyName:      req.CompanyName,
		ReporterName:     req.ReporterName,
		PhoneNumber:      req.PhoneNumber,
		EquipmentType:    req.EquipmentType,
		EquipmentModel:   strings.TrimSpace(req.EquipmentModel),
		IssueDescription: req.IssueDescription,
		Zone:             req.Zone,
	}

	if err := s.repos.Reports.Create(r.Context(), report); err != nil {
		log.Printf("intake: create report: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create report")
		return
	}

	s.hub.Notify()
	if s.notifier != nil {
		go func(rep domain.Report) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.notifier.ReportReceived(ctx, &rep)
		}(*report)
	}

	respondJSON(w, http.StatusCreated, report)
}

// trackingView is the public projection of a report
type trackingView struct {
	Folio         string               `json:"folio"`
	Status        domain.Status        `json:"status"`
	StatusLabel   string               `json:"statusLabel"`
	CompanyName   string               `json:"companyName"`
	EquipmentType string               `json:"equipmentType"`
	Deadline      *time.Time           `json:"deadline,omitempty"`
	Class         domain.DeadlineClass `json:"deadlineClass"`
	OverdueBy     string               `json:"overdueBy,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// handleTrackReport shows report status by folio
func (s *Server) handleTrackReport(w http.ResponseWriter, r *http.Request) {
	folio := getURLParam(r, "folio")

	report, err := s.repos.Reports.GetByFolio(r.Context(), folio)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	if report == nil {
		respondError(w, http.StatusNotFound, "folio no encontrado")
		return
	}

	now := time.Now()
	view := trackingView{
		Folio:         report.Folio,
		Status:        report.Status,
		StatusLabel:   domain.StatusLabel(report.Status),
		CompanyName:   report.CompanyName,
		EquipmentType: report.EquipmentType,
		Deadline:      report.Deadline,
		Class:         domain.Classify(report, now),
		CreatedAt:     report.CreatedAt,
	}
	if report.Deadline != nil && !report.Status.IsTerminal() {
		view.OverdueBy = domain.OverdueBy(*report.Deadline, now)
	}

	respondJSON(w, http.StatusOK, view)
}

// handleTrackingQR returns a QR code PNG pointing at the public tracking
// page for a folio
func (s *Server) handleTrackingQR(w http.ResponseWriter, r *http.Request) {
	folio := getURLParam(r, "folio")
	ctx := r.Context()

	report, err := s.repos.Reports.GetByFolio(ctx, folio)
	if err != nil || report == nil {
		respondError(w, http.StatusNotFound, "folio no encontrado")
		return
	}

	baseURL, _ := s.repos.Settings.Get(ctx, repository.SettingTrackingBaseURL)
	if baseURL == "" {
		baseURL = s.config.Server.BaseURL
	}
	if baseURL == "" {
		baseURL = "http://" + s.config.Address()
	}

	png, err := qrcode.Encode(strings.TrimRight(baseURL, "/")+"/tracking/"+report.Folio, qrcode.Medium, 256)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "error generating QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
