package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cafetrack/internal/domain"
	"cafetrack/internal/repository"
)

// reportView is the JSON shape for a report in technician and admin
// responses, status and deadline enriched for display.
type reportView struct {
	domain.Report
	StatusLabel string `json:"statusLabel"`
	Class       string `json:"deadlineClass"`
	OverdueBy   string `json:"overdueBy,omitempty"`
}

func newReportView(r domain.Report, now time.Time) reportView {
	v := reportView{
		Report:      r,
		StatusLabel: domain.StatusLabel(r.Status),
		Class:       string(domain.Classify(&r, now)),
	}
	if r.Deadline != nil && !r.Status.IsTerminal() {
		v.OverdueBy = domain.OverdueBy(*r.Deadline, now)
	}
	return v
}

func newReportViews(reports []domain.Report, now time.Time) []reportView {
	views := make([]reportView, 0, len(reports))
	for _, r := range reports {
		views = append(views, newReportView(r, now))
	}
	return views
}

// queueFilter builds the report filter for the caller: technicians see
// their own assignments plus the unassigned pool, admins see everything.
func queueFilter(r *http.Request, claims *Claims) repository.ReportFilter {
	filter := repository.ReportFilter{
		Status: domain.Status(strings.TrimSpace(r.URL.Query().Get("status"))),
	}
	if claims.Role != domain.RoleAdmin {
		filter.AssignedTo = claims.Username
		filter.IncludeUnassigned = true
	}
	return filter
}

func (s *Server) handleReportQueue(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r)
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "no autorizado")
		return
	}

	reports, err := s.repos.Reports.List(r.Context(), queueFilter(r, claims))
	if err != nil {
		log.Printf("Error listing reports: %v", err)
		respondError(w, http.StatusInternalServerError, "error al listar reportes")
		return
	}

	respondJSON(w, http.StatusOK, newReportViews(reports, time.Now()))
}

func (s *Server) handleReportDetail(w http.ResponseWriter, r *http.Request) {
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

	if !canTouchReport(claims, report) {
		respondError(w, http.StatusForbidden, "reporte asignado a otro técnico")
		return
	}

	respondJSON(w, http.StatusOK, newReportView(*report, time.Now()))
}

// canTouchReport limits technicians to their own reports and the
// unassigned pool. Admins pass always.
func canTouchReport(claims *Claims, report *domain.Report) bool {
	if claims.Role == domain.RoleAdmin {
		return true
	}
	return report.AssignedTo == "" || report.AssignedTo == claims.Username
}

type changeStatusRequest struct {
	Status             string `json:"status"`
	DelayJustification string `json:"delayJustification"`
}

func (s *Server) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r)
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "no autorizado")
		return
	}

	var req changeStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "solicitud inválida")
		return
	}

	to := domain.Status(req.Status)
	if !domain.ValidStatus(to) {
		respondError(w, http.StatusBadRequest, "estado desconocido")
		return
	}

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

	if !canTouchReport(claims, report) {
		respondError(w, http.StatusForbidden, "reporte asignado a otro técnico")
		return
	}

	fields, err := domain.ChangeStatus(report, to, claims.Username, strings.TrimSpace(req.DelayJustification), time.Now())
	if err != nil {
		switch {
		case err == domain.ErrJustificationRequired:
			respondError(w, http.StatusUnprocessableEntity, "se requiere justificación del retraso")
		default:
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	if len(fields) > 0 {
		if err := s.repos.Reports.UpdateFields(r.Context(), report.ID, fields); err != nil {
			log.Printf("Error updating report %d: %v", report.ID, err)
			respondError(w, http.StatusInternalServerError, "error al actualizar reporte")
			return
		}
		s.hub.Notify()
	}

	if to == domain.StatusCompleted && s.notifier != nil {
		go func(rep domain.Report) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.notifier.ReportCompleted(ctx, &rep)
		}(*report)
	}

	respondJSON(w, http.StatusOK, newReportView(*report, time.Now()))
}

type workLogRequest struct {
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Description string          `json:"description"`
	Cost        json.RawMessage `json:"cost"`
}

// parseCost accepts the cost as either a JSON number or a numeric
// string, anything else counts as zero.
func parseCost(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return domain.SanitizeCost(n, nil)
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		v, convErr := strconv.ParseFloat(strings.TrimSpace(str), 64)
		return domain.SanitizeCost(v, convErr)
	}
	return 0
}

func (s *Server) handleAppendWorkLog(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r)
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "no autorizado")
		return
	}

	var req workLogRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "solicitud inválida")
		return
	}

	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.Description = strings.TrimSpace(req.Description)
	if req.Date == "" || req.Time == "" || req.Description == "" {
		respondError(w, http.StatusBadRequest, "fecha, hora y descripción son obligatorias")
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		respondError(w, http.StatusBadRequest, "fecha inválida, formato esperado AAAA-MM-DD")
		return
	}

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

	if !canTouchReport(claims, report) {
		respondError(w, http.StatusForbidden, "reporte asignado a otro técnico")
		return
	}

	entry := &domain.WorkLogEntry{
		ReportID:    report.ID,
		Date:        req.Date,
		Time:        req.Time,
		Description: req.Description,
		Cost:        parseCost(req.Cost),
	}
	if err := s.repos.Reports.AppendWorkLog(r.Context(), entry); err != nil {
		log.Printf("Error appending work log to %d: %v", report.ID, err)
		respondError(w, http.StatusInternalServerError, "error al registrar avance")
		return
	}
	s.hub.Notify()

	respondJSON(w, http.StatusCreated, entry)
}
