package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// handleWatchReports streams the caller's report queue as server-sent
// events. A full snapshot goes out on connect and again every time any
// report changes somewhere in the system. Heartbeat comments keep
// proxies from cutting the stream.
func (s *Server) handleWatchReports(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r)
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "no autorizado")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming no soportado")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	updates, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	if err := s.writeSnapshot(w, r, claims); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-updates:
			if err := s.writeSnapshot(w, r, claims); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) writeSnapshot(w http.ResponseWriter, r *http.Request, claims *Claims) error {
	reports, err := s.repos.Reports.List(r.Context(), queueFilter(r, claims))
	if err != nil {
		log.Printf("Error loading snapshot for watcher %s: %v", claims.Username, err)
		return err
	}

	payload, err := json.Marshal(newReportViews(reports, time.Now()))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "event: reports\ndata: %s\n\n", payload)
	return err
}
