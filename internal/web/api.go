package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/meetplan/internal/domain/meeting"
	"github.com/example/meetplan/internal/infrastructure/calendarfile"
	"github.com/example/meetplan/internal/internaltypes"
)

type proposeRequest struct {
	Calendars []calendarfile.Document `json:"calendars"`
	// Duration is the bracketed form ("[00:30]"); Minutes is used when it is empty.
	Duration string `json:"duration"`
	Minutes  int    `json:"minutes"`
}

type freeResponse struct {
	WorkingHours meeting.WorkingHours `json:"working_hours"`
	Free         []meeting.Period     `json:"free"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleAPIPropose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req proposeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Calendars) != 2 {
		s.writeError(w, r, fmt.Errorf("%w: exactly two calendars are required, got %d", internaltypes.ErrInvalidCalendar, len(req.Calendars)))
		return
	}
	minutes := req.Minutes
	if req.Duration != "" {
		m, err := calendarfile.ParseDuration(req.Duration)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		minutes = m
	}

	cals := make([]*meeting.Calendar, 0, 2)
	for i, d := range req.Calendars {
		c, err := d.Calendar(s.CalendarOptions...)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("calendars[%d]: %w", i, err))
			return
		}
		cals = append(cals, c)
	}

	res, err := s.Propose.Execute(r.Context(), cals[0], cals[1], minutes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAPIFree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var doc calendarfile.Document
	if err := decodeBody(w, r, &doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := doc.Calendar(s.CalendarOptions...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	free, err := s.Free.Execute(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, freeResponse{WorkingHours: c.WorkingHours(), Free: free})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: request body: %w", internaltypes.ErrInvalidCalendar, err)
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, new(*http.MaxBytesError)):
		status = http.StatusRequestEntityTooLarge
	case isBadInput(err):
		status = http.StatusBadRequest
	case errors.Is(err, internaltypes.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	reqID := RequestIDFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger().Error("request failed", zap.Error(err), zap.String("request_id", reqID))
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), RequestID: reqID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
