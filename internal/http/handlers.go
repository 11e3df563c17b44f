package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tripcal/internal/calendar"
	"tripcal/internal/core"
	"tripcal/internal/ics"
	applog "tripcal/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if err := s.svc.Ready(ctx); err != nil {
		checks["document"] = fmt.Sprintf("failed: %v", err)
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["document"] = "ok"
	}

	if s.opts.Ping != nil {
		if err := s.opts.Ping(ctx); err != nil {
			checks["overlay_backend"] = fmt.Sprintf("failed: %v", err)
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["overlay_backend"] = "ok"
		}
	}

	checks["rate_limiter"] = s.limiter.GetMetrics()
	checks["security"] = s.detector.GetMetrics()
	checks["requests"] = s.tracer.GetMetrics()

	NewJSONResponse().Status(httpStatus).Body(map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	today, err := ParseToday(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	days, err := s.svc.Calendar(r.Context(), today)
	if err != nil {
		s.writeServiceError(w, r, "calendar", err)
		return
	}
	NewJSONResponse().Body(days).Write(w)
}

func (s *Server) handleCalendarICS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, _, err := s.svc.Document(ctx)
	if err != nil {
		s.writeServiceError(w, r, "calendar feed", err)
		return
	}
	days, err := s.svc.Calendar(ctx, "")
	if err != nil {
		s.writeServiceError(w, r, "calendar feed", err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="trip.ics"`)
	if err := ics.Write(w, days, ics.Options{Name: doc.TripName, Stamp: s.now()}); err != nil {
		applog.FromContext(ctx).OperationFailed(ctx, "Failed to write calendar feed", "ics", err)
	}
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	override, err := ParseBudgetOverride(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	summary, err := s.svc.Budget(r.Context(), override)
	if err != nil {
		s.writeServiceError(w, r, "budget", err)
		return
	}
	NewJSONResponse().Body(summary).Write(w)
}

func (s *Server) handleAddActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dateKey := r.PathValue("date")
	if _, ok := calendar.ParseDay(dateKey); !ok {
		BadRequestError("invalid date: want YYYY-MM-DD").Write(w)
		return
	}

	item, err := ParseActivityRequest(w, r)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	created, err := s.svc.AddActivity(ctx, dateKey, item)
	if err != nil {
		s.writeServiceError(w, r, "add activity", err)
		return
	}

	applog.FromContext(ctx).ActivityChanged(ctx, applog.OpCreate, dateKey, created.ID, created.Name)
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/days/"+dateKey+"/activities/"+created.ID).
		Body(created).
		Write(w)
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dateKey, id := r.PathValue("date"), sanitizeInput(r.PathValue("id"))
	if _, ok := calendar.ParseDay(dateKey); !ok {
		BadRequestError("invalid date: want YYYY-MM-DD").Write(w)
		return
	}

	if err := s.svc.DeleteActivity(ctx, dateKey, id); err != nil {
		s.writeServiceError(w, r, "delete activity", err)
		return
	}

	applog.FromContext(ctx).ActivityChanged(ctx, applog.OpDelete, dateKey, id, "")
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps service errors to status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, what string, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidDate):
		BadRequestError(err.Error()).Write(w)
	case errors.Is(err, core.ErrEmptyName), errors.Is(err, core.ErrInvalidAmount):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError(err.Error()).Write(w)
	case errors.Is(err, core.ErrMissingTrips):
		applog.FromContext(r.Context()).OperationFailed(r.Context(), "Trip document unusable", what, err)
		ServiceUnavailableError("trip document unavailable").Write(w)
	default:
		applog.FromContext(r.Context()).OperationFailed(r.Context(), "Request failed", what, err)
		InternalServerError(what + " failed").Write(w)
	}
}
