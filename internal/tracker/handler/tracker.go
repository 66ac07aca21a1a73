package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/tfshrms/worktracker/internal/tracker/service"
	"github.com/tfshrms/worktracker/pkg/auth"
	"github.com/tfshrms/worktracker/pkg/httputil"
	"github.com/tfshrms/worktracker/pkg/logger"
)

// TrackerHandler handles tracker entry endpoints
type TrackerHandler struct {
	trackers *service.TrackerService
	reports  *service.ReportService
	logger   *logger.Logger
}

// NewTrackerHandler creates a new tracker handler
func NewTrackerHandler(trackers *service.TrackerService, reports *service.ReportService, log *logger.Logger) *TrackerHandler {
	return &TrackerHandler{
		trackers: trackers,
		reports:  reports,
		logger:   log,
	}
}

// RegisterRoutes mounts the tracker endpoints on r.
func (h *TrackerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/trackers", func(r chi.Router) {
		r.Get("/", h.View)
		r.Post("/", h.Create)
		r.Get("/daily", h.ViewDaily)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// CreateTrackerRequest is the body of POST /trackers. tracker_file is an
// optional base64 data URL.
type CreateTrackerRequest struct {
	UserID       *int64           `json:"user_id" validate:"required"`
	ProjectID    *int64           `json:"project_id" validate:"required"`
	TaskID       *int64           `json:"task_id" validate:"required"`
	Production   *decimal.Decimal `json:"production" validate:"required"`
	TenureTarget *decimal.Decimal `json:"tenure_target"`
	TrackerFile  string           `json:"tracker_file"`
	DeviceFields
}

// UpdateTrackerRequest is the body of PUT /trackers/{id}.
type UpdateTrackerRequest struct {
	Production  *decimal.Decimal `json:"production"`
	BaseTarget  *decimal.Decimal `json:"base_target"`
	TrackerFile string           `json:"tracker_file"`
	DeviceFields
}

// Create records a production entry
// POST /trackers
func (h *TrackerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTrackerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	entry, err := h.trackers.Create(r.Context(), service.CreateEntryInput{
		EmployeeID:   *req.UserID,
		ProjectID:    *req.ProjectID,
		TaskID:       *req.TaskID,
		Production:   *req.Production,
		TenureTarget: req.TenureTarget,
		TrackerFile:  req.TrackerFile,
		Device:       device(r, req.DeviceFields),
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, "Tracker added successfully", map[string]int64{"tracker_id": entry.ID})
}

// Update changes an entry and recomputes its targets
// PUT /trackers/{id}
func (h *TrackerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req UpdateTrackerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if _, err := h.trackers.Update(r.Context(), service.UpdateEntryInput{
		ID:          id,
		Production:  req.Production,
		BaseTarget:  req.BaseTarget,
		TrackerFile: req.TrackerFile,
		Device:      device(r, req.DeviceFields),
	}); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Message(w, http.StatusOK, "Tracker updated successfully", nil)
}

// Delete soft deletes an entry
// DELETE /trackers/{id}
func (h *TrackerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.trackers.Delete(r.Context(), id, device(r, DeviceFields{})); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Message(w, http.StatusOK, "Tracker deleted successfully", nil)
}

// View lists visible entries with the month summary
// GET /trackers
func (h *TrackerHandler) View(w http.ResponseWriter, r *http.Request) {
	q, err := reportQuery(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	report, err := h.reports.View(r.Context(), q)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Message(w, http.StatusOK, "Trackers fetched successfully", report)
}

// ViewDaily returns the per-day rollup
// GET /trackers/daily
func (h *TrackerHandler) ViewDaily(w http.ResponseWriter, r *http.Request) {
	q, err := reportQuery(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	report, err := h.reports.ViewDaily(r.Context(), q)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Message(w, http.StatusOK, "Trackers fetched successfully", report)
}

func reportQuery(r *http.Request) (service.ReportQuery, error) {
	viewerID, _ := auth.ViewerID(r)
	values := r.URL.Query()

	q := service.ReportQuery{
		ViewerID:  viewerID,
		MonthYear: values.Get("month_year"),
		DateFrom:  values.Get("date_from"),
		DateTo:    values.Get("date_to"),
		Device:    device(r, DeviceFields{}),
	}

	var err error
	if q.TeamID, err = queryInt64(r, "team_id"); err != nil {
		return q, err
	}
	if q.EmployeeID, err = queryInt64(r, "user_id"); err != nil {
		return q, err
	}
	if q.ProjectID, err = queryInt64(r, "project_id"); err != nil {
		return q, err
	}
	if q.TaskID, err = queryInt64(r, "task_id"); err != nil {
		return q, err
	}
	return q, nil
}
