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

// MonthlyTargetHandler handles monthly target endpoints
type MonthlyTargetHandler struct {
	service *service.MonthlyTargetService
	logger  *logger.Logger
}

// NewMonthlyTargetHandler creates a new monthly target handler
func NewMonthlyTargetHandler(svc *service.MonthlyTargetService, log *logger.Logger) *MonthlyTargetHandler {
	return &MonthlyTargetHandler{
		service: svc,
		logger:  log,
	}
}

// RegisterRoutes mounts the monthly target endpoints on r.
func (h *MonthlyTargetHandler) RegisterRoutes(r chi.Router) {
	r.Route("/monthly-targets", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// AddTargetRequest is the body of POST /monthly-targets.
type AddTargetRequest struct {
	UserID             *int64           `json:"user_id" validate:"required"`
	MonthYear          string           `json:"month_year" validate:"required"`
	MonthlyTarget      *decimal.Decimal `json:"monthly_target" validate:"required"`
	ExtraAssignedHours *decimal.Decimal `json:"extra_assigned_hours"`
	WorkingDays        *int             `json:"working_days" validate:"omitempty,gte=0"`
	CreatedDate        string           `json:"created_date"`
	DeviceFields
}

// UpdateTargetRequest is the body of PATCH /monthly-targets/{id}. Omitted
// fields keep their stored value.
type UpdateTargetRequest struct {
	UserID             *int64           `json:"user_id"`
	MonthYear          *string          `json:"month_year"`
	MonthlyTarget      *decimal.Decimal `json:"monthly_target"`
	ExtraAssignedHours *decimal.Decimal `json:"extra_assigned_hours"`
	WorkingDays        *int             `json:"working_days" validate:"omitempty,gte=0"`
	DeviceFields
}

// Add creates a monthly target
// POST /monthly-targets
func (h *MonthlyTargetHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddTargetRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	createdAt, err := parseTimestamp("created_date", req.CreatedDate)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	in := service.AddTargetInput{
		EmployeeID:         *req.UserID,
		MonthYear:          req.MonthYear,
		MonthlyTarget:      *req.MonthlyTarget,
		ExtraAssignedHours: req.ExtraAssignedHours,
		CreatedAt:          createdAt,
		Device:             device(r, req.DeviceFields),
	}
	if req.WorkingDays != nil {
		in.WorkingDays = *req.WorkingDays
	}

	target, err := h.service.Add(r.Context(), in)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, "User monthly target added successfully", map[string]int64{"user_monthly_tracker_id": target.ID})
}

// Update applies a partial change
// PATCH /monthly-targets/{id}
func (h *MonthlyTargetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req UpdateTargetRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	if _, err := h.service.Update(r.Context(), service.UpdateTargetInput{
		ID:                 id,
		EmployeeID:         req.UserID,
		MonthYear:          req.MonthYear,
		MonthlyTarget:      req.MonthlyTarget,
		ExtraAssignedHours: req.ExtraAssignedHours,
		WorkingDays:        req.WorkingDays,
		Device:             device(r, req.DeviceFields),
	}); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Message(w, http.StatusOK, "User monthly target updated successfully", nil)
}

// Delete soft deletes a target
// DELETE /monthly-targets/{id}
func (h *MonthlyTargetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id, device(r, DeviceFields{})); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Message(w, http.StatusOK, "User monthly target deleted successfully", nil)
}

// List lists active targets
// GET /monthly-targets
func (h *MonthlyTargetHandler) List(w http.ResponseWriter, r *http.Request) {
	employeeID, err := queryInt64(r, "user_id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	viewerID, _ := auth.ViewerID(r)
	rows, err := h.service.List(r.Context(), service.TargetQuery{
		ViewerID:   viewerID,
		EmployeeID: employeeID,
		MonthYear:  r.URL.Query().Get("month_year"),
		Device:     device(r, DeviceFields{}),
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Message(w, http.StatusOK, "User monthly targets fetched successfully", rows)
}

// Get returns one active target
// GET /monthly-targets/{id}
func (h *MonthlyTargetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	viewerID, _ := auth.ViewerID(r)
	row, err := h.service.View(r.Context(), id, viewerID, device(r, DeviceFields{}))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Message(w, http.StatusOK, "User monthly target fetched successfully", row)
}
