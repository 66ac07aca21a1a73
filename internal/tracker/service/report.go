package service

import (
	"context"
	"strings"
	"time"

	"github.com/tfshrms/worktracker/internal/tracker/domain"
	"github.com/tfshrms/worktracker/internal/tracker/events"
	"github.com/tfshrms/worktracker/internal/tracker/repository"
	"github.com/tfshrms/worktracker/pkg/errors"
	"github.com/tfshrms/worktracker/pkg/logger"
)

const dateTimeLayout = "2006-01-02 15:04:05"

// ReportQuery selects the entries a report covers. ViewerID 0 means the
// caller did not identify itself.
type ReportQuery struct {
	ViewerID   int64
	MonthYear  string
	TeamID     *int64
	EmployeeID *int64
	ProjectID  *int64
	TaskID     *int64
	DateFrom   string
	DateTo     string
	Device     events.Device
}

// TrackerReport is the entry listing with its monthly summary.
type TrackerReport struct {
	Count        int                     `json:"count"`
	MonthYear    string                  `json:"month_year"`
	Trackers     []repository.EntryView  `json:"trackers"`
	MonthSummary []domain.MonthlySummary `json:"month_summary"`
}

// DailyReport is the per-day rollup. MonthSummary is always empty.
type DailyReport struct {
	Count        int                     `json:"count"`
	MonthYear    string                  `json:"month_year"`
	Trackers     []domain.DailyRow       `json:"trackers"`
	MonthSummary []domain.MonthlySummary `json:"month_summary"`
}

// ReportService builds tracker reports scoped to what the viewer may see.
type ReportService struct {
	visibility *VisibilityService
	entries    EntryStore
	targets    TargetStore
	files      FileStore
	publisher  EventPublisher
	logger     *logger.Logger
	loc        *time.Location
	now        func() time.Time
}

// NewReportService creates a new report service. loc decides which calendar
// day and month an entry belongs to.
func NewReportService(
	visibility *VisibilityService,
	entries EntryStore,
	targets TargetStore,
	files FileStore,
	publisher EventPublisher,
	loc *time.Location,
	log *logger.Logger,
) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		visibility: visibility,
		entries:    entries,
		targets:    targets,
		files:      files,
		publisher:  publisher,
		logger:     log,
		loc:        loc,
		now:        time.Now,
	}
}

// scope is a resolved report request.
type scope struct {
	month     string
	first     time.Time
	hasMonth  bool
	employees []domain.Employee
	filter    repository.EntryFilter
}

func (s *ReportService) resolve(ctx context.Context, q ReportQuery) (*scope, error) {
	if q.ViewerID == 0 {
		return nil, errors.BadRequest("logged_in_user_id is required")
	}

	from, err := parseBound("date_from", q.DateFrom, false, s.loc)
	if err != nil {
		return nil, err
	}
	before, err := parseBound("date_to", q.DateTo, true, s.loc)
	if err != nil {
		return nil, err
	}

	visible, roster, err := s.visibility.Resolve(ctx, q.ViewerID)
	if err != nil {
		return nil, err
	}

	sc := &scope{month: domain.ResolveMonth(q.MonthYear, s.now().In(s.loc))}
	sc.employees = domain.Scope(visible, roster, q.EmployeeID, q.TeamID)

	ids := make([]int64, 0, len(sc.employees))
	for _, e := range sc.employees {
		ids = append(ids, e.ID)
	}
	active := true
	sc.filter = repository.EntryFilter{
		EmployeeIDs: ids,
		ProjectID:   q.ProjectID,
		TaskID:      q.TaskID,
		Active:      &active,
		From:        from,
		Before:      before,
	}

	// An unparseable month drops the period filter but is still echoed back.
	if first, ok := domain.ParseMonth(sc.month); ok {
		sc.first, sc.hasMonth = first, true
		start, end := domain.MonthBounds(first, s.loc)
		if sc.filter.From == nil || sc.filter.From.Before(start) {
			sc.filter.From = &start
		}
		if sc.filter.Before == nil || sc.filter.Before.After(end) {
			sc.filter.Before = &end
		}
	}
	return sc, nil
}

// View lists the visible entries of the month with a per-employee summary.
func (s *ReportService) View(ctx context.Context, q ReportQuery) (*TrackerReport, error) {
	sc, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.entries.List(ctx, sc.filter)
	if err != nil {
		return nil, storeFailure(s.logger, err, "failed to fetch trackers")
	}
	for i := range rows {
		rows[i].BillableHours = domain.BillableHours(rows[i].Production, rows[i].TenureTarget)
		if rows[i].TrackerFile != nil {
			rows[i].TrackerFile = s.files.URL(TrackerFilesFolder, *rows[i].TrackerFile)
		}
	}

	summary, err := s.monthSummary(ctx, sc)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishAPICalled(ctx, events.OpViewTrackers, q.ViewerID, q.Device)
	return &TrackerReport{
		Count:        len(rows),
		MonthYear:    sc.month,
		Trackers:     rows,
		MonthSummary: summary,
	}, nil
}

// monthSummary aggregates the whole month for the in-scope employees. The
// listing's project, task and date filters do not apply here.
func (s *ReportService) monthSummary(ctx context.Context, sc *scope) ([]domain.MonthlySummary, error) {
	if len(sc.employees) == 0 {
		return []domain.MonthlySummary{}, nil
	}

	ids := sc.filter.EmployeeIDs
	var (
		window  domain.MonthWindow
		facts   []domain.EntryFact
		targets = map[int64]domain.Target{}
	)
	if sc.hasMonth {
		window = domain.WindowFor(sc.first, domain.CivilDate(s.now(), s.loc))

		start, end := domain.MonthBounds(sc.first, s.loc)
		active := true
		rows, err := s.entries.List(ctx, repository.EntryFilter{
			EmployeeIDs: ids,
			From:        &start,
			Before:      &end,
			Active:      &active,
		})
		if err != nil {
			return nil, storeFailure(s.logger, err, "failed to fetch month entries")
		}
		facts = s.facts(rows)

		targets, err = s.targets.ActiveForMonth(ctx, ids, sc.month)
		if err != nil {
			return nil, storeFailure(s.logger, err, "failed to fetch monthly targets")
		}
	}

	return domain.SummarizeMonth(sc.month, window, sc.employees, targets, facts), nil
}

// ViewDaily rolls the visible entries up per employee and day.
func (s *ReportService) ViewDaily(ctx context.Context, q ReportQuery) (*DailyReport, error) {
	sc, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.entries.List(ctx, sc.filter)
	if err != nil {
		return nil, storeFailure(s.logger, err, "failed to fetch daily trackers")
	}

	targets := map[int64]domain.Target{}
	if len(sc.employees) > 0 {
		targets, err = s.targets.ActiveForMonth(ctx, sc.filter.EmployeeIDs, sc.month)
		if err != nil {
			return nil, storeFailure(s.logger, err, "failed to fetch monthly targets")
		}
	}

	days := domain.SummarizeDays(sc.month, sc.employees, targets, s.facts(rows))

	s.publisher.PublishAPICalled(ctx, events.OpViewDaily, q.ViewerID, q.Device)
	return &DailyReport{
		Count:        len(days),
		MonthYear:    sc.month,
		Trackers:     days,
		MonthSummary: []domain.MonthlySummary{},
	}, nil
}

func (s *ReportService) facts(rows []repository.EntryView) []domain.EntryFact {
	out := make([]domain.EntryFact, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.EntryFact{
			EmployeeID:    r.EmployeeID,
			Date:          domain.CivilDate(r.DateTime, s.loc),
			Production:    r.Production,
			BillableHours: domain.BillableHours(r.Production, r.TenureTarget),
			Active:        r.IsActive,
		})
	}
	return out
}

// parseBound reads a date or date-time filter. A bare date covers the whole
// day. Upper bounds are returned exclusive.
func parseBound(field, raw string, upper bool, loc *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if len(raw) == len(domain.DateLayout) {
		d, err := time.ParseInLocation(domain.DateLayout, raw, loc)
		if err != nil {
			return nil, errors.Invalid(field, "must be YYYY-MM-DD or YYYY-MM-DD HH:MM:SS")
		}
		if upper {
			d = d.AddDate(0, 0, 1)
		}
		return &d, nil
	}

	t, err := time.ParseInLocation(dateTimeLayout, raw, loc)
	if err != nil {
		return nil, errors.Invalid(field, "must be YYYY-MM-DD or YYYY-MM-DD HH:MM:SS")
	}
	if upper {
		t = t.Add(time.Second)
	}
	return &t, nil
}
