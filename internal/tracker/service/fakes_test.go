package service_test

import (
	"context"
	"sort"
	"sync"

	"github.com/spf13/afero"
	"github.com/tfshrms/worktracker/internal/tracker/domain"
	"github.com/tfshrms/worktracker/internal/tracker/events"
	"github.com/tfshrms/worktracker/internal/tracker/repository"
	"github.com/tfshrms/worktracker/pkg/database"
	"github.com/tfshrms/worktracker/pkg/errors"
	"github.com/tfshrms/worktracker/pkg/filestore"
)

const (
	uploadRoot = "/srv/uploads"
	publicBase = "https://files.example.com/uploads"

	// 1x1 transparent png
	pngPayload = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="
)

// ============================================================================
// TRANSACTIONS
// ============================================================================

type passThroughTx struct {
	calls int
}

func (tx *passThroughTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	return fn(ctx)
}

// ============================================================================
// EMPLOYEES AND TASKS
// ============================================================================

type fakeEmployees struct {
	byID map[int64]*repository.Employee
	err  error
}

func newFakeEmployees(emps ...*repository.Employee) *fakeEmployees {
	f := &fakeEmployees{byID: make(map[int64]*repository.Employee)}
	for _, e := range emps {
		f.byID[e.ID] = e
	}
	return f
}

func (f *fakeEmployees) GetByID(_ context.Context, id int64) (*repository.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("User")
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEmployees) GetEligible(ctx context.Context, id int64) (*repository.Employee, error) {
	e, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.Eligible() {
		return nil, errors.NotFound("User")
	}
	return e, nil
}

func (f *fakeEmployees) ListEligible(_ context.Context) ([]domain.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Employee
	for _, e := range f.byID {
		if e.Eligible() {
			out = append(out, e.ToDomain())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeEmployees) RoleOf(_ context.Context, id int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	e, ok := f.byID[id]
	if !ok || !e.Eligible() {
		return "", nil
	}
	return e.RoleName.String, nil
}

type fakeTasks map[int64]*repository.Task

func (f fakeTasks) GetByID(_ context.Context, id int64) (*repository.Task, error) {
	t, ok := f[id]
	if !ok {
		return nil, errors.NotFound("Task")
	}
	return t, nil
}

// ============================================================================
// ENTRIES
// ============================================================================

type fakeEntries struct {
	mu        sync.Mutex
	rows      map[int64]*repository.EntryView
	nextID    int64
	filters   []repository.EntryFilter
	createErr error
	listErr   error
}

func newFakeEntries() *fakeEntries {
	return &fakeEntries{rows: make(map[int64]*repository.EntryView)}
}

// seed stores v as-is, assigning an id when missing.
func (f *fakeEntries) seed(v repository.EntryView) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v.ID == 0 {
		f.nextID++
		v.ID = f.nextID
	} else if v.ID > f.nextID {
		f.nextID = v.ID
	}
	f.rows[v.ID] = &v
	return v.ID
}

func (f *fakeEntries) Create(_ context.Context, e *repository.Entry) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = f.nextID
	e.IsActive = true
	f.rows[e.ID] = &repository.EntryView{Entry: *e}
	return nil
}

func (f *fakeEntries) GetByID(_ context.Context, id int64) (*repository.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.rows[id]
	if !ok {
		return nil, errors.NotFound("Tracker")
	}
	e := v.Entry
	return &e, nil
}

func (f *fakeEntries) Update(_ context.Context, e *repository.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.rows[e.ID]
	if !ok {
		return errors.NotFound("Tracker")
	}
	v.Entry = *e
	return nil
}

func (f *fakeEntries) Deactivate(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.rows[id]
	if !ok {
		return errors.NotFound("Tracker")
	}
	v.IsActive = false
	return nil
}

func (f *fakeEntries) List(_ context.Context, filter repository.EntryFilter) ([]repository.EntryView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	if f.listErr != nil {
		return nil, f.listErr
	}

	var ids map[int64]bool
	if filter.EmployeeIDs != nil {
		ids = make(map[int64]bool, len(filter.EmployeeIDs))
		for _, id := range filter.EmployeeIDs {
			ids[id] = true
		}
	}

	var out []repository.EntryView
	for _, v := range f.rows {
		switch {
		case ids != nil && !ids[v.EmployeeID]:
		case filter.TeamID != nil && (v.TeamID == nil || *v.TeamID != *filter.TeamID):
		case filter.ProjectID != nil && v.ProjectID != *filter.ProjectID:
		case filter.TaskID != nil && v.TaskID != *filter.TaskID:
		case filter.From != nil && v.DateTime.Before(*filter.From):
		case filter.Before != nil && !v.DateTime.Before(*filter.Before):
		case filter.Active != nil && v.IsActive != *filter.Active:
		default:
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateTime.Equal(out[j].DateTime) {
			return out[i].DateTime.After(out[j].DateTime)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeEntries) stored(id int64) repository.EntryView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.rows[id]
}

// ============================================================================
// MONTHLY TARGETS
// ============================================================================

type fakeTargets struct {
	mu        sync.Mutex
	rows      map[int64]*repository.MonthlyTarget
	nextID    int64
	summaries []repository.MonthlyTargetSummary
	lastQuery repository.TargetFilter
}

func newFakeTargets() *fakeTargets {
	return &fakeTargets{rows: make(map[int64]*repository.MonthlyTarget)}
}

func (f *fakeTargets) duplicate(t *repository.MonthlyTarget) bool {
	for _, r := range f.rows {
		if r.ID != t.ID && r.IsActive && r.EmployeeID == t.EmployeeID && r.MonthYear == t.MonthYear {
			return true
		}
	}
	return false
}

func (f *fakeTargets) Create(_ context.Context, t *repository.MonthlyTarget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.duplicate(t) {
		return errors.Conflict(database.MonthlyTargetExistsMessage)
	}
	f.nextID++
	t.ID = f.nextID
	t.IsActive = true
	cp := *t
	f.rows[t.ID] = &cp
	return nil
}

func (f *fakeTargets) GetActive(_ context.Context, id int64) (*repository.MonthlyTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[id]
	if !ok || !t.IsActive {
		return nil, errors.NotFoundMessage("Active record not found")
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTargets) Update(_ context.Context, t *repository.MonthlyTarget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.rows[t.ID]
	if !ok || !cur.IsActive {
		return errors.NotFoundMessage("Active record not found")
	}
	if f.duplicate(t) {
		return errors.Conflict(database.MonthlyTargetExistsMessage)
	}
	cp := *t
	f.rows[t.ID] = &cp
	return nil
}

func (f *fakeTargets) Deactivate(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[id]
	if !ok || !t.IsActive {
		return errors.NotFoundMessage("Active record not found")
	}
	t.IsActive = false
	return nil
}

func (f *fakeTargets) ActiveForMonth(_ context.Context, employeeIDs []int64, month string) (map[int64]domain.Target, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[int64]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		want[id] = true
	}
	out := make(map[int64]domain.Target)
	for _, t := range f.rows {
		if t.IsActive && t.MonthYear == month && want[t.EmployeeID] {
			out[t.EmployeeID] = t.ToDomain()
		}
	}
	return out, nil
}

func (f *fakeTargets) ListSummaries(_ context.Context, filter repository.TargetFilter) ([]repository.MonthlyTargetSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = filter
	out := make([]repository.MonthlyTargetSummary, len(f.summaries))
	copy(out, f.summaries)
	return out, nil
}

func (f *fakeTargets) GetSummary(_ context.Context, id int64) (*repository.MonthlyTargetSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.summaries {
		if s.ID == id {
			cp := s
			return &cp, nil
		}
	}
	return nil, errors.NotFoundMessage("Record not found")
}

// ============================================================================
// EVENTS AND FILES
// ============================================================================

type apiCall struct {
	Operation  string
	EmployeeID int64
	Device     events.Device
}

type recordingPublisher struct {
	mu       sync.Mutex
	changes  []string
	apiCalls []apiCall
}

func (p *recordingPublisher) record(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, name)
}

func (p *recordingPublisher) PublishEntryCreated(context.Context, *repository.Entry) {
	p.record("entry.created")
}

func (p *recordingPublisher) PublishEntryUpdated(context.Context, *repository.Entry) {
	p.record("entry.updated")
}

func (p *recordingPublisher) PublishEntryDeleted(context.Context, *repository.Entry) {
	p.record("entry.deleted")
}

func (p *recordingPublisher) PublishTargetCreated(context.Context, *repository.MonthlyTarget) {
	p.record("target.created")
}

func (p *recordingPublisher) PublishTargetUpdated(context.Context, *repository.MonthlyTarget) {
	p.record("target.updated")
}

func (p *recordingPublisher) PublishTargetDeleted(context.Context, *repository.MonthlyTarget) {
	p.record("target.deleted")
}

func (p *recordingPublisher) PublishAPICalled(_ context.Context, operation string, employeeID int64, device events.Device) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.apiCalls = append(p.apiCalls, apiCall{Operation: operation, EmployeeID: employeeID, Device: device})
}

func newMemFiles() (*filestore.Store, afero.Fs) {
	fs := afero.NewMemMapFs()
	return filestore.New(fs, uploadRoot, publicBase), fs
}

func countFiles(fs afero.Fs, dir string) int {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return 0
	}
	return len(infos)
}
