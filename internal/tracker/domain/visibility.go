package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultElevatedRoles see every employee regardless of hierarchy.
var DefaultElevatedRoles = []string{"admin", "super admin"}

// Employee is an employee eligible for tracking (active and not deleted),
// with its hierarchy fields already parsed into id lists.
type Employee struct {
	ID              int64
	Name            string
	TeamID          *int64
	RoleName        string
	TenureFactor    decimal.Decimal
	ProjectManagers []string
	AsstManagers    []string
	QAs             []string
}

// ReportsTo reports whether viewerID appears in any of the employee's
// hierarchy lists.
func (e Employee) ReportsTo(viewerID string) bool {
	for _, list := range [][]string{e.ProjectManagers, e.AsstManagers, e.QAs} {
		for _, id := range list {
			if id == viewerID {
				return true
			}
		}
	}
	return false
}

// ParseIDList parses a hierarchy field. The column holds either a single id
// ("111") or a bracketed list ("[111, 113]"); both come back as a list.
func ParseIDList(raw string) []string {
	cleaned := strings.NewReplacer("[", "", "]", "", " ", "").Replace(raw)
	if cleaned == "" {
		return nil
	}

	var ids []string
	for _, part := range strings.Split(cleaned, ",") {
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

// Viewer is the employee asking for a report.
type Viewer struct {
	ID   int64
	Role string
}

// Visibility is the set of employees a viewer may see. The zero value sees nobody.
type Visibility struct {
	All bool
	IDs map[int64]struct{}
}

// Allows reports whether the employee is visible.
func (v Visibility) Allows(employeeID int64) bool {
	if v.All {
		return true
	}
	_, ok := v.IDs[employeeID]
	return ok
}

// Empty reports whether nobody is visible.
func (v Visibility) Empty() bool {
	return !v.All && len(v.IDs) == 0
}

// VisibilityResolver decides visibility from the org hierarchy.
type VisibilityResolver struct {
	elevated map[string]struct{}
}

// NewVisibilityResolver returns a resolver treating roles as elevated.
// Role names are compared trimmed and lowercased.
func NewVisibilityResolver(roles []string) *VisibilityResolver {
	if len(roles) == 0 {
		roles = DefaultElevatedRoles
	}
	r := &VisibilityResolver{elevated: make(map[string]struct{}, len(roles))}
	for _, role := range roles {
		r.elevated[normalizeRole(role)] = struct{}{}
	}
	return r
}

// IsElevated reports whether role bypasses hierarchy filtering.
func (r *VisibilityResolver) IsElevated(role string) bool {
	_, ok := r.elevated[normalizeRole(role)]
	return ok
}

// Resolve returns who viewer may see among roster, the eligible employees.
// A viewer without a role sees nobody. An elevated viewer sees everybody.
// Otherwise the viewer sees itself plus every employee listing the viewer as
// project manager, assistant manager or QA.
func (r *VisibilityResolver) Resolve(viewer Viewer, roster []Employee) Visibility {
	if normalizeRole(viewer.Role) == "" {
		return Visibility{}
	}
	if r.IsElevated(viewer.Role) {
		return Visibility{All: true}
	}

	viewerID := strconv.FormatInt(viewer.ID, 10)
	ids := make(map[int64]struct{})
	for _, e := range roster {
		if e.ID == viewer.ID || e.ReportsTo(viewerID) {
			ids[e.ID] = struct{}{}
		}
	}
	return Visibility{IDs: ids}
}

// Scope narrows roster to the employees visible to v and matching the
// optional employee and team filters.
func Scope(v Visibility, roster []Employee, employeeID, teamID *int64) []Employee {
	var out []Employee
	for _, e := range roster {
		if !v.Allows(e.ID) {
			continue
		}
		if employeeID != nil && e.ID != *employeeID {
			continue
		}
		if teamID != nil && (e.TeamID == nil || *e.TeamID != *teamID) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
