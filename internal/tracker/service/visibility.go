package service

import (
	"context"

	"github.com/tfshrms/worktracker/internal/tracker/domain"
	"github.com/tfshrms/worktracker/pkg/logger"
)

// VisibilityService resolves which employees a viewer may see.
type VisibilityService struct {
	employees EmployeeStore
	resolver  *domain.VisibilityResolver
	logger    *logger.Logger
}

// NewVisibilityService creates a new visibility service
func NewVisibilityService(employees EmployeeStore, resolver *domain.VisibilityResolver, log *logger.Logger) *VisibilityService {
	return &VisibilityService{
		employees: employees,
		resolver:  resolver,
		logger:    log,
	}
}

// Resolve returns the viewer's visibility together with the eligible roster
// it was computed from.
func (s *VisibilityService) Resolve(ctx context.Context, viewerID int64) (domain.Visibility, []domain.Employee, error) {
	role, err := s.employees.RoleOf(ctx, viewerID)
	if err != nil {
		return domain.Visibility{}, nil, storeFailure(s.logger, err, "failed to resolve viewer role")
	}

	roster, err := s.employees.ListEligible(ctx)
	if err != nil {
		return domain.Visibility{}, nil, storeFailure(s.logger, err, "failed to load employees")
	}

	v := s.resolver.Resolve(domain.Viewer{ID: viewerID, Role: role}, roster)
	if v.Empty() {
		s.logger.Debug().Int64("viewer_id", viewerID).Msg("viewer has no visible employees")
	}
	return v, roster, nil
}
